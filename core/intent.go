package core

// Intent is the closed enumeration of utterance classifications. Classification
// is deterministic: rules are evaluated in a fixed order and the first match
// wins, so no ties are possible.
type Intent string

const (
	// IntentEmpty marks blank or whitespace-only input.
	IntentEmpty Intent = "empty"
	// IntentHelp asks for capabilities.
	IntentHelp Intent = "help"
	// IntentEcho echoes the payload back verbatim.
	IntentEcho Intent = "echo"
	// IntentSummarize condenses the payload.
	IntentSummarize Intent = "summarize"
	// IntentMemoryRemember stores a key/value preference.
	IntentMemoryRemember Intent = "memory_remember"
	// IntentMemoryForget removes a stored preference.
	IntentMemoryForget Intent = "memory_forget"
	// IntentMemoryList lists stored preference keys.
	IntentMemoryList Intent = "memory_list"
	// IntentChat is the default conversational intent.
	IntentChat Intent = "chat"
)

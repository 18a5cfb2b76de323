// Package intent classifies a user utterance into the closed intent set via
// a deterministic ordered rule table: rules are evaluated in a fixed order
// and the first match wins, so classification never ties.
//
// All keyword checks use word-boundary matching, never substring containment.
// This is a hard correctness requirement: a naive substring check lets a
// short keyword like "cap" hijack an unrelated query such as "capital of
// Nepal".
package intent

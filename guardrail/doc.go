// Package guardrail applies best-effort safety filtering to every inbound
// and outbound string: PII redaction, disallowed-content detection and input
// length capping.
//
// Redaction replaces each detected span (email, phone, SSN, Luhn-validated
// card number, IPv4, URL) with a fixed placeholder naming the category, so
// downstream logic and tests can assert on categories without ever seeing the
// original value. Matches are resolved left to right, non-overlapping, first
// match wins per span. Redaction is fail-open: if the pass itself fails the
// original text is returned unredacted and a warning is logged, so an end user
// never sees a redaction error.
//
// Disallowed-content detection is a fixed denylist of topic patterns. A match
// blocks the turn before any retrieval or generation happens and yields a
// canned refusal.
package guardrail

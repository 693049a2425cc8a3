// Package classify scans instruction text: urgency detection selects the
// delivery mode, and keyword routing maps free-form text onto dispatch
// categories.
package classify

import "strings"

// urgencyLexicon holds the substrings that flag a message as urgent.
// Matching is substring-based and case-sensitive as declared; the upper and
// lower case spellings that matter are listed explicitly. No stemming.
var urgencyLexicon = []string{
	"emergency",
	"EMERGENCY",
	"Emergency",
	"urgent",
	"URGENT",
	"critical",
	"CRITICAL",
	"immediately",
	"IMMEDIATELY",
	"ASAP",
	"outage",
	"OUTAGE",
	"🚨",
	"⚠️",
	"‼️",
}

// IsUrgent reports whether the text contains any urgency marker.
// Pure and deterministic; one token is sufficient.
func IsUrgent(text string) bool {
	for _, marker := range urgencyLexicon {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

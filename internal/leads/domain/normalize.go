// Package domain holds the lead pipeline's entities and the pure rules that
// decide record equivalence. Nothing here performs I/O.
package domain

import (
	"strings"
	"unicode"
)

// NormalizePhone returns the canonical form used for equivalence: every
// whitespace character and hyphen removed. ok is false when nothing is left.
func NormalizePhone(raw string) (string, bool) {
	canonical := strings.Map(func(r rune) rune {
		if r == '-' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)
	return canonical, canonical != ""
}

// NormalizeEmail trims and lower-cases raw. ok is false for an empty result.
func NormalizeEmail(raw string) (string, bool) {
	canonical := strings.ToLower(strings.TrimSpace(raw))
	return canonical, canonical != ""
}

// NormalizeStatus is the comparison form of a status label: double quotes
// stripped, lower-cased and trimmed. Stored statuses keep their casing.
func NormalizeStatus(raw string) string {
	return strings.TrimSpace(strings.ToLower(strings.ReplaceAll(raw, `"`, "")))
}

package usecase

import "strings"

// NormalizeText prepares a free-text value for matching: trim, lower-case.
// The second return value is false when the value is empty after trimming
// and the row must be dropped from matching. Punctuation and inner casing
// survive untouched; embedding models tolerate raw surface form better
// than over-cleaned text.
func NormalizeText(v string) (string, bool) {
	s := strings.TrimSpace(v)
	if s == "" {
		return "", false
	}
	return strings.ToLower(s), true
}

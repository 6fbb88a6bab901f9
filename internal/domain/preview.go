package domain

import "unicode/utf8"

// Ellipsis marks a truncated preview.
const Ellipsis = "…"

// Preview returns the first limit runes of text, followed by Ellipsis when
// text is longer. A non-positive limit returns text unchanged.
func Preview(text string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	n := 0
	for i := range text {
		if n == limit {
			return text[:i] + Ellipsis
		}
		n++
	}
	return text
}

// Package text holds small string helpers shared by the feed and summarizer layers.
package text

import (
	"strings"
	"unicode/utf8"
)

// CountRunes counts Unicode characters rather than bytes, so emoji section
// headers and non-Latin text are measured the way a reader sees them.
//
//	CountRunes("hello")   // 5
//	CountRunes("日本語")    // 3
//	CountRunes("📈 Rates") // 7
func CountRunes(s string) int {
	return utf8.RuneCountInString(s)
}

// CollapseWhitespace trims s and replaces every run of whitespace with a single space.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

package common

import "unicode/utf8"

// Truncate shortens s to at most max bytes plus marker, cutting on a rune
// boundary so the result stays valid UTF-8.
func Truncate(s string, max int, marker string) string {
	if max < 0 {
		max = 0
	}
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max] + marker
}

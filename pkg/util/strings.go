package util

import (
	"strings"
	"unicode/utf8"
)

// RuneLength is the number of characters in s once surrounding whitespace is
// removed. Station names are mostly Hangul so byte length is meaningless.
func RuneLength(s string) int {
	return utf8.RuneCountInString(strings.TrimSpace(s))
}


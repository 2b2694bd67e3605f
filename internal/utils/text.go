package utils

import (
	"strings"
	"unicode/utf8"
)

// TruncateRunes drops invalid UTF-8 sequences from s and keeps at most limit
// characters of the rest.
func TruncateRunes(s string, limit int) string {
	s = strings.ToValidUTF8(s, "")
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}

package utils

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{"short ascii kept", "curl/8.0", 255, "curl/8.0"},
		{"long ascii cut", strings.Repeat("a", 300), 255, strings.Repeat("a", 255)},
		{"multi-byte tail kept whole", strings.Repeat("a", 254) + "é", 255, strings.Repeat("a", 254) + "é"},
		{"cut counts characters not bytes", strings.Repeat("é", 300), 255, strings.Repeat("é", 255)},
		{"split character dropped", strings.Repeat("a", 254) + "\xc3", 255, strings.Repeat("a", 254)},
		{"invalid bytes in the middle dropped", "Mozilla\xff/5.0", 255, "Mozilla/5.0"},
		{"zero limit", "anything", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateRunes(tt.in, tt.limit)
			if got != tt.want {
				t.Errorf("TruncateRunes() = %q, want %q", got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("TruncateRunes() returned invalid UTF-8: %q", got)
			}
		})
	}
}

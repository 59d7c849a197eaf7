package common

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		max    int
		marker string
		want   string
	}{
		{"short", "abc", 3, "...", "abc"},
		{"ascii", "abcdef", 2, "...", "ab..."},
		{"zero", "abc", 0, "…", "…"},
		{"negative", "abc", -1, "", ""},
		// 請 is three bytes; a cut at 4 would split the second rune
		{"multibyte backs off", "請求書", 4, "", "請"},
		{"multibyte exact", "請求書", 6, "", "請求"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truncate(tt.in, tt.max, tt.marker))
		})
	}
}

func TestTruncateLongJapaneseStaysValid(t *testing.T) {
	body := strings.Repeat("請求書", 300)
	for max := 500; max < 520; max++ {
		got := Truncate(body, max, "...(truncated)")
		assert.True(t, utf8.ValidString(got), "max=%d", max)
		assert.LessOrEqual(t, len(got), max+len("...(truncated)"))
	}
}

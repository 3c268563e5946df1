package domain

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "normal name kept", in: "Alice", want: "Alice"},
		{name: "surrounding space trimmed", in: "  Bob  ", want: "Bob"},
		{name: "blank falls back", in: "", want: DefaultDisplayName},
		{name: "whitespace falls back", in: "   ", want: DefaultDisplayName},
		{name: "long ascii cut", in: strings.Repeat("a", 50), want: strings.Repeat("a", MaxDisplayNameLen)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DisplayName(tt.in))
		})
	}
}

func TestDisplayNameTruncatesOnRuneBoundary(t *testing.T) {
	// 40 three-byte runes: a byte-offset cut would land mid-rune.
	in := strings.Repeat("日", 40)

	got := DisplayName(in)
	assert.True(t, utf8.ValidString(got), "truncated name must stay valid UTF-8")
	assert.Equal(t, strings.Repeat("日", MaxDisplayNameLen), got)
	assert.Equal(t, MaxDisplayNameLen, utf8.RuneCountInString(got))
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, RoomCode("AB12-CD34"), NormalizeCode(" ab12-cd34 "))
	assert.Equal(t, RoomCode("AB12-CD34"), NormalizeCode("AB12-CD34"))
}

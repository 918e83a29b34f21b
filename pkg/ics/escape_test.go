package ics

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "plain text", want: "plain text"},
		{in: "Școală și vacanță", want: "Școală și vacanță"},
		{in: `a\b`, want: `a\\b`},
		{in: "a;b", want: `a\;b`},
		{in: "a,b", want: `a\,b`},
		{in: "a\nb", want: `a\nb`},
		{in: "a\r\nb", want: `a\nb`},
		{in: "a\rb", want: `a\nb`},
		{in: `\;`, want: `\\\;`},
		{in: "tab\there", want: "tab\there"},
		{in: "bell\x07null\x00del\x7f", want: "bellnulldel"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EscapeText(tt.in), "input %q", tt.in)
	}
}

func TestEscapeTextAppliesOnce(t *testing.T) {
	once := EscapeText("a;b,c")
	assert.Equal(t, `a\;b\,c`, once)
	assert.Equal(t, `a\\\;b\\\,c`, EscapeText(once))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "ab", Truncate("abc", 2))
	assert.Equal(t, "șț", Truncate("șțâ", 2))
	assert.Equal(t, "📢 ", Truncate("📢 Ofertă", 2))
	assert.Equal(t, "", Truncate("abc", 0))
	assert.Equal(t, "", Truncate("", 3))
}

func TestFold(t *testing.T) {
	short := strings.Repeat("a", maxLineOctets)
	assert.Equal(t, short, fold(short))

	long := strings.Repeat("a", 200)
	folded := fold(long)
	parts := strings.Split(folded, "\r\n")
	assert.Len(t, parts[0], maxLineOctets)
	for _, part := range parts[1:] {
		assert.True(t, strings.HasPrefix(part, " "))
		assert.LessOrEqual(t, len(part), maxLineOctets)
	}
	assert.Equal(t, long, strings.ReplaceAll(folded, "\r\n ", ""))
}

func TestFoldKeepsMultiByteRunes(t *testing.T) {
	line := "SUMMARY:" + strings.Repeat("ș", 100)
	folded := fold(line)
	for _, part := range strings.Split(folded, "\r\n") {
		assert.Equal(t, part, strings.ToValidUTF8(part, "?"))
	}
	assert.Equal(t, line, strings.ReplaceAll(folded, "\r\n ", ""))
}

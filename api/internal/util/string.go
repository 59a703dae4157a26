package util

import (
	"strings"
	"unicode"
)

func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

const maxWordLen = 64

// SanitizeWord keeps letters, combining marks, digits, spaces, apostrophes
// and hyphens and caps the length. Anything else in user input is dropped.
// Marks must pass: Thai vowel and tone signs are Mn, not Letter, and
// stripping them would mangle every Thai word.
func SanitizeWord(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsMark(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == ' ' || r == '\'' || r == '-':
			b.WriteRune(r)
		}
	}
	out := strings.Join(strings.Fields(b.String()), " ")
	// cap on runes, never mid-rune
	if rs := []rune(out); len(rs) > maxWordLen {
		out = string(rs[:maxWordLen])
	}
	return strings.TrimSpace(out)
}

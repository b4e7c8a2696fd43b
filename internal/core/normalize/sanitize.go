package normalize

import (
	"strings"
	"unicode/utf8"
)

// dropped reports whether Sanitize removes the rune; tabs and line breaks survive
func dropped(r rune, size int) bool {
	switch {
	case r == utf8.RuneError && size == 1:
		return true
	case r == '\n', r == '\r', r == '\t':
		return false
	}
	return r < 0x20 || r == 0x7F || (r >= 0x80 && r <= 0x9F)
}

// Sanitize strips NUL and the other C0 and C1 controls, DEL and invalid UTF-8
// bytes, so submitted text is safe for postgres text columns and the tokenizer.
// Clean input is returned as is
func Sanitize(s string) string {
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if dropped(r, size) {
			return rebuild(s, i)
		}
		i += size
	}
	return s
}

// rebuild copies s[:from] and the kept runes after it
func rebuild(s string, from int) string {
	var b strings.Builder
	b.Grow(len(s))
	b.WriteString(s[:from])
	for i := from; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !dropped(r, size) {
			b.WriteString(s[i : i+size])
		}
		i += size
	}
	return b.String()
}

// Package normalize provides the text primitives the text detector works from
// Pipeline for Words
// 1 drop invalid UTF-8 and control characters
// 2 Unicode lowercasing
// 3 extract maximal runs of letters, numbers and underscore
// Sentences splits on runs of terminal punctuation
package normalize

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/transform"
)

// pool of lowercasing transformers, a cases.Caser is stateful and not safe to share
var casePool = sync.Pool{
	New: func() any {
		return cases.Lower(language.Und)
	},
}

// Lower returns the Unicode lowercase form of s after sanitizing it
func Lower(s string) string {
	if s == "" {
		return ""
	}
	s = Sanitize(s)

	tr := casePool.Get().(transform.Transformer)
	out, _, err := transform.String(tr, s)
	tr.Reset()
	casePool.Put(tr)
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}

// Words lowercases s and returns its word tokens in order
func Words(s string) []string {
	return wordsOf(Lower(s))
}

// wordsOf returns nil, never an empty slice, when s holds no word runes
func wordsOf(s string) []string {
	words := strings.FieldsFunc(s, func(r rune) bool { return !isWordRune(r) })
	if len(words) == 0 {
		return nil
	}
	return words
}

// isWordRune matches the \w class: letters, numbers and underscore
func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

// Sentences splits s on runs of '.', '!' and '?' and returns the trimmed non-empty pieces
func Sentences(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.FieldsFunc(s, isTerminal)
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func isTerminal(r rune) bool { return r == '.' || r == '!' || r == '?' }

// Truncate returns at most n runes of s
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

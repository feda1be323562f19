// Package tokenizer splits decoded text into word tokens. A word is a
// maximal run of word runes (letters, decimal digits, nonspacing marks and
// connector punctuation such as '_'); every other rune is a delimiter and is
// never counted. Case is preserved.
package tokenizer

import (
	"unicode"
	"unicode/utf8"
)

// IsWordRune reports whether r belongs to a word.
func IsWordRune(r rune) bool {
	if r < 0x80 {
		return 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' || '0' <= r && r <= '9' || r == '_'
	}
	return unicode.IsLetter(r) ||
		unicode.Is(unicode.Nd, r) ||
		unicode.Is(unicode.Mn, r) ||
		unicode.Is(unicode.Pc, r)
}

// Split breaks text into tokens. When text ends inside a word, that last
// run may continue in the next chunk, so it is returned as leftover instead
// of as a token. Text made only of delimiters yields no tokens and an empty
// leftover.
func Split(text string) (tokens []string, leftover string) {
	tokens = make([]string, 0, len(text)/8+1)
	start := -1
	for i, r := range text {
		if IsWordRune(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			tokens = append(tokens, text[start:i])
			start = -1
		}
	}
	if start >= 0 {
		leftover = text[start:]
	}
	return tokens, leftover
}

// Fields returns every token in text, treating its end as a word boundary.
func Fields(text string) []string {
	tokens, leftover := Split(text)
	if leftover != "" {
		tokens = append(tokens, leftover)
	}
	return tokens
}

// LastDelimiterEnd returns the offset just past the last delimiter rune in
// b[from:], or -1 when that part holds only word runes. from must fall on a
// rune boundary.
func LastDelimiterEnd(b []byte, from int) int {
	for i := len(b); i > from; {
		r, size := utf8.DecodeLastRune(b[from:i])
		if !IsWordRune(r) {
			return i
		}
		i -= size
	}
	return -1
}

// Package keyword turns raw document text into the normalized, deduplicated
// set of candidate keywords loaded into the completion index.
//
// Extraction runs in two steps. A corpus pass strips markup and splits every
// field into words; once the corpus is exhausted the collected words are
// lowercased, deduplicated and short words are dropped.
package keyword

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// Alphabet is the accented allowlist kept inside words next to the base
// Latin letters a-z and A-Z. Any other rune separates words.
const Alphabet = "çéâêîïôûàèùœÇÉÂÊÎÏÔÛÀÈÙŒ"

var accented = func() map[rune]bool {
	m := make(map[rune]bool, utf8.RuneCountInString(Alphabet))
	for _, r := range Alphabet {
		m[r] = true
	}
	return m
}()

// IsWordRune reports whether r may appear inside a word.
func IsWordRune(r rune) bool {
	return ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || accented[r]
}

// Tokenize splits text into maximal runs of word runes. It never returns
// empty tokens. Text is composed to NFC first so a decomposed accent stays
// inside its word.
func Tokenize(text string) []string {
	return strings.FieldsFunc(norm.NFC.String(text), func(r rune) bool {
		return !IsWordRune(r)
	})
}

// StripTags renders markup-free text: tags and comments are dropped and
// character references are decoded. Text split by a tag is not re-spaced,
// so "<b>ca</b>fé" yields "café".
func StripTags(text string) string {
	if !strings.ContainsAny(text, "<&") {
		return text
	}

	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(text))
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF or malformed input; either way what was read is kept
			return b.String()
		case html.TextToken:
			b.Write(z.Text())
		}
	}
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package segment splits raw text into sentences and tokens. Every span
// carries byte offsets into the original text, so slicing the input with a
// span's Start and End reproduces its text exactly.
package segment

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Token is a word or a single punctuation mark.
type Token struct {
	// Text is the token exactly as it appears in the input.
	Text string `json:"text" yaml:"text"`

	// Norm is the lowercase NFC form used for dictionary matching.
	Norm string `json:"norm" yaml:"norm"`

	// Start and End are byte offsets into the original text.
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`

	// Word is false for punctuation tokens.
	Word bool `json:"word" yaml:"word"`
}

// Tokenize splits text into tokens. base is added to every offset so that
// tokens of a sentence can be expressed relative to the whole document.
func Tokenize(text string, base int) []Token {
	var tokens []Token

	i := 0
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		switch {
		case unicode.IsSpace(r):
			i += size
		case isWordRune(r):
			end := scanWord(text, i)
			tokens = append(tokens, newToken(text[i:end], base+i, base+end, true))
			i = end
		default:
			tokens = append(tokens, newToken(text[i:i+size], base+i, base+i+size, false))
			i += size
		}
	}

	return tokens
}

// Normalize returns the normalized token forms of a phrase. Dictionary terms
// and input text go through the same path, so their token sequences line up.
func Normalize(phrase string) []string {
	tokens := Tokenize(phrase, 0)
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Norm
	}
	return out
}

// NormalizeTerm returns the canonical string form of a phrase: normalized
// tokens joined by single spaces.
func NormalizeTerm(phrase string) string {
	return strings.Join(Normalize(phrase), " ")
}

func newToken(text string, start, end int, word bool) Token {
	return Token{
		Text:  text,
		Norm:  norm.NFC.String(strings.ToLower(text)),
		Start: start,
		End:   end,
		Word:  word,
	}
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

// scanWord returns the end of the word starting at i. An apostrophe between
// letters and a period or comma between digits stay inside the word
// ("patient's", "1.5", "1,000").
func scanWord(text string, i int) int {
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if isWordRune(r) {
			i += size
			continue
		}
		if (r == '\'' || r == '’') && i > 0 {
			prev, _ := utf8.DecodeLastRuneInString(text[:i])
			next, _ := utf8.DecodeRuneInString(text[i+size:])
			if unicode.IsLetter(prev) && unicode.IsLetter(next) {
				i += size
				continue
			}
		}
		if (r == '.' || r == ',') && i > 0 {
			prev, _ := utf8.DecodeLastRuneInString(text[:i])
			next, _ := utf8.DecodeRuneInString(text[i+size:])
			if unicode.IsDigit(prev) && unicode.IsDigit(next) {
				i += size
				continue
			}
		}
		break
	}
	return i
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package segment

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Span is a sentence located in the original text.
type Span struct {
	Text   string
	Start  int
	End    int
	Tokens []Token
}

// Segmenter splits text into sentences.
type Segmenter struct {
	splitOnNewline bool
	abbreviations  map[string]bool
}

// abbreviations end in a period without ending the sentence.
var abbreviations = []string{
	"dr", "mr", "mrs", "ms", "pt", "pts", "vs", "etc", "approx", "st",
	"fig", "e.g", "i.e", "b.i.d", "t.i.d", "q.i.d", "q.d", "p.o", "p.r.n",
	"h.s", "a.m", "p.m", "hr", "min", "wk", "yr", "yrs", "jr", "sr",
}

// NewSegmenter creates a segmenter. With splitOnNewline every line break ends
// a sentence, which suits clinical notes written as one finding per line.
// Without it only blank lines and terminal punctuation do.
func NewSegmenter(splitOnNewline bool) *Segmenter {
	abbr := make(map[string]bool, len(abbreviations))
	for _, a := range abbreviations {
		abbr[a] = true
	}
	return &Segmenter{
		splitOnNewline: splitOnNewline,
		abbreviations:  abbr,
	}
}

// Split returns the sentences of text in order, each tokenized with offsets
// relative to text. Empty and whitespace-only input yields no sentences.
func (s *Segmenter) Split(text string) []Span {
	var spans []Span
	start := 0

	emit := func(end int) {
		if sp, ok := trimSpan(text, start, end); ok {
			sp.Tokens = Tokenize(sp.Text, sp.Start)
			spans = append(spans, sp)
		}
		start = end
	}

	i := 0
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		switch {
		case r == '\n':
			if s.splitOnNewline || blankLineFollows(text, i+size) {
				emit(i)
			}
			i += size
		case r == '.' || r == '!' || r == '?':
			end := skipClosers(text, i+size)
			if s.isBoundary(text, i, end) {
				emit(end)
			}
			i = end
		default:
			i += size
		}
	}
	emit(len(text))

	return spans
}

// isBoundary decides whether the terminator at i, with closers up to end,
// ends a sentence.
func (s *Segmenter) isBoundary(text string, i, end int) bool {
	if end < len(text) {
		next, _ := utf8.DecodeRuneInString(text[end:])
		if !unicode.IsSpace(next) {
			return false
		}
	}
	if text[i] != '.' {
		return true
	}

	word := precedingWord(text, i)
	if s.abbreviations[strings.ToLower(word)] {
		return false
	}
	// Single-letter initials ("J. Smith").
	if utf8.RuneCountInString(word) == 1 && unicode.IsUpper([]rune(word)[0]) {
		return false
	}

	// A lowercase continuation means the period was not terminal.
	rest := strings.TrimLeftFunc(text[end:], unicode.IsSpace)
	if rest != "" {
		next, _ := utf8.DecodeRuneInString(rest)
		if unicode.IsLower(next) && !strings.Contains(text[end:len(text)-len(rest)], "\n") {
			return false
		}
	}
	return true
}

// precedingWord returns the letters and inner periods right before i
// ("e.g" for "e.g.", "Dr" for "Dr.").
func precedingWord(text string, i int) string {
	j := i
	for j > 0 {
		r, size := utf8.DecodeLastRuneInString(text[:j])
		if unicode.IsLetter(r) || r == '.' {
			j -= size
			continue
		}
		break
	}
	return strings.Trim(text[j:i], ".")
}

// skipClosers advances past repeated terminators, quotes and closing brackets.
func skipClosers(text string, i int) int {
	for i < len(text) {
		switch text[i] {
		case '.', '!', '?', '"', '\'', ')', ']':
			i++
		default:
			return i
		}
	}
	return i
}

func blankLineFollows(text string, i int) bool {
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if r == '\n' {
			return true
		}
		if !unicode.IsSpace(r) {
			return false
		}
		i += size
	}
	return false
}

func trimSpan(text string, start, end int) (Span, bool) {
	for start < end {
		r, size := utf8.DecodeRuneInString(text[start:end])
		if !unicode.IsSpace(r) {
			break
		}
		start += size
	}
	for end > start {
		r, size := utf8.DecodeLastRuneInString(text[start:end])
		if !unicode.IsSpace(r) {
			break
		}
		end -= size
	}
	if start >= end {
		return Span{}, false
	}
	return Span{Text: text[start:end], Start: start, End: end}, true
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package match scans token sequences against a dictionary and emits
// role-tagged spans.
package match

import (
	"github.com/pdiddy/semex/internal/segment"
	"github.com/pdiddy/semex/pkg/types"
)

// Lookup is the dictionary capability the matcher needs.
type Lookup interface {
	LongestMatch(tokens []segment.Token, start int) (types.Entry, int, bool)
}

// Span is one dictionary hit inside a sentence.
type Span struct {
	Text  string
	Codes []string
	Role  types.Role

	// Direction is set for scoped cues.
	Direction types.Direction

	// Start and End are byte offsets into the original document.
	Start int
	End   int

	// First and Last are token indices within the sentence, Last exclusive.
	First int
	Last  int

	// Word is the index of the span's first word token among the sentence's
	// word tokens. Scope windows count in these units.
	Word int
}

// Words returns the number of word tokens the span covers.
func (s Span) Words(tokens []segment.Token) int {
	n := 0
	for _, t := range tokens[s.First:s.Last] {
		if t.Word {
			n++
		}
	}
	return n
}

// Sentence scans one sentence left to right, taking the longest dictionary
// hit at each position. Matches never overlap. text is the full document the
// token offsets refer to.
func Sentence(dict Lookup, text string, tokens []segment.Token) []Span {
	var spans []Span

	word := 0
	for i := 0; i < len(tokens); {
		entry, n, ok := dict.LongestMatch(tokens, i)
		if !ok {
			if tokens[i].Word {
				word++
			}
			i++
			continue
		}

		first, last := i, i+n
		start, end := tokens[first].Start, tokens[last-1].End
		span := Span{
			Text:  text[start:end],
			Codes: entry.Codes,
			Role:  entry.Role,
			Start: start,
			End:   end,
			First: first,
			Last:  last,
			Word:  word,

			Direction: entry.Direction,
		}
		spans = append(spans, span)

		word += span.Words(tokens)
		i = last
	}

	return spans
}

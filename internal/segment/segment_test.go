// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package segment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		want  []string
		words []bool
	}{
		{
			name:  "words and punctuation",
			text:  "No fever, chills.",
			want:  []string{"no", "fever", ",", "chills", "."},
			words: []bool{true, true, false, true, false},
		},
		{
			name:  "decimal stays in one token",
			text:  "mass of 1.5 cm",
			want:  []string{"mass", "of", "1.5", "cm"},
			words: []bool{true, true, true, true},
		},
		{
			name:  "hyphen splits",
			text:  "follow-up",
			want:  []string{"follow", "-", "up"},
			words: []bool{true, false, true},
		},
		{
			name:  "possessive stays in one token",
			text:  "patient's knee",
			want:  []string{"patient's", "knee"},
			words: []bool{true, true},
		},
		{
			name: "empty",
			text: "   ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := Tokenize(tt.text, 0)
			require.Len(t, tokens, len(tt.want))
			for i, tok := range tokens {
				assert.Equal(t, tt.want[i], tok.Norm)
				assert.Equal(t, tt.words[i], tok.Word, "token %q", tok.Text)
				assert.Equal(t, tok.Text, tt.text[tok.Start:tok.End])
			}
		})
	}
}

func TestTokenizeBaseOffset(t *testing.T) {
	doc := "Intro. Severe pain"
	tokens := Tokenize(doc[7:], 7)
	require.Len(t, tokens, 2)
	assert.Equal(t, "Severe", doc[tokens[0].Start:tokens[0].End])
	assert.Equal(t, "pain", doc[tokens[1].Start:tokens[1].End])
}

func TestNormalizeTerm(t *testing.T) {
	assert.Equal(t, "rule out", NormalizeTerm("  Rule   OUT "))
	assert.Equal(t, "follow - up", NormalizeTerm("Follow-Up"))
	// A decomposed accent normalizes to the composed form.
	assert.Equal(t, "caf\u00e9", NormalizeTerm("CAFE\u0301"))
	assert.Empty(t, NormalizeTerm(""))
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name    string
		newline bool
		text    string
		want    []string
	}{
		{
			name: "terminal punctuation",
			text: "No fever. Cough present! Is it pneumonia?",
			want: []string{"No fever.", "Cough present!", "Is it pneumonia?"},
		},
		{
			name: "abbreviation does not split",
			text: "Seen by Dr. Smith today. Stable.",
			want: []string{"Seen by Dr. Smith today.", "Stable."},
		},
		{
			name: "inner periods",
			text: "Take e.g. ibuprofen. Return b.i.d. visits.",
			want: []string{"Take e.g. ibuprofen.", "Return b.i.d. visits."},
		},
		{
			name: "decimal does not split",
			text: "Lesion measures 1.5 cm. No change.",
			want: []string{"Lesion measures 1.5 cm.", "No change."},
		},
		{
			name:    "newline splits when enabled",
			newline: true,
			text:    "PMH: diabetes\nMeds: metformin",
			want:    []string{"PMH: diabetes", "Meds: metformin"},
		},
		{
			name: "newline joins when disabled",
			text: "pain in the\nleft knee",
			want: []string{"pain in the\nleft knee"},
		},
		{
			name: "blank line always splits",
			text: "Assessment stable\n\nPlan follow up",
			want: []string{"Assessment stable", "Plan follow up"},
		},
		{
			name: "lowercase continuation",
			text: "Approx. three days ago.",
			want: []string{"Approx. three days ago."},
		},
		{
			name: "empty",
			text: "",
			want: nil,
		},
		{
			name:    "whitespace only",
			newline: true,
			text:    " \n\t \n ",
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spans := NewSegmenter(tt.newline).Split(tt.text)
			var got []string
			for _, sp := range spans {
				got = append(got, sp.Text)
				assert.Equal(t, sp.Text, tt.text[sp.Start:sp.End])
				for _, tok := range sp.Tokens {
					assert.Equal(t, tok.Text, tt.text[tok.Start:tok.End])
				}
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ObjectRecord is the serializable view of one semantic object and its
// modifiers.
type ObjectRecord struct {
	Text          string         `json:"text" yaml:"text"`
	Codes         []string       `json:"codes" yaml:"codes"`
	Role          Role           `json:"role" yaml:"role"`
	Certainty     Certainty      `json:"certainty" yaml:"certainty"`
	FamilyHistory bool           `json:"family_history" yaml:"family_history"`
	Historical    bool           `json:"historical" yaml:"historical"`
	Start         int            `json:"start" yaml:"start"`
	End           int            `json:"end" yaml:"end"`
	Modifiers     []ObjectRecord `json:"modifiers,omitempty" yaml:"modifiers,omitempty"`
}

// SentenceRecord is the serializable view of one sentence.
type SentenceRecord struct {
	Index   int            `json:"index" yaml:"index"`
	Text    string         `json:"text" yaml:"text"`
	Start   int            `json:"start" yaml:"start"`
	End     int            `json:"end" yaml:"end"`
	Objects []ObjectRecord `json:"objects" yaml:"objects"`
}

// ExtractionResult holds the output of extracting one document.
type ExtractionResult struct {
	// DocumentID identifies the source note (file name without extension in
	// batch mode).
	DocumentID string `json:"document_id" yaml:"document_id"`

	// Source is the path the text was read from, if any.
	Source string `json:"source,omitempty" yaml:"source,omitempty"`

	Sentences []SentenceRecord `json:"sentences" yaml:"sentences"`

	// Error records an extraction failure message. Empty on success.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// ObjectCount returns the number of top-level objects across all sentences.
func (r ExtractionResult) ObjectCount() int {
	n := 0
	for _, s := range r.Sentences {
		n += len(s.Objects)
	}
	return n
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tabular flattens extraction results into one row per object and
// writes them as CSV or TSV. Modifiers get their own rows and name their
// parent row.
package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pdiddy/semex/pkg/types"
)

// Format selects the delimiter.
type Format string

const (
	FormatCSV Format = "csv"
	FormatTSV Format = "tsv"
)

// ParseFormat converts a format name into a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatTSV:
		return f, nil
	}
	return "", fmt.Errorf("unknown table format %q: want csv or tsv", s)
}

// Header names the columns of a Row.
var Header = []string{
	"document_id", "sentence", "object", "parent", "text", "role", "codes",
	"certainty", "family_history", "historical", "start", "end",
}

// Row is one object. Object numbers count from 1 within a document in
// depth-first order; Parent is 0 for top-level objects.
type Row struct {
	DocumentID    string
	Sentence      int
	Object        int
	Parent        int
	Text          string
	Role          types.Role
	Codes         []string
	Certainty     types.Certainty
	FamilyHistory bool
	Historical    bool
	Start         int
	End           int
}

func (r Row) fields() []string {
	return []string{
		r.DocumentID,
		strconv.Itoa(r.Sentence),
		strconv.Itoa(r.Object),
		strconv.Itoa(r.Parent),
		r.Text,
		string(r.Role),
		strings.Join(r.Codes, ";"),
		string(r.Certainty),
		strconv.FormatBool(r.FamilyHistory),
		strconv.FormatBool(r.Historical),
		strconv.Itoa(r.Start),
		strconv.Itoa(r.End),
	}
}

// Rows flattens a result.
func Rows(result types.ExtractionResult) []Row {
	var rows []Row
	n := 0

	var walk func(sentence, parent int, o types.ObjectRecord)
	walk = func(sentence, parent int, o types.ObjectRecord) {
		n++
		id := n
		rows = append(rows, Row{
			DocumentID:    result.DocumentID,
			Sentence:      sentence,
			Object:        id,
			Parent:        parent,
			Text:          o.Text,
			Role:          o.Role,
			Codes:         o.Codes,
			Certainty:     o.Certainty,
			FamilyHistory: o.FamilyHistory,
			Historical:    o.Historical,
			Start:         o.Start,
			End:           o.End,
		})
		for _, m := range o.Modifiers {
			walk(sentence, id, m)
		}
	}

	for _, s := range result.Sentences {
		for _, o := range s.Objects {
			walk(s.Index, 0, o)
		}
	}
	return rows
}

// Write writes a header line followed by rows.
func Write(w io.Writer, format Format, rows []Row) error {
	cw := csv.NewWriter(w)
	if format == FormatTSV {
		cw.Comma = '\t'
	}

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write(r.fields()); err != nil {
			return fmt.Errorf("writing row %d: %w", r.Object, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pdiddy/semex/pkg/types"
)

// QueryOptions holds parameters for result queries.
type QueryOptions struct {
	// Query is a full-text search over sentence text.
	Query string

	// Code matches objects carrying this code.
	Code string

	Role      types.Role
	Certainty types.Certainty

	// FamilyHistory filters on the family-history flag when set.
	FamilyHistory *bool

	DocumentID string

	// TopLevel excludes attached modifiers.
	TopLevel bool

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.Code == "" && q.Role == "" && q.Certainty == "" &&
		q.FamilyHistory == nil && q.DocumentID == "" && !q.TopLevel
}

// QueryResult is a stored object with its sentence and document context.
type QueryResult struct {
	types.ObjectRecord `yaml:",inline"`

	DocumentID   string `json:"document_id" yaml:"document_id"`
	Source       string `json:"source,omitempty" yaml:"source,omitempty"`
	Sentence     int    `json:"sentence" yaml:"sentence"`
	SentenceText string `json:"sentence_text" yaml:"sentence_text"`

	// Parent is the text of the object this one is attached beneath.
	Parent string `json:"parent,omitempty" yaml:"parent,omitempty"`
}

// Query returns stored objects matching opts, ordered by document and
// position within the document.
func (s *Store) Query(ctx context.Context, opts QueryOptions) ([]QueryResult, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb   strings.Builder
		args []any
	)

	qb.WriteString(
		`SELECT o.document_id, d.source, o.sentence_idx, s.text, COALESCE(p.text, ''),
			o.text, o.role, o.certainty, o.family_history, o.historical,
			o.start_offset, o.end_offset, o.codes
		FROM objects o
		JOIN documents d ON d.id = o.document_id
		JOIN sentences s ON s.document_id = o.document_id AND s.idx = o.sentence_idx
		LEFT JOIN objects p ON p.document_id = o.document_id AND p.seq = o.parent_seq
		WHERE 1=1`)

	if opts.Query != "" {
		qb.WriteString(` AND s.rowid IN (SELECT docid FROM sentences_fts WHERE sentences_fts MATCH ?)`)
		args = append(args, opts.Query)
	}
	if opts.Code != "" {
		qb.WriteString(` AND EXISTS (SELECT 1 FROM json_each(o.codes) WHERE value = ?)`)
		args = append(args, opts.Code)
	}
	if opts.Role != "" {
		qb.WriteString(` AND o.role = ?`)
		args = append(args, string(opts.Role))
	}
	if opts.Certainty != "" {
		qb.WriteString(` AND o.certainty = ?`)
		args = append(args, string(opts.Certainty))
	}
	if opts.FamilyHistory != nil {
		qb.WriteString(` AND o.family_history = ?`)
		args = append(args, *opts.FamilyHistory)
	}
	if opts.DocumentID != "" {
		qb.WriteString(` AND o.document_id = ?`)
		args = append(args, opts.DocumentID)
	}
	if opts.TopLevel {
		qb.WriteString(` AND o.parent_seq = 0`)
	}

	qb.WriteString(` ORDER BY o.document_id, o.seq LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying results: %w", err)
	}
	defer rows.Close()

	var results []QueryResult
	for rows.Next() {
		var (
			qr        QueryResult
			source    sql.NullString
			role      string
			certainty string
			codesJSON sql.NullString
		)

		if err := rows.Scan(
			&qr.DocumentID, &source, &qr.Sentence, &qr.SentenceText, &qr.Parent,
			&qr.Text, &role, &certainty, &qr.FamilyHistory, &qr.Historical,
			&qr.Start, &qr.End, &codesJSON,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		qr.Role = types.Role(role)
		qr.Certainty = types.Certainty(certainty)
		if source.Valid {
			qr.Source = source.String
		}
		if codesJSON.Valid {
			if err := json.Unmarshal([]byte(codesJSON.String), &qr.Codes); err != nil {
				return nil, fmt.Errorf("decoding codes of %s object %q: %w", qr.DocumentID, qr.Text, err)
			}
		}

		results = append(results, qr)
	}

	return results, rows.Err()
}

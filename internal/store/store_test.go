// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/semex/pkg/types"
)

func testSetup(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := NewStore(types.StoreConfig{Dir: dir, MaxResults: 20})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	results := filepath.Join(dir, "results")
	require.NoError(t, os.MkdirAll(results, 0o755))
	return s, results
}

func writeResult(t *testing.T, dir, id string, result types.ExtractionResult) string {
	t.Helper()
	data, err := yaml.Marshal(&result)
	require.NoError(t, err)
	path := filepath.Join(dir, id+resultSuffix)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func sampleResult(source string) types.ExtractionResult {
	return types.ExtractionResult{
		Source: source,
		Sentences: []types.SentenceRecord{
			{
				Index: 0, Text: "Severe chest pain.", Start: 0, End: 18,
				Objects: []types.ObjectRecord{{
					Text: "chest pain", Codes: []string{"R07.4"}, Role: types.RoleObservation,
					Certainty: types.CertaintyYes, Start: 7, End: 17,
					Modifiers: []types.ObjectRecord{{
						Text: "Severe", Codes: []string{"SEVERE"}, Role: types.RoleModifier,
						Certainty: types.CertaintyYes, Start: 0, End: 6,
					}},
				}},
			},
			{
				Index: 1, Text: "Mother had no pneumonia.", Start: 19, End: 43,
				Objects: []types.ObjectRecord{{
					Text: "pneumonia", Codes: []string{"J18.9", "C0032285"}, Role: types.RoleObservation,
					Certainty: types.CertaintyNo, FamilyHistory: true, Start: 33, End: 42,
				}},
			},
		},
	}
}

func ingest(t *testing.T, s *Store, dir string) IngestSummary {
	t.Helper()
	var buf bytes.Buffer
	summary, err := s.Ingest(context.Background(), dir, &buf)
	require.NoError(t, err)
	return summary
}

func TestSchemaIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 2; i++ {
		s, err := NewStore(types.StoreConfig{Dir: dir})
		require.NoError(t, err)
		assert.Equal(t, 20, s.maxResults)

		version, dirty, err := s.SchemaVersion(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, version)
		assert.False(t, dirty)
		require.NoError(t, s.Close())
	}
	assert.FileExists(t, filepath.Join(dir, indexDir, dbFile))
}

func TestIngest(t *testing.T) {
	s, dir := testSetup(t)
	writeResult(t, dir, "note-1", sampleResult("notes/note-1.txt"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken"+resultSuffix), []byte("sentences: [unterminated"), 0o644))

	var buf bytes.Buffer
	summary, err := s.Ingest(context.Background(), dir, &buf)
	require.NoError(t, err)
	assert.Equal(t, IngestSummary{Indexed: 1, Failed: 1}, summary)
	assert.Equal(t, 2, summary.Total())
	assert.Contains(t, buf.String(), "indexing note-1 (2 objects)")
	assert.Contains(t, buf.String(), "failed  broken")

	var objects int
	require.NoError(t, s.db.QueryRow(`SELECT count(*) FROM objects WHERE document_id = 'note-1'`).Scan(&objects))
	assert.Equal(t, 3, objects)

	assert.FileExists(t, filepath.Join(s.dir, indexDir, "export.yaml"))
}

func TestIngestSkipsAndUpdates(t *testing.T) {
	s, dir := testSetup(t)
	path := writeResult(t, dir, "note-1", sampleResult(""))
	ingest(t, s, dir)

	summary := ingest(t, s, dir)
	assert.Equal(t, 1, summary.Skipped)

	changed := sampleResult("")
	changed.Sentences = changed.Sentences[:1]
	writeResult(t, dir, "note-1", changed)
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))

	summary = ingest(t, s, dir)
	assert.Equal(t, 1, summary.Updated)

	results, err := s.Query(context.Background(), QueryOptions{DocumentID: "note-1"})
	require.NoError(t, err)
	assert.Len(t, results, 2, "old rows are replaced")
}

func TestIngestMissingDir(t *testing.T) {
	s, dir := testSetup(t)
	_, err := s.Ingest(context.Background(), filepath.Join(dir, "nope"), &bytes.Buffer{})
	assert.Error(t, err)
}

func TestQuery(t *testing.T) {
	s, dir := testSetup(t)
	writeResult(t, dir, "note-1", sampleResult("notes/note-1.txt"))
	other := sampleResult("")
	other.Sentences = other.Sentences[:1]
	writeResult(t, dir, "note-2", other)
	ingest(t, s, dir)

	yes := true
	tests := []struct {
		name  string
		opts  QueryOptions
		texts []string
	}{
		{name: "all", opts: QueryOptions{}, texts: []string{"chest pain", "Severe", "pneumonia", "chest pain", "Severe"}},
		{name: "full text", opts: QueryOptions{Query: "mother"}, texts: []string{"pneumonia"}},
		{name: "code", opts: QueryOptions{Code: "C0032285"}, texts: []string{"pneumonia"}},
		{name: "role", opts: QueryOptions{Role: types.RoleModifier}, texts: []string{"Severe", "Severe"}},
		{name: "certainty", opts: QueryOptions{Certainty: types.CertaintyNo}, texts: []string{"pneumonia"}},
		{name: "family history", opts: QueryOptions{FamilyHistory: &yes}, texts: []string{"pneumonia"}},
		{name: "document", opts: QueryOptions{DocumentID: "note-2"}, texts: []string{"chest pain", "Severe"}},
		{name: "top level", opts: QueryOptions{TopLevel: true, DocumentID: "note-1"}, texts: []string{"chest pain", "pneumonia"}},
		{name: "limit", opts: QueryOptions{MaxResults: 1}, texts: []string{"chest pain"}},
		{name: "no match", opts: QueryOptions{Code: "Z00"}, texts: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := s.Query(context.Background(), tt.opts)
			require.NoError(t, err)
			var texts []string
			for _, r := range results {
				texts = append(texts, r.Text)
			}
			assert.Equal(t, tt.texts, texts)
		})
	}
}

func TestQueryResultContext(t *testing.T) {
	s, dir := testSetup(t)
	writeResult(t, dir, "note-1", sampleResult("notes/note-1.txt"))
	ingest(t, s, dir)

	results, err := s.Query(context.Background(), QueryOptions{Role: types.RoleModifier})
	require.NoError(t, err)
	require.Len(t, results, 1)

	r := results[0]
	assert.Equal(t, "note-1", r.DocumentID)
	assert.Equal(t, "notes/note-1.txt", r.Source)
	assert.Equal(t, 0, r.Sentence)
	assert.Equal(t, "Severe chest pain.", r.SentenceText)
	assert.Equal(t, "chest pain", r.Parent)
	assert.Equal(t, []string{"SEVERE"}, r.Codes)
	assert.Equal(t, 0, r.Start)
	assert.Equal(t, 6, r.End)

	results, err = s.Query(context.Background(), QueryOptions{Certainty: types.CertaintyNo})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].FamilyHistory)
	assert.Equal(t, []string{"J18.9", "C0032285"}, results[0].Codes)
	assert.Empty(t, results[0].Parent)
}

func TestQueryRejectsCorruptCodes(t *testing.T) {
	s, dir := testSetup(t)
	writeResult(t, dir, "note-1", sampleResult(""))
	ingest(t, s, dir)

	_, err := s.db.Exec(`UPDATE objects SET codes = 'R07.4' WHERE text = 'chest pain'`)
	require.NoError(t, err)

	_, err = s.Query(context.Background(), QueryOptions{Role: types.RoleObservation})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding codes")
}

func TestQueryOptionsIsEmpty(t *testing.T) {
	assert.True(t, QueryOptions{}.IsEmpty())
	assert.True(t, QueryOptions{MaxResults: 5}.IsEmpty())
	assert.False(t, QueryOptions{Code: "R50.9"}.IsEmpty())
}

func TestExport(t *testing.T) {
	s, dir := testSetup(t)
	writeResult(t, dir, "note-1", sampleResult(""))
	ingest(t, s, dir)

	path, err := s.ExportJSON(context.Background(), QueryOptions{Role: types.RoleObservation})
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var fromJSON []QueryResult
	require.NoError(t, json.Unmarshal(data, &fromJSON))
	assert.Len(t, fromJSON, 2)

	path, err = s.ExportYAML(context.Background(), QueryOptions{Code: "nothing"})
	require.NoError(t, err)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

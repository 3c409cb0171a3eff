// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists extraction results in SQLite and answers queries
// over them: full-text search on sentence text plus filters on code, role,
// certainty, family history and document.
package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/semex/internal/tabular"
	"github.com/pdiddy/semex/pkg/types"
)

const (
	indexDir     = "index"
	dbFile       = "semex.db"
	resultSuffix = "-objects.yaml"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store manages the results database.
type Store struct {
	db         *sql.DB
	dir        string
	maxResults int
}

// NewStore opens or creates the database at cfg.Dir/index/semex.db and
// migrates its schema to the latest version.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.Dir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{
		db:         db,
		dir:        cfg.Dir,
		maxResults: maxResults,
	}

	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// runMigrations brings the schema up to the latest embedded migration.
func (s *Store) runMigrations() error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("opening migrations: %w", err)
	}
	driver, err := sqlite3.WithInstance(s.db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("creating migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("creating migrate instance: %w", err)
	}
	// m.Close would close s.db through the driver.

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// SchemaVersion returns the applied migration version and whether the last
// migration left the schema dirty.
func (s *Store) SchemaVersion(ctx context.Context) (version int, dirty bool, err error) {
	err = s.db.QueryRowContext(ctx,
		`SELECT version, dirty FROM schema_migrations LIMIT 1`,
	).Scan(&version, &dirty)
	if err != nil {
		return 0, false, fmt.Errorf("reading schema version: %w", err)
	}
	return version, dirty, nil
}

// IngestSummary holds counts from an indexing run.
type IngestSummary struct {
	Indexed int
	Updated int
	Skipped int
	Failed  int
}

// Total returns the number of result files processed.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// Ingest reads the <id>-objects.yaml result files in resultsDir into the
// database. Files whose modification time matches the last ingest are
// skipped; changed files replace the document's previous rows. On any
// change it refreshes export.yaml.
func (s *Store) Ingest(ctx context.Context, resultsDir string, w io.Writer) (IngestSummary, error) {
	entries, err := os.ReadDir(resultsDir)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("reading results directory %s: %w", resultsDir, err)
	}

	var summary IngestSummary

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), resultSuffix) {
			continue
		}

		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		docID := strings.TrimSuffix(entry.Name(), resultSuffix)
		filePath := filepath.Join(resultsDir, entry.Name())

		info, err := entry.Info()
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", docID, err)
			summary.Failed++
			continue
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

		var storedModTime string
		err = s.db.QueryRowContext(ctx,
			`SELECT file_mod_time FROM indexing_status WHERE document_id = ?`, docID,
		).Scan(&storedModTime)

		if err == nil && storedModTime == modTime {
			fmt.Fprintf(w, "skipped %s\n", docID)
			summary.Skipped++
			continue
		}

		isUpdate := err == nil

		data, err := os.ReadFile(filePath)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", docID, err)
			summary.Failed++
			continue
		}

		var result types.ExtractionResult
		if err := yaml.Unmarshal(data, &result); err != nil {
			fmt.Fprintf(w, "failed  %s: parse error: %v\n", docID, err)
			summary.Failed++
			continue
		}
		result.DocumentID = docID

		if err := s.ingestDocument(ctx, &result, modTime); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", docID, err)
			summary.Failed++
			continue
		}

		if isUpdate {
			fmt.Fprintf(w, "updated %s (%d objects)\n", docID, result.ObjectCount())
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexing %s (%d objects)\n", docID, result.ObjectCount())
			summary.Indexed++
		}
	}

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed)

	if summary.Indexed > 0 || summary.Updated > 0 {
		if _, err := s.ExportYAML(ctx, QueryOptions{}); err != nil {
			fmt.Fprintf(w, "warning: export.yaml write failed: %v\n", err)
		}
	}

	return summary, nil
}

func (s *Store) ingestDocument(ctx context.Context, result *types.ExtractionResult, modTime string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// Cascades to sentences and objects.
	if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, result.DocumentID); err != nil {
		return fmt.Errorf("deleting old rows: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO documents (id, source) VALUES (?, ?)`, result.DocumentID, result.Source,
	); err != nil {
		return fmt.Errorf("inserting document: %w", err)
	}

	sentStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO sentences (document_id, idx, text, start_offset, end_offset) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing sentence insert: %w", err)
	}
	defer sentStmt.Close()

	for _, sent := range result.Sentences {
		if _, err := sentStmt.ExecContext(ctx,
			result.DocumentID, sent.Index, sent.Text, sent.Start, sent.End,
		); err != nil {
			return fmt.Errorf("inserting sentence %d: %w", sent.Index, err)
		}
	}

	objStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO objects (document_id, sentence_idx, seq, parent_seq, text, role, certainty,
			family_history, historical, start_offset, end_offset, codes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing object insert: %w", err)
	}
	defer objStmt.Close()

	for _, row := range tabular.Rows(*result) {
		codesJSON, err := json.Marshal(row.Codes)
		if err != nil {
			return fmt.Errorf("encoding codes of object %d: %w", row.Object, err)
		}
		if _, err := objStmt.ExecContext(ctx,
			result.DocumentID, row.Sentence, row.Object, row.Parent, row.Text,
			string(row.Role), string(row.Certainty), row.FamilyHistory, row.Historical,
			row.Start, row.End, string(codesJSON),
		); err != nil {
			return fmt.Errorf("inserting object %d: %w", row.Object, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO indexing_status (document_id, file_mod_time) VALUES (?, ?)
		 ON CONFLICT(document_id) DO UPDATE SET file_mod_time=excluded.file_mod_time`,
		result.DocumentID, modTime,
	)
	if err != nil {
		return fmt.Errorf("updating indexing status: %w", err)
	}

	return tx.Commit()
}

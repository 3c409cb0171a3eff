// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package batch extracts every note in a directory and writes one YAML
// result file per note. A note that fails is reported and counted; the run
// continues with the rest.
package batch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/semex/internal/metrics"
	"github.com/pdiddy/semex/pkg/semex"
	"github.com/pdiddy/semex/pkg/types"
)

const (
	noteExt      = ".txt"
	resultSuffix = "-objects.yaml"
	maxWorkers   = 4
)

// Extractor runs the pipeline over one text. *semex.Processor implements it.
type Extractor interface {
	Extract(ctx context.Context, text string) (*semex.Document, error)
}

// Summary holds counts from a batch run.
type Summary struct {
	Extracted int
	Skipped   int
	Failed    int
}

// Total returns the number of notes processed.
func (s Summary) Total() int {
	return s.Extracted + s.Skipped + s.Failed
}

// HasFailures reports whether any note failed.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

// ResultPath returns where the result for a note id is written.
func ResultPath(outputDir, id string) string {
	return filepath.Join(outputDir, id+resultSuffix)
}

// ExtractAll processes every *.txt note in cfg.NotesDir with up to
// cfg.Workers notes in flight and writes results to cfg.OutputDir. Notes
// older than their result file are skipped. Progress lines go to w.
// Only directory errors and cancellation abort the run.
func ExtractAll(ctx context.Context, ext Extractor, cfg types.BatchConfig, m *metrics.Metrics, w io.Writer) (Summary, error) {
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return Summary{}, fmt.Errorf("creating output directory: %w", err)
	}

	ids, err := listNotes(cfg.NotesDir)
	if err != nil {
		return Summary{}, err
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = maxWorkers
	}

	var (
		mu      sync.Mutex
		summary Summary
	)
	report := func(status, format string, args ...any) {
		mu.Lock()
		defer mu.Unlock()
		switch status {
		case metrics.StatusExtracted:
			summary.Extracted++
		case metrics.StatusSkipped:
			summary.Skipped++
		case metrics.StatusFailed:
			summary.Failed++
		}
		m.Document(status)
		fmt.Fprintf(w, format, args...)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, id := range ids {
		id := id
		notePath := filepath.Join(cfg.NotesDir, id+noteExt)
		outPath := ResultPath(cfg.OutputDir, id)

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			changed, err := hasChanged(notePath, outPath)
			if err != nil {
				report(metrics.StatusFailed, "failed  %s: %v\n", id, err)
				return nil
			}
			if !changed {
				report(metrics.StatusSkipped, "skipped %s\n", id)
				return nil
			}

			result, err := ExtractNote(gctx, ext, id, notePath)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				report(metrics.StatusFailed, "failed  %s: %v\n", id, err)
				return nil
			}

			if err := WriteResult(outPath, result); err != nil {
				report(metrics.StatusFailed, "failed  %s: write error: %v\n", id, err)
				return nil
			}

			report(metrics.StatusExtracted, "extracted %s (%d objects)\n", id, result.ObjectCount())
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return summary, fmt.Errorf("batch cancelled: %w", err)
	}
	return summary, nil
}

// ExtractNote extracts a single note file.
func ExtractNote(ctx context.Context, ext Extractor, id, path string) (*types.ExtractionResult, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading note %s: %w", path, err)
	}

	doc, err := ext.Extract(ctx, string(content))
	if err != nil {
		return nil, fmt.Errorf("extracting %s: %w", id, err)
	}

	result := doc.Record(id)
	result.Source = path
	return &result, nil
}

// WriteResult marshals a result to a YAML file.
func WriteResult(path string, result *types.ExtractionResult) error {
	data, err := yaml.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// listNotes returns the ids of the notes in dir, sorted.
func listNotes(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading notes directory %s: %w", dir, err)
	}

	var ids []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), noteExt) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(entry.Name(), noteExt))
	}
	sort.Strings(ids)
	return ids, nil
}

// hasChanged reports whether the note is newer than its result file.
// Returns true if the result does not exist yet.
func hasChanged(notePath, outPath string) (bool, error) {
	noteInfo, err := os.Stat(notePath)
	if err != nil {
		return false, fmt.Errorf("stat note %s: %w", notePath, err)
	}

	outInfo, err := os.Stat(outPath)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, fmt.Errorf("stat result %s: %w", outPath, err)
	}

	return noteInfo.ModTime().After(outInfo.ModTime()), nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/semex/internal/batch"
	"github.com/pdiddy/semex/internal/metrics"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Extract every note in a directory",
	Long: `Batch extracts each *.txt note in the notes directory and writes one
<id>-objects.yaml result per note to the output directory. Notes whose result
is newer than the note are skipped. A note that fails is reported and the
run continues; the command exits non-zero if any note failed.

With --metrics-file the run's counters are written in the Prometheus
textfile format.`,
	RunE: runBatch,
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if v, _ := cmd.Flags().GetString("notes-dir"); v != "" {
		cfg.Batch.NotesDir = v
	}
	if v, _ := cmd.Flags().GetString("output-dir"); v != "" {
		cfg.Batch.OutputDir = v
	}
	if v, _ := cmd.Flags().GetInt("workers"); v > 0 {
		cfg.Batch.Workers = v
	}
	if v, _ := cmd.Flags().GetString("metrics-file"); v != "" {
		cfg.MetricsFile = v
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := metrics.New()
	p, err := newProcessor(cfg, m)
	if err != nil {
		return err
	}

	summary, err := batch.ExtractAll(ctx, p, cfg.Batch, m, cmd.OutOrStdout())
	if cfg.MetricsFile != "" {
		if werr := m.WriteTextfile(cfg.MetricsFile); werr != nil {
			logger.Warn("metrics not written", zap.String("file", cfg.MetricsFile), zap.Error(werr))
		}
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nextracted: %d, skipped: %d, failed: %d\n",
		summary.Extracted, summary.Skipped, summary.Failed)
	if summary.HasFailures() {
		return fmt.Errorf("%d note(s) failed extraction", summary.Failed)
	}
	return nil
}

func init() {
	batchCmd.Flags().String("notes-dir", "", "directory of *.txt notes (default from config)")
	batchCmd.Flags().String("output-dir", "", "directory for <id>-objects.yaml results (default from config)")
	batchCmd.Flags().Int("workers", 0, "concurrent extractions (default from config)")
	batchCmd.Flags().String("metrics-file", "", "write Prometheus textfile metrics here")

	rootCmd.AddCommand(batchCmd)
}

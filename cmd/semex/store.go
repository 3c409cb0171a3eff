// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/semex/internal/store"
	"github.com/pdiddy/semex/pkg/types"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Index batch results and query them",
	Long: `Store manages a local SQLite database built from batch extraction
results. Use subcommands to index results, query them, or export.`,
}

// --- index subcommand ---

var storeIndexCmd = &cobra.Command{
	Use:   "index",
	Short: "Ingest batch results into the database",
	Long: `Index reads the <id>-objects.yaml files written by batch, stores their
sentences and objects in SQLite with full-text indexing over sentence text,
and refreshes index/export.yaml. Unchanged results are skipped on later runs.`,
	RunE: runStoreIndex,
}

func runStoreIndex(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	resultsDir, _ := cmd.Flags().GetString("results-dir")
	if resultsDir == "" {
		resultsDir = cfg.Batch.OutputDir
	}

	s, err := openStore(cmd, cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	summary, err := s.Ingest(context.Background(), resultsDir, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d result(s) failed indexing", summary.Failed)
	}
	return nil
}

// --- query subcommand ---

var storeQueryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Search stored objects",
	Long: `Query searches indexed objects using full-text search over sentence
text, structured filters (code, role, certainty, family history, document),
or a combination of both.`,
	RunE: runStoreQuery,
}

func runStoreQuery(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	opts, err := queryOptsFromFlags(cmd, args)
	if err != nil {
		return err
	}
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide search text, --code, --role, --certainty, --family-history or --document")
	}

	s, err := openStore(cmd, cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	results, err := s.Query(context.Background(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatQueryOutput(cmd.OutOrStdout(), results, jsonOutput)
}

func formatQueryOutput(w io.Writer, results []store.QueryResult, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Fprintln(w, "No results found.")
		return nil
	}

	fmt.Fprintf(w, "%-20s  %-4s  %-30s  %-12s  %-7s  %-3s  %s\n",
		"Document", "Sent", "Text", "Role", "Certain", "FH", "Codes")
	fmt.Fprintln(w, strings.Repeat("-", 100))

	for _, r := range results {
		fh := ""
		if r.FamilyHistory {
			fh = "yes"
		}
		fmt.Fprintf(w, "%-20s  %-4d  %-30s  %-12s  %-7s  %-3s  %s\n",
			truncate(r.DocumentID, 20), r.Sentence, truncate(r.Text, 30),
			r.Role, r.Certainty, fh, strings.Join(r.Codes, ","))
	}

	fmt.Fprintf(w, "\n%d results\n", len(results))
	return nil
}

// --- export subcommand ---

var storeExportCmd = &cobra.Command{
	Use:   "export [text]",
	Short: "Export stored objects to YAML or JSON",
	Long: `Export writes every stored object (or a filtered subset) to
index/export.yaml or index/export.json under the store directory. Supports
the same filters as query.`,
	RunE: runStoreExport,
}

func runStoreExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	format, _ := cmd.Flags().GetString("format")
	opts, err := queryOptsFromFlags(cmd, args)
	if err != nil {
		return err
	}

	s, err := openStore(cmd, cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	var path string
	switch format {
	case "yaml", "":
		path, err = s.ExportYAML(context.Background(), opts)
	case "json":
		path, err = s.ExportJSON(context.Background(), opts)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", path)
	return nil
}

// --- shared helpers ---

func openStore(cmd *cobra.Command, cfg types.Config) (*store.Store, error) {
	if dir, _ := cmd.Flags().GetString("store-dir"); dir != "" {
		cfg.Store.Dir = dir
	}
	return store.NewStore(cfg.Store)
}

func queryOptsFromFlags(cmd *cobra.Command, args []string) (store.QueryOptions, error) {
	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}
	code, _ := cmd.Flags().GetString("code")
	documentID, _ := cmd.Flags().GetString("document")
	topLevel, _ := cmd.Flags().GetBool("top-level")
	limit, _ := cmd.Flags().GetInt("limit")

	opts := store.QueryOptions{
		Query:      queryText,
		Code:       code,
		DocumentID: documentID,
		TopLevel:   topLevel,
		MaxResults: limit,
	}

	if v, _ := cmd.Flags().GetString("role"); v != "" {
		role, err := types.ParseRole(v)
		if err != nil {
			return opts, err
		}
		opts.Role = role
	}
	if v, _ := cmd.Flags().GetString("certainty"); v != "" {
		c, err := types.ParseCertainty(v)
		if err != nil {
			return opts, err
		}
		opts.Certainty = c
	}
	if cmd.Flags().Changed("family-history") {
		fh, _ := cmd.Flags().GetBool("family-history")
		opts.FamilyHistory = &fh
	}
	return opts, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("query", "", "full-text search over sentence text")
	cmd.Flags().String("code", "", "filter by code")
	cmd.Flags().String("role", "", "filter by role")
	cmd.Flags().String("certainty", "", "filter by certainty: YES, NO, UNCLEAR")
	cmd.Flags().Bool("family-history", false, "filter by family-history flag")
	cmd.Flags().String("document", "", "filter by document ID")
	cmd.Flags().Bool("top-level", false, "exclude attached modifiers")
}

func init() {
	storeCmd.PersistentFlags().String("store-dir", "", "base directory for the store (contains index/)")

	storeIndexCmd.Flags().String("results-dir", "", "directory of batch results (default: batch.output_dir)")

	addFilterFlags(storeQueryCmd)
	storeQueryCmd.Flags().Int("limit", 0, "maximum number of results (default: store.max_results)")
	storeQueryCmd.Flags().Bool("json", false, "output results as JSON")

	addFilterFlags(storeExportCmd)
	storeExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	storeCmd.AddCommand(storeIndexCmd)
	storeCmd.AddCommand(storeQueryCmd)
	storeCmd.AddCommand(storeExportCmd)
	rootCmd.AddCommand(storeCmd)
}

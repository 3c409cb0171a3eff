// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/semex/internal/tabular"
	"github.com/pdiddy/semex/pkg/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract [text...]",
	Short: "Extract coded findings from one text",
	Long: `Extract runs the pipeline over a single text and prints every sentence
with its findings, certainty and attached descriptors.

The text comes from the arguments, from --file, or from standard input when
neither is given (or --file is "-"). Output is YAML by default; json, tsv and
csv are also available. The tabular formats print one row per object with
modifiers pointing at their parent row.`,
	RunE: runExtract,
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	file, _ := cmd.Flags().GetString("file")
	format, _ := cmd.Flags().GetString("format")
	id, _ := cmd.Flags().GetString("id")

	text, source, err := readInput(cmd.InOrStdin(), file, args)
	if err != nil {
		return err
	}
	if id == "" {
		id = documentID(source)
	}

	p, err := newProcessor(cfg, nil)
	if err != nil {
		return err
	}

	doc, err := p.Extract(context.Background(), text)
	if err != nil {
		return err
	}
	result := doc.Record(id)
	result.Source = source

	return writeResult(cmd.OutOrStdout(), format, result)
}

func readInput(stdin io.Reader, file string, args []string) (text, source string, err error) {
	switch {
	case file != "" && file != "-":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", "", fmt.Errorf("reading %s: %w", file, err)
		}
		return string(data), file, nil
	case len(args) > 0 && file == "":
		return strings.Join(args, " "), "", nil
	default:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), "", nil
	}
}

func documentID(source string) string {
	if source == "" {
		return "stdin"
	}
	return strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
}

func writeResult(w io.Writer, format string, result types.ExtractionResult) error {
	switch format {
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(&result); err != nil {
			return fmt.Errorf("encoding YAML: %w", err)
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	default:
		f, err := tabular.ParseFormat(format)
		if err != nil {
			return fmt.Errorf("unsupported format %q: use yaml, json, tsv or csv", format)
		}
		return tabular.Write(w, f, tabular.Rows(result))
	}
}

func init() {
	extractCmd.Flags().String("file", "", `read the text from a file ("-" for stdin)`)
	extractCmd.Flags().String("format", "yaml", "output format: yaml, json, tsv, csv")
	extractCmd.Flags().String("id", "", "document ID recorded in the output (default: file name or stdin)")

	rootCmd.AddCommand(extractCmd)
}

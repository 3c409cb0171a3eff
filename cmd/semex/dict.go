// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/semex/pkg/types"
)

var dictCmd = &cobra.Command{
	Use:   "dict",
	Short: "Inspect and test vocabularies",
	Long: `Dict checks vocabulary files and lists what the configured dictionaries
register. Vocabulary changes made here last for the command only; add terms
to a file in the dictionary directory to keep them.`,
}

// --- load subcommand ---

var dictLoadCmd = &cobra.Command{
	Use:   "load <path>...",
	Short: "Load vocabulary files and report per-file counts",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDictLoad,
}

func runDictLoad(cmd *cobra.Command, args []string) error {
	role, err := roleFlag(cmd, true)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	p, err := newProcessor(cfg, nil)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	failed := 0
	for _, path := range args {
		summary, err := p.LoadVocabulary(path, role)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", path, err)
			failed++
			continue
		}
		fmt.Fprintf(w, "loaded  %s: %d terms, %d skipped, %d conflicts\n",
			path, summary.Loaded, summary.Skipped, summary.Conflicts)
	}
	if failed > 0 {
		return fmt.Errorf("%d file(s) could not be loaded", failed)
	}
	return nil
}

// --- add subcommand ---

var dictAddCmd = &cobra.Command{
	Use:   "add <term> [code]",
	Short: "Check whether a term can be registered",
	Long: `Add registers one term against the configured dictionaries and reports
whether it was accepted. A term without a code uses its uppercased self.
A term already registered under another role is rejected. NEGATOR,
SPECULATION and CONFIRMER terms govern the words after them unless --post
is set.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runDictAdd,
}

func runDictAdd(cmd *cobra.Command, args []string) error {
	role, err := roleFlag(cmd, true)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	p, err := newProcessor(cfg, nil)
	if err != nil {
		return err
	}

	term := args[0]
	code := strings.ToUpper(strings.TrimSpace(term))
	if len(args) == 2 {
		code = args[1]
	}
	dir := types.DirectionPre
	if post, _ := cmd.Flags().GetBool("post"); post {
		dir = types.DirectionPost
	}
	if !p.AddCue(term, code, role, dir) {
		return fmt.Errorf("term %q not registered as %s", term, role)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "added %q as %s (%s)\n", term, role, code)
	return nil
}

// --- list subcommand ---

var dictListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered terms",
	RunE:  runDictList,
}

func runDictList(cmd *cobra.Command, args []string) error {
	role, err := roleFlag(cmd, false)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	p, err := newProcessor(cfg, nil)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	n := 0
	for _, e := range p.Entries() {
		if role != "" && e.Role != role {
			continue
		}
		fmt.Fprintf(w, "%-12s  %-4s  %-40s  %s\n", e.Role, e.Direction, e.Term, strings.Join(e.Codes, ","))
		n++
	}
	fmt.Fprintf(w, "\n%d terms\n", n)
	return nil
}

// --- shared helpers ---

func roleFlag(cmd *cobra.Command, required bool) (types.Role, error) {
	name, _ := cmd.Flags().GetString("role")
	if name == "" {
		if required {
			return "", fmt.Errorf("--role is required: one of %s", roleNames())
		}
		return "", nil
	}
	role, err := types.ParseRole(name)
	if err != nil {
		return "", fmt.Errorf("%w: use one of %s", err, roleNames())
	}
	return role, nil
}

func roleNames() string {
	names := make([]string, len(types.AllRoles))
	for i, r := range types.AllRoles {
		names[i] = string(r)
	}
	return strings.Join(names, ", ")
}

func init() {
	dictLoadCmd.Flags().String("role", "", "role the file's terms are registered under")
	dictAddCmd.Flags().String("role", "", "role the term is registered under")
	dictAddCmd.Flags().Bool("post", false, "cue governs the words before it")
	dictListCmd.Flags().String("role", "", "only list terms of this role")

	dictCmd.AddCommand(dictLoadCmd)
	dictCmd.AddCommand(dictAddCmd)
	dictCmd.AddCommand(dictListCmd)
	rootCmd.AddCommand(dictCmd)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/semex/pkg/semex"
)

var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "List the roles a term can be registered under",
	Run: func(cmd *cobra.Command, args []string) {
		for _, r := range semex.Roles() {
			fmt.Fprintln(cmd.OutOrStdout(), r)
		}
	},
}

var certaintiesCmd = &cobra.Command{
	Use:   "certainties",
	Short: "List the certainty levels an object can carry",
	Run: func(cmd *cobra.Command, args []string) {
		for _, c := range semex.Certainties() {
			fmt.Fprintln(cmd.OutOrStdout(), c)
		}
	},
}

func init() {
	rootCmd.AddCommand(rolesCmd)
	rootCmd.AddCommand(certaintiesCmd)
}

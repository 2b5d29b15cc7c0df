package main

import (
	"github.com/spf13/cobra"

	"example.com/adaptive-budget/backend/internal/engine"
)

func newTablesCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "Print the effective allocation tables as TOML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tables, err := root.loadTables()
			if err != nil {
				return err
			}
			if err := tables.Validate(); err != nil {
				return err
			}

			return engine.WriteTables(cmd.OutOrStdout(), tables)
		},
	}
}

package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"example.com/adaptive-budget/backend/internal/config"
	"example.com/adaptive-budget/backend/internal/engine"
)

type rootOptions struct {
	tablesFile string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "budgetctl",
		Short:        "Adaptive budget engine tools",
		Long:         "Generate and validate budgets locally, inspect allocation tables and mint development tokens.",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.tablesFile, "tables", "", "TOML tables file (defaults to ENGINE_TABLES_FILE or built-in tables)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log engine and provider activity to stderr")

	cmd.AddCommand(
		newGenerateCmd(opts),
		newValidateCmd(),
		newTablesCmd(opts),
		newTokenCmd(),
	)

	return cmd
}

// loadTables resolves the tables file from the flag, then the environment.
func (o *rootOptions) loadTables() (engine.Tables, error) {
	path := o.tablesFile
	if path == "" {
		cfg, err := config.LoadEngine()
		if err != nil {
			return engine.Tables{}, err
		}
		path = cfg.TablesFile
	}

	if path == "" {
		return engine.DefaultTables(), nil
	}

	return engine.LoadTables(path)
}

func (o *rootOptions) logger() *slog.Logger {
	if !o.verbose {
		return slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func writeJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

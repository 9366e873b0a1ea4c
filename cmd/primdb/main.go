// Package main provides the primdb CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/primdb/primdb/internal/engine"
	"github.com/primdb/primdb/internal/storage"
	"github.com/primdb/primdb/internal/types"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	flagConfig   string
	flagDataDir  string
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:   "primdb",
	Short: "Interactive JSON-file table store",
	Long: `primdb is a single-user interactive database that keeps each table in
its own JSON file. It reads commands one per line (create_table, insert,
select, update, delete, ...) and persists every mutation as a whole-file
rewrite. Type 'help' at the prompt for the command summary.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().StringVar(&flagConfig, "config", DefaultConfigFile, "Path to the YAML config file")
	rootCmd.Flags().StringVar(&flagDataDir, "data-dir", "", "Directory holding the table files")
	rootCmd.Flags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warning, error, none")
	rootCmd.Version = Version
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfig(flagConfig, flagDataDir, flagLogLevel)
	if err != nil {
		return err
	}

	level, err := types.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger := types.NewLogger(level, os.Stderr)

	store, err := storage.NewJSONStore(cfg.DataDir)
	if err != nil {
		return err
	}

	return runREPL(engine.New(store), logger, cfg.HistoryFile)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

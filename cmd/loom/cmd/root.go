package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "loom",
	Short: "Wiring harness document processor",
	Long: `loom reads declarative YAML harness documents and produces a structural
graph description, a Graphviz diagram source and a bill of materials.

Examples:
  loom build harness.yml                    # harness.gv, harness.tsv
  loom build -f gtj harness.yml             # also write the JSON graph
  loom build -p common.yml car1.yml car2.yml`,
	Version: "1.0.0",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

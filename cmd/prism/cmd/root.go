package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:          "prism",
	Short:        "prism - tree-sitter HTML syntax highlighting",
	Long:         "Render source code as syntax-highlighted HTML tables, building tree-sitter grammars on demand.",
	SilenceUsage: true,
}

// newLogger builds the CLI logger: debug-level text on stderr when
// --verbose, silent otherwise.
func newLogger() *slog.Logger {
	if verbose {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging on stderr")
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(grammarCmd)
}

package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/corey/prism"
)

var (
	renderLang  string
	renderOut   string
	renderTheme string
)

var renderCmd = &cobra.Command{
	Use:   "render [file]",
	Short: "Render a source file (or stdin) as highlighted HTML",
	Long: `Render source code as an HTML table with line numbers.

The language is taken from --lang, or inferred from the file extension.
Reading from stdin requires --lang. A missing grammar is built on the
first use: the grammar repository is cloned, parser sources generated,
and a shared library compiled into ~/.cache/tree-sitter/lib.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&renderLang, "lang", "l", "", "language name, alias, or extension")
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "", "write HTML to file instead of stdout")
	renderCmd.Flags().StringVar(&renderTheme, "theme", "", "tree-sitter config file with a theme section")
}

func runRender(cmd *cobra.Command, args []string) error {
	var source []byte
	var err error
	language := prism.ParseLanguage(renderLang, prism.None)

	if len(args) == 1 {
		source, err = os.ReadFile(args[0])
		if err != nil {
			return err
		}
		if language == prism.None {
			language = prism.ParseLanguage(filepath.Ext(args[0]), prism.None)
		}
	} else {
		source, err = io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return err
		}
	}
	if language == prism.None {
		return fmt.Errorf("cannot determine language; pass --lang")
	}

	opts := []prism.Option{
		prism.WithLogger(newLogger()),
		prism.WithBuildLedger(),
	}
	if renderTheme != "" {
		opts = append(opts, prism.WithThemePath(renderTheme))
	}
	r, err := prism.New(opts...)
	if err != nil {
		return err
	}
	defer r.Close()

	html, err := r.Render(cmd.Context(), string(source), language)
	if err != nil {
		return err
	}

	if renderOut != "" {
		return os.WriteFile(renderOut, []byte(html), 0644)
	}
	_, err = io.WriteString(cmd.OutOrStdout(), html)
	return err
}

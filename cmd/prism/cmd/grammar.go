package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	appbbolt "github.com/corey/prism/internal/adapters/bbolt"
	appgit "github.com/corey/prism/internal/adapters/git"
	"github.com/corey/prism/internal/adapters/toolchain"
	"github.com/corey/prism/internal/app"
	"github.com/corey/prism/internal/lang"
	"github.com/corey/prism/internal/ports"
)

var grammarCmd = &cobra.Command{
	Use:   "grammar",
	Short: "Manage cached tree-sitter grammars",
	Long:  "List, inspect, and build the grammar shared libraries the renderer loads.",
}

var grammarListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known languages and their cache state",
	RunE:  runGrammarList,
}

var grammarInfoCmd = &cobra.Command{
	Use:   "info <language>",
	Short: "Show details about one language's grammar",
	Args:  cobra.ExactArgs(1),
	RunE:  runGrammarInfo,
}

var grammarInstallCmd = &cobra.Command{
	Use:   "install <language>...",
	Short: "Build grammars into the cache ahead of first use",
	Long: `Clone, generate, and compile grammars now rather than on the first
render. Requires the tree-sitter CLI and a C compiler on PATH.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGrammarInstall,
}

var grammarPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show grammar cache directories",
	RunE:  runGrammarPath,
}

func init() {
	grammarCmd.AddCommand(grammarListCmd)
	grammarCmd.AddCommand(grammarInfoCmd)
	grammarCmd.AddCommand(grammarInstallCmd)
	grammarCmd.AddCommand(grammarPathCmd)
}

// openLedger returns the build ledger, or nil when it cannot be opened
// (fresh cache, locked db). Callers treat nil as "no records".
func openLedger(paths *app.CachePaths) ports.Ledger {
	ledger, err := appbbolt.Open(paths.LedgerDB)
	if err != nil {
		return nil
	}
	return ledger
}

func runGrammarList(cmd *cobra.Command, args []string) error {
	paths, err := app.NewCachePaths()
	if err != nil {
		return err
	}
	ledger := openLedger(paths)
	if ledger != nil {
		defer ledger.Close()
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-12s %-8s %-10s %s\n", "LANGUAGE", "EXT", "STATUS", "BUILT")
	for _, l := range lang.All() {
		status := "missing"
		if l.SOName() == "" {
			status = "n/a"
		} else if _, err := paths.Probe(l); err == nil {
			status = "cached"
		}

		built := ""
		if ledger != nil {
			if rec, err := ledger.LookupBuild(l.String()); err == nil && rec != nil {
				built = rec.BuiltAt.Format("2006-01-02 15:04")
			}
		}
		fmt.Fprintf(out, "%-12s %-8s %-10s %s\n", l.String(), l.Extension(), status, built)
	}
	fmt.Fprintf(out, "\nCache: %s\n", paths.Root)
	return nil
}

func runGrammarInfo(cmd *cobra.Command, args []string) error {
	l := lang.Parse(args[0], lang.None)
	if l == lang.None {
		return fmt.Errorf("unknown language: %s", args[0])
	}
	paths, err := app.NewCachePaths()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Language:   %s\n", l.String())
	fmt.Fprintf(out, "Extension:  %s\n", l.Extension())
	if l.RepoURL() != "" {
		fmt.Fprintf(out, "Repository: %s\n", l.RepoURL())
		fmt.Fprintf(out, "Clone dir:  %s\n", paths.ClonePath(l.RepoURL()))
	} else {
		fmt.Fprintln(out, "Repository: (none: provisioning not supported)")
	}

	if soPath, err := paths.Probe(l); err == nil {
		fmt.Fprintf(out, "Artifact:   %s (cached)\n", soPath)
	} else if l.SOName() != "" {
		fmt.Fprintf(out, "Artifact:   %s (not built)\n", l.SOName())
	} else {
		fmt.Fprintln(out, "Artifact:   (none)")
	}

	if ledger := openLedger(paths); ledger != nil {
		defer ledger.Close()
		if rec, err := ledger.LookupBuild(l.String()); err == nil && rec != nil {
			fmt.Fprintf(out, "Built:      %s (ABI %d)\n", rec.BuiltAt.Format("2006-01-02 15:04:05"), rec.ABIVersion)
		}
	}
	return nil
}

func runGrammarInstall(cmd *cobra.Command, args []string) error {
	var targets []lang.Language
	seen := make(map[lang.Language]bool)
	for _, arg := range args {
		l := lang.Parse(arg, lang.None)
		if l == lang.None {
			return fmt.Errorf("unknown language: %s\nKnown: %s", arg, knownLanguages())
		}
		if !seen[l] {
			seen[l] = true
			targets = append(targets, l)
		}
	}

	paths, err := app.NewCachePaths()
	if err != nil {
		return err
	}
	if err := paths.EnsureDirs(); err != nil {
		return err
	}
	ledger := openLedger(paths)
	if ledger != nil {
		defer ledger.Close()
	}

	prov := app.NewProvisioner(paths, appgit.NewClient(), &toolchain.Generator{}, &toolchain.Compiler{}, ledger, newLogger())
	out := cmd.OutOrStdout()
	var failed bool
	for _, l := range targets {
		fmt.Fprintf(out, "building %s...\n", l.String())
		if err := prov.Ensure(cmd.Context(), l); err != nil {
			failed = true
			if errors.Is(err, app.ErrLanguageNotSupported) {
				fmt.Fprintf(out, "  skip: no grammar repository defined for %s\n", l.String())
				continue
			}
			fmt.Fprintf(out, "  failed: %v\n", err)
			continue
		}
		soPath, _ := paths.ArtifactPath(l)
		fmt.Fprintf(out, "  ok: %s\n", soPath)
	}
	if failed {
		return fmt.Errorf("some grammars failed to build")
	}
	return nil
}

func runGrammarPath(cmd *cobra.Command, args []string) error {
	paths, err := app.NewCachePaths()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, d := range []struct{ label, path string }{
		{"lib", paths.LibDir},
		{"parsers", paths.ParserDir},
		{"ledger", paths.LedgerDB},
	} {
		exists := "  "
		if _, err := os.Stat(d.path); err == nil {
			exists = "* "
		}
		fmt.Fprintf(out, "%s%-8s %s\n", exists, d.label, d.path)
	}
	fmt.Fprintln(out, "\n* = exists")
	return nil
}

func knownLanguages() string {
	var names []string
	for _, l := range lang.All() {
		names = append(names, l.String())
	}
	return strings.Join(names, ", ")
}

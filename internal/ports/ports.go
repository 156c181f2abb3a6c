// Package ports defines the interfaces (contracts) that adapters must implement.
// These are the boundaries of the hexagonal architecture. The rendering
// pipeline depends only on these interfaces, never on concrete
// implementations, so provisioning and rendering logic is testable with
// in-memory fakes, with no network and no C compiler.
package ports

import "context"

// GitClient clones grammar repositories. The adapter (go-git) performs a
// full clone; the destination directory must not already exist.
type GitClient interface {
	// Clone fetches url into dest. Errors propagate to the caller
	// unchanged; the pipeline adds no retry logic.
	Clone(ctx context.Context, url, dest string) error
}

// GrammarGenerator turns a grammar definition into parser sources in place.
// The adapter shells out to the tree-sitter CLI.
type GrammarGenerator interface {
	// Generate produces parser.c (and friends) inside repoDir from the
	// grammar definition at grammarPath, targeting the given ABI version.
	Generate(ctx context.Context, repoDir, grammarPath string, abiVersion int) error
}

// GrammarCompiler builds a generated parser into a loadable shared library.
type GrammarCompiler interface {
	// Compile builds the parser sources under repoDir into a shared
	// library at outPath. outPath's parent directory must exist.
	Compile(ctx context.Context, repoDir, outPath string) error
}

package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/corey/prism/internal/lang"
)

// CachePaths holds the resolved filesystem layout of the grammar cache.
// All fields are pre-computed strings. The layout is shared with the
// tree-sitter CLI so artifacts built by either tool serve both:
//
//	<home>/.cache/tree-sitter/lib/<soname>      compiled grammars
//	<home>/.cache/tree-sitter/parsers/<repo>    grammar repository clones
type CachePaths struct {
	Root      string // <home>/.cache/tree-sitter/
	LibDir    string // <home>/.cache/tree-sitter/lib/
	ParserDir string // <home>/.cache/tree-sitter/parsers/
	LedgerDB  string // <home>/.cache/tree-sitter/prism.db
}

// NewCachePaths resolves the cache layout from the user's home directory.
// Fails with ErrSharedLibUnavailable when no home directory can be resolved.
func NewCachePaths() (*CachePaths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("%w: resolving home directory: %v", ErrSharedLibUnavailable, err)
	}
	return NewCachePathsAt(home), nil
}

// NewCachePathsAt builds the layout under an explicit home directory.
// Tests use this with t.TempDir().
func NewCachePathsAt(home string) *CachePaths {
	root := filepath.Join(home, ".cache", "tree-sitter")
	return &CachePaths{
		Root:      root,
		LibDir:    filepath.Join(root, "lib"),
		ParserDir: filepath.Join(root, "parsers"),
		LedgerDB:  filepath.Join(root, "prism.db"),
	}
}

// EnsureDirs creates the cache subdirectories. Idempotent.
func (p *CachePaths) EnsureDirs() error {
	for _, d := range []string{p.Root, p.LibDir, p.ParserDir} {
		if err := os.MkdirAll(d, 0755); err != nil {
			return err
		}
	}
	return nil
}

// ArtifactPath computes the expected shared-library path for a language.
// Fails with ErrSharedLibUnavailable when the language defines no soname.
func (p *CachePaths) ArtifactPath(l lang.Language) (string, error) {
	soName := l.SOName()
	if soName == "" {
		return "", fmt.Errorf("%w: %s defines no artifact name", ErrSharedLibUnavailable, l)
	}
	return filepath.Join(p.LibDir, soName), nil
}

// Probe reports whether the compiled artifact for a language exists,
// returning its path on success. The only side effect is a stat call.
func (p *CachePaths) Probe(l lang.Language) (string, error) {
	soPath, err := p.ArtifactPath(l)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(soPath); err != nil {
		return "", fmt.Errorf("%w: %s", ErrSharedLibUnavailable, soPath)
	}
	return soPath, nil
}

// ClonePath derives the local clone directory for a grammar repository:
// the last URL segment with its first extension stripped, under ParserDir.
// "…/tree-sitter-python.git" clones into "parsers/tree-sitter-python".
func (p *CachePaths) ClonePath(repoURL string) string {
	return filepath.Join(p.ParserDir, lang.RepoName(repoURL))
}

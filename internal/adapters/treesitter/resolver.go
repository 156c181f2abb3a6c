package treesitter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/corey/prism/internal/app"
	"github.com/corey/prism/internal/lang"
	"github.com/corey/prism/internal/ports"
)

// HighlightConfig is a ready-to-use highlight configuration: the loaded
// grammar plus its compiled highlights and injections queries, and the
// capture-index→tag table derived from the theme vocabulary. Built fresh
// per render call; owned by that call.
type HighlightConfig struct {
	name        string
	language    *tree_sitter.Language
	highlights  *tree_sitter.Query
	injections  *tree_sitter.Query // nil when the grammar ships none
	captureTags []string           // highlights capture index -> theme tag, "" = unrecognized
}

// LanguageName returns the grammar's canonical name.
func (c *HighlightConfig) LanguageName() string { return c.name }

// Resolver implements ports.ConfigResolver over the artifact cache and the
// grammar clone tree. The theme's highlight-tag vocabulary is registered at
// construction; captures outside it render unstyled.
type Resolver struct {
	libDir    string
	parserDir string
	names     []string
	loader    *DynamicLoader
}

// NewResolver builds a resolver rooted at the cache directories. loader is
// shared across resolvers so dlopen handles are reused between renders.
func NewResolver(loader *DynamicLoader, libDir, parserDir string, highlightNames []string) *Resolver {
	return &Resolver{
		libDir:    libDir,
		parserDir: parserDir,
		names:     highlightNames,
		loader:    loader,
	}
}

// Resolve locates the grammar and queries for a file extension. ok=false
// with nil error means no installed grammar matches the extension; the
// caller renders nothing. An artifact without a highlights query is a
// broken cache entry and fails with ErrHighlightQueryMissing.
func (r *Resolver) Resolve(ext string) (ports.HighlightConfig, bool, error) {
	l := lang.FromExtension(ext)
	if l == lang.None {
		return nil, false, nil
	}
	return r.resolveLanguage(l)
}

// InjectionConfig resolves a configuration for an injected language name
// (free-form, from an injection query). nil when the name is unknown or
// the grammar is not installed; the injected region then keeps the outer
// language's styling.
func (r *Resolver) InjectionConfig(name string) ports.HighlightConfig {
	l := lang.Parse(name, lang.None)
	if l == lang.None {
		return nil
	}
	cfg, ok, err := r.resolveLanguage(l)
	if err != nil || !ok {
		return nil
	}
	return cfg
}

func (r *Resolver) resolveLanguage(l lang.Language) (*HighlightConfig, bool, error) {
	soName := l.SOName()
	if soName == "" {
		return nil, false, nil
	}
	soPath := filepath.Join(r.libDir, soName)
	if _, err := os.Stat(soPath); err != nil {
		return nil, false, nil
	}

	queryDir := filepath.Join(r.parserDir, lang.RepoName(l.RepoURL()), "queries")
	highlightsSrc, err := os.ReadFile(filepath.Join(queryDir, "highlights.scm"))
	if err != nil {
		return nil, false, fmt.Errorf("%w: %s", app.ErrHighlightQueryMissing, l)
	}

	language, err := r.loader.LoadGrammar(l.String(), soPath)
	if err != nil {
		return nil, false, err
	}

	highlights, qerr := tree_sitter.NewQuery(language, string(highlightsSrc))
	if qerr != nil {
		return nil, false, fmt.Errorf("compile highlights query for %s: %w", l, qerr)
	}

	// Injections are optional; most data-format grammars ship none.
	var injections *tree_sitter.Query
	if injSrc, err := os.ReadFile(filepath.Join(queryDir, "injections.scm")); err == nil {
		if q, qerr := tree_sitter.NewQuery(language, string(injSrc)); qerr == nil {
			injections = q
		}
	}

	return &HighlightConfig{
		name:        l.String(),
		language:    language,
		highlights:  highlights,
		injections:  injections,
		captureTags: matchCaptures(highlights.CaptureNames(), r.names),
	}, true, nil
}

// matchCaptures maps each query capture name onto the theme vocabulary the
// way tree-sitter does: exact match first, then progressively dropping
// trailing dotted segments ("function.method.builtin" falls back through
// "function.method" to "function"). Unmatched captures map to "".
func matchCaptures(captureNames, vocabulary []string) []string {
	known := make(map[string]bool, len(vocabulary))
	for _, n := range vocabulary {
		known[n] = true
	}

	tags := make([]string, len(captureNames))
	for i, name := range captureNames {
		tag := name
		for {
			if known[tag] {
				tags[i] = tag
				break
			}
			j := strings.LastIndex(tag, ".")
			if j < 0 {
				break
			}
			tag = tag[:j]
		}
	}
	return tags
}

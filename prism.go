// Package prism renders blocks of source code as syntax-highlighted HTML
// tables using tree-sitter. Compiled grammars are provisioned on demand:
// on a cache miss the grammar repository is cloned, parser sources are
// generated with the tree-sitter CLI, and the result is compiled into a
// shared library under ~/.cache/tree-sitter/lib.
//
// One-shot use:
//
//	html, err := prism.Render("def f(a):\n    return a", prism.Python)
//
// A long-lived Renderer reuses loaded grammars across calls:
//
//	r, err := prism.New(prism.WithCacheWatcher())
//	defer r.Close()
//	html, err := r.Render(ctx, source, prism.Rust)
package prism

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	appbbolt "github.com/corey/prism/internal/adapters/bbolt"
	appfsnotify "github.com/corey/prism/internal/adapters/fsnotify"
	appgit "github.com/corey/prism/internal/adapters/git"
	"github.com/corey/prism/internal/adapters/toolchain"
	"github.com/corey/prism/internal/adapters/treesitter"
	"github.com/corey/prism/internal/app"
	"github.com/corey/prism/internal/lang"
	"github.com/corey/prism/internal/ports"
	"github.com/corey/prism/internal/theme"
)

// Language identifies a supported source language.
type Language = lang.Language

// Supported languages. None is the explicit not-found variant;
// ParseLanguage returns the given fallback for unrecognized input.
const (
	None       = lang.None
	Python     = lang.Python
	Rust       = lang.Rust
	Go         = lang.Go
	C          = lang.C
	JavaScript = lang.JavaScript
	JSON       = lang.JSON
	YAML       = lang.YAML
	TOML       = lang.TOML
	HTML       = lang.HTML
	Bash       = lang.Bash
	Markdown   = lang.Markdown
)

// ParseLanguage resolves a free-form language string (name, alias, or file
// extension, case-insensitive) to a Language, returning fallback when
// unrecognized.
func ParseLanguage(s string, fallback Language) Language {
	return lang.Parse(s, fallback)
}

// Error taxonomy. External-tool failures (clone, generate, compile,
// tokenize) propagate unchanged and are not covered by these sentinels.
var (
	ErrLanguageNotSupported     = app.ErrLanguageNotSupported
	ErrSharedLibUnavailable     = app.ErrSharedLibUnavailable
	ErrGrammarDefinitionMissing = app.ErrGrammarDefinitionMissing
	ErrHighlightQueryMissing    = app.ErrHighlightQueryMissing
)

type options struct {
	logger    *slog.Logger
	themePath string
	watch     bool
	ledger    bool
}

// Option configures a Renderer.
type Option func(*options)

// WithLogger routes pipeline logging to the given structured logger.
// Without it the library is silent.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithThemePath loads the theme from an explicit tree-sitter config file
// instead of the default user config location.
func WithThemePath(path string) Option {
	return func(o *options) { o.themePath = path }
}

// WithCacheWatcher watches the artifact cache and drops loaded grammars
// when their shared library is rebuilt, so a long-lived Renderer picks up
// new builds without restarting.
func WithCacheWatcher() Option {
	return func(o *options) { o.watch = true }
}

// WithBuildLedger records successful grammar builds in the cache-local
// bbolt database, for inspection by the prism CLI.
func WithBuildLedger() Option {
	return func(o *options) { o.ledger = true }
}

// Renderer is a reusable rendering pipeline sharing one grammar loader
// across calls. Safe for concurrent use.
type Renderer struct {
	svc     *app.Service
	loader  *treesitter.DynamicLoader
	watcher *appfsnotify.Watcher
	ledger  ports.Ledger
}

// New builds a Renderer with the production adapters: go-git cloning, the
// tree-sitter CLI for generation, the system C compiler, and purego-loaded
// grammars.
func New(opts ...Option) (*Renderer, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	paths, err := app.NewCachePaths()
	if err != nil {
		return nil, err
	}
	th, err := theme.Load(o.themePath)
	if err != nil {
		return nil, err
	}

	r := &Renderer{loader: treesitter.NewDynamicLoader()}

	if o.ledger {
		if err := paths.EnsureDirs(); err != nil {
			return nil, err
		}
		ledger, err := appbbolt.Open(paths.LedgerDB)
		if err != nil {
			return nil, fmt.Errorf("open build ledger: %w", err)
		}
		r.ledger = ledger
	}

	prov := app.NewProvisioner(paths, appgit.NewClient(), &toolchain.Generator{}, &toolchain.Compiler{}, r.ledger, logger)
	factory := func(names []string) ports.ConfigResolver {
		return treesitter.NewResolver(r.loader, paths.LibDir, paths.ParserDir, names)
	}
	r.svc = app.NewService(paths, prov, treesitter.NewHighlighter(), factory, th, logger)

	if o.watch {
		if err := paths.EnsureDirs(); err != nil {
			r.Close()
			return nil, err
		}
		w, err := appfsnotify.NewWatcher()
		if err != nil {
			r.Close()
			return nil, err
		}
		if err := w.Watch(paths.LibDir, r.loader.Invalidate); err != nil {
			w.Stop()
			r.Close()
			return nil, err
		}
		r.watcher = w
	}
	return r, nil
}

// Render highlights source as the given language and returns an HTML
// fragment: a <table> with one numbered row per source line. A language
// whose grammar matches nothing on disk renders as "".
func (r *Renderer) Render(ctx context.Context, source string, l Language) (string, error) {
	return r.svc.Render(ctx, source, l)
}

// Close releases the grammar loader, cache watcher, and ledger.
func (r *Renderer) Close() error {
	var firstErr error
	if r.watcher != nil {
		if err := r.watcher.Stop(); err != nil {
			firstErr = err
		}
	}
	if r.ledger != nil {
		if err := r.ledger.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	r.loader.Close()
	return firstErr
}

// Render is the one-shot entry point: build a default Renderer, render,
// release. Provisioning runs without a deadline; wrap in a Renderer and
// supply a context to bound it.
func Render(source string, l Language) (string, error) {
	r, err := New()
	if err != nil {
		return "", err
	}
	defer r.Close()
	return r.Render(context.Background(), source, l)
}

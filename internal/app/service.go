package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/corey/prism/internal/lang"
	"github.com/corey/prism/internal/ports"
	"github.com/corey/prism/internal/render"
	"github.com/corey/prism/internal/theme"
)

// ResolverFactory builds a fresh highlight-configuration resolver for one
// render call, with the given highlight-tag vocabulary registered.
type ResolverFactory func(highlightNames []string) ports.ConfigResolver

// Service is the rendering pipeline: probe the artifact cache, provision
// on a miss, resolve the highlight configuration, tokenize, serialize.
// Synchronous; one call renders one source block.
type Service struct {
	paths       *CachePaths
	prov        *Provisioner
	tok         ports.Tokenizer
	newResolver ResolverFactory
	theme       *theme.Theme
	log         *slog.Logger
}

// NewService wires the pipeline from its collaborators.
func NewService(paths *CachePaths, prov *Provisioner, tok ports.Tokenizer, newResolver ResolverFactory, th *theme.Theme, log *slog.Logger) *Service {
	return &Service{
		paths:       paths,
		prov:        prov,
		tok:         tok,
		newResolver: newResolver,
		theme:       th,
		log:         log,
	}
}

// Render highlights source as the given language and returns the HTML
// table fragment. A cache miss triggers exactly one provisioning attempt;
// a language whose grammar cannot match anything on disk renders as the
// empty string rather than failing.
func (s *Service) Render(ctx context.Context, source string, l lang.Language) (string, error) {
	ext := l.Extension()
	if ext == "" {
		return "", fmt.Errorf("%w: %s", ErrLanguageNotSupported, l)
	}

	if _, err := s.paths.Probe(l); err != nil {
		s.log.Debug("artifact not cached, provisioning", "language", l.String())
		if err := s.prov.Ensure(ctx, l); err != nil {
			return "", err
		}
	}

	resolver := s.newResolver(s.theme.Names())
	cfg, ok, err := resolver.Resolve(ext)
	if err != nil {
		return "", err
	}
	if !ok {
		// No grammar on disk matches the extension: nothing to render.
		s.log.Debug("no grammar matches extension", "extension", ext)
		return "", nil
	}

	src := []byte(source)
	events, err := s.tok.Highlight(cfg, src, resolver.InjectionConfig)
	if err != nil {
		return "", err
	}
	return render.Table(events, src, s.theme.Style)
}

package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/corey/prism/internal/lang"
	"github.com/corey/prism/internal/ports"
)

// ABIVersion is the tree-sitter ABI the generation step targets.
const ABIVersion = 14

// Provisioner fills the artifact cache on demand: clone the grammar
// repository, generate parser sources, compile a shared library into the
// lib directory. The clone persists across calls as a second-level cache;
// generation and compilation always re-run so a stale clone is never
// trusted silently.
type Provisioner struct {
	paths  *CachePaths
	git    ports.GitClient
	gen    ports.GrammarGenerator
	cc     ports.GrammarCompiler
	ledger ports.Ledger // optional
	log    *slog.Logger

	group singleflight.Group
}

// NewProvisioner wires a provisioner from its collaborators. ledger may be
// nil when build records are not wanted.
func NewProvisioner(paths *CachePaths, git ports.GitClient, gen ports.GrammarGenerator, cc ports.GrammarCompiler, ledger ports.Ledger, log *slog.Logger) *Provisioner {
	return &Provisioner{
		paths:  paths,
		git:    git,
		gen:    gen,
		cc:     cc,
		ledger: ledger,
		log:    log,
	}
}

// Ensure guarantees that after a successful return the compiled artifact
// for l exists at the path CachePaths.Probe computes. Concurrent calls for
// the same language are coalesced into one build; the artifact is written
// to a temp file and renamed into place so readers never observe a partial
// write.
func (p *Provisioner) Ensure(ctx context.Context, l lang.Language) error {
	// The build is shared by every coalesced caller, so it runs detached
	// from whichever caller happened to start it: one caller canceling
	// must not fail the others waiting on the same build.
	bctx := context.WithoutCancel(ctx)
	_, err, _ := p.group.Do(l.String(), func() (interface{}, error) {
		return nil, p.provision(bctx, l)
	})
	return err
}

func (p *Provisioner) provision(ctx context.Context, l lang.Language) error {
	repoURL := l.RepoURL()
	if repoURL == "" {
		return fmt.Errorf("%w: %s", ErrLanguageNotSupported, l)
	}

	soPath, err := p.paths.ArtifactPath(l)
	if err != nil {
		return err
	}

	if err := p.paths.EnsureDirs(); err != nil {
		return fmt.Errorf("create cache dirs: %w", err)
	}

	repoDir := p.paths.ClonePath(repoURL)
	if _, err := os.Stat(repoDir); err != nil {
		p.log.Debug("cloning grammar repository", "url", repoURL, "dest", repoDir)
		if err := p.git.Clone(ctx, repoURL, repoDir); err != nil {
			return err
		}
	}

	grammarPath := filepath.Join(repoDir, "grammar.js")
	if _, err := os.Stat(grammarPath); err != nil {
		p.log.Error("grammar definition missing", "path", grammarPath)
		return fmt.Errorf("%w: %s", ErrGrammarDefinitionMissing, grammarPath)
	}

	if err := p.gen.Generate(ctx, repoDir, grammarPath, ABIVersion); err != nil {
		return err
	}
	p.log.Debug("generated parser sources", "language", l.String(), "dir", repoDir)

	// Compile to a temp name first; the rename makes the artifact appear
	// atomically, so a concurrent probe never sees a half-written .so.
	tmpPath := soPath + fmt.Sprintf(".tmp-%d", os.Getpid())
	if err := p.cc.Compile(ctx, repoDir, tmpPath); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, soPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("install artifact: %w", err)
	}
	p.log.Debug("compiled grammar", "language", l.String(), "artifact", soPath)

	if p.ledger != nil {
		rec := ports.BuildRecord{
			Language:   l.String(),
			Artifact:   soPath,
			RepoURL:    repoURL,
			ABIVersion: ABIVersion,
			BuiltAt:    time.Now().UTC(),
		}
		if err := p.ledger.RecordBuild(rec); err != nil {
			// The artifact is already in place; a ledger write failure
			// is not worth failing the render over.
			p.log.Error("recording build", "language", l.String(), "error", err)
		}
	}
	return nil
}

// Package toolchain adapts the external tree-sitter generation toolchain
// and the system C compiler behind the generator/compiler ports. Both run
// as subprocesses; the caller bounds their runtime through the context.
package toolchain

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
)

// Generator shells out to the tree-sitter CLI to turn grammar.js into
// parser sources.
type Generator struct {
	// Binary overrides the tree-sitter executable name. Empty means
	// "tree-sitter" from PATH.
	Binary string
}

// Generate runs `tree-sitter generate --abi <n> <grammarPath>` inside
// repoDir, producing src/parser.c and friends in place.
func (g *Generator) Generate(ctx context.Context, repoDir, grammarPath string, abiVersion int) error {
	bin := g.Binary
	if bin == "" {
		bin = "tree-sitter"
	}
	cmd := exec.CommandContext(ctx, bin, "generate", "--abi", strconv.Itoa(abiVersion), grammarPath)
	cmd.Dir = repoDir
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("tree-sitter generate in %s: %w\n%s", repoDir, err, out)
	}
	return nil
}

// Compiler builds generated parser sources into a shared library with the
// system C compiler.
type Compiler struct {
	// Binary overrides the compiler. Empty means $CC, falling back to "cc".
	Binary string
}

// Compile runs `cc -shared -fPIC -O2 -I src src/parser.c [src/scanner.c]
// -o outPath`. The scanner is included only when the grammar has one.
func (c *Compiler) Compile(ctx context.Context, repoDir, outPath string) error {
	bin := c.Binary
	if bin == "" {
		bin = os.Getenv("CC")
	}
	if bin == "" {
		bin = "cc"
	}

	srcDir := filepath.Join(repoDir, "src")
	parserC := filepath.Join(srcDir, "parser.c")
	if _, err := os.Stat(parserC); err != nil {
		return fmt.Errorf("no generated parser at %s", parserC)
	}

	args := []string{"-shared", "-fPIC", "-O2", "-I", srcDir, parserC}
	for _, scanner := range []string{"scanner.c", "scanner.cc"} {
		p := filepath.Join(srcDir, scanner)
		if _, err := os.Stat(p); err == nil {
			args = append(args, p)
			if scanner == "scanner.cc" {
				args = append(args, "-lstdc++")
			}
			break
		}
	}
	args = append(args, "-o", outPath)

	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = repoDir
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("compile grammar in %s: %w\n%s", repoDir, err, out)
	}
	return nil
}

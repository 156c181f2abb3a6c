package toolchain

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileRequiresGeneratedParser(t *testing.T) {
	repo := t.TempDir()
	c := &Compiler{}

	err := c.Compile(context.Background(), repo, filepath.Join(t.TempDir(), "out.so"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no generated parser")
}

func TestCompileMissingBinary(t *testing.T) {
	repo := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(repo, "src"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(repo, "src", "parser.c"), []byte("int x;"), 0644))

	c := &Compiler{Binary: "definitely-not-a-compiler"}
	err := c.Compile(context.Background(), repo, filepath.Join(t.TempDir(), "out.so"))
	assert.Error(t, err)
}

func TestGenerateMissingBinary(t *testing.T) {
	g := &Generator{Binary: "definitely-not-tree-sitter"}

	err := g.Generate(context.Background(), t.TempDir(), "grammar.js", 14)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tree-sitter generate")
}

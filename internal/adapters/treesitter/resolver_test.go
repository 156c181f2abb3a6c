package treesitter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corey/prism/internal/app"
)

func TestCSymbolName(t *testing.T) {
	assert.Equal(t, "tree_sitter_python", CSymbolName("python"))
	assert.Equal(t, "tree_sitter_c_sharp", CSymbolName("c-sharp"))
}

func TestMatchCaptures(t *testing.T) {
	vocab := []string{"function", "function.builtin", "keyword", "string"}

	tags := matchCaptures([]string{
		"keyword",                 // exact
		"function.builtin",        // exact, preferred over parent
		"function.method.builtin", // falls back to "function"
		"string.special.symbol",   // falls back to "string"
		"diff.plus",               // no match at any level
		"local.definition.import", // no match
	}, vocab)

	assert.Equal(t, []string{
		"keyword",
		"function.builtin",
		"function",
		"string",
		"",
		"",
	}, tags)
}

func TestResolveUnknownExtension(t *testing.T) {
	r := NewResolver(NewDynamicLoader(), t.TempDir(), t.TempDir(), nil)

	cfg, ok, err := r.Resolve(".nope")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, cfg)
}

func TestResolveArtifactAbsent(t *testing.T) {
	r := NewResolver(NewDynamicLoader(), t.TempDir(), t.TempDir(), nil)

	cfg, ok, err := r.Resolve(".py")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, cfg)
}

func TestResolveHighlightQueryMissing(t *testing.T) {
	libDir := t.TempDir()
	parserDir := t.TempDir()
	// The artifact exists but the clone lacks queries/highlights.scm.
	require.NoError(t, os.WriteFile(filepath.Join(libDir, "python.so"), []byte{0x7f, 'E', 'L', 'F'}, 0755))

	r := NewResolver(NewDynamicLoader(), libDir, parserDir, nil)

	_, _, err := r.Resolve(".py")
	assert.ErrorIs(t, err, app.ErrHighlightQueryMissing)
}

func TestInjectionConfigUnknownName(t *testing.T) {
	r := NewResolver(NewDynamicLoader(), t.TempDir(), t.TempDir(), nil)

	assert.Nil(t, r.InjectionConfig("klingon"))
	// Known language, nothing installed: still nil rather than an error.
	assert.Nil(t, r.InjectionConfig("python"))
}

func TestLoaderMissingArtifact(t *testing.T) {
	dl := NewDynamicLoader()

	_, err := dl.LoadGrammar("python", filepath.Join(t.TempDir(), "python.so"))
	assert.Error(t, err)
}

func TestLoaderInvalidateUnknownPath(t *testing.T) {
	dl := NewDynamicLoader()
	dl.Invalidate("/nonexistent/python.so")
	dl.Close()
}

// Package treesitter adapts the tree-sitter runtime for the rendering
// pipeline: it loads compiled grammar artifacts from the cache via purego,
// resolves highlight configurations per file extension, and implements the
// tokenizer port with query-driven highlighting.
package treesitter

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// DynamicLoader loads tree-sitter grammars from shared libraries using
// purego. Loaded languages are cached per artifact path; a long-lived
// renderer shares one loader across render calls and invalidates entries
// when the artifact cache changes underneath it.
type DynamicLoader struct {
	mu      sync.Mutex
	loaded  map[string]*tree_sitter.Language // artifact path -> language
	handles map[string]uintptr               // artifact path -> dlopen handle
}

// NewDynamicLoader creates an empty loader.
func NewDynamicLoader() *DynamicLoader {
	return &DynamicLoader{
		loaded:  make(map[string]*tree_sitter.Language),
		handles: make(map[string]uintptr),
	}
}

// CSymbolName returns the C function name exported by a grammar shared
// library: tree_sitter_{name}, with dashes mapped to underscores.
func CSymbolName(lang string) string {
	return "tree_sitter_" + strings.ReplaceAll(lang, "-", "_")
}

// LoadGrammar dlopens the artifact at soPath and resolves the grammar's
// entry point for the given language name. Results are cached by path.
func (dl *DynamicLoader) LoadGrammar(lang, soPath string) (*tree_sitter.Language, error) {
	dl.mu.Lock()
	defer dl.mu.Unlock()

	if cached, ok := dl.loaded[soPath]; ok {
		return cached, nil
	}

	if _, err := os.Stat(soPath); err != nil {
		return nil, fmt.Errorf("grammar %q: artifact %s not found", lang, soPath)
	}

	handle, err := purego.Dlopen(soPath, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, fmt.Errorf("grammar %q: dlopen %s: %w", lang, soPath, err)
	}

	symName := CSymbolName(lang)
	var langFunc func() uintptr
	purego.RegisterLibFunc(&langFunc, handle, symName)

	ptr := langFunc()
	if ptr == 0 {
		return nil, fmt.Errorf("grammar %q: %s() returned null", lang, symName)
	}

	// Convert uintptr from C (purego) to unsafe.Pointer without triggering
	// go vet's unsafeptr check. Safe because ptr is a static TSLanguage*
	// from the grammar .so, not a Go-managed pointer.
	language := tree_sitter.NewLanguage(*(*unsafe.Pointer)(unsafe.Pointer(&ptr)))
	dl.loaded[soPath] = language
	dl.handles[soPath] = handle
	return language, nil
}

// Invalidate drops the cached language for an artifact path and dlcloses
// its handle. Called when the artifact is rebuilt so the next render picks
// up the new grammar without leaking the old mapping.
func (dl *DynamicLoader) Invalidate(soPath string) {
	dl.mu.Lock()
	defer dl.mu.Unlock()
	delete(dl.loaded, soPath)
	if handle, ok := dl.handles[soPath]; ok {
		purego.Dlclose(handle)
		delete(dl.handles, soPath)
	}
}

// Close drops all cached languages and dlcloses every handle.
func (dl *DynamicLoader) Close() {
	dl.mu.Lock()
	defer dl.mu.Unlock()
	for _, handle := range dl.handles {
		purego.Dlclose(handle)
	}
	dl.loaded = make(map[string]*tree_sitter.Language)
	dl.handles = make(map[string]uintptr)
}

// Package lang is the catalog of languages the renderer knows about.
// It maps a Language to its canonical file extension, the shared-library
// name its compiled grammar is cached under, and the git repository the
// grammar is built from. Pure data, no I/O.
package lang

import "strings"

// Language identifies a supported source language. The zero value None is
// the explicit not-found variant; Parse returns its fallback argument
// instead of None only when the caller asks for a different default.
type Language int

const (
	None Language = iota
	Python
	Rust
	Go
	C
	JavaScript
	JSON
	YAML
	TOML
	HTML
	Bash
	Markdown
)

// entry holds the registry row for one language. SOName and RepoURL may be
// empty: an empty RepoURL marks a language the provisioning pipeline
// intentionally cannot build (markdown's upstream repo hosts two grammars in
// subdirectories, which clone-and-generate cannot handle).
type entry struct {
	name    string
	ext     string
	soName  string
	repoURL string
}

var registry = map[Language]entry{
	Python:     {"python", ".py", "python.so", "https://github.com/tree-sitter/tree-sitter-python.git"},
	Rust:       {"rust", ".rs", "rust.so", "https://github.com/tree-sitter/tree-sitter-rust.git"},
	Go:         {"go", ".go", "go.so", "https://github.com/tree-sitter/tree-sitter-go.git"},
	C:          {"c", ".c", "c.so", "https://github.com/tree-sitter/tree-sitter-c.git"},
	JavaScript: {"javascript", ".js", "javascript.so", "https://github.com/tree-sitter/tree-sitter-javascript.git"},
	JSON:       {"json", ".json", "json.so", "https://github.com/tree-sitter/tree-sitter-json.git"},
	YAML:       {"yaml", ".yml", "yaml.so", "https://github.com/tree-sitter-grammars/tree-sitter-yaml.git"},
	TOML:       {"toml", ".toml", "toml.so", "https://github.com/tree-sitter-grammars/tree-sitter-toml.git"},
	HTML:       {"html", ".html", "html.so", "https://github.com/tree-sitter/tree-sitter-html.git"},
	Bash:       {"bash", ".sh", "bash.so", "https://github.com/tree-sitter/tree-sitter-bash.git"},
	Markdown:   {"markdown", ".md", "", ""},
}

// aliases maps lowercase spellings to languages, beyond the canonical name
// and extension which are always accepted. Extensions are stored without
// the leading dot; Parse strips it before lookup.
var aliases = map[string]Language{
	"py":      Python,
	"python3": Python,
	"rs":      Rust,
	"golang":  Go,
	"js":      JavaScript,
	"node":    JavaScript,
	"htm":     HTML,
	"sh":      Bash,
	"shell":   Bash,
	"zsh":     Bash,
	"md":      Markdown,
}

// String returns the canonical lowercase name, or "none".
func (l Language) String() string {
	if e, ok := registry[l]; ok {
		return e.name
	}
	return "none"
}

// Extension returns the canonical file extension including the leading dot.
// Non-empty for every language in the registry; "" only for None.
func (l Language) Extension() string {
	return registry[l].ext
}

// SOName returns the shared-library filename the compiled grammar is cached
// under, or "" when the language has no buildable grammar.
func (l Language) SOName() string {
	return registry[l].soName
}

// RepoURL returns the grammar repository URL, or "" when provisioning is
// intentionally unimplemented for this language.
func (l Language) RepoURL() string {
	return registry[l].repoURL
}

// All returns every registered language in stable order.
func All() []Language {
	return []Language{Python, Rust, Go, C, JavaScript, JSON, YAML, TOML, HTML, Bash, Markdown}
}

// Parse resolves a free-form language string: canonical names, common
// aliases, and extensions with or without the leading dot, all
// case-insensitive. Unrecognized input returns fallback, never an error.
func Parse(s string, fallback Language) Language {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.TrimPrefix(key, ".")
	if key == "" {
		return fallback
	}
	for l, e := range registry {
		if key == e.name || key == strings.TrimPrefix(e.ext, ".") {
			return l
		}
	}
	if l, ok := aliases[key]; ok {
		return l
	}
	return fallback
}

// FromExtension maps a file extension (with or without the leading dot)
// to a language, or None when no language claims it.
func FromExtension(ext string) Language {
	return Parse(ext, None)
}

// RepoName derives the local directory name for a grammar repository URL:
// the last path segment with its first extension stripped, so
// "…/tree-sitter-python.git" becomes "tree-sitter-python".
func RepoName(repoURL string) string {
	name := repoURL[strings.LastIndex(repoURL, "/")+1:]
	if i := strings.Index(name, "."); i >= 0 {
		name = name[:i]
	}
	return name
}

package app

import "errors"

// Error taxonomy for the rendering pipeline. External-tool failures (clone,
// generate, compile, tokenize) are not wrapped into these; they propagate
// unchanged from their adapters.
var (
	// ErrLanguageNotSupported means the requested language has no grammar
	// repository (or no extension) defined. Not retryable.
	ErrLanguageNotSupported = errors.New("language not supported: no grammar mapping defined")

	// ErrSharedLibUnavailable means the compiled grammar artifact cannot
	// be located: the home directory is unresolvable, the language
	// defines no artifact name, or the file is absent. A render call
	// treats this as the trigger for exactly one provisioning attempt.
	ErrSharedLibUnavailable = errors.New("shared library for language parser unavailable")

	// ErrGrammarDefinitionMissing means the cloned grammar repository has
	// no grammar.js, so generation cannot proceed.
	ErrGrammarDefinitionMissing = errors.New("grammar.js missing from grammar repository")

	// ErrHighlightQueryMissing means a grammar artifact exists but its
	// repository carries no highlights query; provisioning should have
	// guaranteed one, so this signals a broken cache entry.
	ErrHighlightQueryMissing = errors.New("grammar has no highlights query")
)

package ports

// HighlightEvent is one element of the tagged span stream a Tokenizer
// produces. The stream is ordered, covers the whole source, and is consumed
// exactly once by the HTML serializer. Three concrete kinds exist:
// EventHighlightStart, EventSource, EventHighlightEnd.
type HighlightEvent interface {
	isHighlightEvent()
}

// EventHighlightStart opens a highlight region for a tag (e.g. "keyword",
// "function.builtin"). Regions never overlap partially; an EventHighlightEnd
// always closes the most recently opened region.
type EventHighlightStart struct {
	Tag string
}

// EventSource covers the byte range [Start, End) of the original source.
type EventSource struct {
	Start int
	End   int
}

// EventHighlightEnd closes the innermost open highlight region.
type EventHighlightEnd struct{}

func (EventHighlightStart) isHighlightEvent() {}
func (EventSource) isHighlightEvent()         {}
func (EventHighlightEnd) isHighlightEvent()   {}

// HighlightConfig is an opaque, ready-to-use highlight configuration: a
// loaded grammar plus its compiled queries. Built by the resolver, consumed
// by the Tokenizer. Opaque here so fakes can substitute their own.
type HighlightConfig interface {
	// LanguageName returns the grammar's canonical name.
	LanguageName() string
}

// InjectionResolver maps a free-form injected-language name (as written in
// an injection query, e.g. "html" inside markdown) to a configuration, or
// nil when the language is unknown or its grammar is not installed.
type InjectionResolver func(name string) HighlightConfig

// Tokenizer runs a highlight pass over source bytes and yields the tagged
// span stream. Injected sub-languages are resolved through the callback so
// one pass can highlight nested foreign-language regions.
type Tokenizer interface {
	Highlight(cfg HighlightConfig, source []byte, injected InjectionResolver) ([]HighlightEvent, error)
}

// ConfigResolver locates the grammar and highlight queries matching a file
// extension. A fresh resolver is built per render call; it only reads the
// artifact cache and clone tree.
type ConfigResolver interface {
	// Resolve returns the configuration for a canonical extension.
	// ok=false with a nil error means no installed grammar matches; the
	// caller renders nothing rather than failing.
	Resolve(ext string) (cfg HighlightConfig, ok bool, err error)

	// InjectionConfig resolves a configuration for an injected language
	// name, or nil when unavailable. Used as the Tokenizer callback.
	InjectionConfig(name string) HighlightConfig
}

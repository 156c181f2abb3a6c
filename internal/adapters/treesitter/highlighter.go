package treesitter

import (
	"fmt"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/corey/prism/internal/ports"
)

// maxInjectionDepth bounds recursive injection resolution. Two levels
// cover the practical cases (markup → script → nothing deeper) and keep
// mutually-injecting grammars from recursing forever.
const maxInjectionDepth = 2

// Highlighter implements ports.Tokenizer with tree-sitter highlight
// queries. Each call builds its own parser and query cursors, so one
// Highlighter is safe for concurrent use.
type Highlighter struct{}

// NewHighlighter returns the query-driven tokenizer.
func NewHighlighter() *Highlighter {
	return &Highlighter{}
}

// Highlight parses source with cfg's grammar, claims byte ranges from the
// highlights query (first pattern wins, as in tree-sitter's own
// highlighter), recursively overlays injected sub-languages resolved
// through the callback, and flattens the result into the tagged span
// stream.
func (h *Highlighter) Highlight(cfg ports.HighlightConfig, source []byte, injected ports.InjectionResolver) ([]ports.HighlightEvent, error) {
	c, ok := cfg.(*HighlightConfig)
	if !ok {
		return nil, fmt.Errorf("unsupported highlight configuration %T", cfg)
	}

	tl := &tagLayers{
		perByte: make([]int32, len(source)),
		index:   make(map[string]int32),
	}
	if err := tl.claimRegion(c, source, 0, len(source), injected, 0); err != nil {
		return nil, err
	}
	return tl.events(), nil
}

// tagLayers accumulates per-byte tag claims across the root grammar and
// any injected layers. perByte holds 1-based indices into tags; 0 means
// unclaimed.
type tagLayers struct {
	tags    []string
	index   map[string]int32
	perByte []int32
}

func (tl *tagLayers) tagID(tag string) int32 {
	if id, ok := tl.index[tag]; ok {
		return id
	}
	tl.tags = append(tl.tags, tag)
	id := int32(len(tl.tags))
	tl.index[tag] = id
	return id
}

// claimRegion highlights source[start:end) with c's grammar. The region is
// parsed as a standalone document (injection content is foreign to the
// outer grammar), claims are first-wins within this pass, and injected
// sub-regions are resolved recursively with their bytes re-claimed by the
// inner grammar.
func (tl *tagLayers) claimRegion(c *HighlightConfig, source []byte, start, end int, injected ports.InjectionResolver, depth int) error {
	region := source[start:end]
	if len(region) == 0 {
		return nil
	}

	parser := tree_sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(c.language); err != nil {
		return fmt.Errorf("grammar %s: %w", c.name, err)
	}

	tree := parser.Parse(region, nil)
	if tree == nil {
		return fmt.Errorf("grammar %s: parse failed", c.name)
	}
	defer tree.Close()

	// An inner grammar owns its region outright: drop the outer claims so
	// first-wins applies per layer, innermost layer last.
	if depth > 0 {
		for i := start; i < end; i++ {
			tl.perByte[i] = 0
		}
	}

	qc := tree_sitter.NewQueryCursor()
	defer qc.Close()

	captures := qc.Captures(c.highlights, tree.RootNode(), region)
	for match, captureIdx := captures.Next(); match != nil; match, captureIdx = captures.Next() {
		if int(captureIdx) >= len(match.Captures) {
			continue
		}
		cap := match.Captures[captureIdx]
		if int(cap.Index) >= len(c.captureTags) {
			continue
		}
		tag := c.captureTags[cap.Index]
		if tag == "" {
			continue
		}
		id := tl.tagID(tag)
		from := start + int(cap.Node.StartByte())
		to := start + int(cap.Node.EndByte())
		if to > end {
			to = end
		}
		for i := from; i < to; i++ {
			// Newlines stay unclaimed so spans never straddle rows;
			// first pattern wins for everything else.
			if tl.perByte[i] == 0 && source[i] != '\n' {
				tl.perByte[i] = id
			}
		}
	}

	if c.injections == nil || injected == nil || depth >= maxInjectionDepth {
		return nil
	}
	return tl.claimInjections(c, source, start, region, tree, injected, depth)
}

// claimInjections runs the injections query over an already-parsed region
// and recursively highlights each injected range with the grammar the
// resolver callback supplies.
func (tl *tagLayers) claimInjections(c *HighlightConfig, source []byte, offset int, region []byte, tree *tree_sitter.Tree, injected ports.InjectionResolver, depth int) error {
	names := c.injections.CaptureNames()

	qc := tree_sitter.NewQueryCursor()
	defer qc.Close()

	matches := qc.Matches(c.injections, tree.RootNode(), region)
	for match := matches.Next(); match != nil; match = matches.Next() {
		var langName string
		var content *tree_sitter.Node

		for i := range match.Captures {
			cap := &match.Captures[i]
			if int(cap.Index) >= len(names) {
				continue
			}
			switch names[cap.Index] {
			case "injection.language", "language":
				langName = string(region[cap.Node.StartByte():cap.Node.EndByte()])
			case "injection.content", "content":
				content = &cap.Node
			}
		}
		if langName == "" || content == nil {
			continue
		}

		sub, ok := injected(langName).(*HighlightConfig)
		if !ok || sub == nil {
			continue
		}
		from := offset + int(content.StartByte())
		to := offset + int(content.EndByte())
		if err := tl.claimRegion(sub, source, from, to, injected, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// events flattens the per-byte claims into the ordered span stream: runs
// of equal tags become start/source/end triples, unclaimed runs plain
// source events.
func (tl *tagLayers) events() []ports.HighlightEvent {
	var evs []ports.HighlightEvent
	n := len(tl.perByte)
	for i := 0; i < n; {
		j := i + 1
		for j < n && tl.perByte[j] == tl.perByte[i] {
			j++
		}
		if id := tl.perByte[i]; id == 0 {
			evs = append(evs, ports.EventSource{Start: i, End: j})
		} else {
			evs = append(evs,
				ports.EventHighlightStart{Tag: tl.tags[id-1]},
				ports.EventSource{Start: i, End: j},
				ports.EventHighlightEnd{},
			)
		}
		i = j
	}
	return evs
}

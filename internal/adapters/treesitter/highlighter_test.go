package treesitter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/corey/prism/internal/ports"
)

func newLayers(perByte ...int32) *tagLayers {
	return &tagLayers{perByte: perByte, index: make(map[string]int32)}
}

func TestTagIDInterning(t *testing.T) {
	tl := newLayers()

	kw := tl.tagID("keyword")
	str := tl.tagID("string")
	assert.NotEqual(t, kw, str)
	assert.Equal(t, kw, tl.tagID("keyword"))
	assert.Equal(t, []string{"keyword", "string"}, tl.tags)
}

func TestEventsRunLengthEncoding(t *testing.T) {
	tl := newLayers(0, 0, 0, 0, 0, 0)
	kw := tl.tagID("keyword")
	str := tl.tagID("string")

	// "ab" keyword, "c" unclaimed, "def" string.
	tl.perByte = []int32{kw, kw, 0, str, str, str}

	assert.Equal(t, []ports.HighlightEvent{
		ports.EventHighlightStart{Tag: "keyword"},
		ports.EventSource{Start: 0, End: 2},
		ports.EventHighlightEnd{},
		ports.EventSource{Start: 2, End: 3},
		ports.EventHighlightStart{Tag: "string"},
		ports.EventSource{Start: 3, End: 6},
		ports.EventHighlightEnd{},
	}, tl.events())
}

func TestEventsAdjacentEqualTagsMerge(t *testing.T) {
	tl := newLayers(0, 0, 0)
	kw := tl.tagID("keyword")
	tl.perByte = []int32{kw, kw, kw}

	evs := tl.events()
	assert.Len(t, evs, 3)
	assert.Equal(t, ports.EventSource{Start: 0, End: 3}, evs[1])
}

func TestEventsEmpty(t *testing.T) {
	tl := newLayers()
	assert.Empty(t, tl.events())
}

func TestEventsAllUnclaimed(t *testing.T) {
	tl := newLayers(0, 0, 0, 0)
	assert.Equal(t, []ports.HighlightEvent{
		ports.EventSource{Start: 0, End: 4},
	}, tl.events())
}

func TestHighlightRejectsForeignConfig(t *testing.T) {
	h := NewHighlighter()

	type otherConfig struct{ ports.HighlightConfig }
	_, err := h.Highlight(otherConfig{}, []byte("x"), nil)
	assert.Error(t, err)
}

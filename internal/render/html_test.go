package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corey/prism/internal/ports"
)

func testStyle(tag string) string {
	switch tag {
	case "keyword":
		return "color: #c678dd"
	case "plain":
		return ""
	default:
		return "color: #000000"
	}
}

func TestTableEmptySource(t *testing.T) {
	html, err := Table(nil, nil, testStyle)
	require.NoError(t, err)
	assert.Equal(t, "<table>\n</table>\n", html)
}

func TestTablePythonShaped(t *testing.T) {
	source := []byte("def f(a):\n    return a")
	events := []ports.HighlightEvent{
		ports.EventHighlightStart{Tag: "keyword"},
		ports.EventSource{Start: 0, End: 3}, // def
		ports.EventHighlightEnd{},
		ports.EventSource{Start: 3, End: 14}, // " f(a):\n    "
		ports.EventHighlightStart{Tag: "keyword"},
		ports.EventSource{Start: 14, End: 20}, // return
		ports.EventHighlightEnd{},
		ports.EventSource{Start: 20, End: 22}, // " a"
	}

	html, err := Table(events, source, testStyle)
	require.NoError(t, err)

	want := "<table>\n" +
		`<tr><td class=line-number>1</td><td class=line><span style="color: #c678dd">def</span> f(a):</td></tr>` + "\n" +
		`<tr><td class=line-number>2</td><td class=line>    <span style="color: #c678dd">return</span> a</td></tr>` + "\n" +
		"</table>\n"
	assert.Equal(t, want, html)
}

func TestTableEscapesSource(t *testing.T) {
	source := []byte("a < b && c > \"d\"")
	events := []ports.HighlightEvent{
		ports.EventSource{Start: 0, End: len(source)},
	}

	html, err := Table(events, source, testStyle)
	require.NoError(t, err)
	assert.Contains(t, html, "a &lt; b &amp;&amp; c &gt; &#34;d&#34;")
	assert.NotContains(t, html, "a < b")
}

func TestTableSpanAcrossNewline(t *testing.T) {
	source := []byte("one\ntwo")
	events := []ports.HighlightEvent{
		ports.EventHighlightStart{Tag: "keyword"},
		ports.EventSource{Start: 0, End: 7},
		ports.EventHighlightEnd{},
	}

	html, err := Table(events, source, testStyle)
	require.NoError(t, err)

	// Closed at the break, reopened on the next line: every row balances.
	assert.Contains(t, html, `<td class=line><span style="color: #c678dd">one</span></td>`)
	assert.Contains(t, html, `<td class=line><span style="color: #c678dd">two</span></td>`)
	for _, row := range strings.Split(html, "\n") {
		assert.Equal(t, strings.Count(row, "<span"), strings.Count(row, "</span>"), "row %q", row)
	}
}

func TestTableEmptyStyleBareSpan(t *testing.T) {
	source := []byte("x")
	events := []ports.HighlightEvent{
		ports.EventHighlightStart{Tag: "plain"},
		ports.EventSource{Start: 0, End: 1},
		ports.EventHighlightEnd{},
	}

	html, err := Table(events, source, testStyle)
	require.NoError(t, err)
	assert.Contains(t, html, "<span>x</span>")
}

func TestTableTrailingNewlineNoExtraRow(t *testing.T) {
	source := []byte("x = 1\n")
	events := []ports.HighlightEvent{
		ports.EventSource{Start: 0, End: len(source)},
	}

	html, err := Table(events, source, testStyle)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(html, "<tr>"))
}

func TestTableSpanClosingAfterTrailingNewline(t *testing.T) {
	source := []byte("x\n")
	events := []ports.HighlightEvent{
		ports.EventHighlightStart{Tag: "keyword"},
		ports.EventSource{Start: 0, End: 2},
		ports.EventHighlightEnd{},
	}

	html, err := Table(events, source, testStyle)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(html, "<tr>"), "reopened empty span must not produce a row")
}

func TestTableUnbalancedEvents(t *testing.T) {
	source := []byte("x")

	_, err := Table([]ports.HighlightEvent{ports.EventHighlightEnd{}}, source, testStyle)
	assert.ErrorIs(t, err, ErrUnbalancedEvents)

	_, err = Table([]ports.HighlightEvent{ports.EventHighlightStart{Tag: "keyword"}}, source, testStyle)
	assert.ErrorIs(t, err, ErrUnbalancedEvents)
}

func TestTableSourceEventOutOfRange(t *testing.T) {
	_, err := Table([]ports.HighlightEvent{ports.EventSource{Start: 0, End: 5}}, []byte("x"), testStyle)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnbalancedEvents)
}

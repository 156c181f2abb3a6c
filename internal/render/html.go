// Package render serializes a tagged span stream into an HTML table with
// one numbered row per source line.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/corey/prism/internal/ports"
)

// ErrUnbalancedEvents reports a span stream whose highlight start/end
// events do not nest properly.
var ErrUnbalancedEvents = errors.New("unbalanced highlight events")

// StyleFunc resolves a highlight tag to a CSS declaration. An empty result
// produces a bare <span>.
type StyleFunc func(tag string) string

// Table renders the event stream over source into an HTML fragment:
//
//	<table>
//	<tr><td class=line-number>1</td><td class=line>…</td></tr>
//	…
//	</table>
//
// Line numbers are 1-based and sequential; highlight regions spanning a
// newline are closed at the line break and reopened on the next line, so
// every row is a self-contained fragment. Output is deterministic for
// identical (events, source, style) inputs.
func Table(events []ports.HighlightEvent, source []byte, style StyleFunc) (string, error) {
	lines, err := renderLines(events, source, style)
	if err != nil {
		return "", err
	}

	var out strings.Builder
	out.WriteString("<table>\n")
	for i, line := range lines {
		fmt.Fprintf(&out, "<tr><td class=line-number>%d</td><td class=line>%s</td></tr>\n", i+1, line)
	}
	out.WriteString("</table>\n")
	return out.String(), nil
}

// renderLines walks the event stream and produces one HTML fragment per
// physical source line. A source with a trailing newline yields no extra
// empty line; an empty source yields no lines at all.
func renderLines(events []ports.HighlightEvent, source []byte, style StyleFunc) ([]string, error) {
	var (
		lines   []string
		cur     strings.Builder
		stack   []string // open highlight tags, innermost last
		hasText bool     // source bytes written since the last line break
	)

	openSpan := func(tag string) {
		if css := style(tag); css != "" {
			cur.WriteString(`<span style="`)
			cur.WriteString(html.EscapeString(css))
			cur.WriteString(`">`)
		} else {
			cur.WriteString("<span>")
		}
	}

	for _, ev := range events {
		switch e := ev.(type) {
		case ports.EventHighlightStart:
			stack = append(stack, e.Tag)
			openSpan(e.Tag)

		case ports.EventHighlightEnd:
			if len(stack) == 0 {
				return nil, ErrUnbalancedEvents
			}
			stack = stack[:len(stack)-1]
			cur.WriteString("</span>")

		case ports.EventSource:
			start, end := e.Start, e.End
			if start < 0 || end > len(source) || start > end {
				return nil, fmt.Errorf("source event out of range [%d, %d)", start, end)
			}
			chunk := source[start:end]
			for {
				nl := bytes.IndexByte(chunk, '\n')
				if nl < 0 {
					if len(chunk) > 0 {
						cur.WriteString(html.EscapeString(string(chunk)))
						hasText = true
					}
					break
				}
				cur.WriteString(html.EscapeString(string(chunk[:nl])))
				// Close open spans at the line break, reopen on the
				// next line so each row stands alone.
				for range stack {
					cur.WriteString("</span>")
				}
				lines = append(lines, cur.String())
				cur.Reset()
				hasText = false
				for _, tag := range stack {
					openSpan(tag)
				}
				chunk = chunk[nl+1:]
			}
		}
	}

	if len(stack) != 0 {
		return nil, ErrUnbalancedEvents
	}
	if hasText {
		lines = append(lines, cur.String())
	}
	return lines, nil
}

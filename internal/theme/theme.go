// Package theme maps highlight tags (keyword, string, comment, …) to CSS
// style declarations. Themes come from the tree-sitter user config file
// when present, otherwise from a built-in default modeled on the
// tree-sitter CLI theme.
package theme

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Theme holds the tag→style table. Immutable after construction.
type Theme struct {
	styles map[string]string
	names  []string // sorted tag vocabulary, stable across runs
}

// defaultStyles is the built-in theme. Values are CSS declarations; tags
// with no declaration still register the tag so the tokenizer recognizes
// the capture.
var defaultStyles = map[string]string{
	"attribute":             "color: #af0000",
	"comment":               "color: #8a8a8a; font-style: italic",
	"constant":              "color: #875f00",
	"constant.builtin":      "color: #875f00; font-weight: bold",
	"constructor":           "color: #af8700",
	"embedded":              "",
	"function":              "color: #005fd7",
	"function.builtin":      "color: #005fd7; font-weight: bold",
	"keyword":               "color: #5f00d7",
	"module":                "color: #af8700",
	"number":                "color: #875f00; font-weight: bold",
	"operator":              "color: #4e4e4e; font-weight: bold",
	"property":              "color: #af0000",
	"property.builtin":      "color: #af0000; font-weight: bold",
	"punctuation":           "color: #4e4e4e",
	"punctuation.bracket":   "color: #4e4e4e",
	"punctuation.delimiter": "color: #4e4e4e",
	"punctuation.special":   "color: #4e4e4e",
	"string":                "color: #008700",
	"string.special":        "color: #008700; font-weight: bold",
	"tag":                   "color: #000087",
	"type":                  "color: #005f5f",
	"type.builtin":          "color: #005f5f; font-weight: bold",
	"variable":              "color: #1c1c1c",
	"variable.builtin":      "color: #1c1c1c; font-weight: bold",
	"variable.parameter":    "color: #1c1c1c; text-decoration: underline",
}

// Default returns the built-in theme.
func Default() *Theme {
	return fromStyles(defaultStyles)
}

// DefaultConfigPath returns the tree-sitter user config location, or ""
// when the home directory cannot be resolved.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "tree-sitter", "config.json")
}

// Load reads a theme from a tree-sitter config file. path == "" means the
// default user config location. A missing file is not an error: the
// built-in default applies, matching the CLI's behavior.
func Load(path string) (*Theme, error) {
	if path == "" {
		path = DefaultConfigPath()
	}
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read theme config: %w", err)
	}
	return Parse(data)
}

// Parse builds a theme from config JSON: {"theme": {tag: value, …}} where
// each value is a hex color string, an ANSI-256 color number, or an object
// {color, bold, italic, underline}.
func Parse(data []byte) (*Theme, error) {
	var cfg struct {
		Theme map[string]json.RawMessage `json:"theme"`
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse theme config: %w", err)
	}
	if len(cfg.Theme) == 0 {
		return Default(), nil
	}

	styles := make(map[string]string, len(cfg.Theme))
	for tag, raw := range cfg.Theme {
		css, err := parseStyle(raw)
		if err != nil {
			return nil, fmt.Errorf("theme entry %q: %w", tag, err)
		}
		styles[tag] = css
	}
	return fromStyles(styles), nil
}

// Style returns the CSS declaration for a tag, or "". Dotted tags fall
// back on their parent: "function.builtin" uses "function" when the theme
// has no entry for the full name.
func (t *Theme) Style(tag string) string {
	for {
		if css, ok := t.styles[tag]; ok {
			return css
		}
		i := strings.LastIndex(tag, ".")
		if i < 0 {
			return ""
		}
		tag = tag[:i]
	}
}

// Names returns the theme's highlight-tag vocabulary in sorted order. The
// resolver registers these with the loader so query captures map onto
// theme entries deterministically.
func (t *Theme) Names() []string {
	return t.names
}

func fromStyles(styles map[string]string) *Theme {
	names := make([]string, 0, len(styles))
	for tag := range styles {
		names = append(names, tag)
	}
	sort.Strings(names)
	return &Theme{styles: styles, names: names}
}

// styleSpec is the object form of a theme value.
type styleSpec struct {
	Color     json.RawMessage `json:"color"`
	Bold      bool            `json:"bold"`
	Italic    bool            `json:"italic"`
	Underline bool            `json:"underline"`
}

func parseStyle(raw json.RawMessage) (string, error) {
	var parts []string

	var num int
	if err := json.Unmarshal(raw, &num); err == nil {
		return "color: " + ansiToHex(num), nil
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		if str == "" {
			return "", nil
		}
		return "color: " + str, nil
	}

	var spec styleSpec
	if err := json.Unmarshal(raw, &spec); err != nil {
		return "", err
	}
	if len(spec.Color) > 0 {
		var cnum int
		var cstr string
		switch {
		case json.Unmarshal(spec.Color, &cnum) == nil:
			parts = append(parts, "color: "+ansiToHex(cnum))
		case json.Unmarshal(spec.Color, &cstr) == nil && cstr != "":
			parts = append(parts, "color: "+cstr)
		}
	}
	if spec.Bold {
		parts = append(parts, "font-weight: bold")
	}
	if spec.Italic {
		parts = append(parts, "font-style: italic")
	}
	if spec.Underline {
		parts = append(parts, "text-decoration: underline")
	}
	return strings.Join(parts, "; "), nil
}

// ansi16 covers the classic terminal palette; the 6x6x6 cube and the gray
// ramp are computed.
var ansi16 = []string{
	"#000000", "#800000", "#008000", "#808000", "#000080", "#800080", "#008080", "#c0c0c0",
	"#808080", "#ff0000", "#00ff00", "#ffff00", "#0000ff", "#ff00ff", "#00ffff", "#ffffff",
}

// ansiToHex converts an ANSI-256 color index to a hex CSS color.
func ansiToHex(n int) string {
	switch {
	case n < 0 || n > 255:
		return "#000000"
	case n < 16:
		return ansi16[n]
	case n < 232:
		n -= 16
		steps := []int{0, 95, 135, 175, 215, 255}
		r := steps[n/36]
		g := steps[(n/6)%6]
		b := steps[n%6]
		return fmt.Sprintf("#%02x%02x%02x", r, g, b)
	default:
		v := 8 + (n-232)*10
		return fmt.Sprintf("#%02x%02x%02x", v, v, v)
	}
}

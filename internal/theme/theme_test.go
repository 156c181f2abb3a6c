package theme

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStyleDottedFallback(t *testing.T) {
	th := Default()

	assert.Equal(t, "color: #5f00d7", th.Style("keyword"))
	// No entry for the full name: falls back to the parent tag.
	assert.Equal(t, "color: #5f00d7", th.Style("keyword.control.return"))
	// Entry for the full name wins over the parent.
	assert.Equal(t, "color: #005fd7; font-weight: bold", th.Style("function.builtin"))
	assert.Empty(t, th.Style("no.such.tag"))
}

func TestNamesSortedAndStable(t *testing.T) {
	th := Default()
	names := th.Names()

	require.NotEmpty(t, names)
	assert.True(t, sort.StringsAreSorted(names))
	assert.Contains(t, names, "keyword")
	assert.Contains(t, names, "punctuation.bracket")
	assert.Equal(t, names, Default().Names())
}

func TestParseValueForms(t *testing.T) {
	th, err := Parse([]byte(`{
		"theme": {
			"keyword": "#ff00aa",
			"number": 196,
			"comment": {"color": "#8a8a8a", "italic": true},
			"string": {"color": 28, "bold": true, "underline": true},
			"embedded": ""
		}
	}`))
	require.NoError(t, err)

	assert.Equal(t, "color: #ff00aa", th.Style("keyword"))
	assert.Equal(t, "color: #ff0000", th.Style("number"))
	assert.Equal(t, "color: #8a8a8a; font-style: italic", th.Style("comment"))
	assert.Equal(t, "color: #008700; font-weight: bold; text-decoration: underline", th.Style("string"))
	assert.Empty(t, th.Style("embedded"))
	// A parsed theme replaces the defaults entirely.
	assert.Empty(t, th.Style("function"))
}

func TestParseEmptyThemeFallsBackToDefault(t *testing.T) {
	th, err := Parse([]byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, Default().Style("keyword"), th.Style("keyword"))

	th, err = Parse([]byte(`{"theme": {}}`))
	require.NoError(t, err)
	assert.Equal(t, Default().Style("keyword"), th.Style("keyword"))
}

func TestParseMalformed(t *testing.T) {
	_, err := Parse([]byte(`{"theme": `))
	assert.Error(t, err)

	_, err = Parse([]byte(`{"theme": {"keyword": [1, 2]}}`))
	assert.Error(t, err)
}

func TestLoadMissingFileUsesDefault(t *testing.T) {
	th, err := Load(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)
	assert.Equal(t, Default().Style("keyword"), th.Style("keyword"))
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"theme": {"keyword": "#123456"}}`), 0644))

	th, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "color: #123456", th.Style("keyword"))
}

func TestAnsiToHex(t *testing.T) {
	cases := []struct {
		n    int
		want string
	}{
		{0, "#000000"},
		{9, "#ff0000"},
		{15, "#ffffff"},
		{16, "#000000"},  // cube origin
		{196, "#ff0000"}, // cube pure red
		{21, "#0000ff"},  // cube pure blue
		{231, "#ffffff"}, // cube white
		{232, "#080808"}, // gray ramp start
		{255, "#eeeeee"}, // gray ramp end
		{-1, "#000000"},
		{256, "#000000"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ansiToHex(c.n), "index %d", c.n)
	}
}

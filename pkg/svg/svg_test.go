package svg

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, doc string) *Graphic {
	t.Helper()
	g, err := Parse("test.svg", []byte(doc))
	require.NoError(t, err)
	return g
}

func TestResolveInherited(t *testing.T) {
	g := parse(t, `<svg font-size="5"><g style="fill: red; stroke:blue"><rect id="r" stroke="green"/></g></svg>`)
	r := g.ElementByID("r")
	require.NotNil(t, r)

	fill, ok, err := ResolveInherited(r, "fill")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "red", fill)

	stroke, _, err := ResolveInherited(r, "stroke")
	require.NoError(t, err)
	assert.Equal(t, "green", stroke, "nearest declaration wins")

	size, _, err := ResolveInherited(r, "font-size")
	require.NoError(t, err)
	assert.Equal(t, "5", size)

	_, ok, err = ResolveInherited(r, "stroke-width")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResolveConflict(t *testing.T) {
	g := parse(t, `<svg><rect id="r" fill="red" style="fill:blue"/></svg>`)
	_, _, err := ResolveInherited(g.ElementByID("r"), "fill")
	assert.ErrorIs(t, err, ErrStyleConflict)
}

func TestParseStyle(t *testing.T) {
	decls, err := ParseStyle(" fill : red ;stroke-width:0.5;; ")
	require.NoError(t, err)
	assert.Equal(t, []Declaration{{"fill", "red"}, {"stroke-width", "0.5"}}, decls)

	_, err = ParseStyle("fill red")
	assert.ErrorIs(t, err, ErrMalformedStyle)
}

func TestVisible(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want bool
		err  error
	}{
		{"filled", `<svg><rect id="c" fill="black"/></svg>`, true, nil},
		{"no paint", `<svg><rect id="c"/></svg>`, false, nil},
		{"fill none", `<svg><rect id="c" fill="none" stroke="none"/></svg>`, false, nil},
		{"stroked", `<svg><rect id="c" fill="none" stroke="black" stroke-width="1"/></svg>`, true, nil},
		{"zero stroke", `<svg><rect id="c" fill="none" stroke="black" stroke-width="0"/></svg>`, false, nil},
		{"stroke without width", `<svg><rect id="c" fill="none" stroke="black"/></svg>`, false, nil},
		{"inherited fill", `<svg><g fill="#fff"><rect id="c"/></g></svg>`, true, nil},
		{"group with visible child", `<svg><g id="c"><rect fill="none"/><circle style="fill:red"/></g></svg>`, true, nil},
		{"group without visible child", `<svg><g id="c"><rect fill="none"/></g></svg>`, false, nil},
		{"conflict", `<svg><rect id="c" stroke="red" style="stroke:blue"/></svg>`, false, ErrStyleConflict},
		{"unknown style", `<svg><rect id="c" style="display:none"/></svg>`, false, ErrUnknownStyle},
		{"unknown style on outer group", `<svg><g id="breadboard" style="display:inline"><rect id="c" style="fill:#f00"/></g></svg>`, true, nil},
		{"inherited unknown style", `<svg><g style="display:inline"><rect id="c" fill="#f00"/></g></svg>`, false, ErrUnknownStyle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := parse(t, tt.doc)
			got, err := Visible(g.ElementByID("c"))
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidStroke(t *testing.T) {
	tests := []struct {
		doc  string
		want bool
	}{
		{`<svg><circle id="c" stroke-width="1"/></svg>`, false},
		{`<svg><circle id="c" stroke-width="1" stroke="none"/></svg>`, false},
		{`<svg><circle id="c" stroke-width="1" stroke="black"/></svg>`, true},
		{`<svg><circle id="c" stroke-width="0"/></svg>`, true},
		{`<svg><circle id="c"/></svg>`, true},
		{`<svg><g stroke="black"><circle id="c" style="stroke-width:2"/></g></svg>`, true},
	}
	for _, tt := range tests {
		g := parse(t, tt.doc)
		got, err := ValidStroke(g.ElementByID("c"))
		require.NoError(t, err, tt.doc)
		assert.Equal(t, tt.want, got, tt.doc)
	}
}

func TestElementsByID(t *testing.T) {
	g := parse(t, `<svg><g id="breadboard"><rect/><rect id=""/><g id="copper0"><rect id="copper0"/></g></g></svg>`)

	assert.Len(t, ElementsByID(g.Root(), "copper0"), 2)
	assert.Len(t, ElementsByID(g.Root(), ""), 1, "only elements carrying an empty id")
	assert.Nil(t, g.ElementByID("missing"))
	assert.Len(t, g.Elements(), 6)
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.svg"))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestCacheParsesOnce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.svg")
	require.NoError(t, os.WriteFile(path, []byte(`<svg id="one"/>`), 0o644))

	c := NewCache(2)
	g1, err := c.Load(path)
	require.NoError(t, err)
	g2, err := c.Load(path)
	require.NoError(t, err)
	assert.Same(t, g1, g2)

	require.NoError(t, os.WriteFile(path, []byte(`<svg id="two"/>`), 0o644))
	g3, _ := c.Load(path)
	assert.NotNil(t, g3.ElementByID("one"), "cached until forgotten")

	c.Forget(path)
	g4, err := c.Load(path)
	require.NoError(t, err)
	assert.NotNil(t, g4.ElementByID("two"))
}

func TestCacheRemembersFailures(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.svg")
	require.NoError(t, os.WriteFile(path, []byte(`<svg><g></svg>`), 0o644))

	c := NewCache(0)
	_, err := c.Load(path)
	require.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`<svg/>`), 0o644))
	_, err = c.Load(path)
	assert.Error(t, err, "failed load is cached")
	assert.Equal(t, 1, c.Len())
}

func TestCacheEvictionReleases(t *testing.T) {
	dir := t.TempDir()
	var graphics []*Graphic
	c := NewCache(1)
	for _, name := range []string{"a.svg", "b.svg"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(`<svg/>`), 0o644))
		g, err := c.Load(path)
		require.NoError(t, err)
		graphics = append(graphics, g)
	}
	assert.Nil(t, graphics[0].Root(), "evicted graphic is released")
	assert.NotNil(t, graphics[1].Root())

	c.Purge()
	assert.Nil(t, graphics[1].Root())
	assert.Equal(t, 0, c.Len())
}

package ui

import (
	"image/color"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edwinsyarief/mado"
	"github.com/edwinsyarief/mado/geom"
	"github.com/edwinsyarief/mado/layout"
)

const doc = `
kind: column
spacing: 4
padding: 8
size: {width: fill}
children:
  - kind: label
    text: Hello
  - kind: box
    color: "#ff0000"
    size: {width: 40, height: 10}
  - kind: row
    position: [5, 6]
    children:
      - kind: label
        text: a
        font: mono
`

// go test -run ^TestLoadTree$ ./ui -count 1
func TestLoadTree(t *testing.T) {
	root, err := LoadTree(strings.NewReader(doc))
	require.NoError(t, err)

	col, ok := root.(*Container)
	require.True(t, ok)
	assert.Equal(t, layout.Flow{Direction: layout.Column, Spacing: 4}, col.Flow)
	assert.Equal(t, layout.Uniform(8), col.Padding)
	assert.Equal(t, layout.Fill, col.Sizing.Width.Mode)
	assert.Equal(t, layout.Fit, col.Sizing.Height.Mode)
	require.Len(t, col.Children, 3)

	assert.Equal(t, &Label{Text: "Hello"}, col.Children[0])
	box := col.Children[1].(*Box)
	assert.Equal(t, color.RGBA{R: 255, A: 255}, box.Color)
	assert.Equal(t, layout.FixedSize(40, 10), box.Sizing)

	pos := col.Children[2].(*Positioned)
	assert.Equal(t, geom.V(5, 6), pos.At)
	assert.Equal(t, layout.Row, pos.Widget.(*Container).Flow.Direction)
}

// go test -run ^TestLoadTreeMounts$ ./ui -count 1
func TestLoadTreeMounts(t *testing.T) {
	root, err := LoadTree(strings.NewReader(doc))
	require.NoError(t, err)
	app := newApp(t, root, WithSize(300, 200))
	require.NoError(t, app.Tick(0))

	got, err := mado.NewQuery(app.World(), mado.Read[Text]()).Entities()
	require.NoError(t, err)
	assert.Len(t, got, 2)

	col := app.World().ChildrenOf(app.Root())[0]
	assert.Equal(t, float32(300), get[geom.Rect](t, app.World(), col).Width())
}

// go test -run ^TestLoadTreeErrors$ ./ui -count 1
func TestLoadTreeErrors(t *testing.T) {
	for name, src := range map[string]string{
		"unknown kind": "kind: slider",
		"bad size":     "kind: box\nsize: {width: wide}",
		"bad color":    "kind: box\ncolor: '#12'",
		"nested":       "kind: row\nchildren:\n  - kind: nope",
		"not yaml":     "kind: [",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := LoadTree(strings.NewReader(src))
			assert.Error(t, err)
		})
	}
}

// go test -run ^TestParseColor$ ./ui -count 1
func TestParseColor(t *testing.T) {
	for in, want := range map[string]color.RGBA{
		"":          {R: 255, G: 255, B: 255, A: 255},
		"#fff":      {R: 255, G: 255, B: 255, A: 255},
		"#102030":   {R: 0x10, G: 0x20, B: 0x30, A: 255},
		"10203040":  {R: 0x10, G: 0x20, B: 0x30, A: 0x40},
		"#00ff0080": {G: 255, A: 0x80},
	} {
		got, err := parseColor(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := parseColor("#zzzzzz")
	assert.Error(t, err)
}

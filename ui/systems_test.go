package ui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/edwinsyarief/mado"
	"github.com/edwinsyarief/mado/geom"
	"github.com/edwinsyarief/mado/layout"
)

// go test -run ^TestTemplatingKeepsExistingValues$ ./ui -count 1
func TestTemplatingKeepsExistingValues(t *testing.T) {
	app := newApp(t, &Positioned{At: geom.V(3, 4), Widget: &tagged{name: "bare", widget: WidgetFunc(func(*Scope) {})}})
	w := app.World()
	require.NoError(t, app.Tick(0))

	e := named(t, w, "bare")[0]
	assert.Equal(t, LocalPosition{X: 3, Y: 4}, get[LocalPosition](t, w, e))
	assert.Equal(t, ScreenPosition{X: 3, Y: 4}, get[ScreenPosition](t, w, e))
	assert.Equal(t, ModelMatrix(geom.Identity), get[ModelMatrix](t, w, e))
	assert.True(t, mado.Has[geom.Rect](w, e))

	// The canvas keeps the rectangle it was mounted with.
	assert.Equal(t, geom.V(800, 600), get[geom.Rect](t, w, app.Root()).Size())
}

// go test -run ^TestFontHydrationAndTextHeuristics$ ./ui -count 1
func TestFontHydrationAndTextHeuristics(t *testing.T) {
	app := newApp(t, Column(0,
		&tagged{name: "a", widget: &Label{Text: "hello"}},
		&tagged{name: "b", widget: &Label{Text: "hi"}},
		&tagged{name: "c", widget: &Label{Text: "x", Font: "missing"}},
	))
	w := app.World()
	require.NoError(t, app.Tick(0))

	a, b, c := named(t, w, "a")[0], named(t, w, "b")[0], named(t, w, "c")[0]
	fa := get[FontFace](t, w, a)
	assert.Equal(t, fa, get[FontFace](t, w, b), "one face per font name")
	assert.Equal(t, fa, get[FontFace](t, w, c), "unknown fonts fall back to the default")
	assert.Equal(t, 1, app.Frame().Assets.Len())

	assert.Equal(t, layout.IntrinsicSize{X: 35, Y: 13}, get[layout.IntrinsicSize](t, w, a))
	assert.Equal(t, geom.V(35, 13), get[geom.Rect](t, w, a).Size())
	assert.Equal(t, LocalPosition{Y: 13}, get[LocalPosition](t, w, b))

	// Changing the text updates the measurement on the next tick.
	require.NoError(t, mado.Set(w, a, Text{Content: "hello!!"}))
	require.NoError(t, app.Tick(0))
	assert.Equal(t, geom.V(49, 13), get[geom.Rect](t, w, a).Size())
}

// go test -run ^TestRegisteredFont$ ./ui -count 1
func TestRegisteredFont(t *testing.T) {
	app := newApp(t, Row(0, &Label{Text: "a"}, &Label{Text: "b", Font: "mono"}))
	loads := 0
	RegisterFont(app.World(), "mono", func() (font.Face, error) {
		loads++
		return basicfont.Face7x13, nil
	})
	require.NoError(t, app.Tick(0))
	require.NoError(t, app.Tick(0))
	assert.Equal(t, 1, loads)
	assert.Equal(t, 2, app.Frame().Assets.Len())
}

// go test -run ^TestMeasureText$ ./ui -count 1
func TestMeasureText(t *testing.T) {
	face := basicfont.Face7x13
	assert.Equal(t, geom.V(0, 13), MeasureText(face, ""))
	assert.Equal(t, geom.V(21, 26), MeasureText(face, "ab\ncde"))
}

// go test -run ^TestTransformNested$ ./ui -count 1
func TestTransformNested(t *testing.T) {
	app := newApp(t, &Positioned{
		At: geom.V(10, 10),
		Widget: Stack(&Positioned{
			At:     geom.V(5, 5),
			Widget: &tagged{name: "inner", widget: &Box{Sizing: layout.FixedSize(4, 4)}},
		}),
	})
	w := app.World()
	require.NoError(t, app.Tick(0))
	inner := named(t, w, "inner")[0]
	assert.Equal(t, ScreenPosition{X: 15, Y: 15}, get[ScreenPosition](t, w, inner))

	parent, ok := w.Parent(inner)
	require.True(t, ok)
	require.NoError(t, mado.Set(w, parent, LocalPosition{X: 20}))
	require.NoError(t, app.Tick(0))
	assert.Equal(t, ScreenPosition{X: 25, Y: 5}, get[ScreenPosition](t, w, inner))
}

// go test -run ^TestTweenFinishes$ ./ui -count 1
func TestTweenFinishes(t *testing.T) {
	app := newApp(t, &tagged{name: "mover", widget: WidgetFunc(func(s *Scope) {
		Set(s, MoveTo(geom.V(0, 0), geom.V(100, 50), 1, nil))
	})})
	w := app.World()
	e := named(t, w, "mover")[0]

	require.NoError(t, app.Tick(500*time.Millisecond))
	pos := get[LocalPosition](t, w, e)
	assert.InDelta(t, 50, pos.X, 0.01)
	assert.InDelta(t, 25, pos.Y, 0.01)
	assert.True(t, mado.Has[Tween](w, e))

	require.NoError(t, app.Tick(600*time.Millisecond))
	assert.Equal(t, LocalPosition{X: 100, Y: 50}, get[LocalPosition](t, w, e))
	assert.Equal(t, ScreenPosition{X: 100, Y: 50}, get[ScreenPosition](t, w, e))
	assert.False(t, mado.Has[Tween](w, e))
}

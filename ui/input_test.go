package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edwinsyarief/mado"
	"github.com/edwinsyarief/mado/geom"
	"github.com/edwinsyarief/mado/layout"
)

func buttonApp(t *testing.T) (*App, mado.Entity) {
	t.Helper()
	app := newApp(t, &Positioned{
		At:     geom.V(10, 10),
		Widget: &tagged{name: "button", widget: &Box{Sizing: layout.FixedSize(50, 20)}},
	}, WithSize(200, 100))
	require.NoError(t, app.Tick(0))
	return app, named(t, app.World(), "button")[0]
}

// go test -run ^TestHitTest$ ./ui -count 1
func TestHitTest(t *testing.T) {
	app, button := buttonApp(t)
	in := app.Input()

	hit, ok := in.HitTest(geom.V(20, 20))
	require.True(t, ok)
	assert.Equal(t, button, hit)

	hit, ok = in.HitTest(geom.V(5, 5))
	require.True(t, ok)
	assert.Equal(t, app.Root(), hit)

	hit, ok = in.HitTest(geom.V(60, 30))
	require.True(t, ok)
	assert.Equal(t, app.Root(), hit, "max edges are exclusive")

	_, ok = in.HitTest(geom.V(500, 500))
	assert.False(t, ok)
}

// go test -run ^TestPointerHover$ ./ui -count 1
func TestPointerHover(t *testing.T) {
	app, button := buttonApp(t)
	app.PointerMove(15, 15)
	assert.Equal(t, button, app.Input().Hovered)
	assert.Equal(t, geom.V(15, 15), app.Input().Pointer)
	app.PointerMove(150, 80)
	assert.Equal(t, app.Root(), app.Input().Hovered)
}

// go test -run ^TestClick$ ./ui -count 1
func TestClick(t *testing.T) {
	app, button := buttonApp(t)
	var clicks []Clicked
	mado.Subscribe(app.Frame().Events, func(c Clicked) { clicks = append(clicks, c) })

	app.PointerButton(20, 20, 0, true)
	app.PointerButton(25, 25, 0, false)
	require.Len(t, clicks, 1)
	assert.Equal(t, Clicked{Entity: button, Button: 0}, clicks[0])

	// Press on the button, release elsewhere.
	app.PointerButton(20, 20, 0, true)
	app.PointerButton(150, 80, 0, false)
	assert.Len(t, clicks, 1)

	// A release without a press does nothing.
	app.PointerButton(20, 20, 1, false)
	assert.Len(t, clicks, 1)
}

// go test -run ^TestKeyInputFollowsFocus$ ./ui -count 1
func TestKeyInputFollowsFocus(t *testing.T) {
	app, button := buttonApp(t)
	in := app.Input()
	var keys []FocusedKey
	mado.Subscribe(app.Frame().Events, func(k FocusedKey) { keys = append(keys, k) })

	// Nothing focused yet: the key is tracked but not targeted.
	app.KeyInput("a", true)
	assert.True(t, in.KeyDown("a"))
	assert.Empty(t, keys)
	app.KeyInput("a", false)
	assert.False(t, in.KeyDown("a"))

	app.PointerButton(20, 20, 0, true)
	assert.Equal(t, button, in.Focused)
	app.PointerButton(20, 20, 0, false)
	app.KeyInput("Enter", true)
	app.KeyInput("Enter", false)
	require.Len(t, keys, 2)
	assert.Equal(t, FocusedKey{Entity: button, Key: "Enter", Pressed: true}, keys[0])
	assert.Equal(t, FocusedKey{Entity: button, Key: "Enter", Pressed: false}, keys[1])

	// Pressing outside every node clears focus.
	app.PointerButton(500, 500, 0, true)
	assert.True(t, in.Focused.IsZero())
	app.KeyInput("b", true)
	assert.Len(t, keys, 2)
	assert.True(t, in.KeyDown("b"))
}

// go test -run ^TestFocusDroppedWithEntity$ ./ui -count 1
func TestFocusDroppedWithEntity(t *testing.T) {
	app, button := buttonApp(t)
	var keys []FocusedKey
	mado.Subscribe(app.Frame().Events, func(k FocusedKey) { keys = append(keys, k) })

	app.PointerButton(20, 20, 0, true)
	require.Equal(t, button, app.Input().Focused)
	require.NoError(t, app.World().Despawn(button))

	app.KeyInput("x", true)
	assert.Empty(t, keys)
	assert.True(t, app.Input().Focused.IsZero())
}

// Package ui is the widget layer on top of the entity store: it mounts
// widgets into entities, keeps their baseline components complete, measures
// text, animates positions and turns the resolved tree into screen
// coordinates once per tick.
package ui

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/math/f32"

	"github.com/edwinsyarief/mado/assets"
	"github.com/edwinsyarief/mado/geom"
	"github.com/edwinsyarief/mado/layout"
)

// Name is a debug label for an entity.
type Name string

// LocalPosition is a node's offset from its parent.
type LocalPosition = layout.LocalPosition

// ScreenPosition is the absolute position of a node, derived every tick from
// the LocalPosition chain up to its root.
type ScreenPosition geom.Vec2

// ModelMatrix maps the unit quad onto a node's on-screen rectangle.
type ModelMatrix f32.Mat4

// Text is the string a label displays.
type Text struct {
	Content string
}

// Font names the face a Text is measured and drawn with.
type Font struct {
	Name string
}

// FontFace is the resolved face for a Font. It is written by font hydration.
type FontFace struct {
	Handle assets.Handle[font.Face]
}

// FilledRect paints a node's rectangle with a color, optionally modulating
// an image.
type FilledRect struct {
	Color color.RGBA
	Image assets.Handle[image.Image]
}

// Package layout resolves the size and placement of every node in the
// entity tree from the limits its parent offers and its own sizing policy.
package layout

import (
	"math"

	"github.com/edwinsyarief/mado/geom"
)

// Limits is the box a parent offers a child: the child's size must lie
// between Min and Max on both axes.
type Limits struct {
	Min, Max geom.Vec2
}

// Unbounded offers any size at all.
var Unbounded = Limits{Max: geom.V(float32(math.Inf(1)), float32(math.Inf(1)))}

// Normalize returns l with Min pulled down to Max where it exceeds it.
func (l Limits) Normalize() Limits {
	return Limits{Min: l.Min.Min(l.Max).Max(geom.Vec2{}), Max: l.Max.Max(geom.Vec2{})}
}

// Clamp constrains size to l.
func (l Limits) Clamp(size geom.Vec2) geom.Vec2 {
	return size.Clamp(l.Min, l.Max)
}

// Mode is a sizing policy for one axis.
type Mode uint8

const (
	// Fit shrinks the node around its content. It is the default.
	Fit Mode = iota
	// Fill expands the node to the offered maximum.
	Fill
	// Fixed requests an exact size, still clamped to the offered limits.
	Fixed
)

func (m Mode) String() string {
	switch m {
	case Fit:
		return "fit"
	case Fill:
		return "fill"
	case Fixed:
		return "fixed"
	}
	return "unknown"
}

// Dimension is the sizing policy of one axis.
type Dimension struct {
	Mode  Mode
	Value float32
}

// Px returns a fixed dimension of v logical pixels.
func Px(v float32) Dimension { return Dimension{Mode: Fixed, Value: v} }

// Grow returns a dimension that fills the offered space.
func Grow() Dimension { return Dimension{Mode: Fill} }

// Shrink returns a dimension that fits its content.
func Shrink() Dimension { return Dimension{Mode: Fit} }

// Sizing is the per-axis sizing policy of a node. Nodes without a Sizing
// component fit their content on both axes.
type Sizing struct {
	Width, Height Dimension
}

// FixedSize is shorthand for a Sizing with both axes fixed.
func FixedSize(w, h float32) Sizing {
	return Sizing{Width: Px(w), Height: Px(h)}
}

// FillSize is shorthand for a Sizing filling both axes.
func FillSize() Sizing {
	return Sizing{Width: Grow(), Height: Grow()}
}

// Padding is the space between a node's edge and its content.
type Padding struct {
	Left, Right, Top, Bottom float32
}

// Uniform returns the same padding on every side.
func Uniform(p float32) Padding {
	return Padding{Left: p, Right: p, Top: p, Bottom: p}
}

// Size returns the total horizontal and vertical padding.
func (p Padding) Size() geom.Vec2 {
	return geom.V(p.Left+p.Right, p.Top+p.Bottom)
}

// Origin returns the offset of the content box.
func (p Padding) Origin() geom.Vec2 {
	return geom.V(p.Left, p.Top)
}

// Direction selects how a node places its children.
type Direction uint8

const (
	// Stack leaves each child at its own LocalPosition. It is the default.
	Stack Direction = iota
	// Row places children left to right.
	Row
	// Column places children top to bottom.
	Column
)

// Flow is a node's child placement policy.
type Flow struct {
	Direction Direction
	Spacing   float32
}

// LocalPosition is a node's offset from its parent's screen position. Row and
// Column flows write it; Stack leaves it to the node's owner.
type LocalPosition geom.Vec2

// IntrinsicSize is the minimum content size of a leaf as measured by content
// heuristics, such as the extent of a label's text.
type IntrinsicSize geom.Vec2

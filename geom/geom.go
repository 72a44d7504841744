// Package geom holds the small value types shared by layout, transform
// propagation and rendering.
package geom

import (
	"fmt"
	"math"

	"golang.org/x/image/math/f32"
)

// Vec2 is a 2D vector in logical pixels.
type Vec2 struct {
	X, Y float32
}

// V is shorthand for Vec2{X: x, Y: y}.
func V(x, y float32) Vec2 {
	return Vec2{X: x, Y: y}
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Scale multiplies both components by s.
func (v Vec2) Scale(s float32) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Min returns the component-wise minimum.
func (v Vec2) Min(o Vec2) Vec2 { return Vec2{min(v.X, o.X), min(v.Y, o.Y)} }

// Max returns the component-wise maximum.
func (v Vec2) Max(o Vec2) Vec2 { return Vec2{max(v.X, o.X), max(v.Y, o.Y)} }

// Clamp limits v component-wise to [lo, hi]. When lo exceeds hi on an axis,
// lo wins.
func (v Vec2) Clamp(lo, hi Vec2) Vec2 {
	return v.Min(hi).Max(lo)
}

// LessEq reports whether v <= o on both axes.
func (v Vec2) LessEq(o Vec2) bool {
	return v.X <= o.X && v.Y <= o.Y
}

func (v Vec2) String() string {
	return fmt.Sprintf("(%g, %g)", v.X, v.Y)
}

// Rect is an axis-aligned rectangle. A valid Rect has Min <= Max on both axes.
type Rect struct {
	Min, Max Vec2
}

// FromSize returns the rectangle at the origin with the given size.
func FromSize(size Vec2) Rect {
	return Rect{Max: size.Max(Vec2{})}
}

// Size returns Max - Min, clamped so it is never negative.
func (r Rect) Size() Vec2 {
	return r.Max.Sub(r.Min).Max(Vec2{})
}

func (r Rect) Width() float32 { return r.Size().X }

func (r Rect) Height() float32 { return r.Size().Y }

// Valid reports whether Min <= Max holds.
func (r Rect) Valid() bool {
	return r.Min.LessEq(r.Max)
}

// Translate moves the rectangle by d.
func (r Rect) Translate(d Vec2) Rect {
	return Rect{Min: r.Min.Add(d), Max: r.Max.Add(d)}
}

// Contains reports whether p lies inside r. Max edges are exclusive.
func (r Rect) Contains(p Vec2) bool {
	return p.X >= r.Min.X && p.Y >= r.Min.Y && p.X < r.Max.X && p.Y < r.Max.Y
}

// AlignToGrid snaps both corners to whole pixels so edges stay crisp.
func (r Rect) AlignToGrid() Rect {
	return Rect{
		Min: Vec2{float32(math.Round(float64(r.Min.X))), float32(math.Round(float64(r.Min.Y)))},
		Max: Vec2{float32(math.Round(float64(r.Max.X))), float32(math.Round(float64(r.Max.Y)))},
	}
}

func (r Rect) String() string {
	return fmt.Sprintf("[%v-%v]", r.Min, r.Max)
}

// Identity is the identity model matrix.
var Identity = f32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 1, 0,
	0, 0, 0, 1,
}

// Model returns the row-major matrix mapping the unit quad onto r placed at
// screen position pos.
func Model(r Rect, pos Vec2) f32.Mat4 {
	r = r.Translate(pos).AlignToGrid()
	size := r.Size()
	return f32.Mat4{
		size.X, 0, 0, r.Min.X,
		0, size.Y, 0, r.Min.Y,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Apply transforms the point p by the 2D part of m.
func Apply(m f32.Mat4, p Vec2) Vec2 {
	return Vec2{
		X: m[0]*p.X + m[1]*p.Y + m[3],
		Y: m[4]*p.X + m[5]*p.Y + m[7],
	}
}

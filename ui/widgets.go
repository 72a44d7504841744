package ui

import (
	"image"
	"image/color"

	"github.com/edwinsyarief/mado/assets"
	"github.com/edwinsyarief/mado/geom"
	"github.com/edwinsyarief/mado/layout"
)

// DefaultFont is the font name used by labels that do not pick one.
const DefaultFont = "default"

// Canvas is a root widget covering the window.
type Canvas struct {
	Size    geom.Vec2
	Content []Widget
}

// Mount names the node "canvas", sizes it to the window and attaches the
// content.
func (c *Canvas) Mount(s *Scope) {
	Set(s, Name("canvas"))
	Set(s, geom.FromSize(c.Size))
	for _, w := range c.Content {
		s.Attach(w)
	}
}

// Box is a filled rectangle that may hold children.
type Box struct {
	Sizing   layout.Sizing
	Color    color.RGBA
	Image    assets.Handle[image.Image]
	Children []Widget
}

// Mount stores the fill and attaches the children. Name and Sizing are
// defaults a caller may have set already.
func (b *Box) Mount(s *Scope) {
	SetDefault(s, Name("box"))
	SetDefault(s, b.Sizing)
	Set(s, FilledRect{Color: b.Color, Image: b.Image})
	for _, w := range b.Children {
		s.Attach(w)
	}
}

// Label displays a line of text.
type Label struct {
	Text string
	Font string
}

// Mount sets the text and falls back to DefaultFont when Font is empty.
func (l *Label) Mount(s *Scope) {
	SetDefault(s, Name("label"))
	Set(s, Text{Content: l.Text})
	font := l.Font
	if font == "" {
		font = DefaultFont
	}
	SetDefault(s, Font{Name: font})
}

// Container lays out its children with a flow.
type Container struct {
	Flow     layout.Flow
	Padding  layout.Padding
	Sizing   layout.Sizing
	Children []Widget
}

// Stack places children at their own local positions.
func Stack(children ...Widget) *Container {
	return &Container{Children: children}
}

// Row places children left to right.
func Row(spacing float32, children ...Widget) *Container {
	return &Container{Flow: layout.Flow{Direction: layout.Row, Spacing: spacing}, Children: children}
}

// Column places children top to bottom.
func Column(spacing float32, children ...Widget) *Container {
	return &Container{Flow: layout.Flow{Direction: layout.Column, Spacing: spacing}, Children: children}
}

// Mount applies the flow, padding and sizing as defaults and attaches the
// children in order.
func (c *Container) Mount(s *Scope) {
	SetDefault(s, Name("container"))
	SetDefault(s, c.Flow)
	SetDefault(s, c.Padding)
	SetDefault(s, c.Sizing)
	for _, w := range c.Children {
		s.Attach(w)
	}
}

// Positioned mounts Widget at a fixed offset from its parent.
type Positioned struct {
	At     geom.Vec2
	Widget Widget
}

// Mount sets the local position, then mounts Widget into the same node.
func (p *Positioned) Mount(s *Scope) {
	Set(s, LocalPosition(p.At))
	if p.Widget != nil {
		p.Widget.Mount(s)
	}
}

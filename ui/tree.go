package ui

import (
	"fmt"
	"image/color"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/edwinsyarief/mado/geom"
	"github.com/edwinsyarief/mado/layout"
)

// Node is one widget in a declarative tree document.
//
//	kind: column
//	spacing: 4
//	padding: 8
//	size: {width: fill, height: 200}
//	children:
//	  - kind: label
//	    text: Hello
type Node struct {
	Kind     string      `yaml:"kind"`
	Text     string      `yaml:"text,omitempty"`
	Font     string      `yaml:"font,omitempty"`
	Color    string      `yaml:"color,omitempty"`
	Spacing  float32     `yaml:"spacing,omitempty"`
	Padding  float32     `yaml:"padding,omitempty"`
	Position *[2]float32 `yaml:"position,omitempty"`
	Size     SizeSpec    `yaml:"size,omitempty"`
	Children []Node      `yaml:"children,omitempty"`
}

// SizeSpec is the sizing of a node in a tree document.
type SizeSpec struct {
	Width  DimensionSpec `yaml:"width,omitempty"`
	Height DimensionSpec `yaml:"height,omitempty"`
}

// DimensionSpec accepts "fit", "fill" or a number of logical pixels.
type DimensionSpec layout.Dimension

func (d *DimensionSpec) UnmarshalYAML(n *yaml.Node) error {
	switch strings.ToLower(n.Value) {
	case "", "fit":
		*d = DimensionSpec(layout.Shrink())
		return nil
	case "fill":
		*d = DimensionSpec(layout.Grow())
		return nil
	}
	v, err := strconv.ParseFloat(n.Value, 32)
	if err != nil {
		return fmt.Errorf("line %d: dimension %q: want fit, fill or a number", n.Line, n.Value)
	}
	*d = DimensionSpec(layout.Px(float32(v)))
	return nil
}

func (s SizeSpec) sizing() layout.Sizing {
	return layout.Sizing{Width: layout.Dimension(s.Width), Height: layout.Dimension(s.Height)}
}

// LoadTree decodes a tree document into a widget.
func LoadTree(r io.Reader) (Widget, error) {
	var root Node
	if err := yaml.NewDecoder(r).Decode(&root); err != nil {
		return nil, fmt.Errorf("decode tree: %w", err)
	}
	return root.Build()
}

// Build converts the node and its children into widgets.
func (n Node) Build() (Widget, error) {
	children := make([]Widget, 0, len(n.Children))
	for i, c := range n.Children {
		w, err := c.Build()
		if err != nil {
			return nil, fmt.Errorf("%s child %d: %w", n.Kind, i, err)
		}
		children = append(children, w)
	}

	var w Widget
	switch strings.ToLower(n.Kind) {
	case "label":
		w = &Label{Text: n.Text, Font: n.Font}
	case "box":
		c, err := parseColor(n.Color)
		if err != nil {
			return nil, err
		}
		w = &Box{Sizing: n.Size.sizing(), Color: c, Children: children}
	case "stack", "row", "column":
		c := &Container{
			Padding:  layout.Uniform(n.Padding),
			Sizing:   n.Size.sizing(),
			Children: children,
		}
		c.Flow.Spacing = n.Spacing
		switch strings.ToLower(n.Kind) {
		case "row":
			c.Flow.Direction = layout.Row
		case "column":
			c.Flow.Direction = layout.Column
		}
		w = c
	default:
		return nil, fmt.Errorf("unknown widget kind %q", n.Kind)
	}
	if n.Position != nil {
		w = &Positioned{At: geom.V(n.Position[0], n.Position[1]), Widget: w}
	}
	return w, nil
}

// parseColor reads #rgb, #rrggbb or #rrggbbaa. An empty string is opaque
// white.
func parseColor(s string) (color.RGBA, error) {
	if s == "" {
		return color.RGBA{R: 255, G: 255, B: 255, A: 255}, nil
	}
	hex := strings.TrimPrefix(s, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return color.RGBA{}, fmt.Errorf("color %q: want #rgb, #rrggbb or #rrggbbaa", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

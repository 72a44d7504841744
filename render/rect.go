// Package render is a software renderer for the resolved widget tree. It
// follows the renderer contract of the ui package: build draw commands for
// changed shapes, refresh model matrices, then rasterize.
package render

import (
	"fmt"
	"image"
	"image/color"

	"github.com/gogpu/gg"
	"go.uber.org/zap"

	"github.com/edwinsyarief/mado"
	"github.com/edwinsyarief/mado/assets"
	"github.com/edwinsyarief/mado/geom"
	"github.com/edwinsyarief/mado/ui"
)

// Texture is the rasterizer-side copy of a source image.
type Texture struct {
	buf  *gg.ImageBuf
	size image.Point
}

// Size returns the source image dimensions.
func (t Texture) Size() image.Point { return t.size }

// DrawCommand is the per-entity payload the draw pass consumes. It is
// rebuilt whenever the entity's FilledRect changes.
type DrawCommand struct {
	Texture assets.Handle[Texture]
	Color   color.RGBA
	Plain   bool
}

// RectRenderer draws every FilledRect in the tree into an offscreen image.
type RectRenderer struct {
	frame    *ui.Frame
	white    assets.Handle[image.Image]
	textures *assets.HandleMap[image.Image, assets.Handle[Texture]]

	rects    *mado.Query
	objects  *mado.Query
	draws    *mado.Query
	commands *mado.Query
	cmd      *mado.CommandBuffer

	dc     *gg.Context
	resize *geom.Vec2
	builds int
	log    *zap.Logger
}

// NewRectRenderer returns a renderer drawing into a width x height image. It
// follows Resized events published on the frame.
func NewRectRenderer(f *ui.Frame, width, height int, log *zap.Logger) *RectRenderer {
	if log == nil {
		log = zap.NewNop()
	}
	w := f.World
	white := image.NewRGBA(image.Rect(0, 0, 1, 1))
	white.Set(0, 0, color.White)
	r := &RectRenderer{
		frame:    f,
		white:    assets.Insert[image.Image](f.Assets, white),
		textures: assets.NewHandleMap[image.Image, assets.Handle[Texture]](),
		rects:    mado.NewQuery(w, mado.Changed[ui.FilledRect]()),
		objects: mado.NewQuery(w,
			mado.Read[geom.Rect](),
			mado.Read[ui.ScreenPosition](),
			mado.Write[ui.ModelMatrix](),
			mado.With[ui.FilledRect](),
		),
		draws:    mado.NewQuery(w, mado.Read[ui.ModelMatrix]()).DepthFirst(),
		commands: mado.NewQuery(w, mado.Write[DrawCommand]()),
		cmd:      mado.NewCommandBuffer(),
		dc:       gg.NewContext(width, height),
		log:      log,
	}
	mado.Subscribe(f.Events, func(ev ui.Resized) {
		size := ev.Size
		r.resize = &size
	})
	return r
}

// Image returns the last rendered frame.
func (r *RectRenderer) Image() image.Image {
	return r.dc.Image()
}

// SavePNG writes the last rendered frame to path.
func (r *RectRenderer) SavePNG(path string) error {
	return r.dc.SavePNG(path)
}

// Textures returns how many source images have a rasterizer texture.
func (r *RectRenderer) Textures() int {
	return r.textures.Len()
}

// Builds returns how many draw commands have been built so far.
func (r *RectRenderer) Builds() int {
	return r.builds
}

// BuildCommands creates draw commands for every FilledRect written since the
// previous call. Textures are derived once per source image handle.
func (r *RectRenderer) BuildCommands() error {
	b, err := r.rects.Borrow()
	if err != nil {
		return err
	}
	for b.Next() {
		fill := mado.Fetch[ui.FilledRect](b)
		src := fill.Image
		if !r.frame.Assets.Valid(src.ID()) {
			src = r.white
		}
		tex := r.textures.Entry(src).OrInsertWithKey(r.upload)
		r.cmd.Set(b.Entity(), mado.Value(DrawCommand{
			Texture: tex,
			Color:   fill.Color,
			Plain:   src == r.white,
		}))
		r.builds++
	}
	b.Release()
	return r.cmd.Apply(r.frame.World)
}

func (r *RectRenderer) upload(h assets.Handle[image.Image]) assets.Handle[Texture] {
	img, ok := assets.Get(r.frame.Assets, h)
	if !ok {
		return assets.Handle[Texture]{}
	}
	tex := Texture{buf: gg.ImageBufFromImage(img), size: img.Bounds().Size()}
	return assets.Insert(r.frame.Assets, tex)
}

// release frees a texture whose source image left the cache.
func (r *RectRenderer) release(tex assets.Handle[Texture]) {
	assets.Remove(r.frame.Assets, tex)
}

// demote turns draw commands whose texture was released into plain fills
// until their FilledRect changes again.
func (r *RectRenderer) demote() error {
	b, err := r.commands.Borrow()
	if err != nil {
		return err
	}
	defer b.Release()
	white := r.textures.Entry(r.white).OrInsertWithKey(r.upload)
	for b.Next() {
		cmd := mado.Fetch[DrawCommand](b)
		if cmd.Plain || r.frame.Assets.Valid(cmd.Texture.ID()) {
			continue
		}
		cmd.Texture, cmd.Plain = white, true
		*mado.FetchMut[DrawCommand](b) = cmd
	}
	return nil
}

// Update recomputes the model matrix of every filled node from its Rect and
// ScreenPosition, snapped to whole pixels.
func (r *RectRenderer) Update() error {
	b, err := r.objects.Borrow()
	if err != nil {
		return err
	}
	defer b.Release()
	for b.Next() {
		rect := mado.Fetch[geom.Rect](b)
		pos := geom.Vec2(mado.Fetch[ui.ScreenPosition](b))
		m := ui.ModelMatrix(geom.Model(rect, pos))
		if mado.Fetch[ui.ModelMatrix](b) != m {
			*mado.FetchMut[ui.ModelMatrix](b) = m
		}
	}
	return nil
}

// Draw runs the three passes and rasterizes the tree parents first. Any
// failure is wrapped with ui.ErrRenderFailure.
func (r *RectRenderer) Draw(f *ui.Frame) error {
	if r.resize != nil {
		size := *r.resize
		r.resize = nil
		if err := r.dc.Resize(int(size.X), int(size.Y)); err != nil {
			return fmt.Errorf("%w: %w", ui.ErrRenderFailure, err)
		}
	}
	if err := r.BuildCommands(); err != nil {
		return fmt.Errorf("%w: build commands: %w", ui.ErrRenderFailure, err)
	}
	if err := r.Update(); err != nil {
		return fmt.Errorf("%w: update: %w", ui.ErrRenderFailure, err)
	}
	if n := r.textures.RetainFunc(f.Assets, r.release); n > 0 {
		r.log.Debug("dropped stale textures", zap.Int("count", n))
		if err := r.demote(); err != nil {
			return fmt.Errorf("%w: demote: %w", ui.ErrRenderFailure, err)
		}
	}

	r.dc.Clear()
	b, err := r.draws.Borrow()
	if err != nil {
		return fmt.Errorf("%w: %w", ui.ErrRenderFailure, err)
	}
	defer b.Release()
	for b.Next() {
		cmd, ok := mado.Lookup[DrawCommand](f.World, b.Entity())
		if !ok {
			continue
		}
		if err := r.paint(f, mado.Fetch[ui.ModelMatrix](b), cmd); err != nil {
			return fmt.Errorf("%w: draw %v: %w", ui.ErrRenderFailure, b.Entity(), err)
		}
	}
	return nil
}

func (r *RectRenderer) paint(f *ui.Frame, m ui.ModelMatrix, cmd DrawCommand) error {
	x, y := float64(m[3]), float64(m[7])
	w, h := float64(m[0]), float64(m[5])
	if w <= 0 || h <= 0 {
		return nil
	}
	r.dc.SetColor(cmd.Color)
	r.dc.DrawRectangle(x, y, w, h)
	if err := r.dc.Fill(); err != nil {
		return err
	}
	if cmd.Plain {
		return nil
	}
	tex, ok := assets.Get(f.Assets, cmd.Texture)
	if !ok || tex.buf == nil {
		return nil
	}
	r.dc.DrawImageEx(tex.buf, gg.DrawImageOptions{
		X:             x,
		Y:             y,
		DstWidth:      w,
		DstHeight:     h,
		Interpolation: gg.InterpBilinear,
		Opacity:       float64(cmd.Color.A) / 255,
		BlendMode:     gg.BlendNormal,
	})
	return nil
}

// Close releases the drawing context.
func (r *RectRenderer) Close() error {
	return r.dc.Close()
}

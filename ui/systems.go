package ui

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/edwinsyarief/mado"
	"github.com/edwinsyarief/mado/assets"
	"github.com/edwinsyarief/mado/geom"
	"github.com/edwinsyarief/mado/layout"
)

// NewSchedule builds the per-tick pipeline: templating, flush, font
// hydration, flush, then tweens, text heuristics, layout and transform
// propagation in one stage.
func NewSchedule(log *zap.Logger) *mado.Schedule {
	if log == nil {
		log = zap.NewNop()
	}
	return mado.NewSchedule().
		WithSystem(TemplatingSystem(log)).
		Flush().
		WithSystem(FontHydrationSystem(log)).
		Flush().
		WithSystem(TweenSystem()).
		WithSystem(TextHeuristicsSystem()).
		WithSystem(layout.NewSystem(log)).
		WithSystem(TransformSystem())
}

// TemplatingSystem patches entities missing any of the baseline position,
// transform or geometry components with defaults. Values already present are
// left alone.
func TemplatingSystem(log *zap.Logger) mado.System {
	var queries []*mado.Query
	seen := map[mado.Entity]struct{}{}
	return mado.NewSystem("templating", func(w *mado.World, cmd *mado.CommandBuffer) error {
		if queries == nil {
			queries = []*mado.Query{
				mado.NewQuery(w, mado.Without[ScreenPosition]()),
				mado.NewQuery(w, mado.Without[LocalPosition]()),
				mado.NewQuery(w, mado.Without[ModelMatrix]()),
				mado.NewQuery(w, mado.Without[geom.Rect]()),
			}
		}
		clear(seen)
		for _, q := range queries {
			b, err := q.Borrow()
			if err != nil {
				return err
			}
			for b.Next() {
				e := b.Entity()
				if _, ok := seen[e]; ok {
					continue
				}
				seen[e] = struct{}{}
				log.Debug("incomplete widget", zap.Stringer("entity", e))
				cmd.SetMissing(e,
					mado.Value(ScreenPosition{}),
					mado.Value(LocalPosition{}),
					mado.Value(ModelMatrix(geom.Identity)),
					mado.Value(geom.Rect{}),
				)
			}
			b.Release()
		}
		return nil
	})
}

// FontLoader produces a face for a registered font name.
type FontLoader func() (font.Face, error)

// Fonts maps font names to loaders. It is stored as a world resource; the
// default font is always available.
type Fonts struct {
	loaders map[string]FontLoader
}

// RegisterFont makes name resolvable by font hydration.
func RegisterFont(w *mado.World, name string, load FontLoader) {
	fonts, ok := mado.GetResource[Fonts](w.Resources())
	if !ok {
		fonts = &Fonts{}
		mado.SetResource(w.Resources(), fonts)
	}
	if fonts.loaders == nil {
		fonts.loaders = make(map[string]FontLoader)
	}
	fonts.loaders[name] = load
}

func (f *Fonts) loader(name string) (FontLoader, bool) {
	if f != nil {
		if l, ok := f.loaders[name]; ok {
			return l, true
		}
	}
	if name == DefaultFont {
		return func() (font.Face, error) { return basicfont.Face7x13, nil }, true
	}
	return nil, false
}

// FontHydrationSystem resolves Font names into FontFace handles through the
// asset cache, loading each named face once. Unknown names fall back to the
// default font.
func FontHydrationSystem(log *zap.Logger) mado.System {
	var pending *mado.Query
	return mado.NewSystem("font_hydration", func(w *mado.World, cmd *mado.CommandBuffer) error {
		if pending == nil {
			pending = mado.NewQuery(w, mado.Read[Font](), mado.Without[FontFace]())
		}
		frame := FrameOf(w)
		fonts, _ := mado.GetResource[Fonts](w.Resources())
		b, err := pending.Borrow()
		if err != nil {
			return err
		}
		defer b.Release()
		for b.Next() {
			name := mado.Fetch[Font](b).Name
			load, ok := fonts.loader(name)
			if !ok {
				log.Warn("unknown font, using default", zap.String("font", name))
				name = DefaultFont
				load, _ = fonts.loader(name)
			}
			h, err := assets.Load(frame.Assets, "font:"+name, load)
			if err != nil {
				return fmt.Errorf("hydrate font %q: %w", name, err)
			}
			cmd.Set(b.Entity(), mado.Value(FontFace{Handle: h}))
		}
		return nil
	})
}

// MeasureText returns the extent of s drawn with face. Lines are separated
// by newlines.
func MeasureText(face font.Face, s string) geom.Vec2 {
	lines := strings.Split(s, "\n")
	var width int
	for _, line := range lines {
		width = max(width, font.MeasureString(face, line).Ceil())
	}
	height := face.Metrics().Height.Ceil() * len(lines)
	return geom.V(float32(width), float32(height))
}

// TextHeuristicsSystem measures every text node and stores the result as its
// layout.IntrinsicSize, writing only when the measurement changed.
func TextHeuristicsSystem() mado.System {
	type measured struct {
		e    mado.Entity
		size layout.IntrinsicSize
	}
	var (
		texts *mado.Query
		out   []measured
	)
	return mado.NewSystem("text_heuristics", func(w *mado.World, _ *mado.CommandBuffer) error {
		if texts == nil {
			texts = mado.NewQuery(w, mado.Read[Text](), mado.Read[FontFace]())
		}
		frame := FrameOf(w)
		b, err := texts.Borrow()
		if err != nil {
			return err
		}
		out = out[:0]
		for b.Next() {
			face, ok := assets.Get(frame.Assets, mado.Fetch[FontFace](b).Handle)
			if !ok {
				continue
			}
			size := MeasureText(face, mado.Fetch[Text](b).Content)
			out = append(out, measured{e: b.Entity(), size: layout.IntrinsicSize(size)})
		}
		b.Release()
		// IntrinsicSize may be new on the entity, which is structural, so it is
		// written after the borrow ends.
		for _, m := range out {
			if _, err := mado.UpdateDedup(w, m.e, m.size); err != nil {
				return err
			}
		}
		return nil
	})
}

// TransformSystem walks the tree depth first and sets every node's
// ScreenPosition to its parent's plus its own LocalPosition. Unchanged
// positions are not rewritten.
func TransformSystem() mado.System {
	var q *mado.Query
	return mado.NewSystem("transform", func(w *mado.World, _ *mado.CommandBuffer) error {
		if q == nil {
			q = mado.NewQuery(w, mado.Write[ScreenPosition](), mado.Read[LocalPosition]()).DepthFirst()
		}
		b, err := q.Borrow()
		if err != nil {
			return err
		}
		defer b.Release()
		mado.Traverse(b, geom.Vec2{}, func(b *mado.Borrow, parent geom.Vec2) geom.Vec2 {
			pos := parent.Add(geom.Vec2(mado.Fetch[LocalPosition](b)))
			if geom.Vec2(mado.Fetch[ScreenPosition](b)) != pos {
				*mado.FetchMut[ScreenPosition](b) = ScreenPosition(pos)
			}
			return pos
		})
		return nil
	})
}

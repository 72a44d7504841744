package layout

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/edwinsyarief/mado"
	"github.com/edwinsyarief/mado/geom"
)

// Solver computes node rectangles over a world's entity tree. Every write it
// makes goes through mado.UpdateDedup, so a pass over unchanged inputs leaves
// Changed filters downstream quiet.
type Solver struct {
	w      *mado.World
	writes int
}

// NewSolver returns a solver over w.
func NewSolver(w *mado.World) *Solver {
	return &Solver{w: w}
}

// Writes returns how many component writes the solver has made, unchanged
// values excluded.
func (s *Solver) Writes() int {
	return s.writes
}

// Solve resolves e and its subtree within limits, stores e's Rect and
// returns it. The rectangle sits at the origin: where it lands on screen is
// decided by LocalPosition.
func (s *Solver) Solve(e mado.Entity, limits Limits) (geom.Rect, error) {
	limits = limits.Normalize()
	sizing, _ := mado.Lookup[Sizing](s.w, e)
	pad, _ := mado.Lookup[Padding](s.w, e)
	flow, _ := mado.Lookup[Flow](s.w, e)

	// The box offered to children: the node's own size on axes where it is
	// known up front, the offered maximum where it depends on content.
	outer := geom.V(
		preferred(sizing.Width, limits.Min.X, limits.Max.X),
		preferred(sizing.Height, limits.Min.Y, limits.Max.Y),
	)
	inner := outer.Sub(pad.Size()).Max(geom.Vec2{})

	content, err := s.placeChildren(e, flow, pad, inner)
	if err != nil {
		return geom.Rect{}, err
	}
	if intrinsic, ok := mado.Lookup[IntrinsicSize](s.w, e); ok {
		content = content.Max(geom.Vec2(intrinsic))
	}
	fit := content.Add(pad.Size())

	size := limits.Clamp(geom.V(
		resolve(sizing.Width, fit.X, limits.Max.X),
		resolve(sizing.Height, fit.Y, limits.Max.Y),
	))
	rect := geom.FromSize(size)
	if err := s.write(e, rect); err != nil {
		return geom.Rect{}, err
	}
	return rect, nil
}

// placeChildren solves the children of e inside the content box and returns
// the extent they cover.
func (s *Solver) placeChildren(e mado.Entity, flow Flow, pad Padding, inner geom.Vec2) (geom.Vec2, error) {
	kids, _ := mado.Lookup[mado.Children](s.w, e)
	var extent geom.Vec2
	cursor := pad.Origin()
	for i, child := range kids {
		if !s.w.IsAlive(child) {
			continue
		}
		offer := Limits{Max: inner}
		switch flow.Direction {
		case Row:
			offer.Max.X = max(0, inner.X-(cursor.X-pad.Left))
		case Column:
			offer.Max.Y = max(0, inner.Y-(cursor.Y-pad.Top))
		}
		r, err := s.Solve(child, offer)
		if err != nil {
			return geom.Vec2{}, fmt.Errorf("layout child %d of %v: %w", i, e, err)
		}
		size := r.Size()
		switch flow.Direction {
		case Row:
			if err := s.place(child, cursor); err != nil {
				return geom.Vec2{}, err
			}
			extent = geom.V(cursor.X-pad.Left+size.X, max(extent.Y, size.Y))
			cursor.X += size.X + flow.Spacing
		case Column:
			if err := s.place(child, cursor); err != nil {
				return geom.Vec2{}, err
			}
			extent = geom.V(max(extent.X, size.X), cursor.Y-pad.Top+size.Y)
			cursor.Y += size.Y + flow.Spacing
		default:
			local, _ := mado.Lookup[LocalPosition](s.w, child)
			extent = extent.Max(geom.Vec2(local).Add(size))
		}
	}
	return extent, nil
}

func (s *Solver) place(e mado.Entity, at geom.Vec2) error {
	changed, err := mado.UpdateDedup(s.w, e, LocalPosition(at))
	if changed {
		s.writes++
	}
	return err
}

func (s *Solver) write(e mado.Entity, r geom.Rect) error {
	changed, err := mado.UpdateDedup(s.w, e, r)
	if changed {
		s.writes++
	}
	return err
}

// preferred is the size an axis offers its children before content is known.
func preferred(d Dimension, lo, hi float32) float32 {
	if d.Mode == Fixed {
		return min(max(d.Value, lo), hi)
	}
	return hi
}

// resolve picks the final size of an axis given the content fit.
func resolve(d Dimension, fit, hi float32) float32 {
	switch d.Mode {
	case Fixed:
		return d.Value
	case Fill:
		if !math.IsInf(float64(hi), 1) {
			return hi
		}
	}
	return fit
}

// NewSystem returns the layout system. For every root, an entity with a Rect
// and Children but no parent, it solves each child within the root's size.
func NewSystem(log *zap.Logger) mado.System {
	if log == nil {
		log = zap.NewNop()
	}
	var (
		roots  *mado.Query
		solver *Solver
	)
	return mado.NewSystem("layout", func(w *mado.World, _ *mado.CommandBuffer) error {
		if roots == nil {
			roots = mado.NewQuery(w,
				mado.Read[geom.Rect](),
				mado.Read[mado.Children](),
				mado.Without[mado.ChildOf](),
			)
			solver = NewSolver(w)
		}
		// Collect roots first: the solver writes Rect, which the query borrows.
		entities, err := roots.Entities()
		if err != nil {
			return err
		}
		before := solver.Writes()
		for _, root := range entities {
			canvas, err := mado.Get[geom.Rect](w, root)
			if err != nil {
				return err
			}
			limits := Limits{Max: canvas.Size()}
			for _, child := range w.ChildrenOf(root) {
				if _, err := solver.Solve(child, limits); err != nil {
					return err
				}
			}
		}
		if n := solver.Writes() - before; n > 0 {
			log.Debug("layout updated", zap.Int("writes", n), zap.Int("roots", len(entities)))
		}
		return nil
	})
}

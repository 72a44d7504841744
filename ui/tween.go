package ui

import (
	"reflect"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/edwinsyarief/mado"
	"github.com/edwinsyarief/mado/geom"
)

// Tween animates a node's LocalPosition. It is removed from the entity once
// both axes finish.
type Tween struct {
	x, y *gween.Tween
}

// MoveTo returns a tween moving from one local position to another over
// duration seconds.
func MoveTo(from, to geom.Vec2, duration float32, fn ease.TweenFunc) Tween {
	if fn == nil {
		fn = ease.Linear
	}
	return Tween{
		x: gween.New(from.X, to.X, duration, fn),
		y: gween.New(from.Y, to.Y, duration, fn),
	}
}

// TweenSystem advances every Tween by the frame's delta time.
func TweenSystem() mado.System {
	var q *mado.Query
	return mado.NewSystem("tween", func(w *mado.World, cmd *mado.CommandBuffer) error {
		if q == nil {
			q = mado.NewQuery(w, mado.Read[Tween](), mado.Write[LocalPosition]())
		}
		dt := float32(FrameOf(w).DeltaTime.Seconds())
		b, err := q.Borrow()
		if err != nil {
			return err
		}
		defer b.Release()
		for b.Next() {
			t := mado.Fetch[Tween](b)
			if t.x == nil || t.y == nil {
				continue
			}
			x, doneX := t.x.Update(dt)
			y, doneY := t.y.Update(dt)
			*mado.FetchMut[LocalPosition](b) = LocalPosition{X: x, Y: y}
			if doneX && doneY {
				cmd.Remove(b.Entity(), reflect.TypeFor[Tween]())
			}
		}
		return nil
	})
}

// Profiling:
// go build ./profile/query
// go tool pprof -http=":8000" -nodefraction=0.001 ./query cpu.pprof

package main

import (
	"github.com/pkg/profile"

	"github.com/edwinsyarief/mado"
	"github.com/edwinsyarief/mado/geom"
	"github.com/edwinsyarief/mado/ui"
)

type velocity struct {
	X, Y float32
}

func main() {
	rounds := 50
	iters := 1000
	entities := 10000
	p := profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook)
	run(rounds, iters, entities)
	p.Stop()
}

func run(rounds, iters, numEntities int) {
	for range rounds {
		w := mado.NewWorld(numEntities)
		root := w.Spawn()
		for i := range numEntities {
			e := w.Spawn()
			if err := mado.Set(w, e, ui.LocalPosition{X: float32(i), Y: 0}); err != nil {
				panic(err)
			}
			if err := mado.Set(w, e, ui.ScreenPosition{}); err != nil {
				panic(err)
			}
			if err := mado.Set(w, e, velocity{X: 1, Y: 1}); err != nil {
				panic(err)
			}
			if err := w.Attach(e, root); err != nil {
				panic(err)
			}
		}
		if err := mado.Set(w, root, ui.LocalPosition{}); err != nil {
			panic(err)
		}
		if err := mado.Set(w, root, ui.ScreenPosition{}); err != nil {
			panic(err)
		}

		move := mado.NewQuery(w, mado.Write[ui.LocalPosition](), mado.Read[velocity]())
		transform := mado.NewQuery(w, mado.Write[ui.ScreenPosition](), mado.Read[ui.LocalPosition]()).DepthFirst()
		for range iters {
			b := move.MustBorrow()
			for b.Next() {
				v := mado.Fetch[velocity](b)
				p := mado.FetchMut[ui.LocalPosition](b)
				p.X += v.X
				p.Y += v.Y
			}
			b.Release()

			b = transform.MustBorrow()
			mado.Traverse(b, geom.Vec2{}, func(b *mado.Borrow, parent geom.Vec2) geom.Vec2 {
				pos := parent.Add(geom.Vec2(mado.Fetch[ui.LocalPosition](b)))
				*mado.FetchMut[ui.ScreenPosition](b) = ui.ScreenPosition(pos)
				return pos
			})
			b.Release()
		}
	}
}

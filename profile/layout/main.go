// Profiling:
// go build ./profile/layout
// go tool pprof -http=":8000" -nodefraction=0.001 ./layout mem.pprof

package main

import (
	"github.com/pkg/profile"

	"github.com/edwinsyarief/mado"
	"github.com/edwinsyarief/mado/geom"
	"github.com/edwinsyarief/mado/layout"
)

func main() {
	rounds := 20
	ticks := 500
	fanout := 8
	depth := 4
	p := profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook)
	run(rounds, ticks, fanout, depth)
	p.Stop()
}

func run(rounds, ticks, fanout, depth int) {
	for range rounds {
		w := mado.NewWorld(1024)
		root := w.Spawn()
		if err := mado.Set(w, root, geom.FromSize(geom.V(1920, 1080))); err != nil {
			panic(err)
		}
		build(w, root, fanout, depth)

		sched := mado.NewSchedule().WithSystem(layout.NewSystem(nil))
		for i := range ticks {
			// Alternate the window size so half the ticks do real work.
			size := geom.V(1920, 1080)
			if i%2 == 1 {
				size = geom.V(1280, 720)
			}
			if err := mado.Set(w, root, geom.FromSize(size)); err != nil {
				panic(err)
			}
			if err := sched.Execute(w); err != nil {
				panic(err)
			}
		}
	}
}

func build(w *mado.World, parent mado.Entity, fanout, depth int) {
	if depth == 0 {
		return
	}
	dir := layout.Row
	if depth%2 == 0 {
		dir = layout.Column
	}
	for range fanout {
		e := w.Spawn()
		must(mado.Set(w, e, layout.Flow{Direction: dir, Spacing: 2}))
		must(mado.Set(w, e, layout.FillSize()))
		must(mado.Set(w, e, layout.Uniform(1)))
		must(w.Attach(e, parent))
		build(w, e, fanout, depth-1)
	}
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

package mado_test

import (
	"fmt"
	"testing"

	"github.com/edwinsyarief/mado"
)

func benchWorld(b *testing.B, size int) *mado.World {
	b.Helper()
	w := mado.NewWorld(size)
	for i := range size {
		e := w.Spawn()
		_ = mado.Set(w, e, Position{X: float32(i)})
		_ = mado.Set(w, e, Velocity{VX: 1, VY: 1})
	}
	return w
}

func BenchmarkSpawnSet(b *testing.B) {
	for _, size := range []int{1000, 10000, 100000} {
		b.Run(fmt.Sprintf("%dK", size/1000), func(b *testing.B) {
			for b.Loop() {
				benchWorld(b, size)
			}
			b.ReportAllocs()
		})
	}
}

func BenchmarkQueryMove(b *testing.B) {
	for _, size := range []int{1000, 10000, 100000} {
		b.Run(fmt.Sprintf("%dK", size/1000), func(b *testing.B) {
			w := benchWorld(b, size)
			q := mado.NewQuery(w, mado.Write[Position](), mado.Read[Velocity]())
			for b.Loop() {
				it := q.MustBorrow()
				for it.Next() {
					p := mado.FetchMut[Position](it)
					v := mado.Fetch[Velocity](it)
					p.X += v.VX
					p.Y += v.VY
				}
				it.Release()
			}
			b.ReportAllocs()
		})
	}
}

func BenchmarkDepthFirst(b *testing.B) {
	for _, fanout := range []int{4, 16} {
		b.Run(fmt.Sprintf("fanout%d", fanout), func(b *testing.B) {
			w := mado.NewWorld(1024)
			root := w.Spawn()
			_ = mado.Set(w, root, Position{})
			level := []mado.Entity{root}
			for range 3 {
				var next []mado.Entity
				for _, p := range level {
					for range fanout {
						c := w.Spawn()
						_ = mado.Set(w, c, Position{X: 1, Y: 1})
						_ = w.Attach(c, p)
						next = append(next, c)
					}
				}
				level = next
			}
			q := mado.NewQuery(w, mado.Read[Position]()).DepthFirst()
			for b.Loop() {
				it := q.MustBorrow()
				mado.Traverse(it, Position{}, func(it *mado.Borrow, parent Position) Position {
					p := mado.Fetch[Position](it)
					return Position{X: parent.X + p.X, Y: parent.Y + p.Y}
				})
				it.Release()
			}
			b.ReportAllocs()
		})
	}
}

func BenchmarkCommandBuffer(b *testing.B) {
	w := mado.NewWorld(1024)
	cmd := mado.NewCommandBuffer()
	for b.Loop() {
		for range 256 {
			cmd.Spawn(mado.Value(Position{}), mado.Value(Tag{}))
		}
		_ = cmd.Apply(w)
		for _, e := range w.Entities() {
			cmd.Despawn(e)
		}
		_ = cmd.Apply(w)
	}
	b.ReportAllocs()
}

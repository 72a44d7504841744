package ui

import (
	"github.com/edwinsyarief/mado"
	"github.com/edwinsyarief/mado/geom"
)

// PointerMoved is published when the pointer moves over the window.
type PointerMoved struct {
	Pos geom.Vec2
}

// PointerButton is published when a pointer button changes state.
type PointerButton struct {
	Pos     geom.Vec2
	Button  int
	Pressed bool
}

// Clicked is published when a button is pressed and released over the same
// entity.
type Clicked struct {
	Entity mado.Entity
	Button int
}

// KeyInput is published when a key changes state. Key names follow the
// platform layer, e.g. "Enter" or "a".
type KeyInput struct {
	Key     string
	Pressed bool
}

// FocusedKey is KeyInput targeted at the focused entity. It is only published
// while an entity holds focus.
type FocusedKey struct {
	Entity  mado.Entity
	Key     string
	Pressed bool
}

// Resized is published when the window changes size.
type Resized struct {
	Size geom.Vec2
}

// InputState tracks the pointer against the resolved tree. It hit-tests
// against each node's Rect placed at its ScreenPosition; where nodes overlap
// the one visited last in depth-first order, the one drawn on top, wins.
type InputState struct {
	Pointer geom.Vec2
	Hovered mado.Entity
	Focused mado.Entity
	pressed map[int]mado.Entity
	keys    map[string]bool
	hits    *mado.Query
	bus     *mado.EventBus
}

// NewInputState subscribes to pointer and key events on bus.
func NewInputState(w *mado.World, bus *mado.EventBus) *InputState {
	in := &InputState{
		pressed: make(map[int]mado.Entity),
		keys:    make(map[string]bool),
		hits:    mado.NewQuery(w, mado.Read[geom.Rect](), mado.Read[ScreenPosition]()).DepthFirst(),
		bus:     bus,
	}
	mado.Subscribe(bus, func(ev PointerMoved) {
		in.Pointer = ev.Pos
		in.Hovered, _ = in.HitTest(ev.Pos)
	})
	mado.Subscribe(bus, func(ev PointerButton) {
		in.Pointer = ev.Pos
		hit, ok := in.HitTest(ev.Pos)
		if ev.Pressed {
			in.Focused = mado.Entity{}
			if ok {
				in.pressed[ev.Button] = hit
				in.Focused = hit
			}
			return
		}
		down, wasDown := in.pressed[ev.Button]
		delete(in.pressed, ev.Button)
		if ok && wasDown && down == hit {
			mado.Publish(bus, Clicked{Entity: hit, Button: ev.Button})
		}
	})
	mado.Subscribe(bus, func(ev KeyInput) {
		if ev.Pressed {
			in.keys[ev.Key] = true
		} else {
			delete(in.keys, ev.Key)
		}
		if in.Focused.IsZero() {
			return
		}
		if !w.IsAlive(in.Focused) {
			in.Focused = mado.Entity{}
			return
		}
		mado.Publish(bus, FocusedKey{Entity: in.Focused, Key: ev.Key, Pressed: ev.Pressed})
	})
	return in
}

// KeyDown reports whether key is currently held.
func (in *InputState) KeyDown(key string) bool {
	return in.keys[key]
}

// HitTest returns the topmost entity under p.
func (in *InputState) HitTest(p geom.Vec2) (mado.Entity, bool) {
	b, err := in.hits.Borrow()
	if err != nil {
		return mado.Entity{}, false
	}
	defer b.Release()
	var (
		hit   mado.Entity
		found bool
	)
	for b.Next() {
		r := mado.Fetch[geom.Rect](b).Translate(geom.Vec2(mado.Fetch[ScreenPosition](b)))
		if r.Contains(p) {
			hit, found = b.Entity(), true
		}
	}
	return hit, found
}

package ui

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/edwinsyarief/mado"
	"github.com/edwinsyarief/mado/assets"
)

// Frame is the per-application context handed to systems, widgets and the
// renderer. It lives as long as the application; only its contents change
// between ticks.
type Frame struct {
	World     *mado.World
	Assets    *assets.Cache
	Effects   *Effects
	Events    *mado.EventBus
	DeltaTime time.Duration
}

// NewFrame builds a frame and registers it as a resource of w so systems can
// reach it through FrameOf.
func NewFrame(w *mado.World, cache *assets.Cache, effects *Effects) *Frame {
	f := &Frame{
		World:   w,
		Assets:  cache,
		Effects: effects,
		Events:  &mado.EventBus{},
	}
	mado.SetResource(w.Resources(), f)
	return f
}

// FrameOf returns the frame registered on w.
func FrameOf(w *mado.World) *Frame {
	return mado.MustResource[Frame](w.Resources())
}

// NewRoot spawns a root entity and mounts widget on it.
func (f *Frame) NewRoot(widget Widget) (mado.Entity, error) {
	s := &Scope{frame: f, id: f.World.Spawn()}
	widget.Mount(s)
	return s.id, s.errs
}

// Widget is anything that can describe itself as components on an entity.
type Widget interface {
	Mount(s *Scope)
}

// WidgetFunc adapts a function to the Widget interface.
type WidgetFunc func(s *Scope)

func (f WidgetFunc) Mount(s *Scope) { f(s) }

// Scope is the entity a widget is being mounted on. Errors raised while
// mounting are collected and reported by NewRoot.
type Scope struct {
	frame *Frame
	id    mado.Entity
	errs  error
}

// Entity returns the entity being mounted.
func (s *Scope) Entity() mado.Entity { return s.id }

// Frame returns the application frame.
func (s *Scope) Frame() *Frame { return s.frame }

// Err returns the errors collected so far.
func (s *Scope) Err() error { return s.errs }

// Attach spawns a child entity, wires it below the scope's entity and mounts
// widget on it.
func (s *Scope) Attach(widget Widget) mado.Entity {
	w := s.frame.World
	child := &Scope{frame: s.frame, id: w.Spawn()}
	s.errs = multierr.Append(s.errs, w.Attach(child.id, s.id))
	widget.Mount(child)
	s.errs = multierr.Append(s.errs, child.errs)
	return child.id
}

// SpawnEffect runs fn in the background on behalf of the scope's entity. The
// effect is cancelled once the entity is despawned.
func (s *Scope) SpawnEffect(fn EffectFunc) uuid.UUID {
	return s.frame.Effects.Spawn(s.id, fn)
}

// Set writes a component on the scope's entity, overwriting it.
func Set[T any](s *Scope, v T) *Scope {
	s.errs = multierr.Append(s.errs, mado.Set(s.frame.World, s.id, v))
	return s
}

// SetDefault writes a component only if the entity does not carry one yet,
// so outer widgets can override what inner ones set.
func SetDefault[T any](s *Scope, v T) *Scope {
	_, err := mado.SetMissing(s.frame.World, s.id, v)
	s.errs = multierr.Append(s.errs, err)
	return s
}

package ui

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/edwinsyarief/mado"
)

// ApplyFunc records an effect's result into the world. It runs on the frame
// goroutine during Poll.
type ApplyFunc func(cmd *mado.CommandBuffer)

// EffectFunc is the body of a one-shot effect. It runs on its own goroutine
// and must return when ctx is cancelled.
type EffectFunc func(ctx context.Context) (ApplyFunc, error)

type effect struct {
	owner  mado.Entity
	cancel context.CancelFunc
}

type effectResult struct {
	id    uuid.UUID
	owner mado.Entity
	apply ApplyFunc
	err   error
	final bool
}

// Effects runs asynchronous work on behalf of entities. Results never touch
// the world directly: they queue up until the next Poll, which funnels them
// through a command buffer on the frame goroutine.
//
// An effect whose owner has been despawned is cancelled at the next Poll and
// anything it still produces is discarded.
type Effects struct {
	mu      sync.Mutex
	running map[uuid.UUID]*effect
	pending []effectResult
	sem     *semaphore.Weighted
	base    context.Context
	stop    context.CancelFunc
	cmd     *mado.CommandBuffer
	log     *zap.Logger
}

// NewEffects returns a spawner running at most limit effects at once.
func NewEffects(limit int64, log *zap.Logger) *Effects {
	if limit <= 0 {
		limit = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	ctx, stop := context.WithCancel(context.Background())
	return &Effects{
		running: make(map[uuid.UUID]*effect),
		sem:     semaphore.NewWeighted(limit),
		base:    ctx,
		stop:    stop,
		cmd:     mado.NewCommandBuffer(),
		log:     log,
	}
}

func (x *Effects) start(owner mado.Entity) (uuid.UUID, context.Context) {
	id := uuid.New()
	ctx, cancel := context.WithCancel(x.base)
	x.mu.Lock()
	x.running[id] = &effect{owner: owner, cancel: cancel}
	x.mu.Unlock()
	return id, ctx
}

func (x *Effects) push(r effectResult) {
	x.mu.Lock()
	x.pending = append(x.pending, r)
	x.mu.Unlock()
}

// Spawn runs fn once in the background for owner.
func (x *Effects) Spawn(owner mado.Entity, fn EffectFunc) uuid.UUID {
	id, ctx := x.start(owner)
	go func() {
		if err := x.sem.Acquire(ctx, 1); err != nil {
			x.push(effectResult{id: id, owner: owner, err: err, final: true})
			return
		}
		defer x.sem.Release(1)
		apply, err := fn(ctx)
		x.push(effectResult{id: id, owner: owner, apply: apply, err: err, final: true})
	}()
	return id
}

// SpawnStream forwards every value received from ch to fn, one Poll at a
// time, until ch is closed or owner is despawned.
func SpawnStream[T any](x *Effects, owner mado.Entity, ch <-chan T, fn func(cmd *mado.CommandBuffer, v T)) uuid.UUID {
	id, ctx := x.start(owner)
	go func() {
		if err := x.sem.Acquire(ctx, 1); err != nil {
			x.push(effectResult{id: id, owner: owner, err: err, final: true})
			return
		}
		defer x.sem.Release(1)
		for {
			select {
			case <-ctx.Done():
				x.push(effectResult{id: id, owner: owner, err: ctx.Err(), final: true})
				return
			case v, ok := <-ch:
				if !ok {
					x.push(effectResult{id: id, owner: owner, final: true})
					return
				}
				x.push(effectResult{id: id, owner: owner, apply: func(cmd *mado.CommandBuffer) { fn(cmd, v) }})
			}
		}
	}()
	return id
}

// Len returns the number of effects that have not finished.
func (x *Effects) Len() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return len(x.running)
}

// Poll applies every result produced since the previous call and cancels the
// effects of despawned owners. It never waits for running effects.
func (x *Effects) Poll(w *mado.World) error {
	x.mu.Lock()
	results := x.pending
	x.pending = nil
	for id, e := range x.running {
		if !w.IsAlive(e.owner) {
			e.cancel()
			delete(x.running, id)
		}
	}
	x.mu.Unlock()

	var errs error
	for _, r := range results {
		if !w.IsAlive(r.owner) {
			continue
		}
		if r.final {
			x.finish(r.id)
		}
		switch {
		case r.err != nil && !errors.Is(r.err, context.Canceled):
			x.log.Warn("effect failed", zap.Stringer("effect", r.id), zap.Stringer("owner", r.owner), zap.Error(r.err))
			errs = multierr.Append(errs, fmt.Errorf("effect %s: %w", r.id, r.err))
		case r.apply != nil:
			r.apply(x.cmd)
		}
	}
	return multierr.Append(errs, x.cmd.Apply(w))
}

func (x *Effects) finish(id uuid.UUID) {
	x.mu.Lock()
	if e, ok := x.running[id]; ok {
		e.cancel()
		delete(x.running, id)
	}
	x.mu.Unlock()
}

// Close cancels every running effect.
func (x *Effects) Close() {
	x.stop()
	x.mu.Lock()
	clear(x.running)
	x.pending = nil
	x.mu.Unlock()
}

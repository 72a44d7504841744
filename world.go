// Package mado is the retained-mode core of a UI toolkit: an entity-component
// store with declarative queries, relations, deferred commands and a staged
// scheduler.
package mado

import (
	"fmt"
	"reflect"

	"go.uber.org/zap"
)

// Entity represents a unique identifier for an object in the World. It combines
// a 32-bit ID with a 32-bit version to ensure that recycled IDs are not confused
// with new entities.
type Entity struct {
	// ID is the unique, recyclable identifier for the entity.
	ID uint32
	// Version is a generation counter to protect against stale entity references.
	// It is incremented each time an entity ID is reused.
	Version uint32
}

// IsZero reports whether e is the zero Entity, which never refers to a live
// entity because versions start at 1.
func (e Entity) IsZero() bool {
	return e.Version == 0
}

func (e Entity) String() string {
	return fmt.Sprintf("%dv%d", e.ID, e.Version)
}

// entityMeta holds the internal location and state of an entity.
type entityMeta struct {
	archetypeIndex int    // index in World.archetypes
	index          int    // position inside the archetype's entity list
	version        uint32 // current version, 0 if the entity is dead
}

// archetype groups every entity that carries exactly the same component set.
// Component values live in per-type columns; the archetype only tracks
// membership so queries can match whole groups by mask.
type archetype struct {
	entities []Entity
	mask     bitmask256
	index    int
}

type entityRegistry struct {
	freeIDs       []uint32     // stack of recycled entity IDs
	metas         []entityMeta // indexed by entity ID
	capacity      int
	nextEntityVer uint32
	alive         int
}

type archetypeRegistry struct {
	maskToArcIndex   map[bitmask256]int
	archetypes       []*archetype
	archetypeVersion uint32 // incremented when a new archetype is created
}

// World owns every entity, component column and archetype, plus the borrow
// bookkeeping that keeps queries from aliasing each other.
type World struct {
	resources  *Resources
	log        *zap.Logger
	archetypes archetypeRegistry
	entities   entityRegistry
	components componentRegistry
	borrows    borrowTracker
	tick       uint64 // advanced on every borrow release

	childOfID  ComponentID
	childrenID ComponentID
}

// Option configures a World.
type Option func(*World)

// WithLogger sets the logger used for world diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(w *World) {
		if l != nil {
			w.log = l
		}
	}
}

// NewWorld creates a World with room for initialCapacity entities before the
// first reallocation.
//
// Parameters:
//   - initialCapacity: Number of entities to preallocate room for.
//   - opts: Options such as WithLogger.
//
// Returns:
//   - A pointer to the new, empty World.
func NewWorld(initialCapacity int, opts ...Option) *World {
	w := &World{
		resources: &Resources{},
		log:       zap.NewNop(),
		components: componentRegistry{
			typeToID: make(map[reflect.Type]ComponentID, 16),
		},
		entities: entityRegistry{
			capacity:      initialCapacity,
			freeIDs:       make([]uint32, initialCapacity),
			metas:         make([]entityMeta, initialCapacity),
			nextEntityVer: 1,
		},
		archetypes: archetypeRegistry{
			maskToArcIndex: make(map[bitmask256]int),
			archetypes:     make([]*archetype, 0, 16),
		},
		tick: 1,
	}
	for i := range w.entities.freeIDs {
		w.entities.freeIDs[i] = uint32(initialCapacity - 1 - i)
	}
	for i := range w.entities.metas {
		w.entities.metas[i].archetypeIndex = -1
		w.entities.metas[i].index = -1
	}
	for _, opt := range opts {
		opt(w)
	}
	w.childOfID = componentID[ChildOf](w)
	w.childrenID = componentID[Children](w)
	w.getOrCreateArchetype(bitmask256{})
	return w
}

// Resources returns the world's singleton store.
func (w *World) Resources() *Resources {
	return w.resources
}

// Logger returns the logger the world was configured with.
func (w *World) Logger() *zap.Logger {
	return w.log
}

// Len returns the number of live entities.
func (w *World) Len() int {
	return w.entities.alive
}

// IsAlive checks if the entity is currently alive in the world. Stale
// references to a recycled ID fail the version check.
//
// Parameters:
//   - e: The entity to check.
//
// Returns:
//   - true if e refers to a live entity, false otherwise.
func (w *World) IsAlive(e Entity) bool {
	if int(e.ID) >= len(w.entities.metas) {
		return false
	}
	meta := w.entities.metas[e.ID]
	return meta.version != 0 && meta.version == e.Version
}

// Spawn creates a new entity with no components.
//
// Returns:
//   - The new entity. Its ID may be a recycled one with a bumped version.
func (w *World) Spawn() Entity {
	w.assertStructural("spawn")
	if len(w.entities.freeIDs) == 0 {
		w.expand(1)
	}
	last := len(w.entities.freeIDs) - 1
	id := w.entities.freeIDs[last]
	w.entities.freeIDs = w.entities.freeIDs[:last]

	a := w.archetypes.archetypes[w.archetypes.maskToArcIndex[bitmask256{}]]
	meta := &w.entities.metas[id]
	meta.archetypeIndex = a.index
	meta.index = len(a.entities)
	meta.version = w.entities.nextEntityVer
	e := Entity{ID: id, Version: meta.version}
	a.entities = append(a.entities, e)
	w.entities.nextEntityVer++
	w.entities.alive++
	return e
}

// Entities returns every live entity. The slice is freshly allocated.
func (w *World) Entities() []Entity {
	out := make([]Entity, 0, w.entities.alive)
	for _, a := range w.archetypes.archetypes {
		out = append(out, a.entities...)
	}
	return out
}

// getOrCreateArchetype returns the archetype for mask, creating it if needed.
func (w *World) getOrCreateArchetype(mask bitmask256) *archetype {
	if idx, ok := w.archetypes.maskToArcIndex[mask]; ok {
		return w.archetypes.archetypes[idx]
	}
	a := &archetype{
		index:    len(w.archetypes.archetypes),
		mask:     mask,
		entities: make([]Entity, 0, 8),
	}
	w.archetypes.archetypes = append(w.archetypes.archetypes, a)
	w.archetypes.maskToArcIndex[mask] = a.index
	w.archetypes.archetypeVersion++
	return a
}

// expand grows the entity registry, at least doubling its capacity.
func (w *World) expand(additional int) {
	oldCap := w.entities.capacity
	newCap := max(oldCap*2, 1, oldCap+additional)
	delta := newCap - oldCap
	newMetas := make([]entityMeta, delta)
	for i := range newMetas {
		newMetas[i].archetypeIndex = -1
		newMetas[i].index = -1
	}
	w.entities.metas = append(w.entities.metas, newMetas...)
	for i := range delta {
		w.entities.freeIDs = append(w.entities.freeIDs, uint32(newCap-1-i))
	}
	w.entities.capacity = newCap
}

func (w *World) maskOf(e Entity) bitmask256 {
	return w.archetypes.archetypes[w.entities.metas[e.ID].archetypeIndex].mask
}

// moveTo relocates e into the archetype for mask. Column data is untouched.
func (w *World) moveTo(e Entity, mask bitmask256) {
	meta := &w.entities.metas[e.ID]
	old := w.archetypes.archetypes[meta.archetypeIndex]
	if old.mask == mask {
		return
	}
	w.removeFromArchetype(old, meta)
	target := w.getOrCreateArchetype(mask)
	meta.archetypeIndex = target.index
	meta.index = len(target.entities)
	target.entities = append(target.entities, e)
}

// removeFromArchetype swaps the last entity into the removed slot.
func (w *World) removeFromArchetype(a *archetype, meta *entityMeta) {
	idx := meta.index
	last := len(a.entities) - 1
	if idx < last {
		moved := a.entities[last]
		a.entities[idx] = moved
		w.entities.metas[moved.ID].index = idx
	}
	a.entities = a.entities[:last]
}

// destroy drops every component of e and recycles its ID. Relations are the
// caller's responsibility.
func (w *World) destroy(e Entity) {
	meta := &w.entities.metas[e.ID]
	a := w.archetypes.archetypes[meta.archetypeIndex]
	for _, id := range a.mask.ids() {
		w.components.columns[id].remove(e.ID)
	}
	w.removeFromArchetype(a, meta)
	meta.archetypeIndex = -1
	meta.index = -1
	meta.version = 0
	w.entities.freeIDs = append(w.entities.freeIDs, e.ID)
	w.entities.alive--
}

// stamp returns the tick written into a component on modification.
func (w *World) stamp() uint64 {
	return w.tick
}

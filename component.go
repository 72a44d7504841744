package mado

import (
	"fmt"
	"reflect"
)

// MaxComponentTypes defines the maximum number of unique component types that
// can be registered in a World.
const MaxComponentTypes = 256

// ComponentID is the stable per-world key of a component type. It indexes the
// type-erased storage column holding every value of that type.
type ComponentID uint8

// storage is the type-erased view of a component column. Typed access goes
// through *column[T]; the World only needs these operations to move, remove
// and inspect components without knowing their Go type.
type storage interface {
	componentType() reflect.Type
	has(id uint32) bool
	remove(id uint32)
	changedSince(id uint32, since uint64) bool
	len() int
}

// column is a sparse set of T keyed by entity ID. Dense arrays keep values
// packed for iteration while the sparse index gives O(1) lookup by ID.
type column[T any] struct {
	sparse []int32 // entity ID -> dense index, -1 when absent
	dense  []T
	owners []uint32 // dense index -> entity ID
	ticks  []uint64 // dense index -> tick of the last write
}

func newColumn[T any]() *column[T] {
	return &column[T]{}
}

func (c *column[T]) componentType() reflect.Type {
	return reflect.TypeFor[T]()
}

func (c *column[T]) index(id uint32) int {
	if int(id) >= len(c.sparse) {
		return -1
	}
	return int(c.sparse[id])
}

func (c *column[T]) has(id uint32) bool {
	return c.index(id) >= 0
}

func (c *column[T]) len() int {
	return len(c.dense)
}

// get returns a pointer into the dense array. The pointer is only valid until
// the next structural change to this column.
func (c *column[T]) get(id uint32) *T {
	i := c.index(id)
	if i < 0 {
		return nil
	}
	return &c.dense[i]
}

// set stores v for id and stamps it with tick. It reports whether the value
// was newly added.
func (c *column[T]) set(id uint32, v T, tick uint64) bool {
	if i := c.index(id); i >= 0 {
		c.dense[i] = v
		c.ticks[i] = tick
		return false
	}
	if int(id) >= len(c.sparse) {
		c.grow(int(id) + 1)
	}
	c.sparse[id] = int32(len(c.dense))
	c.dense = append(c.dense, v)
	c.owners = append(c.owners, id)
	c.ticks = append(c.ticks, tick)
	return true
}

func (c *column[T]) touch(id uint32, tick uint64) {
	if i := c.index(id); i >= 0 {
		c.ticks[i] = tick
	}
}

// remove swaps the last element into the removed slot.
func (c *column[T]) remove(id uint32) {
	i := c.index(id)
	if i < 0 {
		return
	}
	last := len(c.dense) - 1
	if i < last {
		c.dense[i] = c.dense[last]
		c.owners[i] = c.owners[last]
		c.ticks[i] = c.ticks[last]
		c.sparse[c.owners[i]] = int32(i)
	}
	var zero T
	c.dense[last] = zero
	c.dense = c.dense[:last]
	c.owners = c.owners[:last]
	c.ticks = c.ticks[:last]
	c.sparse[id] = -1
}

func (c *column[T]) changedSince(id uint32, since uint64) bool {
	i := c.index(id)
	return i >= 0 && c.ticks[i] > since
}

// grow extends the sparse index to n slots, doubling its backing array only
// when n exceeds the current capacity.
func (c *column[T]) grow(n int) {
	old := len(c.sparse)
	if n > cap(c.sparse) {
		ns := make([]int32, old, max(2*cap(c.sparse), n))
		copy(ns, c.sparse)
		c.sparse = ns
	}
	c.sparse = c.sparse[:n]
	for i := old; i < n; i++ {
		c.sparse[i] = -1
	}
}

// componentRegistry maps Go types to component IDs and their columns.
type componentRegistry struct {
	typeToID map[reflect.Type]ComponentID
	columns  [MaxComponentTypes]storage
	next     uint16
}

func (r *componentRegistry) lookup(t reflect.Type) (ComponentID, bool) {
	id, ok := r.typeToID[t]
	return id, ok
}

func (r *componentRegistry) register(t reflect.Type, s storage) ComponentID {
	if r.next >= MaxComponentTypes {
		panic(fmt.Sprintf("mado: cannot register component %s: maximum number of component types (%d) reached", t, MaxComponentTypes))
	}
	id := ComponentID(r.next)
	r.typeToID[t] = id
	r.columns[id] = s
	r.next++
	return id
}

func (r *componentRegistry) name(id ComponentID) string {
	if s := r.columns[id]; s != nil {
		return s.componentType().String()
	}
	return fmt.Sprintf("component#%d", id)
}

// componentID registers T on first use and returns its ID.
func componentID[T any](w *World) ComponentID {
	t := reflect.TypeFor[T]()
	if id, ok := w.components.typeToID[t]; ok {
		return id
	}
	return w.components.register(t, newColumn[T]())
}

// columnOf returns the typed column for T, registering it if needed.
func columnOf[T any](w *World) (ComponentID, *column[T]) {
	id := componentID[T](w)
	return id, w.components.columns[id].(*column[T])
}

// RegisterComponent registers T with the world and returns its ID. Components
// are also registered lazily on first use, so calling this is only needed to
// pin IDs in a particular order.
func RegisterComponent[T any](w *World) ComponentID {
	return componentID[T](w)
}

// ComponentName returns the Go type name registered under id.
func (w *World) ComponentName(id ComponentID) string {
	return w.components.name(id)
}

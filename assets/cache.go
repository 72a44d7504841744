// Package assets is a shared store for values that many entities refer to,
// such as fonts, images and backend resources derived from them. Values are
// addressed by typed handles that detect use after removal.
package assets

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/singleflight"
)

// AssetID is the untyped identity of a cache slot. It is comparable and can
// key maps.
type AssetID struct {
	Slot       uint32
	Generation uint32
}

// IsZero reports whether id is the zero ID, which never refers to a value.
func (id AssetID) IsZero() bool {
	return id.Generation == 0
}

func (id AssetID) String() string {
	return fmt.Sprintf("asset#%dg%d", id.Slot, id.Generation)
}

// Handle is a typed reference to a value of type T stored in a Cache. Two
// handles are equal only if they refer to the same insertion; inserting equal
// content twice yields two distinct handles.
type Handle[T any] struct {
	id AssetID
}

// ID returns the untyped identity of h.
func (h Handle[T]) ID() AssetID {
	return h.id
}

// IsZero reports whether h is the zero handle.
func (h Handle[T]) IsZero() bool {
	return h.id.IsZero()
}

func (h Handle[T]) String() string {
	return fmt.Sprintf("Handle[%s](%v)", reflect.TypeFor[T](), h.id)
}

type slot struct {
	value      any
	generation uint32
	occupied   bool
}

type keyed struct {
	key string
	id  AssetID
}

// Cache stores values behind generation-checked slots. Removing a value bumps
// its slot's generation, so every outstanding handle to it turns stale and
// lookups through it fail instead of reaching the slot's next occupant.
//
// A Cache is safe for concurrent use; effects running on other goroutines may
// load into it while the frame reads from it.
type Cache struct {
	mu    sync.RWMutex
	slots []slot
	free  []uint32
	keys  map[uint64][]keyed
	live  int
	group singleflight.Group
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{keys: make(map[uint64][]keyed)}
}

func (c *Cache) insert(v any) AssetID {
	c.mu.Lock()
	defer c.mu.Unlock()
	var idx uint32
	if n := len(c.free); n > 0 {
		idx = c.free[n-1]
		c.free = c.free[:n-1]
	} else {
		idx = uint32(len(c.slots))
		c.slots = append(c.slots, slot{})
	}
	s := &c.slots[idx]
	s.generation++
	s.value = v
	s.occupied = true
	c.live++
	return AssetID{Slot: idx, Generation: s.generation}
}

func (c *Cache) lookup(id AssetID) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if int(id.Slot) >= len(c.slots) {
		return nil, false
	}
	s := c.slots[id.Slot]
	if !s.occupied || s.generation != id.Generation {
		return nil, false
	}
	return s.value, true
}

func (c *Cache) remove(id AssetID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if int(id.Slot) >= len(c.slots) {
		return false
	}
	s := &c.slots[id.Slot]
	if !s.occupied || s.generation != id.Generation {
		return false
	}
	s.value = nil
	s.occupied = false
	c.free = append(c.free, id.Slot)
	c.live--
	return true
}

// Valid reports whether id still refers to a stored value.
func (c *Cache) Valid(id AssetID) bool {
	_, ok := c.lookup(id)
	return ok
}

// Len returns the number of stored values.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.live
}

// Insert stores v and returns a new handle to it.
func Insert[T any](c *Cache, v T) Handle[T] {
	return Handle[T]{id: c.insert(v)}
}

// Get returns the value behind h. A stale or zero handle yields false.
func Get[T any](c *Cache, h Handle[T]) (T, bool) {
	v, ok := c.lookup(h.id)
	if !ok {
		var zero T
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

// Remove drops the value behind h and reports whether it was present.
// Secondary maps keyed by h keep their entries until compacted with
// HandleMap.Retain.
func Remove[T any](c *Cache, h Handle[T]) bool {
	return c.remove(h.id)
}

// Load returns the handle registered under key, calling load to produce the
// value the first time key is seen or after its value was removed. Concurrent
// loads of the same key share a single call. Identity is by key only: two
// keys producing equal values get distinct handles.
func Load[T any](c *Cache, key string, load func() (T, error)) (Handle[T], error) {
	sum := xxhash.Sum64String(key)
	if h, ok := loaded[T](c, sum, key); ok {
		return h, nil
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		if h, ok := loaded[T](c, sum, key); ok {
			return h, nil
		}
		val, err := load()
		if err != nil {
			return nil, err
		}
		h := Insert(c, val)
		c.mu.Lock()
		bucket := c.keys[sum]
		bucket = deleteKey(bucket, key)
		c.keys[sum] = append(bucket, keyed{key: key, id: h.id})
		c.mu.Unlock()
		return h, nil
	})
	if err != nil {
		return Handle[T]{}, fmt.Errorf("assets: load %q: %w", key, err)
	}
	h, ok := v.(Handle[T])
	if !ok {
		return Handle[T]{}, fmt.Errorf("assets: key %q holds a %T, not a %s", key, v, reflect.TypeFor[Handle[T]]())
	}
	return h, nil
}

// loaded returns the live handle stored under key, if any.
func loaded[T any](c *Cache, sum uint64, key string) (Handle[T], bool) {
	c.mu.RLock()
	var id AssetID
	for _, k := range c.keys[sum] {
		if k.key == key {
			id = k.id
			break
		}
	}
	c.mu.RUnlock()
	if id.IsZero() {
		return Handle[T]{}, false
	}
	v, ok := c.lookup(id)
	if !ok {
		return Handle[T]{}, false
	}
	if _, ok := v.(T); !ok {
		return Handle[T]{}, false
	}
	return Handle[T]{id: id}, true
}

func deleteKey(bucket []keyed, key string) []keyed {
	for i, k := range bucket {
		if k.key == key {
			return append(bucket[:i], bucket[i+1:]...)
		}
	}
	return bucket
}

package assets

// HandleMap associates a derived value V with handles to K without storing
// it in the cache entry itself. The renderer uses it to build a backend
// resource once per source asset.
//
// Entries are not removed when the cache drops the handle's value: they leak
// until Retain compacts the map against the cache. A HandleMap is not safe for
// concurrent use.
type HandleMap[K, V any] struct {
	entries map[AssetID]V
}

// NewHandleMap returns an empty map.
func NewHandleMap[K, V any]() *HandleMap[K, V] {
	return &HandleMap[K, V]{entries: make(map[AssetID]V)}
}

// Insert sets the value for h, replacing any previous one.
func (m *HandleMap[K, V]) Insert(h Handle[K], v V) {
	m.entries[h.id] = v
}

// Get returns the value stored for h.
func (m *HandleMap[K, V]) Get(h Handle[K]) (V, bool) {
	v, ok := m.entries[h.id]
	return v, ok
}

// Delete removes the value for h and reports whether there was one.
func (m *HandleMap[K, V]) Delete(h Handle[K]) bool {
	if _, ok := m.entries[h.id]; !ok {
		return false
	}
	delete(m.entries, h.id)
	return true
}

// Len returns the number of entries, stale ones included.
func (m *HandleMap[K, V]) Len() int {
	return len(m.entries)
}

// Retain drops every entry whose handle no longer refers to a value in c and
// returns how many were dropped.
func (m *HandleMap[K, V]) Retain(c *Cache) int {
	return m.RetainFunc(c, nil)
}

// RetainFunc is Retain with a callback receiving each dropped value, so that
// derived values owning resources of their own can release them.
func (m *HandleMap[K, V]) RetainFunc(c *Cache, dropped func(V)) int {
	n := 0
	for id, v := range m.entries {
		if c.Valid(id) {
			continue
		}
		delete(m.entries, id)
		if dropped != nil {
			dropped(v)
		}
		n++
	}
	return n
}

// Entry returns the slot for h for in-place get-or-insert manipulation.
func (m *HandleMap[K, V]) Entry(h Handle[K]) Entry[K, V] {
	return Entry[K, V]{m: m, handle: h}
}

// Entry is a view of a single HandleMap slot, which may or may not be
// occupied.
type Entry[K, V any] struct {
	m      *HandleMap[K, V]
	handle Handle[K]
}

// AndModify applies f to the value if the slot is occupied.
func (e Entry[K, V]) AndModify(f func(*V)) Entry[K, V] {
	if v, ok := e.m.entries[e.handle.id]; ok {
		f(&v)
		e.m.entries[e.handle.id] = v
	}
	return e
}

// OrInsert returns the stored value, storing def first if the slot is empty.
func (e Entry[K, V]) OrInsert(def V) V {
	return e.OrInsertWithKey(func(Handle[K]) V { return def })
}

// OrInsertWith returns the stored value, calling f to produce it if the slot
// is empty. f runs at most once per handle.
func (e Entry[K, V]) OrInsertWith(f func() V) V {
	return e.OrInsertWithKey(func(Handle[K]) V { return f() })
}

// OrInsertWithKey is OrInsertWith with the handle passed to f.
func (e Entry[K, V]) OrInsertWithKey(f func(Handle[K]) V) V {
	if v, ok := e.m.entries[e.handle.id]; ok {
		return v
	}
	v := f(e.handle)
	e.m.entries[e.handle.id] = v
	return v
}

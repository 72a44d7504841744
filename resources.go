package mado

import (
	"fmt"
	"reflect"
)

// Resources holds world-wide singletons keyed by their Go type: the window
// size, the input state, the theme. At most one value per type is stored.
// Slots freed by removal are reused so lookups stay O(1) without growth.
type Resources struct {
	items   []any
	types   map[reflect.Type]int
	freeIDs []int
}

func (r *Resources) slot(t reflect.Type) (int, bool) {
	id, ok := r.types[t]
	return id, ok
}

func (r *Resources) put(t reflect.Type, v any) {
	if r.types == nil {
		r.types = make(map[reflect.Type]int)
	}
	if id, ok := r.types[t]; ok {
		r.items[id] = v
		return
	}
	var id int
	if n := len(r.freeIDs); n > 0 {
		id = r.freeIDs[n-1]
		r.freeIDs = r.freeIDs[:n-1]
		r.items[id] = v
	} else {
		id = len(r.items)
		r.items = append(r.items, v)
	}
	r.types[t] = id
}

// Len returns the number of stored resources.
func (r *Resources) Len() int {
	return len(r.types)
}

// Clear removes every resource.
func (r *Resources) Clear() {
	clear(r.items)
	r.items = r.items[:0]
	clear(r.types)
	r.freeIDs = r.freeIDs[:0]
}

// AddResource stores v as the T singleton. It fails if a T is already
// present.
//
// Parameters:
//   - r: The resource store.
//   - v: The singleton to store.
//
// Returns:
//   - An error if v is nil or a T is already stored.
func AddResource[T any](r *Resources, v *T) error {
	if v == nil {
		return fmt.Errorf("mado: nil %s resource", reflect.TypeFor[T]())
	}
	t := reflect.TypeFor[T]()
	if _, ok := r.slot(t); ok {
		return fmt.Errorf("mado: resource %s already exists", t)
	}
	r.put(t, v)
	return nil
}

// SetResource stores v as the T singleton, replacing any previous one.
func SetResource[T any](r *Resources, v *T) {
	r.put(reflect.TypeFor[T](), v)
}

// GetResource returns the T singleton if present.
//
// Parameters:
//   - r: The resource store.
//
// Returns:
//   - The stored pointer and true, or nil and false.
func GetResource[T any](r *Resources) (*T, bool) {
	id, ok := r.slot(reflect.TypeFor[T]())
	if !ok {
		return nil, false
	}
	return r.items[id].(*T), true
}

// MustResource returns the T singleton and panics if it is missing.
func MustResource[T any](r *Resources) *T {
	v, ok := GetResource[T](r)
	if !ok {
		panic(fmt.Sprintf("mado: resource %s not found", reflect.TypeFor[T]()))
	}
	return v
}

// RemoveResource deletes the T singleton and reports whether it existed.
func RemoveResource[T any](r *Resources) bool {
	t := reflect.TypeFor[T]()
	id, ok := r.slot(t)
	if !ok {
		return false
	}
	delete(r.types, t)
	r.items[id] = nil
	r.freeIDs = append(r.freeIDs, id)
	return true
}

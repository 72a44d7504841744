package mado

import (
	"fmt"
	"reflect"
)

// Set adds a component of type T with the given value to an entity, or
// overwrites it if the component already exists. Either way the component is
// marked changed for Changed filters.
//
// Adding a component moves the entity to a different archetype, which is a
// structural change and panics while any query is borrowed.
//
// Returns ErrEntityNotFound if e is not alive.
func Set[T any](w *World, e Entity, v T) error {
	if !w.IsAlive(e) {
		return entityNotFound(e)
	}
	id := componentID[T](w)
	if id == w.childOfID || id == w.childrenID {
		return w.relationSet(id, e, any(v))
	}
	setRaw(w, e, id, v)
	return nil
}

// setRaw writes v without the relation bookkeeping done by Set.
func setRaw[T any](w *World, e Entity, id ComponentID, v T) {
	col := w.components.columns[id].(*column[T])
	w.assertWritable(id)
	if !col.has(e.ID) {
		w.add(e, id)
	}
	col.set(e.ID, v, w.stamp())
}

// SetMissing adds the component only if e does not already carry one,
// leaving any caller-supplied value untouched. It reports whether the value
// was inserted.
//
// Parameters:
//   - w: The World holding e.
//   - e: The target entity.
//   - v: The value to insert when e has no T.
//
// Returns:
//   - true if v was inserted.
//   - ErrEntityNotFound if e is not alive.
func SetMissing[T any](w *World, e Entity, v T) (bool, error) {
	if !w.IsAlive(e) {
		return false, entityNotFound(e)
	}
	_, col := columnOf[T](w)
	if col.has(e.ID) {
		return false, nil
	}
	return true, Set(w, e, v)
}

// Get returns a copy of the component of type T attached to e.
//
// Returns ErrEntityNotFound if e is not alive and ErrComponentNotFound if the
// entity lacks the component.
func Get[T any](w *World, e Entity) (T, error) {
	var zero T
	if !w.IsAlive(e) {
		return zero, entityNotFound(e)
	}
	id, col := columnOf[T](w)
	w.assertReadable(id)
	p := col.get(e.ID)
	if p == nil {
		return zero, fmt.Errorf("%w: %s on %v", ErrComponentNotFound, w.components.name(id), e)
	}
	return *p, nil
}

// Lookup is the allocation-free form of Get for optional components.
func Lookup[T any](w *World, e Entity) (T, bool) {
	var zero T
	if !w.IsAlive(e) {
		return zero, false
	}
	id, col := columnOf[T](w)
	w.assertReadable(id)
	p := col.get(e.ID)
	if p == nil {
		return zero, false
	}
	return *p, true
}

// GetMut returns a pointer to the component of type T and marks it changed.
// The pointer must not be retained across structural changes.
//
// Parameters:
//   - w: The World holding e.
//   - e: The entity to read.
//
// Returns:
//   - A pointer into the column, valid until the next structural change.
//   - ErrEntityNotFound or ErrComponentNotFound, as for Get.
func GetMut[T any](w *World, e Entity) (*T, error) {
	if !w.IsAlive(e) {
		return nil, entityNotFound(e)
	}
	id, col := columnOf[T](w)
	w.assertWritable(id)
	p := col.get(e.ID)
	if p == nil {
		return nil, fmt.Errorf("%w: %s on %v", ErrComponentNotFound, w.components.name(id), e)
	}
	col.touch(e.ID, w.stamp())
	return p, nil
}

// Has reports whether e is alive and carries a component of type T.
func Has[T any](w *World, e Entity) bool {
	if !w.IsAlive(e) {
		return false
	}
	id, ok := w.components.lookup(reflect.TypeFor[T]())
	return ok && w.maskOf(e).has(id)
}

// Remove detaches the component of type T from e. Removing a component the
// entity does not carry is a no-op.
func Remove[T any](w *World, e Entity) error {
	return w.removeType(e, reflect.TypeFor[T]())
}

// UpdateDedup writes v only if it differs from the stored value, so that
// rewriting identical data does not trigger Changed filters downstream. It
// reports whether a write happened.
//
// Parameters:
//   - w: The World holding e.
//   - e: The target entity.
//   - v: The candidate value.
//
// Returns:
//   - true if the stored value changed.
//   - ErrEntityNotFound if e is not alive.
func UpdateDedup[T comparable](w *World, e Entity, v T) (bool, error) {
	if !w.IsAlive(e) {
		return false, entityNotFound(e)
	}
	id, col := columnOf[T](w)
	w.assertReadable(id)
	if p := col.get(e.ID); p != nil && *p == v {
		return false, nil
	}
	return true, Set(w, e, v)
}

func (w *World) removeType(e Entity, t reflect.Type) error {
	if !w.IsAlive(e) {
		return entityNotFound(e)
	}
	id, ok := w.components.lookup(t)
	if !ok || !w.maskOf(e).has(id) {
		return nil
	}
	if handled, err := w.relationRemove(id, e); handled {
		return err
	}
	w.removeRaw(e, id)
	return nil
}

func (w *World) removeRaw(e Entity, id ComponentID) {
	if w.borrows.live > 0 {
		panic(&BorrowError{Op: "remove", Component: w.components.name(id)})
	}
	w.components.columns[id].remove(e.ID)
	mask := w.maskOf(e)
	mask.unset(id)
	w.moveTo(e, mask)
}

// add moves e into the archetype that also carries id.
func (w *World) add(e Entity, id ComponentID) {
	if w.borrows.live > 0 {
		panic(&BorrowError{Op: "add", Component: w.components.name(id)})
	}
	mask := w.maskOf(e)
	mask.set(id)
	w.moveTo(e, mask)
}

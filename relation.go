package mado

import (
	"fmt"
	"slices"
)

// ChildOf is the relation component pointing at an entity's parent. An entity
// has at most one parent, and the graph formed by ChildOf is always a forest.
type ChildOf struct {
	Parent Entity
}

// Children lists an entity's children in attach order. It is maintained by
// Attach, Detach and Despawn and always mirrors the ChildOf edges.
type Children []Entity

// Attach makes child a child of parent, detaching it from any previous parent
// first. Attaching an entity below one of its own descendants fails with
// ErrRelationCycle.
//
// Parameters:
//   - child: The entity to move.
//   - parent: Its new parent.
//
// Returns:
//   - ErrEntityNotFound if either entity is dead.
//   - ErrRelationCycle if parent is child or one of its descendants.
func (w *World) Attach(child, parent Entity) error {
	if !w.IsAlive(child) {
		return entityNotFound(child)
	}
	if !w.IsAlive(parent) {
		return entityNotFound(parent)
	}
	for p, ok := parent, true; ok; p, ok = w.Parent(p) {
		if p == child {
			return fmt.Errorf("%w: %v below %v", ErrRelationCycle, child, parent)
		}
	}
	if cur, ok := w.Parent(child); ok {
		if cur == parent {
			return nil
		}
		w.unlink(child, cur)
	}
	setRaw(w, child, w.childOfID, ChildOf{Parent: parent})

	col := w.components.columns[w.childrenID].(*column[Children])
	if kids := col.get(parent.ID); kids != nil {
		w.assertWritable(w.childrenID)
		*kids = append(*kids, child)
		col.touch(parent.ID, w.stamp())
		return nil
	}
	setRaw(w, parent, w.childrenID, Children{child})
	return nil
}

// Detach removes child from its parent, turning it into a root. Detaching a
// root is a no-op.
func (w *World) Detach(child Entity) error {
	if !w.IsAlive(child) {
		return entityNotFound(child)
	}
	parent, ok := w.Parent(child)
	if !ok {
		return nil
	}
	w.unlink(child, parent)
	w.removeRaw(child, w.childOfID)
	return nil
}

// Parent returns the parent of e, if any.
func (w *World) Parent(e Entity) (Entity, bool) {
	rel, ok := Lookup[ChildOf](w, e)
	return rel.Parent, ok
}

// ChildrenOf returns a copy of the children of e in attach order.
func (w *World) ChildrenOf(e Entity) []Entity {
	kids, _ := Lookup[Children](w, e)
	return slices.Clone([]Entity(kids))
}

// Despawn removes e together with its whole subtree. Children cannot have
// their position resolved once their parent is gone, so the cascade is total:
// no Children list is ever left pointing at a dead entity.
//
// Parameters:
//   - e: The root of the subtree to remove.
//
// Returns:
//   - ErrEntityNotFound if e is not alive.
func (w *World) Despawn(e Entity) error {
	if !w.IsAlive(e) {
		return entityNotFound(e)
	}
	w.assertStructural("despawn")
	if parent, ok := w.Parent(e); ok {
		w.unlink(e, parent)
	}
	col := w.components.columns[w.childrenID].(*column[Children])
	stack := []Entity{e}
	removed := 0
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if kids := col.get(cur.ID); kids != nil {
			for _, k := range *kids {
				if w.IsAlive(k) {
					stack = append(stack, k)
				}
			}
		}
		w.destroy(cur)
		removed++
	}
	if removed > 1 {
		w.log.Debug("despawned subtree")
	}
	return nil
}

// unlink removes child from parent's Children list, preserving order.
func (w *World) unlink(child, parent Entity) {
	col := w.components.columns[w.childrenID].(*column[Children])
	kids := col.get(parent.ID)
	if kids == nil {
		return
	}
	w.assertWritable(w.childrenID)
	*kids = slices.DeleteFunc(*kids, func(c Entity) bool { return c == child })
	col.touch(parent.ID, w.stamp())
}

// relationSet routes writes of the relation components through Attach so the
// ChildOf and Children halves never disagree.
func (w *World) relationSet(id ComponentID, e Entity, v any) error {
	if id == w.childOfID {
		return w.Attach(e, v.(ChildOf).Parent)
	}
	return fmt.Errorf("mado: %v: Children is maintained by Attach and Detach", e)
}

// relationRemove handles removal of the relation components.
func (w *World) relationRemove(id ComponentID, e Entity) (bool, error) {
	switch id {
	case w.childOfID:
		return true, w.Detach(e)
	case w.childrenID:
		for _, k := range w.ChildrenOf(e) {
			if err := w.Detach(k); err != nil {
				return true, err
			}
		}
		w.removeRaw(e, w.childrenID)
		return true, nil
	}
	return false, nil
}

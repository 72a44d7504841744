package mado

import (
	"fmt"
	"slices"
)

type termKind uint8

const (
	termRead termKind = iota
	termWrite
	termWith
	termWithout
	termChanged
)

// Term is one clause of a query declaration: a borrow of a component or a
// filter on it. Terms are built with Read, Write, With, Without and Changed.
type Term struct {
	kind     termKind
	register func(*World) ComponentID
}

// Read borrows T shared. Any number of queries may read T at once.
func Read[T any]() Term { return Term{kind: termRead, register: componentID[T]} }

// Write borrows T exclusively. No other live borrow may touch T.
func Write[T any]() Term { return Term{kind: termWrite, register: componentID[T]} }

// With requires T to be present without borrowing it.
func With[T any]() Term { return Term{kind: termWith, register: componentID[T]} }

// Without requires T to be absent.
func Without[T any]() Term { return Term{kind: termWithout, register: componentID[T]} }

// Changed requires T to have been written since the query's previous borrow
// was released. It implies a shared borrow of T. On the first borrow every
// component counts as changed.
func Changed[T any]() Term { return Term{kind: termChanged, register: componentID[T]} }

// Query is a declared set of component borrows and filters over a World.
// Matching archetypes are cached and refreshed whenever the world creates a
// new archetype.
type Query struct {
	world    *World
	reads    bitmask256
	writes   bitmask256
	include  bitmask256
	exclude  bitmask256
	changed  bitmask256
	matching []*archetype

	archVersion uint32
	lastRun     uint64
	depthFirst  bool
	borrowed    bool
	borrow      Borrow
}

// NewQuery declares a query over w. Component types named by the terms are
// registered with the world if they are not already.
//
// Parameters:
//   - w: The World to query.
//   - terms: Read, Write, With, Without and Changed clauses.
//
// Returns:
//   - A pointer to the Query. It is not borrowed yet.
func NewQuery(w *World, terms ...Term) *Query {
	q := &Query{world: w}
	for _, t := range terms {
		id := t.register(w)
		switch t.kind {
		case termRead:
			q.reads.set(id)
			q.include.set(id)
		case termWrite:
			q.writes.set(id)
			q.include.set(id)
		case termWith:
			q.include.set(id)
		case termWithout:
			q.exclude.set(id)
		case termChanged:
			q.reads.set(id)
			q.include.set(id)
			q.changed.set(id)
		}
	}
	// A component borrowed both ways is simply written.
	for _, id := range q.writes.ids() {
		q.reads.unset(id)
	}
	q.borrow.q = q
	return q
}

// DepthFirst switches the query to visit entities in parent-before-children
// order along ChildOf. Roots are matching entities without a parent; a child
// that does not match is skipped together with its subtree. ChildOf and
// Children become readable but are not required: use Lookup, or add With
// terms, before fetching them.
func (q *Query) DepthFirst() *Query {
	q.depthFirst = true
	if !q.writes.has(q.world.childOfID) {
		q.reads.set(q.world.childOfID)
	}
	if !q.writes.has(q.world.childrenID) {
		q.reads.set(q.world.childrenID)
	}
	return q
}

// IsStale reports whether the cached archetype list predates the world's
// current set of archetypes.
func (q *Query) IsStale() bool {
	return q.archVersion != q.world.archetypes.archetypeVersion
}

func (q *Query) updateMatching() {
	q.matching = q.matching[:0]
	for _, a := range q.world.archetypes.archetypes {
		if a.mask.contains(q.include) && !a.mask.intersects(q.exclude) {
			q.matching = append(q.matching, a)
		}
	}
	q.archVersion = q.world.archetypes.archetypeVersion
}

// matches checks a single entity against the query's filters.
func (q *Query) matches(e Entity) bool {
	if !q.world.IsAlive(e) {
		return false
	}
	m := q.world.maskOf(e)
	return m.contains(q.include) && !m.intersects(q.exclude) && q.passesChanged(e)
}

func (q *Query) passesChanged(e Entity) bool {
	if q.changed.isZero() {
		return true
	}
	for _, id := range q.changed.ids() {
		if !q.world.components.columns[id].changedSince(e.ID, q.lastRun) {
			return false
		}
	}
	return true
}

// Borrow acquires the query's component borrows and returns a cursor over the
// matching entities. It fails with ErrBorrowConflict when the query is already
// borrowed or when another live borrow overlaps a write of this one. The
// borrow must be released before the world can change structurally.
//
// Returns:
//   - A cursor positioned before the first match.
//   - A *BorrowError wrapping ErrBorrowConflict on conflict.
func (q *Query) Borrow() (*Borrow, error) {
	w := q.world
	if q.borrowed {
		return nil, &BorrowError{Op: "borrow query twice"}
	}
	if id, ok := w.borrows.acquire(q.reads, q.writes); !ok {
		return nil, &BorrowError{Op: "borrow", Component: w.components.name(id)}
	}
	q.borrowed = true
	if q.IsStale() {
		q.updateMatching()
	}
	b := &q.borrow
	b.arch = -1
	b.idx = -1
	b.entities = nil
	b.parents = b.parents[:0]
	b.cur = Entity{}
	if q.depthFirst {
		b.order = q.preorder(b.order[:0], &b.parents)
		b.entities = b.order
		b.arch = len(q.matching)
	}
	return b, nil
}

// MustBorrow is Borrow for callers that treat a conflict as a programming
// error.
func (q *Query) MustBorrow() *Borrow {
	b, err := q.Borrow()
	if err != nil {
		panic(err)
	}
	return b
}

// Entities borrows the query, collects every matching entity and releases the
// borrow again.
func (q *Query) Entities() ([]Entity, error) {
	b, err := q.Borrow()
	if err != nil {
		return nil, err
	}
	defer b.Release()
	var out []Entity
	for b.Next() {
		out = append(out, b.cur)
	}
	return out, nil
}

// preorder lays out the matching forest in depth-first preorder. parents
// receives, for every visited entity, the index of its parent in the output
// or -1 for roots.
func (q *Query) preorder(out []Entity, parents *[]int) []Entity {
	w := q.world
	kids := w.components.columns[w.childrenID].(*column[Children])
	type frame struct {
		e      Entity
		parent int
	}
	var stack []frame
	for _, a := range q.matching {
		if a.mask.has(w.childOfID) {
			continue
		}
		for _, root := range a.entities {
			if !q.passesChanged(root) {
				continue
			}
			stack = append(stack, frame{e: root, parent: -1})
			for len(stack) > 0 {
				f := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				idx := len(out)
				out = append(out, f.e)
				*parents = append(*parents, f.parent)
				if c := kids.get(f.e.ID); c != nil {
					// Reverse push keeps siblings in attach order.
					for _, child := range slices.Backward(*c) {
						if q.matches(child) {
							stack = append(stack, frame{e: child, parent: idx})
						}
					}
				}
			}
		}
	}
	return out
}

// Borrow is a live cursor over a query's matching entities. Component values
// are read with Fetch and written with FetchMut.
type Borrow struct {
	q        *Query
	entities []Entity
	order    []Entity
	parents  []int
	arch     int
	idx      int
	cur      Entity
}

// Next advances to the next matching entity. It returns false once the
// iteration is complete.
func (b *Borrow) Next() bool {
	q := b.q
	for {
		b.idx++
		if b.idx < len(b.entities) {
			b.cur = b.entities[b.idx]
			if q.depthFirst || q.passesChanged(b.cur) {
				return true
			}
			continue
		}
		if b.arch+1 >= len(q.matching) {
			b.idx = len(b.entities)
			return false
		}
		b.arch++
		b.entities = q.matching[b.arch].entities
		b.idx = -1
	}
}

// Entity returns the current entity. Only valid after Next returned true.
func (b *Borrow) Entity() Entity {
	return b.cur
}

// Release ends the borrow. Writes made after this point count as changed for
// the query's next borrow. Releasing twice is a no-op.
func (b *Borrow) Release() {
	q := b.q
	if !q.borrowed {
		return
	}
	w := q.world
	w.borrows.release(q.reads, q.writes)
	q.borrowed = false
	q.lastRun = w.tick
	w.tick++
}

// Fetch returns a copy of the current entity's T. T must be declared by a
// Read, Write or Changed term. Fetching a component the current entity lacks
// panics with ErrComponentNotFound; this can only happen for the ChildOf and
// Children reads a DepthFirst query declares without requiring them.
func Fetch[T any](b *Borrow) T {
	return *fetch[T](b, false)
}

// FetchMut returns a pointer to the current entity's T and marks it changed.
// T must be declared by a Write term.
func FetchMut[T any](b *Borrow) *T {
	return fetch[T](b, true)
}

func fetch[T any](b *Borrow, mut bool) *T {
	q := b.q
	if !q.borrowed {
		panic("mado: fetch on a released borrow")
	}
	id, col := columnOf[T](q.world)
	switch {
	case mut && !q.writes.has(id):
		panic(&BorrowError{Op: "fetch undeclared write of", Component: q.world.components.name(id)})
	case !mut && !q.writes.has(id) && !q.reads.has(id):
		panic(&BorrowError{Op: "fetch undeclared read of", Component: q.world.components.name(id)})
	}
	p := col.get(b.cur.ID)
	if p == nil {
		panic(fmt.Errorf("%w: fetch %s on %v", ErrComponentNotFound, q.world.components.name(id), b.cur))
	}
	if mut {
		col.touch(b.cur.ID, q.world.stamp())
	}
	return p
}

// Traverse walks a depth-first borrow in preorder, threading an accumulator
// from each parent to its children. visit receives the borrow positioned on
// the current entity and its parent's accumulator (init for roots) and
// returns the entity's own accumulator.
//
// Parameters:
//   - b: A borrow of a DepthFirst query, positioned before its first entity.
//   - init: The accumulator handed to roots.
//   - visit: Called once per entity with its parent's accumulator.
func Traverse[A any](b *Borrow, init A, visit func(b *Borrow, parent A) A) {
	if !b.q.depthFirst {
		for b.Next() {
			visit(b, init)
		}
		return
	}
	acc := make([]A, len(b.order))
	for b.Next() {
		in := init
		if p := b.parents[b.idx]; p >= 0 {
			in = acc[p]
		}
		acc[b.idx] = visit(b, in)
	}
}

package mado

// borrowTracker counts live query borrows per component. A component may be
// read by any number of borrows or written by exactly one, never both.
type borrowTracker struct {
	readers [MaxComponentTypes]int32
	writers bitmask256
	live    int
}

// acquire records a borrow of reads and writes, or returns the first
// conflicting component without recording anything.
func (t *borrowTracker) acquire(reads, writes bitmask256) (ComponentID, bool) {
	for _, id := range writes.ids() {
		if t.writers.has(id) || t.readers[id] > 0 {
			return id, false
		}
	}
	for _, id := range reads.ids() {
		if t.writers.has(id) {
			return id, false
		}
	}
	for _, id := range reads.ids() {
		t.readers[id]++
	}
	for _, id := range writes.ids() {
		t.writers.set(id)
	}
	t.live++
	return 0, true
}

func (t *borrowTracker) release(reads, writes bitmask256) {
	for _, id := range reads.ids() {
		t.readers[id]--
	}
	for _, id := range writes.ids() {
		t.writers.unset(id)
	}
	t.live--
}

// assertStructural panics when a structural change is attempted while any
// query is borrowed: it could invalidate the borrowed iteration.
func (w *World) assertStructural(op string) {
	if w.borrows.live > 0 {
		panic(&BorrowError{Op: op})
	}
}

// assertWritable panics when id is borrowed by a live query.
func (w *World) assertWritable(id ComponentID) {
	if w.borrows.writers.has(id) || w.borrows.readers[id] > 0 {
		panic(&BorrowError{Op: "write", Component: w.components.name(id)})
	}
}

// assertReadable panics when id is exclusively borrowed by a live query.
func (w *World) assertReadable(id ComponentID) {
	if w.borrows.writers.has(id) {
		panic(&BorrowError{Op: "read", Component: w.components.name(id)})
	}
}

// Borrowed reports whether any query borrow is currently live.
func (w *World) Borrowed() bool {
	return w.borrows.live > 0
}

package mado

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type point struct{ X, Y float32 }

// go test -run ^TestColumnSparseGrowth$ . -count 1
func TestColumnSparseGrowth(t *testing.T) {
	w := NewWorld(1)
	const n = 5000
	for i := range n {
		e := w.Spawn()
		require.NoError(t, Set(w, e, point{X: float32(i)}))
	}
	_, col := columnOf[point](w)
	assert.Equal(t, n, col.len())
	assert.GreaterOrEqual(t, len(col.sparse), n)
	assert.LessOrEqual(t, cap(col.sparse), 2*n, "sparse index must grow linearly with the highest entity ID")
}

// go test -run ^TestColumnGrowKeepsEntries$ . -count 1
func TestColumnGrowKeepsEntries(t *testing.T) {
	c := newColumn[int]()
	c.set(3, 30, 1)
	c.set(100, 1000, 1)
	c.set(7, 70, 1)
	for id := range uint32(101) {
		switch id {
		case 3, 7, 100:
			require.True(t, c.has(id))
		default:
			assert.False(t, c.has(id), "id %d", id)
		}
	}
	assert.Equal(t, 1000, *c.get(100))
	assert.Equal(t, 70, *c.get(7))
}

// go test -run ^TestChangeTicksPastUint32$ . -count 1
func TestChangeTicksPastUint32(t *testing.T) {
	w := NewWorld(4)
	w.tick = math.MaxUint32 - 1
	e := w.Spawn()
	require.NoError(t, Set(w, e, point{}))
	q := NewQuery(w, Changed[point]())

	got, err := q.Entities()
	require.NoError(t, err)
	require.Equal(t, []Entity{e}, got)

	// Each round crosses further past the 32-bit boundary.
	for range 4 {
		got, err = q.Entities()
		require.NoError(t, err)
		assert.Empty(t, got)

		require.NoError(t, Set(w, e, point{X: 1}))
		got, err = q.Entities()
		require.NoError(t, err)
		assert.Equal(t, []Entity{e}, got)
	}
	assert.Greater(t, w.tick, uint64(math.MaxUint32))
}

package mado_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edwinsyarief/mado"
)

func tree(t *testing.T, w *mado.World) (root, a, b, a1 mado.Entity) {
	t.Helper()
	root, a, b, a1 = w.Spawn(), w.Spawn(), w.Spawn(), w.Spawn()
	require.NoError(t, w.Attach(a, root))
	require.NoError(t, w.Attach(b, root))
	require.NoError(t, w.Attach(a1, a))
	return
}

// go test -run ^TestAttach$ . -count 1
func TestAttach(t *testing.T) {
	w := mado.NewWorld(8)
	root, a, b, a1 := tree(t, w)

	p, ok := w.Parent(a1)
	require.True(t, ok)
	assert.Equal(t, a, p)
	_, ok = w.Parent(root)
	assert.False(t, ok)
	assert.Equal(t, []mado.Entity{a, b}, w.ChildrenOf(root))

	// Re-attaching moves the child and keeps both lists consistent.
	require.NoError(t, w.Attach(a1, b))
	assert.Empty(t, w.ChildrenOf(a))
	assert.Equal(t, []mado.Entity{a1}, w.ChildrenOf(b))
	rel, err := mado.Get[mado.ChildOf](w, a1)
	require.NoError(t, err)
	assert.Equal(t, b, rel.Parent)

	// Attaching to the same parent twice does not duplicate.
	require.NoError(t, w.Attach(a1, b))
	assert.Equal(t, []mado.Entity{a1}, w.ChildrenOf(b))
}

// go test -run ^TestAttachRejectsCycles$ . -count 1
func TestAttachRejectsCycles(t *testing.T) {
	w := mado.NewWorld(8)
	root, a, _, a1 := tree(t, w)

	assert.ErrorIs(t, w.Attach(root, a1), mado.ErrRelationCycle)
	assert.ErrorIs(t, w.Attach(a, a), mado.ErrRelationCycle)
	_, ok := w.Parent(root)
	assert.False(t, ok)

	dead := w.Spawn()
	require.NoError(t, w.Despawn(dead))
	assert.ErrorIs(t, w.Attach(dead, root), mado.ErrEntityNotFound)
	assert.ErrorIs(t, w.Attach(a, dead), mado.ErrEntityNotFound)
}

// go test -run ^TestDetach$ . -count 1
func TestDetach(t *testing.T) {
	w := mado.NewWorld(8)
	root, a, b, _ := tree(t, w)

	require.NoError(t, w.Detach(a))
	_, ok := w.Parent(a)
	assert.False(t, ok)
	assert.Equal(t, []mado.Entity{b}, w.ChildrenOf(root))
	require.NoError(t, w.Detach(a), "detaching a root is a no-op")
}

// go test -run ^TestRelationComponentsThroughSetAndRemove$ . -count 1
func TestRelationComponentsThroughSetAndRemove(t *testing.T) {
	w := mado.NewWorld(8)
	root, a, b, a1 := tree(t, w)

	c := w.Spawn()
	require.NoError(t, mado.Set(w, c, mado.ChildOf{Parent: root}))
	assert.Equal(t, []mado.Entity{a, b, c}, w.ChildrenOf(root))

	assert.Error(t, mado.Set(w, root, mado.Children{c}))

	require.NoError(t, mado.Remove[mado.ChildOf](w, c))
	assert.Equal(t, []mado.Entity{a, b}, w.ChildrenOf(root))

	require.NoError(t, mado.Remove[mado.Children](w, a))
	_, ok := w.Parent(a1)
	assert.False(t, ok)
	assert.False(t, mado.Has[mado.Children](w, a))
}

// go test -run ^TestDespawnIsRecursive$ . -count 1
func TestDespawnIsRecursive(t *testing.T) {
	w := mado.NewWorld(8)
	root, a, b, a1 := tree(t, w)
	for _, e := range []mado.Entity{root, a, b, a1} {
		require.NoError(t, mado.Set(w, e, Position{}))
	}

	require.NoError(t, w.Despawn(a))
	assert.False(t, w.IsAlive(a))
	assert.False(t, w.IsAlive(a1))
	assert.True(t, w.IsAlive(b))
	assert.Equal(t, []mado.Entity{b}, w.ChildrenOf(root))
	assert.Equal(t, 2, w.Len())

	got, err := mado.NewQuery(w, mado.Read[Position]()).Entities()
	require.NoError(t, err)
	assert.ElementsMatch(t, []mado.Entity{root, b}, got)

	assert.ErrorIs(t, w.Despawn(a), mado.ErrEntityNotFound)
}

// go test -run ^TestDespawnDeepTree$ . -count 1
func TestDespawnDeepTree(t *testing.T) {
	w := mado.NewWorld(16)
	root := w.Spawn()
	parent := root
	for range 1000 {
		e := w.Spawn()
		require.NoError(t, w.Attach(e, parent))
		parent = e
	}
	require.NoError(t, w.Despawn(root))
	assert.Equal(t, 0, w.Len())
}

package mado_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/edwinsyarief/mado"
)

// go test -run ^TestCommandOrder$ . -count 1
func TestCommandOrder(t *testing.T) {
	w := mado.NewWorld(8)
	e := w.Spawn()
	cmd := mado.NewCommandBuffer()

	cmd.Set(e, mado.Value(Position{X: 1}))
	cmd.Remove(e, reflect.TypeFor[Position]())
	assert.Equal(t, 2, cmd.Len())
	require.NoError(t, cmd.Apply(w))
	assert.False(t, mado.Has[Position](w, e))
	assert.Equal(t, 0, cmd.Len())

	cmd.Remove(e, reflect.TypeFor[Position]())
	cmd.Set(e, mado.Value(Position{X: 2}), mado.Value(Tag{}))
	require.NoError(t, cmd.Apply(w))
	p, err := mado.Get[Position](w, e)
	require.NoError(t, err)
	assert.Equal(t, Position{X: 2}, p)
	assert.True(t, mado.Has[Tag](w, e))
}

// go test -run ^TestCommandSetMissing$ . -count 1
func TestCommandSetMissing(t *testing.T) {
	w := mado.NewWorld(8)
	e := w.Spawn()
	require.NoError(t, mado.Set(w, e, Health{Current: 3, Max: 3}))

	cmd := mado.NewCommandBuffer()
	cmd.SetMissing(e, mado.Value(Health{}), mado.Value(Position{X: 7}))
	require.NoError(t, cmd.Apply(w))

	h, _ := mado.Get[Health](w, e)
	assert.Equal(t, Health{Current: 3, Max: 3}, h)
	p, _ := mado.Get[Position](w, e)
	assert.Equal(t, Position{X: 7}, p)
}

// go test -run ^TestCommandStaleTargetsAreSkipped$ . -count 1
func TestCommandStaleTargetsAreSkipped(t *testing.T) {
	w := mado.NewWorld(8)
	e := w.Spawn()
	parent := w.Spawn()

	cmd := mado.NewCommandBuffer()
	cmd.Despawn(e)
	cmd.Set(e, mado.Value(Position{}))
	cmd.Remove(e, reflect.TypeFor[Position]())
	cmd.Attach(e, parent)
	cmd.Detach(e)
	cmd.Despawn(e)
	require.NoError(t, cmd.Apply(w))
	assert.False(t, w.IsAlive(e))
	assert.Equal(t, 1, w.Len())

	// The recycled ID must not pick up commands meant for e.
	again := w.Spawn()
	require.Equal(t, e.ID, again.ID)
	cmd.Set(e, mado.Value(Tag{}))
	require.NoError(t, cmd.Apply(w))
	assert.False(t, mado.Has[Tag](w, again))
}

// go test -run ^TestCommandSpawn$ . -count 1
func TestCommandSpawn(t *testing.T) {
	w := mado.NewWorld(8)
	parent := w.Spawn()
	dead := w.Spawn()
	require.NoError(t, w.Despawn(dead))

	cmd := mado.NewCommandBuffer()
	cmd.Spawn(mado.Value(Position{X: 1}))
	cmd.SpawnChild(parent, mado.Value(Tag{}))
	cmd.SpawnChild(dead, mado.Value(Tag{}))
	require.NoError(t, cmd.Apply(w))

	assert.Equal(t, 3, w.Len())
	kids := w.ChildrenOf(parent)
	require.Len(t, kids, 1)
	assert.True(t, mado.Has[Tag](w, kids[0]))

	roots, err := mado.NewQuery(w, mado.Read[Position](), mado.Without[mado.ChildOf]()).Entities()
	require.NoError(t, err)
	assert.Len(t, roots, 1)
}

// go test -run ^TestCommandErrorsAreCollected$ . -count 1
func TestCommandErrorsAreCollected(t *testing.T) {
	w := mado.NewWorld(8)
	root, _, _, a1 := tree(t, w)
	other := w.Spawn()
	boom := errors.New("boom")

	cmd := mado.NewCommandBuffer()
	cmd.Attach(root, a1)
	cmd.Defer(func(*mado.World) error { return boom })
	cmd.Set(other, mado.Value(Tag{}))
	err := cmd.Apply(w)

	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2)
	assert.ErrorIs(t, err, mado.ErrRelationCycle)
	assert.ErrorIs(t, err, boom)
	assert.True(t, mado.Has[Tag](w, other), "later commands still run")
	assert.Equal(t, 0, cmd.Len())
}

// go test -run ^TestCommandsRecordedDuringBorrow$ . -count 1
func TestCommandsRecordedDuringBorrow(t *testing.T) {
	w := mado.NewWorld(8)
	spawnMovers(t, w, 4)
	cmd := mado.NewCommandBuffer()

	b := mado.NewQuery(w, mado.Read[Position]()).MustBorrow()
	for b.Next() {
		if mado.Fetch[Position](b).X >= 2 {
			cmd.Despawn(b.Entity())
		}
	}
	assert.Panics(t, func() { _ = cmd.Apply(w) })
	b.Release()

	cmd.Reset()
	b = mado.NewQuery(w, mado.Read[Position]()).MustBorrow()
	for b.Next() {
		if mado.Fetch[Position](b).X >= 2 {
			cmd.Despawn(b.Entity())
		}
	}
	b.Release()
	require.NoError(t, cmd.Apply(w))
	assert.Equal(t, 2, w.Len())
}

package mado_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edwinsyarief/mado"
)

type windowSize struct{ W, H float32 }
type theme struct{ Name string }

// go test -run ^TestResources$ . -count 1
func TestResources(t *testing.T) {
	w := mado.NewWorld(1)
	r := w.Resources()

	require.NoError(t, mado.AddResource(r, &windowSize{W: 800, H: 600}))
	assert.Error(t, mado.AddResource(r, &windowSize{}))
	assert.Error(t, mado.AddResource[theme](r, nil))

	size, ok := mado.GetResource[windowSize](r)
	require.True(t, ok)
	assert.Equal(t, float32(800), size.W)
	size.W = 1024
	assert.Equal(t, float32(1024), mado.MustResource[windowSize](r).W, "resources are stored by pointer")

	_, ok = mado.GetResource[theme](r)
	assert.False(t, ok)
	assert.Panics(t, func() { mado.MustResource[theme](r) })

	mado.SetResource(r, &theme{Name: "dark"})
	mado.SetResource(r, &theme{Name: "light"})
	assert.Equal(t, "light", mado.MustResource[theme](r).Name)
	assert.Equal(t, 2, r.Len())

	assert.True(t, mado.RemoveResource[windowSize](r))
	assert.False(t, mado.RemoveResource[windowSize](r))
	assert.Equal(t, 1, r.Len())

	// A freed slot is reused.
	mado.SetResource(r, &windowSize{W: 1})
	assert.Equal(t, float32(1), mado.MustResource[windowSize](r).W)
	assert.Equal(t, "light", mado.MustResource[theme](r).Name)

	r.Clear()
	assert.Equal(t, 0, r.Len())
	_, ok = mado.GetResource[theme](r)
	assert.False(t, ok)
}

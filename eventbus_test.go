package mado_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/edwinsyarief/mado"
)

type testEvent struct {
	Value int
}

// go test -run ^TestEventBusSubscribeAndPublish$ . -count 1
func TestEventBusSubscribeAndPublish(t *testing.T) {
	bus := &mado.EventBus{}
	var order []int
	mado.Subscribe(bus, func(e testEvent) { order = append(order, e.Value) })
	mado.Subscribe(bus, func(e testEvent) { order = append(order, e.Value*10) })

	mado.Publish(bus, testEvent{Value: 1})
	mado.Publish(bus, testEvent{Value: 2})
	assert.Equal(t, []int{1, 10, 2, 20}, order)
}

// go test -run ^TestEventBusMultipleTypes$ . -count 1
func TestEventBusMultipleTypes(t *testing.T) {
	bus := &mado.EventBus{}
	var events, positions int
	mado.Subscribe(bus, func(e testEvent) { events += e.Value })
	mado.Subscribe(bus, func(p Position) { positions += int(p.X) })

	mado.Publish(bus, testEvent{Value: 3})
	mado.Publish(bus, Position{X: 5})
	assert.Equal(t, 3, events)
	assert.Equal(t, 5, positions)
}

// go test -run ^TestEventBusUnsubscribe$ . -count 1
func TestEventBusUnsubscribe(t *testing.T) {
	bus := &mado.EventBus{}
	var a, b int
	sa := mado.Subscribe(bus, func(e testEvent) { a += e.Value })
	mado.Subscribe(bus, func(e testEvent) { b += e.Value })

	bus.Unsubscribe(sa)
	bus.Unsubscribe(sa)
	mado.Publish(bus, testEvent{Value: 1})
	assert.Equal(t, 0, a)
	assert.Equal(t, 1, b)
}

// go test -run ^TestEventBusUnsubscribeDuringPublish$ . -count 1
func TestEventBusUnsubscribeDuringPublish(t *testing.T) {
	bus := &mado.EventBus{}
	var order []string
	var once mado.Subscription
	once = mado.Subscribe(bus, func(testEvent) {
		order = append(order, "once")
		bus.Unsubscribe(once)
	})
	mado.Subscribe(bus, func(testEvent) { order = append(order, "next") })
	mado.Subscribe(bus, func(testEvent) { order = append(order, "last") })

	mado.Publish(bus, testEvent{})
	assert.Equal(t, []string{"once", "next", "last"}, order)

	order = nil
	mado.Publish(bus, testEvent{})
	assert.Equal(t, []string{"next", "last"}, order)
}

// go test -run ^TestEventBusPublishWithoutSubscribers$ . -count 1
func TestEventBusPublishWithoutSubscribers(t *testing.T) {
	bus := &mado.EventBus{}
	assert.NotPanics(t, func() { mado.Publish(bus, testEvent{Value: 1}) })
}

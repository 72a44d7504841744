package mado

import (
	"reflect"
	"slices"
)

// MaxEventTypes is the number of distinct event types an EventBus accepts.
const MaxEventTypes = 256

// EventBus delivers window and input events to interested parties without
// coupling the windowing boundary to the systems reacting to it. Handlers run
// synchronously in subscription order.
type EventBus struct {
	eventTypeMap map[reflect.Type]uint8
	handlers     [MaxEventTypes][]handlerSlot
	nextID       uint16
	nextToken    uint64
}

type handlerSlot struct {
	token uint64
	fn    any
}

// Subscription identifies a subscribed handler.
type Subscription struct {
	event uint8
	token uint64
}

// Subscribe registers handler for events of type T.
//
// Parameters:
//   - bus: The bus to subscribe to.
//   - handler: Called with every published T.
//
// Returns:
//   - A Subscription to pass to Unsubscribe.
func Subscribe[T any](bus *EventBus, handler func(T)) Subscription {
	id := bus.eventID(reflect.TypeFor[T]())
	bus.nextToken++
	bus.handlers[id] = append(bus.handlers[id], handlerSlot{token: bus.nextToken, fn: handler})
	return Subscription{event: id, token: bus.nextToken}
}

// Unsubscribe removes a handler. Unknown subscriptions are ignored. The
// handler list is copied so a Publish already in progress is unaffected.
func (bus *EventBus) Unsubscribe(s Subscription) {
	hs := bus.handlers[s.event]
	for i, h := range hs {
		if h.token == s.token {
			bus.handlers[s.event] = slices.Delete(slices.Clone(hs), i, i+1)
			return
		}
	}
}

// Publish calls every handler subscribed to T. Publishing an event nobody
// listens to is a no-op and does not register the type. Handlers subscribed
// or unsubscribed by a handler take effect from the next Publish.
//
// Parameters:
//   - bus: The bus to publish on.
//   - event: The value handed to each handler.
func Publish[T any](bus *EventBus, event T) {
	id, ok := bus.eventTypeMap[reflect.TypeFor[T]()]
	if !ok {
		return
	}
	for _, h := range bus.handlers[id] {
		h.fn.(func(T))(event)
	}
}

func (bus *EventBus) eventID(t reflect.Type) uint8 {
	if bus.eventTypeMap == nil {
		bus.eventTypeMap = make(map[reflect.Type]uint8)
	}
	if id, ok := bus.eventTypeMap[t]; ok {
		return id
	}
	if bus.nextID >= MaxEventTypes {
		panic("mado: too many event types")
	}
	id := uint8(bus.nextID)
	bus.nextID++
	bus.eventTypeMap[t] = id
	return id
}

package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribeIdempotent(t *testing.T) {
	bus := NewBus()

	var calls int

	handler := func(Event) { calls++ }

	bus.Subscribe(TypeJobStarted, "counter", handler)
	bus.Subscribe(TypeJobStarted, "counter", handler)

	bus.Publish(New(TypeJobStarted, "test", "p1", nil))

	assert.Equal(t, 1, calls, "duplicate subscription must not double-fire")
}

func TestPublishOrdering(t *testing.T) {
	bus := NewBus()

	var got []string

	bus.Subscribe(TypeJobProgress, "first", func(e Event) {
		got = append(got, "first:"+e.PrinterID)
	})
	bus.Subscribe(TypeJobProgress, "second", func(e Event) {
		got = append(got, "second:"+e.PrinterID)
	})

	for _, id := range []string{"a", "b", "c"} {
		bus.Publish(New(TypeJobProgress, "test", id, nil))
	}

	require.Len(t, got, 6)
	assert.Equal(t, []string{
		"first:a", "second:a",
		"first:b", "second:b",
		"first:c", "second:c",
	}, got)
}

func TestWildcardRunsAfterExact(t *testing.T) {
	bus := NewBus()

	var got []string

	bus.Subscribe(TypeWildcard, "star", func(e Event) {
		got = append(got, "star:"+e.Type)
	})
	bus.Subscribe(TypeJobCompleted, "exact", func(Event) {
		got = append(got, "exact")
	})

	bus.Publish(New(TypeJobCompleted, "test", "p1", nil))
	bus.Publish(New(TypeJobPaused, "test", "p1", nil))

	assert.Equal(t, []string{
		"exact", "star:" + TypeJobCompleted,
		"star:" + TypeJobPaused,
	}, got)
}

func TestHandlerPanicIsolated(t *testing.T) {
	bus := NewBus()

	var survived []string

	bus.Subscribe(TypeJobCompleted, "explodes", func(Event) {
		panic("boom")
	})
	bus.Subscribe(TypeJobCompleted, "sibling", func(Event) {
		survived = append(survived, "sibling")
	})
	bus.Subscribe(TypeWildcard, "star", func(Event) {
		survived = append(survived, "star")
	})

	require.NotPanics(t, func() {
		bus.Publish(New(TypeJobCompleted, "test", "p1", nil))
	})

	assert.Equal(t, []string{"sibling", "star"}, survived)
}

func TestUnsubscribe(t *testing.T) {
	bus := NewBus()

	var calls int

	bus.Subscribe(TypeJobStarted, "counter", func(Event) { calls++ })

	// Unknown pairs are a no-op.
	bus.Unsubscribe(TypeJobStarted, "never-registered")
	bus.Unsubscribe(TypeJobCancelled, "counter")

	bus.Publish(New(TypeJobStarted, "test", "p1", nil))
	require.Equal(t, 1, calls)

	bus.Unsubscribe(TypeJobStarted, "counter")
	bus.Publish(New(TypeJobStarted, "test", "p1", nil))

	assert.Equal(t, 1, calls)
}

func TestSubscribeDuringPublish(t *testing.T) {
	bus := NewBus()

	var lateCalls int

	bus.Subscribe(TypeJobStarted, "registrar", func(Event) {
		bus.Subscribe(TypeJobStarted, "late", func(Event) { lateCalls++ })
	})

	require.NotPanics(t, func() {
		bus.Publish(New(TypeJobStarted, "test", "p1", nil))
	})

	// The late handler only sees publishes after its registration.
	assert.Equal(t, 0, lateCalls)

	bus.Publish(New(TypeJobStarted, "test", "p1", nil))
	assert.Equal(t, 1, lateCalls)
}

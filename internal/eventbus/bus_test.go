package eventbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublishOrderAndPayload(t *testing.T) {
	t.Parallel()
	b := New()
	var got []string
	b.Subscribe(func(e Event) { got = append(got, "a:"+e.Type) })
	b.Subscribe(func(e Event) { got = append(got, "b:"+e.Type) })

	b.Publish(Event{Type: "task.upserted"})
	assert.Equal(t, []string{"a:task.upserted", "b:task.upserted"}, got)
}

func TestPanickingListenerIsIsolated(t *testing.T) {
	t.Parallel()
	b := New()
	ran := false
	b.Subscribe(func(Event) { panic("listener bug") })
	b.Subscribe(func(Event) { ran = true })

	assert.NotPanics(t, func() { b.Publish(Event{Type: "event.completed"}) })
	assert.True(t, ran)
}

func TestUnsubscribe(t *testing.T) {
	t.Parallel()
	b := New()
	calls := 0
	unsub := b.Subscribe(func(Event) { calls++ })
	b.Publish(Event{Type: "x"})
	unsub()
	unsub() // double unsubscribe is a no-op
	b.Publish(Event{Type: "x"})
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, b.Len())
}

func TestUnsubscribeInsideCallback(t *testing.T) {
	t.Parallel()
	b := New()
	var unsub func()
	calls := 0
	unsub = b.Subscribe(func(Event) {
		calls++
		unsub()
	})
	b.Publish(Event{Type: "x"})
	b.Publish(Event{Type: "x"})
	assert.Equal(t, 1, calls)
}

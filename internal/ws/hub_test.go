package ws

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func drain(sub *Subscriber) []Event {
	var events []Event
	for {
		select {
		case ev, ok := <-sub.Events():
			if !ok {
				return events
			}
			events = append(events, ev)
		default:
			return events
		}
	}
}

func TestHubDeliversInPublishOrder(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	sub := hub.Subscribe("channel:1:message:create")

	for i := 0; i < 10; i++ {
		hub.Publish("channel:1:message:create", i)
	}

	events := drain(sub)
	assert.Len(t, events, 10)
	for i, ev := range events {
		assert.Equal(t, "channel:1:message:create", ev.Topic)
		assert.Equal(t, i, ev.Payload)
	}
}

func TestHubTopicIsolation(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	chanSub := hub.Subscribe("channel:1:message:create")
	convSub := hub.Subscribe("conversation:9:message:create")

	hub.Publish("channel:1:message:create", "for channel")

	assert.Len(t, drain(chanSub), 1)
	assert.Empty(t, drain(convSub))
}

func TestHubMultiTopicSubscriber(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	sub := hub.Subscribe("channel:1:message:create", "channel:1:message:update")

	hub.Publish("channel:1:message:create", "new")
	hub.Publish("channel:1:message:update", "edited")

	events := drain(sub)
	if assert.Len(t, events, 2) {
		assert.Equal(t, "channel:1:message:create", events[0].Topic)
		assert.Equal(t, "channel:1:message:update", events[1].Topic)
	}
}

func TestHubDropsSlowSubscriber(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	slow := hub.Subscribe("channel:1:message:create")
	fast := hub.Subscribe("channel:1:message:create")

	// Fill the slow subscriber's buffer without consuming, then publish one
	// more. The overflowing publish drops the slow subscriber; the fast one
	// keeps draining and stays registered.
	for i := 0; i <= subscriberBuffer; i++ {
		hub.Publish("channel:1:message:create", i)
		drain(fast)
	}

	received := 0
	for range slow.Events() {
		received++
	}
	assert.Equal(t, subscriberBuffer, received, "slow subscriber keeps its backlog but is closed")

	hub.Publish("channel:1:message:create", "after drop")
	events := drain(fast)
	if assert.Len(t, events, 1) {
		assert.Equal(t, "after drop", events[0].Payload)
	}
}

func TestHubUnsubscribe(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	sub := hub.Subscribe("channel:1:message:create")
	hub.Unsubscribe(sub)

	hub.Publish("channel:1:message:create", "late")

	_, ok := <-sub.Events()
	assert.False(t, ok, "channel closed after unsubscribe")

	// Unsubscribing twice is harmless.
	hub.Unsubscribe(sub)
}

func TestHubClose(t *testing.T) {
	hub := NewHub()

	sub := hub.Subscribe("channel:1:message:create")
	hub.Close()

	_, ok := <-sub.Events()
	assert.False(t, ok, "channel closed on hub shutdown")

	// Publishing into a closed hub is a no-op.
	hub.Publish("channel:1:message:create", "ignored")

	late := hub.Subscribe("channel:1:message:create")
	_, ok = <-late.Events()
	assert.False(t, ok, "subscriptions after shutdown are closed immediately")
}

func TestHubConcurrentPublish(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	subs := make([]*Subscriber, 8)
	for i := range subs {
		subs[i] = hub.Subscribe(fmt.Sprintf("channel:%d:message:create", i))
	}

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func(i int) {
			defer func() { done <- struct{}{} }()
			for n := 0; n < 16; n++ {
				hub.Publish(fmt.Sprintf("channel:%d:message:create", i), n)
			}
		}(i)
	}
	for i := 0; i < 8; i++ {
		<-done
	}

	for i, sub := range subs {
		events := drain(sub)
		assert.Len(t, events, 16, "subscriber %d", i)
		for n, ev := range events {
			assert.Equal(t, n, ev.Payload)
		}
	}
}

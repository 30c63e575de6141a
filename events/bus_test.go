package events

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesSubscriber(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe(TopicOrderCreated)
	defer cancel()

	bus.Publish(TopicOrderCreated, "payload")

	select {
	case ev := <-ch:
		assert.Equal(t, TopicOrderCreated, ev.Name)
		assert.Equal(t, "payload", ev.Payload)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestPublishWithoutSubscribersIsDropped(t *testing.T) {
	bus := NewBus()
	// No queueing, no replay: a later subscriber sees nothing.
	bus.Publish(TopicOrderUpdated, "lost")

	ch, cancel := bus.Subscribe(TopicOrderUpdated)
	defer cancel()

	select {
	case ev := <-ch:
		t.Fatalf("unexpected replayed event %v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSubscriberOnlyReceivesItsTopics(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe(TopicOrderCreated)
	defer cancel()

	bus.Publish(TopicNotificationCreated, "other")
	bus.Publish(TopicOrderCreated, "mine")

	ev := <-ch
	assert.Equal(t, "mine", ev.Payload)
}

func TestCancelClosesChannelAndStopsDelivery(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe(TopicOrderCreated)
	cancel()
	cancel() // idempotent

	bus.Publish(TopicOrderCreated, "late")

	_, open := <-ch
	assert.False(t, open, "channel should be closed after cancel")
}

func TestSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	bus := NewBus()
	_, cancel := bus.Subscribe(TopicOrderCreated)
	defer cancel()

	done := make(chan struct{})
	go func() {
		// Nobody drains the channel; once the buffer fills, publishes
		// must drop rather than block.
		for i := 0; i < subscriberBuffer*3; i++ {
			bus.Publish(TopicOrderCreated, i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}

func TestConcurrentSubscribeUnsubscribePublish(t *testing.T) {
	bus := NewBus()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, cancel := bus.Subscribe(TopicOrderUpdated)
			cancel()
		}()
		go func() {
			defer wg.Done()
			bus.Publish(TopicOrderUpdated, "x")
		}()
	}
	wg.Wait()

	require.NotPanics(t, func() { bus.Publish(TopicOrderUpdated, "final") })
}

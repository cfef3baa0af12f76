package events

import (
	"testing"
	"time"
)

func TestPublishSubscribe(t *testing.T) {
	b := NewBroadcaster()
	ch, cancel := b.Subscribe()
	defer cancel()

	if got := b.SubscriberCount(); got != 1 {
		t.Fatalf("SubscriberCount = %d, want 1", got)
	}

	b.Publish(PostCreated, map[string]string{"id": "p1"})

	select {
	case event := <-ch:
		if event.Type != PostCreated {
			t.Errorf("event type = %s, want %s", event.Type, PostCreated)
		}
		if event.CreatedAt.IsZero() {
			t.Error("event has zero timestamp")
		}
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
}

func TestCancelClosesChannel(t *testing.T) {
	b := NewBroadcaster()
	ch, cancel := b.Subscribe()

	cancel()
	if got := b.SubscriberCount(); got != 0 {
		t.Errorf("SubscriberCount after cancel = %d, want 0", got)
	}
	if _, ok := <-ch; ok {
		t.Error("channel still open after cancel")
	}

	// Second cancel is a no-op, not a double close.
	cancel()

	// Publishing with no subscribers must not block or panic.
	b.Publish(LikeToggled, nil)
}

func TestSlowSubscriberDropsEvents(t *testing.T) {
	b := NewBroadcaster()
	ch, cancel := b.Subscribe()
	defer cancel()

	// Overfill the buffer; the excess is dropped rather than blocking.
	for i := 0; i < subscriberBufferSize+10; i++ {
		b.Publish(CommentAdded, i)
	}

	received := 0
	for {
		select {
		case <-ch:
			received++
		default:
			if received != subscriberBufferSize {
				t.Errorf("buffered events = %d, want %d", received, subscriberBufferSize)
			}
			return
		}
	}
}

func TestMultipleSubscribers(t *testing.T) {
	b := NewBroadcaster()
	first, cancelFirst := b.Subscribe()
	second, cancelSecond := b.Subscribe()
	defer cancelFirst()
	defer cancelSecond()

	b.Publish(FollowToggled, nil)

	for i, ch := range []<-chan Event{first, second} {
		select {
		case event := <-ch:
			if event.Type != FollowToggled {
				t.Errorf("subscriber %d event type = %s, want %s", i, event.Type, FollowToggled)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d received no event", i)
		}
	}
}

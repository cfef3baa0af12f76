// Package events is the in-process fanout between the engine and its
// subscribers (the websocket endpoint). Publishing never blocks: subscribers
// that fall behind their buffer miss events rather than stalling mutations.
package events

import (
	"sync"
	"time"
)

type Type string

const (
	PostCreated   Type = "post.created"
	CommentAdded  Type = "comment.added"
	LikeToggled   Type = "like.toggled"
	FollowToggled Type = "follow.toggled"
	UserDeleted   Type = "user.deleted"
)

type Event struct {
	Type      Type      `json:"type"`
	Payload   any       `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
}

const subscriberBufferSize = 64

type Broadcaster struct {
	mu          sync.Mutex
	subscribers map[chan Event]struct{}
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[chan Event]struct{}),
	}
}

// Subscribe registers a new subscriber channel. The returned cancel func
// removes the subscription and closes the channel.
func (b *Broadcaster) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBufferSize)

	b.mu.Lock()
	b.subscribers[ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subscribers[ch]; ok {
			delete(b.subscribers, ch)
			close(ch)
		}
	}
	return ch, cancel
}

func (b *Broadcaster) Publish(eventType Type, payload any) {
	event := Event{
		Type:      eventType,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subscribers {
		select {
		case ch <- event:
		default: // subscriber buffer full, drop
		}
	}
}

func (b *Broadcaster) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers)
}

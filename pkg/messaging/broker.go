package messaging

import (
	"fmt"
	"sync"
	"time"
)

type subscription struct {
	id      string
	handler Handler
}

// SimpleBroker implements the Bus interface with synchronous delivery.
// subscribers maps each topic to its handlers in subscription order.
type SimpleBroker struct {
	subscribers map[Topic][]subscription
	mu          sync.RWMutex
}

// NewBroker creates a new message broker
func NewBroker() *SimpleBroker {
	return &SimpleBroker{
		subscribers: make(map[Topic][]subscription),
	}
}

// Publish calls every handler subscribed to msg.Topic before returning.
// Handlers may publish further messages.
func (b *SimpleBroker) Publish(msg Message) error {
	if msg.Topic == "" {
		return fmt.Errorf("message from %q has no topic", msg.From)
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}

	b.mu.RLock()
	subs := make([]subscription, len(b.subscribers[msg.Topic]))
	copy(subs, b.subscribers[msg.Topic])
	b.mu.RUnlock()

	for _, s := range subs {
		s.handler(msg)
	}
	return nil
}

// Subscribe registers h for topic
func (b *SimpleBroker) Subscribe(id string, topic Topic, h Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, s := range b.subscribers[topic] {
		if s.id == id {
			return fmt.Errorf("%s is already subscribed to %s", id, topic)
		}
	}

	b.subscribers[topic] = append(b.subscribers[topic], subscription{id: id, handler: h})
	return nil
}

// Unsubscribe removes id from every topic
func (b *SimpleBroker) Unsubscribe(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	found := false
	for topic, subs := range b.subscribers {
		kept := subs[:0]
		for _, s := range subs {
			if s.id == id {
				found = true
				continue
			}
			kept = append(kept, s)
		}
		b.subscribers[topic] = kept
	}
	if !found {
		return fmt.Errorf("%s is not subscribed", id)
	}
	return nil
}

func (b *SimpleBroker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = make(map[Topic][]subscription)
}

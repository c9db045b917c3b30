package messaging

import (
	"time"

	"github.com/boristopalov/batonpass/pkg/core"
)

// Topic names an event stream on the bus.
type Topic string

const (
	// ButtonPressed is published when an agent touches the button
	ButtonPressed Topic = "button.pressed"
	// FoodConsumed is published when an agent touches active food
	FoodConsumed Topic = "food.consumed"
	// AgentSpawned is published after the coordinator registers a new body
	AgentSpawned Topic = "agent.spawned"
	// EpisodeEnded carries a core.EpisodeSummary
	EpisodeEnded Topic = "episode.ended"
)

// Message is a single event on the bus.
type Message struct {
	Topic     Topic
	From      core.Handle // agent that caused the event, empty for scene events
	Content   any
	Timestamp time.Time
}

// Handler consumes a message. Handlers run on the publisher's goroutine.
type Handler func(msg Message)

// Bus routes events between the scene and the coordinator
type Bus interface {
	// Publish delivers msg to every subscriber of msg.Topic
	Publish(msg Message) error
	// Subscribe registers a handler for topic under a subscriber id
	Subscribe(id string, topic Topic, h Handler) error
	// Unsubscribe removes every handler registered under id
	Unsubscribe(id string) error
}

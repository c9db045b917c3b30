// Package scene is an in-memory stand-in for the host engine: it owns agent
// bodies, the button and the food, and turns contacts into bus events.
package scene

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/boristopalov/batonpass/pkg/core"
	"github.com/boristopalov/batonpass/pkg/messaging"
)

// Body is an agent object living in the arena.
type Body struct {
	Handle   core.Handle
	Position core.Vec3
	Parent   string
	Serial   int
}

// Arena implements core.Spawner.
type Arena struct {
	name   string
	bus    messaging.Bus
	log    *zap.Logger
	mu     sync.RWMutex
	bodies map[core.Handle]Body
	serial int

	Button *Button
	Food   *Food
}

func NewArena(name string, buttonPos core.Vec3, bus messaging.Bus, log *zap.Logger) *Arena {
	if log == nil {
		log = zap.NewNop()
	}
	return &Arena{
		name:   name,
		bus:    bus,
		log:    log,
		bodies: make(map[core.Handle]Body),
		Button: &Button{position: buttonPos},
		Food:   &Food{},
	}
}

func (a *Arena) Name() string {
	return a.name
}

// Spawn creates a body with a fresh handle.
func (a *Arena) Spawn(pos core.Vec3, parent string) (core.Handle, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.serial++
	h := core.Handle("agent-" + uuid.New().String())
	a.bodies[h] = Body{Handle: h, Position: pos, Parent: parent, Serial: a.serial}
	a.log.Debug("spawned body", zap.Stringer("agent", h), zap.Stringer("position", pos))
	return h, nil
}

// Destroy removes the body behind h.
func (a *Arena) Destroy(h core.Handle) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.bodies[h]; !ok {
		return fmt.Errorf("body %s not found", h)
	}
	delete(a.bodies, h)
	return nil
}

func (a *Arena) Body(h core.Handle) (Body, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	b, ok := a.bodies[h]
	return b, ok
}

// Live returns every body still in the arena, oldest first.
func (a *Arena) Live() []Body {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]Body, 0, len(a.bodies))
	for _, b := range a.bodies {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Serial < out[j].Serial })
	return out
}

// TouchButton reports a contact between h and the button.
func (a *Arena) TouchButton(h core.Handle) error {
	if _, ok := a.Body(h); !ok {
		return fmt.Errorf("body %s not found", h)
	}
	return a.bus.Publish(messaging.Message{Topic: messaging.ButtonPressed, From: h})
}

// TouchFood reports a contact between h and the food. Contacts with
// inactive food are dropped.
func (a *Arena) TouchFood(h core.Handle) error {
	if _, ok := a.Body(h); !ok {
		return fmt.Errorf("body %s not found", h)
	}
	if !a.Food.Active() {
		return nil
	}
	return a.bus.Publish(messaging.Message{Topic: messaging.FoodConsumed, From: h})
}

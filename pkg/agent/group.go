package agent

import (
	"iter"

	"go.uber.org/zap"

	"github.com/boristopalov/batonpass/pkg/core"
)

// Group is the registry of cooperating agents for one arena.
// It is not safe for concurrent writers; callbacks are expected to arrive
// between ticks on the driving goroutine.
type Group struct {
	members map[core.Handle]*Record
	order   []core.Handle // registration order, for reproducible iteration
	log     *zap.Logger
}

func NewGroup(log *zap.Logger) *Group {
	if log == nil {
		log = zap.NewNop()
	}
	return &Group{
		members: make(map[core.Handle]*Record),
		log:     log,
	}
}

// Register adds h with every capability granted. A duplicate handle leaves
// the group untouched and returns false.
func (g *Group) Register(h core.Handle) (Record, bool) {
	if r, exists := g.members[h]; exists {
		g.log.Debug("agent already registered", zap.Stringer("agent", h))
		return *r, false
	}
	r := newRecord(h)
	g.members[h] = r
	g.order = append(g.order, h)
	return *r, true
}

// Unregister removes h if it is a member. External resources are left to
// the caller.
func (g *Group) Unregister(h core.Handle) bool {
	r, exists := g.members[h]
	if !exists {
		g.log.Debug("unregister of non-member ignored", zap.Stringer("agent", h))
		return false
	}
	r.Status = Departed
	delete(g.members, h)
	for i, id := range g.order {
		if id == h {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
	return true
}

// Get returns a copy of the record for h.
func (g *Group) Get(h core.Handle) (Record, bool) {
	r, ok := g.members[h]
	if !ok {
		return Record{}, false
	}
	return *r, true
}

func (g *Group) Contains(h core.Handle) bool {
	_, ok := g.members[h]
	return ok
}

func (g *Group) Len() int {
	return len(g.members)
}

// All yields a snapshot of the current members. The snapshot is taken when
// iteration starts, so mutating the group inside the loop is safe and each
// range over the sequence sees the group as it is at that moment.
func (g *Group) All() iter.Seq[Record] {
	return func(yield func(Record) bool) {
		snapshot := make([]Record, 0, len(g.order))
		for _, h := range g.order {
			snapshot = append(snapshot, *g.members[h])
		}
		for _, r := range snapshot {
			if !yield(r) {
				return
			}
		}
	}
}

// Handles returns the member handles in registration order.
func (g *Group) Handles() []core.Handle {
	out := make([]core.Handle, len(g.order))
	copy(out, g.order)
	return out
}

// ConsumePress spends h's press capability. It returns false if h is not a
// member or has already pressed.
func (g *Group) ConsumePress(h core.Handle) bool {
	r, ok := g.members[h]
	if !ok || !r.CanPress {
		return false
	}
	r.CanPress = false
	return true
}

// ConsumeEat spends h's eat capability.
func (g *Group) ConsumeEat(h core.Handle) bool {
	r, ok := g.members[h]
	if !ok || !r.CanEat {
		return false
	}
	r.CanEat = false
	return true
}

// Solvable reports whether any member can still press or eat.
func (g *Group) Solvable() bool {
	for _, r := range g.members {
		if r.Capable() {
			return true
		}
	}
	return false
}

// Clear drops every member and returns their handles in registration order.
func (g *Group) Clear() []core.Handle {
	handles := g.Handles()
	for _, h := range handles {
		g.Unregister(h)
	}
	return handles
}

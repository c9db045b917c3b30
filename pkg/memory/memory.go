package memory

import (
	"sync"

	"github.com/boristopalov/batonpass/pkg/core"
)

// History keeps the most recent episode summaries, oldest first.
type History struct {
	episodes []core.EpisodeSummary
	capacity int
	mu       sync.RWMutex
}

func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{
		episodes: make([]core.EpisodeSummary, 0, capacity),
		capacity: capacity,
	}
}

// All returns a copy of the stored summaries
func (h *History) All() []core.EpisodeSummary {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]core.EpisodeSummary, len(h.episodes))
	copy(out, h.episodes)
	return out
}

// Store appends s, evicting the oldest summary once full.
func (h *History) Store(s core.EpisodeSummary) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.episodes = append(h.episodes, s)
	if len(h.episodes) > h.capacity {
		h.episodes = h.episodes[1:]
	}
}

func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.episodes)
}

// Totals aggregates the stored window.
type Totals struct {
	Episodes   int
	MeanReward float64
	MeanFood   float64
	MeanTicks  float64
	ByReason   map[core.EndReason]int
}

func (h *History) Totals() Totals {
	h.mu.RLock()
	defer h.mu.RUnlock()

	t := Totals{Episodes: len(h.episodes), ByReason: make(map[core.EndReason]int)}
	if t.Episodes == 0 {
		return t
	}
	for _, e := range h.episodes {
		t.MeanReward += e.GroupReward
		t.MeanFood += float64(e.FoodEaten)
		t.MeanTicks += float64(e.Ticks)
		t.ByReason[e.Reason]++
	}
	n := float64(t.Episodes)
	t.MeanReward /= n
	t.MeanFood /= n
	t.MeanTicks /= n
	return t
}

package environment

import (
	"iter"

	"github.com/boristopalov/batonpass/pkg/agent"
	"github.com/boristopalov/batonpass/pkg/core"
)

// Phase is the coordinator's state machine position.
type Phase int

const (
	Running Phase = iota
	// Resetting only lasts for the duration of a terminal tick or callback
	Resetting
	// Halted follows an invariant violation; only ResetScene leaves it
	Halted
)

func (p Phase) String() string {
	switch p {
	case Running:
		return "running"
	case Resetting:
		return "resetting"
	case Halted:
		return "halted"
	default:
		return "unknown"
	}
}

// EpisodeState is the per-episode bookkeeping read by termination checks.
type EpisodeState struct {
	Episode          int
	Tick             int
	CumulativeReward float64
	FoodEaten        int
	Members          int
	Phase            Phase
}

// Step describes the outcome of one Advance call.
type Step struct {
	Tick  int // tick reached before any reset
	Phase Phase
	// Ended is set when the tick terminated the episode
	Ended *core.EpisodeSummary
}

// Environment is what a fixed-step driver needs from a scenario.
type Environment interface {
	// Advance runs one simulation tick
	Advance() (Step, error)
	// ResetScene restores the initial scene and zeroes episode counters
	ResetScene() error
	// State returns a copy of the episode bookkeeping
	State() EpisodeState
	// Members yields the registered agents
	Members() iter.Seq[agent.Record]
	// MemberCount is the number of registered agents
	MemberCount() int
}

package agent

import "github.com/boristopalov/batonpass/pkg/core"

// Status is the membership state of a record.
type Status int

const (
	Active Status = iota
	Departed
)

func (s Status) String() string {
	switch s {
	case Active:
		return "active"
	case Departed:
		return "departed"
	default:
		return "unknown"
	}
}

// Record is the coordination state kept for one registered agent.
type Record struct {
	Handle   core.Handle
	CanPress bool
	CanEat   bool
	Status   Status
}

func newRecord(h core.Handle) *Record {
	return &Record{
		Handle:   h,
		CanPress: true,
		CanEat:   true,
		Status:   Active,
	}
}

// Capable reports whether the agent can still make progress on its own.
func (r Record) Capable() bool {
	return r.CanPress || r.CanEat
}

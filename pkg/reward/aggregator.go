package reward

import (
	"errors"
	"fmt"
	"math"
)

// ErrNonFinite is returned when a NaN or infinite delta reaches the aggregator.
var ErrNonFinite = errors.New("non-finite reward delta")

// Aggregator accumulates the shared group reward and the food count for the
// current episode.
type Aggregator struct {
	total float64
	food  int
	adds  int
}

func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Add applies delta to the running total. Deltas are not clamped. Non-finite
// deltas are rejected and leave the total untouched.
func (a *Aggregator) Add(delta float64) error {
	if math.IsNaN(delta) || math.IsInf(delta, 0) {
		return fmt.Errorf("add %v: %w", delta, ErrNonFinite)
	}
	a.total += delta
	a.adds++
	return nil
}

// RecordFood counts one food-consumption event.
func (a *Aggregator) RecordFood() int {
	a.food++
	return a.food
}

// Reset zeroes the reward and food count.
func (a *Aggregator) Reset() {
	a.total = 0
	a.food = 0
	a.adds = 0
}

func (a *Aggregator) Total() float64 { return a.total }
func (a *Aggregator) Food() int      { return a.food }

// Adds is the number of deltas applied since the last reset.
func (a *Aggregator) Adds() int { return a.adds }

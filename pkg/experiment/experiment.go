package experiment

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/boristopalov/batonpass/pkg/config"
	"github.com/boristopalov/batonpass/pkg/core"
	"github.com/boristopalov/batonpass/pkg/environment"
	"github.com/boristopalov/batonpass/pkg/memory"
	"github.com/boristopalov/batonpass/pkg/messaging"
)

// Env is the slice of the coordinator the runner drives.
type Env interface {
	environment.Environment
	UnregisterAgent(h core.Handle, removeFromGroup bool) bool
}

// Scene turns scripted decisions into contacts.
type Scene interface {
	TouchButton(h core.Handle) error
	TouchFood(h core.Handle) error
	Destroy(h core.Handle) error
}

type Status struct {
	Running   bool
	StartTime time.Time
	EndTime   time.Time
	Ticks     int
	Episodes  int
	Err       error
}

// Runner advances an environment for a fixed number of ticks, acting for
// every registered agent with a seeded scripted behaviour before each tick.
type Runner struct {
	env     Env
	scene   Scene
	driver  config.DriverConfig
	steps   int
	rng     *rand.Rand
	history *memory.History
	log     *zap.Logger

	mu     sync.RWMutex
	status Status
}

func NewRunner(env Env, scene Scene, bus messaging.Bus, driver config.DriverConfig, steps int, seed uint64, log *zap.Logger) (*Runner, error) {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Runner{
		env:     env,
		scene:   scene,
		driver:  driver,
		steps:   steps,
		rng:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		history: memory.NewHistory(driver.HistorySize),
		log:     log.Named("runner"),
	}
	if bus != nil {
		if err := bus.Subscribe("runner", messaging.EpisodeEnded, r.onEpisodeEnded); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Runner) onEpisodeEnded(m messaging.Message) {
	summary, ok := m.Content.(core.EpisodeSummary)
	if !ok {
		return
	}
	r.history.Store(summary)
	r.mu.Lock()
	r.status.Episodes++
	r.mu.Unlock()
}

// Run executes the configured number of ticks or until ctx is done.
func (r *Runner) Run(ctx context.Context) error {
	r.mu.Lock()
	r.status.Running = true
	r.status.StartTime = time.Now()
	r.mu.Unlock()

	err := r.runLoop(ctx)

	r.mu.Lock()
	r.status.Running = false
	r.status.EndTime = time.Now()
	r.status.Err = err
	r.mu.Unlock()
	return err
}

func (r *Runner) runLoop(ctx context.Context) error {
	for i := 0; i < r.steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := r.step(); err != nil {
			return fmt.Errorf("tick %d: %w", i+1, err)
		}
	}
	return nil
}

func (r *Runner) step() error {
	episode := r.env.State().Episode
	for rec := range r.env.Members() {
		// a contact may end the episode; the rest of the snapshot is gone
		if r.env.State().Episode != episode {
			break
		}
		if err := r.act(rec.Handle); err != nil {
			return err
		}
	}

	if _, err := r.env.Advance(); err != nil {
		return err
	}

	r.mu.Lock()
	r.status.Ticks++
	r.mu.Unlock()
	return nil
}

// act rolls one scripted decision for h: leave, press or eat.
func (r *Runner) act(h core.Handle) error {
	roll := r.rng.Float64()
	switch {
	case roll < r.driver.LeaveProb:
		if r.env.UnregisterAgent(h, true) {
			return r.scene.Destroy(h)
		}
		return nil
	case roll < r.driver.LeaveProb+r.driver.PressProb:
		return r.scene.TouchButton(h)
	case roll < r.driver.LeaveProb+r.driver.PressProb+r.driver.EatProb:
		return r.scene.TouchFood(h)
	default:
		return nil
	}
}

func (r *Runner) GetStatus() Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status
}

func (r *Runner) History() *memory.History {
	return r.history
}

// Report logs aggregate statistics over the recent episode window.
func (r *Runner) Report() memory.Totals {
	t := r.history.Totals()
	status := r.GetStatus()

	fields := []zap.Field{
		zap.Int("ticks", status.Ticks),
		zap.Int("episodes", status.Episodes),
		zap.Int("window", t.Episodes),
		zap.Float64("mean_group_reward", t.MeanReward),
		zap.Float64("mean_food_eaten", t.MeanFood),
		zap.Float64("mean_ticks", t.MeanTicks),
	}
	for reason, n := range t.ByReason {
		fields = append(fields, zap.Int("ended_by_"+string(reason), n))
	}
	r.log.Info("experiment summary", fields...)
	return t
}

package environment

import (
	"errors"
	"fmt"
	"iter"
	"math"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/boristopalov/batonpass/pkg/agent"
	"github.com/boristopalov/batonpass/pkg/core"
	"github.com/boristopalov/batonpass/pkg/messaging"
	"github.com/boristopalov/batonpass/pkg/params"
	"github.com/boristopalov/batonpass/pkg/reward"
)

// ErrInvariant marks a state the public API can never produce. It means a
// collaborator bypassed the coordinator; the episode is halted.
var ErrInvariant = errors.New("coordinator invariant violated")

// Parameter defaults used when the provider has no value.
const (
	DefaultTimePenalty  = 0.5
	DefaultPenalty      = 1.0
	DefaultButtonOnProb = 0.0
)

// Settings are the fixed scene properties of one arena.
type Settings struct {
	Name                string
	SpawnPoint          core.Vec3
	CompanionOffset     core.Vec3
	MaxEnvironmentSteps int
	MaxFood             int
	// ForceButtonOn turns the button on after every button reset roll
	ForceButtonOn bool
}

func DefaultSettings() Settings {
	return Settings{
		Name:                "area",
		CompanionOffset:     core.Vec3{X: 3},
		MaxEnvironmentSteps: 10000,
		MaxFood:             10,
		ForceButtonOn:       true,
	}
}

// Coordinator owns the agent group and episode state of one arena and
// drives its per-tick update. It is single-threaded: Advance and every
// callback must run on the same goroutine.
type Coordinator struct {
	settings Settings
	params   params.Provider
	spawner  core.Spawner
	button   core.Button
	food     core.Food
	stats    core.StatsReporter
	signal   core.GroupSignaler
	bus      messaging.Bus
	rng      *rand.Rand
	log      *zap.Logger

	group   *agent.Group
	rewards *reward.Aggregator
	episode int
	tick    int
	phase   Phase
	fault   error
	last    *core.EpisodeSummary
}

type Option func(*Coordinator)

func WithStats(r core.StatsReporter) Option {
	return func(c *Coordinator) { c.stats = r }
}

func WithSignaler(s core.GroupSignaler) Option {
	return func(c *Coordinator) { c.signal = s }
}

// WithBus publishes episode events on b. Use Attach to also consume
// button and food events from it.
func WithBus(b messaging.Bus) Option {
	return func(c *Coordinator) { c.bus = b }
}

func WithRand(r *rand.Rand) Option {
	return func(c *Coordinator) { c.rng = r }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Coordinator) { c.log = l }
}

// NewCoordinator wires a coordinator to its collaborators. The scene is not
// built until Start is called.
func NewCoordinator(settings Settings, p params.Provider, spawner core.Spawner, button core.Button, food core.Food, opts ...Option) (*Coordinator, error) {
	switch {
	case p == nil:
		return nil, errors.New("parameter provider is required")
	case spawner == nil:
		return nil, errors.New("spawner is required")
	case button == nil:
		return nil, errors.New("button is required")
	case food == nil:
		return nil, errors.New("food is required")
	}

	c := &Coordinator{
		settings: settings,
		params:   p,
		spawner:  spawner,
		button:   button,
		food:     food,
		signal:   core.NopSignaler{},
		rng:      rand.New(rand.NewPCG(1, 2)),
		log:      zap.NewNop(),
		rewards:  reward.NewAggregator(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	if c.rng == nil {
		c.rng = rand.New(rand.NewPCG(1, 2))
	}
	if c.signal == nil {
		c.signal = core.NopSignaler{}
	}
	c.log = c.log.Named("coordinator").With(zap.String("area", settings.Name))
	c.group = agent.NewGroup(c.log)
	return c, nil
}

// Attach subscribes the coordinator to button and food contacts on b.
// Failures inside the handlers halt the coordinator and surface on the next
// Advance.
func (c *Coordinator) Attach(b messaging.Bus) error {
	id := "coordinator/" + c.settings.Name
	if err := b.Subscribe(id, messaging.ButtonPressed, func(m messaging.Message) {
		if _, err := c.PressButton(m.From); err != nil {
			c.log.Warn("button contact failed", zap.Stringer("agent", m.From), zap.Error(err))
		}
	}); err != nil {
		return err
	}
	return b.Subscribe(id, messaging.FoodConsumed, func(m messaging.Message) {
		if _, err := c.EatFood(m.From); err != nil {
			c.log.Warn("food contact failed", zap.Stringer("agent", m.From), zap.Error(err))
		}
	})
}

// Start builds the initial scene.
func (c *Coordinator) Start() error {
	return c.ResetScene()
}

// RegisterAgent adds h to the group. A duplicate handle is ignored.
func (c *Coordinator) RegisterAgent(h core.Handle) bool {
	_, added := c.group.Register(h)
	return added
}

// UnregisterAgent drops h from the group and the population count.
// removeFromGroup is false when the host already detached the agent from its
// learning group; the registry entry is dropped either way so the member
// count stays exact. The caller destroys the body.
func (c *Coordinator) UnregisterAgent(h core.Handle, removeFromGroup bool) bool {
	removed := c.group.Unregister(h)
	if removed {
		c.log.Debug("agent unregistered",
			zap.Stringer("agent", h),
			zap.Bool("remove_from_group", removeFromGroup),
			zap.Int("members", c.group.Len()))
	}
	return removed
}

func (c *Coordinator) MemberCount() int {
	return c.group.Len()
}

func (c *Coordinator) Members() iter.Seq[agent.Record] {
	return c.group.All()
}

func (c *Coordinator) State() EpisodeState {
	return EpisodeState{
		Episode:          c.episode,
		Tick:             c.tick,
		CumulativeReward: c.rewards.Total(),
		FoodEaten:        c.rewards.Food(),
		Members:          c.group.Len(),
		Phase:            c.phase,
	}
}

// LastEpisode returns the summary of the most recently finished episode.
func (c *Coordinator) LastEpisode() (core.EpisodeSummary, bool) {
	if c.last == nil {
		return core.EpisodeSummary{}, false
	}
	return *c.last, true
}

// AddReward applies delta to the group reward.
func (c *Coordinator) AddReward(delta float64) error {
	if c.phase == Halted {
		return c.haltedErr()
	}
	if err := c.rewards.Add(delta); err != nil {
		return c.invariant(err)
	}
	c.signal.AddGroupReward(delta)
	return nil
}

// Advance runs one tick: timeout, population collapse, shaping penalties,
// then solvability. A terminal condition resets the scene before returning.
func (c *Coordinator) Advance() (Step, error) {
	if c.phase == Halted {
		return Step{Tick: c.tick, Phase: Halted}, c.haltedErr()
	}

	areaSteps := c.params.Int(params.AreaSteps, c.settings.MaxEnvironmentSteps)
	maxFood := c.maxFood()
	timeRate := c.params.Float(params.TimePenalty, DefaultTimePenalty)
	agentRate := c.params.Float(params.Penalty, DefaultPenalty)

	c.tick++
	step := Step{Tick: c.tick, Phase: Running}

	if areaSteps > 0 && c.tick >= areaSteps {
		return c.terminal(step, core.EndTimeout, maxFood)
	}

	members := c.group.Len()
	if members < 0 {
		return step, c.invariant(fmt.Errorf("member count %d", members))
	}
	if members == 0 {
		return c.terminal(step, core.EndCollapse, maxFood)
	}

	var timePenalty, populationPenalty float64
	if areaSteps != 0 {
		timePenalty = -timeRate / float64(areaSteps)
		populationPenalty = -agentRate * float64(members) / float64(areaSteps)
	}
	if err := c.AddReward(timePenalty); err != nil {
		return step, err
	}
	if err := c.AddReward(populationPenalty); err != nil {
		return step, err
	}

	if !c.group.Solvable() {
		return c.terminal(step, core.EndUnsolvable, maxFood)
	}
	return step, nil
}

// PressButton handles a contact between h and the button. The press only
// counts if the button is off and h still holds its press capability;
// it then spawns a companion and serves food.
func (c *Coordinator) PressButton(h core.Handle) (bool, error) {
	if c.phase == Halted || c.button.Pressed() {
		return false, nil
	}
	if !c.group.ConsumePress(h) {
		c.log.Debug("press ignored", zap.Stringer("agent", h))
		return false, nil
	}
	if err := c.activateButton(); err != nil {
		return true, err
	}
	return true, nil
}

// EatFood handles a contact between h and active food.
func (c *Coordinator) EatFood(h core.Handle) (bool, error) {
	if c.phase == Halted || !c.food.Active() {
		return false, nil
	}
	if !c.group.ConsumeEat(h) {
		c.log.Debug("eat ignored", zap.Stringer("agent", h))
		return false, nil
	}
	c.food.SetActive(false)
	return true, c.FoodEaten()
}

// FoodEaten pays the food reward and ends the episode once the quota is met.
func (c *Coordinator) FoodEaten() error {
	if c.phase == Halted {
		return c.haltedErr()
	}
	if err := c.resetButton(); err != nil {
		return err
	}
	if err := c.AddReward(1); err != nil {
		return err
	}
	eaten := c.rewards.RecordFood()

	maxFood := c.maxFood()
	if float64(eaten) >= maxFood {
		_, err := c.terminal(Step{Tick: c.tick}, core.EndQuota, maxFood)
		return err
	}
	return nil
}

// ResetScene destroys every registered agent, seeds a single fresh one,
// resets the button and food, and zeroes the episode counters. It also
// clears a halted coordinator.
func (c *Coordinator) ResetScene() error {
	c.phase = Resetting

	for _, h := range c.group.Clear() {
		if err := c.spawner.Destroy(h); err != nil {
			c.log.Warn("failed to destroy agent", zap.Stringer("agent", h), zap.Error(err))
		}
	}

	if _, err := c.spawnAgent(c.settings.SpawnPoint); err != nil {
		return c.halt(fmt.Errorf("spawn initial agent: %w", err))
	}

	if err := c.resetButton(); err != nil {
		return err
	}
	if c.settings.ForceButtonOn {
		c.button.SetActivated()
	}
	c.food.SetActive(true)

	c.tick = 0
	c.rewards.Reset()
	c.episode++
	c.fault = nil
	c.phase = Running
	return nil
}

func (c *Coordinator) maxFood() float64 {
	return c.params.Float(params.MaxFood, float64(c.settings.MaxFood))
}

// resetButton turns the button off, then rolls button_on_prob to turn it
// straight back on with the full activation cascade.
func (c *Coordinator) resetButton() error {
	c.button.Reset()
	prob := c.params.Float(params.ButtonOnProb, DefaultButtonOnProb)
	if c.rng.Float64() < prob {
		return c.activateButton()
	}
	return nil
}

func (c *Coordinator) activateButton() error {
	c.button.SetActivated()
	pos := c.button.Position().Add(c.settings.CompanionOffset)
	if _, err := c.spawnAgent(pos); err != nil {
		return c.halt(fmt.Errorf("spawn companion: %w", err))
	}
	c.food.SetActive(true)
	return nil
}

func (c *Coordinator) spawnAgent(pos core.Vec3) (core.Handle, error) {
	h, err := c.spawner.Spawn(pos, c.settings.Name)
	if err != nil {
		return "", err
	}
	c.group.Register(h)
	c.publish(messaging.Message{Topic: messaging.AgentSpawned, From: h, Content: pos})
	return h, nil
}

// terminal reports the finished episode, signals the group and resets.
func (c *Coordinator) terminal(step Step, reason core.EndReason, maxFood float64) (Step, error) {
	summary := core.EpisodeSummary{
		Episode:     c.episode,
		Reason:      reason,
		Ticks:       c.tick,
		GroupReward: c.rewards.Total(),
		FoodEaten:   c.rewards.Food(),
		Quota:       maxFood,
		Members:     c.group.Len(),
	}
	if math.IsNaN(summary.GroupReward) || math.IsInf(summary.GroupReward, 0) {
		return step, c.invariant(fmt.Errorf("group reward %v", summary.GroupReward))
	}

	if reason.Interrupted() {
		c.signal.GroupEpisodeInterrupted()
	} else {
		c.signal.EndGroupEpisode()
	}
	if c.stats != nil {
		c.stats.Record(core.StatGroupReward, summary.GroupReward)
		c.stats.Record(core.StatFoodEaten, summary.FoodRatio())
	}
	c.last = &summary
	c.log.Info("episode ended",
		zap.Int("episode", summary.Episode),
		zap.String("reason", string(reason)),
		zap.Int("ticks", summary.Ticks),
		zap.Float64("group_reward", summary.GroupReward),
		zap.Int("food_eaten", summary.FoodEaten))
	c.publish(messaging.Message{Topic: messaging.EpisodeEnded, Content: summary})

	step.Ended = &summary
	if err := c.ResetScene(); err != nil {
		step.Phase = c.phase
		return step, err
	}
	step.Phase = Resetting
	return step, nil
}

func (c *Coordinator) publish(m messaging.Message) {
	if c.bus == nil {
		return
	}
	if err := c.bus.Publish(m); err != nil {
		c.log.Warn("failed to publish event", zap.String("topic", string(m.Topic)), zap.Error(err))
	}
}

func (c *Coordinator) invariant(cause error) error {
	return c.halt(fmt.Errorf("%w: %w", ErrInvariant, cause))
}

// halt stops the episode until the next ResetScene.
func (c *Coordinator) halt(err error) error {
	if c.phase == Halted {
		return c.fault
	}
	c.log.Error("halting episode", zap.Int("episode", c.episode), zap.Int("tick", c.tick), zap.Error(err))
	c.phase = Halted
	c.fault = err
	return err
}

func (c *Coordinator) haltedErr() error {
	return fmt.Errorf("area %s is halted: %w", c.settings.Name, c.fault)
}

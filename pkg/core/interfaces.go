package core

// Spawner creates and destroys agent bodies in the host scene.
type Spawner interface {
	// Spawn places a new agent body at pos under parent and returns its handle
	Spawn(pos Vec3, parent string) (Handle, error)
	// Destroy removes the body behind h
	Destroy(h Handle) error
}

// StatsReporter receives fire-and-forget scalar metrics.
type StatsReporter interface {
	Record(name string, value float64)
}

// Button is the shared switch agents press to bring in a teammate.
// The host object owns its pressed flag; callers only drive transitions.
type Button interface {
	// Reset turns the button off
	Reset()
	// SetActivated turns the button on
	SetActivated()
	// Pressed reports whether the button is on
	Pressed() bool
	// Position is where companions spawn relative to
	Position() Vec3
}

// Food is the consumable object that pays the group reward.
type Food interface {
	SetActive(active bool)
	Active() bool
}

// GroupSignaler is the learning host's view of the cooperating group.
type GroupSignaler interface {
	AddGroupReward(delta float64)
	// EndGroupEpisode ends the episode normally
	EndGroupEpisode()
	// GroupEpisodeInterrupted ends the episode softly so agents retry
	GroupEpisodeInterrupted()
}

// NopSignaler drops every group signal.
type NopSignaler struct{}

func (NopSignaler) AddGroupReward(float64)   {}
func (NopSignaler) EndGroupEpisode()         {}
func (NopSignaler) GroupEpisodeInterrupted() {}

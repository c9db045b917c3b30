package core

import "fmt"

// Handle is the stable identity of an agent body owned by the host scene.
// It is issued by a Spawner and resolved once, at registration time.
type Handle string

func (h Handle) String() string {
	return string(h)
}

// Vec3 is a position in scene space.
type Vec3 struct {
	X float64 `yaml:"x" mapstructure:"x"`
	Y float64 `yaml:"y" mapstructure:"y"`
	Z float64 `yaml:"z" mapstructure:"z"`
}

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

func (v Vec3) String() string {
	return fmt.Sprintf("(%.2f, %.2f, %.2f)", v.X, v.Y, v.Z)
}

// Stat keys reported at every episode termination.
const (
	StatGroupReward = "Environment/Actual Group Reward"
	StatFoodEaten   = "FoodEaten"
)

// EndReason says why an episode terminated.
type EndReason string

const (
	EndTimeout    EndReason = "timeout"
	EndCollapse   EndReason = "collapse"
	EndUnsolvable EndReason = "unsolvable"
	EndQuota      EndReason = "quota"
)

// Interrupted reports whether the reason is a soft termination: agents are
// told the episode stopped, not that it failed.
func (r EndReason) Interrupted() bool {
	return r == EndTimeout || r == EndQuota
}

// EpisodeSummary is what gets reported when an episode ends.
type EpisodeSummary struct {
	Episode     int       `json:"episode" yaml:"episode"`
	Reason      EndReason `json:"reason" yaml:"reason"`
	Ticks       int       `json:"ticks" yaml:"ticks"`
	GroupReward float64   `json:"group_reward" yaml:"group_reward"`
	FoodEaten   int       `json:"food_eaten" yaml:"food_eaten"`
	Quota       float64   `json:"quota" yaml:"quota"`
	Members     int       `json:"members" yaml:"members"`
}

// FoodRatio is the food count normalized by the quota. A non-positive quota
// reports the raw count.
func (s EpisodeSummary) FoodRatio() float64 {
	if s.Quota <= 0 {
		return float64(s.FoodEaten)
	}
	return float64(s.FoodEaten) / s.Quota
}

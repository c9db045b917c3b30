// Package params provides the tunable environment parameters the
// coordinator reads every tick. Lookups never fail: a missing or malformed
// value resolves to the caller's default.
package params

import (
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Parameter names read by the coordinator.
const (
	AreaSteps    = "area_steps"
	MaxFood      = "max_food"
	TimePenalty  = "time_penalty"
	Penalty      = "penalty"
	ButtonOnProb = "button_on_prob"
)

// Provider looks up tunable scalars by name. Implementations must be cheap
// and side-effect free.
type Provider interface {
	Float(name string, def float64) float64
	Int(name string, def int) int
}

// Static is a map-backed provider. Values can be changed between ticks to
// drive curriculum-style difficulty changes.
type Static map[string]float64

func (s Static) Float(name string, def float64) float64 {
	if v, ok := s[name]; ok {
		return v
	}
	return def
}

func (s Static) Int(name string, def int) int {
	if v, ok := s[name]; ok {
		return int(v)
	}
	return def
}

func (s Static) Set(name string, value float64) {
	s[name] = value
}

// Viper reads parameters from a subtree of a viper instance.
type Viper struct {
	v      *viper.Viper
	prefix string
}

// NewViper exposes keys under prefix (e.g. "parameters") as a Provider.
func NewViper(v *viper.Viper, prefix string) *Viper {
	return &Viper{v: v, prefix: strings.TrimSuffix(prefix, ".")}
}

func (p *Viper) key(name string) string {
	if p.prefix == "" {
		return name
	}
	return p.prefix + "." + name
}

func (p *Viper) Float(name string, def float64) float64 {
	k := p.key(name)
	if !p.v.IsSet(k) {
		return def
	}
	f, err := cast.ToFloat64E(p.v.Get(k))
	if err != nil {
		return def
	}
	return f
}

func (p *Viper) Int(name string, def int) int {
	k := p.key(name)
	if !p.v.IsSet(k) {
		return def
	}
	i, err := cast.ToIntE(p.v.Get(k))
	if err != nil {
		return def
	}
	return i
}

// Set overrides a parameter at runtime.
func (p *Viper) Set(name string, value float64) {
	p.v.Set(p.key(name), value)
}

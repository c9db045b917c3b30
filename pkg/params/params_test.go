package params

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestStatic(t *testing.T) {
	p := Static{AreaSteps: 100}

	assert.Equal(t, 100, p.Int(AreaSteps, 10000))
	assert.Equal(t, 100.0, p.Float(AreaSteps, 10000))
	assert.Equal(t, 0.5, p.Float(TimePenalty, 0.5))

	p.Set(MaxFood, 3)
	assert.Equal(t, 3, p.Int(MaxFood, 10))
}

func TestViper(t *testing.T) {
	v := viper.New()
	v.Set("parameters.area_steps", 250)
	v.Set("parameters.penalty", "2.5")
	v.Set("parameters.max_food", "lots")

	p := NewViper(v, "parameters")

	t.Run("reads set values", func(t *testing.T) {
		assert.Equal(t, 250, p.Int(AreaSteps, 10000))
		assert.Equal(t, 2.5, p.Float(Penalty, 1))
	})

	t.Run("missing values use defaults", func(t *testing.T) {
		assert.Equal(t, 0.5, p.Float(TimePenalty, 0.5))
		assert.Equal(t, 0.0, p.Float(ButtonOnProb, 0))
	})

	t.Run("malformed values use defaults", func(t *testing.T) {
		assert.Equal(t, 7, p.Int(MaxFood, 7))
	})

	t.Run("runtime overrides are visible", func(t *testing.T) {
		p.Set(TimePenalty, 0.25)
		assert.Equal(t, 0.25, p.Float(TimePenalty, 0.5))
	})
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/boristopalov/batonpass/pkg/core"
	"github.com/boristopalov/batonpass/pkg/params"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "batonpass.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "batonpass", cfg.Name)
	assert.Equal(t, 10000, cfg.Scene.MaxEnvironmentSteps)
	assert.Equal(t, 10, cfg.Scene.MaxFood)
	assert.True(t, cfg.Scene.ForceButtonOn)
	assert.Equal(t, core.Vec3{X: 3}, cfg.Scene.CompanionOffset)
	assert.Equal(t, "info", cfg.Logging.Level)

	p := cfg.Params()
	assert.Equal(t, 10000, p.Int(params.AreaSteps, 10000))
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, `
name: curriculum
steps: 500
seed: 42
scene:
  max_food: 3
  spawn_point: {x: 1, y: 2, z: 3}
parameters:
  area_steps: 250
  time_penalty: 0.25
driver:
  press_prob: 0.5
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "curriculum", cfg.Name)
	assert.Equal(t, 500, cfg.Steps)
	assert.Equal(t, uint64(42), cfg.Seed)
	assert.Equal(t, 3, cfg.Scene.MaxFood)
	assert.Equal(t, core.Vec3{X: 1, Y: 2, Z: 3}, cfg.Scene.SpawnPoint)
	assert.Equal(t, 0.5, cfg.Driver.PressProb)

	p := cfg.Params()
	assert.Equal(t, 250, p.Int(params.AreaSteps, 10000))
	assert.Equal(t, 0.25, p.Float(params.TimePenalty, 0.5))
	assert.Equal(t, 1.0, p.Float(params.Penalty, 1), "unset parameters fall back")
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("BATONPASS_STEPS", "77")
	t.Setenv("BATONPASS_PARAMETERS_MAX_FOOD", "4")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 77, cfg.Steps)
	assert.Equal(t, 4, cfg.Params().Int(params.MaxFood, 10))
}

func TestLoadConfigErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("invalid probability", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, "driver:\n  eat_prob: 2\n"))
		assert.ErrorContains(t, err, "driver.eat_prob")
	})

	t.Run("negative steps", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, "steps: -1\n"))
		assert.ErrorContains(t, err, "steps")
	})
}

func TestStaticParams(t *testing.T) {
	cfg := &ExperimentConfig{}
	p := cfg.Params()
	assert.Equal(t, 5, p.Int(params.MaxFood, 5))

	cfg.Parameters[params.MaxFood] = 2
	assert.Equal(t, 2, p.Int(params.MaxFood, 5))
}

func TestDump(t *testing.T) {
	cfg := Default()
	cfg.SetSteps(12)
	cfg.SetSeed(9)

	out, err := Dump(cfg)
	require.NoError(t, err)

	var back ExperimentConfig
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.Equal(t, 12, back.Steps)
	assert.Equal(t, uint64(9), back.Seed)
	assert.Equal(t, cfg.Scene, back.Scene)
}

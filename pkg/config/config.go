package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/boristopalov/batonpass/pkg/core"
	"github.com/boristopalov/batonpass/pkg/params"
)

// EnvPrefix namespaces environment overrides, e.g. BATONPASS_STEPS or
// BATONPASS_PARAMETERS_AREA_STEPS.
const EnvPrefix = "BATONPASS"

type ExperimentConfig struct {
	Name       string             `yaml:"name" mapstructure:"name"`
	Steps      int                `yaml:"steps" mapstructure:"steps"`
	Seed       uint64             `yaml:"seed" mapstructure:"seed"`
	Scene      SceneConfig        `yaml:"scene" mapstructure:"scene"`
	Parameters map[string]float64 `yaml:"parameters" mapstructure:"parameters"`
	Driver     DriverConfig       `yaml:"driver" mapstructure:"driver"`
	Stats      StatsConfig        `yaml:"stats" mapstructure:"stats"`
	Logging    LogConfig          `yaml:"logging" mapstructure:"logging"`

	v *viper.Viper
}

type SceneConfig struct {
	SpawnPoint          core.Vec3 `yaml:"spawn_point" mapstructure:"spawn_point"`
	ButtonPosition      core.Vec3 `yaml:"button_position" mapstructure:"button_position"`
	CompanionOffset     core.Vec3 `yaml:"companion_offset" mapstructure:"companion_offset"`
	MaxEnvironmentSteps int       `yaml:"max_environment_steps" mapstructure:"max_environment_steps"`
	MaxFood             int       `yaml:"max_food" mapstructure:"max_food"`
	ForceButtonOn       bool      `yaml:"force_button_on" mapstructure:"force_button_on"`
}

// DriverConfig tunes the scripted behaviour that exercises the scene.
type DriverConfig struct {
	PressProb   float64 `yaml:"press_prob" mapstructure:"press_prob"`
	EatProb     float64 `yaml:"eat_prob" mapstructure:"eat_prob"`
	LeaveProb   float64 `yaml:"leave_prob" mapstructure:"leave_prob"`
	HistorySize int     `yaml:"history_size" mapstructure:"history_size"`
}

type StatsConfig struct {
	CSVPath    string `yaml:"csv_path" mapstructure:"csv_path"`
	SQLitePath string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
	Log        bool   `yaml:"log" mapstructure:"log"`
}

type LogConfig struct {
	Level      string `yaml:"level" mapstructure:"level"`
	Format     string `yaml:"format" mapstructure:"format"`
	File       string `yaml:"file" mapstructure:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days" mapstructure:"max_age_days"`
	Compress   bool   `yaml:"compress" mapstructure:"compress"`
}

// SetDefaults installs the default value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("name", "batonpass")
	v.SetDefault("steps", 50000)
	v.SetDefault("seed", 1)

	v.SetDefault("scene.spawn_point", map[string]any{"x": -4, "y": 0.5, "z": 0})
	v.SetDefault("scene.button_position", map[string]any{"x": 4, "y": 0.5, "z": 0})
	v.SetDefault("scene.companion_offset", map[string]any{"x": 3, "y": 0, "z": 0})
	v.SetDefault("scene.max_environment_steps", 10000)
	v.SetDefault("scene.max_food", 10)
	v.SetDefault("scene.force_button_on", true)

	v.SetDefault("driver.press_prob", 0.05)
	v.SetDefault("driver.eat_prob", 0.05)
	v.SetDefault("driver.leave_prob", 0.001)
	v.SetDefault("driver.history_size", 100)

	v.SetDefault("stats.log", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.max_size_mb", 100)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("logging.max_age_days", 30)
	v.SetDefault("logging.compress", true)
}

// LoadConfig reads path (YAML) on top of the defaults and applies
// environment overrides. An empty path loads defaults and environment only.
func LoadConfig(path string) (*ExperimentConfig, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg := &ExperimentConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.v = v
	if cfg.Parameters == nil {
		cfg.Parameters = make(map[string]float64)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration LoadConfig produces with no file.
func Default() *ExperimentConfig {
	cfg, err := LoadConfig("")
	if err != nil {
		panic(err)
	}
	return cfg
}

func (c *ExperimentConfig) Validate() error {
	var errs []error
	if c.Steps < 0 {
		errs = append(errs, fmt.Errorf("steps must be non-negative, got %d", c.Steps))
	}
	for name, p := range map[string]float64{
		"driver.press_prob": c.Driver.PressProb,
		"driver.eat_prob":   c.Driver.EatProb,
		"driver.leave_prob": c.Driver.LeaveProb,
	} {
		if p < 0 || p > 1 {
			errs = append(errs, fmt.Errorf("%s must be within [0, 1], got %v", name, p))
		}
	}
	if c.Scene.MaxEnvironmentSteps < 0 {
		errs = append(errs, fmt.Errorf("scene.max_environment_steps must be non-negative, got %d", c.Scene.MaxEnvironmentSteps))
	}
	return errors.Join(errs...)
}

// Params exposes the parameters section as a live provider. Configs built
// by LoadConfig read through viper so runtime overrides and environment
// variables apply; hand-built configs read the Parameters map.
func (c *ExperimentConfig) Params() params.Provider {
	if c.v != nil {
		return params.NewViper(c.v, "parameters")
	}
	if c.Parameters == nil {
		c.Parameters = make(map[string]float64)
	}
	return params.Static(c.Parameters)
}

// SetSteps overrides the step count, typically from a CLI flag.
func (c *ExperimentConfig) SetSteps(n int) { c.Steps = n }

// SetSeed overrides the random seed.
func (c *ExperimentConfig) SetSeed(seed uint64) { c.Seed = seed }

// Dump renders the effective configuration as YAML.
func Dump(c *ExperimentConfig) ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return out, nil
}

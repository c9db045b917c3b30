package experiment

import (
	"fmt"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/boristopalov/batonpass/pkg/config"
	"github.com/boristopalov/batonpass/pkg/core"
	"github.com/boristopalov/batonpass/pkg/environment"
	"github.com/boristopalov/batonpass/pkg/messaging"
	"github.com/boristopalov/batonpass/pkg/scene"
)

// Setup is a fully wired arena ready to run.
type Setup struct {
	Bus         *messaging.SimpleBroker
	Arena       *scene.Arena
	Coordinator *environment.Coordinator
	Runner      *Runner
}

// Build wires bus, arena, coordinator and runner from cfg and starts the
// first episode.
func Build(cfg *config.ExperimentConfig, stats core.StatsReporter, log *zap.Logger) (*Setup, error) {
	if log == nil {
		log = zap.NewNop()
	}
	bus := messaging.NewBroker()
	arena := scene.NewArena(cfg.Name, cfg.Scene.ButtonPosition, bus, log.Named("scene"))

	settings := environment.Settings{
		Name:                cfg.Name,
		SpawnPoint:          cfg.Scene.SpawnPoint,
		CompanionOffset:     cfg.Scene.CompanionOffset,
		MaxEnvironmentSteps: cfg.Scene.MaxEnvironmentSteps,
		MaxFood:             cfg.Scene.MaxFood,
		ForceButtonOn:       cfg.Scene.ForceButtonOn,
	}
	coord, err := environment.NewCoordinator(settings, cfg.Params(), arena, arena.Button, arena.Food,
		environment.WithStats(stats),
		environment.WithBus(bus),
		environment.WithRand(rand.New(rand.NewPCG(cfg.Seed, cfg.Seed+1))),
		environment.WithLogger(log),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create coordinator: %w", err)
	}
	if err := coord.Attach(bus); err != nil {
		return nil, fmt.Errorf("failed to attach coordinator: %w", err)
	}

	runner, err := NewRunner(coord, arena, bus, cfg.Driver, cfg.Steps, cfg.Seed, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create runner: %w", err)
	}
	if err := coord.Start(); err != nil {
		return nil, fmt.Errorf("failed to start scene: %w", err)
	}

	return &Setup{Bus: bus, Arena: arena, Coordinator: coord, Runner: runner}, nil
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/boristopalov/batonpass/pkg/config"
	"github.com/boristopalov/batonpass/pkg/experiment"
	"github.com/boristopalov/batonpass/pkg/logging"
	"github.com/boristopalov/batonpass/pkg/stats"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "batonpass",
		Short:        "BatonPass runs the cooperative button-and-food scenario: agents press a button to bring in teammates and eat food for a shared group reward.",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("config", "", "path to a YAML config file")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the scenario for a fixed number of ticks",
		RunE:  runExperiment,
	}
	runCmd.Flags().Int("steps", 0, "number of ticks to run (overrides config)")
	runCmd.Flags().Uint64("seed", 0, "random seed (overrides config)")
	runCmd.Flags().String("stats-csv", "", "write termination stats to this CSV file")
	runCmd.Flags().String("stats-db", "", "write termination stats to this sqlite database (requires -tags sqlite)")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		RunE:  printConfig,
	}

	rootCmd.AddCommand(runCmd, configCmd)
	return rootCmd
}

func loadConfig(cmd *cobra.Command) (*config.ExperimentConfig, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.LoadConfig(path)
}

func runExperiment(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("steps") {
		steps, _ := cmd.Flags().GetInt("steps")
		cfg.SetSteps(steps)
	}
	if cmd.Flags().Changed("seed") {
		seed, _ := cmd.Flags().GetUint64("seed")
		cfg.SetSeed(seed)
	}
	if p, _ := cmd.Flags().GetString("stats-csv"); p != "" {
		cfg.Stats.CSVPath = p
	}
	if p, _ := cmd.Flags().GetString("stats-db"); p != "" {
		cfg.Stats.SQLitePath = p
	}

	log := logging.New(cfg.Logging, cfg.Name)
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	reporter, mem, err := stats.Open(ctx, stats.Options{
		CSVPath:    cfg.Stats.CSVPath,
		SQLitePath: cfg.Stats.SQLitePath,
		Log:        cfg.Stats.Log,
	}, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := stats.Close(reporter); err != nil {
			log.Warn("failed to close stats sinks", zap.Error(err))
		}
	}()

	setup, err := experiment.Build(cfg, reporter, log)
	if err != nil {
		return err
	}

	log.Info("starting experiment",
		zap.Int("steps", cfg.Steps),
		zap.Uint64("seed", cfg.Seed),
		zap.Int("max_food", cfg.Scene.MaxFood))

	runErr := setup.Runner.Run(ctx)
	setup.Runner.Report()
	for _, key := range mem.Keys() {
		s, _ := mem.Get(key)
		fmt.Fprintf(cmd.OutOrStdout(), "%-35s n=%-6d mean=%.4f min=%.4f max=%.4f\n", key, s.Count, s.Mean(), s.Min, s.Max)
	}
	if runErr != nil && ctx.Err() == nil {
		return fmt.Errorf("experiment failed: %w", runErr)
	}
	return nil
}

func printConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	out, err := config.Dump(cfg)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dewantaratirta/agentkit/agent"
	"github.com/dewantaratirta/agentkit/chat"
	"github.com/dewantaratirta/agentkit/config"
	"github.com/dewantaratirta/agentkit/engine"
	"github.com/dewantaratirta/agentkit/history"
	"github.com/dewantaratirta/agentkit/logging"
)

// app is the wired object graph shared by the subcommands.
type app struct {
	cfg     *config.Config
	logger  *logging.SlogAdapter
	service *chat.Service
}

// loadConfig resolves the config file. Running without one falls back to
// defaults so `agentkit serve` works with only environment variables.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	if err := config.LoadDotEnv(envFile); err != nil {
		return nil, err
	}

	explicit, _ := cmd.Flags().GetString("config")

	path, err := config.FindConfig(explicit)
	if err != nil {
		if explicit != "" {
			return nil, err
		}

		cfg := config.Default()
		cfg.ApplyEnv()

		return cfg, nil
	}

	return config.Load(path)
}

func newApp(cfg *config.Config) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	logger := logging.NewLogger(&logging.LoggerConfig{
		Level:  level,
		Format: strings.ToLower(cfg.Log.Format),
		Output: os.Stderr,
	})

	factory := agent.NewConfigFactory(cfg.Model, cfg.Agent, func(o *agent.FactoryOptions) {
		o.Logger = logger.With("component", "agent")
	})

	eng := engine.New(func(o *engine.Options) {
		o.Logger = logger.With("component", "engine")
		o.MaxParallelTools = cfg.Agent.MaxParallelTools
	})

	service := chat.NewService(history.NewInMemoryStore(), factory, eng, func(o *chat.Options) {
		o.Logger = logger.With("component", "chat")
		o.MaxSteps = cfg.Agent.MaxSteps
	})

	return &app{cfg: cfg, logger: logger, service: service}, nil
}

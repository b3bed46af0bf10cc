package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lorenzotomasdiez/debate-arena/internal/config"
	"github.com/lorenzotomasdiez/debate-arena/internal/debate"
	"github.com/lorenzotomasdiez/debate-arena/internal/gemini"
	"github.com/lorenzotomasdiez/debate-arena/internal/logging"
	"github.com/lorenzotomasdiez/debate-arena/internal/persona"
)

func main() {
	root := &cobra.Command{
		Use:           "arena",
		Short:         "AI debate arena: takenoko vs kinoko",
		Long:          "Streams a Gemini-powered shouting match between the takenoko and kinoko factions, and keeps a running vote tally.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("config", "", "Config file (default: ./arena.yaml if present)")
	root.PersistentFlags().String("env-file", ".env", "Dotenv file loaded before the environment is read")

	root.AddCommand(newServeCmd())
	root.AddCommand(newDebateCmd())
	root.AddCommand(newPingCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app holds the components shared by every subcommand.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	personas *persona.Store
	client   *gemini.Client
}

func loadApp(ctx context.Context, cmd *cobra.Command) (*app, error) {
	envFile, _ := cmd.Root().PersistentFlags().GetString("env-file")
	cfgFile, _ := cmd.Root().PersistentFlags().GetString("config")

	if err := config.LoadDotEnv(envFile); err != nil {
		return nil, err
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	return newApp(ctx, cfg)
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Development)
	if err != nil {
		return nil, err
	}

	personas := persona.Default()
	if cfg.Personas.File != "" {
		personas, err = persona.LoadFile(cfg.Personas.File)
		if err != nil {
			return nil, err
		}
	}

	var opts []gemini.Option
	if cfg.Gemini.BaseURL != "" {
		opts = append(opts, gemini.WithBaseURL(cfg.Gemini.BaseURL))
	}
	client, err := gemini.NewClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, opts...)
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, logger: logger, personas: personas, client: client}, nil
}

func (a *app) engine() *debate.Engine {
	return debate.NewEngine(a.client, a.personas, debate.Options{
		Topic:       a.cfg.Debate.Topic,
		TurnLimit:   a.cfg.Debate.TurnLimit,
		TurnDelay:   a.cfg.Debate.TurnDelay,
		TurnTimeout: a.cfg.Debate.TurnTimeout,
		Logger:      a.logger,
	})
}

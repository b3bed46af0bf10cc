package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/lorenzotomasdiez/debate-arena/internal/debate"
	"github.com/lorenzotomasdiez/debate-arena/internal/output"
)

func newDebateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "debate",
		Short: "Run one debate in the terminal",
		RunE:  runDebate,
	}
	cmd.Flags().String("takenoko", "", "Takenoko persona id (default: first listed)")
	cmd.Flags().String("kinoko", "", "Kinoko persona id (default: first listed)")
	cmd.Flags().Int("turns", 0, "Number of turns (overrides debate.turn_limit)")
	return cmd
}

func runDebate(cmd *cobra.Command, args []string) error {
	takenokoID, _ := cmd.Flags().GetString("takenoko")
	kinokoID, _ := cmd.Flags().GetString("kinoko")
	turns, _ := cmd.Flags().GetInt("turns")

	// Setup context with Ctrl+C cancellation
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a, err := loadApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	if cmd.Flags().Changed("turns") {
		a.cfg.Debate.TurnLimit = turns
		if errs := a.cfg.Validate(); len(errs) > 0 {
			return fmt.Errorf("config: %w", errors.Join(errs...))
		}
	}

	printer := output.NewPrinter(os.Stdout)
	run := a.engine().Start(takenokoID, kinokoID)

	var failure error
	for ev := range run.Events(ctx) {
		printer.Event(ev)
		if ev.Kind == debate.EventError {
			failure = ev.Err
		}
	}
	return failure
}

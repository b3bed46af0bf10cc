package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lorenzotomasdiez/debate-arena/internal/config"
	"github.com/lorenzotomasdiez/debate-arena/internal/server"
	"github.com/lorenzotomasdiez/debate-arena/internal/vote"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the arena web UI and API",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := loadApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	store, closeStore, err := openVoteStore(a.cfg.Votes)
	if err != nil {
		return err
	}
	defer closeStore()

	srv := server.New(server.Options{
		Engine:    a.engine(),
		Personas:  a.personas,
		Ledger:    vote.NewLedger(store, a.logger.Named("votes")),
		Model:     a.client,
		StaticDir: a.cfg.Server.StaticDir,
		Logger:    a.logger.Named("http"),
	})

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// Open debate streams observe the signal through their request context.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("server running",
			zap.String("url", fmt.Sprintf("http://localhost:%d", a.cfg.Server.Port)),
			zap.String("model", a.client.Model()),
			zap.String("votes", a.cfg.Votes.Backend),
		)
		if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func openVoteStore(cfg config.VotesConfig) (vote.Store, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Backend {
	case "sqlite":
		s, err := vote.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case "memory":
		return vote.NewMemoryStore(), noop, nil
	default:
		return vote.NewFileStore(cfg.Path), noop, nil
	}
}

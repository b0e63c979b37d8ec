package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	httphandler "github.com/ericfisherdev/unreadwatch/internal/adapter/driving/http"
	"github.com/ericfisherdev/unreadwatch/internal/application"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the poll scheduler and HTTP API until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			cmd.SetContext(ctx)

			return withApp(cmd, serve)
		},
	}
}

func serve(ctx context.Context, a *app) error {
	// 1. Start the poll scheduler.
	sched, err := application.NewScheduler(a.agent, a.schedule, a.log)
	if err != nil {
		return err
	}
	if err := sched.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := sched.Stop(); err != nil {
			a.log.Error("scheduler shutdown error", "error", err)
		}
	}()

	// 2. HTTP API.
	h := httphandler.NewHandler(a.agent, a.inbox, a.log)
	srv := &http.Server{
		Addr:              a.cfg.ListenAddr,
		Handler:           httphandler.NewServeMux(h, a.log, a.metrics, a.metrics.Handler()),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		a.log.Info("http server starting", "addr", a.cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	a.log.Info("unreadwatch started",
		"listen_addr", a.cfg.ListenAddr,
		"schedule", a.schedule.String(),
		"store", a.cfg.StoreDriver,
		"service", a.cfg.ServiceName,
	)

	// 3. Wait for shutdown signal or a listener failure.
	select {
	case <-ctx.Done():
		a.log.Info("shutting down")
	case err := <-serveErr:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("http server shutdown error", "error", err)
	}

	a.log.Info("shutdown complete")
	return nil
}

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/ericfisherdev/unreadwatch/internal/adapter/driven/filestore"
	"github.com/ericfisherdev/unreadwatch/internal/adapter/driven/secret"
	sqliteadapter "github.com/ericfisherdev/unreadwatch/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/unreadwatch/internal/adapter/driven/surface"
	"github.com/ericfisherdev/unreadwatch/internal/adapter/driven/unread"
	"github.com/ericfisherdev/unreadwatch/internal/application"
	"github.com/ericfisherdev/unreadwatch/internal/config"
	"github.com/ericfisherdev/unreadwatch/internal/domain/port/driven"
	"github.com/ericfisherdev/unreadwatch/internal/logging"
	"github.com/ericfisherdev/unreadwatch/internal/metrics"
)

// app is the wired object graph shared by every command.
type app struct {
	cfg      *config.Config
	schedule application.Schedule
	log      *slog.Logger
	agent    *application.AgentService
	inbox    driven.InboxStore
	metrics  *metrics.Metrics
	closers  []func() error
}

// newApp loads configuration and wires adapters into the agent service.
func newApp(ctx context.Context, stderr io.Writer) (*app, error) {
	// 1. Load configuration (fail fast on invalid env vars).
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	schedule, err := application.ParseSchedule(cfg.PollSchedule)
	if err != nil {
		return nil, fmt.Errorf("%s_POLL_SCHEDULE: %w", config.Prefix, err)
	}

	// 2. Build the logger.
	log, logCloser, err := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
		Output: stderr,
	})
	if err != nil {
		return nil, fmt.Errorf("configure logging: %w", err)
	}

	a := &app{cfg: cfg, schedule: schedule, log: log, closers: []func() error{logCloser.Close}}

	box, err := secret.NewBox(cfg.SecretKey)
	if err != nil {
		a.Close()
		return nil, err
	}

	// 3. Open the store.
	var stateStore driven.StateStore
	switch cfg.StoreDriver {
	case config.DriverFile:
		store, err := filestore.Open(cfg.DBPath, cfg.InstanceID, box)
		if err != nil {
			a.Close()
			return nil, err
		}
		stateStore, a.inbox = store, store
		log.Debug("file store opened", "path", store.Path())
	default:
		db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		version, err := sqliteadapter.RunMigrations(db.Writer)
		if err != nil {
			a.Close()
			return nil, err
		}
		stateStore = sqliteadapter.NewStateRepo(db, cfg.InstanceID, box)
		a.inbox = sqliteadapter.NewInboxRepo(db)
		log.Debug("database opened", "path", db.Path(), "schema_version", version)
	}

	// 4. Remote count client.
	counter, err := unread.NewClient(cfg.APIBaseURL, cfg.FetchTimeout)
	if err != nil {
		a.Close()
		return nil, err
	}

	// 5. Surface: inbox first, then optional mirrors.
	var channels []surface.Channel
	if cfg.SMTP.Enabled() {
		channels = append(channels, surface.NewSMTPChannel(surface.SMTPConfig{
			Host:       cfg.SMTP.Host,
			Port:       cfg.SMTP.Port,
			Username:   cfg.SMTP.Username,
			Password:   cfg.SMTP.Password,
			From:       cfg.SMTP.From,
			To:         cfg.SMTP.To,
			Encryption: cfg.SMTP.Encryption,
		}))
	}
	if cfg.Telegram.Enabled() {
		tg, err := surface.NewTelegramChannel(cfg.Telegram.Token, cfg.Telegram.ChatID, cfg.FetchTimeout)
		if err != nil {
			a.Close()
			return nil, err
		}
		channels = append(channels, tg)
	}
	surf := surface.NewComposite(surface.NewInbox(a.inbox), log, channels...)

	// 6. Agent service.
	a.metrics = metrics.New()
	a.agent = application.NewAgentService(stateStore, counter, surf, cfg.ServiceName, a.metrics, log)

	if cfg.HasBootstrapCredentials() {
		applied, err := a.agent.Bootstrap(ctx, cfg.APIKey, cfg.Address)
		if err != nil {
			a.Close()
			return nil, err
		}
		if applied {
			log.Info("bootstrap credentials applied", "identity", cfg.Address)
		}
	}

	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && a.log != nil {
			a.log.Error("error closing resource", "error", err)
		}
	}
	a.closers = nil
}

package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-co-op/gocron/v2"
)

// Scheduler fires AgentService ticks on a Schedule. At most one tick runs at
// a time; a firing that lands while a tick is running is skipped.
type Scheduler struct {
	cron     gocron.Scheduler
	agent    *AgentService
	schedule Schedule
	log      *slog.Logger
}

// NewScheduler creates a Scheduler. A nil logger falls back to slog.Default.
func NewScheduler(agent *AgentService, schedule Schedule, log *slog.Logger) (*Scheduler, error) {
	cron, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("creating gocron scheduler: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{cron: cron, agent: agent, schedule: schedule, log: log}, nil
}

// Start registers the poll job and starts the scheduler. The first tick runs
// immediately. Ticks run with ctx; Start does not block.
func (s *Scheduler) Start(ctx context.Context) error {
	def := gocron.DurationJob(s.schedule.Every)
	if s.schedule.IsCron() {
		def = gocron.CronJob(s.schedule.Cron, false)
	}

	_, err := s.cron.NewJob(def,
		gocron.NewTask(func() { s.run(ctx) }),
		gocron.WithName("poll-unread"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("scheduling poll job (%s): %w", s.schedule, err)
	}

	s.cron.Start()
	s.log.Info("poll scheduler started", "schedule", s.schedule.String())
	return nil
}

// Stop shuts the scheduler down, waiting for a running tick to finish.
func (s *Scheduler) Stop() error {
	if err := s.cron.Shutdown(); err != nil {
		return fmt.Errorf("shutting down scheduler: %w", err)
	}
	s.log.Info("poll scheduler stopped")
	return nil
}

func (s *Scheduler) run(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := s.agent.Tick(ctx); err != nil {
		s.log.Error("poll tick failed", "error", err)
	}
}

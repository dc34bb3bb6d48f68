package holds

import (
	"context"
	"fmt"
	"time"

	"revticket/internal/shared/config"
	"revticket/pkg/logger"

	"github.com/go-co-op/gocron/v2"
)

// Sweeper runs the expiry scan on a fixed interval. Expiry is decided by
// comparing deadlines against the clock, so a missed tick only delays seat
// release, never loses it.
type Sweeper struct {
	service   Service
	scheduler gocron.Scheduler
	interval  time.Duration
	logger    *logger.Logger
}

func NewSweeper(service Service, cfg *config.Config, log *logger.Logger) (*Sweeper, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create sweep scheduler: %w", err)
	}

	return &Sweeper{
		service:   service,
		scheduler: scheduler,
		interval:  cfg.Booking.SweepInterval,
		logger:    log,
	}, nil
}

// Start schedules the sweep and begins running it
func (s *Sweeper) Start() error {
	_, err := s.scheduler.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(s.runOnce),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule hold sweep: %w", err)
	}

	s.scheduler.Start()
	s.logger.Info("Hold sweeper started", "interval", s.interval.String())
	return nil
}

// Stop shuts down the scheduler, waiting for a running sweep to finish
func (s *Sweeper) Stop() error {
	return s.scheduler.Shutdown()
}

func (s *Sweeper) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.interval)
	defer cancel()

	start := time.Now()
	expired, err := s.service.SweepExpired(ctx)
	if err != nil {
		s.logger.ErrorWithContext(ctx, "hold sweep failed", err, nil)
		return
	}

	s.logger.LogSweepCompleted(ctx, expired, time.Since(start))
}

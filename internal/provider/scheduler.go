package provider

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"serverless-workflow/backend/internal/events"
	"serverless-workflow/backend/internal/logging"
	"serverless-workflow/backend/pkg/models"
)

// Scheduler publishes refresh events on a cron schedule
type Scheduler struct {
	cron      *cron.Cron
	publisher events.Publisher
	logger    *logging.Logger
	timeout   time.Duration
}

const defaultRefreshTimeout = 2 * time.Minute

// NewScheduler creates a scheduler publishing through publisher
func NewScheduler(publisher events.Publisher, logger *logging.Logger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		publisher: publisher,
		logger:    logger,
		timeout:   defaultRefreshTimeout,
	}
}

// Schedule adds a refresh entry for a cron spec such as "@every 5m"
func (s *Scheduler) Schedule(spec string) (cron.EntryID, error) {
	return s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		_ = s.Refresh(ctx, "schedule")
	})
}

// Refresh publishes a single refresh event immediately
func (s *Scheduler) Refresh(ctx context.Context, reason string) error {
	err := s.publisher.Publish(ctx, events.Params{
		Topic:    models.Topic,
		Metadata: map[string]string{"reason": reason},
	})
	if err != nil {
		s.logger.Error("Template refresh failed",
			logging.Topic(models.Topic), "reason", reason, logging.Error(err))
	}
	return err
}

// Entries returns the number of scheduled entries
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

// Start runs the scheduler in its own goroutine
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the scheduler; the returned context is done once running
// refreshes finish
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// Package scheduler provides unified scheduler management using gocron v2.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/stylora-app/stylora/internal/shared/biztime"
	"github.com/stylora-app/stylora/internal/shared/logger"
)

// ResetJob executes a monthly usage reset for the given month key and
// returns the number of counters reset.
type ResetJob interface {
	Execute(ctx context.Context, month string) (int64, error)
}

// SchedulerManager owns the single gocron scheduler instance. Cron
// expressions run in UTC so the month boundary matches the month keys.
type SchedulerManager struct {
	scheduler gocron.Scheduler
	logger    logger.Interface

	started   bool
	startedMu sync.RWMutex
}

func NewSchedulerManager(log logger.Interface) (*SchedulerManager, error) {
	scheduler, err := gocron.NewScheduler(
		gocron.WithLocation(time.UTC),
	)
	if err != nil {
		return nil, err
	}

	return &SchedulerManager{
		scheduler: scheduler,
		logger:    log,
	}, nil
}

// RegisterUsageResetJob schedules the monthly reset at 00:00 UTC on the
// first of each month. The job resets the month that just ended, so usage
// recorded in the new month is never touched.
func (m *SchedulerManager) RegisterUsageResetJob(job ResetJob) error {
	_, err := m.scheduler.NewJob(
		gocron.CronJob("0 0 1 * *", false),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()
			m.runUsageReset(ctx, job)
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("usage", "reset"),
		gocron.WithName("monthly-usage-reset"),
	)
	if err != nil {
		return err
	}

	m.logger.Infow("registered monthly usage reset job", "cron", "0 0 1 * *")
	return nil
}

func (m *SchedulerManager) runUsageReset(ctx context.Context, job ResetJob) {
	month := biztime.PreviousMonthKey(biztime.NowUTC())
	startTime := biztime.NowUTC()

	count, err := job.Execute(ctx, month)
	if err != nil {
		m.logger.Errorw("monthly usage reset failed",
			"error", err,
			"month", month,
			"duration", time.Since(startTime),
		)
		return
	}

	m.logger.Infow("monthly usage reset completed",
		"month", month,
		"counters_reset", count,
		"duration", time.Since(startTime),
	)
}

// Start begins executing registered jobs.
func (m *SchedulerManager) Start() {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if m.started {
		return
	}

	m.scheduler.Start()
	m.started = true
	m.logger.Infow("scheduler started", "jobs", len(m.scheduler.Jobs()))
}

// Shutdown stops the scheduler and waits for running jobs.
func (m *SchedulerManager) Shutdown() error {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if !m.started {
		return nil
	}

	m.started = false
	if err := m.scheduler.Shutdown(); err != nil {
		m.logger.Errorw("scheduler shutdown failed", "error", err)
		return err
	}

	m.logger.Infow("scheduler stopped")
	return nil
}

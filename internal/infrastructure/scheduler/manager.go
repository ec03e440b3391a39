// Package scheduler provides scheduler management using gocron v2.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/orris-inc/licensing/internal/domain/licensing"
	"github.com/orris-inc/licensing/internal/shared/biztime"
	"github.com/orris-inc/licensing/internal/shared/logger"
)

// DefaultReconciliationInterval is used when no interval is configured.
const DefaultReconciliationInterval = 5 * time.Minute

// BatchJob defines the interface for a scheduled batch processing job.
// Each Execute call processes a batch and returns the number of items processed.
type BatchJob interface {
	Execute(ctx context.Context) (int, error)
}

// SchedulerManager owns the gocron scheduler of the service.
type SchedulerManager struct {
	scheduler gocron.Scheduler
	logger    logger.Interface

	// ctx is handed to every scheduled run and cancelled by Stop.
	ctx    context.Context
	cancel context.CancelFunc

	started   bool
	startedMu sync.RWMutex
}

// NewSchedulerManager creates a new SchedulerManager instance.
// It initializes gocron with the business timezone for cron expressions.
func NewSchedulerManager(log logger.Interface) (*SchedulerManager, error) {
	scheduler, err := gocron.NewScheduler(
		gocron.WithLocation(biztime.Location()),
	)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &SchedulerManager{
		scheduler: scheduler,
		logger:    log,
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}

// RegisterReconciliationJob registers the licence reconciliation pass.
// Singleton mode keeps runs from overlapping inside this process; the
// persisted run flag guards against other processes. A pass has no deadline
// and is only cancelled by Stop.
func (m *SchedulerManager) RegisterReconciliationJob(job BatchJob, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultReconciliationInterval
	}

	_, err := m.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			m.RunReconciliation(m.ctx, job)
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("licensing", "reconciliation"),
		gocron.WithName("licensing-reconciliation"),
	)
	if err != nil {
		return err
	}

	m.logger.Infow("registered reconciliation job", "interval", interval.String())
	return nil
}

// RunReconciliation runs one pass and logs its outcome.
func (m *SchedulerManager) RunReconciliation(ctx context.Context, job BatchJob) {
	m.logger.Debugw("reconciliation task started")

	startTime := biztime.NowUTC()

	enrolled, err := job.Execute(ctx)
	if err != nil {
		if errors.Is(err, licensing.ErrConcurrentRun) {
			m.logger.Infow("reconciliation skipped, another run holds the lock")
			return
		}
		// Don't log error if context was cancelled (graceful shutdown)
		if ctx.Err() != nil {
			return
		}
		m.logger.Errorw("reconciliation failed",
			"error", err,
			"duration", time.Since(startTime),
		)
		return
	}

	if enrolled > 0 {
		m.logger.Infow("reconciliation completed",
			"distributions", enrolled,
			"duration", time.Since(startTime),
		)
	} else {
		m.logger.Debugw("no distributions to reconcile",
			"duration", time.Since(startTime),
		)
	}
}

// Start starts the scheduler and all registered jobs.
func (m *SchedulerManager) Start() {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if m.started {
		return
	}

	m.scheduler.Start()
	m.started = true
	m.logger.Infow("scheduler manager started", "job_count", len(m.scheduler.Jobs()))
}

// Stop gracefully stops the scheduler.
// It waits for all running jobs to complete before returning.
func (m *SchedulerManager) Stop() error {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if !m.started {
		return nil
	}

	m.logger.Infow("stopping scheduler manager")

	m.cancel()
	err := m.scheduler.Shutdown()
	m.started = false

	if err != nil {
		m.logger.Errorw("scheduler manager shutdown with error", "error", err)
		return err
	}

	m.logger.Infow("scheduler manager stopped")
	return nil
}

// IsStarted returns whether the scheduler is running.
func (m *SchedulerManager) IsStarted() bool {
	m.startedMu.RLock()
	defer m.startedMu.RUnlock()
	return m.started
}

// Jobs returns all registered jobs for inspection.
func (m *SchedulerManager) Jobs() []gocron.Job {
	return m.scheduler.Jobs()
}

// Package scheduler arms the persisted sync schedule and guards the
// pipeline so only one run, timed or manual, is active at a time.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/agendasync/internal/common"
	"github.com/dmitrijs2005/agendasync/internal/logging"
	"github.com/dmitrijs2005/agendasync/internal/models"
	"github.com/dmitrijs2005/agendasync/internal/notify"
	"github.com/dmitrijs2005/agendasync/internal/repositories/schedule"
	"github.com/dmitrijs2005/agendasync/internal/validatex"
)

type Runner interface {
	Run(ctx context.Context) (models.SyncResult, error)
}

type stopper interface {
	Stop() bool
}

type Scheduler struct {
	repo     schedule.Repository
	runner   Runner
	notifier notify.Notifier
	validate *validatex.Validator
	log      logging.Logger

	now       func() time.Time
	afterFunc func(d time.Duration, f func()) stopper

	inProgress atomic.Bool

	mu      sync.Mutex
	baseCtx context.Context
	timer   stopper
	last    *models.SyncResult
	stopped bool
}

func New(repo schedule.Repository, runner Runner, n notify.Notifier, log logging.Logger) *Scheduler {
	return &Scheduler{
		repo:     repo,
		runner:   runner,
		notifier: n,
		validate: validatex.New(),
		log:      log,
		now:      time.Now,
		afterFunc: func(d time.Duration, f func()) stopper {
			return time.AfterFunc(d, f)
		},
		baseCtx: context.Background(),
	}
}

// Start arms the timer from the persisted schedule. Timed runs use ctx.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	s.baseCtx = ctx
	s.stopped = false
	s.mu.Unlock()
	return s.ScheduleNext(ctx)
}

// Stop disarms the timer. A run already in flight is not interrupted.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	s.disarm()
}

func (s *Scheduler) disarm() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// ScheduleNext recomputes and persists NextSync and arms a single timer.
func (s *Scheduler) ScheduleNext(ctx context.Context) error {
	sched, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load schedule: %w", err)
	}

	now := s.now()
	next, ok := NextSync(sched, now)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.disarm()

	if ok {
		sched.NextSync = &next
	} else {
		sched.NextSync = nil
	}
	if err := s.repo.Save(ctx, sched); err != nil {
		return fmt.Errorf("save schedule: %w", err)
	}

	if !ok || s.stopped {
		s.log.Debug(ctx, "no sync scheduled", "enabled", sched.Enabled, "frequency", sched.Frequency)
		return nil
	}

	s.timer = s.afterFunc(next.Sub(now), s.fire)
	s.log.Info(ctx, "next sync scheduled", "at", next.Format(time.RFC3339))
	return nil
}

func (s *Scheduler) fire() {
	s.mu.Lock()
	ctx := s.baseCtx
	s.timer = nil
	stopped := s.stopped
	s.mu.Unlock()

	if stopped || ctx.Err() != nil {
		return
	}

	s.TriggerSync(ctx)
	if err := s.ScheduleNext(ctx); err != nil {
		s.log.Error(ctx, "failed to re-arm schedule", "error", err)
	}
}

// TriggerSync runs the pipeline now unless a run is already active. It
// never panics and never moves NextSync.
func (s *Scheduler) TriggerSync(ctx context.Context) models.SyncResult {
	if !s.inProgress.CompareAndSwap(false, true) {
		s.log.Warn(ctx, "sync skipped", "reason", common.ErrSyncInProgress)
		return models.Failed(common.ErrSyncInProgress)
	}

	res := s.syncLocked(ctx)
	s.notify(ctx, res)
	return res
}

// syncLocked runs the pipeline and records the outcome, releasing the
// in-progress guard before it returns.
func (s *Scheduler) syncLocked(ctx context.Context) models.SyncResult {
	defer s.inProgress.Store(false)

	started := s.now()
	res := s.run(ctx)

	if res.Success {
		if err := s.markSynced(ctx, started); err != nil {
			s.log.Error(ctx, "failed to persist last sync", "error", err)
		}
		s.log.Info(ctx, "sync finished", "summary", res.Summary(), "elapsed", s.now().Sub(started))
	} else {
		s.log.Error(ctx, "sync failed", "error", res.Error)
	}

	s.mu.Lock()
	s.last = &res
	s.mu.Unlock()
	return res
}

func (s *Scheduler) run(ctx context.Context) (res models.SyncResult) {
	defer func() {
		if r := recover(); r != nil {
			res = models.Failed(fmt.Errorf("sync panicked: %v", r))
		}
	}()

	res, err := s.runner.Run(ctx)
	if err != nil && res.Error == "" {
		res.Success = false
		res.Error = err.Error()
	}
	return res
}

func (s *Scheduler) markSynced(ctx context.Context, at time.Time) error {
	sched, err := s.repo.Load(ctx)
	if err != nil {
		return err
	}
	sched.LastSync = &at
	return s.repo.Save(ctx, sched)
}

func (s *Scheduler) notify(ctx context.Context, res models.SyncResult) {
	title := "Sync completed"
	if !res.Success {
		title = "Sync failed"
	}
	if err := s.notifier.Notify(ctx, title, res.Summary()); err != nil {
		s.log.Warn(ctx, "notification failed", "error", err)
	}
}

// Update validates and persists a new schedule, keeping LastSync, then
// re-arms the timer.
func (s *Scheduler) Update(ctx context.Context, next models.SyncSchedule) error {
	if err := s.validate.Struct(next); err != nil {
		return fmt.Errorf("invalid schedule: %w", err)
	}

	cur, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load schedule: %w", err)
	}
	next.LastSync = cur.LastSync
	next.NextSync = nil
	if err := s.repo.Save(ctx, next); err != nil {
		return fmt.Errorf("save schedule: %w", err)
	}
	return s.ScheduleNext(ctx)
}

// Schedule returns the persisted schedule.
func (s *Scheduler) Schedule(ctx context.Context) (models.SyncSchedule, error) {
	return s.repo.Load(ctx)
}

// LastResult is the outcome of the most recent completed run, if any.
func (s *Scheduler) LastResult() (models.SyncResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return models.SyncResult{}, false
	}
	return *s.last, true
}

// Running reports whether a run is in flight.
func (s *Scheduler) Running() bool {
	return s.inProgress.Load()
}

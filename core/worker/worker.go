package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"calblock/core/calendar"
	"calblock/core/journal"
	"calblock/core/reconcile"
	"calblock/core/snapshot"
)

// Config carries the pass settings and sinks for a Worker.
type Config struct {
	// Accounts are the account names every pass loads.
	Accounts []string
	// Schedule is the cron spec watch mode runs passes on.
	Schedule string
	// Window produces the pass window from the pass start time.
	Window func(now time.Time) calendar.Window
	// Options tune the plan builder.
	Options reconcile.Options
	// DryRun plans passes without touching any calendar.
	DryRun bool
	// Sinks receive every finished pass.
	Sinks Sinks
}

// PassResult summarizes one finished pass.
type PassResult struct {
	// Mode is journal.ModeSync or journal.ModeReset.
	Mode string
	// StartedAt is when the pass began.
	StartedAt time.Time
	// Duration is the wall time the pass took.
	Duration time.Duration
	// Window is the span the pass covered.
	Window calendar.Window
	// Summary carries the plan counters.
	Summary reconcile.Summary
	// Applied counts provider calls that succeeded.
	Applied int
	// Failed counts provider calls that were rejected.
	Failed int
	// DryRun marks a pass that planned without applying.
	DryRun bool
	// Err is set when the pass aborted before applying anything.
	Err error
}

// Worker runs reconciliation passes, either once or on a cron schedule.
type Worker struct {
	loader   *snapshot.Loader
	executor *reconcile.Executor
	cfg      Config
	log      *zap.Logger

	sf singleflight.Group

	mu   sync.RWMutex
	last *PassResult
	cron *cron.Cron
}

// New wires a Worker. A nil cfg.Window defaults to a 30-day window from
// the pass start; the sinks in cfg may be partially nil (see Sinks).
func New(loader *snapshot.Loader, executor *reconcile.Executor, cfg Config, log *zap.Logger) *Worker {
	if cfg.Window == nil {
		cfg.Window = func(now time.Time) calendar.Window {
			return calendar.NewWindow(now, 30)
		}
	}
	return &Worker{loader: loader, executor: executor, cfg: cfg, log: log}
}

// RunOnce executes a single sync pass. Concurrent calls coalesce onto
// one in-flight pass and share its result. The returned error mirrors
// the result's Err field.
func (w *Worker) RunOnce(ctx context.Context) (*PassResult, error) {
	v, _, _ := w.sf.Do("sync", func() (interface{}, error) {
		return w.pass(ctx), nil
	})
	res := v.(*PassResult)
	return res, res.Err
}

func (w *Worker) pass(ctx context.Context) *PassResult {
	startedAt := time.Now()
	window := w.cfg.Window(startedAt)
	res := &PassResult{
		Mode:      journal.ModeSync,
		StartedAt: startedAt,
		Window:    window,
		DryRun:    w.cfg.DryRun,
	}

	log := w.log.With(
		zap.Time("window_start", window.Start),
		zap.Time("window_end", window.End),
		zap.Bool("dry_run", w.cfg.DryRun),
	)
	log.Info("Sync pass started", zap.Strings("accounts", w.cfg.Accounts))

	var (
		plan   *reconcile.Plan
		report *reconcile.Report
	)
	snaps, err := w.loader.Load(ctx, w.cfg.Accounts, window)
	if err != nil {
		res.Err = err
	} else {
		plan = reconcile.BuildPlan(snaps, w.cfg.Options)
		res.Summary = plan.Summary

		report, err = w.executor.Apply(ctx, plan, reconcile.ApplyOptions{DryRun: w.cfg.DryRun})
		if err != nil {
			res.Err = err
		} else {
			res.Applied = report.Applied
			res.Failed = report.Failed
		}
	}
	res.Duration = time.Since(startedAt)

	w.cfg.Sinks.Record(ctx, w.log, res, plan, report)

	w.mu.Lock()
	w.last = res
	w.mu.Unlock()

	if res.Err != nil {
		log.Error("Sync pass failed",
			zap.Error(res.Err),
			zap.Duration("elapsed", res.Duration))
	} else {
		log.Info("Sync pass finished",
			zap.Int("creates", res.Summary.Creates),
			zap.Int("deletes", res.Summary.Deletes),
			zap.Int("applied", res.Applied),
			zap.Int("failed", res.Failed),
			zap.Duration("elapsed", res.Duration))
	}
	return res
}

// Start schedules passes on the configured cron spec and blocks until
// ctx is done, then waits for a running pass to finish.
func (w *Worker) Start(ctx context.Context) error {
	c := cron.New(cron.WithChain(
		cron.DelayIfStillRunning(cron.PrintfLogger(zap.NewStdLog(w.log))),
	))
	_, err := c.AddFunc(w.cfg.Schedule, func() {
		// The pass logs, journals and notifies its own failures.
		_, _ = w.RunOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("add schedule %q: %w", w.cfg.Schedule, err)
	}

	w.mu.Lock()
	w.cron = c
	w.mu.Unlock()

	c.Start()
	w.log.Info("Worker started", zap.String("schedule", w.cfg.Schedule))

	<-ctx.Done()

	<-c.Stop().Done()
	w.log.Info("Worker stopped")
	return nil
}

// LastPass returns the most recent pass result, or nil before the first
// pass completes.
func (w *Worker) LastPass() *PassResult {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.last
}

// NextRun returns the next scheduled pass time, or the zero time when
// the scheduler is not running.
func (w *Worker) NextRun() time.Time {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.cron == nil {
		return time.Time{}
	}
	entries := w.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

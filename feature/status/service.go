package status

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"calblock/core/journal"
	"calblock/core/worker"
)

// ErrJournalDisabled is returned when pass history is requested but no
// journal is configured.
var ErrJournalDisabled = errors.New("status: journal disabled")

// Service reads worker state and pass history.
type Service struct {
	worker    *worker.Worker
	journal   *journal.Journal
	schedule  string
	startedAt time.Time
	logger    *zap.Logger
}

// NewService creates a new status service. journal may be nil.
func NewService(w *worker.Worker, j *journal.Journal, schedule string, logger *zap.Logger) *Service {
	return &Service{
		worker:    w,
		journal:   j,
		schedule:  schedule,
		startedAt: time.Now(),
		logger:    logger,
	}
}

// StatusReport is the GET /status response body.
type StatusReport struct {
	// Status is "ok", or "degraded" when the last pass had failures.
	Status string `json:"status"`
	// UptimeSeconds counts since the server started.
	UptimeSeconds int64 `json:"uptime_seconds"`
	// Schedule is the cron spec passes run on.
	Schedule string `json:"schedule"`
	// NextRun is the next scheduled pass, absent when no cron runs.
	NextRun *time.Time `json:"next_run,omitempty"`
	// LastPass is the most recent pass, absent before the first one.
	LastPass *PassView `json:"last_pass,omitempty"`
}

// PassView is the JSON rendering of one finished pass.
type PassView struct {
	Mode              string    `json:"mode"`
	StartedAt         time.Time `json:"started_at"`
	DurationMS        int64     `json:"duration_ms"`
	WindowStart       time.Time `json:"window_start"`
	WindowEnd         time.Time `json:"window_end"`
	Eligible          int       `json:"eligible"`
	Creates           int       `json:"creates"`
	Deletes           int       `json:"deletes"`
	Confirmed         int       `json:"confirmed"`
	SkippedEquivalent int       `json:"skipped_equivalent"`
	Applied           int       `json:"applied"`
	Failed            int       `json:"failed"`
	DryRun            bool      `json:"dry_run"`
	Error             string    `json:"error,omitempty"`
}

// Status assembles the current report.
func (s *Service) Status() StatusReport {
	rep := StatusReport{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
		Schedule:      s.schedule,
	}
	if next := s.worker.NextRun(); !next.IsZero() {
		rep.NextRun = &next
	}
	if last := s.worker.LastPass(); last != nil {
		view := newPassView(last)
		rep.LastPass = &view
		if last.Err != nil || last.Failed > 0 {
			rep.Status = "degraded"
		}
	}
	return rep
}

func newPassView(res *worker.PassResult) PassView {
	v := PassView{
		Mode:              res.Mode,
		StartedAt:         res.StartedAt,
		DurationMS:        res.Duration.Milliseconds(),
		WindowStart:       res.Window.Start,
		WindowEnd:         res.Window.End,
		Eligible:          res.Summary.EligibleMeetings,
		Creates:           res.Summary.Creates,
		Deletes:           res.Summary.Deletes,
		Confirmed:         res.Summary.Confirmed,
		SkippedEquivalent: res.Summary.SkippedEquivalent,
		Applied:           res.Applied,
		Failed:            res.Failed,
		DryRun:            res.DryRun,
	}
	if res.Err != nil {
		v.Error = res.Err.Error()
	}
	return v
}

// TriggerSync starts a pass in the background. Concurrent triggers
// coalesce onto one running pass inside the worker.
func (s *Service) TriggerSync() {
	go func() {
		// The pass logs and journals its own failures.
		_, _ = s.worker.RunOnce(context.Background())
	}()
}

// RecentPasses returns the newest pass records, newest first.
func (s *Service) RecentPasses(ctx context.Context, limit int) ([]journal.PassRecord, error) {
	if s.journal == nil {
		return nil, ErrJournalDisabled
	}
	return s.journal.RecentPasses(ctx, limit)
}

// PassActions returns the recorded actions of one pass.
func (s *Service) PassActions(ctx context.Context, passID uint) ([]journal.ActionRecord, error) {
	if s.journal == nil {
		return nil, ErrJournalDisabled
	}
	return s.journal.PassActions(ctx, passID)
}

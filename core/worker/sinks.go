package worker

import (
	"context"

	"go.uber.org/zap"

	"calblock/core/archive"
	"calblock/core/journal"
	"calblock/core/notify"
	"calblock/core/reconcile"
)

// Sinks fan a finished pass out to the optional observers. Any field
// may be nil, which skips that sink.
type Sinks struct {
	// Journal records pass history.
	Journal *journal.Journal
	// Archiver uploads the pass plan.
	Archiver *archive.Archiver
	// Notifier receives pass summaries.
	Notifier notify.Notifier
	// Verbose notifies after every pass, not only after failures.
	Verbose bool
}

// Record writes the pass to every configured sink. Sink failures are
// logged and swallowed; observability must never fail a pass.
func (s Sinks) Record(ctx context.Context, log *zap.Logger, res *PassResult, plan *reconcile.Plan, report *reconcile.Report) {
	if s.Journal != nil {
		rec := journal.NewPassRecord(res.Mode, res.StartedAt, res.Duration, res.Window, plan, report, res.Err)
		if err := s.Journal.RecordPass(ctx, rec); err != nil {
			log.Warn("Journal write failed", zap.Error(err))
		}
	}

	if s.Archiver != nil && plan != nil {
		if err := s.Archiver.StorePlan(ctx, res.Mode, res.StartedAt, plan); err != nil {
			log.Warn("Plan archive failed", zap.Error(err))
		}
	}

	if s.Notifier == nil {
		return
	}
	if !s.Verbose && res.Err == nil && res.Failed == 0 {
		return
	}
	text := notify.FormatPassSummary(res.Mode, res.Window, res.Summary, report, res.Err)
	if err := s.Notifier.Send(ctx, text); err != nil {
		log.Warn("Notification failed", zap.Error(err))
	}
}

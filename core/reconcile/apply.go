package reconcile

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"calblock/core/calendar"
)

// ApplyOptions controls plan execution.
type ApplyOptions struct {
	// DryRun reports the plan without mutating any calendar.
	DryRun bool
}

// ActionFailure records one action the provider rejected.
type ActionFailure struct {
	// Action is the mutation that failed.
	Action Action `json:"action"`

	// Error is the provider error text.
	Error string `json:"error"`
}

// Report summarizes plan execution.
type Report struct {
	// Planned is the total number of actions in the plan.
	Planned int `json:"planned"`

	// Applied counts successfully executed actions.
	Applied int `json:"applied"`

	// Failed counts actions the provider rejected.
	Failed int `json:"failed"`

	// DryRun indicates no mutation was attempted.
	DryRun bool `json:"dry_run"`

	// Failures carries the failed actions with their errors.
	Failures []ActionFailure `json:"failures,omitempty"`
}

// Executor applies plans through a calendar provider.
type Executor struct {
	provider calendar.Provider
	log      *zap.Logger
}

// NewExecutor creates an executor bound to a provider.
func NewExecutor(provider calendar.Provider, log *zap.Logger) *Executor {
	return &Executor{provider: provider, log: log}
}

// Apply executes the plan account by account, deletes before creates.
// A failed action is logged and counted but does not stop the rest of
// the plan: the calendar state behind a failed action is unchanged, so
// the same action is planned again on the next pass. Apply returns an
// error only when the context ends mid-plan.
func (e *Executor) Apply(ctx context.Context, plan *Plan, opts ApplyOptions) (*Report, error) {
	report := &Report{Planned: plan.TotalActions(), DryRun: opts.DryRun}

	for _, ap := range plan.Accounts {
		for _, action := range ap.Deletes {
			if err := e.applyOne(ctx, action, opts, report); err != nil {
				return report, err
			}
		}
		for _, action := range ap.Creates {
			if err := e.applyOne(ctx, action, opts, report); err != nil {
				return report, err
			}
		}
	}

	return report, nil
}

func (e *Executor) applyOne(ctx context.Context, action Action, opts ApplyOptions, report *Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	log := e.log.With(
		zap.String("account", action.Account),
		zap.String("action", string(action.Type)),
		zap.String("tag", action.Event.CorrelationTag),
		zap.Time("start", action.Event.Start),
		zap.Time("end", action.Event.End),
	)

	if opts.DryRun {
		log.Info("Dry-run, skipping action", zap.String("reason", action.Reason))
		return nil
	}

	var err error
	switch action.Type {
	case ActionCreateBlocker:
		err = e.provider.CreateBlocker(ctx, action.Account, action.Event)
	case ActionDeleteBlocker:
		err = e.provider.DeleteEvent(ctx, action.Account, action.Event.Ref)
		if errors.Is(err, calendar.ErrNotFound) {
			// Someone deleted the blocker between load and apply. The
			// goal state is reached either way.
			log.Info("Blocker already gone")
			err = nil
		}
	default:
		err = fmt.Errorf("unknown action type %q", action.Type)
	}

	if err != nil {
		report.Failed++
		report.Failures = append(report.Failures, ActionFailure{Action: action, Error: err.Error()})
		log.Error("Action failed, continuing with remaining actions", zap.Error(err))
		return nil
	}

	report.Applied++
	log.Debug("Action applied")
	return nil
}

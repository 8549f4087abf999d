package reconcile

import (
	"sort"

	"calblock/core/calendar"
)

// BuildPlan computes the blocker plan for one pass. For every eligible
// real meeting and every account other than its owner, the resulting
// plan either confirms an existing blocker, skips because the target
// already sees an equivalent meeting natively, or creates a blocker;
// blockers left unconfirmed at the end are stale and get deleted. The
// computation is pure: it never touches the provider and never fails.
func BuildPlan(snapshots []calendar.AccountSnapshot, opts Options) *Plan {
	subject := opts.BlockerSubject
	if subject == "" {
		subject = DefaultBlockerSubject
	}

	// Global pool of eligible meetings, tagged with their owner.
	pool := eligiblePool(snapshots)

	plan := &Plan{
		Summary: Summary{
			Accounts:         len(snapshots),
			EligibleMeetings: len(pool),
		},
	}

	for _, target := range snapshots {
		ap := AccountPlan{Account: target.Name}

		// Index the target's blockers by key. Two blockers sharing a
		// key are a data anomaly: the first is kept, extras are stale.
		blockers := make(map[calendar.BlockerKey]calendar.Event, len(target.Blockers))
		for _, b := range target.Blockers {
			key := calendar.BlockerKeyOf(b)
			if _, seen := blockers[key]; seen {
				ap.Deletes = append(ap.Deletes, deleteAction(target.Name, b, ReasonDuplicate))
				plan.Summary.Duplicates++
				continue
			}
			blockers[key] = b
		}

		for _, m := range pool {
			if m.Owner == target.Name {
				continue
			}
			if _, live := blockers[calendar.MeetingKey(m)]; live {
				// Confirmed live; consuming the entry keeps it off the
				// stale list.
				delete(blockers, calendar.MeetingKey(m))
				plan.Summary.Confirmed++
				continue
			}
			if hasEquivalent(target.Meetings, m, opts.Matcher) {
				plan.Summary.SkippedEquivalent++
				continue
			}
			ap.Creates = append(ap.Creates, Action{
				Type:    ActionCreateBlocker,
				Account: target.Name,
				Event: calendar.Event{
					Subject:        subject,
					Start:          m.Start,
					End:            m.End,
					AllDay:         false,
					Busy:           calendar.BusyStatusBusy,
					Owner:          target.Name,
					CorrelationTag: m.SourceID,
				},
			})
		}

		// Whatever the pool did not confirm is stale.
		for _, b := range blockers {
			ap.Deletes = append(ap.Deletes, deleteAction(target.Name, b, ReasonStale))
		}
		sortDeletes(ap.Deletes)

		plan.Summary.Creates += len(ap.Creates)
		plan.Summary.Deletes += len(ap.Deletes)
		plan.Accounts = append(plan.Accounts, ap)
	}

	return plan
}

// BuildResetPlan computes the teardown plan: every blocker in every
// account is deleted, except blockers with a non-empty location. A
// location on a placeholder means a human later attached a reserved
// resource to it, which must survive. Real meetings are ignored
// entirely.
func BuildResetPlan(snapshots []calendar.AccountSnapshot) *Plan {
	plan := &Plan{Summary: Summary{Accounts: len(snapshots)}}

	for _, target := range snapshots {
		ap := AccountPlan{Account: target.Name}
		for _, b := range target.Blockers {
			if b.Location != "" {
				plan.Summary.Protected++
				continue
			}
			ap.Deletes = append(ap.Deletes, deleteAction(target.Name, b, ReasonReset))
		}
		sortDeletes(ap.Deletes)

		plan.Summary.Deletes += len(ap.Deletes)
		plan.Accounts = append(plan.Accounts, ap)
	}

	return plan
}

// eligiblePool collects the eligible meetings of all accounts into one
// slice, preserving snapshot order for deterministic plans.
func eligiblePool(snapshots []calendar.AccountSnapshot) []calendar.Event {
	var pool []calendar.Event
	for _, acct := range snapshots {
		for _, m := range acct.Meetings {
			if Eligible(m) {
				pool = append(pool, m)
			}
		}
	}
	return pool
}

// hasEquivalent reports whether any real meeting in the target account
// is equivalent to the given meeting.
func hasEquivalent(meetings []calendar.Event, m calendar.Event, matcher Matcher) bool {
	for _, candidate := range meetings {
		if matcher.Equivalent(m, candidate) {
			return true
		}
	}
	return false
}

func deleteAction(account string, b calendar.Event, reason string) Action {
	return Action{
		Type:    ActionDeleteBlocker,
		Account: account,
		Reason:  reason,
		Event:   b,
	}
}

// sortDeletes orders delete actions by start time, then ref, so plans
// are deterministic regardless of map iteration order.
func sortDeletes(deletes []Action) {
	sort.Slice(deletes, func(i, j int) bool {
		if !deletes[i].Event.Start.Equal(deletes[j].Event.Start) {
			return deletes[i].Event.Start.Before(deletes[j].Event.Start)
		}
		return deletes[i].Event.Ref < deletes[j].Event.Ref
	})
}

package snapshot

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"calblock/core/calendar"
)

// Loader reads account snapshots through a calendar provider.
type Loader struct {
	provider calendar.Provider
	log      *zap.Logger
}

// NewLoader creates a loader bound to a provider.
func NewLoader(provider calendar.Provider, log *zap.Logger) *Loader {
	return &Loader{provider: provider, log: log}
}

// Load fetches the snapshot of every account for the window, one
// account at a time. It fails on the first read error; the engine must
// never run on an incomplete cross-account view. At least two accounts
// are required, otherwise there is nothing to reconcile.
func (l *Loader) Load(ctx context.Context, accounts []string, window calendar.Window) ([]calendar.AccountSnapshot, error) {
	if len(accounts) < 2 {
		return nil, calendar.ErrTooFewAccounts
	}
	return l.load(ctx, accounts, window)
}

// LoadOne fetches a single account's snapshot. Inspection surfaces use
// this; sync passes always go through Load.
func (l *Loader) LoadOne(ctx context.Context, account string, window calendar.Window) (calendar.AccountSnapshot, error) {
	snaps, err := l.load(ctx, []string{account}, window)
	if err != nil {
		return calendar.AccountSnapshot{}, err
	}
	return snaps[0], nil
}

// LoadBlockers fetches blocker-only snapshots of every account with an
// unbounded window. This feeds the reset operator, which must see all
// placeholders regardless of the sync window and works with any number
// of accounts.
func (l *Loader) LoadBlockers(ctx context.Context, accounts []string) ([]calendar.AccountSnapshot, error) {
	snaps, err := l.load(ctx, accounts, calendar.Window{})
	if err != nil {
		return nil, err
	}
	for i := range snaps {
		snaps[i].Meetings = nil
	}
	return snaps, nil
}

func (l *Loader) load(ctx context.Context, accounts []string, window calendar.Window) ([]calendar.AccountSnapshot, error) {
	snaps := make([]calendar.AccountSnapshot, 0, len(accounts))
	for _, name := range accounts {
		events, err := l.provider.ListEvents(ctx, name, window)
		if err != nil {
			return nil, fmt.Errorf("list events for account %s: %w", name, err)
		}

		snap := buildSnapshot(name, events)
		l.log.Debug("Loaded account snapshot",
			zap.String("account", name),
			zap.Int("meetings", len(snap.Meetings)),
			zap.Int("blockers", len(snap.Blockers)),
		)
		snaps = append(snaps, snap)
	}
	return snaps, nil
}

// buildSnapshot partitions events into meetings and blockers, stamps
// the owner, drops duplicate expanded occurrences and sorts both sides.
func buildSnapshot(name string, events []calendar.Event) calendar.AccountSnapshot {
	snap := calendar.AccountSnapshot{Name: name}

	type occurrence struct {
		sourceID  string
		startUnix int64
		endUnix   int64
		subject   string
	}
	seen := make(map[occurrence]struct{}, len(events))

	for _, e := range events {
		e.Owner = name
		if e.IsBlocker() {
			snap.Blockers = append(snap.Blockers, e)
			continue
		}

		// Recurrence expansion can yield the same occurrence twice;
		// keep one.
		occ := occurrence{
			sourceID:  e.SourceID,
			startUnix: e.Start.Unix(),
			endUnix:   e.End.Unix(),
			subject:   strings.ToLower(e.Subject),
		}
		if _, dup := seen[occ]; dup {
			continue
		}
		seen[occ] = struct{}{}
		snap.Meetings = append(snap.Meetings, e)
	}

	sort.Slice(snap.Meetings, func(i, j int) bool {
		a, b := snap.Meetings[i], snap.Meetings[j]
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		return a.SourceID < b.SourceID
	})
	sort.Slice(snap.Blockers, func(i, j int) bool {
		a, b := snap.Blockers[i], snap.Blockers[j]
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		return a.Ref < b.Ref
	})

	return snap
}

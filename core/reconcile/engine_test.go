package reconcile

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"calblock/core/calendar"
)

var passStart = time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

func at(h int) time.Time {
	return passStart.Add(time.Duration(h) * time.Hour)
}

func makeMeeting(owner, id, subject string, start, end time.Time) calendar.Event {
	return calendar.Event{
		SourceID: id,
		Subject:  subject,
		Start:    start,
		End:      end,
		Busy:     calendar.BusyStatusBusy,
		Owner:    owner,
		Ref:      "ref-" + id,
	}
}

func makeBlocker(owner, tag, ref string, start, end time.Time) calendar.Event {
	return calendar.Event{
		SourceID:       ref,
		Subject:        DefaultBlockerSubject,
		Start:          start,
		End:            end,
		Busy:           calendar.BusyStatusBusy,
		Owner:          owner,
		CorrelationTag: tag,
		Ref:            ref,
	}
}

// applyToSnapshots simulates plan execution against in-memory
// snapshots, so idempotence and coverage can be checked without a
// provider.
func applyToSnapshots(snaps []calendar.AccountSnapshot, plan *Plan) []calendar.AccountSnapshot {
	byName := make(map[string]*calendar.AccountSnapshot, len(snaps))
	for i := range snaps {
		byName[snaps[i].Name] = &snaps[i]
	}

	for _, ap := range plan.Accounts {
		snap := byName[ap.Account]

		deleted := make(map[string]bool, len(ap.Deletes))
		for _, d := range ap.Deletes {
			deleted[d.Event.Ref] = true
		}
		var kept []calendar.Event
		for _, b := range snap.Blockers {
			if !deleted[b.Ref] {
				kept = append(kept, b)
			}
		}
		snap.Blockers = kept

		for i, c := range ap.Creates {
			ev := c.Event
			ev.Ref = fmt.Sprintf("created-%s-%d", ap.Account, i)
			ev.SourceID = ev.Ref
			snap.Blockers = append(snap.Blockers, ev)
		}
	}

	return snaps
}

func accountPlan(t *testing.T, plan *Plan, name string) AccountPlan {
	t.Helper()
	for _, ap := range plan.Accounts {
		if ap.Account == name {
			return ap
		}
	}
	t.Fatalf("no plan for account %s", name)
	return AccountPlan{}
}

// TestBuildPlan_CreatesBlockerInOtherAccount covers the basic case:
// one busy meeting in A, nothing in B.
func TestBuildPlan_CreatesBlockerInOtherAccount(t *testing.T) {
	snaps := []calendar.AccountSnapshot{
		{Name: "a", Meetings: []calendar.Event{
			makeMeeting("a", "1", "Design Sync", at(10), at(11)),
		}},
		{Name: "b"},
	}

	plan := BuildPlan(snaps, Options{})

	// No action in A.
	planA := accountPlan(t, plan, "a")
	assert.Empty(t, planA.Creates)
	assert.Empty(t, planA.Deletes)

	// One create in B with the placeholder label, not the real title.
	planB := accountPlan(t, plan, "b")
	assert.Len(t, planB.Creates, 1)
	assert.Empty(t, planB.Deletes)

	tpl := planB.Creates[0].Event
	assert.Equal(t, "Blocker", tpl.Subject)
	assert.Equal(t, "1", tpl.CorrelationTag)
	assert.True(t, tpl.Start.Equal(at(10)))
	assert.True(t, tpl.End.Equal(at(11)))
	assert.Equal(t, calendar.BusyStatusBusy, tpl.Busy)
	assert.False(t, tpl.AllDay)

	assert.Equal(t, 1, plan.Summary.Creates)
	assert.Equal(t, 0, plan.Summary.Deletes)
	assert.Equal(t, 1, plan.Summary.EligibleMeetings)
}

// TestBuildPlan_EquivalentMeetingSuppressesCreate covers the native
// visibility case: B already holds its own copy of the meeting.
func TestBuildPlan_EquivalentMeetingSuppressesCreate(t *testing.T) {
	snaps := []calendar.AccountSnapshot{
		{Name: "a", Meetings: []calendar.Event{
			makeMeeting("a", "1", "Design Sync", at(10), at(11)),
		}},
		{Name: "b", Meetings: []calendar.Event{
			makeMeeting("b", "77", "Team Design Sync", at(10), at(11)),
		}},
	}

	plan := BuildPlan(snaps, Options{})

	planB := accountPlan(t, plan, "b")
	assert.Empty(t, planB.Creates)
	assert.Equal(t, 1, plan.Summary.SkippedEquivalent)

	// B's own meeting still produces a blocker in A.
	planA := accountPlan(t, plan, "a")
	assert.Len(t, planA.Creates, 1)
	assert.Equal(t, "77", planA.Creates[0].Event.CorrelationTag)
}

// TestBuildPlan_StaleBlockerReplaced covers a meeting whose time moved:
// the old blocker goes, a new one comes.
func TestBuildPlan_StaleBlockerReplaced(t *testing.T) {
	snaps := []calendar.AccountSnapshot{
		{Name: "a", Meetings: []calendar.Event{
			makeMeeting("a", "1", "Design Sync", at(10), at(11)),
		}},
		{Name: "b", Blockers: []calendar.Event{
			makeBlocker("b", "1", "b-old", at(9), at(10)),
		}},
	}

	plan := BuildPlan(snaps, Options{})

	planB := accountPlan(t, plan, "b")
	assert.Len(t, planB.Deletes, 1)
	assert.Equal(t, "b-old", planB.Deletes[0].Event.Ref)
	assert.Equal(t, ReasonStale, planB.Deletes[0].Reason)

	assert.Len(t, planB.Creates, 1)
	assert.True(t, planB.Creates[0].Event.Start.Equal(at(10)))
}

// TestBuildPlan_ConfirmedBlockerUntouched verifies that a blocker
// matching a live meeting key produces no action at all.
func TestBuildPlan_ConfirmedBlockerUntouched(t *testing.T) {
	snaps := []calendar.AccountSnapshot{
		{Name: "a", Meetings: []calendar.Event{
			makeMeeting("a", "1", "Design Sync", at(10), at(11)),
		}},
		{Name: "b", Blockers: []calendar.Event{
			makeBlocker("b", "1", "b-1", at(10), at(11)),
		}},
	}

	plan := BuildPlan(snaps, Options{})

	assert.True(t, plan.Empty())
	assert.Equal(t, 1, plan.Summary.Confirmed)
}

// TestBuildPlan_Idempotence verifies that applying a plan and running
// the engine again yields no further actions.
func TestBuildPlan_Idempotence(t *testing.T) {
	snaps := []calendar.AccountSnapshot{
		{Name: "a", Meetings: []calendar.Event{
			makeMeeting("a", "1", "Design Sync", at(10), at(11)),
			makeMeeting("a", "2", "1:1 Agata", at(14), at(15)),
		}},
		{Name: "b", Meetings: []calendar.Event{
			makeMeeting("b", "3", "Dentist", at(8), at(9)),
		}, Blockers: []calendar.Event{
			makeBlocker("b", "gone", "b-stale", at(16), at(17)),
		}},
		{Name: "c"},
	}

	first := BuildPlan(snaps, Options{})
	assert.False(t, first.Empty())

	snaps = applyToSnapshots(snaps, first)

	second := BuildPlan(snaps, Options{})
	assert.True(t, second.Empty(), "second pass should have nothing to do, got %+v", second.Summary)
}

// TestBuildPlan_CoverageAndNonDuplication verifies that after applying
// the plan every eligible meeting is covered exactly once in every
// other account.
func TestBuildPlan_CoverageAndNonDuplication(t *testing.T) {
	snaps := []calendar.AccountSnapshot{
		{Name: "a", Meetings: []calendar.Event{
			makeMeeting("a", "1", "Design Sync", at(10), at(11)),
		}},
		{Name: "b", Meetings: []calendar.Event{
			makeMeeting("b", "2", "Dentist", at(12), at(13)),
		}, Blockers: []calendar.Event{
			// Already covers meeting 1.
			makeBlocker("b", "1", "b-1", at(10), at(11)),
		}},
		{Name: "c"},
	}

	plan := BuildPlan(snaps, Options{})
	snaps = applyToSnapshots(snaps, plan)

	// Collect eligible meetings and blocker keys per account.
	type cover map[calendar.BlockerKey]int
	covers := make(map[string]cover)
	for _, snap := range snaps {
		c := make(cover)
		for _, b := range snap.Blockers {
			c[calendar.BlockerKeyOf(b)]++
		}
		covers[snap.Name] = c
	}

	for _, snap := range snaps {
		for _, m := range snap.Meetings {
			key := calendar.MeetingKey(m)
			for _, other := range snaps {
				if other.Name == snap.Name {
					assert.Zero(t, covers[other.Name][key], "own account must not hold a blocker for %s", m.SourceID)
					continue
				}
				assert.Equal(t, 1, covers[other.Name][key], "account %s should cover meeting %s exactly once", other.Name, m.SourceID)
			}
		}
	}

	// No account holds two blockers with the same key.
	for name, c := range covers {
		for key, count := range c {
			assert.LessOrEqual(t, count, 1, "account %s has duplicate key %+v", name, key)
		}
	}
}

// TestBuildPlan_DuplicateBlockerKeys verifies that of two blockers
// sharing a key one is kept and the extras are deleted.
func TestBuildPlan_DuplicateBlockerKeys(t *testing.T) {
	snaps := []calendar.AccountSnapshot{
		{Name: "a", Meetings: []calendar.Event{
			makeMeeting("a", "1", "Design Sync", at(10), at(11)),
		}},
		{Name: "b", Blockers: []calendar.Event{
			makeBlocker("b", "1", "b-first", at(10), at(11)),
			makeBlocker("b", "1", "b-extra", at(10), at(11)),
		}},
	}

	plan := BuildPlan(snaps, Options{})

	planB := accountPlan(t, plan, "b")
	assert.Empty(t, planB.Creates)
	assert.Len(t, planB.Deletes, 1)
	assert.Equal(t, "b-extra", planB.Deletes[0].Event.Ref)
	assert.Equal(t, ReasonDuplicate, planB.Deletes[0].Reason)
	assert.Equal(t, 1, plan.Summary.Duplicates)
	assert.Equal(t, 1, plan.Summary.Confirmed)
}

// TestBuildPlan_IneligibleMeetingsGenerateNothing verifies the
// exclusion rules end to end: no creates anywhere for excluded input.
func TestBuildPlan_IneligibleMeetingsGenerateNothing(t *testing.T) {
	allDay := makeMeeting("a", "1", "Offsite", at(0), at(24))
	allDay.AllDay = true

	free := makeMeeting("a", "2", "Focus time", at(9), at(10))
	free.Busy = calendar.BusyStatusFree

	zeroDur := makeMeeting("a", "3", "Ping", at(11), at(11))

	manual := makeMeeting("a", "4", "blocker", at(13), at(14))

	snaps := []calendar.AccountSnapshot{
		{Name: "a", Meetings: []calendar.Event{allDay, free, zeroDur, manual}},
		{Name: "b"},
	}

	plan := BuildPlan(snaps, Options{})

	assert.True(t, plan.Empty())
	assert.Equal(t, 0, plan.Summary.EligibleMeetings)
}

// TestBuildPlan_CustomSubject verifies the configured placeholder label
// is used on create templates.
func TestBuildPlan_CustomSubject(t *testing.T) {
	snaps := []calendar.AccountSnapshot{
		{Name: "a", Meetings: []calendar.Event{
			makeMeeting("a", "1", "Design Sync", at(10), at(11)),
		}},
		{Name: "b"},
	}

	plan := BuildPlan(snaps, Options{BlockerSubject: "Busy elsewhere"})

	planB := accountPlan(t, plan, "b")
	assert.Equal(t, "Busy elsewhere", planB.Creates[0].Event.Subject)
}

// TestBuildResetPlan_LocationProtected verifies that a location on a
// blocker shields it from reset.
func TestBuildResetPlan_LocationProtected(t *testing.T) {
	protected := makeBlocker("a", "1", "a-1", at(10), at(11))
	protected.Location = "Room 2.04"

	snaps := []calendar.AccountSnapshot{
		{Name: "a", Blockers: []calendar.Event{
			protected,
			makeBlocker("a", "2", "a-2", at(12), at(13)),
		}},
		{Name: "b", Blockers: []calendar.Event{
			makeBlocker("b", "3", "b-1", at(9), at(10)),
		}},
	}

	plan := BuildResetPlan(snaps)

	planA := accountPlan(t, plan, "a")
	assert.Len(t, planA.Deletes, 1)
	assert.Equal(t, "a-2", planA.Deletes[0].Event.Ref)
	assert.Equal(t, ReasonReset, planA.Deletes[0].Reason)

	planB := accountPlan(t, plan, "b")
	assert.Len(t, planB.Deletes, 1)

	assert.Equal(t, 1, plan.Summary.Protected)
	assert.Equal(t, 2, plan.Summary.Deletes)
}

// TestBuildResetPlan_IgnoresRealMeetings verifies reset never touches
// untagged events.
func TestBuildResetPlan_IgnoresRealMeetings(t *testing.T) {
	snaps := []calendar.AccountSnapshot{
		{Name: "a", Meetings: []calendar.Event{
			makeMeeting("a", "1", "Design Sync", at(10), at(11)),
		}},
	}

	plan := BuildResetPlan(snaps)
	assert.True(t, plan.Empty())
}

// TestBuildPlan_DeterministicDeletes verifies stale deletes come out
// ordered by start time regardless of input order.
func TestBuildPlan_DeterministicDeletes(t *testing.T) {
	snaps := []calendar.AccountSnapshot{
		{Name: "a"},
		{Name: "b", Blockers: []calendar.Event{
			makeBlocker("b", "z", "b-3", at(15), at(16)),
			makeBlocker("b", "y", "b-1", at(9), at(10)),
			makeBlocker("b", "x", "b-2", at(12), at(13)),
		}},
	}

	plan := BuildPlan(snaps, Options{})

	planB := accountPlan(t, plan, "b")
	assert.Len(t, planB.Deletes, 3)
	assert.Equal(t, "b-1", planB.Deletes[0].Event.Ref)
	assert.Equal(t, "b-2", planB.Deletes[1].Event.Ref)
	assert.Equal(t, "b-3", planB.Deletes[2].Event.Ref)
}

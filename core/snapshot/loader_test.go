package snapshot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"calblock/core/calendar"
	"calblock/core/calendar/mocks"
)

var day = time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

func busy(id, subject string, startHour int) calendar.Event {
	start := day.Add(time.Duration(startHour) * time.Hour)
	return calendar.Event{
		SourceID: id,
		Subject:  subject,
		Start:    start,
		End:      start.Add(time.Hour),
		Busy:     calendar.BusyStatusBusy,
		Ref:      "ref-" + id,
	}
}

// TestLoad_PartitionsAndStampsOwner verifies events are split on the
// correlation tag and carry their account name.
func TestLoad_PartitionsAndStampsOwner(t *testing.T) {
	provider := new(mocks.Provider)
	window := calendar.NewWindow(day, 7)

	blocker := busy("b-1", "Blocker", 9)
	blocker.CorrelationTag = "m-9"

	provider.On("ListEvents", mock.Anything, "work", window).
		Return([]calendar.Event{busy("m-1", "Design Sync", 10), blocker}, nil)
	provider.On("ListEvents", mock.Anything, "private", window).
		Return([]calendar.Event{}, nil)

	loader := NewLoader(provider, zap.NewNop())
	snaps, err := loader.Load(context.Background(), []string{"work", "private"}, window)

	assert.NoError(t, err)
	assert.Len(t, snaps, 2)

	work := snaps[0]
	assert.Equal(t, "work", work.Name)
	assert.Len(t, work.Meetings, 1)
	assert.Len(t, work.Blockers, 1)
	assert.Equal(t, "work", work.Meetings[0].Owner)
	assert.Equal(t, "work", work.Blockers[0].Owner)

	provider.AssertExpectations(t)
}

// TestLoad_DropsDuplicateOccurrences verifies expansion duplicates
// (same id, span, subject) collapse to one meeting.
func TestLoad_DropsDuplicateOccurrences(t *testing.T) {
	provider := new(mocks.Provider)
	window := calendar.NewWindow(day, 7)

	m := busy("m-1", "Weekly", 10)
	dupCase := m
	dupCase.Subject = "WEEKLY"
	other := busy("m-1", "Weekly", 12)

	provider.On("ListEvents", mock.Anything, "work", window).
		Return([]calendar.Event{m, dupCase, other}, nil)
	provider.On("ListEvents", mock.Anything, "private", window).
		Return([]calendar.Event{}, nil)

	loader := NewLoader(provider, zap.NewNop())
	snaps, err := loader.Load(context.Background(), []string{"work", "private"}, window)

	assert.NoError(t, err)
	assert.Len(t, snaps[0].Meetings, 2)
}

// TestLoad_AbortsOnReadError verifies no partial view is returned and
// the failing account is named.
func TestLoad_AbortsOnReadError(t *testing.T) {
	provider := new(mocks.Provider)
	window := calendar.NewWindow(day, 7)

	provider.On("ListEvents", mock.Anything, "work", window).
		Return([]calendar.Event{busy("m-1", "Design Sync", 10)}, nil)
	provider.On("ListEvents", mock.Anything, "private", window).
		Return(nil, errors.New("503 service unavailable"))

	loader := NewLoader(provider, zap.NewNop())
	snaps, err := loader.Load(context.Background(), []string{"work", "private"}, window)

	assert.Nil(t, snaps)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "private")
}

// TestLoad_RequiresTwoAccounts verifies the minimum account check.
func TestLoad_RequiresTwoAccounts(t *testing.T) {
	provider := new(mocks.Provider)
	loader := NewLoader(provider, zap.NewNop())

	_, err := loader.Load(context.Background(), []string{"work"}, calendar.Window{})
	assert.ErrorIs(t, err, calendar.ErrTooFewAccounts)
	provider.AssertNotCalled(t, "ListEvents", mock.Anything, mock.Anything, mock.Anything)
}

// TestLoadOne_SingleAccountPeek verifies the inspection path accepts a
// single account.
func TestLoadOne_SingleAccountPeek(t *testing.T) {
	provider := new(mocks.Provider)
	window := calendar.NewWindow(day, 7)

	provider.On("ListEvents", mock.Anything, "work", window).
		Return([]calendar.Event{busy("m-1", "Design Sync", 10)}, nil)

	loader := NewLoader(provider, zap.NewNop())
	snap, err := loader.LoadOne(context.Background(), "work", window)

	assert.NoError(t, err)
	assert.Equal(t, "work", snap.Name)
	assert.Len(t, snap.Meetings, 1)
}

// TestLoadBlockers_UnboundedAndBlockersOnly verifies the reset feed:
// zero window, meetings dropped, single account accepted.
func TestLoadBlockers_UnboundedAndBlockersOnly(t *testing.T) {
	provider := new(mocks.Provider)

	blocker := busy("b-1", "Blocker", 9)
	blocker.CorrelationTag = "m-9"

	provider.On("ListEvents", mock.Anything, "work", calendar.Window{}).
		Return([]calendar.Event{busy("m-1", "Design Sync", 10), blocker}, nil)

	loader := NewLoader(provider, zap.NewNop())
	snaps, err := loader.LoadBlockers(context.Background(), []string{"work"})

	assert.NoError(t, err)
	assert.Len(t, snaps, 1)
	assert.Empty(t, snaps[0].Meetings)
	assert.Len(t, snaps[0].Blockers, 1)
}

// TestLoad_SortsDeterministically verifies ordering by start time.
func TestLoad_SortsDeterministically(t *testing.T) {
	provider := new(mocks.Provider)
	window := calendar.NewWindow(day, 7)

	provider.On("ListEvents", mock.Anything, "work", window).
		Return([]calendar.Event{
			busy("m-3", "C", 15),
			busy("m-1", "A", 9),
			busy("m-2", "B", 12),
		}, nil)
	provider.On("ListEvents", mock.Anything, "private", window).
		Return([]calendar.Event{}, nil)

	loader := NewLoader(provider, zap.NewNop())
	snaps, err := loader.Load(context.Background(), []string{"work", "private"}, window)

	assert.NoError(t, err)
	ids := []string{snaps[0].Meetings[0].SourceID, snaps[0].Meetings[1].SourceID, snaps[0].Meetings[2].SourceID}
	assert.Equal(t, []string{"m-1", "m-2", "m-3"}, ids)
}

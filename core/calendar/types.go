package calendar

import "time"

// BusyStatus describes how an event counts against availability.
type BusyStatus string

const (
	// BusyStatusBusy blocks the covered time span.
	BusyStatusBusy BusyStatus = "busy"
	// BusyStatusFree leaves the covered time span available.
	BusyStatusFree BusyStatus = "free"
)

// Event represents a single calendar occurrence. Recurring series are
// expanded by the provider, so one Event always covers exactly one
// concrete time span.
type Event struct {
	// SourceID identifies the event within its account. Expanded
	// occurrences of a recurring series all share the series ID.
	SourceID string `json:"source_id"`

	// Start is the occurrence start instant.
	Start time.Time `json:"start"`

	// End is the occurrence end instant.
	End time.Time `json:"end"`

	// Subject is the raw, unnormalized event title.
	Subject string `json:"subject"`

	// AllDay marks date-only events.
	AllDay bool `json:"all_day"`

	// Busy is the availability state the event projects.
	Busy BusyStatus `json:"busy"`

	// Location is the free-form location text, if any.
	Location string `json:"location,omitempty"`

	// Organizer is the organizer address. Empty when the backend does
	// not expose one.
	Organizer string `json:"organizer,omitempty"`

	// Owner is the name of the account the event was loaded from.
	Owner string `json:"owner"`

	// CorrelationTag carries the source meeting ID on placeholders
	// created by this tool. Empty on real meetings.
	CorrelationTag string `json:"correlation_tag,omitempty"`

	// Ref is the opaque provider handle used to delete the event.
	Ref string `json:"-"`
}

// IsBlocker reports whether the event is a placeholder created by this
// tool, as opposed to a real meeting.
func (e Event) IsBlocker() bool {
	return e.CorrelationTag != ""
}

// Duration returns the length of the occurrence span.
func (e Event) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// BlockerKey pairs a source meeting ID with an occurrence start.
// The start is folded to Unix seconds so keys compare equal across
// time zone representations of the same instant.
type BlockerKey struct {
	// SourceID is the ID of the meeting the blocker stands in for.
	SourceID string

	// StartUnix is the occurrence start in Unix seconds.
	StartUnix int64
}

// MeetingKey derives the key a placeholder covering the given meeting
// occurrence would carry.
func MeetingKey(e Event) BlockerKey {
	return BlockerKey{SourceID: e.SourceID, StartUnix: e.Start.Unix()}
}

// BlockerKeyOf derives the key of an existing placeholder from its
// correlation tag and start.
func BlockerKeyOf(e Event) BlockerKey {
	return BlockerKey{SourceID: e.CorrelationTag, StartUnix: e.Start.Unix()}
}

// AccountSnapshot is one account's view for a pass: its real meetings
// and its existing placeholders, scoped to the active window, with
// recurrences already expanded. Snapshots are rebuilt from a fresh
// provider read every pass and discarded afterwards.
type AccountSnapshot struct {
	// Name identifies the account.
	Name string `json:"name"`

	// Meetings are the real (untagged) events.
	Meetings []Event `json:"meetings"`

	// Blockers are the placeholders created by this tool.
	Blockers []Event `json:"blockers"`
}

// Window bounds a sync pass in time. The zero Window is unbounded and
// lists everything; the reset operator relies on that.
type Window struct {
	// Start is the inclusive lower bound.
	Start time.Time `json:"start"`

	// End is the inclusive upper bound.
	End time.Time `json:"end"`
}

// NewWindow returns a window spanning the given number of days from start.
func NewWindow(start time.Time, days int) Window {
	return Window{Start: start, End: start.AddDate(0, 0, days)}
}

// StartOfDay returns t truncated to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// IsZero reports whether the window is unbounded.
func (w Window) IsZero() bool {
	return w.Start.IsZero() && w.End.IsZero()
}

// Contains reports whether the instant falls inside the window.
// An unbounded window contains every instant.
func (w Window) Contains(t time.Time) bool {
	if w.IsZero() {
		return true
	}
	return !t.Before(w.Start) && !t.After(w.End)
}

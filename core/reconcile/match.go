package reconcile

import (
	"strings"

	"calblock/core/calendar"
)

// Matcher decides whether two events from different accounts represent
// the same meeting from the user's perspective. The zero value is the
// default policy: subject-suffix matching only, no minimum length.
type Matcher struct {
	// CompareOrganizer treats events with differing organizers as
	// distinct even when the subject suffix matches. Events without
	// organizer information are unaffected.
	CompareOrganizer bool

	// MinSuffix refuses equivalence when the compared suffix would be
	// shorter than this many characters. Zero disables the threshold,
	// which keeps the heuristic's historical behavior where a
	// single-character subject can match near-arbitrarily.
	MinSuffix int
}

// Equivalent reports whether the two events are the same meeting.
// Both occurrence start and end must be identical; given that, the
// normalized subjects are compared by their common trailing suffix,
// case-insensitively. The trailing portion of a title is stable across
// the organizer-style prefixes different accounts' invite copies carry,
// so suffix comparison tolerates prefix differences without requiring
// exact equality. The heuristic is knowingly lossy: unrelated meetings
// sharing a time slot and a title tail will be conflated.
func (m Matcher) Equivalent(a, b calendar.Event) bool {
	if !a.Start.Equal(b.Start) || !a.End.Equal(b.End) {
		return false
	}
	if m.CompareOrganizer && a.Organizer != "" && b.Organizer != "" &&
		!strings.EqualFold(a.Organizer, b.Organizer) {
		return false
	}

	na := []rune(Normalize(a.Subject))
	nb := []rune(Normalize(b.Subject))
	n := len(na)
	if len(nb) < n {
		n = len(nb)
	}
	if n == 0 {
		// A blank subject only matches another blank subject.
		return len(na) == 0 && len(nb) == 0
	}
	if m.MinSuffix > 0 && n < m.MinSuffix {
		return false
	}
	return strings.EqualFold(string(na[len(na)-n:]), string(nb[len(nb)-n:]))
}

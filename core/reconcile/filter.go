package reconcile

import (
	"strings"

	"calblock/core/calendar"
)

// Subjects whose normalized form equals one of these never generate
// blockers: they are manual blockers the user placed themselves.
// Exact equality is deliberate; containment would also exclude real
// meetings like "Roadblock review".
var excludedSubjects = map[string]struct{}{
	"block":   {},
	"blocker": {},
}

// Eligible reports whether a real meeting generates blockers in other
// accounts. All-day events, non-busy events, events with a degenerate
// time span and subjects in the exclusion set are ineligible; they
// produce no blockers anywhere and do not suppress blocker creation by
// other meetings. Placeholders are never eligible.
func Eligible(e calendar.Event) bool {
	if e.IsBlocker() {
		return false
	}
	if e.AllDay {
		return false
	}
	if e.Busy != calendar.BusyStatusBusy {
		return false
	}
	if !e.End.After(e.Start) {
		return false
	}
	if _, excluded := excludedSubjects[strings.ToLower(Normalize(e.Subject))]; excluded {
		return false
	}
	return true
}

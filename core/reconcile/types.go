package reconcile

import "calblock/core/calendar"

// DefaultBlockerSubject is the placeholder label used when no custom
// subject is configured. Blockers never carry the source meeting's
// title, so details do not leak across accounts.
const DefaultBlockerSubject = "Blocker"

// Delete reasons attached to planned delete actions.
const (
	// ReasonStale marks a blocker whose key matches no live meeting.
	ReasonStale = "no live meeting for key"
	// ReasonDuplicate marks the extra copies of a duplicated blocker key.
	ReasonDuplicate = "duplicate blocker key"
	// ReasonReset marks a blocker removed by the reset operator.
	ReasonReset = "reset"
)

// ActionType represents the type of mutation action.
type ActionType string

const (
	// ActionCreateBlocker creates a placeholder event.
	ActionCreateBlocker ActionType = "create_blocker"
	// ActionDeleteBlocker removes an existing placeholder event.
	ActionDeleteBlocker ActionType = "delete_blocker"
)

// Action represents a planned mutation against one account's calendar.
type Action struct {
	// Type specifies the action to perform.
	Type ActionType `json:"type"`

	// Account is the calendar the action applies to.
	Account string `json:"account"`

	// Reason explains why this action is needed. Empty for creates.
	Reason string `json:"reason,omitempty"`

	// Event is the blocker template for creates, or the existing
	// blocker (with its Ref) for deletes.
	Event calendar.Event `json:"event"`
}

// AccountPlan holds the planned actions for a single account.
type AccountPlan struct {
	// Account is the calendar these actions apply to.
	Account string `json:"account"`

	// Creates are the placeholder events to insert.
	Creates []Action `json:"creates,omitempty"`

	// Deletes are the existing placeholders to remove.
	Deletes []Action `json:"deletes,omitempty"`
}

// Plan contains the per-account action lists and aggregate counts for
// one pass. Execution order between accounts is irrelevant: actions
// only ever touch their own account's calendar.
type Plan struct {
	// Accounts contains one entry per target account, in input order.
	Accounts []AccountPlan `json:"accounts"`

	// Summary provides aggregate counts.
	Summary Summary `json:"summary"`
}

// Empty reports whether the plan contains no actions. A pass over
// already-reconciled calendars yields an empty plan.
func (p *Plan) Empty() bool {
	return p.Summary.Creates == 0 && p.Summary.Deletes == 0
}

// TotalActions returns the number of planned mutations.
func (p *Plan) TotalActions() int {
	return p.Summary.Creates + p.Summary.Deletes
}

// Summary provides aggregate statistics for a plan.
type Summary struct {
	// Accounts is the number of accounts covered by the pass.
	Accounts int `json:"accounts"`

	// EligibleMeetings is the size of the global eligible meeting pool.
	EligibleMeetings int `json:"eligible_meetings"`

	// Creates counts planned blocker insertions.
	Creates int `json:"creates"`

	// Deletes counts planned blocker removals.
	Deletes int `json:"deletes"`

	// Confirmed counts existing blockers that still match a live
	// meeting and were left untouched.
	Confirmed int `json:"confirmed"`

	// SkippedEquivalent counts meetings that needed no blocker because
	// the target account already sees an equivalent meeting natively.
	SkippedEquivalent int `json:"skipped_equivalent"`

	// Duplicates counts extra blockers sharing an already-seen key.
	Duplicates int `json:"duplicates"`

	// Protected counts blockers the reset operator refused to delete
	// because a location was attached to them.
	Protected int `json:"protected"`
}

// Options controls plan construction.
type Options struct {
	// BlockerSubject is the label given to created placeholders.
	// Empty selects DefaultBlockerSubject.
	BlockerSubject string

	// Matcher is the equivalence policy used to suppress blockers for
	// meetings the target account already sees natively.
	Matcher Matcher
}

package calendar

import (
	"context"
	"errors"
)

var (
	// ErrTooFewAccounts is returned when fewer than two accounts are
	// configured; a sync pass needs at least one source and one target.
	ErrTooFewAccounts = errors.New("calendar: need at least two accounts")

	// ErrUnknownAccount is returned when an account name does not match
	// any configured account.
	ErrUnknownAccount = errors.New("calendar: unknown account")

	// ErrNotFound is returned when a referenced event no longer exists.
	ErrNotFound = errors.New("calendar: event not found")
)

// Provider defines the operations the sync engine needs from a calendar
// backend.
type Provider interface {
	// ListEvents returns the expanded occurrences of the account's
	// events whose start falls inside the window. A zero window lists
	// everything. Placeholders must come back with the CorrelationTag
	// they were created with.
	ListEvents(ctx context.Context, account string, window Window) ([]Event, error)

	// CreateBlocker creates a placeholder event in the account. The
	// template carries subject, span, busy state and correlation tag.
	CreateBlocker(ctx context.Context, account string, tpl Event) error

	// DeleteEvent removes the event identified by ref from the account.
	DeleteEvent(ctx context.Context, account string, ref string) error
}

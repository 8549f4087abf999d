// Package caldav implements the calendar.Provider contract over the
// CalDAV protocol.
//
// Each configured account gets its own lazily connected client with
// basic authentication. The calendar collection to operate on is
// either configured per account or resolved once through the standard
// discovery chain (current-user-principal, calendar-home-set, first
// calendar).
//
// # Listing
//
// ListEvents issues a calendar-query REPORT scoped to the window and
// expands recurring series into discrete occurrences: RRULE via
// rrule-go, EXDATE exceptions removed, RECURRENCE-ID overrides
// substituted (cancelled overrides drop their occurrence). An
// occurrence is returned when its start falls inside the window. A
// series whose rule cannot be expanded is logged and skipped without
// failing the listing.
//
// # Placeholders
//
// CreateBlocker writes a single-VEVENT object with a fresh
// "<uuid>@calblock" UID. The source meeting occurrence is recorded in
// the X-CALBLOCK-SOURCE-ID property, which ListEvents reads back as
// the correlation tag. DeleteEvent removes an object by the path a
// listing reported.
//
// # Usage
//
//	provider := caldav.New(cfg.Accounts, log)
//	events, err := provider.ListEvents(ctx, "work", window)
//
// The provider is safe for concurrent use; the status API may trigger
// a pass while another is inspecting a snapshot.
package caldav

// Package calendar defines the provider-neutral data model for the sync
// engine: events, blocker keys, sync windows, and the Provider contract
// every calendar backend implements.
//
// # Events
//
// An Event is always a single concrete occurrence. Providers expand
// recurring series before handing events to the engine, so the engine
// never reasons about recurrence rules. Placeholder events created by
// this tool carry a CorrelationTag naming the meeting they stand in for;
// real meetings have an empty tag. That tag is the only thing that
// distinguishes the two classes.
//
// # Blocker Keys
//
// A BlockerKey pairs a source meeting ID with an occurrence start folded
// to Unix seconds. The engine uses it to match placeholders against the
// meetings that justify them, so the key must survive a round trip
// through the backend: providers persist the tag on create and restore
// it on list.
//
// # Provider Contract
//
// The Provider interface abstracts the calendar backend, making it easy
// to mock calendar interactions for unit testing (see calendar/mocks).
// Implementations must tolerate being called serially within a pass and
// should honor context cancellation on every call.
//
// # Usage
//
//	events, err := provider.ListEvents(ctx, "work", calendar.NewWindow(today, 30))
package calendar

// Package snapshot turns provider reads into the immutable per-account
// snapshots the reconcile engine consumes.
//
// The loader is a thin wrapper over calendar.Provider: it lists one
// account at a time (provider sessions are not safe for concurrent use
// within a pass), partitions events into real meetings and blockers,
// drops duplicate expanded occurrences, stamps the owning account and
// sorts everything so downstream plans are deterministic.
//
// A read failure for any account aborts the whole load: the engine's
// invariants need a complete cross-account view, so there is no partial
// reconciliation. Snapshots carry no provider handles; once Load
// returns, the provider is not touched again until the executor runs.
package snapshot

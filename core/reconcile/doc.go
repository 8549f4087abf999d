// Package reconcile computes and applies blocker plans: the set of
// placeholder creates and deletes that brings every account's calendar
// in line with the busy time owned by the other accounts.
//
// The package is split into pure computation and an executor:
//
//  1. Engine: BuildPlan diffs the global pool of eligible meetings
//     against each target account's existing blockers and emits typed
//     actions with reasons. BuildResetPlan is the degenerate variant
//     that deletes all unprotected blockers.
//
//  2. Matcher: the time + subject-suffix heuristic that detects a
//     meeting already visible natively in a target account, so no
//     blocker is synthesized for it.
//
//  3. Executor: applies a plan through a calendar.Provider, honoring
//     dry-run and continuing past individual action failures.
//
// # Purity
//
// BuildPlan and BuildResetPlan never touch the provider and never
// return errors: they are pure functions over immutable snapshots.
// Every error surface lives in the executor (and in the snapshot
// loader that feeds the engine). Plans are recomputed from scratch
// each pass; nothing in this package carries state between passes.
//
// # Usage Example
//
//	plan := reconcile.BuildPlan(snapshots, reconcile.Options{})
//	report, err := reconcile.NewExecutor(provider, log).Apply(ctx, plan, reconcile.ApplyOptions{DryRun: true})
package reconcile

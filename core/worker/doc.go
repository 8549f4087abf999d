// Package worker runs reconciliation passes.
//
// One pass is: load fresh account snapshots, build the plan, apply it,
// then fan the outcome out to the configured sinks (journal, archive,
// notifications). Passes hold no state between runs; everything is
// recomputed from live calendars, so a crashed or skipped pass needs no
// recovery beyond running the next one.
//
// RunOnce executes a single pass and is safe to call concurrently:
// simultaneous callers coalesce onto one in-flight pass and share its
// result. Start runs RunOnce on a cron schedule; a tick that fires
// while a pass is still running is delayed, never run in parallel.
//
// # Usage
//
//	w := worker.New(loader, executor, cfg, log)
//	res, err := w.RunOnce(ctx) // one-shot
//	err = w.Start(ctx)         // cron until ctx is done
package worker

// Package status exposes the operational state of the running watcher.
//
// It provides the HTTP surface used by humans and monitoring:
//
//   - GET /healthz: liveness probe, always 200 while the server runs.
//   - GET /status: uptime, schedule, next run and the last pass result.
//   - POST /sync: triggers a pass outside the schedule (returns 202;
//     concurrent triggers coalesce onto one running pass).
//   - GET /passes: recent pass history from the journal.
//   - GET /passes/:id/actions: per-action outcomes of one pass.
//
// The history endpoints answer 503 when no journal is configured.
package status

// Package archive uploads the plan of each finished pass to object
// storage for later inspection.
//
// One JSON document is written per pass, keyed by the pass start time:
//
//	<prefix>/2024-06-03T08:00:00Z.json
//
// The archive is write-only from the application's point of view; it
// exists so that a surprising create or delete can be traced back to
// the exact plan that produced it. Passes never read archived plans.
//
// # Client Interface
//
// The Client interface covers the two MinIO operations the archiver
// needs, making it easy to mock uploads for unit testing (as seen in
// core/archive/mocks). Both AWS S3 and self-hosted MinIO instances work.
//
// # Usage
//
//	client, err := archive.NewClient(cfg)
//	arch := archive.NewArchiver(client, cfg, log)
//	err = arch.StorePlan(ctx, "sync", startedAt, plan)
package archive

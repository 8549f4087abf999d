// Package journal persists pass history for observability.
//
// It wraps GORM to record one PassRecord per reconciliation pass plus
// one ActionRecord per planned mutation with its outcome. The engine
// itself never reads the journal: reconciliation stays stateless and is
// derived from a fresh provider read every pass, so a lost or disabled
// journal only costs history, never correctness.
//
// # Drivers
//
// Open supports sqlite (default, file-based, good for a single-host
// deployment) and mysql. The schema is migrated automatically on open.
//
// # Usage
//
//	j, err := journal.Open(cfg.Journal)
//	if err != nil {
//	    log.Fatal("Journal unavailable", zap.Error(err))
//	}
//	defer j.Close()
//
//	rec := journal.NewPassRecord(journal.ModeSync, startedAt, elapsed, window, plan, report, nil)
//	_ = j.RecordPass(ctx, rec)
package journal

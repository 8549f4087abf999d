package journal

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"calblock/core/calendar"
	"calblock/core/reconcile"
)

// Pass modes recorded in the journal.
const (
	ModeSync  = "sync"
	ModeReset = "reset"
)

// Action outcomes recorded in the journal.
const (
	// OutcomePlanned means the action was computed but not executed (dry-run).
	OutcomePlanned = "planned"
	// OutcomeApplied means the provider accepted the action.
	OutcomeApplied = "applied"
	// OutcomeFailed means the provider rejected the action.
	OutcomeFailed = "failed"
)

// PassRecord is the journal row for one reconciliation pass.
type PassRecord struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	StartedAt   time.Time `gorm:"index" json:"started_at"`
	DurationMS  int64     `json:"duration_ms"`
	Mode        string    `json:"mode"`
	DryRun      bool      `json:"dry_run"`
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`
	Accounts    int       `json:"accounts"`
	Eligible    int       `json:"eligible"`
	Creates     int       `json:"creates"`
	Deletes     int       `json:"deletes"`
	Applied     int       `json:"applied"`
	Failed      int       `json:"failed"`
	Error       string    `json:"error,omitempty"`

	Actions []ActionRecord `gorm:"foreignKey:PassID" json:"actions,omitempty"`
}

// ActionRecord is the journal row for one planned mutation.
type ActionRecord struct {
	ID      uint      `gorm:"primaryKey" json:"id"`
	PassID  uint      `gorm:"index" json:"pass_id"`
	Account string    `json:"account"`
	Type    string    `json:"type"`
	Tag     string    `json:"tag"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Reason  string    `json:"reason,omitempty"`
	Outcome string    `json:"outcome"`
	Error   string    `json:"error,omitempty"`
}

// Journal records pass history in a database.
type Journal struct {
	db *gorm.DB
}

// Open connects to the configured database and migrates the schema.
func Open(cfg Config) (*Journal, error) {
	// Suppress GORM logging; the application logger reports outcomes.
	gormConfig := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	}

	var db *gorm.DB
	var err error
	switch cfg.Driver {
	case "", "sqlite":
		db, err = gorm.Open(sqlite.Open(cfg.Path), gormConfig)
	case "mysql":
		// Special characters in the password must be URL encoded for
		// the mysql DSN.
		userInfo := url.UserPassword(cfg.User, cfg.Password).String()
		dsn := fmt.Sprintf("%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			userInfo, cfg.Host, cfg.Port, cfg.Name)
		db, err = gorm.Open(mysql.Open(dsn), gormConfig)
	default:
		return nil, fmt.Errorf("unsupported journal driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}

	if err := db.AutoMigrate(&PassRecord{}, &ActionRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate journal schema: %w", err)
	}

	return &Journal{db: db}, nil
}

// RecordPass stores one pass with its actions.
func (j *Journal) RecordPass(ctx context.Context, rec *PassRecord) error {
	if err := j.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("failed to record pass: %w", err)
	}
	return nil
}

// RecentPasses returns the latest passes, newest first, without their
// actions.
func (j *Journal) RecentPasses(ctx context.Context, limit int) ([]PassRecord, error) {
	var passes []PassRecord
	err := j.db.WithContext(ctx).
		Order("started_at desc").
		Limit(limit).
		Find(&passes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load recent passes: %w", err)
	}
	return passes, nil
}

// PassActions returns the actions recorded for one pass.
func (j *Journal) PassActions(ctx context.Context, passID uint) ([]ActionRecord, error) {
	var actions []ActionRecord
	err := j.db.WithContext(ctx).
		Where("pass_id = ?", passID).
		Order("id").
		Find(&actions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load actions for pass %d: %w", passID, err)
	}
	return actions, nil
}

// Close releases the underlying connection.
func (j *Journal) Close() error {
	sqlDB, err := j.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// NewPassRecord builds the journal row for a finished pass. Plan and
// report may be nil when the pass failed before computing anything.
func NewPassRecord(mode string, startedAt time.Time, elapsed time.Duration, window calendar.Window, plan *reconcile.Plan, report *reconcile.Report, passErr error) *PassRecord {
	rec := &PassRecord{
		StartedAt:   startedAt,
		DurationMS:  elapsed.Milliseconds(),
		Mode:        mode,
		WindowStart: window.Start,
		WindowEnd:   window.End,
	}
	if passErr != nil {
		rec.Error = passErr.Error()
	}
	if report != nil {
		rec.DryRun = report.DryRun
		rec.Applied = report.Applied
		rec.Failed = report.Failed
	}
	if plan == nil {
		return rec
	}

	rec.Accounts = plan.Summary.Accounts
	rec.Eligible = plan.Summary.EligibleMeetings
	rec.Creates = plan.Summary.Creates
	rec.Deletes = plan.Summary.Deletes

	failures := make(map[string]string)
	if report != nil {
		for _, f := range report.Failures {
			failures[actionKey(f.Action)] = f.Error
		}
	}

	for _, ap := range plan.Accounts {
		for _, actions := range [][]reconcile.Action{ap.Deletes, ap.Creates} {
			for _, a := range actions {
				ar := ActionRecord{
					Account: a.Account,
					Type:    string(a.Type),
					Tag:     a.Event.CorrelationTag,
					Start:   a.Event.Start,
					End:     a.Event.End,
					Reason:  a.Reason,
					Outcome: OutcomeApplied,
				}
				if report == nil || report.DryRun {
					ar.Outcome = OutcomePlanned
				} else if msg, failed := failures[actionKey(a)]; failed {
					ar.Outcome = OutcomeFailed
					ar.Error = msg
				}
				rec.Actions = append(rec.Actions, ar)
			}
		}
	}

	return rec
}

func actionKey(a reconcile.Action) string {
	return a.Account + "|" + string(a.Type) + "|" + a.Event.Ref + "|" + a.Event.CorrelationTag + "|" + a.Event.Start.UTC().Format(time.RFC3339)
}

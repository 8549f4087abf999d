package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"

	"calblock/core/reconcile"
)

// passDocument is the JSON shape written for each pass.
type passDocument struct {
	// Mode is "sync" or "reset".
	Mode string `json:"mode"`
	// StartedAt is when the pass began.
	StartedAt time.Time `json:"started_at"`
	// Plan is the full plan the pass executed, including per-account
	// creates and deletes.
	Plan *reconcile.Plan `json:"plan"`
}

// Archiver uploads one JSON document per pass to object storage.
type Archiver struct {
	client Client
	bucket string
	prefix string
	log    *zap.Logger
}

// NewArchiver creates an Archiver writing to the configured bucket and
// key prefix.
func NewArchiver(client Client, cfg Config, log *zap.Logger) *Archiver {
	return &Archiver{
		client: client,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
		log:    log,
	}
}

// StorePlan uploads the plan of a finished pass as
// <prefix>/<start time, RFC3339 UTC>.json.
func (a *Archiver) StorePlan(ctx context.Context, mode string, startedAt time.Time, plan *reconcile.Plan) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", a.bucket, err)
	}
	if !exists {
		return fmt.Errorf("bucket %s does not exist", a.bucket)
	}

	doc := passDocument{Mode: mode, StartedAt: startedAt, Plan: plan}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode plan: %w", err)
	}

	name := path.Join(a.prefix, startedAt.UTC().Format(time.RFC3339)+".json")
	_, err = a.client.PutObject(ctx, a.bucket, name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", name, err)
	}

	a.log.Debug("Archived pass plan",
		zap.String("object", name),
		zap.Int("bytes", len(data)))
	return nil
}

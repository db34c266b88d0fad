package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"floorplan-sync/core/reconcile"
	"floorplan-sync/core/storage"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned when no archived report matches a run id.
	ErrNotFound = errors.New("report not found")
	// ErrInvalidID is returned for run ids that are not UUIDs.
	ErrInvalidID = errors.New("invalid run id")
)

// Entry describes one archived report object.
type Entry struct {
	ID           string    `json:"id"`
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// Archiver writes run reports as JSON objects to a bucket.
// Keys follow prefix/YYYY/MM/DD/<run id>.json, dated by the run start in UTC.
type Archiver struct {
	client storage.Client
	bucket string
	region string
	prefix string
	logger *zap.Logger

	mu      sync.Mutex
	ensured bool
}

// NewArchiver creates an archiver over the configured bucket.
func NewArchiver(client storage.Client, cfg storage.Config, logger *zap.Logger) *Archiver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Archiver{
		client: client,
		bucket: cfg.Bucket,
		region: cfg.Region,
		prefix: strings.Trim(cfg.Prefix, "/"),
		logger: logger,
	}
}

// Key returns the object key of a report.
func (a *Archiver) Key(r *reconcile.RunReport) string {
	return path.Join(a.prefix, r.StartedAt.UTC().Format("2006/01/02"), r.ID+".json")
}

// Archive uploads the report and returns its object key.
func (a *Archiver) Archive(ctx context.Context, r *reconcile.RunReport) (string, error) {
	if err := a.ensureBucket(ctx); err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}

	key := a.Key(r)
	_, err = a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", &reconcile.TransientIOError{Op: "archive report", Err: err}
	}

	a.logger.Info("Run report archived", zap.String("run_id", r.ID), zap.String("key", key))
	return key, nil
}

// List returns archived reports, most recent first. A limit of zero returns all of them.
func (a *Archiver) List(ctx context.Context, limit int) ([]Entry, error) {
	var entries []Entry
	for obj := range a.client.ListObjects(ctx, a.bucket, minio.ListObjectsOptions{Prefix: a.listPrefix(), Recursive: true}) {
		if obj.Err != nil {
			return nil, &reconcile.TransientIOError{Op: "list reports", Err: obj.Err}
		}
		if !strings.HasSuffix(obj.Key, ".json") {
			continue
		}
		entries = append(entries, Entry{
			ID:           strings.TrimSuffix(path.Base(obj.Key), ".json"),
			Key:          obj.Key,
			Size:         obj.Size,
			LastModified: obj.LastModified,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].LastModified.Equal(entries[j].LastModified) {
			return entries[i].LastModified.After(entries[j].LastModified)
		}
		return entries[i].Key > entries[j].Key
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Get loads the archived report of a run.
func (a *Archiver) Get(ctx context.Context, id string) (*reconcile.RunReport, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	suffix := "/" + parsed.String() + ".json"

	entries, err := a.List(ctx, 0)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if !strings.HasSuffix(e.Key, suffix) {
			continue
		}
		obj, err := a.client.GetObject(ctx, a.bucket, e.Key, minio.GetObjectOptions{})
		if err != nil {
			return nil, &reconcile.TransientIOError{Op: "get report", Err: err}
		}
		defer obj.Close()

		var r reconcile.RunReport
		if err := json.NewDecoder(obj).Decode(&r); err != nil {
			return nil, fmt.Errorf("decode report %s: %w", e.Key, err)
		}
		return &r, nil
	}
	return nil, ErrNotFound
}

func (a *Archiver) listPrefix() string {
	if a.prefix == "" {
		return ""
	}
	return a.prefix + "/"
}

// ensureBucket creates the bucket on first use.
func (a *Archiver) ensureBucket(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ensured {
		return nil
	}

	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return &reconcile.TransientIOError{Op: "check bucket", Err: err}
	}
	if !exists {
		if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{Region: a.region}); err != nil {
			return &reconcile.TransientIOError{Op: "create bucket", Err: err}
		}
		a.logger.Info("Report bucket created", zap.String("bucket", a.bucket))
	}
	a.ensured = true
	return nil
}

// Package syncer mirrors a bucket prefix into a local directory, skipping
// objects whose basename already exists anywhere under the destination.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"s3dirstat/internal/lister"
	"s3dirstat/internal/models"
)

const (
	MinConcurrency = 1
	MaxConcurrency = 64
)

var ErrUnsafeKey = errors.New("object key escapes destination")

// ProgressFunc receives snapshots. It may be called from several goroutines
// at once, and snapshots may arrive out of order.
type ProgressFunc func(models.SyncProgress)

type Request struct {
	Bucket         string
	Prefix         string
	LocalRoot      string
	MaxConcurrency int
}

type Engine struct {
	store lister.Store
	fs    afero.Fs
	log   zerolog.Logger
}

type Option func(*Engine)

func WithFs(fs afero.Fs) Option {
	return func(e *Engine) { e.fs = fs }
}

func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

func New(store lister.Store, opts ...Option) *Engine {
	e := &Engine{store: store, fs: afero.NewOsFs(), log: zerolog.Nop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func ClampConcurrency(n int) int {
	return min(max(n, MinConcurrency), MaxConcurrency)
}

// Sync runs one synchronization. A failed download aborts the run; files
// already written stay on disk and only successful downloads are counted.
func (e *Engine) Sync(ctx context.Context, req Request, sink ProgressFunc) (models.SyncSummary, error) {
	prefix := NormalizePrefix(req.Prefix)
	summary := models.SyncSummary{
		BucketName:  req.Bucket,
		Prefix:      prefix,
		Destination: req.LocalRoot,
	}
	if req.LocalRoot == "" {
		return summary, &models.ValidationError{Field: "destination", Msg: "local root is empty"}
	}
	if sink == nil {
		sink = func(models.SyncProgress) {}
	}

	log := e.log.With().
		Str("run_id", uuid.NewString()).
		Str("bucket", req.Bucket).
		Str("prefix", prefix).
		Logger()

	if err := e.fs.MkdirAll(req.LocalRoot, 0o755); err != nil {
		return summary, fmt.Errorf("failed to create destination %s: %w", req.LocalRoot, err)
	}

	index, err := BuildNameIndex(e.fs, req.LocalRoot)
	if err != nil {
		return summary, fmt.Errorf("failed to index destination %s: %w", req.LocalRoot, err)
	}
	log.Debug().Int("local_names", index.Len()).Msg("destination indexed")

	total, totalBytes, err := lister.Count(ctx, e.store, req.Bucket, prefix)
	if err != nil {
		return summary, err
	}
	if total == 0 {
		sink(models.SyncProgress{})
		log.Info().Msg("nothing to sync")
		return summary, nil
	}

	r := &run{
		store:      e.store,
		fs:         e.fs,
		log:        log,
		sink:       sink,
		bucket:     req.Bucket,
		prefix:     prefix,
		root:       req.LocalRoot,
		total:      total,
		totalBytes: totalBytes,
	}
	limit := ClampConcurrency(req.MaxConcurrency)
	log.Info().Int64("objects", total).Int64("bytes", totalBytes).Int("concurrency", limit).Msg("sync started")

	r.emit()
	err = r.transfer(ctx, index, limit)
	r.emit()

	summary.Downloaded = r.downloaded.Load()
	summary.Skipped = r.skipped.Load()
	summary.Total = total

	if err != nil {
		log.Warn().Err(err).Int64("downloaded", summary.Downloaded).Int64("skipped", summary.Skipped).Msg("sync stopped")
		return summary, err
	}
	log.Info().Int64("downloaded", summary.Downloaded).Int64("skipped", summary.Skipped).Msg("sync finished")
	return summary, nil
}

// run holds the state of one Sync invocation.
type run struct {
	store  lister.Store
	fs     afero.Fs
	log    zerolog.Logger
	sink   ProgressFunc
	bucket string
	prefix string
	root   string

	total      int64
	totalBytes int64

	downloaded      atomic.Int64
	skipped         atomic.Int64
	downloadedBytes atomic.Int64
	skippedBytes    atomic.Int64
}

func (r *run) snapshot() models.SyncProgress {
	return models.SyncProgress{
		Total:           r.total,
		Downloaded:      r.downloaded.Load(),
		Skipped:         r.skipped.Load(),
		TotalBytes:      r.totalBytes,
		DownloadedBytes: r.downloadedBytes.Load(),
		SkippedBytes:    r.skippedBytes.Load(),
	}
}

func (r *run) emit() {
	r.sink(r.snapshot())
}

// transfer re-lists the prefix and schedules downloads, holding one
// semaphore slot per download for its whole lifetime.
func (r *run) transfer(ctx context.Context, index NameIndex, limit int) error {
	listCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sem := semaphore.NewWeighted(int64(limit))
	g, gctx := errgroup.WithContext(listCtx)

	listErr := lister.New(r.store, r.bucket, r.prefix).Each(gctx, func(obj models.ObjectRecord) error {
		if obj.IsFolderMarker() {
			return nil
		}
		if index.Contains(path.Base(obj.Key)) {
			r.skipped.Add(1)
			r.skippedBytes.Add(obj.Size)
			r.emit()
			return nil
		}
		if err := sem.Acquire(gctx, 1); err != nil {
			return models.Canceled(err)
		}
		g.Go(func() error {
			defer sem.Release(1)
			return r.download(gctx, obj)
		})
		return nil
	})
	if listErr != nil && !errors.Is(listErr, models.ErrCanceled) {
		cancel()
	}
	waitErr := g.Wait()

	// A real failure wins over a cancellation that arrived while draining.
	switch {
	case listErr != nil && !errors.Is(listErr, models.ErrCanceled):
		return listErr
	case waitErr != nil && !errors.Is(waitErr, models.ErrCanceled):
		return waitErr
	case ctx.Err() != nil:
		return models.Canceled(ctx.Err())
	case waitErr != nil:
		return waitErr
	default:
		return listErr
	}
}

func (r *run) download(ctx context.Context, obj models.ObjectRecord) error {
	if err := ctx.Err(); err != nil {
		return models.Canceled(err)
	}

	localPath, err := LocalPath(r.root, RelativeKey(obj.Key, r.prefix))
	if err != nil {
		return fmt.Errorf("%s: %w", obj.Key, err)
	}
	if err := r.fs.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", localPath, err)
	}

	file, err := r.fs.OpenFile(localPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", localPath, err)
	}
	_, err = r.store.Download(ctx, r.bucket, obj.Key, file)
	closeErr := file.Close()
	if err != nil {
		return models.StoreFailure(ctx, "get", r.bucket, obj.Key, err)
	}
	if closeErr != nil {
		return fmt.Errorf("failed to write %s: %w", localPath, closeErr)
	}

	r.downloaded.Add(1)
	r.downloadedBytes.Add(obj.Size)
	r.log.Debug().Str("key", obj.Key).Str("path", localPath).Int64("size", obj.Size).Msg("downloaded")
	r.emit()
	return nil
}

// RelativeKey strips prefix from key when key starts with it.
func RelativeKey(key, prefix string) string {
	if prefix != "" && strings.HasPrefix(key, prefix) {
		return key[len(prefix):]
	}
	return key
}

// LocalPath maps a relative key below root. Backslashes count as separators
// and empty segments are dropped; ".." is refused.
func LocalPath(root, relativeKey string) (string, error) {
	normalized := strings.TrimLeft(strings.ReplaceAll(relativeKey, `\`, "/"), "/")

	parts := []string{root}
	for _, part := range strings.Split(normalized, "/") {
		part = strings.TrimSpace(part)
		switch part {
		case "", ".":
			continue
		case "..":
			return "", ErrUnsafeKey
		}
		parts = append(parts, part)
	}
	if len(parts) == 1 {
		return "", fmt.Errorf("empty relative path: %w", ErrUnsafeKey)
	}
	return filepath.Join(parts...), nil
}

package models

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSyncProgressDerived(t *testing.T) {
	tests := []struct {
		name           string
		progress       SyncProgress
		processed      int64
		remaining      int64
		percent        float64
		remainingBytes int64
	}{
		{"zero total", SyncProgress{}, 0, 0, 0, 0},
		{"half done", SyncProgress{Total: 10, Downloaded: 3, Skipped: 2, TotalBytes: 100, DownloadedBytes: 30, SkippedBytes: 20}, 5, 5, 50, 50},
		{"complete", SyncProgress{Total: 4, Downloaded: 4, TotalBytes: 40, DownloadedBytes: 40}, 4, 0, 100, 0},
		{"overshoot clamps", SyncProgress{Total: 2, Downloaded: 3, TotalBytes: 10, DownloadedBytes: 25}, 3, 0, 100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.processed, tt.progress.Processed())
			assert.Equal(t, tt.remaining, tt.progress.Remaining())
			assert.InDelta(t, tt.percent, tt.progress.Percent(), 1e-9)
			assert.Equal(t, tt.remainingBytes, tt.progress.RemainingBytes())
		})
	}
}

func TestSyncProgressNeverNegative(t *testing.T) {
	p := SyncProgress{Total: 7, TotalBytes: 700}
	for i := 0; i < 7; i++ {
		if i%2 == 0 {
			p.Downloaded++
			p.DownloadedBytes += 100
		} else {
			p.Skipped++
			p.SkippedBytes += 100
		}
		assert.GreaterOrEqual(t, p.Remaining(), int64(0))
		assert.GreaterOrEqual(t, p.RemainingBytes(), int64(0))
	}
	assert.Equal(t, int64(0), p.Remaining())
	assert.Equal(t, int64(0), p.RemainingBytes())
}

func TestTreeNodeObserve(t *testing.T) {
	n := NewTreeNode("root")
	older := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)

	n.Observe(".txt", 10, newer)
	n.Observe(".txt", 5, older)
	n.ObserveOwn(5)

	assert.Equal(t, int64(15), n.Size)
	assert.Equal(t, int64(2), n.FileCount)
	assert.Equal(t, int64(5), n.OwnSize)
	assert.Equal(t, int64(1), n.OwnFileCount)
	assert.Equal(t, newer, n.LastModified)
	assert.Equal(t, ExtensionStat{Count: 2, Size: 15}, *n.Extensions[".txt"])

	child := n.Child("a")
	assert.Same(t, child, n.Child("a"))
	assert.Len(t, n.Children, 1)
}

func TestIsFolderMarker(t *testing.T) {
	assert.True(t, ObjectRecord{Key: "a/"}.IsFolderMarker())
	assert.False(t, ObjectRecord{Key: "a/b.txt"}.IsFolderMarker())
	assert.False(t, ObjectRecord{Key: ""}.IsFolderMarker())
}

func TestErrorKind(t *testing.T) {
	storeErr := &StoreError{Op: "list", Bucket: "b", Err: errors.New("boom")}
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"canceled", Canceled(context.Canceled), "canceled"},
		{"validation", &ValidationError{Field: "prefix", Msg: "bad"}, "validation"},
		{"store", storeErr, "store"},
		{"wrapped store", fmt.Errorf("sync: %w", storeErr), "store"},
		{"other", errors.New("x"), "internal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorKind(tt.err))
		})
	}
}

func TestStoreFailure(t *testing.T) {
	cause := errors.New("connection reset")

	err := StoreFailure(context.Background(), "get", "bucket", "a/b.txt", cause)
	var storeErr *StoreError
	assert.ErrorAs(t, err, &storeErr)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "s3://bucket/a/b.txt")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = StoreFailure(ctx, "get", "bucket", "a/b.txt", cause)
	assert.ErrorIs(t, err, ErrCanceled)
	assert.ErrorIs(t, err, context.Canceled)

	err = StoreFailure(context.Background(), "list", "bucket", "", context.DeadlineExceeded)
	assert.ErrorIs(t, err, ErrCanceled)
}

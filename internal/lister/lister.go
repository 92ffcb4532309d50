// Package lister walks a bucket listing page by page and hides continuation
// tokens behind HasMorePages/NextPage, the same shape as the SDK paginators.
package lister

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"

	"s3dirstat/internal/models"
)

// ErrMissingToken reports a truncated page that carries no continuation token.
var ErrMissingToken = errors.New("truncated listing without continuation token")

type ListRequest struct {
	Bucket            string
	Prefix            string
	ContinuationToken string
	Delimiter         string
	MaxKeys           int32
}

type Page struct {
	Objects               []models.ObjectRecord
	CommonPrefixes        []string
	NextContinuationToken string
	IsTruncated           bool
}

// Store is the object store contract the engines depend on.
type Store interface {
	ListPage(ctx context.Context, req ListRequest) (*Page, error)
	// Download writes the object body to w and returns the number of bytes written.
	Download(ctx context.Context, bucket, key string, w io.WriterAt) (int64, error)
}

// Lister issues one page request at a time, chaining continuation tokens.
type Lister struct {
	store Store
	req   ListRequest
	done  bool
}

func New(store Store, bucket, prefix string) *Lister {
	return &Lister{
		store: store,
		req:   ListRequest{Bucket: bucket, Prefix: prefix},
	}
}

func (l *Lister) HasMorePages() bool {
	return !l.done
}

// NextPage fetches the next page. Cancellation is checked before every fetch.
func (l *Lister) NextPage(ctx context.Context) ([]models.ObjectRecord, error) {
	if l.done {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, models.Canceled(err)
	}

	page, err := l.store.ListPage(ctx, l.req)
	if err != nil {
		return nil, models.StoreFailure(ctx, "list", l.req.Bucket, l.req.Prefix, err)
	}

	if !page.IsTruncated {
		l.done = true
		return page.Objects, nil
	}
	if page.NextContinuationToken == "" {
		l.done = true
		return nil, &models.StoreError{Op: "list", Bucket: l.req.Bucket, Key: l.req.Prefix, Err: ErrMissingToken}
	}
	l.req.ContinuationToken = page.NextContinuationToken
	return page.Objects, nil
}

// Each calls fn for every object in listing order, folder markers included.
func (l *Lister) Each(ctx context.Context, fn func(models.ObjectRecord) error) error {
	for l.HasMorePages() {
		objects, err := l.NextPage(ctx)
		if err != nil {
			return err
		}
		for _, obj := range objects {
			if err := fn(obj); err != nil {
				return err
			}
		}
	}
	return nil
}

// Count returns the number of non-folder-marker objects under prefix and their byte total.
func Count(ctx context.Context, store Store, bucket, prefix string) (objects int64, bytes int64, err error) {
	err = New(store, bucket, prefix).Each(ctx, func(obj models.ObjectRecord) error {
		if obj.IsFolderMarker() {
			return nil
		}
		objects++
		bytes += obj.Size
		return nil
	})
	return objects, bytes, err
}

// PrefixExists checks for at least one object under prefix with a single
// bounded listing. The empty prefix denotes the whole bucket and always exists.
func PrefixExists(ctx context.Context, store Store, bucket, prefix string) (bool, error) {
	if strings.TrimSpace(prefix) == "" {
		return true, nil
	}
	if err := ctx.Err(); err != nil {
		return false, models.Canceled(err)
	}
	page, err := store.ListPage(ctx, ListRequest{Bucket: bucket, Prefix: prefix, MaxKeys: 1})
	if err != nil {
		return false, models.StoreFailure(ctx, "list", bucket, prefix, err)
	}
	return len(page.Objects) > 0, nil
}

// ListPrefixes returns the sorted immediate "sub-directories" of prefix.
func ListPrefixes(ctx context.Context, store Store, bucket, prefix string) ([]string, error) {
	var prefixes []string
	req := ListRequest{Bucket: bucket, Prefix: prefix, Delimiter: "/"}
	for {
		if err := ctx.Err(); err != nil {
			return nil, models.Canceled(err)
		}
		page, err := store.ListPage(ctx, req)
		if err != nil {
			return nil, models.StoreFailure(ctx, "list", bucket, prefix, err)
		}
		prefixes = append(prefixes, page.CommonPrefixes...)
		if !page.IsTruncated {
			break
		}
		if page.NextContinuationToken == "" {
			return nil, &models.StoreError{Op: "list", Bucket: bucket, Key: prefix, Err: ErrMissingToken}
		}
		req.ContinuationToken = page.NextContinuationToken
	}
	sort.Strings(prefixes)
	return prefixes, nil
}

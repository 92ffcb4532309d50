// Package aggregate folds a flat object listing into a directory-like size tree.
package aggregate

import (
	"context"
	"path"
	"strings"

	"github.com/rs/zerolog"

	"s3dirstat/internal/lister"
	"s3dirstat/internal/models"
	"s3dirstat/internal/progress"
)

// ProgressFunc receives the scan completion in percent.
type ProgressFunc func(percent float64)

type Options struct {
	Bucket string
	// Prefix limits the scan to a subtree; keys keep their full path.
	Prefix         string
	IgnorePrefixes []string
	// IgnorePatterns are glob patterns; see Filter.
	IgnorePatterns []string
	Progress       ProgressFunc
	Logger         zerolog.Logger
}

// Builder accumulates objects into a tree rooted at the bucket name.
type Builder struct {
	root   *models.TreeNode
	filter *Filter
}

func NewBuilder(rootName string, filter *Filter) *Builder {
	if filter == nil {
		filter = &Filter{}
	}
	return &Builder{root: models.NewTreeNode(rootName), filter: filter}
}

func (b *Builder) Root() *models.TreeNode {
	return b.root
}

// Add folds obj into the tree and reports whether it was accepted.
func (b *Builder) Add(obj models.ObjectRecord) bool {
	if !b.filter.Accept(obj) {
		return false
	}

	segments := strings.Split(obj.Key, "/")
	fileName := segments[len(segments)-1]
	ext := Extension(fileName)

	node := b.root
	node.Observe(ext, obj.Size, obj.LastModified)
	for _, dir := range segments[:len(segments)-1] {
		if dir == "" {
			continue
		}
		node = node.Child(dir)
		node.Observe(ext, obj.Size, obj.LastModified)
	}
	node.ObserveOwn(obj.Size)
	return true
}

// Extension is the lowercase suffix from the last '.' of the file name, or "".
func Extension(fileName string) string {
	return strings.ToLower(path.Ext(fileName))
}

// BuildTree lists the bucket and returns the aggregated tree. With a
// progress sink it first counts eligible objects so it can report an
// accurate percentage, at the cost of a second full listing.
func BuildTree(ctx context.Context, store lister.Store, opts Options) (*models.TreeNode, error) {
	filter, err := NewFilter(opts.IgnorePrefixes, opts.IgnorePatterns)
	if err != nil {
		return nil, err
	}
	builder := NewBuilder(opts.Bucket, filter)
	log := opts.Logger

	var total int64
	if opts.Progress != nil {
		err := lister.New(store, opts.Bucket, opts.Prefix).Each(ctx, func(obj models.ObjectRecord) error {
			if filter.Accept(obj) {
				total++
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		log.Debug().Str("bucket", opts.Bucket).Int64("objects", total).Msg("count pass finished")

		if total == 0 {
			opts.Progress(100)
			return builder.Root(), nil
		}
	}

	var processed int64
	err = lister.New(store, opts.Bucket, opts.Prefix).Each(ctx, func(obj models.ObjectRecord) error {
		if !builder.Add(obj) {
			return nil
		}
		processed++
		if opts.Progress != nil {
			opts.Progress(progress.Percent(processed, total))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if opts.Progress != nil {
		opts.Progress(100)
	}
	root := builder.Root()
	log.Debug().
		Str("bucket", opts.Bucket).
		Int64("files", root.FileCount).
		Int64("bytes", root.Size).
		Msg("tree built")
	return root, nil
}

package syncer

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"s3dirstat/internal/lister"
	"s3dirstat/internal/models"
)

const (
	schemeURL = "s3://"
	schemeARN = "arn:aws:s3:::"
)

// NormalizePrefix trims whitespace, drops leading '/', and ensures a
// trailing '/' on non-empty prefixes. It is idempotent.
func NormalizePrefix(prefix string) string {
	trimmed := strings.TrimSpace(prefix)
	trimmed = strings.TrimLeftFunc(trimmed, func(r rune) bool {
		return r == '/' || unicode.IsSpace(r)
	})
	if trimmed != "" && !strings.HasSuffix(trimmed, "/") {
		trimmed += "/"
	}
	return trimmed
}

type Target struct {
	Bucket string
	Prefix string
}

// ParseTarget accepts a bare prefix, s3://bucket/prefix or
// arn:aws:s3:::bucket[/prefix]. Bare prefixes belong to selectedBucket.
func ParseTarget(input, selectedBucket string) (Target, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return Target{Bucket: selectedBucket}, nil
	}

	lower := strings.ToLower(trimmed)
	switch {
	case strings.HasPrefix(lower, schemeURL):
		remainder := trimmed[len(schemeURL):]
		slash := strings.IndexByte(remainder, '/')
		if slash <= 0 {
			return Target{}, &models.ValidationError{
				Field: "prefix",
				Msg:   fmt.Sprintf("%q: use s3://bucket/folder or only the folder", input),
			}
		}
		return Target{Bucket: remainder[:slash], Prefix: NormalizePrefix(remainder[slash+1:])}, nil

	case strings.HasPrefix(lower, schemeARN):
		remainder := trimmed[len(schemeARN):]
		slash := strings.IndexByte(remainder, '/')
		if slash < 0 {
			return Target{Bucket: remainder}, nil
		}
		return Target{Bucket: remainder[:slash], Prefix: NormalizePrefix(remainder[slash+1:])}, nil

	case strings.Contains(trimmed, "://"):
		return Target{}, &models.ValidationError{
			Field: "prefix",
			Msg:   fmt.Sprintf("%q: use only the path inside the bucket", input),
		}
	}

	return Target{Bucket: selectedBucket, Prefix: NormalizePrefix(trimmed)}, nil
}

// ResolveTarget parses input, rejects prefixes of other buckets, and checks
// that the prefix holds at least one object.
func ResolveTarget(ctx context.Context, store lister.Store, input, selectedBucket string) (Target, error) {
	if selectedBucket == "" {
		return Target{}, &models.ValidationError{Field: "bucket", Msg: "no bucket selected"}
	}
	target, err := ParseTarget(input, selectedBucket)
	if err != nil {
		return Target{}, err
	}
	if target.Bucket != selectedBucket {
		return Target{}, &models.ValidationError{
			Field: "prefix",
			Msg:   fmt.Sprintf("prefix belongs to bucket %q, selected bucket is %q", target.Bucket, selectedBucket),
		}
	}

	exists, err := lister.PrefixExists(ctx, store, target.Bucket, target.Prefix)
	if err != nil {
		return Target{}, err
	}
	if !exists {
		return Target{}, &models.ValidationError{
			Field: "prefix",
			Msg:   fmt.Sprintf("%q not found in bucket %q", target.Prefix, target.Bucket),
		}
	}
	return target, nil
}

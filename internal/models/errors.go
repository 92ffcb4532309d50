package models

import (
	"context"
	"errors"
	"fmt"
)

// ErrCanceled marks a run stopped by the caller, as opposed to a failure.
var ErrCanceled = errors.New("operation canceled")

// StoreError reports a failed object store call. Err carries the transport cause.
type StoreError struct {
	Op     string
	Bucket string
	Key    string
	Err    error
}

func (e *StoreError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("store %s s3://%s/%s failed: %v", e.Op, e.Bucket, e.Key, e.Err)
	}
	return fmt.Sprintf("store %s s3://%s failed: %v", e.Op, e.Bucket, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// ValidationError is raised before any network call for bad user input.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Msg)
}

// Canceled wraps the context cause so that errors.Is works for both
// ErrCanceled and the original context error.
func Canceled(cause error) error {
	if cause == nil {
		cause = context.Canceled
	}
	return fmt.Errorf("%w: %w", ErrCanceled, cause)
}

// StoreFailure builds a StoreError, or a cancellation when ctx is done.
func StoreFailure(ctx context.Context, op, bucket, key string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Canceled(ctxErr)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return Canceled(err)
	}
	return &StoreError{Op: op, Bucket: bucket, Key: key, Err: err}
}

// ErrorKind classifies err for the CLI error envelope.
func ErrorKind(err error) string {
	var storeErr *StoreError
	var validationErr *ValidationError
	switch {
	case errors.Is(err, ErrCanceled):
		return "canceled"
	case errors.As(err, &validationErr):
		return "validation"
	case errors.As(err, &storeErr):
		return "store"
	default:
		return "internal"
	}
}

package repository

import (
	"context"
	"errors"
	"time"

	pairchat_errors "pairchat/pkg/errors"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

// DefaultStoreTimeout bounds every single store call. A stalled store
// round trip surfaces as a 503 instead of hanging the request.
const DefaultStoreTimeout = 5 * time.Second

func opContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

// translateStoreErr maps driver failures onto the service error
// taxonomy. Deadline and network failures become ErrServiceUnavailable
// so handlers answer 503 instead of a generic 500.
func translateStoreErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return pairchat_errors.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return pairchat_errors.ErrAlreadyExists
	case isTransient(err):
		return pairchat_errors.ErrServiceUnavailable
	default:
		return err
	}
}

func isTransient(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) ||
		mongo.IsTimeout(err) ||
		mongo.IsNetworkError(err)
}

// withReadRetry runs an idempotent read, retrying once when the first
// attempt fails transiently. Writes are never retried.
func withReadRetry(ctx context.Context, fn func(context.Context) error, timeout time.Duration) error {
	attempt := func() error {
		opCtx, cancel := opContext(ctx, timeout)
		defer cancel()
		return fn(opCtx)
	}

	err := attempt()
	if err != nil && isTransient(err) && ctx.Err() == nil {
		err = attempt()
	}
	return err
}

// Package lock provides per-key mutual exclusion with bounded waiting.
//
// All backends share the same contract: Lock blocks until the key is held or
// the context ends. A context that ends because its deadline passed yields
// ErrTimeout, which callers surface as a retryable busy condition.
package lock

import (
	"context"
	"errors"
	"fmt"
)

var ErrTimeout = errors.New("timed out waiting for lock")

// Unlock releases a held key. It is safe to call more than once.
type Unlock func(ctx context.Context) error

type Locker interface {
	Lock(ctx context.Context, key string) (Unlock, error)
}

// PropertyKey is the lock key that serializes admission decisions for one property.
func PropertyKey(propertyID string) string {
	return "property:" + propertyID
}

func waitError(ctx context.Context, key string) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", ErrTimeout, key)
	}
	return ctx.Err()
}

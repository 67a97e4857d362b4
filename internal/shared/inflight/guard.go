// Package inflight hands out request de-duplication tokens scoped to a
// logical operation key. A key can have at most one holder; the holder
// releases it when its call completes.
package inflight

import (
	"context"
	"errors"
)

// ErrBusy is returned by Acquire when another caller holds the key.
var ErrBusy = errors.New("inflight: operation already in progress")

// ReleaseFunc gives the token back. It is safe to call more than once.
type ReleaseFunc func()

type Guard interface {
	Acquire(ctx context.Context, key string) (ReleaseFunc, error)
}

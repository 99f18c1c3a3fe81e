package service

import (
	"context"
	"time"

	dErrors "github.com/werterpires/salt-in-forms-back-sub000/pkg/domain-errors"
)

// defaultTxTimeout bounds a structural transaction when the caller set no
// deadline.
const defaultTxTimeout = 5 * time.Second

// AtomicStore applies a group of writes all-or-nothing on its own, like the
// in-memory store. S is the transaction-bound view it hands to fn.
type AtomicStore[S Store] interface {
	Atomically(ctx context.Context, fn func(tx S) error) error
}

type atomicTx[S Store] struct {
	store   AtomicStore[S]
	timeout time.Duration
}

// NewAtomicTx wraps an AtomicStore as a StoreTx. A zero timeout uses the
// default.
func NewAtomicTx[S Store](store AtomicStore[S], timeout time.Duration) StoreTx {
	return &atomicTx[S]{store: store, timeout: timeout}
}

func (t *atomicTx[S]) RunInTx(ctx context.Context, fn func(store Store) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	return t.store.Atomically(ctx, func(tx S) error {
		if err := ctx.Err(); err != nil {
			return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
		}
		return fn(tx)
	})
}

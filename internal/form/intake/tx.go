package intake

import (
	"context"
	"time"

	dErrors "github.com/werterpires/salt-in-forms-back-sub000/pkg/domain-errors"
)

const defaultTxTimeout = 5 * time.Second

// AtomicStore applies a group of writes all-or-nothing, handing fn a
// transaction-bound view S.
type AtomicStore[S Store] interface {
	Atomically(ctx context.Context, fn func(tx S) error) error
}

type atomicTx[S Store] struct {
	store   AtomicStore[S]
	timeout time.Duration
}

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
		return fn(tx)
	})
}

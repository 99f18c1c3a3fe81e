package store

import (
	"context"
	"time"

	dErrors "github.com/werterpires/salt-in-forms-back-sub000/pkg/domain-errors"
)

const defaultTxTimeout = 5 * time.Second

// PostgresTx runs a unit of work inside one database transaction. S is the
// store interface the calling service expects; view narrows the
// transaction-bound store to it.
type PostgresTx[S any] struct {
	store   *PostgresStore
	timeout time.Duration
	view    func(*PostgresStore) S
}

// NewPostgresTx builds a transaction runner. A zero timeout uses the default.
func NewPostgresTx[S any](store *PostgresStore, timeout time.Duration, view func(*PostgresStore) S) *PostgresTx[S] {
	return &PostgresTx[S]{store: store, timeout: timeout, view: view}
}

func (t *PostgresTx[S]) RunInTx(ctx context.Context, fn func(store S) error) error {
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

	tx, err := t.store.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(t.view(t.store.WithTx(tx))); err != nil {
		return err
	}
	return tx.Commit()
}

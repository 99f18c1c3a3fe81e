package sentinel

import "errors"

// Sentinel errors for storage facts. Stores return these (optionally wrapped)
// and services translate them into coded domain errors.
//
//   - ErrNotFound: the row does not exist
//   - ErrConflict: a uniqueness constraint was hit (duplicate order, form type, option value)
//   - ErrInvalidState: the row exists but cannot take the requested change
//   - ErrUnavailable: a backing service (database, cache) is unreachable
//
// Input problems belong to pkg/domain-errors, not here.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)

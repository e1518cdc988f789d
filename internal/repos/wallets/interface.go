package wallets

import (
	"context"
	"database/sql"
	"errors"
)

var ErrWalletNotFound = errors.New("wallet not found")

// Wallets maintains the per-user balance row. The row is a lock anchor
// and a cached aggregate: after every committed transaction its balance
// equals the sum of the user's ledger events. The ledger, not this row,
// is the source of truth.
type Wallets interface {
	EnsureExists(tx *sql.Tx, userID uint64) error
	GetBalance(ctx context.Context, userID uint64) (int64, error)
	LockAndGetBalance(tx *sql.Tx, userID uint64) (int64, error)
	ApplyDelta(tx *sql.Tx, userID uint64, delta int64) error
}

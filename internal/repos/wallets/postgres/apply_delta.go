package wallets

import (
	"database/sql"
	"fmt"

	"github.com/Amit7053/lucky-draw/internal/repos/wallets"
)

// ApplyDelta moves the cached balance row by the same signed amount as
// the ledger event appended in the same transaction. The caller must
// hold the row lock.
func (r *walletsRepo) ApplyDelta(tx *sql.Tx, userID uint64, delta int64) error {
	res, err := tx.Exec(`
		UPDATE wallets
		SET balance = balance + $2
		WHERE user_id = $1
	`, userID, delta)
	if err != nil {
		return fmt.Errorf("apply delta: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return wallets.ErrWalletNotFound
	}

	return nil
}

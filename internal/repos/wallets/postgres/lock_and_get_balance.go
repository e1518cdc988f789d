package wallets

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/Amit7053/lucky-draw/internal/repos/wallets"
)

// LockAndGetBalance takes the row lock that serializes all mutating
// wallet operations for the user until the transaction ends.
func (r *walletsRepo) LockAndGetBalance(tx *sql.Tx, userID uint64) (int64, error) {
	var balance int64

	err := tx.QueryRow(`
		SELECT balance
		FROM wallets
		WHERE user_id = $1
		FOR UPDATE
	`, userID).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, wallets.ErrWalletNotFound
		}

		return 0, fmt.Errorf("lock/get balance: %w", err)
	}

	return balance, nil
}

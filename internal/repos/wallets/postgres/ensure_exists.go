package wallets

import (
	"database/sql"
	"fmt"
)

// EnsureExists creates the zero-balance wallet row on first use.
// Existing rows are left untouched.
func (r *walletsRepo) EnsureExists(tx *sql.Tx, userID uint64) error {
	_, err := tx.Exec(`
		INSERT INTO wallets (user_id, balance)
		VALUES ($1, 0)
		ON CONFLICT (user_id) DO NOTHING
	`, userID)
	if err != nil {
		return fmt.Errorf("ensure wallet exists: %w", err)
	}

	return nil
}

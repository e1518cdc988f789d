package ledger

import (
	"context"
	"fmt"
)

// SumForUser replays the user's ledger into a balance. A user with no
// events sums to zero; that is not an error.
func (r *ledgerRepo) SumForUser(ctx context.Context, userID uint64) (int64, error) {
	var total int64

	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM ledger_events
		WHERE user_id = $1
	`, userID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum ledger events: %w", err)
	}

	return total, nil
}

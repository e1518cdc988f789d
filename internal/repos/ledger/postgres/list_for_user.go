package ledger

import (
	"context"
	"fmt"

	"github.com/Amit7053/lucky-draw/internal/repos/ledger"
)

// ListForUser returns the newest events first, bounded by limit.
func (r *ledgerRepo) ListForUser(ctx context.Context, userID uint64, limit int) ([]ledger.Event, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, amount, kind, correlation_id, created_at
		FROM ledger_events
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query ledger events: %w", err)
	}
	defer rows.Close()

	var events []ledger.Event

	for rows.Next() {
		var ev ledger.Event

		err = rows.Scan(&ev.ID, &ev.UserID, &ev.AmountMinor, &ev.Kind, &ev.CorrelationID, &ev.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan ledger event: %w", err)
		}

		events = append(events, ev)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate ledger events: %w", err)
	}

	return events, nil
}

package ledger

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/Amit7053/lucky-draw/internal/repos/ledger"
	"github.com/jackc/pgx/v5/pgconn"
)

// Append inserts a single event inside the caller's transaction.
// The partial unique index on correlation_id for bet_payout rows maps
// a retried payout to ErrDuplicateEvent instead of a second credit.
func (r *ledgerRepo) Append(tx *sql.Tx, ev ledger.Event) error {
	_, err := tx.Exec(`
		INSERT INTO ledger_events (id, user_id, amount, kind, correlation_id)
		VALUES ($1, $2, $3, $4, $5)
	`, ev.ID, ev.UserID, ev.AmountMinor, ev.Kind, ev.CorrelationID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // unique_violation
				return ledger.ErrDuplicateEvent
			}
		}

		return fmt.Errorf("insert ledger event: %w", err)
	}

	return nil
}

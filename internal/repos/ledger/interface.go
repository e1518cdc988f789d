package ledger

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrDuplicateEvent is returned when an append collides with an event
// that already exists for the same correlation id (payout idempotency).
var ErrDuplicateEvent = errors.New("duplicate ledger event")

type Kind string

const (
	KindDeposit   Kind = "deposit"
	KindBetDebit  Kind = "bet_debit"
	KindBetPayout Kind = "bet_payout"
)

// Event is a single immutable ledger record. Amounts are signed paisa:
// deposits and payouts are positive, bet debits are negative.
// Events are never updated or deleted once appended.
type Event struct {
	ID            uuid.UUID
	UserID        uint64
	AmountMinor   int64
	Kind          Kind
	CorrelationID uuid.NullUUID
	CreatedAt     time.Time
}

type Ledger interface {
	Append(tx *sql.Tx, ev Event) error
	SumForUser(ctx context.Context, userID uint64) (int64, error)
	ListForUser(ctx context.Context, userID uint64, limit int) ([]Event, error)
}

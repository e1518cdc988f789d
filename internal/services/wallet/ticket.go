package wallet

import (
	"errors"

	"github.com/google/uuid"

	"github.com/Amit7053/lucky-draw/internal/game"
)

var (
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrAlreadySettled    = errors.New("ticket already settled")
)

// Prediction is the face the bettor called before the flip.
type Prediction = game.Outcome

// Ticket is the receipt for a committed bet debit. It is not stored on
// its own; the correlation id ties the debit to its eventual payout in
// the ledger.
type Ticket struct {
	UserID        uint64
	StakeMinor    int64
	Prediction    Prediction
	CorrelationID uuid.UUID
}

package events

import (
	"context"

	"github.com/Amit7053/lucky-draw/internal/repos/ledger"
)

// Publisher fans committed ledger events out to interested consumers
// (reporting, reconciliation). Publishing is best-effort and must never
// fail the wallet operation that produced the event.
type Publisher interface {
	PublishLedgerEvent(ctx context.Context, ev ledger.Event) error
}

type Noop struct{}

func (Noop) PublishLedgerEvent(context.Context, ledger.Event) error { return nil }

// Package settlement resolves placed bets against coin outcomes. A bet
// enters Placed once the wallet service has committed its debit, and
// leaves through exactly one terminal state: PaidOut (win, payout
// appended) or Closed (loss, no further ledger write).
package settlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Amit7053/lucky-draw/internal/game"
	"github.com/Amit7053/lucky-draw/internal/infra/metrics"
	"github.com/Amit7053/lucky-draw/internal/services/wallet"
)

type State string

const (
	StatePlaced  State = "placed"
	StatePaidOut State = "paid_out"
	StateClosed  State = "closed"
)

// PayoutCrediter is the slice of the wallet service the engine needs.
type PayoutCrediter interface {
	CreditPayout(ctx context.Context, ticket wallet.Ticket, amountMinor int64) (int64, error)
}

// Config holds the payout policy. The multiplier is configuration, not
// a property of the engine: 2 is the fair value for a two-outcome coin.
type Config struct {
	Multiplier   int64
	MaxAttempts  int
	RetryBackoff time.Duration
}

func (c Config) withDefaults() Config {
	if c.Multiplier <= 0 {
		c.Multiplier = 2
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 5
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = 100 * time.Millisecond
	}

	return c
}

type Result struct {
	Ticket      wallet.Ticket
	Outcome     game.Outcome
	State       State
	PayoutMinor int64
}

type Engine struct {
	crediter PayoutCrediter
	cfg      Config
}

func New(crediter PayoutCrediter, cfg Config) *Engine {
	return &Engine{crediter: crediter, cfg: cfg.withDefaults()}
}

// Settle resolves one ticket against the outcome. A loss closes the
// ticket without touching the ledger. A win must land its payout: the
// append is retried with backoff on storage errors, and a credit that
// already exists for the ticket's correlation id counts as success, so
// a crashed-and-retried settlement never pays twice.
func (e *Engine) Settle(ctx context.Context, ticket wallet.Ticket, outcome game.Outcome) (Result, error) {
	res := Result{Ticket: ticket, Outcome: outcome, State: StatePlaced}

	if outcome != ticket.Prediction {
		res.State = StateClosed

		return res, nil
	}

	payout := ticket.StakeMinor * e.cfg.Multiplier

	var lastErr error

	backoff := e.cfg.RetryBackoff
	for attempt := 1; attempt <= e.cfg.MaxAttempts; attempt++ {
		_, err := e.crediter.CreditPayout(ctx, ticket, payout)
		if err == nil || errors.Is(err, wallet.ErrAlreadySettled) {
			res.State = StatePaidOut
			res.PayoutMinor = payout

			return res, nil
		}

		lastErr = err
		metrics.SettlementRetriesTotal.Inc()
		slog.Warn("payout append failed, retrying",
			"correlation_id", ticket.CorrelationID, "attempt", attempt, "error", err)

		select {
		case <-ctx.Done():
			return res, fmt.Errorf("settle canceled: %w", ctx.Err())
		case <-time.After(backoff):
		}

		backoff *= 2
	}

	return res, fmt.Errorf("credit payout after %d attempts: %w", e.cfg.MaxAttempts, lastErr)
}

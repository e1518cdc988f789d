package wallet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Amit7053/lucky-draw/internal/events"
	"github.com/Amit7053/lucky-draw/internal/infra/balancecache"
	"github.com/Amit7053/lucky-draw/internal/infra/metrics"
	"github.com/Amit7053/lucky-draw/internal/infra/pgutils"
	"github.com/Amit7053/lucky-draw/internal/repos/ledger"
	pgledger "github.com/Amit7053/lucky-draw/internal/repos/ledger/postgres"
	"github.com/Amit7053/lucky-draw/internal/repos/wallets"
	pgwallets "github.com/Amit7053/lucky-draw/internal/repos/wallets/postgres"
)

// Service is the only component allowed to create deposit and
// bet_debit events, and the only writer of payout credits on behalf of
// the settlement engine. All mutations for a user run under the wallet
// row lock, so a balance check and the write it guards are atomic.
type Service struct {
	db      *sql.DB
	wallets wallets.Wallets
	ledger  ledger.Ledger
	cache   balancecache.Cache
	pub     events.Publisher
}

func New(db *sql.DB, cache balancecache.Cache, pub events.Publisher) *Service {
	if cache == nil {
		cache = balancecache.Noop{}
	}
	if pub == nil {
		pub = events.Noop{}
	}

	return &Service{
		db:      db,
		wallets: pgwallets.New(db),
		ledger:  pgledger.New(db),
		cache:   cache,
		pub:     pub,
	}
}

// Deposit credits the user's wallet and returns the new balance.
//
// 1) Reject non-positive amounts before any I/O.
// 2) Ensure the wallet row exists, lock it.
// 3) Append the deposit event and move the balance row together.
func (s *Service) Deposit(ctx context.Context, userID uint64, amountMinor int64) (int64, error) {
	if amountMinor <= 0 {
		return 0, ErrInvalidAmount
	}

	ev := ledger.Event{
		ID:          uuid.New(),
		UserID:      userID,
		AmountMinor: amountMinor,
		Kind:        ledger.KindDeposit,
	}

	var newBalance int64

	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		err := s.wallets.EnsureExists(tx, userID)
		if err != nil {
			return fmt.Errorf("ensure wallet: %w", err)
		}

		balance, err := s.wallets.LockAndGetBalance(tx, userID)
		if err != nil {
			return fmt.Errorf("lock and get balance: %w", err)
		}

		err = s.ledger.Append(tx, ev)
		if err != nil {
			return fmt.Errorf("append deposit: %w", err)
		}

		err = s.wallets.ApplyDelta(tx, userID, amountMinor)
		if err != nil {
			return fmt.Errorf("apply delta: %w", err)
		}

		newBalance = balance + amountMinor

		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("deposit: %w", err)
	}

	s.afterCommit(ctx, ev)
	metrics.DepositsTotal.Inc()

	return newBalance, nil
}

// PlaceBet debits the stake and issues a ticket for settlement. The
// solvency check and the debit commit under one row lock: two
// concurrent bets can never both spend the same funds.
func (s *Service) PlaceBet(ctx context.Context, userID uint64, stakeMinor int64, prediction Prediction) (Ticket, error) {
	if stakeMinor <= 0 {
		return Ticket{}, ErrInvalidAmount
	}

	correlationID := uuid.New()
	ev := ledger.Event{
		ID:            uuid.New(),
		UserID:        userID,
		AmountMinor:   -stakeMinor,
		Kind:          ledger.KindBetDebit,
		CorrelationID: uuid.NullUUID{UUID: correlationID, Valid: true},
	}

	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		balance, err := s.wallets.LockAndGetBalance(tx, userID)
		if err != nil {
			// No wallet row means no deposits yet, so nothing to stake.
			if errors.Is(err, wallets.ErrWalletNotFound) {
				return ErrInsufficientFunds
			}

			return fmt.Errorf("lock and get balance: %w", err)
		}

		if balance < stakeMinor {
			return ErrInsufficientFunds
		}

		err = s.ledger.Append(tx, ev)
		if err != nil {
			return fmt.Errorf("append bet debit: %w", err)
		}

		err = s.wallets.ApplyDelta(tx, userID, -stakeMinor)
		if err != nil {
			return fmt.Errorf("apply delta: %w", err)
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInsufficientFunds) {
			metrics.BetsRejectedTotal.Inc()

			return Ticket{}, ErrInsufficientFunds
		}

		return Ticket{}, fmt.Errorf("place bet: %w", err)
	}

	s.afterCommit(ctx, ev)
	metrics.BetsPlacedTotal.Inc()

	return Ticket{
		UserID:        userID,
		StakeMinor:    stakeMinor,
		Prediction:    prediction,
		CorrelationID: correlationID,
	}, nil
}

// CreditPayout appends the winning-bet credit for a ticket. A retried
// credit for the same ticket hits the payout uniqueness constraint and
// returns ErrAlreadySettled with no second write.
func (s *Service) CreditPayout(ctx context.Context, ticket Ticket, amountMinor int64) (int64, error) {
	if amountMinor <= 0 {
		return 0, ErrInvalidAmount
	}

	ev := ledger.Event{
		ID:            uuid.New(),
		UserID:        ticket.UserID,
		AmountMinor:   amountMinor,
		Kind:          ledger.KindBetPayout,
		CorrelationID: uuid.NullUUID{UUID: ticket.CorrelationID, Valid: true},
	}

	var newBalance int64

	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		balance, err := s.wallets.LockAndGetBalance(tx, ticket.UserID)
		if err != nil {
			return fmt.Errorf("lock and get balance: %w", err)
		}

		err = s.ledger.Append(tx, ev)
		if err != nil {
			return fmt.Errorf("append payout: %w", err)
		}

		err = s.wallets.ApplyDelta(tx, ticket.UserID, amountMinor)
		if err != nil {
			return fmt.Errorf("apply delta: %w", err)
		}

		newBalance = balance + amountMinor

		return nil
	})
	if err != nil {
		if errors.Is(err, ledger.ErrDuplicateEvent) {
			return 0, ErrAlreadySettled
		}

		return 0, fmt.Errorf("credit payout: %w", err)
	}

	s.afterCommit(ctx, ev)
	metrics.PayoutsTotal.Inc()

	return newBalance, nil
}

// Balance returns the user's current balance. A user with no wallet
// has a balance of zero, not an error. Cache entries are short-lived
// and purged on every mutation; the wallets row is authoritative here
// and is itself reconcilable to the ledger sum.
func (s *Service) Balance(ctx context.Context, userID uint64) (int64, error) {
	if balance, ok := s.cache.Get(ctx, userID); ok {
		return balance, nil
	}

	balance, err := s.wallets.GetBalance(ctx, userID)
	if err != nil {
		if errors.Is(err, wallets.ErrWalletNotFound) {
			return 0, nil
		}

		return 0, fmt.Errorf("get balance: %w", err)
	}

	s.cache.Set(ctx, userID, balance)

	return balance, nil
}

// History lists the user's most recent ledger events, newest first.
func (s *Service) History(ctx context.Context, userID uint64, limit int) ([]ledger.Event, error) {
	events, err := s.ledger.ListForUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list ledger events: %w", err)
	}

	return events, nil
}

// afterCommit runs the post-write side effects: the cache entry is
// purged synchronously, the event fan-out is best-effort.
func (s *Service) afterCommit(ctx context.Context, ev ledger.Event) {
	s.cache.Invalidate(ctx, ev.UserID)

	err := s.pub.PublishLedgerEvent(ctx, ev)
	if err != nil {
		metrics.PublishFailuresTotal.Inc()
		slog.Error("publish ledger event failed",
			"event_id", ev.ID, "user_id", ev.UserID, "kind", ev.Kind, "error", err)
	}
}

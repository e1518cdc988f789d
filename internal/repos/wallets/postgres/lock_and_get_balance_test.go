package wallets

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/Amit7053/lucky-draw/internal/infra/pgtestutil"
	"github.com/Amit7053/lucky-draw/internal/repos/wallets"
)

func TestWallets_LockAndGetBalance_Table(t *testing.T) {
	t.Parallel()

	type seedFn func(db *sql.DB, t *testing.T)
	type tc struct {
		name        string
		seed        seedFn
		userID      uint64
		wantBalance int64
		wantErr     bool
	}

	seedWallet := func(id uint64, balance int64) seedFn {
		return func(db *sql.DB, t *testing.T) {
			_, err := db.Exec(`INSERT INTO wallets (user_id, balance) VALUES ($1, $2)`, id, balance)
			if err != nil {
				t.Fatalf("seed wallet: %v", err)
			}
		}
	}

	tests := []tc{
		{
			name:        "wallet_exists_zero_balance",
			seed:        seedWallet(1, 0),
			userID:      1,
			wantBalance: 0,
		},
		{
			name:        "wallet_exists_positive_balance",
			seed:        seedWallet(2, 12_345),
			userID:      2,
			wantBalance: 12_345,
		},
		{
			name:    "wallet_not_found",
			seed:    func(_ *sql.DB, _ *testing.T) {},
			userID:  999,
			wantErr: true,
		},
		{
			name:        "wallet_large_balance",
			seed:        seedWallet(3, int64(900_000_000_000_000)),
			userID:      3,
			wantBalance: int64(900_000_000_000_000),
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db, cleanup := pgtestutil.NewTestDB(t)
			defer cleanup()

			if tt.seed != nil {
				tt.seed(db, t)
			}

			repo := New(db)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			tx, err := db.BeginTx(ctx, nil)
			if err != nil {
				t.Fatalf("begin tx: %v", err)
			}
			defer func() { _ = tx.Rollback() }()

			balance, err := repo.LockAndGetBalance(tx, tt.userID)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got nil (balance=%d)", balance)
				}
				if !errors.Is(err, wallets.ErrWalletNotFound) {
					t.Fatalf("expected ErrWalletNotFound, got: %v", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if balance != tt.wantBalance {
				t.Fatalf("balance mismatch: want %d, got %d", tt.wantBalance, balance)
			}

			err = tx.Commit()
			if err != nil {
				t.Fatalf("commit: %v", err)
			}
		})
	}
}

// Second FOR UPDATE on the same wallet row must block until the first
// transaction commits; this is what serializes concurrent bets.
func TestWallets_LockAndGetBalance_LocksRow(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	_, err := db.Exec(`INSERT INTO wallets (user_id, balance) VALUES ($1, $2)`, 42, 200)
	if err != nil {
		t.Fatalf("seed wallet: %v", err)
	}

	repo := New(db)

	// tx1 locks the row
	ctx1, cancel1 := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel1()

	tx1, err := db.BeginTx(ctx1, nil)
	if err != nil {
		t.Fatalf("begin tx1: %v", err)
	}
	defer func() { _ = tx1.Rollback() }()

	_, err = repo.LockAndGetBalance(tx1, 42)
	if err != nil {
		t.Fatalf("tx1 lock/get: %v", err)
	}

	blockedCh := make(chan struct{})
	doneCh := make(chan struct{})
	errCh := make(chan error, 1)

	go func() {
		defer close(doneCh)

		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()

		tx2, e := db.BeginTx(ctx2, nil)
		if e != nil {
			errCh <- e
			return
		}
		defer func() { _ = tx2.Rollback() }()

		close(blockedCh)

		_, e = repo.LockAndGetBalance(tx2, 42)
		if e != nil {
			errCh <- e
			return
		}

		e = tx2.Commit()
		if e != nil {
			errCh <- e
			return
		}
	}()

	select {
	case <-blockedCh:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for tx2 to start")
	}

	// Give it a moment to attempt the lock (and block)
	time.Sleep(200 * time.Millisecond)

	err = tx1.Commit()
	if err != nil {
		t.Fatalf("commit tx1: %v", err)
	}

	select {
	case e := <-errCh:
		if e != nil {
			t.Fatalf("tx2 error: %v", e)
		}
	case <-doneCh:
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for tx2 to complete after tx1 commit")
	}
}

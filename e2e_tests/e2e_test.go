// Black-box suite against a running instance (api + migrator applied).
// Each test works on its own freshly generated user id, so runs are
// repeatable against a persistent database.
package e2etests

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"testing"
	"time"
)

const (
	baseURL   = "http://localhost:8080"
	timeout   = 5 * time.Second
	waitReady = 20 * time.Second
)

var httpClient = &http.Client{Timeout: timeout}

func freshUserID() uint64 {
	return uint64(time.Now().UnixNano())/1000 + uint64(rand.Intn(1000))
}

func TestE2E_DepositAndBalance(t *testing.T) {
	waitUntilReady(t)

	userID := freshUserID()

	t.Run("initial_balance_zero", func(t *testing.T) {
		if got := getBalanceString(t, userID); got != "0.00" {
			t.Fatalf("initial balance: want 0.00, got %s", got)
		}
	})

	t.Run("deposit_increases_balance", func(t *testing.T) {
		code, body := postDeposit(t, userID, "100.00")
		if code != http.StatusOK {
			t.Fatalf("deposit: want 200, got %d (%s)", code, body)
		}

		code, body = postDeposit(t, userID, "50.00")
		if code != http.StatusOK {
			t.Fatalf("deposit: want 200, got %d (%s)", code, body)
		}

		if got := getBalanceString(t, userID); got != "150.00" {
			t.Fatalf("after deposits: want 150.00, got %s", got)
		}
	})

	t.Run("deposit_rejects_nonpositive", func(t *testing.T) {
		for _, amount := range []string{"0.00", "-5.00"} {
			code, body := postDeposit(t, userID, amount)
			if code != http.StatusBadRequest {
				t.Fatalf("deposit %s: want 400, got %d (%s)", amount, code, body)
			}
		}

		// rejected deposits must not move the balance
		if got := getBalanceString(t, userID); got != "150.00" {
			t.Fatalf("after rejected deposits: want 150.00, got %s", got)
		}
	})
}

func TestE2E_BetFlow(t *testing.T) {
	waitUntilReady(t)

	userID := freshUserID()

	code, body := postDeposit(t, userID, "100.00")
	if code != http.StatusOK {
		t.Fatalf("deposit: want 200, got %d (%s)", code, body)
	}

	t.Run("bet_settles_consistently", func(t *testing.T) {
		code, body := postBet(t, userID, "30.00", "heads")
		if code != http.StatusOK {
			t.Fatalf("bet: want 200, got %d (%s)", code, body)
		}

		var resp struct {
			TicketID string `json:"ticketId"`
			Outcome  string `json:"outcome"`
			Won      bool   `json:"won"`
			Payout   string `json:"payout"`
			Balance  string `json:"balance"`
		}
		if err := json.Unmarshal([]byte(body), &resp); err != nil {
			t.Fatalf("decode bet response: %v (%s)", err, body)
		}

		if resp.TicketID == "" {
			t.Fatal("missing ticketId")
		}
		if resp.Outcome != "heads" && resp.Outcome != "tails" {
			t.Fatalf("invalid outcome %q", resp.Outcome)
		}

		// The outcome is random, so assert consistency instead of one
		// branch: win pays 2x stake, loss pays nothing.
		if resp.Won {
			if resp.Payout != "60.00" {
				t.Fatalf("win payout: want 60.00, got %s", resp.Payout)
			}
			if resp.Balance != "130.00" {
				t.Fatalf("win balance: want 130.00, got %s", resp.Balance)
			}
		} else {
			if resp.Payout != "0.00" {
				t.Fatalf("loss payout: want 0.00, got %s", resp.Payout)
			}
			if resp.Balance != "70.00" {
				t.Fatalf("loss balance: want 70.00, got %s", resp.Balance)
			}
		}

		if got := getBalanceString(t, userID); got != resp.Balance {
			t.Fatalf("balance endpoint disagrees with bet response: %s vs %s", got, resp.Balance)
		}
	})

	t.Run("bet_rejects_invalid_stake", func(t *testing.T) {
		for _, stake := range []string{"0.00", "-1.00"} {
			code, body := postBet(t, userID, stake, "heads")
			if code != http.StatusBadRequest {
				t.Fatalf("bet %s: want 400, got %d (%s)", stake, code, body)
			}
		}
	})

	t.Run("bet_rejects_invalid_prediction", func(t *testing.T) {
		code, body := postBet(t, userID, "1.00", "edge")
		if code != http.StatusBadRequest {
			t.Fatalf("bad prediction: want 400, got %d (%s)", code, body)
		}
	})
}

func TestE2E_InsufficientFunds(t *testing.T) {
	waitUntilReady(t)

	userID := freshUserID()

	code, body := postDeposit(t, userID, "20.00")
	if code != http.StatusOK {
		t.Fatalf("deposit: want 200, got %d (%s)", code, body)
	}

	code, body = postBet(t, userID, "25.00", "tails")
	if code != http.StatusConflict {
		t.Fatalf("overdraft bet: want 409, got %d (%s)", code, body)
	}

	if got := getBalanceString(t, userID); got != "20.00" {
		t.Fatalf("after rejected bet: want 20.00, got %s", got)
	}
}

func TestE2E_History(t *testing.T) {
	waitUntilReady(t)

	userID := freshUserID()

	code, body := postDeposit(t, userID, "10.00")
	if code != http.StatusOK {
		t.Fatalf("deposit: want 200, got %d (%s)", code, body)
	}

	code, body = postBet(t, userID, "4.00", "heads")
	if code != http.StatusOK {
		t.Fatalf("bet: want 200, got %d (%s)", code, body)
	}

	code, body = doRequest(t, http.MethodGet, fmt.Sprintf("/user/%d/history?limit=10", userID), nil)
	if code != http.StatusOK {
		t.Fatalf("history: want 200, got %d (%s)", code, body)
	}

	var resp struct {
		Entries []struct {
			Kind   string `json:"kind"`
			Amount string `json:"amount"`
		} `json:"entries"`
	}
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("decode history: %v (%s)", err, body)
	}

	// deposit + bet_debit, plus a payout if the flip won.
	if len(resp.Entries) < 2 || len(resp.Entries) > 3 {
		t.Fatalf("want 2 or 3 entries, got %d (%s)", len(resp.Entries), body)
	}

	// Newest first: the oldest entry must be the deposit.
	last := resp.Entries[len(resp.Entries)-1]
	if last.Kind != "deposit" || last.Amount != "10.00" {
		t.Fatalf("oldest entry: want deposit 10.00, got %s %s", last.Kind, last.Amount)
	}
}

// --- helpers ---

func doRequest(t *testing.T, method, path string, payload any) (int, string) {
	t.Helper()

	var body io.Reader

	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, baseURL+path, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	b, _ := io.ReadAll(resp.Body)

	return resp.StatusCode, string(b)
}

func postDeposit(t *testing.T, userID uint64, amount string) (int, string) {
	t.Helper()

	return doRequest(t, http.MethodPost, fmt.Sprintf("/user/%d/deposit", userID),
		map[string]string{"amount": amount})
}

func postBet(t *testing.T, userID uint64, stake, prediction string) (int, string) {
	t.Helper()

	return doRequest(t, http.MethodPost, fmt.Sprintf("/user/%d/bet", userID),
		map[string]string{"stake": stake, "prediction": prediction})
}

func getBalanceString(t *testing.T, userID uint64) string {
	t.Helper()

	code, body := doRequest(t, http.MethodGet, fmt.Sprintf("/user/%d/balance", userID), nil)
	if code != http.StatusOK {
		t.Fatalf("get balance: want 200, got %d (%s)", code, body)
	}

	var resp struct {
		Balance string `json:"balance"`
	}
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("decode balance: %v (%s)", err, body)
	}

	return resp.Balance
}

// waitUntilReady polls /healthz until the service answers or times out.
func waitUntilReady(t *testing.T) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), waitReady)
	defer cancel()

	tick := time.NewTicker(200 * time.Millisecond)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			t.Fatalf("service not ready at %s within %s", baseURL, waitReady)
		case <-tick.C:
			resp, err := httpClient.Get(baseURL + "/healthz")
			if err != nil {
				continue
			}
			_ = resp.Body.Close()

			if resp.StatusCode == http.StatusOK {
				return
			}
		}
	}
}

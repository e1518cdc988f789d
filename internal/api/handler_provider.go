package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/Amit7053/lucky-draw/internal/game"
	"github.com/Amit7053/lucky-draw/internal/services/settlement"
	"github.com/Amit7053/lucky-draw/internal/services/wallet"
)

// HandlerProvider wraps the wallet service and settlement engine and
// exposes HTTP handlers. Amount conversion between display units
// (rupees, 2 decimals) and minor units (paisa) happens only here.
type HandlerProvider struct {
	svc     *wallet.Service
	engine  *settlement.Engine
	flipper game.CoinFlipper
}

func NewHandler(svc *wallet.Service, engine *settlement.Engine, flipper game.CoinFlipper) *HandlerProvider {
	return &HandlerProvider{svc: svc, engine: engine, flipper: flipper}
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode JSON response", "error", err)

		http.Error(w, `{"error":"internal json encode failure"}`, http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func parseUserIDFromPath(r *http.Request) (uint64, error) {
	idStr := chi.URLParam(r, "userId")
	if idStr == "" {
		return 0, fmt.Errorf("missing userId")
	}

	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid userId: %w", err)
	}
	if id == 0 {
		return 0, fmt.Errorf("invalid userId: must be positive")
	}

	return id, nil
}

// parseAmountMinor converts a display-unit decimal string with up to 2
// fractional digits into paisa. Sign is preserved; positivity is the
// service's rule to enforce. Amounts that do not fit in int64 paisa
// are rejected, never wrapped.
func parseAmountMinor(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("amount required")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount")
	}

	if d.Exponent() < -2 {
		return 0, fmt.Errorf("amount supports up to 2 decimals")
	}

	// int64 paisa tops out near 9.2e16 rupees; bail on large exponents
	// before Shift materializes them.
	if d.Exponent() > 20 {
		return 0, fmt.Errorf("amount out of range")
	}

	minor := d.Shift(2).BigInt()
	if !minor.IsInt64() {
		return 0, fmt.Errorf("amount out of range")
	}

	return minor.Int64(), nil
}

func formatAmountMinor(minor int64) string {
	return decimal.New(minor, -2).StringFixed(2)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	// Limit body size; disallow unknown fields
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB cap
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("empty body")
		}

		return fmt.Errorf("invalid JSON")
	}

	return nil
}

// --- Handlers ---

// GetBalanceHandler handles GET /user/{userId}/balance
func (h *HandlerProvider) GetBalanceHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid userId in path")
		return
	}

	balance, err := h.svc.Balance(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"userId":  userID,
		"balance": formatAmountMinor(balance),
	})
}

type depositRequest struct {
	Amount string `json:"amount"`
}

// DepositHandler handles POST /user/{userId}/deposit
func (h *HandlerProvider) DepositHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid userId in path")
		return
	}

	var req depositRequest

	err = decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	amountMinor, err := parseAmountMinor(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	newBalance, err := h.svc.Deposit(r.Context(), userID, amountMinor)
	if err != nil {
		if errors.Is(err, wallet.ErrInvalidAmount) {
			writeError(w, http.StatusBadRequest, "amount must be positive")
			return
		}

		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"userId":  userID,
		"balance": formatAmountMinor(newBalance),
	})
}

type betRequest struct {
	Stake      string `json:"stake"`
	Prediction string `json:"prediction"`
}

// PlaceBetHandler handles POST /user/{userId}/bet: it debits the stake,
// flips the coin and settles, all in one request. Settlement runs on a
// context detached from the client: once the debit is committed the bet
// must resolve even if the caller hangs up.
func (h *HandlerProvider) PlaceBetHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid userId in path")
		return
	}

	var req betRequest

	err = decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	stakeMinor, err := parseAmountMinor(req.Stake)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	prediction, err := game.ParseOutcome(req.Prediction)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid prediction")
		return
	}

	ticket, err := h.svc.PlaceBet(r.Context(), userID, stakeMinor, prediction)
	if err != nil {
		switch {
		case errors.Is(err, wallet.ErrInvalidAmount):
			writeError(w, http.StatusBadRequest, "stake must be positive")
			return
		case errors.Is(err, wallet.ErrInsufficientFunds):
			writeError(w, http.StatusConflict, "insufficient funds")
			return
		default:
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
	}

	ctx := context.WithoutCancel(r.Context())

	outcome, err := h.flipper.Flip(ctx)
	if err != nil {
		slog.Error("coin flip failed", "correlation_id", ticket.CorrelationID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	result, err := h.engine.Settle(ctx, ticket, outcome)
	if err != nil {
		slog.Error("settlement failed", "correlation_id", ticket.CorrelationID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	balance, err := h.svc.Balance(ctx, userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ticketId":   ticket.CorrelationID.String(),
		"prediction": string(prediction),
		"outcome":    string(result.Outcome),
		"won":        result.State == settlement.StatePaidOut,
		"payout":     formatAmountMinor(result.PayoutMinor),
		"balance":    formatAmountMinor(balance),
	})
}

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

type historyEntry struct {
	ID            string `json:"id"`
	Amount        string `json:"amount"`
	Kind          string `json:"kind"`
	CorrelationID string `json:"correlationId,omitempty"`
	CreatedAt     string `json:"createdAt"`
}

// GetHistoryHandler handles GET /user/{userId}/history?limit=N
func (h *HandlerProvider) GetHistoryHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid userId in path")
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	events, err := h.svc.History(r.Context(), userID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	entries := make([]historyEntry, 0, len(events))
	for _, ev := range events {
		entry := historyEntry{
			ID:        ev.ID.String(),
			Amount:    formatAmountMinor(ev.AmountMinor),
			Kind:      string(ev.Kind),
			CreatedAt: ev.CreatedAt.UTC().Format(time.RFC3339),
		}
		if ev.CorrelationID.Valid {
			entry.CorrelationID = ev.CorrelationID.UUID.String()
		}

		entries = append(entries, entry)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"userId":  userID,
		"entries": entries,
	})
}

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Amit7053/lucky-draw/internal/game"
	"github.com/Amit7053/lucky-draw/internal/services/settlement"
	"github.com/Amit7053/lucky-draw/internal/services/wallet"
)

// NewRouter constructs the router with all API endpoints registered.
func NewRouter(svc *wallet.Service, engine *settlement.Engine, flipper game.CoinFlipper) http.Handler {
	h := NewHandler(svc, engine, flipper)
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/user/{userId}/balance", h.GetBalanceHandler)
	r.Get("/user/{userId}/history", h.GetHistoryHandler)
	r.Post("/user/{userId}/deposit", h.DepositHandler)
	r.Post("/user/{userId}/bet", h.PlaceBetHandler)

	return r
}

package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Amit7053/lucky-draw/internal/game"
	"github.com/Amit7053/lucky-draw/internal/services/settlement"
	"github.com/Amit7053/lucky-draw/internal/services/wallet"
)

// NewServer creates and returns a configured *http.Server for the
// wallet API.
func NewServer(port uint16, svc *wallet.Service, engine *settlement.Engine, flipper game.CoinFlipper) *http.Server {
	mux := NewRouter(svc, engine, flipper)

	addr := fmt.Sprintf(":%d", port)

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

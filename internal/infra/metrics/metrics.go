package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DepositsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wallet_deposits_total",
		Help: "Deposits committed to the ledger.",
	})

	BetsPlacedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wallet_bets_placed_total",
		Help: "Bet debits committed to the ledger.",
	})

	BetsRejectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wallet_bets_rejected_total",
		Help: "Bets rejected for insufficient funds.",
	})

	PayoutsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wallet_payouts_total",
		Help: "Winning-bet payouts committed to the ledger.",
	})

	SettlementRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "settlement_payout_retries_total",
		Help: "Payout append attempts retried after a storage error.",
	})

	PublishFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledger_event_publish_failures_total",
		Help: "Ledger events that could not be published downstream.",
	})
)

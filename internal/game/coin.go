package game

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// Outcome is one face of the coin. The wallet core only ever compares
// an outcome against a prediction; how the flip is produced is the
// flipper's business.
type Outcome string

const (
	OutcomeHeads Outcome = "heads"
	OutcomeTails Outcome = "tails"
)

func ParseOutcome(s string) (Outcome, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "heads", "h":
		return OutcomeHeads, nil
	case "tails", "t":
		return OutcomeTails, nil
	default:
		return "", fmt.Errorf("invalid outcome %q", s)
	}
}

type CoinFlipper interface {
	Flip(ctx context.Context) (Outcome, error)
}

// CryptoFlipper draws the outcome from crypto/rand.
type CryptoFlipper struct{}

func (CryptoFlipper) Flip(_ context.Context) (Outcome, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(2))
	if err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}

	if n.Int64() == 0 {
		return OutcomeHeads, nil
	}

	return OutcomeTails, nil
}

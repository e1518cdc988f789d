package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Amit7053/lucky-draw/internal/events"
	"github.com/Amit7053/lucky-draw/internal/repos/ledger"
)

var _ events.Publisher = (*Publisher)(nil)

type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

type ledgerEventMessage struct {
	ID            string    `json:"id"`
	UserID        uint64    `json:"user_id"`
	AmountMinor   int64     `json:"amount_minor"`
	Kind          string    `json:"kind"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// PublishLedgerEvent writes one message per committed event, keyed by
// user id so a consumer sees a user's events in order.
func (p *Publisher) PublishLedgerEvent(ctx context.Context, ev ledger.Event) error {
	msg := ledgerEventMessage{
		ID:          ev.ID.String(),
		UserID:      ev.UserID,
		AmountMinor: ev.AmountMinor,
		Kind:        string(ev.Kind),
		OccurredAt:  ev.CreatedAt,
	}
	if ev.CorrelationID.Valid {
		msg.CorrelationID = ev.CorrelationID.UUID.String()
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal ledger event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatUint(ev.UserID, 10)),
		Value: data,
	})
	if err != nil {
		return fmt.Errorf("write kafka message: %w", err)
	}

	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

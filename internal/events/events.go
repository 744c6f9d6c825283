package events

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const EventOrderCreated = "OrderCreated"

type OrderItem struct {
	ProductID int `json:"product_id"`
	Qty       int `json:"qty"`
}

// OrderCreated is published after a checkout commits. Consumers downstream
// (fulfillment, notifications) key on order_id.
type OrderCreated struct {
	EventID    string      `json:"event_id"`
	EventType  string      `json:"event_type"`
	OccurredAt time.Time   `json:"occurred_at"`
	OrderID    int         `json:"order_id"`
	InvoiceNo  string      `json:"invoice_no"`
	CustomerID int         `json:"customer_id"`
	Amount     float64     `json:"amount"`
	Currency   string      `json:"currency"`
	Items      []OrderItem `json:"items"`
}

type Publisher interface {
	PublishOrderCreated(ctx context.Context, evt OrderCreated) error
	Close() error
}

// KafkaPublisher writes order events to a single topic, partitioned by
// order id so events for one order stay ordered.
type KafkaPublisher struct {
	w *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		},
	}
}

func (p *KafkaPublisher) PublishOrderCreated(ctx context.Context, evt OrderCreated) error {
	if evt.EventID == "" {
		evt.EventID = uuid.NewString()
	}
	if evt.EventType == "" {
		evt.EventType = EventOrderCreated
	}
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}

	value, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.Itoa(evt.OrderID)),
		Value: value,
		Time:  time.Now(),
	})
}

func (p *KafkaPublisher) Close() error { return p.w.Close() }

// NoopPublisher is the default when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishOrderCreated(context.Context, OrderCreated) error { return nil }
func (NoopPublisher) Close() error                                            { return nil }

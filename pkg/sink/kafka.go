package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"matchbook/pkg/engine"

	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka publishes every event as JSON, keyed by the order it concerns so a partition
// sees one order's lifecycle in order.
type Kafka struct {
	writer messageWriter
	topic  string
}

type message struct {
	Type  engine.EventType `json:"type"`
	Event engine.Event     `json:"event"`
}

func NewKafka(brokers []string, topic string) *Kafka {
	return &Kafka{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Async:        false,
			BatchTimeout: 10 * time.Millisecond,
		},
		topic: topic,
	}
}

func (k *Kafka) Name() string {
	return "kafka:" + k.topic
}

func (k *Kafka) Deliver(ctx context.Context, event engine.Event) error {
	value, err := json.Marshal(message{Type: event.Type(), Event: event})
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event.Type(), err)
	}
	return k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(eventKey(event)),
		Value: value,
	})
}

func (k *Kafka) Close() error {
	return k.writer.Close()
}

func eventKey(event engine.Event) string {
	var id uint64
	switch ev := event.(type) {
	case engine.TradeEvent:
		id = ev.MakerID
	case engine.OrderFullyFilled:
		id = ev.OrderID
	case engine.OrderPartiallyFilled:
		id = ev.OrderID
	case engine.OrderCancelEvent:
		id = ev.OrderID
	case engine.MarketRemainderCancelled:
		id = ev.OrderID
	case engine.OrderRejected:
		id = ev.OrderID
	case engine.InternalError:
		id = ev.OrderID
	default:
		return string(event.Type())
	}
	return strconv.FormatUint(id, 10)
}

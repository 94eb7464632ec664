package mykafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Skotchmaster/storefront/internal/logging"
)

const (
	writeTimeout = 5 * time.Second
	// WriteMessages blocks until a batch flushes; keep single events prompt.
	batchTimeout = 10 * time.Millisecond
)

// Event is the envelope written to the events topic.
type Event struct {
	Type    string    `json:"type"`
	At      time.Time `json:"at"`
	Payload any       `json:"payload"`
}

type Publisher interface {
	PublishEvent(ctx context.Context, key, eventType string, payload any) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	w     messageWriter
	topic string
	now   func() time.Time
}

func NewProducer(brokers []string, topic string) (*Producer, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka: no brokers configured")
	}
	if topic == "" {
		return nil, fmt.Errorf("kafka: empty topic")
	}
	return &Producer{
		w: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
			WriteTimeout:           writeTimeout,
			BatchTimeout:           batchTimeout,
		},
		topic: topic,
		now:   time.Now,
	}, nil
}

func (p *Producer) PublishEvent(ctx context.Context, key, eventType string, payload any) error {
	data, err := json.Marshal(Event{Type: eventType, At: p.now().UTC(), Payload: payload})
	if err != nil {
		return fmt.Errorf("kafka: json.Marshal failed: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	msg := kafka.Message{
		Key:     []byte(key),
		Value:   data,
		Headers: []kafka.Header{{Key: "event_type", Value: []byte(eventType)}},
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka: write %s failed: %w", eventType, err)
	}

	logging.FromContext(ctx).Debug("event_published", "topic", p.topic, "type", eventType, "key", key)
	return nil
}

func (p *Producer) Close() error { return p.w.Close() }

// Noop drops events; used when KAFKA_BROKERS is empty.
type Noop struct{}

func (Noop) PublishEvent(context.Context, string, string, any) error { return nil }
func (Noop) Close() error                                          { return nil }

// Publish sends an event and only logs a failure. Events are best effort and
// never fail the request that caused them.
func Publish(ctx context.Context, p Publisher, key, eventType string, payload any) {
	if p == nil {
		return
	}
	if err := p.PublishEvent(ctx, key, eventType, payload); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "type", eventType, "key", key, "error", err)
	}
}

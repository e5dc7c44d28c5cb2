package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/polkiloo/veo3store/internal/domain/model"
)

const (
	producerName = "veo3store"
	eventVersion = 1
)

// Publisher delivers order notifications to staff channels.
type Publisher interface {
	Publish(ctx context.Context, event model.OrderEvent) error
}

// Envelope wraps every event put on the topic.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events to a kafka topic keyed by order id.
type KafkaPublisher struct {
	writer messageWriter
	logger *slog.Logger
	newID  func() string
}

// NewKafkaPublisher creates a synchronous writer for the given brokers.
func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			BatchTimeout: 10 * time.Millisecond,
			WriteTimeout: 5 * time.Second,
		},
		logger: logger,
		newID:  uuid.NewString,
	}
}

// Publish encodes the event into an envelope and writes it.
func (p *KafkaPublisher) Publish(ctx context.Context, event model.OrderEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	occurred := event.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now().UTC()
	}
	env := Envelope{
		EventID:       p.newID(),
		EventType:     string(event.Type),
		EventVersion:  eventVersion,
		OccurredAt:    occurred,
		Producer:      producerName,
		CorrelationID: event.OrderID,
		Payload:       payload,
	}
	value, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.OrderID),
		Value: value,
		Time:  occurred,
		Headers: []kafka.Header{
			{Key: "x-event-type", Value: []byte(event.Type)},
			{Key: "x-event-version", Value: []byte(strconv.Itoa(eventVersion))},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	p.logger.Debug("order event published", slog.String("type", string(event.Type)), slog.String("order_id", event.OrderID))
	return nil
}

// Close flushes and closes the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// LogPublisher writes notifications to the application log.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher is used when no broker is configured.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, event model.OrderEvent) error {
	p.logger.Info("order notification",
		slog.String("type", string(event.Type)),
		slog.String("order_id", event.OrderID),
		slog.String("order_number", event.OrderNumber),
		slog.Int64("amount", event.Amount),
		slog.String("transfer_content", event.TransferContent),
		slog.String("message", event.Message))
	return nil
}

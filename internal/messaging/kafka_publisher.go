package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/nexora/account-api/internal/platform/logger"
)

// writeTimeout bounds a single publish attempt so a slow or unreachable
// broker cannot stall a dispatcher worker indefinitely.
const writeTimeout = 5 * time.Second

// messageWriter abstracts *kafka.Writer for testing.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher implements Publisher on top of a Kafka topic. Messages
// are keyed by email so notifications for the same address stay ordered
// within a partition.
type KafkaPublisher struct {
	writer messageWriter
	logger *slog.Logger
}

// NewKafkaPublisher creates a publisher writing to the given topic.
// If logger is nil, a default logger is used.
func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) *KafkaPublisher {
	if logger == nil {
		logger = slog.Default()
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		WriteTimeout: writeTimeout,
	}

	return &KafkaPublisher{
		writer: writer,
		logger: logger.With(slog.String("component", "kafka_publisher")),
	}
}

// Ensure KafkaPublisher implements Publisher
var _ Publisher = (*KafkaPublisher)(nil)

// Publish implements Publisher.Publish
func (p *KafkaPublisher) Publish(ctx context.Context, n Notification) error {
	log := logger.FromContextOrDefault(ctx, p.logger)

	payload, err := n.Marshal()
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	err = p.writer.WriteMessages(writeCtx, kafka.Message{
		Key:   []byte(n.Email),
		Value: payload,
		Time:  time.Now().UTC(),
	})
	if err != nil {
		log.Error("failed to publish notification",
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	log.Debug("notification published")
	return nil
}

// Close releases the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

package messaging

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/segmentio/kafka-go"
)

// Sender performs the delivery side effect for a notification, such as
// sending the confirmation email.
type Sender interface {
	// Send delivers the notification to the user. An error leaves the
	// message unacknowledged so the transport can redeliver it.
	Send(ctx context.Context, n Notification) error
}

// LogSender is a Sender that records deliveries in the log. It stands in
// for a real mail integration in development environments.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a LogSender.
func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger.With(slog.String("component", "log_sender"))}
}

// Send implements Sender.
func (s *LogSender) Send(ctx context.Context, n Notification) error {
	s.logger.Info("confirmation notification delivered",
		slog.String("email", n.Email))
	return nil
}

// messageReader abstracts *kafka.Reader for testing.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer reads notifications from the channel and hands them to a
// Sender. Offsets are committed only after a successful delivery, so a
// failed message stays eligible for transport-level redelivery.
type Consumer struct {
	reader messageReader
	sender Sender
	logger *slog.Logger
}

// NewConsumer creates a consumer joining the given consumer group.
// If logger is nil, a default logger is used.
func NewConsumer(brokers []string, topic, groupID string, sender Sender, logger *slog.Logger) *Consumer {
	if sender == nil {
		panic("sender cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: groupID,
	})

	return &Consumer{
		reader: reader,
		sender: sender,
		logger: logger.With(slog.String("component", "notification_consumer")),
	}
}

// Run consumes messages until the context is cancelled or the reader is
// closed. Malformed payloads are committed and skipped; they would never
// succeed and must not wedge the partition.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		n, err := UnmarshalNotification(msg.Value)
		if err != nil {
			c.logger.Warn("discarding malformed notification",
				slog.String("error", err.Error()),
				slog.Int64("offset", msg.Offset))
			if err := c.reader.CommitMessages(ctx, msg); err != nil {
				return err
			}
			continue
		}

		if err := c.sender.Send(ctx, n); err != nil {
			// No commit: the message stays pending and will be
			// redelivered or dead-lettered by the transport.
			c.logger.Error("failed to deliver notification",
				slog.String("error", err.Error()),
				slog.Int64("offset", msg.Offset))
			continue
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			return err
		}
	}
}

// Close releases the underlying reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}

package messaging

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWriter records written messages.
type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublisherPublish(t *testing.T) {
	t.Parallel()

	writer := &fakeWriter{}
	pub := &KafkaPublisher{writer: writer, logger: testLogger()}

	err := pub.Publish(context.Background(), Notification{Email: "a@x.com", Token: "tok"})
	require.NoError(t, err)

	require.Len(t, writer.messages, 1)
	msg := writer.messages[0]
	assert.Equal(t, []byte("a@x.com"), msg.Key, "messages are keyed by email")

	n, err := UnmarshalNotification(msg.Value)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", n.Email)
	assert.Equal(t, "tok", n.Token)
}

func TestKafkaPublisherPropagatesWriteError(t *testing.T) {
	t.Parallel()

	writer := &fakeWriter{err: errors.New("broker down")}
	pub := &KafkaPublisher{writer: writer, logger: testLogger()}

	err := pub.Publish(context.Background(), Notification{Email: "a@x.com", Token: "tok"})
	assert.Error(t, err)
}

func TestKafkaPublisherRejectsInvalidPayload(t *testing.T) {
	t.Parallel()

	writer := &fakeWriter{}
	pub := &KafkaPublisher{writer: writer, logger: testLogger()}

	err := pub.Publish(context.Background(), Notification{})
	assert.Error(t, err)
	assert.Empty(t, writer.messages)
}

func TestKafkaPublisherClose(t *testing.T) {
	t.Parallel()

	writer := &fakeWriter{}
	pub := &KafkaPublisher{writer: writer, logger: testLogger()}

	require.NoError(t, pub.Close())
	assert.True(t, writer.closed)
}

package messaging

import "context"

// Publisher hands a notification to the outbound channel. Delivery
// guarantees (at-least-once) are owned by the transport; the publisher's
// responsibility ends once the message is accepted by the broker.
type Publisher interface {
	// Publish sends the notification to the configured channel.
	Publish(ctx context.Context, n Notification) error
}

// Package messaging implements the asynchronous notification channel:
// the payload codec, the Kafka-backed publisher, the bounded in-process
// dispatcher that keeps publishing off the request path, and the
// delivery consumer.
package messaging

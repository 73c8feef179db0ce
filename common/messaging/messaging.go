// Package messaging provides abstractions for the message queue sitting
// between the API and the consumer. It defines interfaces that let services
// enqueue and drain messages without being coupled to a specific queue
// implementation.
package messaging

import (
	"context"
	"time"
)

// Message is one unit held by the queue.
type Message struct {
	// ID is the queue-assigned message identifier.
	ID string

	// ReceiptHandle is the single-use token required to delete the message.
	// It is valid only until the message is deleted or its visibility
	// timeout expires.
	ReceiptHandle string

	// Body is the raw message payload.
	Body []byte
}

// Publisher enqueues message bodies.
type Publisher interface {
	// Enqueue submits a message body and returns the queue-assigned ID.
	Enqueue(ctx context.Context, body []byte) (string, error)
}

// Consumer drains and acknowledges messages.
type Consumer interface {
	// Receive long-polls for up to max messages, waiting at most wait for
	// at least one to arrive. A nil or empty result is not an error.
	Receive(ctx context.Context, max int32, wait time.Duration) ([]Message, error)

	// Delete acknowledges a message by its receipt handle. A message that
	// is never deleted becomes eligible for redelivery once its visibility
	// timeout expires.
	Delete(ctx context.Context, receiptHandle string) error
}

// Queue combines both sides of the contract.
type Queue interface {
	Publisher
	Consumer
}

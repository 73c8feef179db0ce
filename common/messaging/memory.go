package messaging

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrUnknownReceipt is returned by MemoryQueue.Delete when the receipt handle
// does not match an in-flight message. A handle expires as soon as the message
// is deleted or becomes visible again.
var ErrUnknownReceipt = errors.New("unknown or expired receipt handle")

type memoryMessage struct {
	id            string
	body          []byte
	receiptHandle string
	// visibleAt is the instant the message becomes eligible for (re)delivery.
	visibleAt time.Time
}

// MemoryQueue is an in-process Queue with SQS-like visibility timeout
// semantics. A received message stays hidden until it is deleted or its
// visibility timeout expires, at which point it is redelivered with a fresh
// receipt handle. Used in tests and local development.
type MemoryQueue struct {
	mu         sync.Mutex
	messages   []*memoryMessage
	visibility time.Duration
	now        func() time.Time
}

// NewMemoryQueue creates a MemoryQueue with the given visibility timeout.
func NewMemoryQueue(visibility time.Duration) *MemoryQueue {
	return &MemoryQueue{
		visibility: visibility,
		now:        time.Now,
	}
}

// Enqueue appends a message body and returns a generated message ID.
func (q *MemoryQueue) Enqueue(_ context.Context, body []byte) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	msg := &memoryMessage{
		id:   uuid.New().String(),
		body: append([]byte(nil), body...),
	}
	q.messages = append(q.messages, msg)
	return msg.id, nil
}

// Receive returns up to max currently visible messages, waiting up to wait
// for at least one to become available.
func (q *MemoryQueue) Receive(ctx context.Context, max int32, wait time.Duration) ([]Message, error) {
	deadline := q.now().Add(wait)
	for {
		if msgs := q.take(max); len(msgs) > 0 {
			return msgs, nil
		}
		if q.now().After(deadline) {
			return nil, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func (q *MemoryQueue) take(max int32) []Message {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	var out []Message
	for _, m := range q.messages {
		if int32(len(out)) >= max {
			break
		}
		if m.visibleAt.After(now) {
			continue
		}
		m.receiptHandle = uuid.New().String()
		m.visibleAt = now.Add(q.visibility)
		out = append(out, Message{
			ID:            m.id,
			ReceiptHandle: m.receiptHandle,
			Body:          append([]byte(nil), m.body...),
		})
	}
	return out
}

// Delete removes the in-flight message matching the receipt handle.
func (q *MemoryQueue) Delete(_ context.Context, receiptHandle string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	for i, m := range q.messages {
		if m.receiptHandle != receiptHandle {
			continue
		}
		// A handle is only valid while the message is still hidden.
		if !m.visibleAt.After(now) {
			break
		}
		q.messages = append(q.messages[:i], q.messages[i+1:]...)
		return nil
	}
	return ErrUnknownReceipt
}

// Len reports how many messages remain in the queue, visible or not.
func (q *MemoryQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.messages)
}

// Package loop drives the consumer's poll cycle: receive a batch, persist
// each message, acknowledge what persisted, sleep, repeat.
package loop

import (
	"context"
	"errors"
	"time"

	"github.com/mailrelay-systems/mailrelay-stack/common/logging"
	"github.com/mailrelay-systems/mailrelay-stack/common/messaging"
	"github.com/mailrelay-systems/mailrelay-stack/consumer/internal/metrics"
	"github.com/mailrelay-systems/mailrelay-stack/consumer/internal/service"
)

// Processor handles one message end to end.
type Processor interface {
	Process(ctx context.Context, msg messaging.Message) error
}

// Options control the loop's pacing.
type Options struct {
	// PollInterval is the idle sleep between cycles.
	PollInterval time.Duration

	// MaxMessages caps how many messages one poll requests.
	MaxMessages int32

	// WaitTime is how long one poll waits server-side for a message.
	WaitTime time.Duration
}

// CycleResult reports what one poll cycle did.
type CycleResult struct {
	Received  int
	Succeeded int
}

// Loop repeatedly drains the queue until its context is cancelled. Each
// cycle is stateless with respect to prior cycles.
type Loop struct {
	queue     messaging.Consumer
	processor Processor
	opts      Options
	logger    *logging.Logger
}

// New creates a Loop.
func New(queue messaging.Consumer, processor Processor, opts Options, logger *logging.Logger) *Loop {
	return &Loop{
		queue:     queue,
		processor: processor,
		opts:      opts,
		logger:    logger,
	}
}

// Run cycles until ctx is cancelled. Cycle failures are recoverable: they are
// logged and the idle sleep still applies before the next attempt. Only
// cancellation stops the loop.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Info("Starting consumer loop",
		"poll_interval", l.opts.PollInterval.String(),
		"max_messages", l.opts.MaxMessages,
	)

	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Consumer loop stopped")
			return ctx.Err()
		default:
		}

		start := time.Now()
		result, err := l.Cycle(ctx)
		metrics.CycleDuration.Observe(time.Since(start).Seconds())

		switch {
		case err != nil && errors.Is(err, context.Canceled):
			l.logger.Info("Consumer loop stopped")
			return err
		case err != nil:
			l.logger.Error("Poll cycle failed", logging.Error(err))
		case result.Received > 0:
			l.logger.Info("Poll cycle complete",
				logging.FieldReceived, result.Received,
				logging.FieldStored, result.Succeeded,
			)
		default:
			l.logger.Debug("No messages in queue")
		}

		select {
		case <-ctx.Done():
			l.logger.Info("Consumer loop stopped")
			return ctx.Err()
		case <-time.After(l.opts.PollInterval):
		}
	}
}

// Cycle performs one receive-persist-acknowledge pass. Per-message failures
// are isolated: one bad message never aborts the rest of the batch.
func (l *Loop) Cycle(ctx context.Context) (CycleResult, error) {
	msgs, err := l.queue.Receive(ctx, l.opts.MaxMessages, l.opts.WaitTime)
	if err != nil {
		return CycleResult{}, err
	}

	result := CycleResult{Received: len(msgs)}
	if len(msgs) == 0 {
		return result, nil
	}
	metrics.MessagesReceived.Add(float64(len(msgs)))

	for _, msg := range msgs {
		if err := l.processor.Process(ctx, msg); err != nil {
			if errors.Is(err, service.ErrMalformedBody) {
				l.logger.WarnContext(ctx, "Skipping malformed message",
					logging.MessageID(msg.ID),
					logging.Error(err),
				)
			} else {
				l.logger.ErrorContext(ctx, "Failed to process message",
					logging.MessageID(msg.ID),
					logging.Error(err),
				)
			}
			continue
		}
		result.Succeeded++
	}

	return result, nil
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/mailrelay-systems/mailrelay-stack/common/logging"
	"github.com/mailrelay-systems/mailrelay-stack/common/messaging"
	"github.com/mailrelay-systems/mailrelay-stack/consumer/internal/metrics"
	"github.com/mailrelay-systems/mailrelay-stack/consumer/internal/storage"
)

// ErrMalformedBody means the message body is not valid JSON. The message is
// skipped and left unacknowledged so the queue's visibility timeout policy
// can redeliver it.
var ErrMalformedBody = errors.New("malformed message body")

// ObjectStore is the persistence surface the processor depends on.
type ObjectStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
}

// Processor persists one queue message at a time and acknowledges it only
// after the write succeeds.
type Processor struct {
	queue  messaging.Consumer
	store  ObjectStore
	logger *logging.Logger

	// now is injectable so tests can pin the storage key date.
	now func() time.Time

	startedAt time.Time
	processed atomic.Uint64
	failed    atomic.Uint64
}

// NewProcessor creates a new Processor instance.
func NewProcessor(queue messaging.Consumer, store ObjectStore, logger *logging.Logger) *Processor {
	return &Processor{
		queue:     queue,
		store:     store,
		logger:    logger,
		now:       time.Now,
		startedAt: time.Now().UTC(),
	}
}

// Process persists msg to the object store and deletes it from the queue.
//
// The key is derived from the queue-assigned message ID and the current UTC
// date, so a redelivered message overwrites rather than duplicates. A delete
// failure after successful persistence is logged but not returned: the
// persisted object stands, and the overwrite on redelivery keeps the result
// idempotent.
func (p *Processor) Process(ctx context.Context, msg messaging.Message) error {
	var record any
	if err := json.Unmarshal(msg.Body, &record); err != nil {
		p.failed.Add(1)
		metrics.MessagesFailed.Inc()
		return fmt.Errorf("%w: message %s: %v", ErrMalformedBody, msg.ID, err)
	}

	body, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		p.failed.Add(1)
		metrics.MessagesFailed.Inc()
		return fmt.Errorf("encode message %s: %w", msg.ID, err)
	}

	key := storage.ObjectKey(msg.ID, p.now())

	start := time.Now()
	err = p.store.Put(ctx, key, body, "application/json")
	metrics.StorageDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		p.failed.Add(1)
		metrics.MessagesFailed.Inc()
		return fmt.Errorf("store message %s: %w", msg.ID, err)
	}

	p.logger.InfoContext(ctx, "Stored message",
		logging.MessageID(msg.ID),
		logging.Key(key),
	)
	metrics.MessagesStored.Inc()

	if err := p.queue.Delete(ctx, msg.ReceiptHandle); err != nil {
		// Not fatal: the object is persisted and redelivery overwrites it.
		metrics.DeleteErrors.Inc()
		p.logger.WarnContext(ctx, "Failed to delete message after persistence",
			logging.MessageID(msg.ID),
			logging.Error(err),
		)
	}

	p.processed.Add(1)
	return nil
}

// Stats is a snapshot of processor metrics.
type Stats struct {
	UptimeSeconds int64  `json:"uptime_seconds"`
	Processed     uint64 `json:"processed"`
	Failed        uint64 `json:"failed"`
}

// Health returns live status for health checks.
func (p *Processor) Health() Stats {
	return Stats{
		UptimeSeconds: int64(time.Since(p.startedAt).Seconds()),
		Processed:     p.processed.Load(),
		Failed:        p.failed.Load(),
	}
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/mailrelay-systems/mailrelay-stack/api/internal/metrics"
	"github.com/mailrelay-systems/mailrelay-stack/common/logging"
	"github.com/mailrelay-systems/mailrelay-stack/common/messaging"
	"github.com/mailrelay-systems/mailrelay-stack/common/models"
	"github.com/mailrelay-systems/mailrelay-stack/common/secrets"
)

var (
	// ErrInvalidToken means the caller's token does not match the configured secret.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenCheck means the expected token could not be fetched, so the
	// caller's token could not be verified. The underlying cause is logged,
	// never surfaced.
	ErrTokenCheck = errors.New("token validation failed")
)

// RelayService validates a caller's token and forwards accepted message
// records to the queue.
//
// The expected token is fetched from the secret provider on first use and
// cached for the process lifetime. Concurrent first use may fetch more than
// once; the duplicate fetches are idempotent, so no locking beyond the atomic
// pointer is needed. A failed fetch is not cached and is retried on the next
// request.
type RelayService struct {
	queue      messaging.Publisher
	provider   secrets.Provider
	secretName string
	logger     *logging.Logger

	cachedToken atomic.Pointer[string]

	accepted atomic.Uint64
	rejected atomic.Uint64
}

// NewRelayService constructs a RelayService.
func NewRelayService(queue messaging.Publisher, provider secrets.Provider, secretName string, logger *logging.Logger) *RelayService {
	return &RelayService{
		queue:      queue,
		provider:   provider,
		secretName: secretName,
		logger:     logger,
	}
}

// Relay checks the envelope's token and, on a match, enqueues the message
// record. It returns the queue-assigned message ID.
func (s *RelayService) Relay(ctx context.Context, env *models.Envelope) (string, error) {
	if err := s.checkToken(ctx, *env.Token); err != nil {
		s.rejected.Add(1)
		return "", err
	}

	body, err := json.Marshal(env.Data)
	if err != nil {
		return "", fmt.Errorf("encode message record: %w", err)
	}

	start := time.Now()
	id, err := s.queue.Enqueue(ctx, body)
	metrics.EnqueueDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.EnqueueErrors.Inc()
		s.logger.ErrorContext(ctx, "Failed to enqueue message", logging.Error(err))
		return "", fmt.Errorf("enqueue message: %w", err)
	}

	s.accepted.Add(1)
	metrics.MessageBytesTotal.Add(float64(len(body)))
	return id, nil
}

func (s *RelayService) checkToken(ctx context.Context, provided string) error {
	expected := s.cachedToken.Load()
	if expected == nil {
		value, err := s.fetchToken(ctx)
		if err != nil {
			s.logger.ErrorContext(ctx, "Token validation error", logging.Error(err))
			return ErrTokenCheck
		}
		expected = &value
	}
	if provided != *expected {
		return ErrInvalidToken
	}
	return nil
}

func (s *RelayService) fetchToken(ctx context.Context) (string, error) {
	value, err := s.provider.Get(ctx, s.secretName)
	if err != nil {
		return "", err
	}
	metrics.TokenFetches.Inc()
	s.cachedToken.Store(&value)
	return value, nil
}

// Stats is a snapshot of relay counters.
type Stats struct {
	Accepted uint64 `json:"accepted"`
	Rejected uint64 `json:"rejected"`
}

// Stats returns current counters.
func (s *RelayService) Stats() Stats {
	return Stats{
		Accepted: s.accepted.Load(),
		Rejected: s.rejected.Load(),
	}
}

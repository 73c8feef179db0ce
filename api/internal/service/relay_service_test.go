package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mailrelay-systems/mailrelay-stack/common/logging"
	"github.com/mailrelay-systems/mailrelay-stack/common/models"
	"github.com/mailrelay-systems/mailrelay-stack/common/secrets"
)

type fakePublisher struct {
	mu     sync.Mutex
	bodies [][]byte
	id     string
	err    error
}

func (f *fakePublisher) Enqueue(_ context.Context, body []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.bodies = append(f.bodies, append([]byte(nil), body...))
	return f.id, nil
}

type fakeProvider struct {
	mu    sync.Mutex
	value string
	err   error
	calls int
}

func (f *fakeProvider) Get(_ context.Context, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.value, nil
}

func validEnvelope(token string) *models.Envelope {
	return &models.Envelope{
		Data: map[string]json.RawMessage{
			"email_subject":    json.RawMessage(`"S"`),
			"email_sender":     json.RawMessage(`"a@b.com"`),
			"email_timestream": json.RawMessage(`"2024-01-01T00:00:00Z"`),
			"email_content":    json.RawMessage(`"C"`),
		},
		Token: &token,
	}
}

func TestRelay_Success(t *testing.T) {
	queue := &fakePublisher{id: "msg-123"}
	provider := &fakeProvider{value: "secret-token"}
	svc := NewRelayService(queue, provider, "/test/token", logging.Default())

	id, err := svc.Relay(context.Background(), validEnvelope("secret-token"))
	require.NoError(t, err)
	assert.Equal(t, "msg-123", id)
	require.Len(t, queue.bodies, 1)

	// The enqueued body is the data object alone, not the envelope.
	var record map[string]string
	require.NoError(t, json.Unmarshal(queue.bodies[0], &record))
	assert.Equal(t, "S", record["email_subject"])
	assert.NotContains(t, record, "token")
}

func TestRelay_InvalidToken(t *testing.T) {
	queue := &fakePublisher{id: "msg-123"}
	provider := &fakeProvider{value: "secret-token"}
	svc := NewRelayService(queue, provider, "/test/token", logging.Default())

	_, err := svc.Relay(context.Background(), validEnvelope("wrong"))
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Empty(t, queue.bodies, "nothing may be enqueued on auth failure")
}

func TestRelay_TokenCachedAcrossCalls(t *testing.T) {
	queue := &fakePublisher{id: "msg-123"}
	provider := &fakeProvider{value: "secret-token"}
	svc := NewRelayService(queue, provider, "/test/token", logging.Default())

	for i := 0; i < 5; i++ {
		_, err := svc.Relay(context.Background(), validEnvelope("secret-token"))
		require.NoError(t, err)
	}
	assert.Equal(t, 1, provider.calls, "secret must be fetched once per process lifetime")
}

func TestRelay_SecretFetchFailure(t *testing.T) {
	queue := &fakePublisher{id: "msg-123"}
	provider := &fakeProvider{err: secrets.ErrUnavailable}
	svc := NewRelayService(queue, provider, "/test/token", logging.Default())

	_, err := svc.Relay(context.Background(), validEnvelope("secret-token"))
	assert.ErrorIs(t, err, ErrTokenCheck)
	assert.Empty(t, queue.bodies)

	// A failed fetch is not cached; the next request tries again and succeeds.
	provider.mu.Lock()
	provider.err = nil
	provider.value = "secret-token"
	provider.mu.Unlock()

	id, err := svc.Relay(context.Background(), validEnvelope("secret-token"))
	require.NoError(t, err)
	assert.Equal(t, "msg-123", id)
	assert.Equal(t, 2, provider.calls)
}

func TestRelay_QueueFailure(t *testing.T) {
	queue := &fakePublisher{err: errors.New("sqs unreachable")}
	provider := &fakeProvider{value: "secret-token"}
	svc := NewRelayService(queue, provider, "/test/token", logging.Default())

	_, err := svc.Relay(context.Background(), validEnvelope("secret-token"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidToken)
	assert.Contains(t, err.Error(), "sqs unreachable")
}

func TestRelay_ConcurrentFirstUse(t *testing.T) {
	queue := &fakePublisher{id: "msg-123"}
	provider := &fakeProvider{value: "secret-token"}
	svc := NewRelayService(queue, provider, "/test/token", logging.Default())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Relay(context.Background(), validEnvelope("secret-token"))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// Duplicate fetches on cold cache are tolerated, but every call succeeds.
	assert.Len(t, queue.bodies, 10)
	assert.GreaterOrEqual(t, provider.calls, 1)
}

package loop

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mailrelay-systems/mailrelay-stack/api/internal/handlers"
	apiservice "github.com/mailrelay-systems/mailrelay-stack/api/internal/service"
	"github.com/mailrelay-systems/mailrelay-stack/common/logging"
	"github.com/mailrelay-systems/mailrelay-stack/common/messaging"
	"github.com/mailrelay-systems/mailrelay-stack/common/models"
	"github.com/mailrelay-systems/mailrelay-stack/consumer/internal/service"
	"github.com/mailrelay-systems/mailrelay-stack/consumer/internal/storage"
)

type errConsumer struct{ err error }

func (e *errConsumer) Receive(context.Context, int32, time.Duration) ([]messaging.Message, error) {
	return nil, e.err
}

func (e *errConsumer) Delete(context.Context, string) error { return nil }

func testOptions() Options {
	return Options{PollInterval: time.Millisecond, MaxMessages: 10, WaitTime: 0}
}

func TestCycle_EmptyQueue(t *testing.T) {
	queue := messaging.NewMemoryQueue(30 * time.Second)
	store := storage.NewMemoryStore()
	l := New(queue, service.NewProcessor(queue, store, logging.Default()), testOptions(), logging.Default())

	result, err := l.Cycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, CycleResult{}, result)
}

func TestCycle_IsolatesBadMessages(t *testing.T) {
	queue := messaging.NewMemoryQueue(30 * time.Second)
	store := storage.NewMemoryStore()
	l := New(queue, service.NewProcessor(queue, store, logging.Default()), testOptions(), logging.Default())

	_, err := queue.Enqueue(context.Background(), []byte(`{broken`))
	require.NoError(t, err)
	goodID, err := queue.Enqueue(context.Background(), []byte(`{"email_subject":"hi"}`))
	require.NoError(t, err)

	result, err := l.Cycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, CycleResult{Received: 2, Succeeded: 1}, result)

	assert.Equal(t, 1, store.Len())
	keys, err := store.List(context.Background(), "messages/")
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Contains(t, keys[0], goodID)
}

func TestCycle_ReceiveErrorIsRecoverable(t *testing.T) {
	queue := &errConsumer{err: errors.New("network down")}
	store := storage.NewMemoryStore()
	l := New(queue, service.NewProcessor(queue, store, logging.Default()), testOptions(), logging.Default())

	_, err := l.Cycle(context.Background())
	assert.Error(t, err)
}

func TestRun_StopsOnCancel(t *testing.T) {
	queue := messaging.NewMemoryQueue(30 * time.Second)
	store := storage.NewMemoryStore()
	l := New(queue, service.NewProcessor(queue, store, logging.Default()), testOptions(), logging.Default())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop after cancel")
	}
}

type staticProvider struct{ token string }

func (p *staticProvider) Get(context.Context, string) (string, error) {
	return p.token, nil
}

// End-to-end path: HTTP submission through the relay handler, one poll cycle,
// and a byte-for-byte check of what landed in the store.
func TestEndToEnd_SubmitRelayPersist(t *testing.T) {
	queue := messaging.NewMemoryQueue(30 * time.Second)
	store := storage.NewMemoryStore()

	relay := apiservice.NewRelayService(queue, &staticProvider{token: "sekrit"}, "/mailrelay/test/api-token", logging.Default())
	handler := handlers.NewMessageHandler(relay, nil, logging.Default())

	payload := map[string]any{
		"data": map[string]any{
			"email_subject":    "Quarterly report",
			"email_sender":     "ops@example.com",
			"email_timestream": "2024-01-01T12:00:00Z",
			"email_content":    "All systems nominal.",
		},
		"token": "sekrit",
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/message", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.HandleMessage(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp models.SubmitResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	require.NotEmpty(t, resp.MessageID)

	l := New(queue, service.NewProcessor(queue, store, logging.Default()), testOptions(), logging.Default())
	result, err := l.Cycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, CycleResult{Received: 1, Succeeded: 1}, result)
	assert.Equal(t, 0, queue.Len(), "message must be acknowledged after persistence")

	day := time.Now().UTC()
	key := fmt.Sprintf("messages/%04d/%02d/%02d/%s.json", day.Year(), day.Month(), day.Day(), resp.MessageID)
	stored, err := store.Get(context.Background(), key)
	require.NoError(t, err)

	var record map[string]string
	require.NoError(t, json.Unmarshal(stored, &record))
	assert.Equal(t, "Quarterly report", record["email_subject"])
	assert.Equal(t, "ops@example.com", record["email_sender"])
	assert.Equal(t, "All systems nominal.", record["email_content"])
	assert.NotContains(t, record, "token", "auth token must never reach storage")
}

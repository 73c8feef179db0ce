package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/message", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var envelope struct {
			Data  map[string]string `json:"data"`
			Token *string           `json:"token"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&envelope))
		require.NotNil(t, envelope.Token)
		assert.Equal(t, "sekrit", *envelope.Token)
		assert.Equal(t, "hello", envelope.Data["email_subject"])

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"status":     "success",
			"message":    "Message sent to queue",
			"message_id": "abc-123",
		})
	}))
	defer srv.Close()

	id, err := NewAPIClient(srv.URL).SendMessage("sekrit", map[string]string{
		"email_subject": "hello",
	})
	require.NoError(t, err)
	assert.Equal(t, "abc-123", id)
}

func TestSendMessage_ErrorResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid token"})
	}))
	defer srv.Close()

	_, err := NewAPIClient(srv.URL).SendMessage("wrong", map[string]string{"a": "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "invalid token")
}

func TestSendMessage_NonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewAPIClient(srv.URL).SendMessage("t", map[string]string{"a": "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	assert.NoError(t, NewAPIClient(srv.URL).Health())
}

func TestHealth_Unhealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	assert.Error(t, NewAPIClient(srv.URL).Health())
}

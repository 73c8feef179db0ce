package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/mailrelay-systems/mailrelay-stack/api/internal/metrics"
	"github.com/mailrelay-systems/mailrelay-stack/api/internal/ratelimit"
	"github.com/mailrelay-systems/mailrelay-stack/api/internal/service"
	"github.com/mailrelay-systems/mailrelay-stack/api/internal/validator"
	"github.com/mailrelay-systems/mailrelay-stack/common/httputil"
	"github.com/mailrelay-systems/mailrelay-stack/common/logging"
	"github.com/mailrelay-systems/mailrelay-stack/common/models"
)

// RelayService is the service surface the handler depends on.
type RelayService interface {
	Relay(ctx context.Context, env *models.Envelope) (string, error)
	Stats() service.Stats
}

// MessageHandler serves the message submission API.
type MessageHandler struct {
	service RelayService
	limiter ratelimit.RateLimiter
	logger  *logging.Logger
}

// NewMessageHandler constructs a MessageHandler. A nil limiter disables rate
// limiting.
func NewMessageHandler(svc RelayService, limiter ratelimit.RateLimiter, logger *logging.Logger) *MessageHandler {
	if limiter == nil {
		limiter = &ratelimit.NoOpRateLimiter{}
	}
	return &MessageHandler{
		service: svc,
		limiter: limiter,
		logger:  logger,
	}
}

// HandleMessage accepts a message envelope, validates its shape and token,
// and forwards the record to the queue.
func (h *MessageHandler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodPost {
		h.reject(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	clientIP := httputil.GetClientIP(r)
	allowed, err := h.limiter.Allow(ctx, clientIP)
	if err != nil {
		// A broken limiter must not block ingestion.
		h.logger.WarnContext(ctx, "Rate limiter unavailable", logging.Error(err))
		allowed = true
	}
	if !allowed {
		h.reject(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	if !httputil.IsJSONRequest(r) {
		h.reject(w, http.StatusBadRequest, "Content-Type must be application/json")
		return
	}

	var env models.Envelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		h.reject(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if ok, reason := validator.Validate(&env); !ok {
		h.reject(w, http.StatusBadRequest, reason)
		return
	}

	id, err := h.service.Relay(ctx, &env)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidToken), errors.Is(err, service.ErrTokenCheck):
			h.reject(w, http.StatusUnauthorized, err.Error())
		default:
			h.reject(w, http.StatusInternalServerError, fmt.Sprintf("Failed to send message: %v", err))
		}
		return
	}

	h.logger.InfoContext(ctx, "Message relayed to queue",
		logging.MessageID(id),
		logging.IP(clientIP),
	)
	metrics.MessagesTotal.WithLabelValues("200").Inc()
	httputil.WriteJSON(w, http.StatusOK, models.SubmitResponse{
		Status:    "success",
		Message:   "Message sent to queue",
		MessageID: id,
	})
}

// Health always reports healthy while the process is up; no dependency checks.
func (h *MessageHandler) Health(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// Ready reports relay counters alongside readiness.
func (h *MessageHandler) Ready(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ready",
		"stats":  h.service.Stats(),
	})
}

func (h *MessageHandler) reject(w http.ResponseWriter, status int, message string) {
	metrics.MessagesTotal.WithLabelValues(strconv.Itoa(status)).Inc()
	httputil.WriteError(w, status, message)
}

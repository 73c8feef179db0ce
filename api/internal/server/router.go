package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mailrelay-systems/mailrelay-stack/api/internal/handlers"
	"github.com/mailrelay-systems/mailrelay-stack/common/middleware"
)

// NewRouter constructs a ServeMux with API routes registered.
func NewRouter(h *handlers.MessageHandler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/message", h.HandleMessage)

	// Health endpoints
	mux.HandleFunc("/health", h.Health)
	mux.HandleFunc("/healthz", h.Health)
	mux.HandleFunc("/readyz", h.Ready)

	// Prometheus metrics
	mux.Handle("/metrics", promhttp.Handler())

	return middleware.RequestID(mux)
}

package handlers

import (
	"fmt"
	"net/http"

	"portal/internal/engine/webhooks"
)

type MetricsHandler struct {
	dispatcher *webhooks.Dispatcher
}

func NewMetricsHandler(dispatcher *webhooks.Dispatcher) *MetricsHandler {
	return &MetricsHandler{dispatcher: dispatcher}
}

// Export writes relay counters in the Prometheus text format.
func (h *MetricsHandler) Export(w http.ResponseWriter, r *http.Request) {
	stats := h.dispatcher.Stats()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	fmt.Fprintf(w, "# HELP portal_up Is the server up\n")
	fmt.Fprintf(w, "# TYPE portal_up gauge\n")
	fmt.Fprintf(w, "portal_up 1\n")
	fmt.Fprintf(w, "# HELP portal_relay_notifications_total Notifications handled by the relay, by outcome\n")
	fmt.Fprintf(w, "# TYPE portal_relay_notifications_total counter\n")
	fmt.Fprintf(w, "portal_relay_notifications_total{outcome=\"sent\"} %d\n", stats.Sent)
	fmt.Fprintf(w, "portal_relay_notifications_total{outcome=\"skipped\"} %d\n", stats.Skipped)
	fmt.Fprintf(w, "portal_relay_notifications_total{outcome=\"rejected\"} %d\n", stats.Rejected)
}

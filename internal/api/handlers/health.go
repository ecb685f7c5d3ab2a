package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"portal/internal/engine/webhooks"
	"portal/internal/platform/database"
)

const healthTimeout = 2 * time.Second

// HealthHandler reports database liveness and which notification channels
// have a destination. Unconfigured channels do not degrade the status.
type HealthHandler struct {
	db       *database.DB
	registry *webhooks.Registry
}

func NewHealthHandler(db *database.DB, registry *webhooks.Registry) *HealthHandler {
	return &HealthHandler{db: db, registry: registry}
}

type healthResponse struct {
	Status    string            `json:"status"`
	Timestamp int64             `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
	Channels  map[string]bool   `json:"channels,omitempty"`
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	resp := healthResponse{
		Status:    "healthy",
		Timestamp: time.Now().Unix(),
		Checks:    map[string]string{"database": "healthy"},
	}

	if err := h.db.DB.PingContext(ctx); err != nil {
		resp.Status = "degraded"
		resp.Checks["database"] = "unhealthy: " + err.Error()
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	urls, err := h.registry.All(ctx)
	if err != nil {
		resp.Checks["channels"] = fmt.Sprintf("unreadable: %v", err)
	} else {
		resp.Channels = make(map[string]bool, len(urls))
		for ch, u := range urls {
			resp.Channels[string(ch)] = u != ""
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

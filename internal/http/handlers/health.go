package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/hongminglow/account-be/internal/http/respond"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler returns uptime and database reachability.
type HealthHandler struct {
	startedAt time.Time
	db        Pinger
}

// NewHealthHandler creates a health endpoint handler.
func NewHealthHandler(startedAt time.Time, db Pinger) *HealthHandler {
	return &HealthHandler{startedAt: startedAt, db: db}
}

// Register wires the handler into a ServeMux.
func (h *HealthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.handle)
}

type healthStatus struct {
	Status   string `json:"status"`
	Uptime   string `json:"uptime"`
	Database string `json:"database"`
}

func (h *HealthHandler) handle(w http.ResponseWriter, r *http.Request) {
	body := healthStatus{
		Status:   "ok",
		Uptime:   time.Since(h.startedAt).Truncate(time.Second).String(),
		Database: "ok",
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.db.Ping(ctx); err != nil {
		body.Status = "degraded"
		body.Database = "unreachable"
		respond.JSON(w, http.StatusServiceUnavailable, body.Status, body)
		return
	}
	respond.JSON(w, http.StatusOK, body.Status, body)
}

package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/isdelr/inventory-manager-be/internal/httpx"
	"github.com/isdelr/inventory-manager-be/internal/monitoring"
	"github.com/rs/zerolog/hlog"
)

// HostStatsSource provides the latest host snapshot.
type HostStatsSource interface {
	Latest() monitoring.HostStats
}

// HealthHandler serves the service banner and the health check.
type HealthHandler struct {
	db    *sql.DB
	stats HostStatsSource
}

// NewHealthHandler creates a new HealthHandler. stats may be nil.
func NewHealthHandler(db *sql.DB, stats HostStatsSource) *HealthHandler {
	return &HealthHandler{db: db, stats: stats}
}

// Root describes the service.
func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]string{
		"message":  "ERP Inventory Manager API",
		"status":   "running",
		"database": "SQLite (persistent)",
		"health":   "/api/health",
		"version":  "1.0.0",
	})
}

type healthResponse struct {
	Status   string                `json:"status"`
	Database string                `json:"database"`
	Host     *monitoring.HostStats `json:"host,omitempty"`
}

// Health pings the database and reports the latest host statistics.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := healthResponse{Status: "healthy", Database: "connected"}
	if h.stats != nil {
		if s := h.stats.Latest(); !s.SampledAt.IsZero() {
			resp.Host = &s
		}
	}

	if err := h.db.PingContext(ctx); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("Health check database ping failed")
		resp.Status = "unhealthy"
		resp.Database = "disconnected"
		httpx.JSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	httpx.JSON(w, http.StatusOK, resp)
}

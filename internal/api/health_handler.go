package api

import (
	"context"
	"net/http"
	"time"

	"github.com/phrazzld/srsforge/internal/api/shared"
	"github.com/phrazzld/srsforge/internal/platform/logger"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// Health returns a handler that reports liveness and database reachability.
// A nil db reports the database as "disabled".
func Health(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{Status: "ok", Database: "disabled"}
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				logger.FromContext(r.Context()).Warn("health check database ping failed", "error", err)
				resp.Status, resp.Database = "degraded", "unreachable"
				shared.RespondWithJSON(w, r, http.StatusServiceUnavailable, resp)
				return
			}
			resp.Database = "ok"
		}
		shared.RespondWithJSON(w, r, http.StatusOK, resp)
	}
}

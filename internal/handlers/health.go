package handlers

import (
	"context"
	"net/http"
	"time"

	pkghttp "github.com/mbnr/matrimonial/pkg/http"
)

// HealthChecker reports whether a backing store is reachable
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// Health returns a handler that pings db with a short deadline.
func Health(db HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.HealthCheck(ctx); err != nil {
			pkghttp.WriteJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unhealthy", Database: "down"})
			return
		}

		pkghttp.WriteJSON(w, http.StatusOK, healthResponse{Status: "healthy", Database: "up"})
	}
}

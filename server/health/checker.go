package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Checker handles the health check endpoints.
type Checker struct {
	db          Pinger
	fingerprint string
	logger      *slog.Logger
	timeout     time.Duration
}

// NewChecker creates a new health checker instance. fingerprint identifies
// the effective configuration the process booted with; db may be nil when
// the service has no database.
func NewChecker(db Pinger, fingerprint string, logger *slog.Logger) *Checker {
	return &Checker{
		db:          db,
		fingerprint: fingerprint,
		logger:      logger,
		timeout:     200 * time.Millisecond,
	}
}

// RegisterRoutes registers the health check routes on the router.
func (c *Checker) RegisterRoutes(r chi.Router) {
	r.Get("/health", c.HandleHealth)   // Liveness
	r.Get("/ready", c.HandleReadiness) // Readiness
}

// HandleHealth returns 200 OK while the binary is running.
func (c *Checker) HandleHealth(w http.ResponseWriter, r *http.Request) {
	c.write(w, http.StatusOK, map[string]string{
		"status": "UP",
		"config": c.fingerprint,
	})
}

// HandleReadiness checks the database within a short deadline.
func (c *Checker) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	status := "UP"
	statusCode := http.StatusOK
	response := map[string]string{"config": c.fingerprint}

	if c.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), c.timeout)
		defer cancel()

		dbStatus := "UP"
		if err := c.db.PingContext(ctx); err != nil {
			c.logger.ErrorContext(ctx, "readiness check failed: database unreachable or slow", "error", err)
			status = "DOWN"
			dbStatus = "DOWN"
			statusCode = http.StatusServiceUnavailable
		}
		response["db"] = dbStatus
	}

	response["status"] = status
	c.write(w, statusCode, response)
}

func (c *Checker) write(w http.ResponseWriter, code int, body map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		c.logger.Error("failed to write health response", "error", err)
	}
}

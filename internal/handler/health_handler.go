package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Pinger is a dependency whose reachability is reported by the health check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports whether the service can reach its database.
type HealthHandler struct {
	db      Pinger
	started time.Time
	timeout time.Duration
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db, started: time.Now(), timeout: 2 * time.Second}
}

// Check handles GET /health.
// 200 {"status":"healthy"} when the database answers, 503 {"status":"unhealthy"} otherwise.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), h.timeout)
	defer cancel()

	uptime := time.Since(h.started).Truncate(time.Second).String()
	if err := h.db.Ping(ctx); err != nil {
		log.Error().Err(err).Str("request_id", requestID(c)).Msg("health check failed: database unreachable")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unhealthy",
			"error":  "database connection failed",
			"uptime": uptime,
		})
	}
	return c.JSON(fiber.Map{
		"status": "healthy",
		"uptime": uptime,
	})
}

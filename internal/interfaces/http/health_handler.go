package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler liveness y readiness.
type HealthHandler struct {
	service string
	db      pinger
}

// NewHealthHandler db puede ser nil (solo liveness).
func NewHealthHandler(service string, db pinger) *HealthHandler {
	return &HealthHandler{service: service, db: db}
}

// Health GET /health
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	if h.db == nil {
		return c.JSON(fiber.Map{"status": "ok", "service": h.service})
	}
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()
	if err := h.db.Ping(ctx); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": h.service, "database": "down"})
	}
	return c.JSON(fiber.Map{"status": "ok", "service": h.service, "database": "up"})
}

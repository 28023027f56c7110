package handlers

import (
	"context"

	"github.com/gofiber/fiber/v3"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ProbeHandler serves the liveness and readiness endpoints.
type ProbeHandler struct {
	deps map[string]Pinger
}

// NewProbeHandler checks the database for readiness.
func NewProbeHandler(database Pinger) *ProbeHandler {
	return &ProbeHandler{deps: map[string]Pinger{"database": database}}
}

// Liveness answers 200 while the process is serving requests.
func (h *ProbeHandler) Liveness(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Readiness answers 200 when every dependency responds, 503 otherwise.
// The body lists each dependency as "ok" or "unavailable".
func (h *ProbeHandler) Readiness(c fiber.Ctx) error {
	checks := make(map[string]string, len(h.deps))
	ready := true
	for name, dep := range h.deps {
		if err := dep.Ping(c.Context()); err != nil {
			checks[name] = "unavailable"
			ready = false
			continue
		}
		checks[name] = "ok"
	}

	if !ready {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "error",
			"checks": checks,
		})
	}
	return c.JSON(fiber.Map{"status": "ok", "checks": checks})
}

package handler

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"
)

// ReadinessChecker reports whether the schema bootstrap has completed.
type ReadinessChecker interface {
	Ready() bool
}

// HealthCheck reports healthy once the schema is ready and the database
// answers a ping.
func HealthCheck(db *sql.DB, ready ReadinessChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if ready != nil && !ready.Ready() {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "database not ready")
		}
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe answers 200 while the process is up.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// Welcome answers the service banner on /.
func Welcome(version string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "welcome to JWT Pizza", "version": version})
	}
}

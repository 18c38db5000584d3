package middleware

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthCheck answers /health. check may be nil when there is no database.
func HealthCheck(serviceName string, check func(ctx context.Context) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status, code := "healthy", fiber.StatusOK
		if check != nil {
			if err := check(c.UserContext()); err != nil {
				status, code = "unhealthy", fiber.StatusServiceUnavailable
			}
		}

		return c.Status(code).JSON(fiber.Map{
			"status":    status,
			"timestamp": time.Now().Unix(),
			"service":   serviceName,
		})
	}
}

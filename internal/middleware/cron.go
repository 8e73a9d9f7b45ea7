package middleware

import (
	"crypto/subtle"
	"os"

	"github.com/gofiber/fiber/v2"
)

// CronProtected guards the scheduler endpoints with a shared secret. A server
// without CRON_SECRET set refuses all cron calls rather than running open.
func CronProtected() fiber.Handler {
	return func(c *fiber.Ctx) error {
		secret := os.Getenv("CRON_SECRET")
		if secret == "" {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "Cron secret not configured",
			})
		}

		provided := c.Get("X-Cron-Secret")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid cron secret",
			})
		}

		return c.Next()
	}
}

// NonProduction rejects requests when the server runs in production. Manual
// trigger endpoints exist for development and staging only.
func NonProduction() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if os.Getenv("ENVIRONMENT") == "production" {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Manual triggers are disabled in production",
			})
		}
		return c.Next()
	}
}

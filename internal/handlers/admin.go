package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// TriggerJob invokes a producer or the dispatcher by name, bypassing the
// schedule. The route is gated to non-production environments.
func TriggerJob(c *fiber.Ctx) error {
	switch c.Params("job") {
	case "dispatch":
		return DispatchTick(c)
	case "daily-reminder":
		return DailyReminder(c)
	case "evening-reminder":
		return EveningReminder(c)
	case "weekly-achievement":
		return WeeklyAchievement(c)
	case "cleanup":
		return Cleanup(c)
	default:
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Unknown job",
		})
	}
}

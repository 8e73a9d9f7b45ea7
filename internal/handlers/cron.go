package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"
)

// DispatchTick runs one dispatcher pass. Overlapping ticks are dropped by
// the dispatcher itself, so the scheduler can call this blindly.
func DispatchTick(c *fiber.Ctx) error {
	if err := Dispatcher.RunOnce(c.Context()); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Dispatch pass aborted",
		})
	}
	return c.JSON(fiber.Map{"success": true})
}

// DailyReminder queues the morning run reminders.
func DailyReminder(c *fiber.Ctx) error {
	queued, err := Producers.RunDailyReminder()
	if err != nil {
		log.Printf("Cron: daily reminder failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Daily reminder run failed",
		})
	}
	return c.JSON(fiber.Map{"success": true, "queued": queued})
}

// EveningReminder queues the follow-up reminders for users without a run today.
func EveningReminder(c *fiber.Ctx) error {
	queued, err := Producers.RunEveningReminder()
	if err != nil {
		log.Printf("Cron: evening reminder failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Evening reminder run failed",
		})
	}
	return c.JSON(fiber.Map{"success": true, "queued": queued})
}

// WeeklyAchievement queues the weekly achievement roundup.
func WeeklyAchievement(c *fiber.Ctx) error {
	queued, err := Producers.RunWeeklyAchievement()
	if err != nil {
		log.Printf("Cron: weekly achievement failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Weekly achievement run failed",
		})
	}
	return c.JSON(fiber.Map{"success": true, "queued": queued})
}

// Cleanup prunes terminal notification entries past retention.
func Cleanup(c *fiber.Ctx) error {
	removed, err := Producers.Cleanup()
	if err != nil {
		log.Printf("Cron: cleanup failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Cleanup run failed",
		})
	}
	return c.JSON(fiber.Map{"success": true, "removed": removed})
}

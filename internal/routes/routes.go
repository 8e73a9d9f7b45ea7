package routes

import (
	"github.com/arnold/runcast-api/internal/handlers"
	"github.com/arnold/runcast-api/internal/middleware"
	"github.com/gofiber/fiber/v2"
)

func Setup(app *fiber.App) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	// Lifecycle events arrive signature-verified from the webhook layer
	api.Post("/webhook", handlers.HandleWebhook)

	api.Get("/notifications", middleware.Protected(), handlers.GetNotifications)

	cron := api.Group("/cron", middleware.CronProtected())
	cron.Post("/dispatch", handlers.DispatchTick)
	cron.Post("/daily-reminder", handlers.DailyReminder)
	cron.Post("/evening-reminder", handlers.EveningReminder)
	cron.Post("/weekly-achievement", handlers.WeeklyAchievement)
	cron.Post("/cleanup", handlers.Cleanup)

	admin := api.Group("/admin", middleware.NonProduction())
	admin.Post("/trigger/:job", handlers.TriggerJob)
}

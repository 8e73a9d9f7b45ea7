package handlers

import (
	"errors"
	"log"

	"github.com/arnold/runcast-api/internal/services"
	"github.com/gofiber/fiber/v2"
)

// Package-level service instances, wired once at startup.
var (
	Dispatcher *services.Dispatcher
	Producers  *services.Producers
	Ingest     *services.EventIngest
)

// Init wires the handler package to the notification services.
func Init(d *services.Dispatcher, p *services.Producers, i *services.EventIngest) {
	Dispatcher = d
	Producers = p
	Ingest = i
}

// HandleWebhook applies a lifecycle event from the signature-verified
// webhook layer to the user's notification state.
func HandleWebhook(c *fiber.Ctx) error {
	var event services.WebhookEvent
	if err := c.BodyParser(&event); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := Ingest.Apply(event); err != nil {
		if errors.Is(err, services.ErrMalformedEvent) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Malformed event",
			})
		}
		log.Printf("Webhook: failed to apply %s for fid %d: %v", event.Kind, event.FID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to apply event",
		})
	}

	return c.JSON(fiber.Map{"success": true})
}

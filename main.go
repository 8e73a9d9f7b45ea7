package main

import (
	"log"

	"github.com/arnold/runcast-api/internal/config"
	"github.com/arnold/runcast-api/internal/database"
	"github.com/arnold/runcast-api/internal/handlers"
	"github.com/arnold/runcast-api/internal/routes"
	"github.com/arnold/runcast-api/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
)

func main() {
	godotenv.Load()

	cfg := config.Load()

	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	store := services.NewQueueStore(database.DB)
	resolver := services.NewResolver(store)
	limiter := services.NewRateLimiter()
	transport := services.NewTransportClient()
	dispatcher := services.NewDispatcher(database.DB, store, limiter, transport, cfg.NotificationsEnabled)
	producers := services.NewProducers(database.DB, store, resolver, cfg.AppURL)
	ingest := services.NewEventIngest(database.DB, producers)

	handlers.Init(dispatcher, producers, ingest)

	app := fiber.New()
	routes.Setup(app)

	if !cfg.NotificationsEnabled {
		log.Println("Notifications: globally disabled, dispatch ticks are no-ops")
	}

	log.Printf("Starting runcast-api on port %s", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}

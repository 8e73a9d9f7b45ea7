package config

import "os"

type Config struct {
	DatabaseURL          string
	Port                 string
	JWTSecret            string
	CronSecret           string
	Environment          string
	AppURL               string
	NotificationsEnabled bool
}

func Load() *Config {
	return &Config{
		DatabaseURL:          getEnv("DATABASE_URL", "runcast.db"),
		Port:                 getEnv("PORT", "8080"),
		JWTSecret:            getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		CronSecret:           getEnv("CRON_SECRET", ""),
		Environment:          getEnv("ENVIRONMENT", "development"),
		AppURL:               getEnv("APP_URL", "https://runcast.app"),
		NotificationsEnabled: getEnv("NOTIFICATIONS_ENABLED", "true") != "false",
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// IsProduction reports whether the server runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

package config

import (
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// DefaultConfirmationTimeout is how long a loss confirmation may stay
// pending before the timeout sweep treats it as an uncontested admission.
const DefaultConfirmationTimeout = time.Hour

// Load reads configuration from environment variables and .env file.
func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Info("No .env file found, reading from environment variables")
	}

	// A helper function to get a required env var. It will fail if the env var is not set.
	getEnv := func(key string) string {
		if value, ok := os.LookupEnv(key); ok {
			return value
		}
		log.Fatalf("Error: Required environment variable %s is not set.", key)
		return "" // This line is never reached
	}

	cfg := Config{
		DBName:        getEnv("DB_NAME"),
		MigrationsDir: "./migrations",
		Port:          getEnv("PORT"),
		Turso: TursoConfig{
			PrimaryURL: os.Getenv("TURSO_PRIMARY_URL"),
			AuthToken:  os.Getenv("TURSO_AUTH_TOKEN"),
		},
		Twilio: TwilioConfig{
			AccountSID: getEnv("TWILIO_ACCOUNT_SID"),
			AuthToken:  getEnv("TWILIO_AUTH_TOKEN"),
			FromNumber: getEnv("TWILIO_FROM_NUMBER"),
		},
		ProjectID:           getEnv("GCP_PROJECT"),
		ConfirmationTimeout: DefaultConfirmationTimeout,
	}

	if raw, ok := os.LookupEnv("CONFIRMATION_TIMEOUT_MINUTES"); ok {
		minutes, err := strconv.Atoi(raw)
		if err != nil || minutes <= 0 {
			log.Warn("Invalid CONFIRMATION_TIMEOUT_MINUTES, using default", "value", raw)
		} else {
			cfg.ConfirmationTimeout = time.Duration(minutes) * time.Minute
		}
	}

	return cfg
}

package config

import "time"

// Config holds all configuration for the application.
type Config struct {
	DBName              string
	MigrationsDir       string
	Port                string
	Turso               TursoConfig
	Twilio              TwilioConfig
	ProjectID           string
	ConfirmationTimeout time.Duration
}

type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}

type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	FromNumber string
}

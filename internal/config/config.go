package config

import (
	"os"
	"time"

	log "log/slog"

	"github.com/joho/godotenv"
)

// Config holds everything the daemon reads from the environment. The core
// treats all of it as injected read-only state; missing collaborator
// credentials degrade the matching intents instead of failing startup.
type Config struct {
	Addr       string
	SocketPath string
	ProxyAddr  string

	DefaultCity string
	Timezone    string
	Location    *time.Location

	WeatherAPIKey string

	CredentialsFile string
	TokenFile       string

	ReminderFile string
}

func Load(envFile string) *Config {
	if err := godotenv.Load(envFile); err != nil {
		log.Debug("No env file", "path", envFile, "err", err)
	}

	cfg := &Config{
		Addr:            getenv("AIDE_ADDR", "127.0.0.1:5000"),
		SocketPath:      getenv("AIDE_SOCKET", "/tmp/aide.sock"),
		ProxyAddr:       os.Getenv("AIDE_PROXY"),
		DefaultCity:     getenv("DEFAULT_CITY", "Navi Mumbai"),
		Timezone:        getenv("YOUR_TIMEZONE", "Asia/Kolkata"),
		WeatherAPIKey:   os.Getenv("OPENWEATHERMAP_API_KEY"),
		CredentialsFile: getenv("GOOGLE_CREDENTIALS_FILE", "credentials.json"),
		TokenFile:       getenv("GOOGLE_TOKEN_FILE", "token.json"),
		ReminderFile:    getenv("REMINDER_FILE", "reminders.json"),
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Warn("Unknown timezone, clock intents will apologize", "tz", cfg.Timezone, "err", err)
	} else {
		cfg.Location = loc
	}

	if cfg.WeatherAPIKey == "" {
		log.Warn("OPENWEATHERMAP_API_KEY not set, weather intents will report it")
	}
	if _, err := os.Stat(cfg.CredentialsFile); err != nil {
		log.Warn("Calendar credentials file not found, calendar intents will report it", "path", cfg.CredentialsFile)
	}

	log.Info("Configured", "city", cfg.DefaultCity, "tz", cfg.Timezone)

	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

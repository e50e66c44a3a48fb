package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"printer-scheduler/internal/schedule"
)

// Config is the service configuration read from the environment.
type Config struct {
	Port           string
	DatabaseURL    string
	ResyncSchedule string
	OperatingEnd   schedule.ClockTime
	Opening        schedule.ClockTime

	Auth struct {
		JWTSecret    string
		StaticTokens []string
	}

	Google struct {
		ClientID     string
		ClientSecret string
		RedirectURL  string
		CalendarID   string
	}
}

// Load reads the given .env files (missing files are ignored) and then the environment.
// Variables already set in the environment win over .env values.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !os.IsNotExist(err) {
		log.Printf("could not read .env: %v", err)
	}

	cfg := &Config{
		Port:           getEnvOrDefault("PORT", "8080"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		ResyncSchedule: getEnvOrDefault("RESYNC_SCHEDULE", "@every 1m"),
	}

	var err error
	cfg.OperatingEnd, err = getClockOrDefault("OPERATING_END_TIME", schedule.DefaultOperatingEnd.String())
	if err != nil {
		return nil, err
	}
	cfg.Opening, err = getClockOrDefault("OPERATING_START_TIME", "00:00")
	if err != nil {
		return nil, err
	}
	if cfg.Opening.Minutes() >= cfg.OperatingEnd.Minutes() {
		return nil, fmt.Errorf("OPERATING_START_TIME %s must be before OPERATING_END_TIME %s", cfg.Opening, cfg.OperatingEnd)
	}

	cfg.Auth.JWTSecret = strings.TrimSpace(os.Getenv("JWT_HMAC_SECRET"))
	cfg.Auth.StaticTokens = splitList(os.Getenv("STATIC_TOKENS"))

	cfg.Google.ClientID = os.Getenv("GOOGLE_CLIENT_ID")
	cfg.Google.ClientSecret = os.Getenv("GOOGLE_CLIENT_SECRET")
	cfg.Google.RedirectURL = os.Getenv("GOOGLE_REDIRECT_URL")
	cfg.Google.CalendarID = getEnvOrDefault("GOOGLE_CALENDAR_ID", "primary")

	return cfg, nil
}

// Rules are the business rules derived from the configuration.
func (c *Config) Rules() schedule.Rules {
	return schedule.Rules{OperatingEnd: c.OperatingEnd}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getClockOrDefault(key, defaultValue string) (schedule.ClockTime, error) {
	v := getEnvOrDefault(key, defaultValue)
	c, err := schedule.ParseClock(v)
	if err != nil {
		return schedule.ClockTime{}, fmt.Errorf("%s: %w", key, err)
	}
	return c, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

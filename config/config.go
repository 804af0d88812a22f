package config

import (
	"os"
	"strconv"
	"time"
)

// PopulationScope selects which members count as "expected to apply" when
// the confirmation run computes the not-applied set.
type PopulationScope string

const (
	// PopulationOrganization counts the event's organization owner and members.
	PopulationOrganization PopulationScope = "organization"
	// PopulationAll counts every active user in the system.
	PopulationAll PopulationScope = "all"
)

type Config struct {
	// Server configuration
	Environment string

	// Redis configuration
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// Sign-up configuration
	SignupCloseWindow time.Duration // window before event_date when applies stop
	SaveRetries       int           // attempts for the optimistic activity update

	// Confirmation configuration
	Population      PopulationScope
	ConfirmLockTTL  time.Duration // redis lock lifetime for one confirmation run
	ConfirmDeadline time.Duration // bounds the lock and pre-transaction reads; a started commit runs to completion

	// Rate limiting
	ApplyRateLimit int // apply/cancel requests per member per minute

	// Monitoring
	EnableMetrics bool
}

func LoadConfig() *Config {
	return &Config{
		// Server
		Environment: getEnv("ENVIRONMENT", "development"),

		// Redis
		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		// Sign-up
		SignupCloseWindow: getEnvAsDuration("SIGNUP_CLOSE_WINDOW", "2h"),
		SaveRetries:       getEnvAsInt("SAVE_RETRIES", 3),

		// Confirmation
		Population:      populationScope(getEnv("POPULATION_SCOPE", string(PopulationOrganization))),
		ConfirmLockTTL:  getEnvAsDuration("CONFIRM_LOCK_TTL", "30s"),
		ConfirmDeadline: getEnvAsDuration("CONFIRM_DEADLINE", "15s"),

		// Rate limiting
		ApplyRateLimit: getEnvAsInt("APPLY_RATE_LIMIT", 30),

		// Monitoring
		EnableMetrics: getEnvAsBool("ENABLE_METRICS", true),
	}
}

func populationScope(raw string) PopulationScope {
	if PopulationScope(raw) == PopulationAll {
		return PopulationAll
	}
	return PopulationOrganization
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	// If parsing fails, try to parse default value
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}

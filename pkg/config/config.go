package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	SweepContinue = "continue"
	SweepHalt     = "halt"
)

type Config struct {
	ServerPort         string
	FirebaseProject    string
	FirebaseApiKey     string
	ServiceAccountJSON string
	ServiceAccountPath string
	StorageBucket      string
	Environment        string
	LogLevel           string

	// DeliveryCharge is the flat surcharge added to every order line, in rupees.
	DeliveryCharge     int64
	SweepPolicy        string
	RateLimitPerMinute int64
	AllowedOrigins     []string
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		FirebaseProject:    getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseApiKey:     getEnv("FIREBASE_API_KEY", ""),
		ServiceAccountJSON: getEnv("FIREBASE_SERVICE_ACCOUNT_JSON", ""),
		ServiceAccountPath: getEnv("FIREBASE_SERVICE_ACCOUNT_PATH", "./serviceAccount.json"),
		StorageBucket:      getEnv("STORAGE_BUCKET", ""),
		Environment:        getEnv("ENVIRONMENT", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		DeliveryCharge:     getEnvAsInt64("DELIVERY_CHARGE", 150),
		SweepPolicy:        getEnv("ORDER_SWEEP_POLICY", SweepContinue),
		RateLimitPerMinute: getEnvAsInt64("RATE_LIMIT_PER_MINUTE", 30),
		AllowedOrigins:     getEnvAsList("CORS_ALLOWED_ORIGINS", "*"),
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.SweepPolicy != SweepContinue && c.SweepPolicy != SweepHalt {
		return fmt.Errorf("ORDER_SWEEP_POLICY must be %q or %q, got %q", SweepContinue, SweepHalt, c.SweepPolicy)
	}
	if c.DeliveryCharge < 0 {
		return fmt.Errorf("DELIVERY_CHARGE must not be negative, got %d", c.DeliveryCharge)
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive, got %d", c.RateLimitPerMinute)
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsList(key, defaultValue string) []string {
	var out []string
	for _, item := range strings.Split(getEnv(key, defaultValue), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

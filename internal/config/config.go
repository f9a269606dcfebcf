package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port        string
	LogLevel    string
	LogFormat   string
	JWTSecret   string
	CORSOrigins []string
	BcryptCost  int
	SeedDemo    bool

	// Key-value store
	StoreBackend    string
	RedisAddr       string
	RedisPassword   string
	RedisPrefix     string
	MongoURI        string
	MongoDatabase   string
	MongoCollection string

	// OTP
	OTPTTL           time.Duration
	OTPPurgeInterval time.Duration
	SMSMode          string
	TextbeltAPIKey   string
	TextbeltURL      string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:        getEnv("API_PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "json"),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		CORSOrigins: getEnvAsList("CORS_ORIGINS", []string{"http://localhost:3000"}),
		BcryptCost:  getEnvAsInt("BCRYPT_COST", 12),
		SeedDemo:    getEnvAsBool("SEED_DEMO_DATA", true),

		StoreBackend:    strings.ToLower(strings.TrimSpace(getEnv("STORE_BACKEND", "memory"))),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisPrefix:     getEnv("REDIS_PREFIX", "esannidhi:"),
		MongoURI:        getEnv("MONGO_URI", ""),
		MongoDatabase:   getEnv("MONGO_DATABASE", "esannidhi"),
		MongoCollection: getEnv("MONGO_COLLECTION", "kv"),

		OTPTTL:           getEnvAsDuration("OTP_TTL", 5*time.Minute),
		OTPPurgeInterval: getEnvAsDuration("OTP_PURGE_INTERVAL", time.Minute),
		SMSMode:          strings.ToLower(strings.TrimSpace(getEnv("SMS_MODE", "log"))),
		TextbeltAPIKey:   getEnv("TEXTBELT_API_KEY", ""),
		TextbeltURL:      getEnv("TEXTBELT_URL", "https://textbelt.com"),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated variable, dropping blanks.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

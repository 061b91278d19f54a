// Package config loads application configuration from environment variables.
package config

import (
	"log"
	"os"
	"strconv"
)

// Config holds all runtime configuration values. Each field corresponds to an
// environment variable. Required values are enforced at startup; optional
// values fall back to the defaults the original deployment used.
type Config struct {
	Env             string // application environment (dev/test/prod)
	Port            string // HTTP port to listen on
	MongoURI        string // MongoDB connection string
	MongoDB         string // database name
	JWTSecret       string // secret used to sign bearer tokens
	TokenTTLHours   int    // bearer token time-to-live in hours
	SessionTTLHours int    // server-side session time-to-live in hours
	BcryptCost      int    // bcrypt cost for password hashing
	AdminEmail      string // seed admin email (optional, see cmd/server)
	AdminPassword   string // seed admin password (optional)
	RabbitURL       string // AMQP broker URL for the integrity queue (optional)
}

// Load reads configuration values from environment variables. Missing
// required variables cause the process to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:             getenv("APP_ENV", "dev"),
		Port:            must("APP_PORT"),
		MongoURI:        must("MONGO_URI"),
		MongoDB:         must("MONGO_DB"),
		JWTSecret:       must("JWT_SECRET"),
		TokenTTLHours:   envInt("TOKEN_TTL_HOURS", 24),
		SessionTTLHours: envInt("SESSION_TTL_HOURS", 24),
		BcryptCost:      envInt("BCRYPT_COST", 10),
		AdminEmail:      os.Getenv("ADMIN_EMAIL"),
		AdminPassword:   os.Getenv("ADMIN_PASSWORD"),
		RabbitURL:       os.Getenv("RABBITMQ_URL"),
	}
}

// must retrieves a required environment variable or exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

// Package config builds runtime configuration from the environment so
// main stays lean.
package config

import (
	"os"
	"time"
)

// Config captures everything the server process needs at startup.
type Config struct {
	Addr            string
	MongoURI        string
	MongoDatabase   string
	RedisAddr       string
	UserCacheTTL    time.Duration
	ShutdownTimeout time.Duration
}

// FromEnv reads configuration from environment variables, with defaults
// suited to local development. RedisAddr left empty disables the user
// cache entirely.
func FromEnv() Config {
	return Config{
		Addr:            getEnv("IDENTITY_ADDR", ":8080"),
		MongoURI:        getEnv("IDENTITY_MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:   getEnv("IDENTITY_MONGO_DATABASE", "identity"),
		RedisAddr:       os.Getenv("IDENTITY_REDIS_ADDR"),
		UserCacheTTL:    getDuration("IDENTITY_USER_CACHE_TTL", 5*time.Minute),
		ShutdownTimeout: getDuration("IDENTITY_SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

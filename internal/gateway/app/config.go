package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// AuthURL is the base URL of the auth service, used for the startup
	// JWKS fetch and unknown-kid refetches.
	AuthURL string
	// Issuer must match the auth service's issuer claim.
	Issuer string

	// Catalog service base URLs. Empty disables the route.
	ArtistURL   string
	MuseumURL   string
	PaintingURL string
	GeoURL      string
	UserdataURL string

	// JWKSCooldown limits how often an unknown kid may trigger a JWKS
	// refetch. Zero keeps the library default.
	JWKSCooldown time.Duration

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8090)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	return Config{
		AuthURL: getEnvOrDefault("GATEWAY_AUTH_URL", "http://localhost:8080"),
		Issuer:  getEnvOrDefault("AUTH_ISSUER", "galleria-auth"),

		ArtistURL:   getEnvOrDefault("GATEWAY_ARTIST_URL", "http://localhost:8091"),
		MuseumURL:   getEnvOrDefault("GATEWAY_MUSEUM_URL", "http://localhost:8092"),
		PaintingURL: getEnvOrDefault("GATEWAY_PAINTING_URL", "http://localhost:8093"),
		GeoURL:      getEnvOrDefault("GATEWAY_GEO_URL", "http://localhost:8094"),
		UserdataURL: getEnvOrDefault("GATEWAY_USERDATA_URL", "http://localhost:8095"),

		JWKSCooldown: getEnvDurationOrDefault("GATEWAY_JWKS_COOLDOWN", 0),

		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8090),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	return defaultValue
}

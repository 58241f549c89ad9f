package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Issuer string // Issuer claim for tokens (default: galleria-auth)

	RSABits      int    // Optional: RSA key size for RS256 (default: 2048)
	DatabaseFile string // Optional: path to SQLite database file (default: ./auth.db)

	// Registered OAuth2 client. Galleria has a single public frontend
	// client; everything else verifies tokens, it never requests them.
	ClientID           string
	ClientName         string
	ClientRedirectURIs []string
	ClientScopes       []string

	// FrontendURL is where the login page sends the browser when there
	// is no authorization request to resume.
	FrontendURL string

	SessionTTL     time.Duration // Browser session idle timeout (default: 30m)
	AccessTokenTTL time.Duration // Access token lifetime (default: 15m)
	CodeTTL        time.Duration // Authorization code lifetime (default: 5m)
	SecureCookies  bool          // Mark session cookies Secure (default: true unless ENV=dev)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Expired code cleanup interval (default: 1h)
}

func LoadConfig() Config {
	env := getEnvOrDefault("ENV", "dev")

	cfg := Config{
		Issuer:       getEnvOrDefault("AUTH_ISSUER", "galleria-auth"),
		RSABits:      getEnvIntOrDefault("AUTH_RSA_BITS", 0),
		DatabaseFile: getEnvOrDefault("AUTH_DATABASE_FILE", "auth.db"),

		ClientID:   getEnvOrDefault("AUTH_CLIENT_ID", "galleria-front"),
		ClientName: getEnvOrDefault("AUTH_CLIENT_NAME", "Galleria Frontend"),
		ClientRedirectURIs: splitList(getEnvOrDefault(
			"AUTH_CLIENT_REDIRECT_URIS",
			"http://localhost:4200/authorized",
		)),
		ClientScopes: splitList(getEnvOrDefault("AUTH_CLIENT_SCOPES", "openid catalog.read")),

		FrontendURL: getEnvOrDefault("AUTH_FRONTEND_URL", "http://localhost:4200/"),

		SessionTTL:     getEnvDurationOrDefault("AUTH_SESSION_TTL", 30*time.Minute),
		AccessTokenTTL: getEnvDurationOrDefault("AUTH_ACCESS_TOKEN_TTL", 15*time.Minute),
		CodeTTL:        getEnvDurationOrDefault("AUTH_CODE_TTL", 5*time.Minute),
		SecureCookies:  getEnvBoolOrDefault("AUTH_SECURE_COOKIES", env != "dev"),

		Env:                  env,
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}

	return cfg
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

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if boolValue, err := strconv.ParseBool(value); err == nil {
		return boolValue
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

	// Bare integers are read as minutes.
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}

// splitList splits a comma or space separated env value.
func splitList(value string) []string {
	fields := strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ' '
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Issuer      string // Optional: issuer name stamped on tokens and TOTP enrollments (default: postern)
	TokenSecret string // Optional: HMAC secret for session and access tokens (default: generated, tokens die with the process)

	DatabaseFile  string // Optional: path to SQLite database file (default: ./postern.db)
	PepperFile    string // Optional: path to file containing pepper for password hashing (default: ./pepper)
	MasterKeyFile string // Optional: path to master encryption key file for secrets at rest

	AccessTTL  time.Duration // Optional: access token lifetime (default: 1h)
	RefreshTTL time.Duration // Optional: refresh token lifetime (default: 30 days)
	CodeTTL    time.Duration // Optional: authorization code lifetime (default: 5m)
	SessionTTL time.Duration // Optional: interactive session lifetime (default: 24h)

	BindSessionOrigin bool // Optional: bind session tokens to the caller's IP (default: false)

	// Federated login. The route only registers when the upstream provider
	// is fully configured.
	UpstreamClientID     string
	UpstreamClientSecret string
	UpstreamAuthURL      string
	UpstreamTokenURL     string
	UpstreamUserInfoURL  string
	UpstreamRedirectURL  string

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
	JanitorInterval     time.Duration // Expired code/token sweep interval (default: 1h)
}

func LoadConfig() Config {
	cfg := Config{
		Issuer:        getEnvOrDefault("POSTERN_ISSUER", "postern"),
		TokenSecret:   os.Getenv("POSTERN_TOKEN_SECRET"), // Optional: generated when empty
		DatabaseFile:  getEnvOrDefault("POSTERN_DATABASE_FILE", "postern.db"),
		PepperFile:    getEnvOrDefault("POSTERN_PEPPER_FILE", "pepper"),
		MasterKeyFile: os.Getenv("POSTERN_MASTER_KEY_FILE"), // Optional

		AccessTTL:  getEnvDurationOrDefault("POSTERN_ACCESS_TTL", 1*time.Hour),
		RefreshTTL: getEnvDurationOrDefault("POSTERN_REFRESH_TTL", 30*24*time.Hour),
		CodeTTL:    getEnvDurationOrDefault("POSTERN_CODE_TTL", 5*time.Minute),
		SessionTTL: getEnvDurationOrDefault("POSTERN_SESSION_TTL", 24*time.Hour),

		BindSessionOrigin: getEnvBoolOrDefault("POSTERN_BIND_SESSION_ORIGIN", false),

		UpstreamClientID:     os.Getenv("POSTERN_UPSTREAM_CLIENT_ID"),
		UpstreamClientSecret: os.Getenv("POSTERN_UPSTREAM_CLIENT_SECRET"),
		UpstreamAuthURL:      os.Getenv("POSTERN_UPSTREAM_AUTH_URL"),
		UpstreamTokenURL:     os.Getenv("POSTERN_UPSTREAM_TOKEN_URL"),
		UpstreamUserInfoURL:  os.Getenv("POSTERN_UPSTREAM_USERINFO_URL"),
		UpstreamRedirectURL:  os.Getenv("POSTERN_UPSTREAM_REDIRECT_URL"),

		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		JanitorInterval:     getEnvDurationOrDefault("POSTERN_JANITOR_INTERVAL", 1*time.Hour),
	}

	return cfg
}

// UpstreamEnabled reports whether the federated login route should register.
func (c Config) UpstreamEnabled() bool {
	return c.UpstreamClientID != "" && c.UpstreamAuthURL != "" && c.UpstreamTokenURL != "" && c.UpstreamUserInfoURL != ""
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

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes (for backwards compatibility)
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}

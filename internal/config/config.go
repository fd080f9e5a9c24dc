package config

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultHTTPAddr        = ":8081"
	defaultDashboardUser   = "admin"
	defaultDashboardPass   = "sensor123"
	defaultRefreshInterval = 30 * time.Second
	defaultActiveWindow    = 4 * time.Hour
	defaultQueryTimeout    = 10 * time.Second
	defaultFetchLimit      = 200
)

// Config stores runtime settings loaded once at startup from environment
// variables (optionally seeded from a .env file).
type Config struct {
	HTTPAddr        string
	SupabaseURL     string
	SupabaseKey     string
	DashboardUser   string
	DashboardPass   string
	RefreshInterval time.Duration
	ActiveWindow    time.Duration
	QueryTimeout    time.Duration
	FetchLimit      int
	LogLevel        slog.Level
}

// Load builds Config from environment variables using stable defaults.
// A malformed listen address is a fatal configuration error; the caller is
// expected to exit non-zero before serving.
func Load() (Config, error) {
	// Missing .env is fine; system environment still applies.
	_ = godotenv.Load()

	cfg := Config{
		SupabaseURL:     getenv("SUPABASE_URL", ""),
		SupabaseKey:     getenv("SUPABASE_KEY", ""),
		DashboardUser:   getenv("DASHBOARD_USER", defaultDashboardUser),
		DashboardPass:   getenv("DASHBOARD_PASS", defaultDashboardPass),
		RefreshInterval: parseDuration("REFRESH_INTERVAL", defaultRefreshInterval),
		ActiveWindow:    parseDuration("ACTIVE_WINDOW", defaultActiveWindow),
		QueryTimeout:    parseDuration("QUERY_TIMEOUT", defaultQueryTimeout),
		FetchLimit:      parseInt("FETCH_LIMIT", defaultFetchLimit),
		LogLevel:        parseLogLevel(getenv("LOG_LEVEL", "info")),
	}

	addr, err := listenAddr()
	if err != nil {
		return Config{}, err
	}
	cfg.HTTPAddr = addr
	return cfg, nil
}

// LiveMode reports whether both Supabase values are present. Pure function
// of the two configuration values; never re-evaluated at runtime.
func (c Config) LiveMode() bool {
	return c.SupabaseURL != "" && c.SupabaseKey != ""
}

// DefaultCredentials reports whether the access gate still uses the
// insecure built-in credentials.
func (c Config) DefaultCredentials() bool {
	return c.DashboardUser == defaultDashboardUser && c.DashboardPass == defaultDashboardPass
}

// listenAddr resolves HTTP_ADDR, or PORT as a bare port number.
func listenAddr() (string, error) {
	if raw := getenv("HTTP_ADDR", ""); raw != "" {
		_, port, err := net.SplitHostPort(raw)
		if err != nil {
			return "", fmt.Errorf("malformed HTTP_ADDR %q: %w", raw, err)
		}
		if err := validatePort(port); err != nil {
			return "", fmt.Errorf("malformed HTTP_ADDR %q: %w", raw, err)
		}
		return raw, nil
	}
	if raw := getenv("PORT", ""); raw != "" {
		if err := validatePort(raw); err != nil {
			return "", fmt.Errorf("malformed PORT %q: %w", raw, err)
		}
		return ":" + raw, nil
	}
	return defaultHTTPAddr, nil
}

func validatePort(raw string) error {
	port, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("port must be numeric")
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("port %d out of range", port)
	}
	return nil
}

func getenv(key string, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(value)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

func parseDuration(key string, fallback time.Duration) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func parseInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func parseLogLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

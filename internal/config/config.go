package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"blog_backend/internal/utils"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

// Config holds startup configuration. It is not mutated after Load.
type Config struct {
	ServerPort           string
	AppEnv               string
	LogLevel             string
	JWTSecretKey         string
	JWTValidity          time.Duration
	BcryptCost           int
	InitialAdminUsername string
	CORSAllowedOrigins   []string
	RateLimitEnabled     bool
	AuthRateLimitRPS     float64
	AuthRateLimitBurst   int
	StorageDriver        string
	ShutdownTimeout      time.Duration
}

// Load reads the configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		ServerPort:           getEnv("SERVER_PORT", "8080"),
		AppEnv:               getEnv("APP_ENV", "development"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		JWTSecretKey:         os.Getenv("JWT_SECRET_KEY"),
		InitialAdminUsername: strings.TrimSpace(os.Getenv("INITIAL_ADMIN_USERNAME")),
		CORSAllowedOrigins:   splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173")),
		StorageDriver:        strings.ToLower(getEnv("STORAGE_DRIVER", StorageDriverPostgres)),
	}

	if cfg.JWTSecretKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY not set in environment")
	}
	if len(cfg.JWTSecretKey) < utils.MinSigningKeyLength {
		return nil, fmt.Errorf("JWT_SECRET_KEY: %w", utils.ErrSigningKeyTooShort)
	}

	validityMs, err := getInt64("JWT_VALIDITY_MS", utils.DefaultTokenValidity.Milliseconds())
	if err != nil {
		return nil, err
	}
	if validityMs <= 0 {
		return nil, fmt.Errorf("JWT_VALIDITY_MS must be positive, got %d", validityMs)
	}
	cfg.JWTValidity = time.Duration(validityMs) * time.Millisecond

	if cfg.BcryptCost, err = getInt("BCRYPT_COST", utils.MinPasswordCost); err != nil {
		return nil, err
	}
	if cfg.BcryptCost < utils.MinPasswordCost {
		return nil, fmt.Errorf("BCRYPT_COST must be at least %d, got %d", utils.MinPasswordCost, cfg.BcryptCost)
	}

	if cfg.RateLimitEnabled, err = getBool("RATE_LIMIT_ENABLED", true); err != nil {
		return nil, err
	}
	if cfg.AuthRateLimitRPS, err = getFloat("AUTH_RATE_LIMIT_RPS", 1); err != nil {
		return nil, err
	}
	if cfg.AuthRateLimitBurst, err = getInt("AUTH_RATE_LIMIT_BURST", 5); err != nil {
		return nil, err
	}
	if cfg.AuthRateLimitRPS <= 0 || cfg.AuthRateLimitBurst <= 0 {
		return nil, fmt.Errorf("AUTH_RATE_LIMIT_RPS and AUTH_RATE_LIMIT_BURST must be positive")
	}

	shutdownSeconds, err := getInt("SHUTDOWN_TIMEOUT_SECONDS", 5)
	if err != nil {
		return nil, err
	}
	cfg.ShutdownTimeout = time.Duration(shutdownSeconds) * time.Second

	switch cfg.StorageDriver {
	case StorageDriverPostgres, StorageDriverMemory:
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	return cfg, nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getInt64(key string, fallback int64) (int64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

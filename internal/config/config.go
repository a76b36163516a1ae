package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAppName        = "TalentLedger"
	defaultAppEnv         = "development"
	defaultPort           = "8080"
	defaultLogLevel       = "info"
	defaultJWTIssuer      = "talentledger"
	defaultAccessTTL      = 15 * time.Minute
	defaultRefreshTTL     = 7 * 24 * time.Hour
	defaultDerivationPath = "m/44'/60'/0'/0"
	defaultStoreTimeout   = 5 * time.Second
	defaultWalletCacheTTL = time.Hour
	defaultShutdownDelay  = 10 * time.Second
	defaultIdempotencyTTL = 24 * time.Hour
	defaultLoginRateLimit = 5
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName         string
	Env             string
	Port            string
	LogLevel        string
	DatabaseURL     string
	RedisURL        string
	JWTSecret       string
	JWTIssuer       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	// WalletMnemonic is the BIP-39 phrase every wallet address is derived from.
	WalletMnemonic string
	DerivationPath string
	StoreTimeout   time.Duration
	WalletCacheTTL time.Duration
	ShutdownPeriod time.Duration
	IdempotencyTTL time.Duration
	LoginRateLimit int
}

// Load reads an optional .env file, then the environment, and validates the result.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from the provided lookup function.
func FromEnv(getenv func(string) string) (Config, error) {
	get := func(key, fallback string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return fallback
	}

	cfg := Config{
		AppName:         get("APP_NAME", defaultAppName),
		Env:             get("APP_ENV", defaultAppEnv),
		Port:            get("PORT", defaultPort),
		LogLevel:        strings.ToLower(get("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:     getenv("DATABASE_URL"),
		RedisURL:        getenv("REDIS_URL"),
		JWTSecret:       getenv("JWT_SECRET"),
		JWTIssuer:       get("JWT_ISSUER", defaultJWTIssuer),
		AccessTokenTTL:  defaultAccessTTL,
		RefreshTokenTTL: defaultRefreshTTL,
		WalletMnemonic:  strings.TrimSpace(getenv("WALLET_MNEMONIC")),
		DerivationPath:  get("WALLET_DERIVATION_PATH", defaultDerivationPath),
		StoreTimeout:    defaultStoreTimeout,
		WalletCacheTTL:  defaultWalletCacheTTL,
		ShutdownPeriod:  defaultShutdownDelay,
		IdempotencyTTL:  defaultIdempotencyTTL,
		LoginRateLimit:  defaultLoginRateLimit,
	}

	durations := []struct {
		seconds, duration string
		dst               *time.Duration
	}{
		{"", "ACCESS_TOKEN_TTL", &cfg.AccessTokenTTL},
		{"", "REFRESH_TOKEN_TTL", &cfg.RefreshTokenTTL},
		{"", "STORE_TIMEOUT", &cfg.StoreTimeout},
		{"", "WALLET_CACHE_TTL", &cfg.WalletCacheTTL},
		{"SHUTDOWN_TIMEOUT_SECONDS", "SHUTDOWN_TIMEOUT", &cfg.ShutdownPeriod},
		{"IDEMPOTENCY_TTL_SECONDS", "IDEMPOTENCY_TTL", &cfg.IdempotencyTTL},
	}
	for _, d := range durations {
		if err := parseDuration(getenv, d.seconds, d.duration, d.dst); err != nil {
			return Config{}, err
		}
	}

	if v := getenv("LOGIN_RATE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid LOGIN_RATE_LIMIT: %w", err)
		}
		cfg.LoginRateLimit = n
	}

	if cfg.DatabaseURL == "" && !cfg.IsDev() {
		return Config{}, fmt.Errorf("DATABASE_URL must be set when APP_ENV=%s", cfg.Env)
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET must be set")
	}
	if cfg.WalletMnemonic == "" {
		return Config{}, fmt.Errorf("WALLET_MNEMONIC must be set")
	}
	if cfg.StoreTimeout <= 0 {
		return Config{}, fmt.Errorf("STORE_TIMEOUT must be positive")
	}

	return cfg, nil
}

// parseDuration prefers the integer-seconds variable over the Go duration one.
func parseDuration(getenv func(string) string, secondsKey, durationKey string, dst *time.Duration) error {
	if secondsKey != "" {
		if v := getenv(secondsKey); v != "" {
			seconds, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", secondsKey, err)
			}
			*dst = time.Duration(seconds) * time.Second
			return nil
		}
	}
	if v := getenv(durationKey); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", durationKey, err)
		}
		*dst = d
	}
	return nil
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

// IsDev reports whether the service runs in a local profile where in-memory
// stores may replace Postgres.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.Env) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

type Config struct {
	Port         int    `toml:"port" validate:"min=1,max=65535"`
	DatabaseURL  string `toml:"database_url" validate:"required"`
	DatabaseType string `toml:"database_type" validate:"oneof=postgres sqlite"`

	JWTSecret string `toml:"jwt_secret" validate:"required,min=16"`
	// Lifetime of issued tokens. Zero issues tokens without an expiry.
	JWTExpiry time.Duration `toml:"jwt_expiry" validate:"min=0"`

	ContentRepoURL   string        `toml:"content_repo_url" validate:"required,url"`
	ContentRepoToken string        `toml:"content_repo_token"`
	ContentTimeout   time.Duration `toml:"content_timeout" validate:"min=0"`
	ContentCacheTTL  time.Duration `toml:"content_cache_ttl" validate:"min=0"`

	// Days between consecutive study messages.
	NextSendIntervalDays int `toml:"next_send_interval_days" validate:"min=1,max=365"`

	ExhaustionPolicy   string `toml:"exhaustion_policy" validate:"oneof=serve-all legacy-skip-last"`
	AllocateMaxRetries int    `toml:"allocate_max_retries" validate:"min=0,max=10"`
}

// Default returns the configuration used when nothing overrides a setting.
func Default() Config {
	return Config{
		Port:                 3318,
		DatabaseType:         "sqlite",
		ContentTimeout:       10 * time.Second,
		ContentCacheTTL:      5 * time.Minute,
		NextSendIntervalDays: 7,
		ExhaustionPolicy:     "serve-all",
		AllocateMaxRetries:   3,
	}
}

// ParseFlags builds the configuration. Precedence, lowest first: defaults,
// TOML config file, environment (including a .env file), command line flags.
func ParseFlags(args []string) (Config, error) {
	var (
		port, intervalDays, maxRetries int
		dbURL, dbType, jwtSecret       string
		configPath, envFile, policy    string
		contentURL, contentToken       string
		contentTimeout, contentTTL     time.Duration
		jwtExpiry                      time.Duration
	)

	fs := pflag.NewFlagSet("mqr-hub", pflag.ContinueOnError)

	fs.StringVarP(&configPath, "config", "c", "", "Path to a TOML config file")
	fs.StringVar(&envFile, "env-file", ".env", "Path to a .env file (ignored if missing)")

	// Network config (can be CLI args or env)
	fs.IntVarP(&port, "port", "p", 0, "Server port")
	fs.StringVarP(&dbURL, "database-url", "d", "", "Database URL")
	fs.StringVarP(&dbType, "database-type", "t", "", "Database type (sqlite or postgres)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&jwtSecret, "jwt-secret", "", "JWT signing secret (prefer env)")
	fs.DurationVar(&jwtExpiry, "jwt-expiry", 0, "Lifetime of issued API tokens (0 never expires)")
	fs.StringVar(&contentToken, "content-token", "", "Content repository API token (prefer env)")

	fs.StringVar(&contentURL, "content-url", "", "Content repository base URL")
	fs.DurationVar(&contentTimeout, "content-timeout", 0, "Content repository request timeout")
	fs.DurationVar(&contentTTL, "content-cache-ttl", 0, "Content page cache TTL (0 disables)")
	fs.IntVar(&intervalDays, "next-send-days", 0, "Days until the next study message")
	fs.StringVar(&policy, "exhaustion-policy", "", "Stratum exhaustion policy (serve-all or legacy-skip-last)")
	fs.IntVar(&maxRetries, "allocate-retries", 0, "Retries for conflicting stratum allocations")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	cfg := Default()

	if configPath == "" {
		configPath = os.Getenv("MQR_CONFIG")
	}
	if configPath != "" {
		if _, err := toml.DecodeFile(configPath, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config %s: %w", configPath, err)
		}
	}

	// Fall back to environment variables
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if fs.Changed("port") {
		cfg.Port = port
	}
	if fs.Changed("database-url") {
		cfg.DatabaseURL = dbURL
	}
	if fs.Changed("database-type") {
		cfg.DatabaseType = dbType
	}
	if fs.Changed("jwt-secret") {
		cfg.JWTSecret = jwtSecret
	}
	if fs.Changed("jwt-expiry") {
		cfg.JWTExpiry = jwtExpiry
	}
	if fs.Changed("content-url") {
		cfg.ContentRepoURL = contentURL
	}
	if fs.Changed("content-token") {
		cfg.ContentRepoToken = contentToken
	}
	if fs.Changed("content-timeout") {
		cfg.ContentTimeout = contentTimeout
	}
	if fs.Changed("content-cache-ttl") {
		cfg.ContentCacheTTL = contentTTL
	}
	if fs.Changed("next-send-days") {
		cfg.NextSendIntervalDays = intervalDays
	}
	if fs.Changed("exhaustion-policy") {
		cfg.ExhaustionPolicy = policy
	}
	if fs.Changed("allocate-retries") {
		cfg.AllocateMaxRetries = maxRetries
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return errors.New("invalid PORT env variable")
		}
		cfg.Port = port
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("DATABASE_TYPE"); v != "" {
		cfg.DatabaseType = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWTSecret = v
	}
	if v := os.Getenv("JWT_EXPIRY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.New("invalid JWT_EXPIRY env variable")
		}
		cfg.JWTExpiry = d
	}
	if v := os.Getenv("CONTENTREPO_API_URL"); v != "" {
		cfg.ContentRepoURL = v
	}
	if v := os.Getenv("CONTENTREPO_API_TOKEN"); v != "" {
		cfg.ContentRepoToken = v
	}
	if v := os.Getenv("CONTENTREPO_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.New("invalid CONTENTREPO_TIMEOUT env variable")
		}
		cfg.ContentTimeout = d
	}
	if v := os.Getenv("CONTENTREPO_CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.New("invalid CONTENTREPO_CACHE_TTL env variable")
		}
		cfg.ContentCacheTTL = d
	}
	if v := os.Getenv("MQR_NEXT_SEND_DAYS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.New("invalid MQR_NEXT_SEND_DAYS env variable")
		}
		cfg.NextSendIntervalDays = n
	}
	if v := os.Getenv("MQR_EXHAUSTION_POLICY"); v != "" {
		cfg.ExhaustionPolicy = v
	}
	if v := os.Getenv("MQR_ALLOCATE_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.New("invalid MQR_ALLOCATE_RETRIES env variable")
		}
		cfg.AllocateMaxRetries = n
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every setting and reports all failures at once.
func Validate(cfg Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validation error: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, formatFieldError(e))
	}
	return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

func formatFieldError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", e.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s] (got: %v)", e.Field(), e.Param(), e.Value())
	case "min", "max":
		return fmt.Sprintf("%s must satisfy %s=%s (got: %v)", e.Field(), e.Tag(), e.Param(), e.Value())
	case "url":
		return fmt.Sprintf("%s must be a valid URL (got: %v)", e.Field(), e.Value())
	default:
		return fmt.Sprintf("%s failed %s validation", e.Field(), e.Tag())
	}
}

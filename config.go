package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// config is the server configuration, read from the environment.
type config struct {
	Port            string
	DBURL           string
	AllowedOrigins  []string
	LogLevel        string
	LoginRatePerMin int
}

// loadConfig reads .env (if present) and then the process environment.
func loadConfig() (config, error) {
	// .env is optional in production; a missing file is not an error.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return config{}, fmt.Errorf("loading .env: %w", err)
	}

	cfg := config{
		Port:            envOr("PORT", "3000"),
		DBURL:           os.Getenv("DB_URL"),
		AllowedOrigins:  splitList(envOr("ALLOWED_ORIGINS", "*")),
		LogLevel:        envOr("LOG_LEVEL", "info"),
		LoginRatePerMin: 10,
	}
	if cfg.DBURL == "" {
		return config{}, errors.New("DB_URL is required")
	}
	if raw := os.Getenv("LOGIN_RATE_PER_MIN"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return config{}, fmt.Errorf("LOGIN_RATE_PER_MIN must be a positive integer, got %q", raw)
		}
		cfg.LoginRatePerMin = n
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// newLogger builds a production JSON logger at the given level.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", level, err)
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}

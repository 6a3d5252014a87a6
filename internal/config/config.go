package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Config holds the service configuration read from the environment
type Config struct {
	Port        string
	Environment string
	LogLevel    string

	// DefinitionsDBConfig is the JSON provider document, e.g.
	// {"db_type":"postgres","extra_details":{"conn_str":"..."}}
	DefinitionsDBConfig string

	RPSLimit float64
	RPSBurst int

	FetchTimeout time.Duration

	// MaxRedirects of 0 rejects any redirect
	MaxRedirects        int
	MaxBodyBytes        int64
	UserAgent           string
	BlockPrivateTargets bool
}

// Load reads .env when present, then the process environment
func Load(logger *zap.Logger) *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn("failed to load .env file", zap.Error(err))
	}

	l := loader{logger: logger}
	cfg := &Config{
		Port:                l.str("PORT", "8080"),
		Environment:         l.str("ENVIRONMENT", "development"),
		LogLevel:            l.str("LOG_LEVEL", "info"),
		DefinitionsDBConfig: l.str("DEFINITIONS_DB_CONFIG", ""),
		RPSLimit:            l.float("RPS_LIMIT", 0),
		RPSBurst:            l.int("RPS_BURST", 10),
		FetchTimeout:        l.duration("FETCH_TIMEOUT", 0),
		MaxRedirects:        l.int("MAX_REDIRECTS", 10),
		MaxBodyBytes:        int64(l.int("MAX_BODY_BYTES", 0)),
		UserAgent:           l.str("USER_AGENT", "scrapeapi/1.0"),
		BlockPrivateTargets: l.bool("BLOCK_PRIVATE_TARGETS", false),
	}

	logger.Info("configuration loaded",
		zap.String("port", cfg.Port),
		zap.String("environment", cfg.Environment),
		zap.String("log_level", cfg.LogLevel),
		zap.Bool("custom_db_config", cfg.DefinitionsDBConfig != ""),
		zap.Float64("rps_limit", cfg.RPSLimit),
		zap.Duration("fetch_timeout", cfg.FetchTimeout))
	return cfg
}

type loader struct {
	logger *zap.Logger
}

func (l loader) str(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func (l loader) int(key string, def int) int {
	raw := l.str(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		l.logger.Warn("invalid integer, using default", zap.String("key", key), zap.String("value", raw), zap.Int("default", def))
		return def
	}
	return v
}

func (l loader) float(key string, def float64) float64 {
	raw := l.str(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		l.logger.Warn("invalid number, using default", zap.String("key", key), zap.String("value", raw), zap.Float64("default", def))
		return def
	}
	return v
}

func (l loader) duration(key string, def time.Duration) time.Duration {
	raw := l.str(key, "")
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v < 0 {
		l.logger.Warn("invalid duration, using default", zap.String("key", key), zap.String("value", raw), zap.Duration("default", def))
		return def
	}
	return v
}

func (l loader) bool(key string, def bool) bool {
	raw := l.str(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		l.logger.Warn("invalid boolean, using default", zap.String("key", key), zap.String("value", raw), zap.Bool("default", def))
		return def
	}
	return v
}

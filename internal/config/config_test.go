package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENVIRONMENT", "LOG_LEVEL", "DEFINITIONS_DB_CONFIG", "RPS_LIMIT",
		"RPS_BURST", "FETCH_TIMEOUT", "MAX_REDIRECTS", "MAX_BODY_BYTES", "USER_AGENT", "BLOCK_PRIVATE_TARGETS"} {
		t.Setenv(key, "")
	}

	cfg := Load(zap.NewNop())
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, "development", cfg.Environment)
	require.Equal(t, "info", cfg.LogLevel)
	require.Empty(t, cfg.DefinitionsDBConfig)
	require.Zero(t, cfg.RPSLimit)
	require.Equal(t, 10, cfg.RPSBurst)
	require.Zero(t, cfg.FetchTimeout)
	require.Equal(t, 10, cfg.MaxRedirects)
	require.Zero(t, cfg.MaxBodyBytes)
	require.Equal(t, "scrapeapi/1.0", cfg.UserAgent)
	require.False(t, cfg.BlockPrivateTargets)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DEFINITIONS_DB_CONFIG", `{"db_type":"memory"}`)
	t.Setenv("RPS_LIMIT", "2.5")
	t.Setenv("FETCH_TIMEOUT", "15s")
	t.Setenv("MAX_BODY_BYTES", "1048576")
	t.Setenv("BLOCK_PRIVATE_TARGETS", "true")
	t.Setenv("MAX_REDIRECTS", "0")

	cfg := Load(zap.NewNop())
	require.Equal(t, "9090", cfg.Port)
	require.Equal(t, `{"db_type":"memory"}`, cfg.DefinitionsDBConfig)
	require.Equal(t, 2.5, cfg.RPSLimit)
	require.Equal(t, 15*time.Second, cfg.FetchTimeout)
	require.Equal(t, int64(1<<20), cfg.MaxBodyBytes)
	require.True(t, cfg.BlockPrivateTargets)
	require.Zero(t, cfg.MaxRedirects)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("RPS_BURST", "many")
	t.Setenv("FETCH_TIMEOUT", "soon")
	t.Setenv("BLOCK_PRIVATE_TARGETS", "maybe")

	cfg := Load(zap.NewNop())
	require.Equal(t, 10, cfg.RPSBurst)
	require.Zero(t, cfg.FetchTimeout)
	require.False(t, cfg.BlockPrivateTargets)
}

package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)

	assert.Equal(t, "cross-encoder", cfg.Reranker.Provider)
	assert.Equal(t, 32, cfg.Reranker.BatchSize)
	assert.Equal(t, 512, cfg.Reranker.MaxLength)
	assert.Equal(t, 50, cfg.Reranker.ChunkOverlap)
	assert.Equal(t, 100, cfg.Reranker.MaxChunksPerDoc)

	assert.Equal(t, "embedeverything", cfg.Embedding.Provider)
	assert.True(t, cfg.CircuitBreaker.Enabled)
	assert.EqualValues(t, 3, cfg.CircuitBreaker.MaxRequests)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("SERVER_HOST", "0.0.0.0")
	t.Setenv("SERVER_PORT", "9999")
	t.Setenv("ENCODER_BASE_URL", "http://encoder:9000")
	t.Setenv("TELEMETRY_PARQUET_PATH", "/tmp/scores")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.Embedding.APIKey)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "http://encoder:9000", cfg.Encoder.BaseURL)
	assert.Equal(t, "/tmp/scores", cfg.Telemetry.ParquetPath)
}

func TestLoadBadServerPortEnvIgnored(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-port")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestDump(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	out, err := cfg.Dump()
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, "reranker:"))
	assert.True(t, strings.Contains(out, "server:"))
}

package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	// Log configuration
	Log LogConfig `mapstructure:"log" yaml:"log"`

	// Server configuration
	Server ServerConfig `mapstructure:"server" yaml:"server"`

	// Reranker configuration
	Reranker RerankerConfig `mapstructure:"reranker" yaml:"reranker"`

	// Encoder configuration
	Encoder EncoderConfig `mapstructure:"encoder" yaml:"encoder"`

	// Embedding configuration
	Embedding EmbeddingConfig `mapstructure:"embedding" yaml:"embedding"`

	// Telemetry configuration
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`

	// CircuitBreaker configuration
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker" yaml:"circuit_breaker"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port int    `mapstructure:"port" yaml:"port"`
	Mode string `mapstructure:"mode" yaml:"mode"` // gin mode: debug, release, test
}

// RerankerConfig holds reranker configuration
type RerankerConfig struct {
	Provider        string `mapstructure:"provider" yaml:"provider"` // cross-encoder, colbert, embedding, mock
	Model           string `mapstructure:"model" yaml:"model"`
	Metric          string `mapstructure:"metric" yaml:"metric"` // colbert only: cosine, l2
	BatchSize       int    `mapstructure:"batch_size" yaml:"batch_size"`
	MaxLength       int    `mapstructure:"max_length" yaml:"max_length"`
	ChunkMaxLength  int    `mapstructure:"chunk_max_length" yaml:"chunk_max_length"`
	ChunkOverlap    int    `mapstructure:"chunk_overlap" yaml:"chunk_overlap"`
	MaxChunksPerDoc int    `mapstructure:"max_chunks_per_doc" yaml:"max_chunks_per_doc"`
	Normalize       bool   `mapstructure:"normalize" yaml:"normalize"`
}

// EncoderConfig holds configuration for the inference backend serving
// classification logits and token embeddings
type EncoderConfig struct {
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
	Model   string `mapstructure:"model" yaml:"model"`
}

// EmbeddingConfig holds embedding configuration
type EmbeddingConfig struct {
	Provider  string `mapstructure:"provider" yaml:"provider"` // openai, embedeverything
	Model     string `mapstructure:"model" yaml:"model"`
	APIKey    string `mapstructure:"api_key" yaml:"api_key"`
	BaseURL   string `mapstructure:"base_url" yaml:"base_url"`
	CachePath string `mapstructure:"cache_path" yaml:"cache_path"` // empty disables the cache
}

// TelemetryConfig holds telemetry configuration
type TelemetryConfig struct {
	Enabled     bool   `mapstructure:"enabled" yaml:"enabled"`
	ParquetPath string `mapstructure:"parquet_path" yaml:"parquet_path"`
}

// CircuitBreakerConfig holds configuration for circuit breaking
type CircuitBreakerConfig struct {
	Enabled          bool    `mapstructure:"enabled" yaml:"enabled"`
	MaxRequests      uint32  `mapstructure:"max_requests" yaml:"max_requests"`
	Interval         int     `mapstructure:"interval" yaml:"interval"` // in seconds
	Timeout          int     `mapstructure:"timeout" yaml:"timeout"`   // in seconds
	ReadyToTripRatio float64 `mapstructure:"ready_to_trip_ratio" yaml:"ready_to_trip_ratio"`
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	// Set defaults
	setDefaults()

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Override with environment variables if present
	overrideWithEnv(config)

	return config, nil
}

// Dump renders the config as YAML, for `--dump-config` style debugging.
func (c *Config) Dump() (string, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("unable to render config: %w", err)
	}
	return string(out), nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Log defaults
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")

	// Server defaults
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "debug")

	// Reranker defaults
	viper.SetDefault("reranker.provider", "cross-encoder")
	viper.SetDefault("reranker.model", "BAAI/bge-reranker-base")
	viper.SetDefault("reranker.metric", "cosine")
	viper.SetDefault("reranker.batch_size", 32)
	viper.SetDefault("reranker.max_length", 512)
	viper.SetDefault("reranker.chunk_max_length", 512)
	viper.SetDefault("reranker.chunk_overlap", 50)
	viper.SetDefault("reranker.max_chunks_per_doc", 100)
	viper.SetDefault("reranker.normalize", false)

	// Encoder defaults
	viper.SetDefault("encoder.base_url", "http://localhost:8501")
	viper.SetDefault("encoder.model", "BAAI/bge-reranker-base")

	// Embedding defaults
	viper.SetDefault("embedding.provider", "embedeverything")
	viper.SetDefault("embedding.model", "all-MiniLM-L6-v2")

	// Circuit breaker defaults
	viper.SetDefault("circuit_breaker.enabled", true)
	viper.SetDefault("circuit_breaker.max_requests", 3)
	viper.SetDefault("circuit_breaker.interval", 60)
	viper.SetDefault("circuit_breaker.timeout", 30)
	viper.SetDefault("circuit_breaker.ready_to_trip_ratio", 0.6)

	// Telemetry defaults
	home, err := os.UserHomeDir()
	if err == nil {
		defaultPath := fmt.Sprintf("%s/.retrievals/telemetry", home)
		viper.SetDefault("telemetry.parquet_path", defaultPath)
	}
}

// overrideWithEnv overrides config with environment variables
func overrideWithEnv(config *Config) {
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		config.Embedding.APIKey = apiKey
	}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" && config.Embedding.Provider == "openai" {
		config.Embedding.BaseURL = baseURL
	}

	// Encoder backend
	if baseURL := os.Getenv("ENCODER_BASE_URL"); baseURL != "" {
		config.Encoder.BaseURL = baseURL
	}
	if model := os.Getenv("ENCODER_MODEL"); model != "" {
		config.Encoder.Model = model
	}

	// Server settings
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	// Telemetry settings
	if path := os.Getenv("TELEMETRY_PARQUET_PATH"); path != "" {
		config.Telemetry.ParquetPath = path
	}
}

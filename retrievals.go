package retrievals

import (
	"fmt"
	"time"

	"github.com/soundprediction/retrievals/pkg/config"
	"github.com/soundprediction/retrievals/pkg/embedder"
	"github.com/soundprediction/retrievals/pkg/encoder"
	"github.com/soundprediction/retrievals/pkg/reranker"
	"github.com/soundprediction/retrievals/pkg/tokenizer"
)

// Version is the library version. Overridable at build time using ldflags.
var Version = "dev"

// NewClientFromConfig wires a reranker client from application
// configuration: tokenizer, inference backend, and embedder are built
// according to the configured provider.
//
// Custom tokenizers or encoders can be injected by constructing
// reranker.ClientConfig directly instead.
func NewClientFromConfig(cfg *config.Config) (reranker.Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}

	provider := reranker.Provider(cfg.Reranker.Provider)

	clientConfig := reranker.ClientConfig{
		Provider: provider,
		Config: reranker.Config{
			Model:     cfg.Reranker.Model,
			BatchSize: cfg.Reranker.BatchSize,
			MaxLength: cfg.Reranker.MaxLength,
		},
		Metric: reranker.Metric(cfg.Reranker.Metric),
	}
	if clientConfig.Config.BatchSize == 0 && clientConfig.Config.MaxLength == 0 {
		defaults := reranker.DefaultConfig(provider)
		defaults.Model = cfg.Reranker.Model
		clientConfig.Config = defaults
	}

	switch provider {
	case reranker.ProviderCrossEncoder, reranker.ProviderColBERT:
		clientConfig.Tokenizer = tokenizer.NewWhitespace()
		inference := newInferenceClient(cfg)
		clientConfig.Classifier = inference
		clientConfig.TokenEncoder = inference

	case reranker.ProviderEmbedding:
		embedderClient, err := newEmbedderClient(cfg)
		if err != nil {
			return nil, err
		}
		clientConfig.Embedder = embedderClient

	case reranker.ProviderMock:
		// No collaborators needed.

	default:
		return nil, fmt.Errorf("unsupported reranker provider: %s", cfg.Reranker.Provider)
	}

	client, err := reranker.NewClient(clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create reranker client: %w", err)
	}
	return client, nil
}

func newInferenceClient(cfg *config.Config) *encoder.InferenceClient {
	opts := []encoder.Option{}
	if cb := cfg.CircuitBreaker; cb.Enabled {
		opts = append(opts, encoder.WithBreaker(
			"encoder",
			cb.MaxRequests,
			time.Duration(cb.Interval)*time.Second,
			time.Duration(cb.Timeout)*time.Second,
		))
	}
	return encoder.NewInferenceClient(cfg.Encoder.BaseURL, cfg.Encoder.Model, opts...)
}

func newEmbedderClient(cfg *config.Config) (embedder.Client, error) {
	embedderConfig := embedder.Config{
		Model:   cfg.Embedding.Model,
		BaseURL: cfg.Embedding.BaseURL,
	}

	var client embedder.Client
	switch cfg.Embedding.Provider {
	case "openai":
		if cfg.Embedding.APIKey == "" {
			return nil, fmt.Errorf("embedding API key is required for openai provider")
		}
		client = embedder.NewOpenAIClient(cfg.Embedding.APIKey, embedderConfig)

	case "embedeverything":
		local, err := embedder.NewEmbedEverythingClient(embedderConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create local embedder: %w", err)
		}
		client = local

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Embedding.Provider)
	}

	if cfg.Embedding.CachePath != "" {
		cached, err := embedder.NewCachedClient(client, cfg.Embedding.Model, cfg.Embedding.CachePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open embedding cache: %w", err)
		}
		client = cached
	}
	return client, nil
}

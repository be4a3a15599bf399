package reranker

import (
	"fmt"

	"github.com/soundprediction/retrievals/pkg/embedder"
	"github.com/soundprediction/retrievals/pkg/encoder"
	"github.com/soundprediction/retrievals/pkg/tokenizer"
)

// Provider identifies a reranking strategy. The set is closed: providers
// are selected here, at construction time, not looked up at scoring time.
type Provider string

const (
	// ProviderCrossEncoder scores merged query+document sequences through
	// a classification encoder.
	ProviderCrossEncoder Provider = "cross-encoder"

	// ProviderColBERT scores with MaxSim late interaction over per-token
	// embeddings.
	ProviderColBERT Provider = "colbert"

	// ProviderEmbedding ranks by bi-encoder cosine similarity.
	ProviderEmbedding Provider = "embedding"

	// ProviderMock ranks by lexical overlap, for testing.
	ProviderMock Provider = "mock"
)

// ClientConfig holds everything needed to construct a reranker client.
// Collaborators are passed at runtime and only the ones the chosen
// provider needs must be set.
type ClientConfig struct {
	Provider Provider `json:"provider"`
	Config   Config   `json:"config"`

	// Metric is the late-interaction similarity, ColBERT only.
	Metric Metric `json:"metric,omitempty"`

	Tokenizer    tokenizer.Tokenizer  `json:"-"`
	Classifier   encoder.Classifier   `json:"-"` // required for cross-encoder
	TokenEncoder encoder.TokenEncoder `json:"-"` // required for colbert
	Embedder     embedder.Client      `json:"-"` // required for embedding
}

// NewClient creates a reranker client for the configured provider.
func NewClient(clientConfig ClientConfig) (Client, error) {
	switch clientConfig.Provider {
	case ProviderCrossEncoder:
		if clientConfig.Classifier == nil {
			return nil, fmt.Errorf("classification encoder is required for cross-encoder provider")
		}
		if clientConfig.Tokenizer == nil {
			return nil, fmt.Errorf("tokenizer is required for cross-encoder provider")
		}
		return NewCrossEncoder(clientConfig.Classifier, clientConfig.Tokenizer, clientConfig.Config), nil

	case ProviderColBERT:
		if clientConfig.TokenEncoder == nil {
			return nil, fmt.Errorf("token encoder is required for colbert provider")
		}
		if clientConfig.Tokenizer == nil {
			return nil, fmt.Errorf("tokenizer is required for colbert provider")
		}
		return NewColBERT(clientConfig.TokenEncoder, clientConfig.Tokenizer, clientConfig.Metric, clientConfig.Config)

	case ProviderEmbedding:
		if clientConfig.Embedder == nil {
			return nil, fmt.Errorf("embedder client is required for embedding provider")
		}
		return NewEmbeddingReranker(clientConfig.Embedder, clientConfig.Config), nil

	case ProviderMock:
		return NewMockReranker(clientConfig.Config), nil

	default:
		return nil, fmt.Errorf("unsupported reranker provider: %s", clientConfig.Provider)
	}
}

// DefaultConfig returns a default configuration for the given provider.
func DefaultConfig(provider Provider) Config {
	switch provider {
	case ProviderCrossEncoder:
		return Config{
			BatchSize: 32,
			MaxLength: 512,
		}
	case ProviderColBERT:
		return Config{
			BatchSize: 32,
			MaxLength: 256, // token matrices are memory-heavy
		}
	case ProviderEmbedding:
		return Config{
			BatchSize: 50,
		}
	case ProviderMock:
		return Config{
			BatchSize: 100,
		}
	default:
		return Config{}
	}
}

package embedder

import "context"

// Config holds configuration common to embedding clients.
type Config struct {
	// Model is the embedding model identifier.
	Model string `json:"model"`

	// BaseURL overrides the provider's default endpoint (for
	// OpenAI-compatible local servers).
	BaseURL string `json:"base_url,omitempty"`

	// Dimensions is the expected embedding width; zero means
	// provider-defined.
	Dimensions int `json:"dimensions,omitempty"`
}

// Client generates vector embeddings for texts.
type Client interface {
	// Embed generates embeddings for the given texts, one vector per text.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedSingle generates an embedding for a single text.
	EmbedSingle(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding width, or zero if unknown.
	Dimensions() int

	// Close cleans up any resources.
	Close() error
}

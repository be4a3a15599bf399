package embedder

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClient implements the Client interface over the OpenAI embeddings
// API, including OpenAI-compatible local servers via Config.BaseURL.
type OpenAIClient struct {
	client *openai.Client
	config Config
}

// NewOpenAIClient creates a new OpenAI embedding client.
func NewOpenAIClient(apiKey string, config Config) *OpenAIClient {
	if config.Model == "" {
		config.Model = string(openai.SmallEmbedding3)
	}

	var client *openai.Client
	if config.BaseURL != "" {
		clientConfig := openai.DefaultConfig(apiKey)
		clientConfig.BaseURL = config.BaseURL
		client = openai.NewClientWithConfig(clientConfig)
	} else {
		client = openai.NewClient(apiKey)
	}

	return &OpenAIClient{client: client, config: config}
}

// Embed implements Client.
func (c *OpenAIClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(c.config.Model),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data))
	}

	embeddings := make([][]float32, len(resp.Data))
	for _, item := range resp.Data {
		embeddings[item.Index] = item.Embedding
	}
	return embeddings, nil
}

// EmbedSingle implements Client.
func (c *OpenAIClient) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := c.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("no embeddings returned")
	}
	return embeddings[0], nil
}

// Dimensions implements Client.
func (c *OpenAIClient) Dimensions() int {
	return c.config.Dimensions
}

// Close implements Client.
func (c *OpenAIClient) Close() error {
	return nil
}

//go:build !cgo

package embedder

import (
	"context"
	"fmt"
)

// EmbedEverythingClient implements the Client interface over
// go-embedeverything, running the embedding model locally. The library
// requires cgo; this stub reports that at construction time when the
// binary is built with CGO_ENABLED=0.
type EmbedEverythingClient struct {
	config Config
}

// NewEmbedEverythingClient creates a local embedding client. Model weights
// are downloaded on first use.
func NewEmbedEverythingClient(config Config) (*EmbedEverythingClient, error) {
	return nil, fmt.Errorf("failed to create embedder: go-embedeverything requires cgo (built with CGO_ENABLED=0)")
}

// Embed implements Client.
func (e *EmbedEverythingClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, fmt.Errorf("go-embedeverything requires cgo (built with CGO_ENABLED=0)")
}

// EmbedSingle implements Client.
func (e *EmbedEverythingClient) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	return nil, fmt.Errorf("go-embedeverything requires cgo (built with CGO_ENABLED=0)")
}

// Dimensions implements Client.
func (e *EmbedEverythingClient) Dimensions() int {
	return e.config.Dimensions
}

// Close implements Client.
func (e *EmbedEverythingClient) Close() error {
	return nil
}

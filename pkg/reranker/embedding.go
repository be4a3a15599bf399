package reranker

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/soundprediction/retrievals/pkg/embedder"
)

// EmbeddingReranker ranks with bi-encoder cosine similarity between the
// query embedding and whole-document embeddings. It is not a true
// cross-encoder (query and document never attend to each other) but serves
// as a cheap fallback when no classification or token encoder is deployed.
type EmbeddingReranker struct {
	embedder embedder.Client
	config   Config
}

// NewEmbeddingReranker creates an embedding-similarity reranker.
func NewEmbeddingReranker(embedderClient embedder.Client, config Config) *EmbeddingReranker {
	return &EmbeddingReranker{embedder: embedderClient, config: config}
}

// Rerank implements Client. The embedding model truncates internally, so
// no chunking is applied on this path.
func (c *EmbeddingReranker) Rerank(ctx context.Context, query string, documents []string, opts *RerankOptions) (*Result, error) {
	if query == "" || len(documents) == 0 {
		return emptyResult(), nil
	}
	o := opts.withDefaults(c.config)

	queryEmbedding, err := c.embedder.EmbedSingle(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	docEmbeddings, err := c.embedder.Embed(ctx, documents)
	if err != nil {
		return nil, fmt.Errorf("failed to embed documents: %w", err)
	}

	scores := make([]float64, len(documents))
	for i := range documents {
		scores[i] = cosineSimilarity(queryEmbedding, docEmbeddings[i])
		if o.Normalize {
			scores[i] = sigmoid(scores[i])
		}
	}

	order := make([]int, len(documents))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		if scores[order[a]] != scores[order[b]] {
			return scores[order[a]] > scores[order[b]]
		}
		return order[a] < order[b]
	})

	result := &Result{
		Documents:   make([]string, len(order)),
		Scores:      make([]float64, len(order)),
		Indices:     order,
		ChunkCounts: make([]int, len(order)),
	}
	for rank, idx := range order {
		result.Documents[rank] = documents[idx]
		result.Scores[rank] = scores[idx]
		result.ChunkCounts[rank] = 1
	}
	return result, nil
}

// ComputeScore implements Client.
func (c *EmbeddingReranker) ComputeScore(ctx context.Context, pairs []Pair, opts *ScoreOptions) ([]float64, error) {
	o := opts.withDefaults(c.config)

	scores := make([]float64, len(pairs))
	for i, pair := range pairs {
		queryEmbedding, err := c.embedder.EmbedSingle(ctx, pair.Query)
		if err != nil {
			return nil, fmt.Errorf("failed to embed query of pair %d: %w", i, err)
		}
		docEmbedding, err := c.embedder.EmbedSingle(ctx, pair.Document)
		if err != nil {
			return nil, fmt.Errorf("failed to embed document of pair %d: %w", i, err)
		}
		scores[i] = cosineSimilarity(queryEmbedding, docEmbedding)
		if o.Normalize {
			scores[i] = sigmoid(scores[i])
		}
	}
	return scores, nil
}

// Close implements Client.
func (c *EmbeddingReranker) Close() error {
	return c.embedder.Close()
}

// cosineSimilarity calculates the cosine similarity between two vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0.0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}
	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

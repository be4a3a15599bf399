package reranker

import (
	"context"
	"sort"
	"strings"
)

// MockReranker ranks by lexical overlap (Jaccard similarity of lower-cased
// word sets). Deterministic and dependency-free, for tests and dry runs.
type MockReranker struct {
	config Config
}

// NewMockReranker creates a mock reranker.
func NewMockReranker(config Config) *MockReranker {
	return &MockReranker{config: config}
}

// Rerank implements Client.
func (c *MockReranker) Rerank(ctx context.Context, query string, documents []string, opts *RerankOptions) (*Result, error) {
	if query == "" || len(documents) == 0 {
		return emptyResult(), nil
	}
	o := opts.withDefaults(c.config)

	scores := make([]float64, len(documents))
	for i, doc := range documents {
		scores[i] = jaccard(query, doc)
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
func (c *MockReranker) ComputeScore(ctx context.Context, pairs []Pair, opts *ScoreOptions) ([]float64, error) {
	o := opts.withDefaults(c.config)

	scores := make([]float64, len(pairs))
	for i, pair := range pairs {
		scores[i] = jaccard(pair.Query, pair.Document)
		if o.Normalize {
			scores[i] = sigmoid(scores[i])
		}
	}
	return scores, nil
}

// Close implements Client.
func (c *MockReranker) Close() error {
	return nil
}

func jaccard(a, b string) float64 {
	setA := wordSet(a)
	setB := wordSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for w := range setA {
		if _, ok := setB[w]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

func wordSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(s)) {
		set[w] = struct{}{}
	}
	return set
}

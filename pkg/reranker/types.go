package reranker

import "context"

// Pair is one (query, document) text pair for direct scoring.
type Pair struct {
	Query    string `json:"query"`
	Document string `json:"document"`
}

// Config holds settings shared by all providers.
type Config struct {
	// Model names the underlying model, informational for encoder-backed
	// providers and required by remote ones.
	Model string `json:"model,omitempty"`

	// BatchSize is the default number of chunks or pairs scored per
	// encoder call.
	BatchSize int `json:"batch_size,omitempty"`

	// MaxLength is the default token budget per scored sequence.
	MaxLength int `json:"max_length,omitempty"`
}

// RerankOptions are per-call overrides for Client.Rerank. A nil options
// value or a zero field selects the default.
type RerankOptions struct {
	BatchSize       int
	ChunkMaxLength  int
	ChunkOverlap    int
	MaxChunksPerDoc int
	Normalize       bool
}

// ScoreOptions are per-call overrides for Client.ComputeScore.
type ScoreOptions struct {
	BatchSize int
	MaxLength int
	Normalize bool
}

// Result is the outcome of one rerank call. The slices are parallel:
// Documents holds the input texts in ranked order, Scores their merged
// scores, Indices their positions in the original input list, and
// ChunkCounts the number of chunks scored per document (always 1 on
// providers that do not window).
type Result struct {
	Documents   []string  `json:"documents"`
	Scores      []float64 `json:"scores"`
	Indices     []int     `json:"indices"`
	ChunkCounts []int     `json:"chunk_counts"`
}

// Client reorders candidate documents by relevance to a query.
type Client interface {
	// Rerank splits over-long documents into chunks, scores every chunk,
	// and returns the documents ordered by descending merged score.
	// An empty query or empty document list yields an empty Result.
	Rerank(ctx context.Context, query string, documents []string, opts *RerankOptions) (*Result, error)

	// ComputeScore scores each text pair independently, one score per pair.
	ComputeScore(ctx context.Context, pairs []Pair, opts *ScoreOptions) ([]float64, error)

	// Close releases encoder resources.
	Close() error
}

// ScorePair scores a single pair through a Client.
func ScorePair(ctx context.Context, c Client, query, document string, opts *ScoreOptions) (float64, error) {
	scores, err := c.ComputeScore(ctx, []Pair{{Query: query, Document: document}}, opts)
	if err != nil {
		return 0, err
	}
	return scores[0], nil
}

func (o *RerankOptions) withDefaults(cfg Config) RerankOptions {
	out := RerankOptions{}
	if o != nil {
		out = *o
	}
	if out.BatchSize <= 0 {
		out.BatchSize = cfg.BatchSize
	}
	if out.BatchSize <= 0 {
		out.BatchSize = 32
	}
	if out.ChunkMaxLength <= 0 {
		out.ChunkMaxLength = cfg.MaxLength
	}
	if out.ChunkMaxLength <= 0 {
		out.ChunkMaxLength = 512
	}
	if out.ChunkOverlap <= 0 {
		out.ChunkOverlap = 50
	}
	if out.MaxChunksPerDoc <= 0 {
		out.MaxChunksPerDoc = 100
	}
	return out
}

func (o *ScoreOptions) withDefaults(cfg Config) ScoreOptions {
	out := ScoreOptions{}
	if o != nil {
		out = *o
	}
	if out.BatchSize <= 0 {
		out.BatchSize = cfg.BatchSize
	}
	if out.BatchSize <= 0 {
		out.BatchSize = 128
	}
	if out.MaxLength <= 0 {
		out.MaxLength = cfg.MaxLength
	}
	if out.MaxLength <= 0 {
		out.MaxLength = 512
	}
	return out
}

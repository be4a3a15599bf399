package reranker

import (
	"context"
	"fmt"

	"github.com/soundprediction/retrievals/pkg/encoder"
	"github.com/soundprediction/retrievals/pkg/splitter"
	"github.com/soundprediction/retrievals/pkg/tokenizer"
)

// CrossEncoder scores each query+document chunk jointly through a
// sequence-classification head: the pair is merged into one sequence and
// the encoder's pooled logit is the relevance score.
type CrossEncoder struct {
	enc    encoder.Classifier
	tok    tokenizer.Tokenizer
	config Config
}

// NewCrossEncoder creates a cross-encoder reranker over a classification
// encoder.
func NewCrossEncoder(enc encoder.Classifier, tok tokenizer.Tokenizer, config Config) *CrossEncoder {
	return &CrossEncoder{enc: enc, tok: tok, config: config}
}

// Rerank implements Client.
func (c *CrossEncoder) Rerank(ctx context.Context, query string, documents []string, opts *RerankOptions) (*Result, error) {
	return rerankWithScorer(ctx, c, c.tok, query, documents, opts.withDefaults(c.config))
}

// ComputeScore implements Client. Each pair is merged the same way chunks
// are, truncated to the per-call token budget, and scored in batches.
func (c *CrossEncoder) ComputeScore(ctx context.Context, pairs []Pair, opts *ScoreOptions) ([]float64, error) {
	o := opts.withDefaults(c.config)

	encs := make([]tokenizer.Encoding, len(pairs))
	for i, pair := range pairs {
		queryEnc, err := c.tok.Encode(pair.Query, true)
		if err != nil {
			return nil, fmt.Errorf("failed to tokenize query of pair %d: %w", i, err)
		}
		docEnc, err := c.tok.Encode(pair.Document, false)
		if err != nil {
			return nil, fmt.Errorf("failed to tokenize document of pair %d: %w", i, err)
		}
		encs[i] = splitter.Merge(queryEnc, docEnc, c.tok.SepID()).Truncate(o.MaxLength)
	}

	scores, err := c.scoreEncodings(ctx, encs, o.BatchSize)
	if err != nil {
		return nil, err
	}
	if o.Normalize {
		for i := range scores {
			scores[i] = sigmoid(scores[i])
		}
	}
	return scores, nil
}

// Close implements Client.
func (c *CrossEncoder) Close() error {
	return c.enc.Close()
}

func (c *CrossEncoder) scoreChunks(ctx context.Context, _ string, chunks []splitter.Chunk, batchSize int) ([]float64, error) {
	encs := make([]tokenizer.Encoding, len(chunks))
	for i, chunk := range chunks {
		encs[i] = chunk.Merged
	}
	return c.scoreEncodings(ctx, encs, batchSize)
}

func (c *CrossEncoder) scoreEncodings(ctx context.Context, encs []tokenizer.Encoding, batchSize int) ([]float64, error) {
	scores := make([]float64, 0, len(encs))
	for _, span := range batches(len(encs), batchSize) {
		batch := padBatch(encs[span[0]:span[1]], c.tok.PadID())
		logits, err := c.enc.Logits(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("failed to score batch [%d:%d]: %w", span[0], span[1], err)
		}
		for _, logit := range logits {
			scores = append(scores, float64(logit))
		}
	}
	return scores, nil
}

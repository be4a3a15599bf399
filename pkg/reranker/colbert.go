package reranker

import (
	"context"
	"fmt"

	"github.com/soundprediction/retrievals/pkg/encoder"
	"github.com/soundprediction/retrievals/pkg/splitter"
	"github.com/soundprediction/retrievals/pkg/tokenizer"
)

// ColBERT scores with late interaction: query and document are encoded
// separately into per-token embedding matrices and combined with MaxSim,
// letting every query token pick its best-matching document token.
type ColBERT struct {
	enc    encoder.TokenEncoder
	tok    tokenizer.Tokenizer
	metric Metric
	config Config
}

// NewColBERT creates a late-interaction reranker. The metric is fixed at
// construction; an unknown metric is rejected here rather than at scoring
// time.
func NewColBERT(enc encoder.TokenEncoder, tok tokenizer.Tokenizer, metric Metric, config Config) (*ColBERT, error) {
	if metric == "" {
		metric = MetricCosine
	}
	if err := metric.Validate(); err != nil {
		return nil, err
	}
	return &ColBERT{enc: enc, tok: tok, metric: metric, config: config}, nil
}

// Metric returns the similarity metric this reranker scores with.
func (c *ColBERT) Metric() Metric {
	return c.metric
}

// Rerank implements Client.
func (c *ColBERT) Rerank(ctx context.Context, query string, documents []string, opts *RerankOptions) (*Result, error) {
	return rerankWithScorer(ctx, c, c.tok, query, documents, opts.withDefaults(c.config))
}

// ComputeScore implements Client. Query and document of each pair are
// encoded separately, truncated to the per-call budget, and scored with
// MaxSim.
func (c *ColBERT) ComputeScore(ctx context.Context, pairs []Pair, opts *ScoreOptions) ([]float64, error) {
	o := opts.withDefaults(c.config)

	scores := make([]float64, 0, len(pairs))
	for _, span := range batches(len(pairs), o.BatchSize) {
		group := pairs[span[0]:span[1]]

		queryEncs := make([]tokenizer.Encoding, len(group))
		docEncs := make([]tokenizer.Encoding, len(group))
		for i, pair := range group {
			q, err := c.tok.Encode(pair.Query, true)
			if err != nil {
				return nil, fmt.Errorf("failed to tokenize query of pair %d: %w", span[0]+i, err)
			}
			d, err := c.tok.Encode(pair.Document, true)
			if err != nil {
				return nil, fmt.Errorf("failed to tokenize document of pair %d: %w", span[0]+i, err)
			}
			queryEncs[i] = q.Truncate(o.MaxLength)
			docEncs[i] = d.Truncate(o.MaxLength)
		}

		queryEmbs, err := c.encode(ctx, queryEncs)
		if err != nil {
			return nil, err
		}
		docEmbs, err := c.encode(ctx, docEncs)
		if err != nil {
			return nil, err
		}

		batchScores, err := MaxSimBatch(queryEmbs, docEmbs, c.metric)
		if err != nil {
			return nil, err
		}
		scores = append(scores, batchScores...)
	}

	if o.Normalize {
		for i := range scores {
			scores[i] = sigmoid(scores[i])
		}
	}
	return scores, nil
}

// Close implements Client.
func (c *ColBERT) Close() error {
	return c.enc.Close()
}

func (c *ColBERT) scoreChunks(ctx context.Context, query string, chunks []splitter.Chunk, batchSize int) ([]float64, error) {
	queryEnc, err := c.tok.Encode(query, true)
	if err != nil {
		return nil, fmt.Errorf("failed to tokenize query: %w", err)
	}
	queryEmbs, err := c.encode(ctx, []tokenizer.Encoding{queryEnc})
	if err != nil {
		return nil, err
	}
	queryEmb := queryEmbs[0]

	scores := make([]float64, 0, len(chunks))
	for _, span := range batches(len(chunks), batchSize) {
		windows := make([]tokenizer.Encoding, span[1]-span[0])
		for i, chunk := range chunks[span[0]:span[1]] {
			windows[i] = chunk.Window
		}

		windowEmbs, err := c.encode(ctx, windows)
		if err != nil {
			return nil, err
		}
		for _, emb := range windowEmbs {
			s, err := MaxSim(queryEmb, emb, c.metric)
			if err != nil {
				return nil, err
			}
			scores = append(scores, s)
		}
	}
	return scores, nil
}

// encode runs the token encoder over a padded batch and trims each result
// back to its unpadded length, so padding rows never enter MaxSim.
func (c *ColBERT) encode(ctx context.Context, encs []tokenizer.Encoding) ([][][]float32, error) {
	batch := padBatch(encs, c.tok.PadID())
	embs, err := c.enc.TokenEmbeddings(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("failed to encode batch of %d sequences: %w", len(encs), err)
	}
	if len(embs) != len(encs) {
		return nil, fmt.Errorf("encoder returned %d matrices for %d sequences", len(embs), len(encs))
	}
	for i := range embs {
		if n := encs[i].Len(); len(embs[i]) > n {
			embs[i] = embs[i][:n]
		}
	}
	return embs, nil
}

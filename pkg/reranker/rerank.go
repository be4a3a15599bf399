package reranker

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/soundprediction/retrievals/pkg/encoder"
	"github.com/soundprediction/retrievals/pkg/splitter"
	"github.com/soundprediction/retrievals/pkg/tokenizer"
)

// padBatch pads a group of encodings and converts them to encoder input.
func padBatch(encs []tokenizer.Encoding, padID int) encoder.Batch {
	b := tokenizer.Pad(encs, padID)
	return encoder.Batch{
		InputIDs:      b.InputIDs,
		AttentionMask: b.AttentionMask,
		TokenTypeIDs:  b.TokenTypeIDs,
	}
}

// chunkScorer is the per-provider piece of the rerank pipeline: it assigns
// one relevance score to every chunk of a query.
type chunkScorer interface {
	scoreChunks(ctx context.Context, query string, chunks []splitter.Chunk, batchSize int) ([]float64, error)
}

// emptyResult is returned for an empty query or document list.
func emptyResult() *Result {
	return &Result{Documents: []string{}, Scores: []float64{}, Indices: []int{}, ChunkCounts: []int{}}
}

// rerankWithScorer runs the shared pipeline: split documents into chunks,
// score every chunk in batches, merge chunk scores per document by taking
// the maximum, and sort documents by merged score descending.
func rerankWithScorer(ctx context.Context, cs chunkScorer, tok tokenizer.Tokenizer, query string, documents []string, opts RerankOptions) (*Result, error) {
	if query == "" || len(documents) == 0 {
		return emptyResult(), nil
	}

	sp := splitter.New(opts.ChunkMaxLength, opts.ChunkOverlap, opts.MaxChunksPerDoc)
	chunks, err := sp.CreateDocuments(query, documents, tok)
	if err != nil {
		return nil, fmt.Errorf("failed to split documents: %w", err)
	}

	scores, err := cs.scoreChunks(ctx, query, chunks, opts.BatchSize)
	if err != nil {
		return nil, err
	}
	if len(scores) != len(chunks) {
		return nil, fmt.Errorf("scored %d of %d chunks", len(scores), len(chunks))
	}
	if opts.Normalize {
		for i := range scores {
			scores[i] = sigmoid(scores[i])
		}
	}

	// Seed with -Inf so the first chunk of a document always wins the max,
	// even when every score is negative (the l2 metric is never positive).
	merged := make([]float64, len(documents))
	for i := range merged {
		merged[i] = math.Inf(-1)
	}
	counts := make([]int, len(documents))
	for i, chunk := range chunks {
		counts[chunk.DocumentID]++
		if scores[i] > merged[chunk.DocumentID] {
			merged[chunk.DocumentID] = scores[i]
		}
	}

	order := make([]int, len(documents))
	for i := range order {
		order[i] = i
	}
	// Ties break on the original index so output is deterministic.
	sort.Slice(order, func(a, b int) bool {
		if merged[order[a]] != merged[order[b]] {
			return merged[order[a]] > merged[order[b]]
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
		result.Scores[rank] = merged[idx]
		result.ChunkCounts[rank] = counts[idx]
	}
	return result, nil
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// batches yields [start, end) ranges of size at most batchSize over n items.
func batches(n, batchSize int) [][2]int {
	if batchSize <= 0 {
		batchSize = n
	}
	var out [][2]int
	for start := 0; start < n; start += batchSize {
		end := start + batchSize
		if end > n {
			end = n
		}
		out = append(out, [2]int{start, end})
	}
	return out
}

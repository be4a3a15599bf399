package reranker

import (
	"context"
	"math"
	"testing"

	"github.com/soundprediction/retrievals/pkg/encoder"
	"github.com/soundprediction/retrievals/pkg/tokenizer"
)

// fakeTokenEncoder hands out fixed per-token embeddings from a vocabulary
// of known ids; unknown ids (padding included) get the zero vector.
type fakeTokenEncoder struct {
	vecs   map[int64][]float32
	dim    int
	closed bool
}

func (f *fakeTokenEncoder) TokenEmbeddings(_ context.Context, batch encoder.Batch) ([][][]float32, error) {
	out := make([][][]float32, batch.Size())
	for i, seq := range batch.InputIDs {
		rows := make([][]float32, len(seq))
		for j, id := range seq {
			if v, ok := f.vecs[id]; ok {
				rows[j] = v
			} else {
				rows[j] = make([]float32, f.dim)
			}
		}
		out[i] = rows
	}
	return out, nil
}

func (f *fakeTokenEncoder) Close() error {
	f.closed = true
	return nil
}

// oneHot returns a dim-wide unit vector along axis k.
func oneHot(dim, k int) []float32 {
	v := make([]float32, dim)
	v[k] = 1
	return v
}

// newOneHotEncoder maps each word (and the special tokens) to its own
// orthogonal axis, making MaxSim scores exact in tests.
func newOneHotEncoder(t *testing.T, tok tokenizer.Tokenizer, words ...string) *fakeTokenEncoder {
	t.Helper()
	dim := len(words) + 2
	vecs := make(map[int64][]float32, dim)
	for k, w := range words {
		vecs[tokenID(t, tok, w)] = oneHot(dim, k)
	}
	vecs[101] = oneHot(dim, len(words))                   // CLS
	vecs[int64(tok.SepID())] = oneHot(dim, len(words)+1) // SEP
	return &fakeTokenEncoder{vecs: vecs, dim: dim}
}

func TestNewColBERTMetricValidation(t *testing.T) {
	tok := tokenizer.NewWhitespace()
	fake := &fakeTokenEncoder{dim: 2}

	if _, err := NewColBERT(fake, tok, Metric("dot"), Config{}); err == nil {
		t.Fatal("Expected error for unknown metric")
	}

	client, err := NewColBERT(fake, tok, "", Config{})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if client.Metric() != MetricCosine {
		t.Errorf("Expected empty metric to default to cosine, got %q", client.Metric())
	}
}

func TestColBERTComputeScore(t *testing.T) {
	tok := tokenizer.NewWhitespace()
	fake := newOneHotEncoder(t, tok, "machine", "learning", "cooking", "pasta")
	client, err := NewColBERT(fake, tok, MetricCosine, DefaultConfig(ProviderColBERT))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	defer client.Close()

	pairs := []Pair{
		{Query: "machine learning", Document: "machine learning"},
		{Query: "machine learning", Document: "cooking pasta"},
	}

	scores, err := client.ComputeScore(context.Background(), pairs, nil)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	// The identical document matches all 4 query tokens (CLS and SEP
	// included) exactly; the disjoint one only matches the special tokens.
	if math.Abs(scores[0]-4) > 1e-6 {
		t.Errorf("Expected exact-match score 4, got %f", scores[0])
	}
	if math.Abs(scores[1]-2) > 1e-6 {
		t.Errorf("Expected disjoint score 2 (specials only), got %f", scores[1])
	}
}

func TestColBERTRerank(t *testing.T) {
	tok := tokenizer.NewWhitespace()
	fake := newOneHotEncoder(t, tok, "machine", "learning", "cooking", "pasta", "recipe")
	client, err := NewColBERT(fake, tok, MetricCosine, DefaultConfig(ProviderColBERT))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	defer client.Close()

	documents := []string{
		"cooking pasta recipe",
		"machine learning",
	}

	result, err := client.Rerank(context.Background(), "machine learning", documents, nil)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if result.Indices[0] != 1 {
		t.Fatalf("Expected the matching document first, got order %v", result.Indices)
	}
	// Chunk windows carry no special tokens, so the matching document
	// scores exactly its two word matches.
	if math.Abs(result.Scores[0]-2) > 1e-6 {
		t.Errorf("Expected score 2, got %f", result.Scores[0])
	}
	if math.Abs(result.Scores[1]) > 1e-6 {
		t.Errorf("Expected score 0 for the disjoint document, got %f", result.Scores[1])
	}
}

func TestColBERTRerankL2AllNegative(t *testing.T) {
	tok := tokenizer.NewWhitespace()
	fake := newOneHotEncoder(t, tok, "machine", "learning", "cooking", "pasta")
	client, err := NewColBERT(fake, tok, MetricL2, DefaultConfig(ProviderColBERT))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	defer client.Close()

	documents := []string{
		"cooking pasta",
		"machine learning",
	}

	result, err := client.Rerank(context.Background(), "machine learning", documents, nil)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	// l2 scores are never positive; ranking must still work.
	if result.Indices[0] != 1 {
		t.Fatalf("Expected the matching document first, got order %v", result.Indices)
	}
	for i, s := range result.Scores {
		if s > 0 {
			t.Errorf("Expected non-positive l2 score at rank %d, got %f", i, s)
		}
	}
	if result.Scores[0] <= result.Scores[1] {
		t.Errorf("Expected strictly better score for the match: %f vs %f", result.Scores[0], result.Scores[1])
	}
}

func TestColBERTClose(t *testing.T) {
	fake := &fakeTokenEncoder{dim: 2}
	client, err := NewColBERT(fake, tokenizer.NewWhitespace(), MetricCosine, Config{})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if err := client.Close(); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !fake.closed {
		t.Error("Expected Close to propagate to the encoder")
	}
}

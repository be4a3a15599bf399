package reranker

import (
	"context"
	"testing"

	"github.com/soundprediction/retrievals/pkg/encoder"
	"github.com/soundprediction/retrievals/pkg/tokenizer"
)

// fakeClassifier scores each sequence by how many of its tokens carry the
// target id, so documents repeating a query word score higher.
type fakeClassifier struct {
	targetID int64
	calls    int
	closed   bool
}

func (f *fakeClassifier) Logits(_ context.Context, batch encoder.Batch) ([]float32, error) {
	f.calls++
	logits := make([]float32, batch.Size())
	for i, seq := range batch.InputIDs {
		var count float32
		for j, id := range seq {
			if id == f.targetID && batch.AttentionMask[i][j] == 1 {
				count++
			}
		}
		logits[i] = count
	}
	return logits, nil
}

func (f *fakeClassifier) Close() error {
	f.closed = true
	return nil
}

// tokenID returns the id the whitespace tokenizer assigns to a word.
func tokenID(t *testing.T, tok tokenizer.Tokenizer, word string) int64 {
	t.Helper()
	enc, err := tok.Encode(word, false)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if enc.Len() != 1 {
		t.Fatalf("Expected a single token for %q, got %d", word, enc.Len())
	}
	return int64(enc.InputIDs[0])
}

func TestCrossEncoderRerank(t *testing.T) {
	tok := tokenizer.NewWhitespace()
	fake := &fakeClassifier{targetID: tokenID(t, tok, "learning")}
	client := NewCrossEncoder(fake, tok, DefaultConfig(ProviderCrossEncoder))
	defer client.Close()

	query := "machine learning"
	documents := []string{
		"cooking dinner tonight",
		"learning learning learning everywhere",
		"deep learning models",
	}

	result, err := client.Rerank(context.Background(), query, documents, nil)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(result.Documents) != len(documents) {
		t.Fatalf("Expected %d results, got %d", len(documents), len(result.Documents))
	}
	if result.Indices[0] != 1 {
		t.Errorf("Expected document 1 (most target tokens) first, got order %v", result.Indices)
	}
	if result.Indices[2] != 0 {
		t.Errorf("Expected document 0 (no target tokens) last, got order %v", result.Indices)
	}
}

func TestCrossEncoderRerankEmpty(t *testing.T) {
	tok := tokenizer.NewWhitespace()
	client := NewCrossEncoder(&fakeClassifier{}, tok, DefaultConfig(ProviderCrossEncoder))
	defer client.Close()

	result, err := client.Rerank(context.Background(), "", []string{"doc"}, nil)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(result.Documents) != 0 {
		t.Errorf("Expected empty result, got %d documents", len(result.Documents))
	}
}

func TestCrossEncoderComputeScore(t *testing.T) {
	tok := tokenizer.NewWhitespace()
	fake := &fakeClassifier{targetID: tokenID(t, tok, "relevant")}
	client := NewCrossEncoder(fake, tok, DefaultConfig(ProviderCrossEncoder))
	defer client.Close()

	pairs := []Pair{
		{Query: "anything", Document: "relevant relevant text"},
		{Query: "anything", Document: "unrelated text"},
	}

	scores, err := client.ComputeScore(context.Background(), pairs, nil)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(scores) != 2 {
		t.Fatalf("Expected 2 scores, got %d", len(scores))
	}
	if scores[0] <= scores[1] {
		t.Errorf("Expected pair with target tokens to score higher: %f vs %f", scores[0], scores[1])
	}
}

func TestCrossEncoderComputeScoreNormalize(t *testing.T) {
	tok := tokenizer.NewWhitespace()
	fake := &fakeClassifier{targetID: tokenID(t, tok, "relevant")}
	client := NewCrossEncoder(fake, tok, DefaultConfig(ProviderCrossEncoder))
	defer client.Close()

	scores, err := client.ComputeScore(context.Background(), []Pair{
		{Query: "q", Document: "relevant"},
	}, &ScoreOptions{Normalize: true})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if scores[0] <= 0 || scores[0] >= 1 {
		t.Errorf("Expected normalized score in (0,1), got %f", scores[0])
	}
}

func TestCrossEncoderBatching(t *testing.T) {
	tok := tokenizer.NewWhitespace()
	fake := &fakeClassifier{}
	cfg := DefaultConfig(ProviderCrossEncoder)
	client := NewCrossEncoder(fake, tok, cfg)
	defer client.Close()

	pairs := make([]Pair, 5)
	for i := range pairs {
		pairs[i] = Pair{Query: "q", Document: "some text"}
	}

	_, err := client.ComputeScore(context.Background(), pairs, &ScoreOptions{BatchSize: 2})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if fake.calls != 3 {
		t.Errorf("Expected 3 encoder calls for 5 pairs at batch size 2, got %d", fake.calls)
	}
}

func TestCrossEncoderClose(t *testing.T) {
	fake := &fakeClassifier{}
	client := NewCrossEncoder(fake, tokenizer.NewWhitespace(), Config{})

	if err := client.Close(); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !fake.closed {
		t.Error("Expected Close to propagate to the encoder")
	}
}

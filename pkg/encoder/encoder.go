// Package encoder defines the contracts for the pretrained encoder this
// library sits on top of, plus an HTTP client for remote inference servers.
//
// The library never loads model weights itself. Cross-encoder scoring needs
// a Classifier (one pooled logit per sequence); late-interaction scoring
// needs a TokenEncoder (one embedding row per token). A single inference
// server commonly provides both.
package encoder

import "context"

// Batch is padded, rectangular encoder input produced by tokenizer.Pad.
type Batch struct {
	InputIDs      [][]int64 `json:"input_ids"`
	AttentionMask [][]int64 `json:"attention_mask"`
	TokenTypeIDs  [][]int64 `json:"token_type_ids,omitempty"`
}

// Size returns the number of sequences in the batch.
func (b Batch) Size() int {
	return len(b.InputIDs)
}

// Classifier scores each sequence of a batch with a single pooled logit,
// the way a sequence-classification head does.
type Classifier interface {
	Logits(ctx context.Context, batch Batch) ([]float32, error)
	Close() error
}

// TokenEncoder produces one embedding per token, for every sequence of a
// batch. The returned tensor is [sequence][token][dim]; rows for padded
// positions are present and must be trimmed by the caller using the
// attention mask or the original sequence lengths.
type TokenEncoder interface {
	TokenEmbeddings(ctx context.Context, batch Batch) ([][][]float32, error)
	Close() error
}

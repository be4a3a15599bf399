// Package tokenizer defines the tokenizer contract used by the rerankers
// and the splitter, plus a small self-contained whitespace implementation.
//
// Production deployments adapt a real subword tokenizer (WordPiece,
// SentencePiece) behind the Tokenizer interface; the library itself only
// needs token ids, attention masks, optional segment ids, and the id of
// the separator token.
package tokenizer

import "fmt"

// Encoding is the tokenized form of a single text.
// TokenTypeIDs is nil when the tokenizer does not track segment ids.
type Encoding struct {
	InputIDs      []int
	AttentionMask []int
	TokenTypeIDs  []int
}

// Len returns the number of tokens in the encoding.
func (e Encoding) Len() int {
	return len(e.InputIDs)
}

// Clone returns a deep copy of the encoding.
func (e Encoding) Clone() Encoding {
	out := Encoding{
		InputIDs:      append([]int(nil), e.InputIDs...),
		AttentionMask: append([]int(nil), e.AttentionMask...),
	}
	if e.TokenTypeIDs != nil {
		out.TokenTypeIDs = append([]int(nil), e.TokenTypeIDs...)
	}
	return out
}

// Slice returns the sub-encoding covering token positions [start, end).
// The bounds are clamped to the encoding length.
func (e Encoding) Slice(start, end int) Encoding {
	if start < 0 {
		start = 0
	}
	if end > e.Len() {
		end = e.Len()
	}
	if start > end {
		start = end
	}
	out := Encoding{
		InputIDs:      append([]int(nil), e.InputIDs[start:end]...),
		AttentionMask: append([]int(nil), e.AttentionMask[start:end]...),
	}
	if e.TokenTypeIDs != nil {
		out.TokenTypeIDs = append([]int(nil), e.TokenTypeIDs[start:end]...)
	}
	return out
}

// Truncate returns the encoding limited to at most maxLen tokens.
func (e Encoding) Truncate(maxLen int) Encoding {
	if maxLen < 0 || e.Len() <= maxLen {
		return e
	}
	return e.Slice(0, maxLen)
}

// Tokenizer turns text into token ids.
type Tokenizer interface {
	// Encode tokenizes text. When addSpecialTokens is true the encoding
	// is wrapped with the tokenizer's sequence markers (e.g. [CLS]/[SEP]).
	Encode(text string, addSpecialTokens bool) (Encoding, error)

	// SepID returns the id of the separator token.
	SepID() int

	// PadID returns the id used for padding.
	PadID() int
}

// Batch holds rectangular, padded encoder input.
type Batch struct {
	InputIDs      [][]int64
	AttentionMask [][]int64
	TokenTypeIDs  [][]int64
}

// Size returns the number of sequences in the batch.
func (b Batch) Size() int {
	return len(b.InputIDs)
}

// Pad right-pads a group of encodings to the length of the longest one
// and converts them to encoder input. Padded positions get padID and a
// zero attention mask. TokenTypeIDs are emitted only when every encoding
// tracks them.
func Pad(encs []Encoding, padID int) Batch {
	maxLen := 0
	withTypes := len(encs) > 0
	for _, e := range encs {
		if e.Len() > maxLen {
			maxLen = e.Len()
		}
		if e.TokenTypeIDs == nil {
			withTypes = false
		}
	}

	batch := Batch{
		InputIDs:      make([][]int64, len(encs)),
		AttentionMask: make([][]int64, len(encs)),
	}
	if withTypes {
		batch.TokenTypeIDs = make([][]int64, len(encs))
	}

	for i, e := range encs {
		ids := make([]int64, maxLen)
		mask := make([]int64, maxLen)
		for j, id := range e.InputIDs {
			ids[j] = int64(id)
		}
		for j := e.Len(); j < maxLen; j++ {
			ids[j] = int64(padID)
		}
		for j, m := range e.AttentionMask {
			mask[j] = int64(m)
		}
		batch.InputIDs[i] = ids
		batch.AttentionMask[i] = mask

		if withTypes {
			types := make([]int64, maxLen)
			for j, tt := range e.TokenTypeIDs {
				types[j] = int64(tt)
			}
			batch.TokenTypeIDs[i] = types
		}
	}
	return batch
}

// Validate reports malformed encodings (mismatched parallel slices).
func Validate(e Encoding) error {
	if len(e.AttentionMask) != len(e.InputIDs) {
		return fmt.Errorf("encoding has %d ids but %d mask values", len(e.InputIDs), len(e.AttentionMask))
	}
	if e.TokenTypeIDs != nil && len(e.TokenTypeIDs) != len(e.InputIDs) {
		return fmt.Errorf("encoding has %d ids but %d token type ids", len(e.InputIDs), len(e.TokenTypeIDs))
	}
	return nil
}

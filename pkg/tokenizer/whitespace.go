package tokenizer

import (
	"hash/fnv"
	"strings"
)

// BERT-style reserved ids.
const (
	defaultPadID = 0
	defaultClsID = 101
	defaultSepID = 102

	// first id handed out to regular vocabulary entries
	vocabOffset = 1000
)

// Whitespace is a deterministic hashing tokenizer: text is lower-cased,
// split on whitespace, and each token is mapped into a fixed id range via
// FNV-1a. It needs no vocabulary files, which makes it suitable for tests,
// examples and the CLI's mock provider.
type Whitespace struct {
	vocabSize int
}

// NewWhitespace creates a whitespace tokenizer with a BERT-sized id space.
func NewWhitespace() *Whitespace {
	return &Whitespace{vocabSize: 30522}
}

// Encode implements Tokenizer.
func (w *Whitespace) Encode(text string, addSpecialTokens bool) (Encoding, error) {
	words := strings.Fields(strings.ToLower(text))

	n := len(words)
	if addSpecialTokens {
		n += 2
	}
	enc := Encoding{
		InputIDs:      make([]int, 0, n),
		AttentionMask: make([]int, 0, n),
		TokenTypeIDs:  make([]int, 0, n),
	}

	if addSpecialTokens {
		enc.append(defaultClsID)
	}
	for _, word := range words {
		enc.append(w.tokenID(word))
	}
	if addSpecialTokens {
		enc.append(defaultSepID)
	}
	return enc, nil
}

// SepID implements Tokenizer.
func (w *Whitespace) SepID() int { return defaultSepID }

// PadID implements Tokenizer.
func (w *Whitespace) PadID() int { return defaultPadID }

func (w *Whitespace) tokenID(word string) int {
	h := fnv.New32a()
	h.Write([]byte(word))
	span := w.vocabSize - vocabOffset
	return vocabOffset + int(h.Sum32())%span
}

func (e *Encoding) append(id int) {
	e.InputIDs = append(e.InputIDs, id)
	e.AttentionMask = append(e.AttentionMask, 1)
	e.TokenTypeIDs = append(e.TokenTypeIDs, 0)
}

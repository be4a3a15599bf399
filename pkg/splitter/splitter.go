// Package splitter breaks long documents into overlapping token windows so
// that each query+window pair fits inside a fixed encoder budget.
package splitter

import (
	"fmt"

	"github.com/soundprediction/retrievals/pkg/tokenizer"
)

// Chunk is one query+window pair produced by the splitter.
type Chunk struct {
	// Merged is the encoder-ready sequence: query tokens, a separator,
	// the document window, and a trailing separator.
	Merged tokenizer.Encoding

	// Window is the document-side tokens alone. Late-interaction scoring
	// encodes the query and the window separately and needs this view.
	Window tokenizer.Encoding

	// DocumentID is the index of the originating document in the input list.
	DocumentID int
}

// Splitter slides a fixed-width window over documents that exceed the
// per-chunk token budget.
type Splitter struct {
	// ChunkSize is the total token budget for query + window + 2 separators.
	ChunkSize int

	// ChunkOverlap is the number of tokens shared by consecutive windows
	// of the same document.
	ChunkOverlap int

	// MaxChunksPerDoc caps the number of windows emitted per document;
	// windows past the cap are dropped. Zero or negative means no cap.
	MaxChunksPerDoc int
}

// New creates a splitter.
func New(chunkSize, chunkOverlap, maxChunksPerDoc int) *Splitter {
	return &Splitter{
		ChunkSize:       chunkSize,
		ChunkOverlap:    chunkOverlap,
		MaxChunksPerDoc: maxChunksPerDoc,
	}
}

// CreateDocuments tokenizes the query once, then emits one or more chunks
// per document. Documents that fit the budget produce exactly one chunk;
// longer documents are windowed with ChunkOverlap tokens of overlap, the
// final window ending exactly at the document's end.
func (s *Splitter) CreateDocuments(query string, documents []string, tok tokenizer.Tokenizer) ([]Chunk, error) {
	queryEnc, err := tok.Encode(query, true)
	if err != nil {
		return nil, fmt.Errorf("failed to tokenize query: %w", err)
	}
	if err := tokenizer.Validate(queryEnc); err != nil {
		return nil, fmt.Errorf("bad query encoding: %w", err)
	}

	// Reserve two separator positions next to the query tokens.
	docMaxLength := s.ChunkSize - queryEnc.Len() - 2
	if docMaxLength < 1 {
		return nil, fmt.Errorf("query occupies %d of %d chunk tokens, no room for document text", queryEnc.Len(), s.ChunkSize)
	}
	// Windows must advance: an overlap at or above the document budget
	// would slide the start backwards and never terminate.
	if s.ChunkOverlap >= docMaxLength {
		return nil, fmt.Errorf("chunk overlap %d must be smaller than the %d-token document budget", s.ChunkOverlap, docMaxLength)
	}

	var chunks []Chunk
	for pid, document := range documents {
		docEnc, err := tok.Encode(document, false)
		if err != nil {
			return nil, fmt.Errorf("failed to tokenize document %d: %w", pid, err)
		}
		if err := tokenizer.Validate(docEnc); err != nil {
			return nil, fmt.Errorf("bad encoding for document %d: %w", pid, err)
		}

		if docEnc.Len() <= docMaxLength {
			chunks = append(chunks, Chunk{
				Merged:     Merge(queryEnc, docEnc, tok.SepID()),
				Window:     docEnc,
				DocumentID: pid,
			})
			continue
		}

		emitted := 0
		start := 0
		for start < docEnc.Len() {
			if s.MaxChunksPerDoc > 0 && emitted >= s.MaxChunksPerDoc {
				break
			}
			end := start + docMaxLength
			window := docEnc.Slice(start, end)
			chunks = append(chunks, Chunk{
				Merged:     Merge(queryEnc, window, tok.SepID()),
				Window:     window,
				DocumentID: pid,
			})
			emitted++
			if end >= docEnc.Len() {
				break
			}
			start = end - s.ChunkOverlap
		}
	}
	return chunks, nil
}

// Merge concatenates query and window into a single sequence:
// query tokens + SEP + window tokens + SEP. The attention mask mirrors the
// layout with the window's leading mask value duplicated at both separator
// positions, and the whole document side is tagged segment 1 when the
// query encoding tracks token type ids.
func Merge(query, window tokenizer.Encoding, sepID int) tokenizer.Encoding {
	merged := query.Clone()

	sepMask := 1
	if len(window.AttentionMask) > 0 {
		sepMask = window.AttentionMask[0]
	}

	merged.InputIDs = append(merged.InputIDs, sepID)
	merged.InputIDs = append(merged.InputIDs, window.InputIDs...)
	merged.InputIDs = append(merged.InputIDs, sepID)

	merged.AttentionMask = append(merged.AttentionMask, sepMask)
	merged.AttentionMask = append(merged.AttentionMask, window.AttentionMask...)
	merged.AttentionMask = append(merged.AttentionMask, sepMask)

	if merged.TokenTypeIDs != nil {
		for i := 0; i < window.Len()+2; i++ {
			merged.TokenTypeIDs = append(merged.TokenTypeIDs, 1)
		}
	}
	return merged
}

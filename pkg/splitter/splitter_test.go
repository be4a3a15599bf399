package splitter

import (
	"fmt"
	"strings"
	"testing"

	"github.com/soundprediction/retrievals/pkg/tokenizer"
)

// words returns a document of n whitespace-separated tokens.
func words(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("w%d", i)
	}
	return strings.Join(parts, " ")
}

func TestCreateDocumentsShortDocument(t *testing.T) {
	tok := tokenizer.NewWhitespace()
	s := New(20, 2, 0)

	// Query "a b" encodes to 4 tokens with specials, leaving 20-4-2 = 14
	// positions for document text.
	chunks, err := s.CreateDocuments("a b", []string{words(10)}, tok)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("Expected 1 chunk for a short document, got %d", len(chunks))
	}

	chunk := chunks[0]
	if chunk.DocumentID != 0 {
		t.Errorf("Expected document id 0, got %d", chunk.DocumentID)
	}
	if chunk.Window.Len() != 10 {
		t.Errorf("Expected window of 10 tokens, got %d", chunk.Window.Len())
	}
	// query(4) + sep + window(10) + sep
	if chunk.Merged.Len() != 16 {
		t.Errorf("Expected merged length 16, got %d", chunk.Merged.Len())
	}
}

func TestCreateDocumentsWindowing(t *testing.T) {
	tok := tokenizer.NewWhitespace()
	s := New(20, 2, 0)

	// 30 document tokens against a 14-token budget with overlap 2 should
	// produce windows [0,14), [12,26), [24,30).
	chunks, err := s.CreateDocuments("a b", []string{words(30)}, tok)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("Expected 3 chunks, got %d", len(chunks))
	}

	wantLens := []int{14, 14, 6}
	for i, want := range wantLens {
		if chunks[i].Window.Len() != want {
			t.Errorf("Expected window %d to have %d tokens, got %d", i, want, chunks[i].Window.Len())
		}
	}

	docEnc, _ := tok.Encode(words(30), false)

	// Consecutive windows share exactly the overlap tokens.
	first := chunks[0].Window.InputIDs
	second := chunks[1].Window.InputIDs
	if first[12] != second[0] || first[13] != second[1] {
		t.Error("Expected windows 0 and 1 to overlap by 2 tokens")
	}

	// The final window ends exactly at the document's end.
	last := chunks[2].Window.InputIDs
	if last[len(last)-1] != docEnc.InputIDs[docEnc.Len()-1] {
		t.Error("Expected the final window to end at the document's last token")
	}
}

func TestCreateDocumentsMaxChunksPerDoc(t *testing.T) {
	tok := tokenizer.NewWhitespace()
	s := New(20, 2, 2)

	chunks, err := s.CreateDocuments("a b", []string{words(100)}, tok)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("Expected chunk cap of 2 to apply, got %d chunks", len(chunks))
	}
}

func TestCreateDocumentsMultipleDocuments(t *testing.T) {
	tok := tokenizer.NewWhitespace()
	s := New(20, 2, 0)

	chunks, err := s.CreateDocuments("a b", []string{words(5), words(30), words(3)}, tok)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	counts := map[int]int{}
	for _, c := range chunks {
		counts[c.DocumentID]++
	}
	if counts[0] != 1 || counts[1] != 3 || counts[2] != 1 {
		t.Errorf("Expected chunk counts {0:1, 1:3, 2:1}, got %v", counts)
	}
}

func TestCreateDocumentsQueryTooLong(t *testing.T) {
	tok := tokenizer.NewWhitespace()
	s := New(10, 2, 0)

	// Query of 10 words encodes to 12 tokens, leaving no document budget.
	_, err := s.CreateDocuments(words(10), []string{"short doc"}, tok)
	if err == nil {
		t.Fatal("Expected error when the query exhausts the chunk budget")
	}
}

func TestCreateDocumentsOverlapTooLarge(t *testing.T) {
	tok := tokenizer.NewWhitespace()

	// Overlap 16 meets a 14-token document budget: the window start would
	// never advance, so the splitter must refuse instead of looping.
	s := New(20, 16, 0)
	_, err := s.CreateDocuments("a b", []string{words(30)}, tok)
	if err == nil {
		t.Fatal("Expected error when the overlap is not smaller than the document budget")
	}

	// Overlap exactly one below the budget still advances.
	s = New(20, 13, 0)
	if _, err := s.CreateDocuments("a b", []string{words(30)}, tok); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
}

func TestCreateDocumentsEmptyDocument(t *testing.T) {
	tok := tokenizer.NewWhitespace()
	s := New(20, 2, 0)

	chunks, err := s.CreateDocuments("a b", []string{""}, tok)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("Expected 1 chunk for an empty document, got %d", len(chunks))
	}
	if chunks[0].Window.Len() != 0 {
		t.Errorf("Expected empty window, got %d tokens", chunks[0].Window.Len())
	}
	// query(4) + 2 separators
	if chunks[0].Merged.Len() != 6 {
		t.Errorf("Expected merged length 6, got %d", chunks[0].Merged.Len())
	}
}

func TestMergeLayout(t *testing.T) {
	query := tokenizer.Encoding{
		InputIDs:      []int{101, 7, 8, 102},
		AttentionMask: []int{1, 1, 1, 1},
		TokenTypeIDs:  []int{0, 0, 0, 0},
	}
	window := tokenizer.Encoding{
		InputIDs:      []int{20, 21},
		AttentionMask: []int{1, 1},
	}

	merged := Merge(query, window, 102)

	wantIDs := []int{101, 7, 8, 102, 102, 20, 21, 102}
	if len(merged.InputIDs) != len(wantIDs) {
		t.Fatalf("Expected %d ids, got %d", len(wantIDs), len(merged.InputIDs))
	}
	for i, want := range wantIDs {
		if merged.InputIDs[i] != want {
			t.Errorf("Expected id %d at position %d, got %d", want, i, merged.InputIDs[i])
		}
	}

	// Query side keeps segment 0, document side (separators included) is 1.
	wantTypes := []int{0, 0, 0, 0, 1, 1, 1, 1}
	for i, want := range wantTypes {
		if merged.TokenTypeIDs[i] != want {
			t.Errorf("Expected token type %d at position %d, got %d", want, i, merged.TokenTypeIDs[i])
		}
	}

	if err := tokenizer.Validate(merged); err != nil {
		t.Errorf("Expected valid merged encoding, got: %v", err)
	}
}

func TestMergeDoesNotMutateQuery(t *testing.T) {
	query := tokenizer.Encoding{
		InputIDs:      []int{101, 7, 102},
		AttentionMask: []int{1, 1, 1},
	}
	window := tokenizer.Encoding{
		InputIDs:      []int{20},
		AttentionMask: []int{1},
	}

	_ = Merge(query, window, 102)
	_ = Merge(query, window, 102)

	if len(query.InputIDs) != 3 {
		t.Errorf("Merge mutated the query encoding: %v", query.InputIDs)
	}
}

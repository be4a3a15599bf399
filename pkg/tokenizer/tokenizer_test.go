package tokenizer

import (
	"testing"
)

func TestWhitespaceEncode(t *testing.T) {
	tok := NewWhitespace()

	enc, err := tok.Encode("hello world", false)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if enc.Len() != 2 {
		t.Fatalf("Expected 2 tokens, got %d", enc.Len())
	}
	if err := Validate(enc); err != nil {
		t.Errorf("Expected valid encoding, got: %v", err)
	}
	for i, m := range enc.AttentionMask {
		if m != 1 {
			t.Errorf("Expected mask 1 at position %d, got %d", i, m)
		}
	}
}

func TestWhitespaceEncodeSpecialTokens(t *testing.T) {
	tok := NewWhitespace()

	enc, err := tok.Encode("hello world", true)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if enc.Len() != 4 {
		t.Fatalf("Expected 4 tokens (cls + 2 + sep), got %d", enc.Len())
	}
	if enc.InputIDs[0] != defaultClsID {
		t.Errorf("Expected leading CLS id %d, got %d", defaultClsID, enc.InputIDs[0])
	}
	if enc.InputIDs[enc.Len()-1] != tok.SepID() {
		t.Errorf("Expected trailing SEP id %d, got %d", tok.SepID(), enc.InputIDs[enc.Len()-1])
	}
}

func TestWhitespaceDeterministic(t *testing.T) {
	tok := NewWhitespace()

	a, _ := tok.Encode("Deep Learning", false)
	b, _ := tok.Encode("deep learning", false)

	if a.Len() != b.Len() {
		t.Fatalf("Expected equal lengths, got %d and %d", a.Len(), b.Len())
	}
	for i := range a.InputIDs {
		if a.InputIDs[i] != b.InputIDs[i] {
			t.Errorf("Expected case-insensitive ids at %d: %d != %d", i, a.InputIDs[i], b.InputIDs[i])
		}
	}
}

func TestEncodingSlice(t *testing.T) {
	enc := Encoding{
		InputIDs:      []int{1, 2, 3, 4, 5},
		AttentionMask: []int{1, 1, 1, 1, 1},
		TokenTypeIDs:  []int{0, 0, 0, 0, 0},
	}

	tests := []struct {
		name       string
		start, end int
		wantLen    int
		wantFirst  int
	}{
		{name: "middle", start: 1, end: 3, wantLen: 2, wantFirst: 2},
		{name: "clamped end", start: 3, end: 10, wantLen: 2, wantFirst: 4},
		{name: "clamped start", start: -2, end: 2, wantLen: 2, wantFirst: 1},
		{name: "empty", start: 4, end: 4, wantLen: 0},
		{name: "inverted", start: 5, end: 2, wantLen: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := enc.Slice(tt.start, tt.end)
			if got.Len() != tt.wantLen {
				t.Fatalf("Expected length %d, got %d", tt.wantLen, got.Len())
			}
			if tt.wantLen > 0 && got.InputIDs[0] != tt.wantFirst {
				t.Errorf("Expected first id %d, got %d", tt.wantFirst, got.InputIDs[0])
			}
			if err := Validate(got); err != nil {
				t.Errorf("Expected valid slice, got: %v", err)
			}
		})
	}
}

func TestEncodingSliceIsACopy(t *testing.T) {
	enc := Encoding{
		InputIDs:      []int{1, 2, 3},
		AttentionMask: []int{1, 1, 1},
	}
	s := enc.Slice(0, 2)
	s.InputIDs[0] = 99

	if enc.InputIDs[0] != 1 {
		t.Errorf("Slice mutated the original encoding: %v", enc.InputIDs)
	}
}

func TestEncodingTruncate(t *testing.T) {
	enc := Encoding{
		InputIDs:      []int{1, 2, 3, 4},
		AttentionMask: []int{1, 1, 1, 1},
	}

	if got := enc.Truncate(2); got.Len() != 2 {
		t.Errorf("Expected 2 tokens after truncate, got %d", got.Len())
	}
	if got := enc.Truncate(10); got.Len() != 4 {
		t.Errorf("Expected truncate beyond length to be a no-op, got %d tokens", got.Len())
	}
	if got := enc.Truncate(-1); got.Len() != 4 {
		t.Errorf("Expected negative limit to be a no-op, got %d tokens", got.Len())
	}
}

func TestPad(t *testing.T) {
	encs := []Encoding{
		{InputIDs: []int{1, 2, 3}, AttentionMask: []int{1, 1, 1}, TokenTypeIDs: []int{0, 0, 1}},
		{InputIDs: []int{4}, AttentionMask: []int{1}, TokenTypeIDs: []int{0}},
	}

	batch := Pad(encs, 0)

	if batch.Size() != 2 {
		t.Fatalf("Expected batch size 2, got %d", batch.Size())
	}
	if len(batch.InputIDs[1]) != 3 {
		t.Fatalf("Expected padded length 3, got %d", len(batch.InputIDs[1]))
	}
	if batch.InputIDs[1][1] != 0 || batch.InputIDs[1][2] != 0 {
		t.Errorf("Expected pad id 0 in padded positions, got %v", batch.InputIDs[1])
	}
	if batch.AttentionMask[1][1] != 0 {
		t.Errorf("Expected zero mask in padded positions, got %v", batch.AttentionMask[1])
	}
	if batch.TokenTypeIDs == nil {
		t.Fatal("Expected token type ids when all encodings track them")
	}
}

func TestPadWithoutTokenTypes(t *testing.T) {
	encs := []Encoding{
		{InputIDs: []int{1}, AttentionMask: []int{1}, TokenTypeIDs: []int{0}},
		{InputIDs: []int{2}, AttentionMask: []int{1}}, // no segment ids
	}

	batch := Pad(encs, 0)
	if batch.TokenTypeIDs != nil {
		t.Error("Expected no token type ids when one encoding lacks them")
	}
}

func TestValidate(t *testing.T) {
	bad := Encoding{InputIDs: []int{1, 2}, AttentionMask: []int{1}}
	if err := Validate(bad); err == nil {
		t.Error("Expected error for mismatched mask length")
	}

	badTypes := Encoding{InputIDs: []int{1}, AttentionMask: []int{1}, TokenTypeIDs: []int{0, 0}}
	if err := Validate(badTypes); err == nil {
		t.Error("Expected error for mismatched token type length")
	}
}

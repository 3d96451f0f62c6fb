package board

import (
	"errors"
	"slices"
	"testing"
)

func TestMoveEncoding(t *testing.T) {
	tests := []struct {
		text  string
		from  Square
		to    Square
		promo PieceType
	}{
		{"e2e4", E2, E4, NoPieceType},
		{"a1h8", A1, H8, NoPieceType},
		{"h8a1", H8, A1, NoPieceType},
		{"e7e8q", E7, E8, Queen},
		{"b2a1n", B2, A1, Knight},
		{"g7g8r", G7, G8, Rook},
		{"c7d8b", C7, D8, Bishop},
	}

	for _, tc := range tests {
		m, err := ParseMove(tc.text)
		if err != nil {
			t.Fatalf("ParseMove(%q): %v", tc.text, err)
		}
		if m.From() != tc.from || m.To() != tc.to || m.Promotion() != tc.promo {
			t.Errorf("ParseMove(%q) = (%s, %s, %s), want (%s, %s, %s)",
				tc.text, m.From(), m.To(), m.Promotion(), tc.from, tc.to, tc.promo)
		}
		if m.String() != tc.text {
			t.Errorf("String() = %q, want %q", m.String(), tc.text)
		}
	}
}

func TestParseMoveErrors(t *testing.T) {
	for _, s := range []string{"", "e2", "e2e", "e2e4qq", "i2e4", "e9e4", "e7e8k", "e7e8p", "e7e8Q", "e7e8x"} {
		_, err := ParseMove(s)
		var moveErr *ParseMoveError
		if !errors.As(err, &moveErr) {
			t.Errorf("ParseMove(%q) error = %v, want *ParseMoveError", s, err)
		}
	}

	_, err := ParseMove("z1e4")
	var sqErr *ParseSquareError
	if !errors.As(err, &sqErr) {
		t.Errorf("ParseMove(z1e4) does not wrap a *ParseSquareError: %v", err)
	}
}

func TestMoveOrdering(t *testing.T) {
	// Integer order is (from, to, promotion) with no promotion first.
	ordered := []Move{
		NewMove(A1, B1),
		NewMove(A1, H8),
		NewMove(B7, A8),
		NewPromotion(B7, A8, Knight),
		NewPromotion(B7, A8, Bishop),
		NewPromotion(B7, A8, Rook),
		NewPromotion(B7, A8, Queen),
		NewMove(B7, B8),
		NewMove(H8, A1),
	}
	if !slices.IsSorted(ordered) {
		t.Errorf("moves not in (from, to, promotion) order: %v", ordered)
	}

	if NullMove.String() != "a1a1" {
		t.Errorf("NullMove.String() = %q, want a1a1", NullMove.String())
	}
	b := mustParseFEN(t, kiwipeteFEN)
	for _, m := range Default().LegalMoves(&b).Slice() {
		if m == NullMove {
			t.Error("generator produced NullMove")
		}
	}
}

func TestMoveList(t *testing.T) {
	ml := NewMoveList()
	ml.Add(NewMove(E2, E4))
	ml.Add(NewMove(D2, D4))
	if ml.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", ml.Len())
	}
	ml.Swap(0, 1)
	if ml.Get(0) != NewMove(D2, D4) {
		t.Errorf("Get(0) = %s after swap, want d2d4", ml.Get(0))
	}
	if !ml.Contains(NewMove(E2, E4)) || ml.Contains(NewMove(E2, E3)) {
		t.Error("Contains gives wrong answers")
	}
	ml.Clear()
	if ml.Len() != 0 || len(ml.Slice()) != 0 {
		t.Error("Clear left moves behind")
	}
}

package board

import (
	"errors"
	"testing"

	"github.com/notnil/chess"
)

func TestSAN(t *testing.T) {
	mg := Default()

	tests := []struct {
		fen  string
		move string
		san  string
	}{
		{StartFEN, "e2e4", "e4"},
		{StartFEN, "g1f3", "Nf3"},
		{"r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", "e1g1", "O-O"},
		{"r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", "e1c1", "O-O-O"},
		{"r3k3/1P6/8/8/8/8/8/4K3 w - - 0 1", "b7a8q", "bxa8=Q+"},
		{"r3k3/1P6/8/8/8/8/8/4K3 w - - 0 1", "b7b8n", "b8=N"},
		{"rnbqkbnr/ppp2ppp/8/3Pp3/8/8/PPPP1PPP/RNBQKBNR w KQkq e6 0 3", "d5e6", "dxe6"},
		{"6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1", "a1a8", "Ra8#"},
		// Knights on b1 and f1 both reach d2: file disambiguation.
		{"4k3/8/8/8/8/8/8/1N2KN2 w - - 0 1", "b1d2", "Nbd2"},
		// Rooks on a1 and a5 both reach a3: rank disambiguation.
		{"4k3/8/8/R7/8/8/8/R3K3 w - - 0 1", "a1a3", "R1a3"},
	}

	for _, tc := range tests {
		b := mustParseFEN(t, tc.fen)
		m := mustParseMove(t, tc.move)
		if got := mg.SAN(&b, m); got != tc.san {
			t.Errorf("SAN(%s) on %s = %q, want %q", tc.move, tc.fen, got, tc.san)
		}
		parsed, err := mg.ParseSAN(&b, tc.san)
		if err != nil {
			t.Errorf("ParseSAN(%q): %v", tc.san, err)
			continue
		}
		if parsed != m {
			t.Errorf("ParseSAN(%q) = %s, want %s", tc.san, parsed, m)
		}
	}
}

func TestParseSANErrors(t *testing.T) {
	mg := Default()
	b := NewBoard()
	for _, s := range []string{"", "e5", "Nf4", "O-O", "Kxe2", "Pe4", "e8=K", "Zf3"} {
		_, err := mg.ParseSAN(&b, s)
		var sanErr *SANError
		if !errors.As(err, &sanErr) {
			t.Errorf("ParseSAN(%q) error = %v, want *SANError", s, err)
		}
	}
}

// TestSANMatchesNotnil compares every legal move's SAN with an independent
// implementation.
func TestSANMatchesNotnil(t *testing.T) {
	mg := Default()
	fens := []string{
		StartFEN,
		kiwipeteFEN,
		position4FEN,
		position5FEN,
		"4k3/8/8/R7/8/8/8/R3K3 w - - 0 1",
		"4k3/8/8/8/8/8/8/1N2KN2 w - - 0 1",
		"r3k3/1P6/8/8/8/8/8/4K3 w - - 0 1",
	}

	for _, fen := range fens {
		opt, err := chess.FEN(fen)
		if err != nil {
			t.Fatalf("chess.FEN(%q): %v", fen, err)
		}
		pos := chess.NewGame(opt).Position()

		want := make(map[string]string)
		for _, m := range pos.ValidMoves() {
			want[chess.UCINotation{}.Encode(pos, m)] = chess.AlgebraicNotation{}.Encode(pos, m)
		}

		b := mustParseFEN(t, fen)
		moves := mg.LegalMoves(&b)
		if moves.Len() != len(want) {
			t.Errorf("%s: %d legal moves, notnil has %d", fen, moves.Len(), len(want))
		}
		for _, m := range moves.Slice() {
			san, ok := want[m.String()]
			if !ok {
				t.Errorf("%s: %s not legal according to notnil", fen, m)
				continue
			}
			if got := mg.SAN(&b, m); got != san {
				t.Errorf("%s: SAN(%s) = %q, notnil %q", fen, m, got, san)
			}
		}
	}
}

func TestMovesToSAN(t *testing.T) {
	mg := Default()
	var line []Move
	for _, s := range []string{"e2e4", "e7e5", "g1f3", "b8c6", "d2d4", "e5d4", "f3d4"} {
		line = append(line, mustParseMove(t, s))
	}
	got := mg.MovesToSAN(NewBoard(), line)
	want := []string{"e4", "e5", "Nf3", "Nc6", "d4", "exd4", "Nxd4"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("MovesToSAN[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

package board

import (
	"errors"
	"testing"
)

func mustParseMove(t testing.TB, s string) Move {
	t.Helper()
	m, err := ParseMove(s)
	if err != nil {
		t.Fatalf("ParseMove(%q): %v", s, err)
	}
	return m
}

// walkMakeUnmake makes and unmakes every legal move of every node to depth,
// checking that each unmake restores the board exactly.
func walkMakeUnmake(t *testing.T, mg *MoveGen, b *Board, depth int) {
	if depth == 0 || t.Failed() {
		return
	}
	for _, m := range mg.LegalMoves(b).Slice() {
		before := *b
		md, err := b.MakeMove(m)
		if err != nil {
			t.Fatalf("MakeMove(%s) on %s: %v", m, before.FEN(), err)
		}
		walkMakeUnmake(t, mg, b, depth-1)
		if err := b.UnmakeMove(md); err != nil {
			t.Fatalf("UnmakeMove(%s) on %s: %v", m, before.FEN(), err)
		}
		if *b != before {
			t.Fatalf("make/unmake %s changed %s into %s", m, before.FEN(), b.FEN())
		}
	}
}

func TestMakeUnmakeIdentity(t *testing.T) {
	mg := Default()

	startDepth := 4
	if testing.Short() {
		startDepth = 3
	}

	tests := []struct {
		name  string
		fen   string
		depth int
	}{
		{"start", StartFEN, startDepth},
		{"kiwipete", kiwipeteFEN, 3},
		{"position3", position3FEN, 4},
		{"position4", position4FEN, 3},
		{"position5", position5FEN, 3},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := mustParseFEN(t, tc.fen)
			walkMakeUnmake(t, mg, &b, tc.depth)
		})
	}
}

func TestMakeMoveCounters(t *testing.T) {
	b := NewBoard()

	steps := []struct {
		move string
		fen  string
	}{
		{"e2e4", "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1"},
		{"e7e5", "rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq e6 0 2"},
		{"g1f3", "rnbqkbnr/pppp1ppp/8/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R b KQkq - 1 2"},
		{"b8c6", "r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3"},
		{"f1c4", "r1bqkbnr/pppp1ppp/2n5/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R b KQkq - 3 3"},
		{"g8f6", "r1bqkb1r/pppp1ppp/2n2n2/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R w KQkq - 4 4"},
		{"e1g1", "r1bqkb1r/pppp1ppp/2n2n2/4p3/2B1P3/5N2/PPPP1PPP/RNBQ1RK1 b kq - 5 4"},
		{"f6e4", "r1bqkb1r/pppp1ppp/2n5/4p3/2B1n3/5N2/PPPP1PPP/RNBQ1RK1 w kq - 0 5"},
	}

	for _, step := range steps {
		if _, err := b.MakeMove(mustParseMove(t, step.move)); err != nil {
			t.Fatalf("MakeMove(%s): %v", step.move, err)
		}
		if got := b.FEN(); got != step.fen {
			t.Errorf("after %s FEN = %q, want %q", step.move, got, step.fen)
		}
	}
}

func TestScotchGameReplay(t *testing.T) {
	mg := Default()
	b := NewBoard()
	start := b

	line := []string{"e2e4", "e7e5", "g1f3", "b8c6", "d2d4", "e5d4", "f3d4"}
	var history []MoveData
	for _, s := range line {
		m, err := mg.ParseLegalMove(&b, s)
		if err != nil {
			t.Fatalf("ParseLegalMove(%s): %v", s, err)
		}
		md, err := b.MakeMove(m)
		if err != nil {
			t.Fatalf("MakeMove(%s): %v", s, err)
		}
		history = append(history, md)
	}

	const want = "r1bqkbnr/pppp1ppp/2n5/8/3NP3/8/PPP2PPP/RNBQKB1R b KQkq - 0 4"
	if got := b.FEN(); got != want {
		t.Errorf("FEN = %q, want %q", got, want)
	}
	if reparsed := mustParseFEN(t, want); reparsed != b {
		t.Error("played position differs from the parsed one")
	}

	for i := len(history) - 1; i >= 0; i-- {
		if err := b.UnmakeMove(history[i]); err != nil {
			t.Fatalf("UnmakeMove(%s): %v", history[i].Move, err)
		}
	}
	if b != start {
		t.Errorf("unmaking the line gave %q, want the start position", b.FEN())
	}
}

func TestCornerRightsRule(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		move string
		want CastlingRights
	}{
		{"rook takes rook", "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", "h1h8", WhiteQueenSide | BlackQueenSide},
		{"bishop takes a1 rook", "r3k2r/8/8/8/8/8/1b6/R3K2R b KQkq - 0 1", "b2a1", WhiteKingSide | BlackKingSide | BlackQueenSide},
		{"rook leaves a8", "r3k2r/8/8/8/8/8/8/R3K2R b KQkq - 0 1", "a8b8", WhiteKingSide | WhiteQueenSide | BlackKingSide},
		{"king moves", "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", "e1f1", BlackKingSide | BlackQueenSide},
		{"rook leaves a1", "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", "a1a2", WhiteKingSide | BlackKingSide | BlackQueenSide},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := mustParseFEN(t, tc.fen)
			before := b
			md, err := b.MakeMove(mustParseMove(t, tc.move))
			if err != nil {
				t.Fatalf("MakeMove: %v", err)
			}
			if got := b.Flags().Castling(); got != tc.want {
				t.Errorf("castling after %s = %s, want %s", tc.move, got, tc.want)
			}
			if err := b.UnmakeMove(md); err != nil {
				t.Fatalf("UnmakeMove: %v", err)
			}
			if b != before {
				t.Error("unmake did not restore castling rights")
			}
		})
	}
}

func TestMakeMoveErrors(t *testing.T) {
	b := NewBoard()
	before := b

	tests := []struct {
		move string
		sq   Square
	}{
		{"e4e5", E4}, // empty square
		{"e7e5", E7}, // Black piece with White to move
	}
	for _, tc := range tests {
		_, err := b.MakeMove(mustParseMove(t, tc.move))
		var mmErr *MakeMoveError
		if !errors.As(err, &mmErr) {
			t.Errorf("MakeMove(%s) error = %v, want *MakeMoveError", tc.move, err)
			continue
		}
		if mmErr.Square != tc.sq {
			t.Errorf("MakeMove(%s) error square = %s, want %s", tc.move, mmErr.Square, tc.sq)
		}
		if b != before {
			t.Errorf("failed MakeMove(%s) modified the board", tc.move)
		}
	}
}

func TestUnmakeMoveError(t *testing.T) {
	b := NewBoard()
	before := b

	err := b.UnmakeMove(MoveData{Move: mustParseMove(t, "e2e4"), Captured: NoPiece})
	var umErr *UnmakeMoveError
	if !errors.As(err, &umErr) {
		t.Fatalf("UnmakeMove error = %v, want *UnmakeMoveError", err)
	}
	if umErr.Error() != "no piece at square e4" {
		t.Errorf("Error() = %q", umErr.Error())
	}
	if b != before {
		t.Error("failed UnmakeMove modified the board")
	}
}

package engine

import (
	"context"
	"testing"
	"time"

	"github.com/hailam/chress/internal/board"
)

func mustParseFEN(t *testing.T, fen string) board.Board {
	t.Helper()
	b, err := board.ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	return b
}

func TestSearchBasic(t *testing.T) {
	eng := NewEngine()
	b := board.NewBoard()

	var depths []int
	eng.OnInfo = func(info SearchInfo) {
		depths = append(depths, info.Depth)
	}

	move, info := eng.Search(context.Background(), b, SearchLimits{Depth: 3})
	if move == board.NullMove {
		t.Fatal("Search returned NullMove for starting position")
	}
	if !board.Default().LegalMoves(&b).Contains(move) {
		t.Errorf("Search returned illegal move %s", move)
	}
	if info.Depth != 3 || len(depths) != 3 {
		t.Errorf("completed depth %d with %d info callbacks, want 3 and 3", info.Depth, len(depths))
	}
	if len(info.PV) == 0 || info.PV[0] != move {
		t.Errorf("PV %v does not start with best move %s", info.PV, move)
	}
	t.Logf("Best move: %s", move.String())
}

func TestFindsMate(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		want string
		mate int
	}{
		{"back rank", "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1", "a1a8", 1},
		{"black back rank", "r5k1/8/8/8/8/8/5PPP/6K1 b - - 0 1", "a8a1", 1},
		{"queen and king", "7k/8/5K2/8/8/8/8/6Q1 w - - 0 1", "g1g7", 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := mustParseFEN(t, tc.fen)
			move, info := NewEngine().Search(context.Background(), b, SearchLimits{Depth: 4})
			if move.String() != tc.want {
				t.Errorf("best move %s, want %s", move, tc.want)
			}
			if !IsMateScore(info.Score) || MateIn(info.Score) != tc.mate {
				t.Errorf("score %d (%s), want mate in %d", info.Score, ScoreToString(info.Score), tc.mate)
			}
		})
	}
}

func TestTerminalRoot(t *testing.T) {
	eng := NewEngine()

	mated := mustParseFEN(t, "R6k/6pp/8/8/8/8/8/K7 b - - 0 1")
	move, info := eng.Search(context.Background(), mated, SearchLimits{Depth: 2})
	if move != board.NullMove {
		t.Errorf("mated side got move %s", move)
	}
	if info.Score != -MateScore {
		t.Errorf("mated score = %d, want %d", info.Score, -MateScore)
	}

	stale := mustParseFEN(t, "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	move, info = eng.Search(context.Background(), stale, SearchLimits{Depth: 2})
	if move != board.NullMove || info.Score != 0 {
		t.Errorf("stalemate gave %s with score %d", move, info.Score)
	}
}

func TestCapturesHangingQueen(t *testing.T) {
	b := mustParseFEN(t, "4k3/8/8/3q4/8/8/8/3RK3 w - - 0 1")
	move, _ := NewEngine().Search(context.Background(), b, SearchLimits{Depth: 2})
	if move.String() != "d1d5" {
		t.Errorf("best move %s, want d1d5", move)
	}
}

func TestSearchStops(t *testing.T) {
	b := board.NewBoard()

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		move, _ := NewEngine().Search(ctx, b, SearchLimits{Infinite: true})
		if !board.Default().LegalMoves(&b).Contains(move) {
			t.Errorf("cancelled search returned %s, want a legal move", move)
		}
	})

	t.Run("stop", func(t *testing.T) {
		eng := NewEngine()
		done := make(chan board.Move)
		go func() {
			move, _ := eng.Search(context.Background(), b, SearchLimits{Infinite: true})
			done <- move
		}()
		time.Sleep(50 * time.Millisecond)
		eng.Stop()
		select {
		case move := <-done:
			if move == board.NullMove {
				t.Error("stopped search returned NullMove")
			}
		case <-time.After(5 * time.Second):
			t.Fatal("search did not stop")
		}
	})

	t.Run("move time", func(t *testing.T) {
		start := time.Now()
		NewEngine().Search(context.Background(), b, SearchLimits{MoveTime: 100 * time.Millisecond})
		if elapsed := time.Since(start); elapsed > 2*time.Second {
			t.Errorf("100ms search took %v", elapsed)
		}
	})

	t.Run("node limit", func(t *testing.T) {
		eng := NewEngine()
		move, info := eng.Search(context.Background(), b, SearchLimits{Nodes: 5000})
		if move == board.NullMove {
			t.Error("node-limited search returned NullMove")
		}
		if info.Nodes > 5000 {
			t.Errorf("searched %d nodes, limit 5000", info.Nodes)
		}
	})
}

func TestEvaluateSymmetry(t *testing.T) {
	tests := []struct {
		fen, mirrored string
	}{
		{board.StartFEN, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR b KQkq - 0 1"},
		{
			"r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3",
			"rnbqkb1r/pppp1ppp/5n2/4p3/4P3/2N5/PPPP1PPP/R1BQKBNR b KQkq - 2 3",
		},
		{"4k3/8/8/8/8/8/4P3/4K3 w - - 0 1", "4k3/4p3/8/8/8/8/8/4K3 b - - 0 1"},
	}

	for _, tc := range tests {
		a := mustParseFEN(t, tc.fen)
		b := mustParseFEN(t, tc.mirrored)
		if ea, eb := Evaluate(&a), Evaluate(&b); ea != eb {
			t.Errorf("Evaluate(%s) = %d, mirrored %d", tc.fen, ea, eb)
		}
	}

	start := board.NewBoard()
	if e := Evaluate(&start); e != 0 {
		t.Errorf("start position evaluates to %d, want 0", e)
	}

	up := mustParseFEN(t, "4k3/8/8/8/8/8/8/3QK3 w - - 0 1")
	down := mustParseFEN(t, "4k3/8/8/8/8/8/8/3QK3 b - - 0 1")
	if Evaluate(&up) <= 0 || Evaluate(&down) >= 0 {
		t.Errorf("queen up: %d to move, %d for the opponent", Evaluate(&up), Evaluate(&down))
	}
}

func TestScoreToString(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{0, "0.00"},
		{105, "1.05"},
		{-250, "-2.50"},
		{MateScore - 1, "Mate in 1"},
		{MateScore - 3, "Mate in 2"},
		{-MateScore + 2, "Mated in 1"},
	}
	for _, tc := range tests {
		if got := ScoreToString(tc.score); got != tc.want {
			t.Errorf("ScoreToString(%d) = %q, want %q", tc.score, got, tc.want)
		}
	}
}

func TestTimeManager(t *testing.T) {
	tm := NewTimeManager()

	tm.Init(SearchLimits{Depth: 5}, board.White, 0)
	if tm.Limited() || !tm.Deadline().IsZero() {
		t.Error("depth-only search has a deadline")
	}

	tm.Init(SearchLimits{MoveTime: time.Second}, board.White, 0)
	if tm.OptimumTime() != time.Second || tm.MaximumTime() != time.Second {
		t.Errorf("movetime gave optimum %v, maximum %v", tm.OptimumTime(), tm.MaximumTime())
	}

	limits := SearchLimits{
		Time: [2]time.Duration{time.Minute, 10 * time.Second},
		Inc:  [2]time.Duration{time.Second, 0},
	}
	tm.Init(limits, board.Black, 41)
	if tm.MaximumTime() > 10*time.Second*95/100 {
		t.Errorf("maximum %v exceeds the safety margin", tm.MaximumTime())
	}
	if tm.OptimumTime() > tm.MaximumTime() {
		t.Errorf("optimum %v above maximum %v", tm.OptimumTime(), tm.MaximumTime())
	}
	if !tm.CanStartIteration() {
		t.Error("fresh clock refuses the first iteration")
	}
}

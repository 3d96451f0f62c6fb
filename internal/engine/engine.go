package engine

import (
	"context"
	"time"

	"github.com/hailam/chress/internal/board"
)

// SearchInfo contains information about the current search.
type SearchInfo struct {
	Depth int
	Score int
	Nodes uint64
	Time  time.Duration
	PV    []board.Move
}

// SearchLimits specifies constraints on the search. Zero values mean no
// limit; with no limits at all the search runs until stopped or MaxPly.
type SearchLimits struct {
	Depth     int              // Maximum depth (0 = no limit)
	Nodes     uint64           // Maximum nodes (0 = no limit)
	MoveTime  time.Duration    // Time for this move (0 = no limit)
	Infinite  bool             // Search until stopped
	Time      [2]time.Duration // remaining clock per color
	Inc       [2]time.Duration // increment per color
	MovesToGo int              // moves until next time control (0 = sudden death)
}

// Engine is the chess AI engine.
type Engine struct {
	mg       *board.MoveGen
	searcher *Searcher
	tm       *TimeManager

	// Callbacks
	OnInfo func(SearchInfo)
}

// NewEngine creates an engine on the shared move generator.
func NewEngine() *Engine {
	mg := board.Default()
	return &Engine{
		mg:       mg,
		searcher: NewSearcher(mg),
		tm:       NewTimeManager(),
	}
}

// Search finds the best move for b within limits. It returns the best move
// of the last completed iteration together with that iteration's info. When
// no iteration completes the first legal move is returned, and NullMove
// when there is none. Cancelling ctx or calling Stop ends the search early.
func (e *Engine) Search(ctx context.Context, b board.Board, limits SearchLimits) (board.Move, SearchInfo) {
	us := b.SideToMove()
	e.tm.Init(limits, us, 2*(b.Fullmoves()-1)+int(us))
	e.searcher.Reset(e.tm.Deadline(), limits.Nodes)

	release := context.AfterFunc(ctx, e.searcher.Stop)
	defer release()

	maxDepth := MaxPly - 1
	if limits.Depth > 0 && limits.Depth < maxDepth {
		maxDepth = limits.Depth
	}

	var bestMove board.Move
	var info SearchInfo

	// Iterative deepening
	for depth := 1; depth <= maxDepth; depth++ {
		if depth > 1 && !e.tm.CanStartIteration() {
			break
		}

		move, score := e.searcher.Search(b, depth)
		if e.searcher.IsStopped() {
			break
		}

		bestMove = move
		info = SearchInfo{
			Depth: depth,
			Score: score,
			Nodes: e.searcher.Nodes(),
			Time:  e.tm.Elapsed(),
			PV:    e.searcher.GetPV(),
		}
		if e.OnInfo != nil {
			e.OnInfo(info)
		}

		if move == board.NullMove {
			break // no legal moves
		}
		// Early termination: found mate
		if !limits.Infinite && IsMateScore(score) {
			break
		}
	}

	if bestMove == board.NullMove {
		if moves := e.mg.LegalMoves(&b); moves.Len() > 0 {
			bestMove = moves.Get(0)
		}
	}
	if info.Nodes == 0 {
		info.Nodes = e.searcher.Nodes()
		info.Time = e.tm.Elapsed()
	}
	return bestMove, info
}

// Stop stops the current search.
func (e *Engine) Stop() {
	e.searcher.Stop()
}

// Clear forgets killer and history tables between games.
func (e *Engine) Clear() {
	e.searcher.orderer = NewMoveOrderer()
}

// Evaluate returns the static evaluation of a position.
func (e *Engine) Evaluate(b *board.Board) int {
	return Evaluate(b)
}

// IsMateScore reports whether score encodes a forced mate.
func IsMateScore(score int) bool {
	return score > MateScore-MaxPly || score < -MateScore+MaxPly
}

// MateIn converts a mate score to moves until mate, negative when the side
// to move is being mated.
func MateIn(score int) int {
	if score > 0 {
		return (MateScore - score + 1) / 2
	}
	return -(MateScore + score) / 2
}

// ScoreToString converts a score to a human-readable string.
func ScoreToString(score int) string {
	if IsMateScore(score) {
		if n := MateIn(score); n > 0 {
			return "Mate in " + itoa(n)
		}
		return "Mated in " + itoa(-MateIn(score))
	}

	// Convert centipawns to pawns
	sign := ""
	if score < 0 {
		sign = "-"
		score = -score
	}
	pawns := score / 100
	centipawns := score % 100
	pad := ""
	if centipawns < 10 {
		pad = "0"
	}

	return sign + itoa(pawns) + "." + pad + itoa(centipawns)
}

// Simple integer to string (avoid fmt import)
func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	if n < 0 {
		return "-" + itoa(-n)
	}
	s := ""
	for n > 0 {
		s = string('0'+byte(n%10)) + s
		n /= 10
	}
	return s
}

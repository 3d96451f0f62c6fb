package engine

import (
	"github.com/hailam/chress/internal/board"
)

// Move ordering priorities
const (
	PVMoveScore     = 10000000 // previous iteration's best move
	GoodCaptureBase = 1000000  // Base score for captures
	PromotionBase   = 950000
	KillerScore1    = 900000 // First killer move
	KillerScore2    = 800000 // Second killer move
)

// MVV-LVA (Most Valuable Victim - Least Valuable Attacker) scores
// Higher score = search first
var mvvLva = [6][6]int{
	//       P    N    B    R    Q    K  (attacker)
	/* P */ {15, 14, 14, 13, 12, 11}, // Pawn victim
	/* N */ {25, 24, 24, 23, 22, 21}, // Knight victim
	/* B */ {35, 34, 34, 33, 32, 31}, // Bishop victim
	/* R */ {45, 44, 44, 43, 42, 41}, // Rook victim
	/* Q */ {55, 54, 54, 53, 52, 51}, // Queen victim
	/* K */ {0, 0, 0, 0, 0, 0}, // King can't be captured
}

// MoveOrderer handles move ordering for the search.
type MoveOrderer struct {
	// Killer moves (quiet moves that caused beta cutoffs)
	killers [MaxPly][2]board.Move

	// History heuristic (indexed by [from][to])
	history [64][64]int
}

// NewMoveOrderer creates a new move orderer.
func NewMoveOrderer() *MoveOrderer {
	return &MoveOrderer{}
}

// Clear resets killers and ages the history table.
func (mo *MoveOrderer) Clear() {
	for i := range mo.killers {
		mo.killers[i][0] = board.NullMove
		mo.killers[i][1] = board.NullMove
	}
	for i := range mo.history {
		for j := range mo.history[i] {
			mo.history[i][j] /= 2
		}
	}
}

// ScoreMoves fills scores with the ordering score of each move.
func (mo *MoveOrderer) ScoreMoves(b *board.Board, moves *board.MoveList, ply int, pvMove board.Move, scores []int) []int {
	scores = scores[:0]
	for _, m := range moves.Slice() {
		scores = append(scores, mo.scoreMove(b, m, ply, pvMove))
	}
	return scores
}

// scoreMove returns the ordering score for a single move.
func (mo *MoveOrderer) scoreMove(b *board.Board, m board.Move, ply int, pvMove board.Move) int {
	if m == pvMove {
		return PVMoveScore
	}

	from, to := m.From(), m.To()

	if b.IsCapture(m) {
		attacker := b.PieceAt(from).Type()
		victim := board.Pawn // en passant
		if p := b.PieceAt(to); p != board.NoPiece {
			victim = p.Type()
		}
		score := GoodCaptureBase + mvvLva[victim][attacker]*1000
		if m.IsPromotion() {
			score += pieceValues[m.Promotion()]
		}
		return score
	}

	if m.IsPromotion() {
		return PromotionBase + pieceValues[m.Promotion()]
	}

	if ply < MaxPly {
		if m == mo.killers[ply][0] {
			return KillerScore1
		}
		if m == mo.killers[ply][1] {
			return KillerScore2
		}
	}

	return mo.history[from][to]
}

// PickMove selects the best remaining move and moves it to position index.
// This allows lazy move sorting (only sort as much as needed).
func PickMove(moves *board.MoveList, scores []int, index int) {
	best := index
	for j := index + 1; j < moves.Len(); j++ {
		if scores[j] > scores[best] {
			best = j
		}
	}
	if best != index {
		moves.Swap(index, best)
		scores[index], scores[best] = scores[best], scores[index]
	}
}

// UpdateKillers adds a killer move at the given ply.
func (mo *MoveOrderer) UpdateKillers(m board.Move, ply int) {
	if ply >= MaxPly || mo.killers[ply][0] == m {
		return
	}
	mo.killers[ply][1] = mo.killers[ply][0]
	mo.killers[ply][0] = m
}

// UpdateHistory rewards a quiet move that caused a cutoff.
func (mo *MoveOrderer) UpdateHistory(m board.Move, depth int) {
	from, to := m.From(), m.To()
	mo.history[from][to] += depth * depth
	if mo.history[from][to] > 400000 {
		for i := range mo.history {
			for j := range mo.history[i] {
				mo.history[i][j] /= 2
			}
		}
	}
}

package engine

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/hailam/chress/internal/board"
)

// Search constants
const (
	Infinity  = 30000
	MateScore = 29000
	MaxPly    = 128
)

// checkInterval is how many nodes pass between clock reads.
const checkInterval = 2048

// PVTable stores the principal variation.
type PVTable struct {
	length [MaxPly]int
	moves  [MaxPly][MaxPly]board.Move
}

// Searcher performs the alpha-beta search on a single goroutine.
type Searcher struct {
	mg       *board.MoveGen
	orderer  *MoveOrderer
	pv       PVTable
	prevPV   []board.Move
	lists    [MaxPly]board.MoveList
	scores   [MaxPly][]int
	nodes    atomic.Uint64
	stopFlag atomic.Bool

	deadline  time.Time
	nodeLimit uint64
}

// NewSearcher creates a new searcher using mg for move generation.
func NewSearcher(mg *board.MoveGen) *Searcher {
	s := &Searcher{
		mg:      mg,
		orderer: NewMoveOrderer(),
	}
	for i := range s.scores {
		s.scores[i] = make([]int, 0, 64)
	}
	return s
}

// Stop signals the search to stop.
func (s *Searcher) Stop() {
	s.stopFlag.Store(true)
}

// IsStopped returns true if the search has been stopped.
func (s *Searcher) IsStopped() bool {
	return s.stopFlag.Load()
}

// Reset prepares the searcher for a new search with the given limits.
// A zero deadline or node limit means unlimited.
func (s *Searcher) Reset(deadline time.Time, nodeLimit uint64) {
	s.stopFlag.Store(false)
	s.nodes.Store(0)
	s.deadline = deadline
	s.nodeLimit = nodeLimit
	s.prevPV = nil
	s.orderer.Clear()
}

// Nodes returns the number of nodes searched.
func (s *Searcher) Nodes() uint64 {
	return s.nodes.Load()
}

// Search runs one fixed-depth iteration from b and returns the best move
// and its score. The result is meaningless if IsStopped reports true.
func (s *Searcher) Search(b board.Board, depth int) (board.Move, int) {
	score := s.negamax(&b, depth, 0, -Infinity, Infinity)
	best := board.NullMove
	if s.pv.length[0] > 0 {
		best = s.pv.moves[0][0]
	}
	s.prevPV = s.GetPV()
	return best, score
}

// GetPV returns the principal variation from the last iteration.
func (s *Searcher) GetPV() []board.Move {
	n := s.pv.length[0]
	pv := make([]board.Move, n)
	copy(pv, s.pv.moves[0][:n])
	return pv
}

// visit counts a node and reports whether the search should unwind.
func (s *Searcher) visit() bool {
	if s.stopFlag.Load() {
		return true
	}
	n := s.nodes.Add(1)
	if s.nodeLimit > 0 && n >= s.nodeLimit {
		s.stopFlag.Store(true)
		return true
	}
	if n%checkInterval == 0 && !s.deadline.IsZero() && time.Now().After(s.deadline) {
		s.stopFlag.Store(true)
		return true
	}
	return false
}

func (s *Searcher) pvMove(ply int) board.Move {
	if ply < len(s.prevPV) {
		return s.prevPV[ply]
	}
	return board.NullMove
}

func (s *Searcher) negamax(b *board.Board, depth, ply, alpha, beta int) int {
	s.pv.length[ply] = ply
	if s.visit() {
		return 0
	}

	if ply > 0 && b.Halfmoves() >= 100 {
		return 0
	}

	if depth <= 0 {
		return s.quiescence(b, ply, alpha, beta)
	}

	ml := &s.lists[ply]
	ml.Clear()
	s.mg.GenerateLegal(b, ml)

	if ml.Len() == 0 {
		if s.mg.InCheck(b) {
			return -MateScore + ply
		}
		return 0
	}
	if ply >= MaxPly-1 {
		return Evaluate(b)
	}

	scores := s.orderer.ScoreMoves(b, ml, ply, s.pvMove(ply), s.scores[ply])
	s.scores[ply] = scores

	for i := 0; i < ml.Len(); i++ {
		PickMove(ml, scores, i)
		m := ml.Get(i)
		quiet := !b.IsCapture(m) && !m.IsPromotion()

		md := makeMove(b, m)
		score := -s.negamax(b, depth-1, ply+1, -beta, -alpha)
		unmakeMove(b, md)

		if s.stopFlag.Load() {
			return 0
		}

		if score > alpha {
			alpha = score
			s.updatePV(ply, m)
			if alpha >= beta {
				if quiet {
					s.orderer.UpdateKillers(m, ply)
					s.orderer.UpdateHistory(m, depth)
				}
				return beta
			}
		}
	}

	return alpha
}

// quiescence searches captures and promotions until the position is quiet.
func (s *Searcher) quiescence(b *board.Board, ply, alpha, beta int) int {
	standPat := Evaluate(b)
	if ply >= MaxPly-1 {
		return standPat
	}
	if standPat >= beta {
		return beta
	}
	if standPat > alpha {
		alpha = standPat
	}

	ml := &s.lists[ply]
	ml.Clear()
	s.mg.GenerateLegal(b, ml)

	scores := s.orderer.ScoreMoves(b, ml, ply, board.NullMove, s.scores[ply])
	s.scores[ply] = scores

	for i := 0; i < ml.Len(); i++ {
		PickMove(ml, scores, i)
		if scores[i] < PromotionBase {
			break // remaining moves are quiet
		}
		m := ml.Get(i)

		md := makeMove(b, m)
		if s.visit() {
			unmakeMove(b, md)
			return 0
		}
		score := -s.quiescence(b, ply+1, -beta, -alpha)
		unmakeMove(b, md)

		if s.stopFlag.Load() {
			return 0
		}
		if score >= beta {
			return beta
		}
		if score > alpha {
			alpha = score
		}
	}

	return alpha
}

func (s *Searcher) updatePV(ply int, m board.Move) {
	s.pv.moves[ply][ply] = m
	next := ply + 1
	if next < MaxPly {
		for j := next; j < s.pv.length[next]; j++ {
			s.pv.moves[ply][j] = s.pv.moves[next][j]
		}
		s.pv.length[ply] = max(s.pv.length[next], next)
	} else {
		s.pv.length[ply] = next
	}
}

// makeMove applies a generator-produced move. An error here means the
// search and the board disagree, which cannot be recovered from.
func makeMove(b *board.Board, m board.Move) board.MoveData {
	md, err := b.MakeMove(m)
	if err != nil {
		panic(fmt.Sprintf("engine: make %s: %v", m, err))
	}
	return md
}

func unmakeMove(b *board.Board, md board.MoveData) {
	if err := b.UnmakeMove(md); err != nil {
		panic(fmt.Sprintf("engine: unmake %s: %v", md.Move, err))
	}
}

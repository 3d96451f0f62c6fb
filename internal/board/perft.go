package board

import (
	"context"
	"runtime"
	"slices"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Perft counts the leaf nodes of the legal move tree of b to the given
// depth. Depth 0 is one node; depth 1 is the number of legal moves.
func (mg *MoveGen) Perft(b Board, depth int) uint64 {
	if depth <= 0 {
		return 1
	}
	return mg.perft(&b, depth)
}

func (mg *MoveGen) perft(b *Board, depth int) uint64 {
	var ml MoveList
	mg.GenerateLegal(b, &ml)
	if depth == 1 {
		return uint64(ml.Len())
	}

	var nodes uint64
	for _, m := range ml.Slice() {
		md := mustMake(b, m)
		nodes += mg.perft(b, depth-1)
		mustUnmake(b, md)
	}
	return nodes
}

// mustMake and mustUnmake apply generated moves. A failure means the board
// and the generator disagree, which is a bug, not an input error.
func mustMake(b *Board, m Move) MoveData {
	md, err := b.MakeMove(m)
	if err != nil {
		panic("board: perft desynchronized: " + err.Error())
	}
	return md
}

func mustUnmake(b *Board, md MoveData) {
	if err := b.UnmakeMove(md); err != nil {
		panic("board: perft desynchronized: " + err.Error())
	}
}

// DivideEntry is the node count below one root move.
type DivideEntry struct {
	Move  Move
	Nodes uint64
}

// Divide returns perft(depth-1) for each legal root move, sorted by move.
func (mg *MoveGen) Divide(b Board, depth int) []DivideEntry {
	moves := mg.LegalMoves(&b)
	entries := make([]DivideEntry, 0, moves.Len())
	for _, m := range moves.Slice() {
		md := mustMake(&b, m)
		entries = append(entries, DivideEntry{Move: m, Nodes: mg.Perft(b, depth-1)})
		mustUnmake(&b, md)
	}
	SortDivide(entries)
	return entries
}

// DivideTotal sums the node counts of a divide listing.
func DivideTotal(entries []DivideEntry) uint64 {
	var total uint64
	for _, e := range entries {
		total += e.Nodes
	}
	return total
}

// SortDivide orders a divide listing by move.
func SortDivide(entries []DivideEntry) {
	slices.SortFunc(entries, func(a, b DivideEntry) int {
		return int(a.Move) - int(b.Move)
	})
}

// ParallelPerft computes the same count as Perft with one goroutine per
// root move, each on its own copy of b. Cancelling ctx stops root subtrees
// that have not started yet.
func (mg *MoveGen) ParallelPerft(ctx context.Context, b Board, depth int) (uint64, error) {
	if depth <= 1 {
		return mg.Perft(b, depth), nil
	}

	var total atomic.Uint64
	err := mg.forEachRootMove(ctx, b, func(_ int, child Board) {
		total.Add(mg.Perft(child, depth-1))
	})
	if err != nil {
		return 0, err
	}
	return total.Load(), nil
}

// ParallelDivide is Divide with the root moves searched concurrently.
func (mg *MoveGen) ParallelDivide(ctx context.Context, b Board, depth int) ([]DivideEntry, error) {
	moves := mg.LegalMoves(&b)
	entries := make([]DivideEntry, moves.Len())
	for i, m := range moves.Slice() {
		entries[i].Move = m
	}

	err := mg.forEachRootMove(ctx, b, func(i int, child Board) {
		entries[i].Nodes = mg.Perft(child, depth-1)
	})
	if err != nil {
		return nil, err
	}
	SortDivide(entries)
	return entries, nil
}

// forEachRootMove calls f concurrently with the index of each legal move of
// b, in LegalMoves order, and the position after it.
func (mg *MoveGen) forEachRootMove(ctx context.Context, b Board, f func(int, Board)) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	moves := mg.LegalMoves(&b)
	for i, m := range moves.Slice() {
		i := i
		child := b
		mustMake(&child, m)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			f(i, child)
			return nil
		})
	}
	return g.Wait()
}

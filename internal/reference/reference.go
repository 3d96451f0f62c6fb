// Package reference checks the move generator against independent
// implementations and imports games from PGN.
package reference

import (
	"fmt"
	"io"
	"slices"

	"github.com/dylhunn/dragontoothmg"

	"github.com/hailam/chress/internal/board"
)

// Divide counts perft(depth-1) below each legal move of fen using
// dragontoothmg, keyed by move text.
func Divide(fen string, depth int) map[string]uint64 {
	b := dragontoothmg.ParseFen(fen)
	counts := make(map[string]uint64)
	for _, m := range b.GenerateLegalMoves() {
		unapply := b.Apply(m)
		counts[m.String()] = perft(&b, depth-1)
		unapply()
	}
	return counts
}

// Perft counts leaf nodes of fen at depth using dragontoothmg.
func Perft(fen string, depth int) uint64 {
	b := dragontoothmg.ParseFen(fen)
	return perft(&b, depth)
}

func perft(b *dragontoothmg.Board, depth int) uint64 {
	if depth <= 0 {
		return 1
	}
	moves := b.GenerateLegalMoves()
	if depth == 1 {
		return uint64(len(moves))
	}
	var nodes uint64
	for _, m := range moves {
		unapply := b.Apply(m)
		nodes += perft(b, depth-1)
		unapply()
	}
	return nodes
}

// Row is one root move present in both divides.
type Row struct {
	Move     string
	Expected uint64
	Found    uint64
}

// Marker is '>' when Found exceeds Expected, '<' when it falls short and
// ' ' when they agree.
func (r Row) Marker() byte {
	switch {
	case r.Found > r.Expected:
		return '>'
	case r.Found < r.Expected:
		return '<'
	}
	return ' '
}

// Comparison is a divide listing checked against a reference divide.
type Comparison struct {
	Matching   []Row
	Missing    []string // reference moves we did not generate
	Unexpected []string // generated moves the reference lacks
	Found      uint64
	Expected   uint64
}

// OK reports whether both divides agree move by move.
func (c Comparison) OK() bool {
	if len(c.Missing) > 0 || len(c.Unexpected) > 0 {
		return false
	}
	for _, r := range c.Matching {
		if r.Found != r.Expected {
			return false
		}
	}
	return true
}

// Compare matches our divide entries against reference counts.
func Compare(found []board.DivideEntry, expected map[string]uint64) Comparison {
	var c Comparison
	seen := make(map[string]bool, len(found))

	for _, e := range found {
		text := e.Move.String()
		seen[text] = true
		c.Found += e.Nodes
		if want, ok := expected[text]; ok {
			c.Matching = append(c.Matching, Row{Move: text, Expected: want, Found: e.Nodes})
		} else {
			c.Unexpected = append(c.Unexpected, text)
		}
	}
	for text, n := range expected {
		c.Expected += n
		if !seen[text] {
			c.Missing = append(c.Missing, text)
		}
	}
	slices.Sort(c.Missing)
	return c
}

// CompareBoard divides b with mg and compares the result with dragontoothmg.
func CompareBoard(mg *board.MoveGen, b board.Board, depth int) Comparison {
	return Compare(mg.Divide(b, depth), Divide(b.FEN(), depth))
}

// WriteTo prints the comparison report.
func (c Comparison) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}

	fmt.Fprintln(cw, "---- COMPARISON RESULTS ----")
	fmt.Fprintln(cw)
	fmt.Fprintln(cw, "Move\tExpect\tFound")
	for _, r := range c.Matching {
		fmt.Fprintf(cw, "%s\t%d\t%d\t%c\n", r.Move, r.Expected, r.Found, r.Marker())
	}
	fmt.Fprintln(cw)

	fmt.Fprintln(cw, "Missing moves:")
	for _, m := range c.Missing {
		fmt.Fprintln(cw, m)
	}
	fmt.Fprintln(cw)

	fmt.Fprintln(cw, "Unexpected moves:")
	for _, m := range c.Unexpected {
		fmt.Fprintln(cw, m)
	}
	fmt.Fprintln(cw)

	fmt.Fprintf(cw, "Total node difference = %d - %d = %d\n",
		c.Found, c.Expected, int64(c.Found)-int64(c.Expected))
	return cw.n, cw.err
}

type countingWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	if cw.err != nil {
		return 0, cw.err
	}
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	cw.err = err
	return n, err
}

// Package render draws board diagrams as SVG and PNG.
package render

import (
	"fmt"
	"io"

	svg "github.com/ajstarks/svgo"

	"github.com/hailam/chress/internal/board"
)

// Colors
const (
	lightSquare     = "#f0d9b5"
	darkSquare      = "#b58863"
	highlightSquare = "#cdd26a"
	whitePiece      = "#ffffff"
	blackPiece      = "#222222"
	labelColor      = "#555555"
)

// Options controls the diagram layout.
type Options struct {
	Size      int            // total width and height in pixels
	Flipped   bool           // draw with rank 1 at the top
	Highlight []board.Square // squares tinted, e.g. the last move
}

// DefaultSize is used when Options.Size is zero.
const DefaultSize = 400

// layout holds derived geometry shared by the SVG and PNG writers.
type layout struct {
	size, margin, square int
	flipped              bool
	highlight            board.Bitboard
}

func newLayout(opts Options) layout {
	size := opts.Size
	if size <= 0 {
		size = DefaultSize
	}
	margin := size / 20
	l := layout{
		size:    size,
		margin:  margin,
		square:  (size - 2*margin) / 8,
		flipped: opts.Flipped,
	}
	for _, sq := range opts.Highlight {
		l.highlight = l.highlight.Set(sq)
	}
	return l
}

// origin returns the top-left pixel of sq.
func (l layout) origin(sq board.Square) (x, y int) {
	file, rank := sq.File(), 7-sq.Rank()
	if l.flipped {
		file, rank = 7-file, 7-rank
	}
	return l.margin + file*l.square, l.margin + rank*l.square
}

func (l layout) squareColor(sq board.Square) string {
	switch {
	case l.highlight.IsSet(sq):
		return highlightSquare
	case (sq.File()+sq.Rank())%2 == 0:
		return darkSquare
	default:
		return lightSquare
	}
}

// pieceStyle returns the disc fill, outline and letter colors.
func pieceStyle(c board.Color) (fill, stroke, letter string) {
	if c == board.White {
		return whitePiece, blackPiece, blackPiece
	}
	return blackPiece, blackPiece, whitePiece
}

func pieceLetter(p board.Piece) string {
	return string(p.Type().Char() - 'a' + 'A')
}

// errWriter remembers the first write error, since svgo does not report them.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) Write(p []byte) (int, error) {
	if ew.err != nil {
		return 0, ew.err
	}
	n, err := ew.w.Write(p)
	ew.err = err
	return n, err
}

// SVG writes a diagram of b to w.
func SVG(w io.Writer, b *board.Board, opts Options) error {
	l := newLayout(opts)
	ew := &errWriter{w: w}
	canvas := svg.New(ew)
	canvas.Start(l.size, l.size)
	canvas.Title(b.FEN())
	canvas.Rect(0, 0, l.size, l.size, "fill:#ffffff")

	l.drawShapes(canvas, b)

	canvas.Gid("labels")
	for sq := board.A1; sq <= board.H8; sq++ {
		p := b.PieceAt(sq)
		if p == board.NoPiece {
			continue
		}
		x, y := l.origin(sq)
		_, _, letter := pieceStyle(p.Color())
		canvas.Text(x+l.square/2, y+l.square*2/3, pieceLetter(p),
			fmt.Sprintf("text-anchor:middle;font-family:sans-serif;font-weight:bold;font-size:%dpx;fill:%s", l.square/2, letter))
	}
	for i := 0; i < 8; i++ {
		file, rank := i, i
		if l.flipped {
			file, rank = 7-i, 7-i
		}
		style := fmt.Sprintf("text-anchor:middle;font-family:sans-serif;font-size:%dpx;fill:%s", l.margin*2/3, labelColor)
		canvas.Text(l.margin+i*l.square+l.square/2, l.size-l.margin/4, string(rune('a'+file)), style)
		canvas.Text(l.margin/2, l.margin+(7-i)*l.square+l.square/2+l.margin/4, string(rune('1'+rank)), style)
	}
	canvas.Gend()

	canvas.End()
	return ew.err
}

// drawShapes writes the squares and piece discs. It is the part of the
// diagram that the PNG rasterizer understands.
func (l layout) drawShapes(canvas *svg.SVG, b *board.Board) {
	canvas.Gid("squares")
	for sq := board.A1; sq <= board.H8; sq++ {
		x, y := l.origin(sq)
		canvas.Rect(x, y, l.square, l.square, "fill:"+l.squareColor(sq))
	}
	canvas.Gend()

	canvas.Gid("pieces")
	for sq := board.A1; sq <= board.H8; sq++ {
		p := b.PieceAt(sq)
		if p == board.NoPiece {
			continue
		}
		x, y := l.origin(sq)
		fill, stroke, _ := pieceStyle(p.Color())
		canvas.Circle(x+l.square/2, y+l.square/2, l.square*2/5,
			fmt.Sprintf("fill:%s;stroke:%s;stroke-width:%d", fill, stroke, max(1, l.square/24)))
	}
	canvas.Gend()
}

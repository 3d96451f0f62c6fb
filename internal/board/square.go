// Package board implements the chess position core: bitboards, magic attack
// tables, FEN, move generation and make/unmake.
package board

import "fmt"

// Square is a board square 0-63, a1=0, h1=7, a8=56, h8=63.
type Square uint8

// Square constants for all 64 squares.
const (
	A1 Square = iota
	B1
	C1
	D1
	E1
	F1
	G1
	H1
	A2
	B2
	C2
	D2
	E2
	F2
	G2
	H2
	A3
	B3
	C3
	D3
	E3
	F3
	G3
	H3
	A4
	B4
	C4
	D4
	E4
	F4
	G4
	H4
	A5
	B5
	C5
	D5
	E5
	F5
	G5
	H5
	A6
	B6
	C6
	D6
	E6
	F6
	G6
	H6
	A7
	B7
	C7
	D7
	E7
	F7
	G7
	H7
	A8
	B8
	C8
	D8
	E8
	F8
	G8
	H8
	NoSquare Square = 64
)

// ParseSquareError reports square text that is not a file a-h followed by a rank 1-8.
type ParseSquareError struct {
	Text string
}

func (e *ParseSquareError) Error() string {
	return fmt.Sprintf("invalid square %q", e.Text)
}

// NewSquare creates a square from a 0-indexed file and rank.
func NewSquare(file, rank int) Square {
	return Square(rank*8 + file)
}

// ParseSquare parses algebraic notation such as "e4".
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return NoSquare, &ParseSquareError{Text: s}
	}

	file := int(s[0]) - 'a'
	rank := int(s[1]) - '1'
	if file < 0 || file > 7 || rank < 0 || rank > 7 {
		return NoSquare, &ParseSquareError{Text: s}
	}

	return NewSquare(file, rank), nil
}

// File returns the file of the square, 0=a through 7=h.
func (sq Square) File() int {
	return int(sq) & 7
}

// Rank returns the rank of the square, 0=1 through 7=8.
func (sq Square) Rank() int {
	return int(sq) >> 3
}

// IsValid reports whether sq is on the board.
func (sq Square) IsValid() bool {
	return sq < NoSquare
}

// Bitboard returns a bitboard with only this square set.
func (sq Square) Bitboard() Bitboard {
	return 1 << sq
}

// Mirror flips the square vertically (a1 <-> a8).
func (sq Square) Mirror() Square {
	return sq ^ 56
}

// String returns the algebraic name of the square, or "-" for NoSquare.
func (sq Square) String() string {
	if sq >= NoSquare {
		return "-"
	}
	return string([]byte{byte('a' + sq.File()), byte('1' + sq.Rank())})
}

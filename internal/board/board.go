package board

import (
	"fmt"
	"strings"
)

// Board is a complete position. It is a plain comparable value: copying it
// clones the position and == compares positions bit for bit.
type Board struct {
	pieces     [2][6]Bitboard // [Color][PieceType]
	sideToMove Color
	flags      Flags
	halfmoves  int // plies since the last pawn move or capture
	fullmoves  int // starts at 1, incremented after Black moves
}

// NewBoard returns the standard starting position.
func NewBoard() Board {
	b, err := ParseFEN(StartFEN)
	if err != nil {
		panic(err)
	}
	return b
}

// EmptyBoard returns a board with no pieces, White to move, move 1.
func EmptyBoard() Board {
	return Board{fullmoves: 1}
}

// SideToMove returns the color to move.
func (b *Board) SideToMove() Color {
	return b.sideToMove
}

// Flags returns the castling and en-passant state.
func (b *Board) Flags() Flags {
	return b.flags
}

// Halfmoves returns the fifty-move clock in plies.
func (b *Board) Halfmoves() int {
	return b.halfmoves
}

// Fullmoves returns the move number.
func (b *Board) Fullmoves() int {
	return b.fullmoves
}

// Pieces returns the bitboard of one piece type and color.
func (b *Board) Pieces(c Color, pt PieceType) Bitboard {
	return b.pieces[c][pt]
}

// Occupied returns all squares holding a piece of color c.
func (b *Board) Occupied(c Color) Bitboard {
	p := &b.pieces[c]
	return p[Pawn] | p[Knight] | p[Bishop] | p[Rook] | p[Queen] | p[King]
}

// AllOccupied returns every occupied square.
func (b *Board) AllOccupied() Bitboard {
	return b.Occupied(White) | b.Occupied(Black)
}

// KingSquare returns the king square of color c, or NoSquare.
func (b *Board) KingSquare(c Color) Square {
	return b.pieces[c][King].LSB()
}

// EnPassantSquare returns the pending en-passant target, or NoSquare.
func (b *Board) EnPassantSquare() Square {
	file, ok := b.flags.EnPassantFile()
	if !ok {
		return NoSquare
	}
	return NewSquare(file, b.sideToMove.EnPassantRank())
}

// PieceAt returns the piece on sq, or NoPiece.
func (b *Board) PieceAt(sq Square) Piece {
	bb := SquareBB(sq)
	for c := White; c <= Black; c++ {
		for pt := Pawn; pt <= King; pt++ {
			if b.pieces[c][pt]&bb != 0 {
				return NewPiece(pt, c)
			}
		}
	}
	return NoPiece
}

// AddPiece puts p on sq, replacing whatever stood there.
func (b *Board) AddPiece(p Piece, sq Square) {
	b.RemovePiece(sq)
	if p < NoPiece {
		b.pieces[p.Color()][p.Type()] |= SquareBB(sq)
	}
}

// RemovePiece clears sq and returns what stood there.
func (b *Board) RemovePiece(sq Square) Piece {
	p := b.PieceAt(sq)
	if p != NoPiece {
		b.pieces[p.Color()][p.Type()] &^= SquareBB(sq)
	}
	return p
}

// SetSideToMove changes the color to move. Used when editing positions.
// A pending en-passant target belongs to the previous side and is dropped.
func (b *Board) SetSideToMove(c Color) {
	if c != b.sideToMove {
		b.flags.ClearEnPassant()
	}
	b.sideToMove = c
}

// Material returns the material balance in centipawns, positive for White.
func (b *Board) Material() int {
	score := 0
	for pt := Pawn; pt < King; pt++ {
		score += (b.pieces[White][pt].PopCount() - b.pieces[Black][pt].PopCount()) * PieceValue[pt]
	}
	return score
}

// PieceValue is the material value of each piece type in centipawns.
var PieceValue = [7]int{100, 320, 330, 500, 900, 20000, 0}

// String draws the board with rank 8 on top, followed by the FEN.
func (b Board) String() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		fmt.Fprintf(&sb, "%d  ", rank+1)
		for file := 0; file < 8; file++ {
			p := b.PieceAt(NewSquare(file, rank))
			if p == NoPiece {
				sb.WriteString(". ")
			} else {
				sb.WriteString(p.String() + " ")
			}
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("\n   a b c d e f g h\n\n")
	fmt.Fprintf(&sb, "Side to move: %s\n", b.sideToMove)
	fmt.Fprintf(&sb, "Castling: %s\n", b.flags.Castling())
	fmt.Fprintf(&sb, "En passant: %s\n", b.EnPassantSquare())
	fmt.Fprintf(&sb, "Halfmoves: %d\n", b.halfmoves)
	fmt.Fprintf(&sb, "Fullmoves: %d\n", b.fullmoves)
	fmt.Fprintf(&sb, "FEN: %s\n", b.FEN())
	fmt.Fprintf(&sb, "Hash: %016x\n", b.Hash())
	return sb.String()
}

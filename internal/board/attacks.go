package board

// Attack tables for the non-sliding pieces.
var (
	knightAttacks [64]Bitboard
	kingAttacks   [64]Bitboard
	pawnAttacks   [2][64]Bitboard // [Color][Square]
)

func init() {
	for sq := A1; sq <= H8; sq++ {
		bb := SquareBB(sq)

		knightAttacks[sq] = (bb<<17)&NotFileA | (bb<<15)&NotFileH |
			(bb>>17)&NotFileH | (bb>>15)&NotFileA |
			(bb<<10)&NotFileAB | (bb<<6)&NotFileGH |
			(bb>>10)&NotFileGH | (bb>>6)&NotFileAB

		kingAttacks[sq] = bb.North() | bb.South() | bb.East() | bb.West() |
			bb.NorthEast() | bb.NorthWest() | bb.SouthEast() | bb.SouthWest()

		pawnAttacks[White][sq] = bb.NorthEast() | bb.NorthWest()
		pawnAttacks[Black][sq] = bb.SouthEast() | bb.SouthWest()
	}
}

// KnightAttacks returns the knight attack set of a square.
func KnightAttacks(sq Square) Bitboard {
	return knightAttacks[sq]
}

// KingAttacks returns the king attack set of a square.
func KingAttacks(sq Square) Bitboard {
	return kingAttacks[sq]
}

// PawnAttacks returns the squares a pawn of color c on sq captures onto.
func PawnAttacks(sq Square, c Color) Bitboard {
	return pawnAttacks[c][sq]
}

// SquareAttackedBy reports whether any piece of color by attacks sq.
// NoSquare is never attacked, so a side without a king is never in check.
func (mg *MoveGen) SquareAttackedBy(b *Board, sq Square, by Color) bool {
	if sq >= NoSquare {
		return false
	}
	// A pawn of color by attacks sq iff a pawn of the other color on sq
	// would attack the pawn's square.
	if pawnAttacks[by.Other()][sq]&b.pieces[by][Pawn] != 0 {
		return true
	}
	if knightAttacks[sq]&b.pieces[by][Knight] != 0 {
		return true
	}
	if kingAttacks[sq]&b.pieces[by][King] != 0 {
		return true
	}

	occupied := b.AllOccupied()
	queens := b.pieces[by][Queen]
	if mg.RookAttacks(sq, occupied)&(b.pieces[by][Rook]|queens) != 0 {
		return true
	}
	return mg.BishopAttacks(sq, occupied)&(b.pieces[by][Bishop]|queens) != 0
}

// AttackersByColor returns the pieces of color by that attack sq.
func (mg *MoveGen) AttackersByColor(b *Board, sq Square, by Color) Bitboard {
	if sq >= NoSquare {
		return 0
	}
	occupied := b.AllOccupied()
	queens := b.pieces[by][Queen]
	return pawnAttacks[by.Other()][sq]&b.pieces[by][Pawn] |
		knightAttacks[sq]&b.pieces[by][Knight] |
		kingAttacks[sq]&b.pieces[by][King] |
		mg.RookAttacks(sq, occupied)&(b.pieces[by][Rook]|queens) |
		mg.BishopAttacks(sq, occupied)&(b.pieces[by][Bishop]|queens)
}

// InCheck reports whether the side to move's king is attacked.
func (mg *MoveGen) InCheck(b *Board) bool {
	us := b.sideToMove
	ksq := b.KingSquare(us)
	return mg.SquareAttackedBy(b, ksq, us.Other())
}

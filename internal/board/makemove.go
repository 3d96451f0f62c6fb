package board

import "fmt"

// MakeMoveError reports a move whose origin holds no piece of the side to
// move.
type MakeMoveError struct {
	Square Square
}

func (e *MakeMoveError) Error() string {
	return fmt.Sprintf("no piece at square %s", e.Square)
}

// UnmakeMoveError reports a move whose destination holds no piece of the
// side that made it.
type UnmakeMoveError struct {
	Square Square
}

func (e *UnmakeMoveError) Error() string {
	return fmt.Sprintf("no piece at square %s", e.Square)
}

// castlingRookMask maps a castling king destination to the rook's origin
// and destination squares; XOR-ing it moves the rook both ways.
var castlingRookMask = [64]Bitboard{
	G1: SquareBB(H1) | SquareBB(F1),
	C1: SquareBB(A1) | SquareBB(D1),
	G8: SquareBB(H8) | SquareBB(F8),
	C8: SquareBB(A8) | SquareBB(D8),
}

// cornerRights maps each rook corner to the right it guards.
var cornerRights = [64]CastlingRights{
	A1: WhiteQueenSide,
	H1: WhiteKingSide,
	A8: BlackQueenSide,
	H8: BlackKingSide,
}

func isCastling(pt PieceType, from, to Square) bool {
	return pt == King && (int(to)-int(from) == 2 || int(from)-int(to) == 2)
}

// MakeMove plays m and returns what UnmakeMove needs to take it back. The
// move is not checked for legality, only that its origin holds a piece of
// the side to move; on error the board is unchanged.
func (b *Board) MakeMove(m Move) (MoveData, error) {
	from, to := m.From(), m.To()
	us := b.sideToMove
	them := us.Other()

	mover := b.PieceAt(from)
	if mover == NoPiece || mover.Color() != us {
		return MoveData{}, &MakeMoveError{Square: from}
	}
	pt := mover.Type()

	md := MoveData{
		Move:      m,
		Captured:  b.PieceAt(to),
		Flags:     b.flags,
		Halfmoves: b.halfmoves,
	}

	b.halfmoves++

	epTarget := b.EnPassantSquare()
	b.flags.ClearEnPassant()

	if pt == Pawn {
		b.halfmoves = 0
		switch {
		case int(to)-int(from) == 16 || int(from)-int(to) == 16:
			b.flags.SetEnPassant(from.File())
		case to == epTarget && from.File() != to.File():
			victim := SquareBB(NewSquare(to.File(), from.Rank()))
			if b.pieces[them][Pawn]&victim != 0 {
				b.pieces[them][Pawn] &^= victim
				md.Captured = NewPiece(Pawn, them)
			}
		}
	}

	if pt == King {
		b.flags.RemoveCastling(ColorCastling(us))
		if isCastling(pt, from, to) {
			b.pieces[us][Rook] ^= castlingRookMask[to]
		}
	}
	b.flags.RemoveCastling(cornerRights[from] | cornerRights[to])

	if md.Captured != NoPiece {
		b.halfmoves = 0
		// The en-passant victim is already gone and the square is empty.
		b.pieces[them][md.Captured.Type()] &^= SquareBB(to)
	}

	b.pieces[us][pt] &^= SquareBB(from)
	if promo := m.Promotion(); promo != NoPieceType {
		b.pieces[us][promo] |= SquareBB(to)
	} else {
		b.pieces[us][pt] |= SquareBB(to)
	}

	if us == Black {
		b.fullmoves++
	}
	b.sideToMove = them

	return md, nil
}

// UnmakeMove takes back the move recorded in md, which must be the last move
// made on b. On error the board is unchanged.
func (b *Board) UnmakeMove(md MoveData) error {
	from, to := md.Move.From(), md.Move.To()
	us := b.sideToMove.Other()
	them := b.sideToMove

	placed := b.PieceAt(to)
	if placed == NoPiece || placed.Color() != us {
		return &UnmakeMoveError{Square: to}
	}
	pt := placed.Type()

	b.pieces[us][pt] &^= SquareBB(to)
	if md.Move.IsPromotion() {
		pt = Pawn
	}
	b.pieces[us][pt] |= SquareBB(from)

	if isCastling(pt, from, to) {
		b.pieces[us][Rook] ^= castlingRookMask[to]
	}

	if md.Captured != NoPiece {
		capSq := to
		if pt == Pawn && isEnPassantCapture(md, us) {
			capSq = NewSquare(to.File(), from.Rank())
		}
		b.pieces[them][md.Captured.Type()] |= SquareBB(capSq)
	}

	b.flags = md.Flags
	b.halfmoves = md.Halfmoves
	if us == Black {
		b.fullmoves--
	}
	b.sideToMove = us

	return nil
}

// isEnPassantCapture reports whether md recorded an en-passant capture by
// color us: a diagonal pawn move onto the target the pre-move flags named.
func isEnPassantCapture(md MoveData, us Color) bool {
	file, ok := md.Flags.EnPassantFile()
	from, to := md.Move.From(), md.Move.To()
	return ok && from.File() != to.File() && NewSquare(file, us.EnPassantRank()) == to
}

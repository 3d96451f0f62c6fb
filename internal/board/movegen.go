package board

// castlingPath describes one castling option: the squares that must be
// empty, the squares the king must not stand on or cross while attacked,
// and the move emitted.
type castlingPath struct {
	right   CastlingRights
	rook    Square
	between Bitboard
	safe    [3]Square
	move    Move
}

var castlingPaths = [2][2]castlingPath{
	White: {
		{WhiteKingSide, H1, SquareBB(F1) | SquareBB(G1), [3]Square{E1, F1, G1}, NewMove(E1, G1)},
		{WhiteQueenSide, A1, SquareBB(D1) | SquareBB(C1) | SquareBB(B1), [3]Square{E1, D1, C1}, NewMove(E1, C1)},
	},
	Black: {
		{BlackKingSide, H8, SquareBB(F8) | SquareBB(G8), [3]Square{E8, F8, G8}, NewMove(E8, G8)},
		{BlackQueenSide, A8, SquareBB(D8) | SquareBB(C8) | SquareBB(B8), [3]Square{E8, D8, C8}, NewMove(E8, C8)},
	},
}

// PseudoLegalMoves appends every move that obeys piece movement rules to
// ml. Moves may leave the mover's king attacked. The board is not modified.
func (mg *MoveGen) PseudoLegalMoves(b *Board, ml *MoveList) {
	us := b.sideToMove
	own := b.Occupied(us)
	occupied := own | b.Occupied(us.Other())

	mg.generatePawnMoves(b, ml, us, occupied)

	b.pieces[us][Knight].ForEach(func(from Square) {
		addMoves(ml, from, KnightAttacks(from)&^own)
	})
	b.pieces[us][Bishop].ForEach(func(from Square) {
		addMoves(ml, from, mg.BishopAttacks(from, occupied)&^own)
	})
	b.pieces[us][Rook].ForEach(func(from Square) {
		addMoves(ml, from, mg.RookAttacks(from, occupied)&^own)
	})
	b.pieces[us][Queen].ForEach(func(from Square) {
		addMoves(ml, from, mg.QueenAttacks(from, occupied)&^own)
	})
	b.pieces[us][King].ForEach(func(from Square) {
		addMoves(ml, from, KingAttacks(from)&^own)
	})

	mg.generateCastlingMoves(b, ml, us, occupied)
}

func addMoves(ml *MoveList, from Square, targets Bitboard) {
	for targets != 0 {
		ml.Add(NewMove(from, targets.PopLSB()))
	}
}

// addPawnMove adds a pawn move of color us, expanded into the four
// promotions when it reaches the promotion rank.
func addPawnMove(ml *MoveList, us Color, from, to Square) {
	if to.Rank() != us.PromotionRank() {
		ml.Add(NewMove(from, to))
		return
	}
	for _, pt := range PromotionTypes {
		ml.Add(NewPromotion(from, to, pt))
	}
}

func (mg *MoveGen) generatePawnMoves(b *Board, ml *MoveList, us Color, occupied Bitboard) {
	pawns := b.pieces[us][Pawn]
	if pawns == 0 {
		return
	}
	empty := ^occupied
	enemies := b.Occupied(us.Other())
	dir := 8 * us.Direction()

	push1 := pawns.Forward(us) & empty
	push2 := (push1 & RankMask[us.PawnStartRank()+us.Direction()]).Forward(us) & empty

	for push1 != 0 {
		to := push1.PopLSB()
		addPawnMove(ml, us, Square(int(to)-dir), to)
	}
	for push2 != 0 {
		to := push2.PopLSB()
		ml.Add(NewMove(Square(int(to)-2*dir), to))
	}

	pawns.ForEach(func(from Square) {
		targets := PawnAttacks(from, us) & enemies
		for targets != 0 {
			addPawnMove(ml, us, from, targets.PopLSB())
		}
	})

	// En passant: our pawns that would be attacked from the target square
	// by a pawn of the other color are exactly the ones that can capture.
	if ep := b.EnPassantSquare(); ep != NoSquare {
		attackers := PawnAttacks(ep, us.Other()) & pawns
		for attackers != 0 {
			ml.Add(NewMove(attackers.PopLSB(), ep))
		}
	}
}

func (mg *MoveGen) generateCastlingMoves(b *Board, ml *MoveList, us Color, occupied Bitboard) {
	kingStart := NewSquare(4, us.BackRank())
	if b.pieces[us][King]&SquareBB(kingStart) == 0 {
		return
	}
	them := us.Other()

	for i := range castlingPaths[us] {
		path := &castlingPaths[us][i]
		if !b.flags.CanCastle(path.right) {
			continue
		}
		if b.pieces[us][Rook]&SquareBB(path.rook) == 0 {
			continue
		}
		if occupied&path.between != 0 {
			continue
		}
		if mg.SquareAttackedBy(b, path.safe[0], them) ||
			mg.SquareAttackedBy(b, path.safe[1], them) ||
			mg.SquareAttackedBy(b, path.safe[2], them) {
			continue
		}
		ml.Add(path.move)
	}
}

// GenerateLegal appends the legal moves of b to ml. Each pseudo-legal move
// is made on a scratch copy and kept if the mover's king is not attacked
// afterwards.
func (mg *MoveGen) GenerateLegal(b *Board, ml *MoveList) {
	var pseudo MoveList
	mg.PseudoLegalMoves(b, &pseudo)

	us := b.sideToMove
	scratch := *b
	for _, m := range pseudo.Slice() {
		md, err := scratch.MakeMove(m)
		if err != nil {
			panic("board: generated move failed: " + err.Error())
		}
		if !mg.SquareAttackedBy(&scratch, scratch.KingSquare(us), us.Other()) {
			ml.Add(m)
		}
		if err := scratch.UnmakeMove(md); err != nil {
			panic("board: unmake of generated move failed: " + err.Error())
		}
	}
}

// LegalMoves returns the legal moves of b.
func (mg *MoveGen) LegalMoves(b *Board) *MoveList {
	ml := NewMoveList()
	mg.GenerateLegal(b, ml)
	return ml
}

// HasLegalMoves reports whether the side to move has any legal move.
func (mg *MoveGen) HasLegalMoves(b *Board) bool {
	var pseudo MoveList
	mg.PseudoLegalMoves(b, &pseudo)

	us := b.sideToMove
	for _, m := range pseudo.Slice() {
		scratch := *b
		if _, err := scratch.MakeMove(m); err != nil {
			panic("board: generated move failed: " + err.Error())
		}
		if !mg.SquareAttackedBy(&scratch, scratch.KingSquare(us), us.Other()) {
			return true
		}
	}
	return false
}

// ParseLegalMove parses long algebraic text and checks it against the legal
// moves of b.
func (mg *MoveGen) ParseLegalMove(b *Board, s string) (Move, error) {
	m, err := ParseMove(s)
	if err != nil {
		return NullMove, err
	}
	if !mg.LegalMoves(b).Contains(m) {
		return NullMove, &IllegalMoveError{Move: m}
	}
	return m, nil
}

// IllegalMoveError reports a well-formed move that is not legal in the
// position it was applied to.
type IllegalMoveError struct {
	Move Move
}

func (e *IllegalMoveError) Error() string {
	return "illegal move " + e.Move.String()
}

package board

// Status is the game state of a position.
type Status uint8

const (
	Ongoing Status = iota
	Checkmate
	Stalemate
	FiftyMoveRule
	InsufficientMaterial
)

func (s Status) String() string {
	switch s {
	case Ongoing:
		return "ongoing"
	case Checkmate:
		return "checkmate"
	case Stalemate:
		return "stalemate"
	case FiftyMoveRule:
		return "draw by fifty-move rule"
	case InsufficientMaterial:
		return "draw by insufficient material"
	default:
		return "unknown"
	}
}

// Status classifies b. Mate and stalemate take precedence over the draw
// rules.
func (mg *MoveGen) Status(b *Board) Status {
	if !mg.HasLegalMoves(b) {
		if mg.InCheck(b) {
			return Checkmate
		}
		return Stalemate
	}
	if b.halfmoves >= 100 {
		return FiftyMoveRule
	}
	if b.IsInsufficientMaterial() {
		return InsufficientMaterial
	}
	return Ongoing
}

// IsCheckmate reports whether the side to move is mated.
func (mg *MoveGen) IsCheckmate(b *Board) bool {
	return mg.InCheck(b) && !mg.HasLegalMoves(b)
}

// IsStalemate reports whether the side to move has no move and is not in check.
func (mg *MoveGen) IsStalemate(b *Board) bool {
	return !mg.InCheck(b) && !mg.HasLegalMoves(b)
}

// IsInsufficientMaterial reports whether neither side can mate: bare kings,
// or a single minor piece against a bare king.
func (b *Board) IsInsufficientMaterial() bool {
	w, k := &b.pieces[White], &b.pieces[Black]
	if w[Pawn]|k[Pawn]|w[Rook]|k[Rook]|w[Queen]|k[Queen] != 0 {
		return false
	}

	whiteMinors := (w[Knight] | w[Bishop]).PopCount()
	blackMinors := (k[Knight] | k[Bishop]).PopCount()
	return whiteMinors+blackMinors <= 1
}

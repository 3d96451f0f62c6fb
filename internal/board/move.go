package board

import "fmt"

// Move packs a move into 16 bits:
// bits 10-15: from square
// bits 4-9:   to square
// bits 0-3:   promotion, one-hot (1=Knight, 2=Bishop, 4=Rook, 8=Queen), 0=none
//
// Comparing Move values orders moves by from, then to, then promotion, with
// the non-promoting move first.
type Move uint16

// NullMove is the zero move a1a1; the generator never produces it.
const NullMove Move = 0

// NewMove creates a non-promoting move.
func NewMove(from, to Square) Move {
	return Move(from)<<10 | Move(to)<<4
}

// NewPromotion creates a move promoting to pt, which must be Knight..Queen.
func NewPromotion(from, to Square, pt PieceType) Move {
	return NewMove(from, to) | Move(1)<<(pt-Knight)
}

// From returns the origin square.
func (m Move) From() Square {
	return Square(m >> 10)
}

// To returns the destination square.
func (m Move) To() Square {
	return Square(m>>4) & 0x3F
}

// Promotion returns the promotion piece type, or NoPieceType.
func (m Move) Promotion() PieceType {
	switch m & 0xF {
	case 1:
		return Knight
	case 2:
		return Bishop
	case 4:
		return Rook
	case 8:
		return Queen
	}
	return NoPieceType
}

// IsPromotion reports whether the move promotes.
func (m Move) IsPromotion() bool {
	return m&0xF != 0
}

// String returns long algebraic notation, e.g. "e2e4" or "e7e8q".
func (m Move) String() string {
	s := m.From().String() + m.To().String()
	if pt := m.Promotion(); pt != NoPieceType {
		s += string(pt.Char())
	}
	return s
}

// ParseMoveError reports text that is not long algebraic move notation.
type ParseMoveError struct {
	Text string
	Err  error
}

func (e *ParseMoveError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid move %q: %v", e.Text, e.Err)
	}
	return fmt.Sprintf("invalid move %q", e.Text)
}

func (e *ParseMoveError) Unwrap() error {
	return e.Err
}

// ParseMove parses "<from><to>[nbrq]". It checks syntax only.
func ParseMove(s string) (Move, error) {
	if len(s) != 4 && len(s) != 5 {
		return NullMove, &ParseMoveError{Text: s}
	}

	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NullMove, &ParseMoveError{Text: s, Err: err}
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NullMove, &ParseMoveError{Text: s, Err: err}
	}

	if len(s) == 4 {
		return NewMove(from, to), nil
	}

	pt, err := ParsePieceType(s[4])
	if err != nil || s[4] < 'a' || pt < Knight || pt > Queen {
		return NullMove, &ParseMoveError{Text: s, Err: err}
	}
	return NewPromotion(from, to, pt), nil
}

// MoveData is everything UnmakeMove needs to reverse a move. MakeMove returns
// it and the caller hands it back.
type MoveData struct {
	Move      Move
	Captured  Piece // NoPiece when nothing was taken; the pawn itself for en passant
	Flags     Flags // flags before the move
	Halfmoves int   // halfmove clock before the move
}

// MoveList is a fixed-size list of moves that avoids allocation.
type MoveList struct {
	moves [256]Move
	count int
}

// NewMoveList creates an empty move list.
func NewMoveList() *MoveList {
	return &MoveList{}
}

// Add appends a move.
func (ml *MoveList) Add(m Move) {
	ml.moves[ml.count] = m
	ml.count++
}

// Len returns the number of moves.
func (ml *MoveList) Len() int {
	return ml.count
}

// Get returns the move at index i.
func (ml *MoveList) Get(i int) Move {
	return ml.moves[i]
}

// Swap swaps two moves.
func (ml *MoveList) Swap(i, j int) {
	ml.moves[i], ml.moves[j] = ml.moves[j], ml.moves[i]
}

// Clear empties the list.
func (ml *MoveList) Clear() {
	ml.count = 0
}

// Contains reports whether m is in the list.
func (ml *MoveList) Contains(m Move) bool {
	for i := 0; i < ml.count; i++ {
		if ml.moves[i] == m {
			return true
		}
	}
	return false
}

// Slice returns the moves as a slice backed by the list.
func (ml *MoveList) Slice() []Move {
	return ml.moves[:ml.count]
}

package board

import "fmt"

// Color is the side a piece belongs to.
type Color uint8

const (
	White Color = iota
	Black
	NoColor Color = 2
)

// Other returns the opposite color.
func (c Color) Other() Color {
	return c ^ 1
}

// Direction is the rank delta of a pawn push: +1 for White, -1 for Black.
func (c Color) Direction() int {
	return 1 - 2*int(c)
}

// EnPassantRank is the rank of the en-passant target square that pawns of
// this color capture onto.
func (c Color) EnPassantRank() int {
	return 5 - 3*int(c)
}

// PawnStartRank is the rank pawns of this color double-push from.
func (c Color) PawnStartRank() int {
	return 1 + 5*int(c)
}

// BackRank is the rank the pieces of this color start on.
func (c Color) BackRank() int {
	return 7 * int(c)
}

// PromotionRank is the rank pawns of this color promote on.
func (c Color) PromotionRank() int {
	return 7 - 7*int(c)
}

func (c Color) String() string {
	switch c {
	case White:
		return "White"
	case Black:
		return "Black"
	default:
		return "NoColor"
	}
}

// PieceType is the kind of a piece regardless of color. The promotion
// targets Knight..Queen form the contiguous range 1..4.
type PieceType uint8

const (
	Pawn PieceType = iota
	Knight
	Bishop
	Rook
	Queen
	King
	NoPieceType PieceType = 6
)

// PromotionTypes lists the promotion targets in Move order.
var PromotionTypes = [4]PieceType{Knight, Bishop, Rook, Queen}

func (pt PieceType) String() string {
	switch pt {
	case Pawn:
		return "Pawn"
	case Knight:
		return "Knight"
	case Bishop:
		return "Bishop"
	case Rook:
		return "Rook"
	case Queen:
		return "Queen"
	case King:
		return "King"
	default:
		return "None"
	}
}

// Char returns the lowercase FEN letter of the piece type.
func (pt PieceType) Char() byte {
	if pt >= NoPieceType {
		return ' '
	}
	return "pnbrqk"[pt]
}

// ParsePieceCharError reports a letter that names no piece.
type ParsePieceCharError struct {
	Char byte
}

func (e *ParsePieceCharError) Error() string {
	return fmt.Sprintf("invalid piece character %q", e.Char)
}

// ParsePieceType maps a FEN letter of either case to its piece type.
func ParsePieceType(c byte) (PieceType, error) {
	switch c | 0x20 {
	case 'p':
		return Pawn, nil
	case 'n':
		return Knight, nil
	case 'b':
		return Bishop, nil
	case 'r':
		return Rook, nil
	case 'q':
		return Queen, nil
	case 'k':
		return King, nil
	}
	return NoPieceType, &ParsePieceCharError{Char: c}
}

// Piece combines PieceType and Color as pieceType + color*6.
type Piece uint8

const (
	WhitePawn   Piece = Piece(Pawn) + Piece(White)*6
	WhiteKnight Piece = Piece(Knight) + Piece(White)*6
	WhiteBishop Piece = Piece(Bishop) + Piece(White)*6
	WhiteRook   Piece = Piece(Rook) + Piece(White)*6
	WhiteQueen  Piece = Piece(Queen) + Piece(White)*6
	WhiteKing   Piece = Piece(King) + Piece(White)*6
	BlackPawn   Piece = Piece(Pawn) + Piece(Black)*6
	BlackKnight Piece = Piece(Knight) + Piece(Black)*6
	BlackBishop Piece = Piece(Bishop) + Piece(Black)*6
	BlackRook   Piece = Piece(Rook) + Piece(Black)*6
	BlackQueen  Piece = Piece(Queen) + Piece(Black)*6
	BlackKing   Piece = Piece(King) + Piece(Black)*6
	NoPiece     Piece = 12
)

// NewPiece creates a Piece from a type and a color.
func NewPiece(pt PieceType, c Color) Piece {
	if pt >= NoPieceType || c >= NoColor {
		return NoPiece
	}
	return Piece(pt) + Piece(c)*6
}

// ParsePiece maps a FEN letter to a piece: uppercase White, lowercase Black.
func ParsePiece(c byte) (Piece, error) {
	pt, err := ParsePieceType(c)
	if err != nil {
		return NoPiece, err
	}
	if c >= 'a' {
		return NewPiece(pt, Black), nil
	}
	return NewPiece(pt, White), nil
}

// Type returns the piece type.
func (p Piece) Type() PieceType {
	if p >= NoPiece {
		return NoPieceType
	}
	return PieceType(p % 6)
}

// Color returns the piece color.
func (p Piece) Color() Color {
	if p >= NoPiece {
		return NoColor
	}
	return Color(p / 6)
}

// String returns the FEN letter, uppercase for White.
func (p Piece) String() string {
	if p >= NoPiece {
		return " "
	}
	return string("PNBRQKpnbrqk"[p])
}

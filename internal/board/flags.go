package board

import "strings"

// CastlingRights is a set of the four castling options.
type CastlingRights uint8

const (
	WhiteKingSide CastlingRights = 1 << iota
	WhiteQueenSide
	BlackKingSide
	BlackQueenSide

	NoCastling  CastlingRights = 0
	AllCastling                = WhiteKingSide | WhiteQueenSide | BlackKingSide | BlackQueenSide
)

// ColorCastling returns both rights of one color.
func ColorCastling(c Color) CastlingRights {
	if c == White {
		return WhiteKingSide | WhiteQueenSide
	}
	return BlackKingSide | BlackQueenSide
}

// String returns the FEN castling field, "-" when empty.
func (cr CastlingRights) String() string {
	if cr == NoCastling {
		return "-"
	}
	var sb strings.Builder
	for i, c := range "KQkq" {
		if cr&(1<<i) != 0 {
			sb.WriteRune(c)
		}
	}
	return sb.String()
}

// Flags packs castling rights and the en-passant state into one byte:
// bits 0-3 castling rights, bits 4-6 en-passant file, bit 7 en-passant valid.
// The file bits carry no meaning while the valid bit is clear.
type Flags uint8

const (
	castlingMask Flags = 0x0F
	epFileShift        = 4
	epFileMask   Flags = 0x07 << epFileShift
	epValid      Flags = 0x80
)

// Castling returns the castling rights.
func (f Flags) Castling() CastlingRights {
	return CastlingRights(f & castlingMask)
}

// CanCastle reports whether every right in cr is still held.
func (f Flags) CanCastle(cr CastlingRights) bool {
	return f.Castling()&cr == cr
}

// AddCastling grants the rights in cr.
func (f *Flags) AddCastling(cr CastlingRights) {
	*f |= Flags(cr) & castlingMask
}

// RemoveCastling revokes the rights in cr.
func (f *Flags) RemoveCastling(cr CastlingRights) {
	*f &^= Flags(cr) & castlingMask
}

// EnPassantFile returns the file of the pending en-passant target, if any.
func (f Flags) EnPassantFile() (file int, ok bool) {
	if f&epValid == 0 {
		return 0, false
	}
	return int(f&epFileMask) >> epFileShift, true
}

// SetEnPassant records a pending en-passant target on file.
func (f *Flags) SetEnPassant(file int) {
	*f = *f&^epFileMask | Flags(file&7)<<epFileShift | epValid
}

// ClearEnPassant drops the pending en-passant target and zeroes its file so
// equal positions always carry equal flags.
func (f *Flags) ClearEnPassant() {
	*f &^= epValid | epFileMask
}

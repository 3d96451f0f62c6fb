package board

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the FEN string of the starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// FEN error kinds, matched with errors.Is.
var (
	ErrBadPosition       = errors.New("bad piece placement")
	ErrBadColor          = errors.New("bad active color")
	ErrBadCastlingRights = errors.New("bad castling rights")
	ErrBadEnPassant      = errors.New("bad en passant square")
	ErrBadHalfmoves      = errors.New("bad halfmove clock")
	ErrBadFullmoves      = errors.New("bad fullmove number")
	ErrWrongSectionCount = errors.New("wrong number of fields")
	ErrInvalidPosition   = errors.New("invalid position")
)

// FENError describes why a FEN string was rejected.
type FENError struct {
	Kind   error  // one of the Err* kinds above
	Detail string // the offending field or a short explanation
}

func (e *FENError) Error() string {
	return fmt.Sprintf("parse fen: %v: %s", e.Kind, e.Detail)
}

func (e *FENError) Unwrap() error {
	return e.Kind
}

func fenError(kind error, format string, args ...any) *FENError {
	return &FENError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// ParseFEN parses a FEN string using the default MoveGen.
func ParseFEN(fen string) (Board, error) {
	return Default().ParseFEN(fen)
}

// LoadFEN replaces the receiver with the parsed position. On error the
// receiver is left unchanged.
func (b *Board) LoadFEN(mg *MoveGen, fen string) error {
	parsed, err := mg.ParseFEN(fen)
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// ParseFEN parses the six FEN fields and validates that the position could
// have been reached legally: one king per color and the side not to move is
// not in check.
func (mg *MoveGen) ParseFEN(fen string) (Board, error) {
	fields := strings.Fields(fen)
	if len(fields) != 6 {
		return Board{}, fenError(ErrWrongSectionCount, "got %d, want 6", len(fields))
	}

	b := EmptyBoard()
	if err := parsePlacement(&b, fields[0]); err != nil {
		return Board{}, err
	}
	if b.pieces[White][King].PopCount() != 1 || b.pieces[Black][King].PopCount() != 1 {
		return Board{}, fenError(ErrInvalidPosition, "each side needs exactly one king")
	}

	switch fields[1] {
	case "w":
		b.sideToMove = White
	case "b":
		b.sideToMove = Black
	default:
		return Board{}, fenError(ErrBadColor, "%q", fields[1])
	}

	them := b.sideToMove.Other()
	if mg.SquareAttackedBy(&b, b.KingSquare(them), b.sideToMove) {
		return Board{}, fenError(ErrInvalidPosition, "%s king can be captured", them)
	}

	if fields[2] != "-" {
		for i := 0; i < len(fields[2]); i++ {
			idx := strings.IndexByte("KQkq", fields[2][i])
			if idx < 0 || b.flags.CanCastle(CastlingRights(1)<<idx) {
				return Board{}, fenError(ErrBadCastlingRights, "%q", fields[2])
			}
			b.flags.AddCastling(CastlingRights(1) << idx)
		}
	}

	if fields[3] != "-" {
		sq, err := ParseSquare(fields[3])
		if err != nil || sq.Rank() != b.sideToMove.EnPassantRank() {
			return Board{}, fenError(ErrBadEnPassant, "%q", fields[3])
		}
		b.flags.SetEnPassant(sq.File())
	}

	halfmoves, err := strconv.Atoi(fields[4])
	if err != nil || halfmoves < 0 {
		return Board{}, fenError(ErrBadHalfmoves, "%q", fields[4])
	}
	b.halfmoves = halfmoves

	fullmoves, err := strconv.Atoi(fields[5])
	if err != nil || fullmoves < 1 {
		return Board{}, fenError(ErrBadFullmoves, "%q", fields[5])
	}
	b.fullmoves = fullmoves

	return b, nil
}

// parsePlacement fills the piece bitboards from the first FEN field.
func parsePlacement(b *Board, placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return fenError(ErrBadPosition, "need 8 ranks, got %d", len(ranks))
	}

	for i, rankStr := range ranks {
		rank := 7 - i
		file := 0
		for j := 0; j < len(rankStr); j++ {
			c := rankStr[j]
			if c >= '1' && c <= '8' {
				file += int(c - '0')
				if file > 8 {
					return fenError(ErrBadPosition, "rank %d overflows", rank+1)
				}
				continue
			}

			if file > 7 {
				return fenError(ErrBadPosition, "rank %d overflows", rank+1)
			}
			p, err := ParsePiece(c)
			if err != nil {
				return fenError(ErrBadPosition, "%v", err)
			}
			b.pieces[p.Color()][p.Type()] |= SquareBB(NewSquare(file, rank))
			file++
		}
		if file != 8 {
			return fenError(ErrBadPosition, "rank %d has %d squares", rank+1, file)
		}
	}
	return nil
}

// FEN serializes the board. ParseFEN(b.FEN()) == b for every valid board.
func (b *Board) FEN() string {
	var sb strings.Builder

	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			p := b.PieceAt(NewSquare(file, rank))
			if p == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteString(p.String())
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	sb.WriteByte(' ')
	if b.sideToMove == White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}

	sb.WriteByte(' ')
	sb.WriteString(b.flags.Castling().String())
	sb.WriteByte(' ')
	sb.WriteString(b.EnPassantSquare().String())
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(b.halfmoves))
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(b.fullmoves))

	return sb.String()
}

package board

import (
	"fmt"
	"strings"
)

// IsCapture reports whether m takes a piece on b, en passant included.
func (b *Board) IsCapture(m Move) bool {
	if b.PieceAt(m.To()) != NoPiece {
		return true
	}
	return b.pieces[b.sideToMove][Pawn].IsSet(m.From()) && m.From().File() != m.To().File()
}

// SAN converts a legal move to Standard Algebraic Notation.
func (mg *MoveGen) SAN(b *Board, m Move) string {
	if m == NullMove {
		return "-"
	}

	from := m.From()
	to := m.To()
	piece := b.PieceAt(from)
	if piece == NoPiece {
		return m.String()
	}
	pt := piece.Type()

	var sb strings.Builder

	switch {
	case isCastling(pt, from, to) && to > from:
		sb.WriteString("O-O")
	case isCastling(pt, from, to):
		sb.WriteString("O-O-O")
	default:
		if pt != Pawn {
			sb.WriteByte("PNBRQK"[pt])
			sb.WriteString(mg.disambiguation(b, m, pt))
		}

		if b.IsCapture(m) {
			if pt == Pawn {
				sb.WriteByte('a' + byte(from.File()))
			}
			sb.WriteByte('x')
		}

		sb.WriteString(to.String())

		if promo := m.Promotion(); promo != NoPieceType {
			sb.WriteByte('=')
			sb.WriteByte("PNBRQK"[promo])
		}
	}

	after := *b
	if _, err := after.MakeMove(m); err != nil {
		return m.String()
	}
	if mg.InCheck(&after) {
		if mg.HasLegalMoves(&after) {
			sb.WriteByte('+')
		} else {
			sb.WriteByte('#')
		}
	}

	return sb.String()
}

// disambiguation returns the origin file, rank or square needed to tell m
// apart from other legal moves of the same piece type to the same square.
func (mg *MoveGen) disambiguation(b *Board, m Move, pt PieceType) string {
	from := m.From()
	to := m.To()
	pieces := b.pieces[b.sideToMove][pt]

	var candidates []Square
	for _, other := range mg.LegalMoves(b).Slice() {
		if other.To() != to || other.From() == from {
			continue
		}
		if pieces.IsSet(other.From()) {
			candidates = append(candidates, other.From())
		}
	}
	if len(candidates) == 0 {
		return ""
	}

	sameFile, sameRank := false, false
	for _, sq := range candidates {
		if sq.File() == from.File() {
			sameFile = true
		}
		if sq.Rank() == from.Rank() {
			sameRank = true
		}
	}

	if !sameFile {
		return string(rune('a' + from.File()))
	}
	if !sameRank {
		return string(rune('1' + from.Rank()))
	}
	return from.String()
}

// SANError reports SAN text that matches no legal move.
type SANError struct {
	Text string
}

func (e *SANError) Error() string {
	return fmt.Sprintf("no legal move matches %q", e.Text)
}

// ParseSAN finds the legal move of b written as s in Standard Algebraic
// Notation. Check and annotation suffixes are ignored.
func (mg *MoveGen) ParseSAN(b *Board, s string) (Move, error) {
	text := s
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, "+#!?")

	legal := mg.LegalMoves(b)
	us := b.sideToMove

	switch s {
	case "O-O", "0-0":
		m := castlingPaths[us][0].move
		if legal.Contains(m) && b.pieces[us][King].IsSet(m.From()) {
			return m, nil
		}
		return NullMove, &SANError{Text: text}
	case "O-O-O", "0-0-0":
		m := castlingPaths[us][1].move
		if legal.Contains(m) && b.pieces[us][King].IsSet(m.From()) {
			return m, nil
		}
		return NullMove, &SANError{Text: text}
	}

	promo := NoPieceType
	if idx := strings.IndexByte(s, '='); idx >= 0 {
		if idx+1 >= len(s) {
			return NullMove, &SANError{Text: text}
		}
		pt, err := ParsePieceType(s[idx+1])
		if err != nil || pt < Knight || pt > Queen {
			return NullMove, &SANError{Text: text}
		}
		promo = pt
		s = s[:idx]
	}

	isCapture := strings.Contains(s, "x")
	s = strings.ReplaceAll(s, "x", "")

	pt := Pawn
	if len(s) > 0 && s[0] >= 'A' && s[0] <= 'Z' {
		parsed, err := ParsePieceType(s[0])
		if err != nil || parsed == Pawn {
			return NullMove, &SANError{Text: text}
		}
		pt = parsed
		s = s[1:]
	}

	if len(s) < 2 {
		return NullMove, &SANError{Text: text}
	}
	dest, err := ParseSquare(s[len(s)-2:])
	if err != nil {
		return NullMove, &SANError{Text: text}
	}
	s = s[:len(s)-2]

	fileHint, rankHint := -1, -1
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'h':
			fileHint = int(c - 'a')
		case c >= '1' && c <= '8':
			rankHint = int(c - '1')
		default:
			return NullMove, &SANError{Text: text}
		}
	}

	for _, m := range legal.Slice() {
		from := m.From()
		if m.To() != dest || b.PieceAt(from).Type() != pt {
			continue
		}
		if fileHint >= 0 && from.File() != fileHint {
			continue
		}
		if rankHint >= 0 && from.Rank() != rankHint {
			continue
		}
		if isCapture && !b.IsCapture(m) {
			continue
		}
		if m.Promotion() != promo {
			continue
		}
		return m, nil
	}

	return NullMove, &SANError{Text: text}
}

// MovesToSAN converts a line of moves played from b to SAN.
func (mg *MoveGen) MovesToSAN(b Board, moves []Move) []string {
	result := make([]string, len(moves))
	for i, m := range moves {
		result[i] = mg.SAN(&b, m)
		if _, err := b.MakeMove(m); err != nil {
			return result[:i+1]
		}
	}
	return result
}

package reference

import (
	"fmt"
	"io"

	"github.com/notnil/chess"

	"github.com/hailam/chress/internal/board"
)

// Game is a PGN game reduced to what the board package can replay.
type Game struct {
	StartFEN string
	Moves    []string // coordinate notation, e.g. e2e4, e7e8q
	Outcome  string
}

// ReadPGN decodes the first game in r.
func ReadPGN(r io.Reader) (Game, error) {
	opt, err := chess.PGN(r)
	if err != nil {
		return Game{}, fmt.Errorf("read pgn: %w", err)
	}
	g := chess.NewGame(opt)

	positions := g.Positions()
	moves := g.Moves()
	game := Game{
		StartFEN: positions[0].String(),
		Moves:    make([]string, len(moves)),
		Outcome:  string(g.Outcome()),
	}
	for i, m := range moves {
		game.Moves[i] = chess.UCINotation{}.Encode(positions[i], m)
	}
	return game, nil
}

// Replay plays the game on a fresh board and returns the final position.
func (g Game) Replay(mg *board.MoveGen) (board.Board, error) {
	b, err := mg.ParseFEN(g.StartFEN)
	if err != nil {
		return board.Board{}, err
	}
	for i, text := range g.Moves {
		m, err := mg.ParseLegalMove(&b, text)
		if err != nil {
			return board.Board{}, fmt.Errorf("ply %d: %w", i+1, err)
		}
		if _, err := b.MakeMove(m); err != nil {
			return board.Board{}, fmt.Errorf("ply %d: %w", i+1, err)
		}
	}
	return b, nil
}

// FinalFEN returns the position the game ends in according to notnil/chess.
func FinalFEN(r io.Reader) (string, error) {
	opt, err := chess.PGN(r)
	if err != nil {
		return "", fmt.Errorf("read pgn: %w", err)
	}
	return chess.NewGame(opt).Position().String(), nil
}

// Package repl implements the interactive command shell used to inspect
// and edit positions, run perft and compare against the reference
// generator.
package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/hailam/chress/internal/board"
	"github.com/hailam/chress/internal/engine"
	"github.com/hailam/chress/internal/reference"
	"github.com/hailam/chress/internal/render"
	"github.com/hailam/chress/internal/storage"
	"github.com/hailam/chress/internal/uci"
)

// ErrQuit is returned by Exec when the shell should exit.
var ErrQuit = errors.New("quit")

// REPL holds the shell state: the current position and the stack of
// moves made on it.
type REPL struct {
	mg      *board.MoveGen
	engine  *engine.Engine
	board   board.Board
	history []board.MoveData

	in  *bufio.Reader
	out io.Writer

	// Optional perft cache; nil disables caching.
	Cache *storage.PerftCache
	// Size of rendered diagrams in pixels.
	RenderSize int
}

// New creates a shell on the start position.
func New(eng *engine.Engine, in io.Reader, out io.Writer) *REPL {
	return &REPL{
		mg:     board.Default(),
		engine: eng,
		board:  board.NewBoard(),
		in:     bufio.NewReader(in),
		out:    out,
	}
}

// Board returns the current position.
func (r *REPL) Board() board.Board {
	return r.board
}

// SetBoard replaces the current position and forgets the move history.
func (r *REPL) SetBoard(b board.Board) {
	r.board = b
	r.history = r.history[:0]
}

// Run reads lines until quit or end of input. Commands on one line may be
// separated by ';'.
func (r *REPL) Run() error {
	for {
		line, err := r.in.ReadString('\n')
		if line != "" {
			if execErr := r.ExecLine(line); errors.Is(execErr, ErrQuit) {
				return nil
			} else if execErr != nil {
				return execErr
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// ExecLine runs every ';'-separated command of line. A failing command
// stops the rest of the line.
func (r *REPL) ExecLine(line string) error {
	for _, cmd := range strings.Split(line, ";") {
		fields := strings.Fields(cmd)
		if len(fields) == 0 {
			continue
		}
		if err := r.Exec(fields[0], fields[1:]); err != nil {
			if errors.Is(err, ErrQuit) || errors.Is(err, errUCIDone) {
				return ErrQuit
			}
			r.printf("Error: %v\n", err)
			return nil
		}
	}
	return nil
}

var errUCIDone = errors.New("uci session ended")

// Exec runs a single command.
func (r *REPL) Exec(cmd string, args []string) error {
	switch cmd {
	case "reset":
		r.SetBoard(board.EmptyBoard())
	case "startpos":
		r.SetBoard(board.NewBoard())
	case "load":
		return r.load(args)
	case "fen":
		r.printf("%s\n", r.board.FEN())
	case "d", "disp", "display":
		r.printf("%s\n", r.board)
	case "clear", "cls":
		r.printf("\033[H\033[2J")
	case "side":
		return r.side(args)
	case "add":
		return r.add(args)
	case "rm":
		return r.remove(args)
	case "move":
		return r.move(args)
	case "undo":
		return r.undo()
	case "moves":
		r.moves()
	case "perft":
		return r.perft(args)
	case "compare":
		return r.compare(args)
	case "status":
		r.status()
	case "eval":
		r.printf("Eval: %s (side to move)\n", engine.ScoreToString(r.engine.Evaluate(&r.board)))
	case "go":
		return r.search(args)
	case "svg", "png":
		return r.render(cmd, args)
	case "dbg":
		r.printf("Flags: %08b\n", uint8(r.board.Flags()))
	case "hash":
		r.printf("Hash: %016x\n", r.board.Hash())
	case "uci":
		// The "uci" line itself starts the handshake.
		u := uci.New(r.engine, io.MultiReader(strings.NewReader("uci\n"), r.in), r.out)
		u.SetPosition(r.board)
		if err := u.Run(); err != nil {
			return err
		}
		return errUCIDone
	case "help":
		r.printf("%s", helpText)
	case "quit", "exit":
		return ErrQuit
	default:
		return fmt.Errorf("invalid command '%s'", cmd)
	}
	return nil
}

const helpText = `Commands (chain with ';'):
  reset                 empty board
  startpos              start position
  load fen <fen>        load a position
  fen                   print the FEN
  d | disp | display    draw the board
  side w|b              set the side to move
  add <piece> <square>  put a piece, e.g. add N f3 or add q d8
  rm <square>           clear a square
  move <move>...        make moves, e.g. move e2e4 e7e5
  undo                  take back the last move
  moves                 list legal moves
  perft <depth>         divide with node counts
  compare <depth>       divide checked against dragontoothmg
  status                game state
  eval                  static evaluation
  go <depth>            search
  svg <file>, png <file> render the board
  dbg                   raw flags byte
  hash                  Zobrist hash
  uci                   switch to UCI mode
  quit
`

func (r *REPL) printf(format string, args ...any) {
	fmt.Fprintf(r.out, format, args...)
}

func (r *REPL) load(args []string) error {
	if len(args) < 2 || args[0] != "fen" {
		return errors.New("usage: load fen <fen>")
	}
	b, err := r.mg.ParseFEN(strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	r.SetBoard(b)
	return nil
}

func (r *REPL) side(args []string) error {
	if len(args) < 1 {
		return errors.New("missing arguments for 'side'")
	}
	switch args[0] {
	case "w", "white":
		r.board.SetSideToMove(board.White)
	case "b", "black":
		r.board.SetSideToMove(board.Black)
	default:
		return fmt.Errorf("invalid side '%s'", args[0])
	}
	r.history = r.history[:0]
	return nil
}

func (r *REPL) add(args []string) error {
	if len(args) < 2 {
		return errors.New("missing arguments for 'add'")
	}
	if len(args[0]) != 1 {
		return fmt.Errorf("invalid piece '%s'", args[0])
	}
	p, err := board.ParsePiece(args[0][0])
	if err != nil {
		return err
	}
	sq, err := board.ParseSquare(args[1])
	if err != nil {
		return err
	}
	r.board.AddPiece(p, sq)
	r.history = r.history[:0]
	return nil
}

func (r *REPL) remove(args []string) error {
	if len(args) < 1 {
		return errors.New("missing arguments for 'rm'")
	}
	sq, err := board.ParseSquare(args[0])
	if err != nil {
		return err
	}
	r.board.RemovePiece(sq)
	r.history = r.history[:0]
	return nil
}

func (r *REPL) move(args []string) error {
	for _, text := range args {
		m, err := r.mg.ParseLegalMove(&r.board, text)
		if err != nil {
			return err
		}
		md, err := r.board.MakeMove(m)
		if err != nil {
			return err
		}
		r.history = append(r.history, md)
	}
	return nil
}

func (r *REPL) undo() error {
	if len(r.history) == 0 {
		return errors.New("no move to undo")
	}
	md := r.history[len(r.history)-1]
	if err := r.board.UnmakeMove(md); err != nil {
		return err
	}
	r.history = r.history[:len(r.history)-1]
	return nil
}

func (r *REPL) moves() {
	moves := slices.Clone(r.mg.LegalMoves(&r.board).Slice())
	slices.Sort(moves)
	for _, m := range moves {
		r.printf("%s\t%s\n", m, r.mg.SAN(&r.board, m))
	}
	r.printf("%d moves\n", len(moves))
}

func parseDepth(args []string) (int, error) {
	if len(args) < 1 {
		return 0, errors.New("missing depth")
	}
	d, err := strconv.Atoi(args[0])
	if err != nil || d < 1 {
		return 0, fmt.Errorf("invalid depth '%s'", args[0])
	}
	return d, nil
}

func (r *REPL) perft(args []string) error {
	depth, err := parseDepth(args)
	if err != nil {
		return err
	}

	start := time.Now()
	var (
		entries []board.DivideEntry
		cached  bool
	)
	if r.Cache != nil {
		entries, cached, err = r.Cache.Divide(context.Background(), r.mg, r.board, depth)
	} else {
		entries, err = r.mg.ParallelDivide(context.Background(), r.board, depth)
	}
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	for _, e := range entries {
		r.printf("%s: %d\n", e.Move, e.Nodes)
	}
	r.printf("\nNodes: %d\n", board.DivideTotal(entries))
	r.printf("Time: %v", elapsed)
	if cached {
		r.printf(" (cached)")
	}
	r.printf("\n")
	return nil
}

func (r *REPL) compare(args []string) error {
	depth, err := parseDepth(args)
	if err != nil {
		return err
	}
	// dragontoothmg assumes both kings are on the board.
	for c := board.White; c <= board.Black; c++ {
		if r.board.Pieces(c, board.King).PopCount() != 1 {
			return fmt.Errorf("compare needs exactly one %s king", c)
		}
	}
	_, err = reference.CompareBoard(r.mg, r.board, depth).WriteTo(r.out)
	return err
}

func (r *REPL) status() {
	r.printf("Status: %s\n", r.mg.Status(&r.board))
	us := r.board.SideToMove()
	checkers := r.mg.AttackersByColor(&r.board, r.board.KingSquare(us), us.Other())
	if checkers == 0 {
		return
	}
	var from []string
	checkers.ForEach(func(sq board.Square) {
		from = append(from, sq.String())
	})
	r.printf("%s is in check from %s\n", us, strings.Join(from, " "))
}

func (r *REPL) search(args []string) error {
	depth, err := parseDepth(args)
	if err != nil {
		return err
	}

	r.engine.OnInfo = func(info engine.SearchInfo) {
		r.printf("%s\n", uci.FormatInfo(info))
	}
	defer func() { r.engine.OnInfo = nil }()

	best, info := r.engine.Search(context.Background(), r.board, engine.SearchLimits{Depth: depth})
	if best == board.NullMove {
		r.printf("No legal moves (%s)\n", r.mg.Status(&r.board))
		return nil
	}
	pv := r.mg.MovesToSAN(r.board, info.PV)
	r.printf("Best move: %s (%s), score %s\n", best, r.mg.SAN(&r.board, best), engine.ScoreToString(info.Score))
	if len(pv) > 0 {
		r.printf("PV: %s\n", strings.Join(pv, " "))
	}
	return nil
}

func (r *REPL) render(format string, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("missing file name for '%s'", format)
	}
	f, err := os.Create(args[0])
	if err != nil {
		return err
	}

	opts := render.Options{Size: r.RenderSize}
	if n := len(r.history); n > 0 {
		last := r.history[n-1].Move
		opts.Highlight = []board.Square{last.From(), last.To()}
	}
	if format == "svg" {
		err = render.SVG(f, &r.board, opts)
	} else {
		err = render.PNG(f, &r.board, opts)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	r.printf("Wrote %s\n", args[0])
	return nil
}

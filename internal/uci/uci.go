// Package uci implements the Universal Chess Interface front end.
package uci

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hailam/chress/internal/board"
	"github.com/hailam/chress/internal/engine"
)

// UCI implements the Universal Chess Interface protocol.
type UCI struct {
	engine   *engine.Engine
	mg       *board.MoveGen
	position board.Board

	in   io.Reader
	out  io.Writer
	diag io.Writer
	mu   sync.Mutex // serializes writes to out

	debug bool

	// Search state
	cancel     context.CancelFunc
	searchDone chan struct{}
	infinite   bool

	// CPU profiling
	profileFile *os.File
}

// New creates a UCI handler reading commands from in and writing protocol
// output to out. Diagnostics go to stderr.
func New(eng *engine.Engine, in io.Reader, out io.Writer) *UCI {
	return &UCI{
		engine:   eng,
		mg:       board.Default(),
		position: board.NewBoard(),
		in:       in,
		out:      out,
		diag:     os.Stderr,
	}
}

// SetPosition replaces the current position.
func (u *UCI) SetPosition(b board.Board) {
	u.position = b
}

// Run reads commands until quit or end of input. At end of input a
// bounded search is allowed to finish and an infinite one is stopped; a
// running CPU profile is flushed on every exit.
func (u *UCI) Run() error {
	scanner := bufio.NewScanner(u.in)
	defer u.finish()

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "uci":
			u.handleUCI()
		case "isready":
			u.println("readyok")
		case "ucinewgame":
			u.handleNewGame()
		case "position":
			u.debugf("position %s", strings.Join(args, " "))
			u.handlePosition(args)
		case "go":
			u.handleGo(args)
		case "stop":
			u.handleStop()
		case "quit":
			u.handleQuit()
			return nil
		case "setoption":
			u.handleSetOption(args)
		// Debug commands
		case "d":
			u.println(u.position.String())
		case "perft":
			u.handlePerft(args)
		default:
			u.infof("Unknown command: %s", cmd)
		}
	}
	return scanner.Err()
}

func (u *UCI) println(s string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	fmt.Fprintln(u.out, s)
}

// infof writes an "info string" diagnostic to stderr.
func (u *UCI) infof(format string, args ...any) {
	fmt.Fprintf(u.diag, "info string "+format+"\n", args...)
}

func (u *UCI) debugf(format string, args ...any) {
	if u.debug {
		u.infof("DEBUG: "+format, args...)
	}
}

// handleUCI responds to the "uci" command.
func (u *UCI) handleUCI() {
	u.println("id name Chress")
	u.println("id author Chress Team")
	u.println("")
	u.println("option name Hash type spin default 16 min 1 max 4096")
	u.println("option name Debug type check default false")
	u.println("option name CPUProfile type string default <empty>")
	u.println("uciok")
}

// handleNewGame resets the engine for a new game.
func (u *UCI) handleNewGame() {
	u.handleStop()
	u.engine.Clear()
	u.position = board.NewBoard()
}

// handlePosition parses and sets up a position.
// Formats:
//   - position startpos
//   - position startpos moves e2e4 e7e5
//   - position fen <fen>
//   - position fen <fen> moves e2e4
//
// On any error the previous position is kept.
func (u *UCI) handlePosition(args []string) {
	if len(args) == 0 {
		return
	}

	// Find "moves" keyword
	moveStart := len(args)
	for i, arg := range args {
		if arg == "moves" {
			moveStart = i
			break
		}
	}

	var pos board.Board
	switch args[0] {
	case "startpos":
		pos = board.NewBoard()
	case "fen":
		var err error
		pos, err = u.mg.ParseFEN(strings.Join(args[1:moveStart], " "))
		if err != nil {
			u.infof("Invalid FEN: %v", err)
			return
		}
	default:
		u.infof("Invalid position command: %s", args[0])
		return
	}

	if moveStart < len(args) {
		for _, moveStr := range args[moveStart+1:] {
			move, err := u.mg.ParseLegalMove(&pos, moveStr)
			if err != nil {
				u.infof("Invalid move: %v", err)
				return
			}
			if _, err := pos.MakeMove(move); err != nil {
				u.infof("Invalid move %s: %v", moveStr, err)
				return
			}
		}
	}

	u.position = pos
	u.debugf("position set, hash=%016x fen=%s", pos.Hash(), pos.FEN())
}

// GoOptions holds parsed "go" command options.
type GoOptions struct {
	Depth     int
	Nodes     uint64
	MoveTime  time.Duration
	Infinite  bool
	WTime     time.Duration
	BTime     time.Duration
	WInc      time.Duration
	BInc      time.Duration
	MovesToGo int
}

// Limits converts the options to engine search limits.
func (o GoOptions) Limits() engine.SearchLimits {
	return engine.SearchLimits{
		Depth:     o.Depth,
		Nodes:     o.Nodes,
		MoveTime:  o.MoveTime,
		Infinite:  o.Infinite,
		Time:      [2]time.Duration{o.WTime, o.BTime},
		Inc:       [2]time.Duration{o.WInc, o.BInc},
		MovesToGo: o.MovesToGo,
	}
}

// handleGo starts a search with the given parameters.
func (u *UCI) handleGo(args []string) {
	u.handleStop()

	opts := ParseGoOptions(args)
	limits := opts.Limits()

	// Configure info callback
	u.engine.OnInfo = func(info engine.SearchInfo) {
		u.println(FormatInfo(info))
	}

	ctx, cancel := context.WithCancel(context.Background())
	u.cancel = cancel
	u.infinite = limits.Infinite
	u.searchDone = make(chan struct{})
	done := u.searchDone
	pos := u.position

	go func() {
		defer close(done)

		bestMove, _ := u.engine.Search(ctx, pos, limits)

		// An infinite search reports only after stop.
		if limits.Infinite {
			<-ctx.Done()
		}

		if bestMove == board.NullMove {
			u.println("bestmove 0000")
			return
		}
		u.println("bestmove " + bestMove.String())
	}()
}

// ParseGoOptions parses "go" command arguments. Unknown tokens and
// malformed numbers are ignored.
func ParseGoOptions(args []string) GoOptions {
	opts := GoOptions{}

	millis := func(s string) time.Duration {
		ms, _ := strconv.Atoi(s)
		return time.Duration(ms) * time.Millisecond
	}

	for i := 0; i < len(args); i++ {
		var next string
		if i+1 < len(args) {
			next = args[i+1]
		}
		switch args[i] {
		case "depth":
			opts.Depth, _ = strconv.Atoi(next)
			i++
		case "nodes":
			opts.Nodes, _ = strconv.ParseUint(next, 10, 64)
			i++
		case "movetime":
			opts.MoveTime = millis(next)
			i++
		case "infinite":
			opts.Infinite = true
		case "wtime":
			opts.WTime = millis(next)
			i++
		case "btime":
			opts.BTime = millis(next)
			i++
		case "winc":
			opts.WInc = millis(next)
			i++
		case "binc":
			opts.BInc = millis(next)
			i++
		case "movestogo":
			opts.MovesToGo, _ = strconv.Atoi(next)
			i++
		}
	}

	return opts
}

// FormatInfo renders search info as a UCI "info" line.
func FormatInfo(info engine.SearchInfo) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("depth %d", info.Depth))

	// Score
	if engine.IsMateScore(info.Score) {
		parts = append(parts, fmt.Sprintf("score mate %d", engine.MateIn(info.Score)))
	} else {
		parts = append(parts, fmt.Sprintf("score cp %d", info.Score))
	}

	parts = append(parts, fmt.Sprintf("nodes %d", info.Nodes))
	parts = append(parts, fmt.Sprintf("time %d", info.Time.Milliseconds()))

	// NPS
	if info.Time > 0 {
		nps := uint64(float64(info.Nodes) / info.Time.Seconds())
		parts = append(parts, fmt.Sprintf("nps %d", nps))
	}

	if len(info.PV) > 0 {
		pv := make([]string, len(info.PV))
		for i, m := range info.PV {
			pv[i] = m.String()
		}
		parts = append(parts, "pv "+strings.Join(pv, " "))
	}

	return "info " + strings.Join(parts, " ")
}

// handleStop stops the current search and waits for its bestmove.
func (u *UCI) handleStop() {
	if u.cancel == nil {
		return
	}
	u.cancel()
	<-u.searchDone
	u.cancel = nil
}

// finish runs whenever Run returns. A bounded search is allowed to
// complete, an infinite one is stopped, and any CPU profile is flushed.
func (u *UCI) finish() {
	if u.cancel != nil && !u.infinite {
		<-u.searchDone
	}
	u.handleStop()
	u.stopProfile()
}

// handleQuit stops any search and profile.
func (u *UCI) handleQuit() {
	u.handleStop()
	u.stopProfile()
}

func (u *UCI) stopProfile() {
	if u.profileFile != nil {
		pprof.StopCPUProfile()
		u.profileFile.Close()
		u.infof("CPU profile saved")
		u.profileFile = nil
	}
}

// handleSetOption processes "setoption" commands.
func (u *UCI) handleSetOption(args []string) {
	// Format: setoption name <name> value <value>
	var name, value string
	readingName := false
	readingValue := false

	for _, arg := range args {
		switch arg {
		case "name":
			readingName = true
			readingValue = false
		case "value":
			readingName = false
			readingValue = true
		default:
			if readingName {
				if name != "" {
					name += " "
				}
				name += arg
			} else if readingValue {
				if value != "" {
					value += " "
				}
				value += arg
			}
		}
	}

	// Handle options
	switch strings.ToLower(name) {
	case "hash":
		// No transposition table; accepted for GUI compatibility.
	case "debug":
		u.debug = strings.ToLower(value) == "true"
		if u.debug {
			u.infof("Debug mode enabled")
		}
	case "cpuprofile":
		u.stopProfile()
		if value != "" && value != "stop" && value != "<empty>" {
			f, err := os.Create(value)
			if err != nil {
				u.infof("Failed to create profile: %v", err)
				return
			}
			if err := pprof.StartCPUProfile(f); err != nil {
				f.Close()
				u.infof("Failed to start profile: %v", err)
				return
			}
			u.profileFile = f
			u.infof("CPU profiling to %s", value)
		}
	default:
		u.infof("Unknown option: %s", name)
	}
}

// handlePerft runs a divide from the current position.
func (u *UCI) handlePerft(args []string) {
	depth := 5
	if len(args) > 0 {
		d, err := strconv.Atoi(args[0])
		if err != nil || d < 1 {
			u.infof("Invalid perft depth: %s", args[0])
			return
		}
		depth = d
	}

	start := time.Now()
	entries, err := u.mg.ParallelDivide(context.Background(), u.position, depth)
	if err != nil {
		u.infof("perft: %v", err)
		return
	}
	elapsed := time.Since(start)

	var sb strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&sb, "%s: %d\n", e.Move, e.Nodes)
	}
	nodes := board.DivideTotal(entries)
	fmt.Fprintf(&sb, "\nNodes: %d\n", nodes)
	fmt.Fprintf(&sb, "Time: %v\n", elapsed)
	if elapsed > 0 {
		fmt.Fprintf(&sb, "NPS: %.0f", float64(nodes)/elapsed.Seconds())
	}
	u.println(sb.String())
}

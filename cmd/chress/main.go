// Command chress is a bitboard chess position engine. Without batch flags it
// starts the interactive shell; -uci speaks the UCI protocol instead.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime/pprof"
	"time"

	"github.com/hailam/chress/internal/board"
	"github.com/hailam/chress/internal/engine"
	"github.com/hailam/chress/internal/reference"
	"github.com/hailam/chress/internal/render"
	"github.com/hailam/chress/internal/repl"
	"github.com/hailam/chress/internal/storage"
	"github.com/hailam/chress/internal/uci"
)

var (
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	fen        = flag.String("fen", board.StartFEN, "position to load")
	pgnFile    = flag.String("pgn", "", "replay a PGN game and use its final position")
	depth      = flag.Int("depth", 0, "run perft to this depth and exit")
	divide     = flag.Bool("divide", false, "print node counts per root move")
	parallel   = flag.Bool("parallel", false, "split perft across root moves")
	compare    = flag.Bool("compare", false, "check the divide against dragontoothmg")
	useCache   = flag.Bool("cache", false, "cache perft results on disk")
	cacheDir   = flag.String("cache-dir", "", "perft cache directory (default: user data dir)")
	uciMode    = flag.Bool("uci", false, "speak UCI on stdin/stdout")
	svgFile    = flag.String("svg", "", "write an SVG diagram of the position")
	pngFile    = flag.String("png", "", "write a PNG diagram of the position")
	size       = flag.Int("size", render.DefaultSize, "diagram size in pixels")
)

func main() {
	flag.Parse()

	// Start CPU profiling if requested (via flag or environment variable)
	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
		log.Printf("CPU profiling enabled, writing to %s", profilePath)
	}

	mg := board.Default()
	b, err := mg.ParseFEN(*fen)
	if err != nil {
		log.Fatalf("invalid -fen: %v", err)
	}
	if *pgnFile != "" {
		b = replayPGN(mg, *pgnFile)
		fmt.Println(b.FEN())
	}

	var cache *storage.PerftCache
	if *useCache {
		cache, err = storage.Open(*cacheDir)
		if err != nil {
			log.Fatalf("could not open perft cache: %v", err)
		}
		defer cache.Close()
	}

	batch := *pgnFile != ""
	if *svgFile != "" {
		writeDiagram(*svgFile, render.SVG, &b)
		batch = true
	}
	if *pngFile != "" {
		writeDiagram(*pngFile, render.PNG, &b)
		batch = true
	}
	if *depth > 0 {
		if err := runPerft(mg, cache, b); err != nil {
			log.Fatal(err)
		}
		batch = true
	}
	if batch && !*uciMode {
		return
	}

	eng := engine.NewEngine()
	if *uciMode {
		protocol := uci.New(eng, os.Stdin, os.Stdout)
		protocol.SetPosition(b)
		if err := protocol.Run(); err != nil {
			log.Fatal(err)
		}
		return
	}

	shell := repl.New(eng, os.Stdin, os.Stdout)
	shell.SetBoard(b)
	shell.Cache = cache
	shell.RenderSize = *size
	if err := shell.Run(); err != nil {
		log.Fatal(err)
	}
}

func replayPGN(mg *board.MoveGen, path string) board.Board {
	f, err := os.Open(path)
	if err != nil {
		log.Fatalf("could not open PGN: %v", err)
	}
	defer f.Close()

	game, err := reference.ReadPGN(f)
	if err != nil {
		log.Fatal(err)
	}
	b, err := game.Replay(mg)
	if err != nil {
		log.Fatalf("replay %s: %v", path, err)
	}
	return b
}

func writeDiagram(path string, draw func(w io.Writer, b *board.Board, opts render.Options) error, b *board.Board) {
	f, err := os.Create(path)
	if err != nil {
		log.Fatalf("could not create %s: %v", path, err)
	}
	if err := draw(f, b, render.Options{Size: *size}); err != nil {
		f.Close()
		log.Fatalf("render %s: %v", path, err)
	}
	if err := f.Close(); err != nil {
		log.Fatal(err)
	}
}

func runPerft(mg *board.MoveGen, cache *storage.PerftCache, b board.Board) error {
	ctx := context.Background()
	start := time.Now()

	if *compare {
		c := reference.CompareBoard(mg, b, *depth)
		if _, err := c.WriteTo(os.Stdout); err != nil {
			return err
		}
		if !c.OK() {
			return fmt.Errorf("divide(%d) differs from dragontoothmg", *depth)
		}
		return nil
	}

	if *divide {
		var (
			entries []board.DivideEntry
			err     error
		)
		switch {
		case cache != nil:
			entries, _, err = cache.Divide(ctx, mg, b, *depth)
		case *parallel:
			entries, err = mg.ParallelDivide(ctx, b, *depth)
		default:
			entries = mg.Divide(b, *depth)
		}
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Printf("%s: %d\n", e.Move, e.Nodes)
		}
		fmt.Printf("\nNodes: %d\n", board.DivideTotal(entries))
		fmt.Printf("Time: %v\n", time.Since(start))
		return nil
	}

	var (
		nodes uint64
		err   error
	)
	switch {
	case cache != nil:
		nodes, _, err = cache.Perft(ctx, mg, b, *depth)
	case *parallel:
		nodes, err = mg.ParallelPerft(ctx, b, *depth)
	default:
		nodes = mg.Perft(b, *depth)
	}
	if err != nil {
		return err
	}
	elapsed := time.Since(start)
	fmt.Printf("perft(%d) = %d\n", *depth, nodes)
	fmt.Printf("Time: %v", elapsed)
	if elapsed > 0 {
		fmt.Printf(" (%.0f nps)", float64(nodes)/elapsed.Seconds())
	}
	fmt.Println()
	return nil
}

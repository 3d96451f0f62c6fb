package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hailam/chress/internal/board"
)

func openTestCache(t *testing.T) *PerftCache {
	t.Helper()
	c, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		if err := c.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return c
}

func TestPerftRecord(t *testing.T) {
	c := openTestCache(t)
	b := board.NewBoard()

	if _, ok, err := c.LoadPerft(&b, 3); err != nil || ok {
		t.Fatalf("LoadPerft on empty cache = %v, %v", ok, err)
	}

	if err := c.SavePerft(&b, 3, 8902, time.Millisecond); err != nil {
		t.Fatalf("SavePerft: %v", err)
	}
	rec, ok, err := c.LoadPerft(&b, 3)
	if err != nil || !ok {
		t.Fatalf("LoadPerft after save = %v, %v", ok, err)
	}
	if rec.Nodes != 8902 || rec.Depth != 3 {
		t.Errorf("record = %+v", rec)
	}

	if _, ok, _ := c.LoadPerft(&b, 4); ok {
		t.Error("depth 4 served from a depth 3 record")
	}

	// Move counters do not change the move tree, so they share the record.
	later, err := board.ParseFEN("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 12 40")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := c.LoadPerft(&later, 3); !ok {
		t.Error("move counters changed the cache key")
	}
}

func TestCachedPerft(t *testing.T) {
	c := openTestCache(t)
	mg := board.Default()
	b := board.NewBoard()
	ctx := context.Background()

	nodes, cached, err := c.Perft(ctx, mg, b, 3)
	if err != nil || cached || nodes != 8902 {
		t.Fatalf("first Perft = %d, cached=%v, %v", nodes, cached, err)
	}
	nodes, cached, err = c.Perft(ctx, mg, b, 3)
	if err != nil || !cached || nodes != 8902 {
		t.Fatalf("second Perft = %d, cached=%v, %v", nodes, cached, err)
	}
}

func TestCachedDivide(t *testing.T) {
	c := openTestCache(t)
	mg := board.Default()
	b, err := board.ParseFEN("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	want, cached, err := c.Divide(ctx, mg, b, 2)
	if err != nil || cached {
		t.Fatalf("first Divide: cached=%v, %v", cached, err)
	}
	got, cached, err := c.Divide(ctx, mg, b, 2)
	if err != nil || !cached {
		t.Fatalf("second Divide: cached=%v, %v", cached, err)
	}

	if len(got) != len(want) {
		t.Fatalf("cached divide has %d moves, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d = %v, want %v", i, got[i], want[i])
		}
	}
	if total := board.DivideTotal(got); total != 2039 {
		t.Errorf("cached total = %d, want 2039", total)
	}

	stats, err := c.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Divide != 1 || stats.Perft != 0 {
		t.Errorf("Stats = %+v", stats)
	}

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok, _ := c.LoadDivide(&b, 2); ok {
		t.Error("record survived Clear")
	}
}

func TestPersistence(t *testing.T) {
	dir := t.TempDir()
	b := board.NewBoard()

	c, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := c.SavePerft(&b, 2, 400, 0); err != nil {
		t.Fatalf("SavePerft: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	c, err = Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer c.Close()
	if rec, ok, err := c.LoadPerft(&b, 2); err != nil || !ok || rec.Nodes != 400 {
		t.Errorf("after reopen: %+v, %v, %v", rec, ok, err)
	}
}

func TestDataPaths(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_DATA_HOME", base)
	t.Setenv("APPDATA", base)

	dataDir, err := GetDataDir()
	if err != nil {
		t.Fatalf("GetDataDir failed: %v", err)
	}
	if filepath.Base(dataDir) != appName {
		t.Errorf("data dir %s does not end in %s", dataDir, appName)
	}

	dbDir, err := GetDatabaseDir()
	if err != nil {
		t.Fatalf("GetDatabaseDir failed: %v", err)
	}
	if _, err := os.Stat(dbDir); err != nil {
		t.Errorf("database directory was not created: %v", err)
	}
}

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/hailam/chress/internal/board"
)

// Storage key prefixes
const (
	prefixPerft  = "perft/"
	prefixDivide = "divide/"
)

// PerftRecord is a stored perft result.
type PerftRecord struct {
	Position string        `json:"position"` // FEN without move counters
	Depth    int           `json:"depth"`
	Nodes    uint64        `json:"nodes"`
	Elapsed  time.Duration `json:"elapsed"`
	Saved    time.Time     `json:"saved"`
}

// DivideRecord is a stored divide result.
type DivideRecord struct {
	Position string            `json:"position"`
	Depth    int               `json:"depth"`
	Moves    map[string]uint64 `json:"moves"`
	Saved    time.Time         `json:"saved"`
}

// CacheStats counts stored records by kind.
type CacheStats struct {
	Perft  int
	Divide int
}

// PerftCache wraps BadgerDB for persistent storage of perft results keyed
// by position hash and depth.
type PerftCache struct {
	db *badger.DB
}

// Open opens the cache in dir, or in the default data directory when dir
// is empty.
func Open(dir string) (*PerftCache, error) {
	if dir == "" {
		var err error
		dir, err = GetDatabaseDir()
		if err != nil {
			return nil, err
		}
	}

	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open perft cache %s: %w", dir, err)
	}

	return &PerftCache{db: db}, nil
}

// Close closes the database
func (c *PerftCache) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// positionKey identifies a position for move generation purposes: the move
// counters never change the move tree.
func positionKey(b *board.Board) string {
	fields := strings.Fields(b.FEN())
	return strings.Join(fields[:4], " ")
}

func recordKey(prefix string, b *board.Board, depth int) []byte {
	return fmt.Appendf(nil, "%s%016x/%d", prefix, b.Hash(), depth)
}

func (c *PerftCache) put(key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}

// get decodes the value at key into v and reports whether it was present.
func (c *PerftCache) get(key []byte, v any) (bool, error) {
	found := false
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		})
	})
	return found, err
}

// SavePerft stores a perft count for b at depth.
func (c *PerftCache) SavePerft(b *board.Board, depth int, nodes uint64, elapsed time.Duration) error {
	return c.put(recordKey(prefixPerft, b, depth), PerftRecord{
		Position: positionKey(b),
		Depth:    depth,
		Nodes:    nodes,
		Elapsed:  elapsed,
		Saved:    time.Now(),
	})
}

// LoadPerft returns a stored perft count. A record whose position does not
// match b (a hash collision) counts as missing.
func (c *PerftCache) LoadPerft(b *board.Board, depth int) (PerftRecord, bool, error) {
	var rec PerftRecord
	found, err := c.get(recordKey(prefixPerft, b, depth), &rec)
	if err != nil || !found || rec.Position != positionKey(b) {
		return PerftRecord{}, false, err
	}
	return rec, true, nil
}

// SaveDivide stores a divide listing for b at depth.
func (c *PerftCache) SaveDivide(b *board.Board, depth int, entries []board.DivideEntry) error {
	moves := make(map[string]uint64, len(entries))
	for _, e := range entries {
		moves[e.Move.String()] = e.Nodes
	}
	return c.put(recordKey(prefixDivide, b, depth), DivideRecord{
		Position: positionKey(b),
		Depth:    depth,
		Moves:    moves,
		Saved:    time.Now(),
	})
}

// LoadDivide returns a stored divide listing in move order.
func (c *PerftCache) LoadDivide(b *board.Board, depth int) ([]board.DivideEntry, bool, error) {
	var rec DivideRecord
	found, err := c.get(recordKey(prefixDivide, b, depth), &rec)
	if err != nil || !found || rec.Position != positionKey(b) {
		return nil, false, err
	}

	entries := make([]board.DivideEntry, 0, len(rec.Moves))
	for text, nodes := range rec.Moves {
		m, err := board.ParseMove(text)
		if err != nil {
			return nil, false, fmt.Errorf("cached divide for %s: %w", rec.Position, err)
		}
		entries = append(entries, board.DivideEntry{Move: m, Nodes: nodes})
	}
	board.SortDivide(entries)
	return entries, true, nil
}

// Perft returns the perft count of b at depth, computing it in parallel
// and storing it on a miss. cached reports whether the value came from
// the store.
func (c *PerftCache) Perft(ctx context.Context, mg *board.MoveGen, b board.Board, depth int) (nodes uint64, cached bool, err error) {
	if rec, ok, err := c.LoadPerft(&b, depth); err != nil {
		return 0, false, err
	} else if ok {
		return rec.Nodes, true, nil
	}

	start := time.Now()
	nodes, err = mg.ParallelPerft(ctx, b, depth)
	if err != nil {
		return 0, false, err
	}
	if err := c.SavePerft(&b, depth, nodes, time.Since(start)); err != nil {
		return 0, false, err
	}
	return nodes, false, nil
}

// Divide is the divide counterpart of Perft.
func (c *PerftCache) Divide(ctx context.Context, mg *board.MoveGen, b board.Board, depth int) (entries []board.DivideEntry, cached bool, err error) {
	if entries, ok, err := c.LoadDivide(&b, depth); err != nil {
		return nil, false, err
	} else if ok {
		return entries, true, nil
	}

	entries, err = mg.ParallelDivide(ctx, b, depth)
	if err != nil {
		return nil, false, err
	}
	if err := c.SaveDivide(&b, depth, entries); err != nil {
		return nil, false, err
	}
	return entries, false, nil
}

// Stats counts the stored records.
func (c *PerftCache) Stats() (CacheStats, error) {
	var stats CacheStats
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			key := string(it.Item().Key())
			switch {
			case strings.HasPrefix(key, prefixPerft):
				stats.Perft++
			case strings.HasPrefix(key, prefixDivide):
				stats.Divide++
			}
		}
		return nil
	})
	return stats, err
}

// Clear removes every stored record.
func (c *PerftCache) Clear() error {
	return c.db.DropAll()
}

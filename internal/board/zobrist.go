package board

// Zobrist keys for position hashing, drawn from a fixed-seed PRNG so hashes
// are stable across runs and usable as persistent cache keys.
var (
	zobristPiece      [2][6][64]uint64 // [Color][PieceType][Square]
	zobristEnPassant  [8]uint64        // one per file
	zobristCastling   [16]uint64       // indexed by CastlingRights
	zobristSideToMove uint64           // XOR when black to move
)

func init() {
	initZobrist()
}

// prng is a small reproducible generator used for Zobrist keys and for
// searching replacement magic numbers.
type prng struct {
	state uint64
}

func newPRNG(seed uint64) *prng {
	return &prng{state: seed}
}

// xorshift64*
func (p *prng) next() uint64 {
	p.state ^= p.state >> 12
	p.state ^= p.state << 25
	p.state ^= p.state >> 27
	return p.state * 0x2545F4914F6CDD1D
}

func initZobrist() {
	rng := newPRNG(0x98F107A2BEEF1234)

	for c := White; c <= Black; c++ {
		for pt := Pawn; pt <= King; pt++ {
			for sq := A1; sq <= H8; sq++ {
				zobristPiece[c][pt][sq] = rng.next()
			}
		}
	}
	for file := 0; file < 8; file++ {
		zobristEnPassant[file] = rng.next()
	}
	// The empty set hashes to zero so a position without rights needs no key.
	for i := 1; i < 16; i++ {
		zobristCastling[i] = rng.next()
	}
	zobristSideToMove = rng.next()
}

// Hash returns the Zobrist hash of the position. The move counters are not
// part of the hash, so transpositions with different clocks collide on
// purpose.
func (b *Board) Hash() uint64 {
	var h uint64
	for c := White; c <= Black; c++ {
		for pt := Pawn; pt <= King; pt++ {
			b.pieces[c][pt].ForEach(func(sq Square) {
				h ^= zobristPiece[c][pt][sq]
			})
		}
	}
	h ^= zobristCastling[b.flags.Castling()]
	if file, ok := b.flags.EnPassantFile(); ok {
		h ^= zobristEnPassant[file]
	}
	if b.sideToMove == Black {
		h ^= zobristSideToMove
	}
	return h
}

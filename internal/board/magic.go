package board

import (
	"log"
	"sync"
)

// Magic holds the perfect-hash parameters of one slider on one square.
type Magic struct {
	Mask   Bitboard // relevant occupancy, ray squares minus the last edge square
	Magic  uint64
	Shift  uint8  // 64 - popcount(Mask)
	Offset uint32 // first entry of this square in the flat table
}

// Index returns the table slot for the given occupancy.
func (m *Magic) Index(occupied Bitboard) uint32 {
	return m.Offset + uint32((uint64(occupied&m.Mask)*m.Magic)>>m.Shift)
}

const (
	rookTableSize   = 102400
	bishopTableSize = 5248
)

var bishopMagicNumbers = [64]uint64{
	0x0002020202020200, 0x0002020202020000, 0x0004010202000000, 0x0004040080000000,
	0x0001104000000000, 0x0000821040000000, 0x0000410410400000, 0x0000104104104000,
	0x0000040404040400, 0x0000020202020200, 0x0000040102020000, 0x0000040400800000,
	0x0000011040000000, 0x0000008210400000, 0x0000004104104000, 0x0000002082082000,
	0x0004000808080800, 0x0002000404040400, 0x0001000202020200, 0x0000800802004000,
	0x0000800400A00000, 0x0000200100884000, 0x0000400082082000, 0x0000200041041000,
	0x0002080010101000, 0x0001040008080800, 0x0000208004010400, 0x0000404004010200,
	0x0000840000802000, 0x0000404002011000, 0x0000808001041000, 0x0000404000820800,
	0x0001041000202000, 0x0000820800101000, 0x0000104400080800, 0x0000020080080080,
	0x0000404040040100, 0x0000808100020100, 0x0001010100020800, 0x0000808080010400,
	0x0000820820004000, 0x0000410410002000, 0x0000082088001000, 0x0000002011000800,
	0x0000080100400400, 0x0001010101000200, 0x0002020202000400, 0x0001010101000200,
	0x0000410410400000, 0x0000208208200000, 0x0000002084100000, 0x0000000020880000,
	0x0000001002020000, 0x0000040408020000, 0x0004040404040000, 0x0002020202020000,
	0x0000104104104000, 0x0000002082082000, 0x0000000020841000, 0x0000000000208800,
	0x0000000010020200, 0x0000000404080200, 0x0000040404040400, 0x0002020202020200,
}

var rookMagicNumbers = [64]uint64{
	0x0080001020400080, 0x0040001000200040, 0x0080081000200080, 0x0080040800100080,
	0x0080020400080080, 0x0080010200040080, 0x0080008001000200, 0x0080002040800100,
	0x0000800020400080, 0x0000400020005000, 0x0000801000200080, 0x0000800800100080,
	0x0000800400080080, 0x0000800200040080, 0x0000800100020080, 0x0000800040800100,
	0x0000208000400080, 0x0000404000201000, 0x0000808010002000, 0x0000808008001000,
	0x0000808004000800, 0x0000808002000400, 0x0000010100020004, 0x0000020000408104,
	0x0000208080004000, 0x0000200040005000, 0x0000100080200080, 0x0000080080100080,
	0x0000040080080080, 0x0000020080040080, 0x0000010080800200, 0x0000800080004100,
	0x0000204000800080, 0x0000200040401000, 0x0000100080802000, 0x0000080080801000,
	0x0000040080800800, 0x0000020080800400, 0x0000020001010004, 0x0000800040800100,
	0x0000204000808000, 0x0000200040008080, 0x0000100020008080, 0x0000080010008080,
	0x0000040008008080, 0x0000020004008080, 0x0000010002008080, 0x0000004081020004,
	0x0000204000800080, 0x0000200040008080, 0x0000100020008080, 0x0000080010008080,
	0x0000040008008080, 0x0000020004008080, 0x0000800100020080, 0x0000800041000080,
	0x00FFFCDDFCED714A, 0x007FFCDDFCED714A, 0x003FFFCDFFD88096, 0x0000040810002101,
	0x0001000204080011, 0x0001000204000801, 0x0001000082000401, 0x0001FFFAABFAD1A2,
}

var (
	rookDirections   = [4][2]int{{0, 1}, {0, -1}, {1, 0}, {-1, 0}}
	bishopDirections = [4][2]int{{1, 1}, {-1, 1}, {1, -1}, {-1, -1}}
)

// MoveGen owns the slider attack tables. It is immutable once built and safe
// to share between goroutines and Board values.
type MoveGen struct {
	rookMagics   [64]Magic
	bishopMagics [64]Magic
	rookTable    []Bitboard
	bishopTable  []Bitboard
}

// NewMoveGen builds the rook and bishop attack tables.
func NewMoveGen() *MoveGen {
	mg := &MoveGen{
		rookTable:   make([]Bitboard, rookTableSize),
		bishopTable: make([]Bitboard, bishopTableSize),
	}
	fillSliderTable("rook", rookDirections, &rookMagicNumbers, &mg.rookMagics, mg.rookTable)
	fillSliderTable("bishop", bishopDirections, &bishopMagicNumbers, &mg.bishopMagics, mg.bishopTable)
	return mg
}

// Default returns the process-wide MoveGen, building it on first use.
var Default = sync.OnceValue(NewMoveGen)

// RookAttacks returns the rook attack set from sq through the given occupancy.
func (mg *MoveGen) RookAttacks(sq Square, occupied Bitboard) Bitboard {
	m := &mg.rookMagics[sq]
	return mg.rookTable[m.Index(occupied)]
}

// BishopAttacks returns the bishop attack set from sq through the given occupancy.
func (mg *MoveGen) BishopAttacks(sq Square, occupied Bitboard) Bitboard {
	m := &mg.bishopMagics[sq]
	return mg.bishopTable[m.Index(occupied)]
}

// QueenAttacks is the union of the rook and bishop lookups.
func (mg *MoveGen) QueenAttacks(sq Square, occupied Bitboard) Bitboard {
	return mg.RookAttacks(sq, occupied) | mg.BishopAttacks(sq, occupied)
}

// RookMagic exposes the rook hashing parameters of a square.
func (mg *MoveGen) RookMagic(sq Square) Magic {
	return mg.rookMagics[sq]
}

// BishopMagic exposes the bishop hashing parameters of a square.
func (mg *MoveGen) BishopMagic(sq Square) Magic {
	return mg.bishopMagics[sq]
}

// fillSliderTable fills one flat table square by square. A multiplier that
// maps two blocker sets with different attacks to one slot is replaced by a
// searched one with the same index width, so offsets never move.
func fillSliderTable(name string, dirs [4][2]int, numbers *[64]uint64, magics *[64]Magic, table []Bitboard) {
	var offset uint32
	for sq := A1; sq <= H8; sq++ {
		mask := relevantMask(sq, dirs)
		n := mask.PopCount()
		m := Magic{
			Mask:   mask,
			Magic:  numbers[sq],
			Shift:  uint8(64 - n),
			Offset: offset,
		}

		size := 1 << n
		occupancies := make([]Bitboard, 0, size)
		attacks := make([]Bitboard, 0, size)
		mask.ForEachSubset(func(subset Bitboard) {
			occupancies = append(occupancies, subset)
			attacks = append(attacks, slidingAttacks(sq, subset, dirs))
		})

		slots := table[offset : offset+uint32(size)]
		if !tryMagic(m, occupancies, attacks, slots) {
			m.Magic = findMagic(m, occupancies, attacks, slots, uint64(sq)+1)
			log.Printf("board: replaced %s magic for %s with %#016x", name, sq, m.Magic)
		}

		magics[sq] = m
		offset += uint32(size)
	}
}

// tryMagic writes every attack set into slots and reports false on a
// destructive collision. Attack sets are never empty, so a zero slot is free.
func tryMagic(m Magic, occupancies, attacks []Bitboard, slots []Bitboard) bool {
	clear(slots)
	for i, occ := range occupancies {
		idx := (uint64(occ) * m.Magic) >> m.Shift
		switch slots[idx] {
		case 0:
			slots[idx] = attacks[i]
		case attacks[i]:
		default:
			return false
		}
	}
	return true
}

// findMagic searches sparse random multipliers until one hashes the square
// without destructive collisions. The generator is seeded per square so the
// outcome is deterministic.
func findMagic(m Magic, occupancies, attacks []Bitboard, slots []Bitboard, seed uint64) uint64 {
	rng := newPRNG(0x9E3779B97F4A7C15 ^ seed)
	for {
		candidate := rng.next() & rng.next() & rng.next()
		if Bitboard((uint64(m.Mask)*candidate)>>56).PopCount() < 6 {
			continue
		}
		m.Magic = candidate
		if tryMagic(m, occupancies, attacks, slots) {
			return candidate
		}
	}
}

// relevantMask returns the squares whose occupancy can change the slider's
// attacks from sq: every ray square except the last one before the edge.
func relevantMask(sq Square, dirs [4][2]int) Bitboard {
	var mask Bitboard
	for _, d := range dirs {
		f, r := sq.File()+d[0], sq.Rank()+d[1]
		for onBoard(f+d[0], r+d[1]) {
			mask |= SquareBB(NewSquare(f, r))
			f, r = f+d[0], r+d[1]
		}
	}
	return mask
}

// slidingAttacks ray-casts from sq in each direction, stopping on the first
// occupied square (which is included).
func slidingAttacks(sq Square, occupied Bitboard, dirs [4][2]int) Bitboard {
	var attacks Bitboard
	for _, d := range dirs {
		f, r := sq.File()+d[0], sq.Rank()+d[1]
		for onBoard(f, r) {
			s := NewSquare(f, r)
			attacks |= SquareBB(s)
			if occupied.IsSet(s) {
				break
			}
			f, r = f+d[0], r+d[1]
		}
	}
	return attacks
}

func onBoard(file, rank int) bool {
	return file >= 0 && file < 8 && rank >= 0 && rank < 8
}

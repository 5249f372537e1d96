package minimax

import (
	"github.com/pbnjay/memory"
	"github.com/rs/zerolog/log"

	"github.com/dbltnk/uros-sub000/move"
)

const (
	TTExact = 0x01
	TTLower = 0x02
	TTUpper = 0x03
)

const entrySize = 24

// minTableSize is the smallest allowed table, as a power of 2. Small
// solves (and tests) don't need the memory-proportional default.
const minTableSize = 16

const depthMask = (1 << 6) - 1

// TableEntry is a transposition table entry. The full position hash is
// stored so that an index collision is never mistaken for a hit.
type TableEntry struct {
	hash         uint64
	play         uint64
	score        float32
	flagAndDepth uint8
}

func (e TableEntry) valid() bool {
	return e.hash != 0
}

func (e TableEntry) flag() uint8 {
	return e.flagAndDepth >> 6
}

func (e TableEntry) depth() uint8 {
	return e.flagAndDepth & depthMask
}

func (e TableEntry) move() uint64 {
	return e.play
}

// TranspositionTable is a fixed-size cache of already-searched
// positions, indexed by the low bits of the position hash.
type TranspositionTable struct {
	table        []TableEntry
	created      uint64
	lookups      uint64
	hits         uint64
	t2collisions uint64
	sizePowerOf2 int
}

func (t *TranspositionTable) lookup(zval uint64) TableEntry {
	t.lookups++
	idx := zval & uint64(len(t.table)-1)
	entry := t.table[idx]
	if entry.hash != zval {
		if entry.valid() {
			t.t2collisions++
		}
		return TableEntry{}
	}
	t.hits++
	return entry
}

func (t *TranspositionTable) store(zval uint64, entry TableEntry) {
	idx := zval & uint64(len(t.table)-1)
	entry.hash = zval
	// Just overwrite whatever is there for now.
	t.table[idx] = entry
	t.created++
}

// Reset allocates the table to take up the given fraction of total
// system memory, rounded down to a power of 2 entries.
func (t *TranspositionTable) Reset(fractionOfMemory float64) {
	t.created = 0
	t.lookups = 0
	t.hits = 0
	t.t2collisions = 0
	totalMem := memory.TotalMemory()
	desiredNElems := fractionOfMemory * float64(totalMem) / float64(entrySize)

	// find biggest power of 2 lower than desired.
	sizePowerOf2 := minTableSize
	for 1<<(sizePowerOf2+1) < int(desiredNElems) {
		sizePowerOf2++
	}

	if t.table != nil && t.sizePowerOf2 == sizePowerOf2 {
		clear(t.table)
		log.Info().Int("power-of-2", sizePowerOf2).Msg("cleared-transposition-table")
		return
	}
	t.table = nil
	numElems := 1 << sizePowerOf2
	t.sizePowerOf2 = sizePowerOf2
	t.table = make([]TableEntry, numElems)
	log.Info().Int("num-elems", numElems).
		Float64("desired-num-elems", desiredNElems).
		Int("estimated-total-memory-bytes", numElems*entrySize).
		Msg("created-transposition-table")
}

func (t *TranspositionTable) hitRate() float64 {
	if t.lookups == 0 {
		return 0
	}
	return float64(t.hits) / float64(t.lookups)
}

// A move packed into a uint64 for table entries. Coordinates on a
// playable board are far smaller than the field widths used here.
const (
	pmPresent   = uint64(1) << 63
	pmHouse     = uint64(1) << 0
	pmTileID    = 1
	pmTileRow   = 17
	pmTileCol   = 22
	pmBoardRow  = 27
	pmBoardCol  = 35
	pmPlayerBit = uint64(1) << 43
)

func packMove(m *move.Move) uint64 {
	if m == nil {
		return 0
	}
	p := pmPresent
	p |= uint64(m.TileID()) << pmTileID & (0xffff << pmTileID)
	p |= uint64(m.TileRow()) << pmTileRow
	p |= uint64(m.TileCol()) << pmTileCol
	if m.Player() == 1 {
		p |= pmPlayerBit
	}
	if m.Action() == move.MoveTypePlaceHouse {
		p |= pmHouse
		return p
	}
	p |= uint64(m.BoardRow()) << pmBoardRow & (0xff << pmBoardRow)
	p |= uint64(m.BoardCol()) << pmBoardCol & (0xff << pmBoardCol)
	return p
}

func unpackMove(p uint64) *move.Move {
	if p&pmPresent == 0 {
		return nil
	}
	tileID := int(p >> pmTileID & 0xffff)
	tileRow := int(p >> pmTileRow & 0x1f)
	tileCol := int(p >> pmTileCol & 0x1f)
	player := 0
	if p&pmPlayerBit != 0 {
		player = 1
	}
	if p&pmHouse != 0 {
		return move.NewPlaceHouseMove(tileID, tileRow, tileCol, player)
	}
	boardRow := int(p >> pmBoardRow & 0xff)
	boardCol := int(p >> pmBoardCol & 0xff)
	return move.NewPlaceTileMove(tileID, tileRow, tileCol, boardRow, boardCol, player)
}

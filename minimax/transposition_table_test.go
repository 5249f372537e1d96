package minimax

import (
	"testing"

	"github.com/matryer/is"

	"github.com/dbltnk/uros-sub000/move"
)

func TestPackMoveRoundTrip(t *testing.T) {
	is := is.New(t)

	tile := move.NewPlaceTileMove(3, 1, 0, 4, 5, 1)
	is.True(unpackMove(packMove(tile)).Equals(tile))

	house := move.NewPlaceHouseMove(12, 2, 3, 0)
	is.True(unpackMove(packMove(house)).Equals(house))

	is.Equal(packMove(nil), uint64(0))
	is.Equal(unpackMove(0), nil)
}

func TestTableStoreLookup(t *testing.T) {
	is := is.New(t)
	tt := &TranspositionTable{}
	tt.Reset(1e-12)

	key := uint64(0xdeadbeef)
	play := move.NewPlaceHouseMove(1, 0, 1, 0)
	tt.store(key, TableEntry{
		score:        -42.5,
		flagAndDepth: TTLower<<6 | 7,
		play:         packMove(play),
	})

	entry := tt.lookup(key)
	is.True(entry.valid())
	is.Equal(entry.score, float32(-42.5))
	is.Equal(entry.flag(), uint8(TTLower))
	is.Equal(entry.depth(), uint8(7))
	is.True(unpackMove(entry.move()).Equals(play))

	is.True(!tt.lookup(key + 1).valid())
}

func TestTableIndexCollision(t *testing.T) {
	is := is.New(t)
	tt := &TranspositionTable{}
	tt.Reset(1e-12)

	// Keys agreeing on the low bits share a slot; the full stored hash
	// keeps the second from reading the first's entry.
	k1 := uint64(0xdeadbeef)
	k2 := k1 ^ (uint64(1) << 40)
	tt.store(k1, TableEntry{score: 7, flagAndDepth: TTExact<<6 | 1})
	is.True(!tt.lookup(k2).valid())
	is.True(tt.lookup(k1).valid())
	is.Equal(tt.t2collisions, uint64(1))
}

func TestTableReset(t *testing.T) {
	is := is.New(t)
	tt := &TranspositionTable{}
	tt.Reset(1e-12)
	is.Equal(len(tt.table), 1<<minTableSize)

	k := uint64(12345)
	tt.store(k, TableEntry{score: 1, flagAndDepth: TTExact<<6 | 1})
	is.True(tt.lookup(k).valid())

	// Re-resetting at the same size clears entries in place.
	tt.Reset(1e-12)
	is.True(!tt.lookup(k).valid())
	is.Equal(len(tt.table), 1<<minTableSize)
}

package io

import (
	"math/rand/v2"

	"github.com/ezrec/chip8/cpu"
)

// Random is a seeded pseudo-random byte source.
type Random struct {
	rng *rand.Rand
}

var _ cpu.Random = (*Random)(nil)

// NewRandom creates a random source. Equal seeds give equal sequences.
func NewRandom(seed uint64) *Random {
	return &Random{
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

func (rs *Random) Byte() uint8 {
	return uint8(rs.rng.UintN(256))
}

// Sequence is a random source that repeats a fixed byte sequence.
type Sequence struct {
	Data  []uint8
	index int
}

var _ cpu.Random = (*Sequence)(nil)

// Byte returns the next byte of the sequence, or 0 if it is empty.
func (seq *Sequence) Byte() (value uint8) {
	if len(seq.Data) == 0 {
		return
	}

	value = seq.Data[seq.index%len(seq.Data)]
	seq.index++

	return
}

func (seq *Sequence) Rewind() {
	seq.index = 0
}

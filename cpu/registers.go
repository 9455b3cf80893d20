package cpu

import (
	"fmt"
)

const (
	REGISTER_COUNT = 16  // General purpose registers V0-VF.
	REG_FLAG       = 0xf // VF, overwritten by carry, borrow, shift and collision.
)

// Registers is the register file.
type Registers struct {
	V  [REGISTER_COUNT]uint8 // General purpose registers.
	I  uint16                // Address register.
	Pc uint16                // Program counter.
}

// Reset clears the registers and points the program counter at the
// program base.
func (reg *Registers) Reset() {
	clear(reg.V[:])
	reg.I = 0
	reg.Pc = PROGRAM_BASE
}

// Get a general purpose register.
func (reg *Registers) Get(x uint8) uint8 {
	return reg.V[x&0xf]
}

// Set a general purpose register.
func (reg *Registers) Set(x uint8, value uint8) {
	reg.V[x&0xf] = value
}

// Flag returns VF.
func (reg *Registers) Flag() uint8 {
	return reg.V[REG_FLAG]
}

// SetFlag sets VF to 1 if on, 0 otherwise.
func (reg *Registers) SetFlag(on bool) {
	reg.V[REG_FLAG] = 0
	if on {
		reg.V[REG_FLAG] = 1
	}
}

// String lists V0-VF, I and PC on one line.
func (reg *Registers) String() (text string) {
	for n, v := range reg.V {
		text += fmt.Sprintf("v%x:%02X ", n, v)
	}
	text += fmt.Sprintf("i:%03X pc:%03X", reg.I, reg.Pc)
	return
}

package cpu

import (
	"fmt"
	"strings"
)

// CodeFamily is the top nibble of an instruction word.
type CodeFamily int

//go:generate go tool stringer -linecomment -type=CodeFamily
const (
	OP_SYS     = CodeFamily(0x0) // sys
	OP_JP      = CodeFamily(0x1) // jp
	OP_CALL    = CodeFamily(0x2) // call
	OP_SE_IMM  = CodeFamily(0x3) // se
	OP_SNE_IMM = CodeFamily(0x4) // sne
	OP_SE_REG  = CodeFamily(0x5) // se
	OP_LD_IMM  = CodeFamily(0x6) // ld
	OP_ADD_IMM = CodeFamily(0x7) // add
	OP_ALU     = CodeFamily(0x8) // alu
	OP_SNE_REG = CodeFamily(0x9) // sne
	OP_LD_I    = CodeFamily(0xa) // ld
	OP_JP_V0   = CodeFamily(0xb) // jp
	OP_RND     = CodeFamily(0xc) // rnd
	OP_DRW     = CodeFamily(0xd) // drw
	OP_KEY     = CodeFamily(0xe) // key
	OP_MISC    = CodeFamily(0xf) // misc
)

// CodeSysOp is the low 12 bits of a family 0 instruction.
type CodeSysOp int

//go:generate go tool stringer -linecomment -type=CodeSysOp
const (
	SYS_OP_CLS = CodeSysOp(0x0e0) // cls
	SYS_OP_RET = CodeSysOp(0x0ee) // ret
)

// CodeAluOp is an arithmetic/logic operation of family 8.
type CodeAluOp int

//go:generate go tool stringer -linecomment -type=CodeAluOp
const (
	ALU_OP_LD   = CodeAluOp(0x0) // ld
	ALU_OP_OR   = CodeAluOp(0x1) // or
	ALU_OP_AND  = CodeAluOp(0x2) // and
	ALU_OP_XOR  = CodeAluOp(0x3) // xor
	ALU_OP_ADD  = CodeAluOp(0x4) // add
	ALU_OP_SUB  = CodeAluOp(0x5) // sub
	ALU_OP_SHR  = CodeAluOp(0x6) // shr
	ALU_OP_SUBN = CodeAluOp(0x7) // subn
	ALU_OP_SHL  = CodeAluOp(0xe) // shl
)

// CodeKeyOp is a keypad skip of family E.
type CodeKeyOp int

//go:generate go tool stringer -linecomment -type=CodeKeyOp
const (
	KEY_OP_SKP  = CodeKeyOp(0x9e) // skp
	KEY_OP_SKNP = CodeKeyOp(0xa1) // sknp
)

// CodeMiscOp is a timer, keypad or memory operation of family F.
type CodeMiscOp int

//go:generate go tool stringer -linecomment -type=CodeMiscOp
const (
	MISC_OP_LD_VX_DT = CodeMiscOp(0x07) // ld vx, dt
	MISC_OP_LD_VX_K  = CodeMiscOp(0x0a) // ld vx, k
	MISC_OP_LD_DT_VX = CodeMiscOp(0x15) // ld dt, vx
	MISC_OP_LD_ST_VX = CodeMiscOp(0x18) // ld st, vx
	MISC_OP_ADD_I_VX = CodeMiscOp(0x1e) // add i, vx
	MISC_OP_LD_F_VX  = CodeMiscOp(0x29) // ld f, vx
	MISC_OP_LD_B_VX  = CodeMiscOp(0x33) // ld b, vx
	MISC_OP_LD_MEM   = CodeMiscOp(0x55) // ld [i], vx
	MISC_OP_LD_REG   = CodeMiscOp(0x65) // ld vx, [i]
)

// Code is a single decoded instruction word and the address it was
// fetched from.
type Code struct {
	Pc   uint16
	Word uint16
}

// Family returns the instruction family (top nibble).
func (code Code) Family() CodeFamily {
	return CodeFamily(code.Word >> 12)
}

// X returns the first register operand.
func (code Code) X() uint8 {
	return uint8(code.Word>>8) & 0xf
}

// Y returns the second register operand.
func (code Code) Y() uint8 {
	return uint8(code.Word>>4) & 0xf
}

// N returns the low nibble.
func (code Code) N() uint8 {
	return uint8(code.Word) & 0xf
}

// NN returns the low byte.
func (code Code) NN() uint8 {
	return uint8(code.Word)
}

// NNN returns the low 12 bits.
func (code Code) NNN() uint16 {
	return code.Word & 0xfff
}

// Next returns the address of the following instruction.
func (code Code) Next() uint16 {
	return code.Pc + 2
}

// Skip returns the address after the following instruction.
func (code Code) Skip() uint16 {
	return code.Pc + 4
}

// String disassembles the instruction.
func (code Code) String() string {
	x, y := code.X(), code.Y()

	switch code.Family() {
	case OP_SYS:
		switch op := CodeSysOp(code.NNN()); op {
		case SYS_OP_CLS, SYS_OP_RET:
			return op.String()
		}
		return fmt.Sprintf("sys 0x%03x", code.NNN())
	case OP_JP:
		return fmt.Sprintf("jp 0x%03x", code.NNN())
	case OP_CALL:
		return fmt.Sprintf("call 0x%03x", code.NNN())
	case OP_SE_IMM:
		return fmt.Sprintf("se v%x, 0x%02x", x, code.NN())
	case OP_SNE_IMM:
		return fmt.Sprintf("sne v%x, 0x%02x", x, code.NN())
	case OP_SE_REG:
		if code.N() == 0 {
			return fmt.Sprintf("se v%x, v%x", x, y)
		}
	case OP_LD_IMM:
		return fmt.Sprintf("ld v%x, 0x%02x", x, code.NN())
	case OP_ADD_IMM:
		return fmt.Sprintf("add v%x, 0x%02x", x, code.NN())
	case OP_ALU:
		switch op := CodeAluOp(code.N()); op {
		case ALU_OP_LD, ALU_OP_OR, ALU_OP_AND, ALU_OP_XOR, ALU_OP_ADD,
			ALU_OP_SUB, ALU_OP_SHR, ALU_OP_SUBN, ALU_OP_SHL:
			return fmt.Sprintf("%v v%x, v%x", op, x, y)
		}
	case OP_SNE_REG:
		if code.N() == 0 {
			return fmt.Sprintf("sne v%x, v%x", x, y)
		}
	case OP_LD_I:
		return fmt.Sprintf("ld i, 0x%03x", code.NNN())
	case OP_JP_V0:
		return fmt.Sprintf("jp v0, 0x%03x", code.NNN())
	case OP_RND:
		return fmt.Sprintf("rnd v%x, 0x%02x", x, code.NN())
	case OP_DRW:
		return fmt.Sprintf("drw v%x, v%x, %d", x, y, code.N())
	case OP_KEY:
		switch op := CodeKeyOp(code.NN()); op {
		case KEY_OP_SKP, KEY_OP_SKNP:
			return fmt.Sprintf("%v v%x", op, x)
		}
	case OP_MISC:
		switch op := CodeMiscOp(code.NN()); op {
		case MISC_OP_LD_VX_DT, MISC_OP_LD_VX_K, MISC_OP_LD_DT_VX,
			MISC_OP_LD_ST_VX, MISC_OP_ADD_I_VX, MISC_OP_LD_F_VX,
			MISC_OP_LD_B_VX, MISC_OP_LD_MEM, MISC_OP_LD_REG:
			return strings.Replace(op.String(), "vx", fmt.Sprintf("v%x", x), 1)
		}
	}

	return fmt.Sprintf(".word 0x%04x", code.Word)
}

// MakeCodeAddr creates an instruction with a 12-bit address operand.
func MakeCodeAddr(op CodeFamily, nnn uint16) uint16 {
	return uint16(op)<<12 | (nnn & 0xfff)
}

// MakeCodeImm creates an instruction with a register and a byte operand.
func MakeCodeImm(op CodeFamily, x uint8, nn uint8) uint16 {
	return uint16(op)<<12 | uint16(x&0xf)<<8 | uint16(nn)
}

// MakeCodeReg creates an instruction with two registers and a nibble.
func MakeCodeReg(op CodeFamily, x uint8, y uint8, n uint8) uint16 {
	return uint16(op)<<12 | uint16(x&0xf)<<8 | uint16(y&0xf)<<4 | uint16(n&0xf)
}

// MakeCodeAlu creates a family 8 instruction.
func MakeCodeAlu(op CodeAluOp, x uint8, y uint8) uint16 {
	return MakeCodeReg(OP_ALU, x, y, uint8(op))
}

// MakeCodeKey creates a family E instruction.
func MakeCodeKey(op CodeKeyOp, x uint8) uint16 {
	return MakeCodeImm(OP_KEY, x, uint8(op))
}

// MakeCodeMisc creates a family F instruction.
func MakeCodeMisc(op CodeMiscOp, x uint8) uint16 {
	return MakeCodeImm(OP_MISC, x, uint8(op))
}

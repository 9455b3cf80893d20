package cpu

import (
	"encoding/binary"
	"fmt"
	"iter"
	"strings"
)

// Opcode is a single assembled source line.
type Opcode struct {
	LineNo    int      // Source line number.
	Addr      int      // Load address of the first byte.
	Words     []string // Source words, after equate substitution.
	Bytes     []byte   // Assembled bytes.
	LinkLabel string   // Label whose address is merged into the low 12 bits.
}

type Program struct {
	Opcodes []Opcode
}

type Debug struct {
	*Opcode
	Offset int
}

// Debug finds the source line that assembled the byte at pc.
func (prog *Program) Debug(pc uint16) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if int(pc) >= op.Addr && int(pc) < op.Addr+len(op.Bytes) {
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Offset: int(pc) - op.Addr,
			}
			break
		}
	}

	return
}

// Binary returns the program image, to be loaded at PROGRAM_BASE.
// Gaps left by .org are zero filled.
func (prog *Program) Binary() (bin []byte) {
	for _, op := range prog.Opcodes {
		end := op.Addr + len(op.Bytes) - PROGRAM_BASE
		if end > len(bin) {
			bin = append(bin, make([]byte, end-len(bin))...)
		}
		copy(bin[op.Addr-PROGRAM_BASE:], op.Bytes)
	}

	return
}

// String returns an assembly listing of the program.
func (prog *Program) String() string {
	var text strings.Builder

	for _, op := range prog.Opcodes {
		fmt.Fprintf(&text, "%03x: %-12s %4d: %s\n",
			op.Addr, fmt.Sprintf("% x", op.Bytes), op.LineNo, strings.Join(op.Words, " "))
	}

	return text.String()
}

// Disassemble decodes a program image loaded at PROGRAM_BASE, one
// instruction word at a time. A trailing odd byte is ignored.
func Disassemble(image []byte) iter.Seq[Code] {
	return func(yield func(code Code) bool) {
		for n := 0; n+1 < len(image); n += 2 {
			code := Code{
				Pc:   uint16(PROGRAM_BASE + n),
				Word: binary.BigEndian.Uint16(image[n:]),
			}
			if !yield(code) {
				return
			}
		}
	}
}

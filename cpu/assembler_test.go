package cpu

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func assemble(t *testing.T, program ...string) (asm *Assembler, prog *Program) {
	asm = &Assembler{}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(t, err)
	if err != nil {
		t.Fatal(errors.Unwrap(err))
	}

	return
}

func TestAssembler(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	prog, err := asm.Parse(strings.NewReader(""))
	assert.NoError(err)
	assert.Equal(0, len(prog.Opcodes))
	assert.Empty(prog.Binary())

	assert.Equal("0", asm.Equate["LINENO"])
	assert.Equal("0x200", asm.Equate["PROGRAM_BASE"])
	assert.Equal("0x50", asm.Equate["FONT_BASE"])
	assert.Equal("5", asm.Equate["FONT_HEIGHT"])
	assert.Equal("16", asm.Equate["STACK_LIMIT"])
}

func TestAssemblerPredefine(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	asm.Predefine("HZ", "700")
	asm.Predefine("PROGRAM_BASE", "0x600")

	_, err := asm.Parse(strings.NewReader(""))
	assert.NoError(err)
	assert.Equal("700", asm.Equate["HZ"])
	assert.Equal("0x600", asm.Equate["PROGRAM_BASE"])
}

func TestAssemblerInstructions(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		line string
		word uint16
	}){
		{"cls", 0x00e0},
		{"ret", 0x00ee},
		{"sys 0x123", 0x0123},
		{"jp 0x345", 0x1345},
		{"call 0x456", 0x2456},
		{"se v1, 0x42", 0x3142},
		{"sne v2, 7", 0x4207},
		{"se v3, v4", 0x5340},
		{"ld v5, 0xff", 0x65ff},
		{"add v6, 1", 0x7601},
		{"ld v1, v2", 0x8120},
		{"or v1, v2", 0x8121},
		{"and v1, v2", 0x8122},
		{"xor v1, v2", 0x8123},
		{"add v1, v2", 0x8124},
		{"sub v1, v2", 0x8125},
		{"shr v1", 0x8116},
		{"shr v1, v2", 0x8126},
		{"subn v1, v2", 0x8127},
		{"shl v1", 0x811e},
		{"shl v1, v2", 0x812e},
		{"sne v1, v2", 0x9120},
		{"ld i, 0x300", 0xa300},
		{"jp v0, 0x300", 0xb300},
		{"rnd vA, 0x0f", 0xca0f},
		{"drw v1, v2, 5", 0xd125},
		{"skp v3", 0xe39e},
		{"sknp v3", 0xe3a1},
		{"ld v4, dt", 0xf407},
		{"ld v4, k", 0xf40a},
		{"ld dt, v4", 0xf415},
		{"ld st, v4", 0xf418},
		{"add i, v4", 0xf41e},
		{"ld f, v4", 0xf429},
		{"ld b, v4", 0xf433},
		{"ld [i], v4", 0xf455},
		{"ld v4, [i]", 0xf465},
		{"LD VF, #10", 0x6f10},
		{"ld v0 'A'", 0x6041},
		{"ld v0, -1", 0x60ff},
	}

	for _, entry := range table {
		_, prog := assemble(t, entry.line)
		expected := []byte{uint8(entry.word >> 8), uint8(entry.word)}
		assert.Equal(expected, prog.Binary(), entry.line)

		// The disassembly must assemble back to the same word.
		text := Code{Pc: PROGRAM_BASE, Word: entry.word}.String()
		_, prog = assemble(t, text)
		assert.Equal(expected, prog.Binary(), text)
	}
}

func TestAssemblerLabel(t *testing.T) {
	assert := assert.New(t)

	asm, prog := assemble(t,
		"start:",
		"  ld v0, 0      ; counter",
		"loop: add v0, 1",
		"  se v0, 10",
		"  jp loop",
		"  call sub",
		"  jp start",
		"sub: ret",
	)

	assert.Equal([]byte{
		0x60, 0x00,
		0x70, 0x01,
		0x30, 0x0a,
		0x12, 0x02,
		0x22, 0x0c,
		0x12, 0x00,
		0x00, 0xee,
	}, prog.Binary())

	assert.Equal(0x200, asm.Label["start"])
	assert.Equal(0x202, asm.Label["loop"])
	assert.Equal(0x20c, asm.Label["sub"])

	expected := Opcode{5, 0x206, []string{"jp", "loop"}, []byte{0x12, 0x02}, "loop"}
	assert.Equal(expected, prog.Opcodes[3])
}

func TestAssemblerData(t *testing.T) {
	assert := assert.New(t)

	_, prog := assemble(t,
		"  ld i, sprite",
		"  drw v0, v1, 2",
		"sprite:",
		"  .byte 0x80, $(0x40 | 0x20)",
		"  .word sprite",
		"  .word 0x1234 -1",
	)

	assert.Equal([]byte{
		0xa2, 0x04,
		0xd0, 0x12,
		0x80, 0x60,
		0x02, 0x04,
		0x12, 0x34, 0xff, 0xff,
	}, prog.Binary())

	dbg := prog.Debug(0x205)
	assert.Equal(4, dbg.LineNo)
	assert.Equal(1, dbg.Offset)
}

func TestAssemblerOrg(t *testing.T) {
	assert := assert.New(t)

	_, prog := assemble(t,
		"jp main",
		".org 0x300",
		"main: cls",
	)

	bin := prog.Binary()
	assert.Equal(0x102, len(bin))
	assert.Equal([]byte{0x13, 0x00}, bin[:2])
	assert.Equal([]byte{0x00, 0xe0}, bin[0x100:])
	assert.Equal(make([]byte, 0xfe), bin[2:0x100])
}

func TestAssemblerEqu(t *testing.T) {
	assert := assert.New(t)

	_, prog := assemble(t,
		".equ SPEED 3",
		".equ PLAYER v5",
		"ld PLAYER, SPEED",
		"add PLAYER, $(SPEED * 2)",
		"ld i, $(FONT_BASE + 5 * FONT_HEIGHT)",
		"ld v0, $(LINENO)",
	)

	assert.Equal([]byte{
		0x65, 0x03,
		0x75, 0x06,
		0xa0, 0x69,
		0x60, 0x06,
	}, prog.Binary())
	assert.Equal([]string{"ld", "v5", "3"}, prog.Opcodes[0].Words)
}

func TestAssemblerMacro(t *testing.T) {
	assert := assert.New(t)

	_, prog := assemble(t,
		".macro BUMP REG AMOUNT",
		"add REG, AMOUNT",
		"sne REG, 0",
		"jp @done",
		"ld REG, 1",
		"@done:",
		".endm",
		"BUMP v1 2",
		"BUMP v2 $(1 + 2)",
	)

	assert.Equal([]byte{
		0x71, 0x02,
		0x41, 0x00,
		0x12, 0x08,
		0x61, 0x01,
		0x72, 0x03,
		0x42, 0x00,
		0x12, 0x10,
		0x62, 0x01,
	}, prog.Binary())

	assert.Equal(2, prog.Opcodes[0].LineNo)
	assert.Equal(4, prog.Opcodes[2].LineNo)
	assert.Equal("BUMP_8_done", prog.Opcodes[2].LinkLabel)
	assert.Equal("BUMP_9_done", prog.Opcodes[6].LinkLabel)
}

func TestAssemblerErrSyntax(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	// Various syntax errors
	table := [](struct {
		prog string
		line int
	}){
		{"DUP:\nDUP:\n", 2},
		{"ld v0, nothing", 1},
		{"ld v0, $(\"aaa\")", 1},
		{"ld v0, $(more(\"aaa\"))", 1},
		{"ld v0, $(0x10000000000000000)", 1},
		{"ld v0, 0x100", 1},
		{"ld v0", 1},
		{"ld v0, 1, 2", 1},
		{"ld vg, 1", 1},
		{"ld dt, 5", 1},
		{"ld i, -1", 1},
		{"drw v0, v1, 16", 1},
		{"drw v0, v1", 1},
		{"drw v0, 1, 2", 1},
		{"jp v1, 0x300", 1},
		{"call v0, 0x300", 1},
		{"jp 0x1000", 1},
		{"cls\njp nowhere", 2},
		{"cls now", 1},
		{"shr", 1},
		{"shr v0, 1", 1},
		{"or v0, 1", 1},
		{"add i, 5", 1},
		{"add 5, v0", 1},
		{"se 5, v0", 1},
		{"rnd v0, v1", 1},
		{"skp 5", 1},
		{"nop", 1},
		{".byte", 1},
		{".byte 0x100", 1},
		{".word 0x10000", 1},
		{".word", 1},
		{".org 0x300\n.org 0x200\n", 2},
		{".org 0x1001", 1},
		{".org", 1},
		{".org 0xfff\ncls\n", 2},
		{".equ", 1},
		{".equ A", 1},
		{".equ A 1\n.equ A 2\n", 2},
		{".macro", 1},
		{".macro A B C\n.endm\nA 1\n", 3},
		{".macro A B\n.macro C\n.endm\n.endm", 2},
		{".macro A B\n.endm\n.macro A\n.endm\n", 3},
		{".macro A B\n.endm\n.endm\n", 3},
		{".macro A\ncls\n", 2},
		{".macro A B\nld B, 0x100\n.endm\nA v0\n", 4},
	}

	for _, entry := range table {
		_, err := asm.Parse(strings.NewReader(entry.prog))
		var se *ErrSyntax
		assert.NotNil(err, entry.prog)
		if err != nil {
			assert.True(errors.As(err, &se), entry.prog)
			assert.Equal(entry.line, se.LineNo, entry.prog)
		}
	}

	_, err := asm.Parse(strings.NewReader("jp nowhere"))
	assert.ErrorIs(err, ErrLabelMissing("nowhere"))

	_, err = asm.Parse(strings.NewReader(".org 0x300\n.org 0x200\n"))
	assert.ErrorIs(err, ErrOriginInvalid)

	_, err = asm.Parse(strings.NewReader("drw v0, v1, 16"))
	assert.ErrorIs(err, ErrOpcodeRange)
}

package cpu

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/chip8/display"
)

var _cpu_defines = map[string]string{
	"MEMORY_SIZE":   fmt.Sprintf("0x%x", MEMORY_SIZE),
	"PROGRAM_BASE":  fmt.Sprintf("0x%x", PROGRAM_BASE),
	"PROGRAM_LIMIT": fmt.Sprintf("0x%x", PROGRAM_LIMIT),
	"FONT_BASE":     fmt.Sprintf("0x%x", FONT_BASE),
	"FONT_HEIGHT":   fmt.Sprintf("%d", FONT_HEIGHT),
	"STACK_LIMIT":   fmt.Sprintf("%d", STACK_LIMIT),
	"SCREEN_WIDTH":  fmt.Sprintf("%d", display.WIDTH),
	"SCREEN_HEIGHT": fmt.Sprintf("%d", display.HEIGHT),
}

// Keypad is the input source for the sixteen keys 0x0-0xF.
type Keypad interface {
	// Down reports whether a key is held.
	Down(key uint8) bool
	// NextKey returns a newly pressed key, if any. It never blocks.
	NextKey() (key uint8, ok bool)
}

// Timer holds the delay and sound timers. Decrementing them is the
// timer's own business.
type Timer interface {
	Delay() uint8
	SetDelay(value uint8)
	SetSound(value uint8)
}

// Random is the source for the rnd instruction.
type Random interface {
	Byte() uint8
}

// Quirks selects between historical variants of the instruction set.
type Quirks struct {
	ShiftUsesVY   bool // shr/shl shift VY into VX, rather than VX in place.
	IndexOverflow bool // add i, vx sets VF when I passes 0xFFF.
	ClipSprites   bool // Sprites are clipped at the screen edges, not wrapped.
}

// CpuState is the execution state of the interpreter.
type CpuState int

//go:generate go tool stringer -linecomment -type=CpuState
const (
	STATE_RUNNING      = CpuState(0) // running
	STATE_AWAITING_KEY = CpuState(1) // awaiting key
	STATE_HALTED       = CpuState(2) // halted
)

// Cpu is the simulation context for the CHIP-8 interpreter.
type Cpu struct {
	Verbose bool   // Set to enable verbose logging.
	Quirks  Quirks // Instruction set variant.

	Memory    Memory              // Program and data store.
	Registers Registers           // V0-VF, I and PC.
	Stack     Stack               // Return addresses.
	Display   display.Framebuffer // 64x32 screen.
	State     CpuState            // Current execution state.

	Keypad Keypad // Key input; keys read as up when nil.
	Timer  Timer  // Delay and sound timers; ignored when nil.
	Random Random // Random byte source; reads as 0 when nil.

	Ticks   int // Instructions executed since reset.
	Unknown int // Unknown opcodes encountered since reset.
}

// NewCpu creates a new CPU, reset and ready to load a program.
func NewCpu(keypad Keypad, timer Timer, random Random) (cpu *Cpu) {
	cpu = &Cpu{
		Keypad: keypad,
		Timer:  timer,
		Random: random,
	}

	cpu.Reset()

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// Reset the CPU state.
// - Clears memory and installs the font.
// - Clears the registers, stack, and screen.
// - Zeros statistics counters.
// - Sets the program counter to the program base.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	cpu.Memory.Reset()
	cpu.Registers.Reset()
	cpu.Stack.Reset()
	cpu.Display.Clear()
	cpu.State = STATE_RUNNING
	cpu.Ticks = 0
	cpu.Unknown = 0
}

// Load a program image at the program base.
func (cpu *Cpu) Load(program []byte) (err error) {
	if len(program) > PROGRAM_LIMIT {
		err = ErrLoadTooLarge
		return
	}

	return cpu.Memory.Load(program, PROGRAM_BASE)
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	text += fmt.Sprintf("state: %v\n", cpu.State)
	text += fmt.Sprintf("   pc: %03X\n", cpu.Registers.Pc)
	text += fmt.Sprintf("    i: %03X\n", cpu.Registers.I)
	for n, v := range cpu.Registers.V {
		text += fmt.Sprintf("   v%X: %02X\n", n, v)
	}
	val, ok := cpu.Stack.Peek()
	if ok {
		text += fmt.Sprintf("stack: %03X (%d)\n", val, len(cpu.Stack.Data))
	} else {
		text += "stack: ---\n"
	}

	return
}

// Fetch the instruction at the program counter.
func (cpu *Cpu) Fetch() (code Code, err error) {
	pc := cpu.Registers.Pc
	if int(pc) >= MEMORY_SIZE {
		err = ErrPcEnd
		return
	}

	word, err := cpu.Memory.ReadWord(pc)
	if err != nil {
		return
	}

	code = Code{Pc: pc, Word: word}
	return
}

// Step executes a single instruction.
//
// ErrPcEnd is returned, and the CPU halted, once the program counter runs
// past the end of memory. ErrOpcodeUnknown is returned for undecodable
// instructions, but does not halt the CPU. Any other error is fatal and
// halts the CPU.
func (cpu *Cpu) Step() (err error) {
	if cpu.State == STATE_HALTED {
		err = ErrHalted
		return
	}

	code, err := cpu.Fetch()
	if errors.Is(err, ErrPcEnd) {
		if cpu.Verbose {
			log.Printf("cpu: pc 0x%x past end of memory", cpu.Registers.Pc)
		}
		cpu.State = STATE_HALTED
		return
	}
	if err != nil {
		cpu.State = STATE_HALTED
		err = errors.Join(ErrOpcode(Code{Pc: cpu.Registers.Pc}), err)
		return
	}

	err = cpu.Execute(code)

	return
}

// execFunc executes one instruction family, returning the next program
// counter.
type execFunc func(cpu *Cpu, code Code) (next uint16, err error)

// familyTable dispatches on the top nibble of the instruction word.
var familyTable = [16]execFunc{
	OP_SYS:     (*Cpu).execSys,
	OP_JP:      (*Cpu).execJp,
	OP_CALL:    (*Cpu).execCall,
	OP_SE_IMM:  (*Cpu).execSeImm,
	OP_SNE_IMM: (*Cpu).execSneImm,
	OP_SE_REG:  (*Cpu).execSeReg,
	OP_LD_IMM:  (*Cpu).execLdImm,
	OP_ADD_IMM: (*Cpu).execAddImm,
	OP_ALU:     (*Cpu).execAlu,
	OP_SNE_REG: (*Cpu).execSneReg,
	OP_LD_I:    (*Cpu).execLdI,
	OP_JP_V0:   (*Cpu).execJpV0,
	OP_RND:     (*Cpu).execRnd,
	OP_DRW:     (*Cpu).execDrw,
	OP_KEY:     (*Cpu).execKey,
	OP_MISC:    (*Cpu).execMisc,
}

// Execute executes a single decoded instruction.
func (cpu *Cpu) Execute(code Code) (err error) {
	if cpu.Verbose {
		log.Printf("%03x: %04x %v", code.Pc, code.Word, code)
	}

	next, err := familyTable[code.Family()](cpu, code)
	if errors.Is(err, ErrOpcodeUnknown) {
		cpu.Unknown++
		next = code.Next()
	} else if err != nil {
		cpu.State = STATE_HALTED
		err = errors.Join(ErrOpcode(code), err)
		return
	}

	cpu.Registers.Pc = next
	cpu.Ticks++

	if err != nil {
		err = errors.Join(ErrOpcode(code), err)
	}

	return
}

func (cpu *Cpu) execSys(code Code) (next uint16, err error) {
	switch CodeSysOp(code.NNN()) {
	case SYS_OP_CLS:
		cpu.Display.Clear()
		next = code.Next()
	case SYS_OP_RET:
		var ok bool
		next, ok = cpu.Stack.Pop()
		if !ok {
			err = ErrStackEmpty
		}
	default:
		// Machine code subroutines are treated as ordinary calls.
		next, err = cpu.execCall(code)
	}
	return
}

func (cpu *Cpu) execJp(code Code) (next uint16, err error) {
	next = code.NNN()
	return
}

func (cpu *Cpu) execCall(code Code) (next uint16, err error) {
	err = cpu.Stack.Push(code.Next())
	if err != nil {
		return
	}
	next = code.NNN()
	return
}

// skipIf returns the address to continue at for a conditional skip.
func skipIf(code Code, cond bool) uint16 {
	if cond {
		return code.Skip()
	}
	return code.Next()
}

func (cpu *Cpu) execSeImm(code Code) (next uint16, err error) {
	next = skipIf(code, cpu.Registers.Get(code.X()) == code.NN())
	return
}

func (cpu *Cpu) execSneImm(code Code) (next uint16, err error) {
	next = skipIf(code, cpu.Registers.Get(code.X()) != code.NN())
	return
}

func (cpu *Cpu) execSeReg(code Code) (next uint16, err error) {
	if code.N() != 0 {
		err = ErrOpcodeUnknown
		return
	}
	reg := &cpu.Registers
	next = skipIf(code, reg.Get(code.X()) == reg.Get(code.Y()))
	return
}

func (cpu *Cpu) execSneReg(code Code) (next uint16, err error) {
	if code.N() != 0 {
		err = ErrOpcodeUnknown
		return
	}
	reg := &cpu.Registers
	next = skipIf(code, reg.Get(code.X()) != reg.Get(code.Y()))
	return
}

func (cpu *Cpu) execLdImm(code Code) (next uint16, err error) {
	cpu.Registers.Set(code.X(), code.NN())
	next = code.Next()
	return
}

func (cpu *Cpu) execAddImm(code Code) (next uint16, err error) {
	reg := &cpu.Registers
	reg.Set(code.X(), reg.Get(code.X())+code.NN())
	next = code.Next()
	return
}

func (cpu *Cpu) execAlu(code Code) (next uint16, err error) {
	reg := &cpu.Registers
	x, y := code.X(), code.Y()
	vx, vy := reg.Get(x), reg.Get(y)

	// Flags are written after the result, so that VF as a destination
	// ends up holding the flag.
	switch CodeAluOp(code.N()) {
	case ALU_OP_LD:
		reg.Set(x, vy)
	case ALU_OP_OR:
		reg.Set(x, vx|vy)
	case ALU_OP_AND:
		reg.Set(x, vx&vy)
	case ALU_OP_XOR:
		reg.Set(x, vx^vy)
	case ALU_OP_ADD:
		sum := uint16(vx) + uint16(vy)
		reg.Set(x, uint8(sum))
		reg.SetFlag(sum > 0xff)
	case ALU_OP_SUB:
		reg.Set(x, vx-vy)
		reg.SetFlag(vx >= vy)
	case ALU_OP_SHR:
		if cpu.Quirks.ShiftUsesVY {
			vx = vy
		}
		reg.Set(x, vx>>1)
		reg.SetFlag(vx&1 != 0)
	case ALU_OP_SUBN:
		reg.Set(x, vy-vx)
		reg.SetFlag(vy >= vx)
	case ALU_OP_SHL:
		if cpu.Quirks.ShiftUsesVY {
			vx = vy
		}
		reg.Set(x, vx<<1)
		reg.SetFlag(vx&0x80 != 0)
	default:
		err = ErrOpcodeUnknown
		return
	}

	next = code.Next()
	return
}

func (cpu *Cpu) execLdI(code Code) (next uint16, err error) {
	cpu.Registers.I = code.NNN()
	next = code.Next()
	return
}

func (cpu *Cpu) execJpV0(code Code) (next uint16, err error) {
	next = uint16(cpu.Registers.Get(0)) + code.NNN()
	return
}

func (cpu *Cpu) execRnd(code Code) (next uint16, err error) {
	var value uint8
	if cpu.Random != nil {
		value = cpu.Random.Byte()
	}
	cpu.Registers.Set(code.X(), value&code.NN())
	next = code.Next()
	return
}

func (cpu *Cpu) execDrw(code Code) (next uint16, err error) {
	reg := &cpu.Registers

	rows, err := cpu.Memory.Slice(reg.I, int(code.N()))
	if err != nil {
		return
	}

	cpu.Display.Clip = cpu.Quirks.ClipSprites
	collision := cpu.Display.DrawSprite(reg.Get(code.X()), reg.Get(code.Y()), rows)
	reg.SetFlag(collision)

	next = code.Next()
	return
}

// keyDown reads the keypad, if any.
func (cpu *Cpu) keyDown(key uint8) bool {
	if cpu.Keypad == nil {
		return false
	}
	return cpu.Keypad.Down(key & 0xf)
}

func (cpu *Cpu) execKey(code Code) (next uint16, err error) {
	key := cpu.Registers.Get(code.X())

	switch CodeKeyOp(code.NN()) {
	case KEY_OP_SKP:
		next = skipIf(code, cpu.keyDown(key))
	case KEY_OP_SKNP:
		next = skipIf(code, !cpu.keyDown(key))
	default:
		err = ErrOpcodeUnknown
	}
	return
}

func (cpu *Cpu) execMisc(code Code) (next uint16, err error) {
	reg := &cpu.Registers
	mem := &cpu.Memory
	x := code.X()
	vx := reg.Get(x)

	next = code.Next()

	switch CodeMiscOp(code.NN()) {
	case MISC_OP_LD_VX_DT:
		var value uint8
		if cpu.Timer != nil {
			value = cpu.Timer.Delay()
		}
		reg.Set(x, value)
	case MISC_OP_LD_VX_K:
		if cpu.Keypad == nil {
			break
		}
		key, ok := cpu.Keypad.NextKey()
		if !ok {
			// Come back here on the next step.
			cpu.State = STATE_AWAITING_KEY
			next = code.Pc
			return
		}
		reg.Set(x, key&0xf)
		cpu.State = STATE_RUNNING
	case MISC_OP_LD_DT_VX:
		if cpu.Timer != nil {
			cpu.Timer.SetDelay(vx)
		}
	case MISC_OP_LD_ST_VX:
		if cpu.Timer != nil {
			cpu.Timer.SetSound(vx)
		}
	case MISC_OP_ADD_I_VX:
		reg.I += uint16(vx)
		if cpu.Quirks.IndexOverflow {
			reg.SetFlag(int(reg.I) >= MEMORY_SIZE)
		}
	case MISC_OP_LD_F_VX:
		reg.I = FontAddress(vx)
	case MISC_OP_LD_B_VX:
		digits := [3]uint8{vx / 100, (vx / 10) % 10, vx % 10}
		for n, digit := range digits {
			err = mem.Write(reg.I+uint16(n), digit)
			if err != nil {
				return
			}
		}
	case MISC_OP_LD_MEM:
		for n := range x + 1 {
			err = mem.Write(reg.I+uint16(n), reg.Get(n))
			if err != nil {
				return
			}
		}
	case MISC_OP_LD_REG:
		for n := range x + 1 {
			var value uint8
			value, err = mem.Read(reg.I + uint16(n))
			if err != nil {
				return
			}
			reg.Set(n, value)
		}
	default:
		err = ErrOpcodeUnknown
	}

	return
}

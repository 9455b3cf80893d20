// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"context"
	"errors"
	"fmt"
	stdio "io"
	"iter"
	"maps"
	"time"

	"github.com/retroenv/retrogolib/log"

	"github.com/ezrec/chip8/cpu"
	"github.com/ezrec/chip8/display"
	"github.com/ezrec/chip8/internal"
	"github.com/ezrec/chip8/io"
)

const (
	FRAME_HZ   = 60  // Timer and display refresh rate.
	DEFAULT_HZ = 700 // Default instructions per second.
)

var _emulator_defines = map[string]string{
	"FRAME_HZ": fmt.Sprintf("%v", FRAME_HZ),
}

// Config selects the emulator speed and instruction set variant.
type Config struct {
	Hz         int        // Instructions per second.
	Seed       uint64     // Random number seed.
	Quirks     cpu.Quirks // Instruction set variant.
	FrameLimit int        // Stop Run after this many frames; 0 for no limit.
	KeyOnPress bool       // Key waits complete on press, not release.
}

// DefaultConfig returns the configuration of a typical interpreter.
func DefaultConfig() Config {
	return Config{
		Hz: DEFAULT_HZ,
	}
}

// Emulator state. CPU + keypad, timers and random source.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Listing of the running program, if assembled.
	Rom      *io.Rom      // Program image reloaded on reset.

	Config Config      // Speed and variant.
	Keys   io.Keypad   // Hexadecimal keypad.
	Timers io.Timers   // Delay and sound timers.
	Rand   cpu.Random  // Random source for rnd.
	logger *log.Logger // Structured log output.

	frames int // Frames run since reset.
}

// NewEmulator creates a new emulator.
func NewEmulator(cfg Config, logger *log.Logger) (emu *Emulator) {
	if cfg.Hz <= 0 {
		cfg.Hz = DEFAULT_HZ
	}

	if logger == nil {
		logger = log.NewWithConfig(log.DefaultConfig())
	}

	emu = &Emulator{
		Program: &cpu.Program{},
		Config:  cfg,
		Rand:    io.NewRandom(cfg.Seed),
		logger:  logger,
	}

	emu.Keys.WaitOnPress = cfg.KeyOnPress
	emu.Cpu = cpu.NewCpu(&emu.Keys, &emu.Timers, emu.Rand)
	emu.Cpu.Quirks = cfg.Quirks

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.Concat2(maps.All(_emulator_defines),
		emu.Cpu.Defines(),
	)
}

// Load a program image, and reset the emulator.
func (emu *Emulator) Load(rom *io.Rom) (err error) {
	emu.Rom = rom
	emu.Program = &cpu.Program{}

	return emu.Reset()
}

// LoadFile loads a program image from a file.
func (emu *Emulator) LoadFile(path string) (err error) {
	rom, err := io.OpenRom(path)
	if err != nil {
		return
	}

	return emu.Load(rom)
}

// Assemble a program, and load its image.
func (emu *Emulator) Assemble(name string, input stdio.Reader) (err error) {
	asm := &cpu.Assembler{Verbose: emu.Verbose}
	for key, value := range emu.Defines() {
		asm.Predefine(key, value)
	}

	prog, err := asm.Parse(input)
	if err != nil {
		return
	}

	emu.logger.Debug("assembled",
		log.String("name", name),
		log.Int("opcodes", len(prog.Opcodes)),
		log.Int("bytes", len(prog.Binary())))

	err = emu.Load(&io.Rom{Name: name, Data: prog.Binary()})
	if err != nil {
		return
	}

	emu.Program = prog

	return
}

// Reset the emulator, and reload the program image.
func (emu *Emulator) Reset() (err error) {
	emu.Cpu.Reset()
	emu.Keys.Reset()
	emu.Timers.Reset()
	emu.frames = 0

	if emu.Rom == nil {
		return
	}

	err = emu.Rom.Load(emu.Cpu)
	if err != nil {
		return
	}

	emu.logger.Debug("loaded",
		log.String("rom", emu.Rom.Name),
		log.Int("size", len(emu.Rom.Data)))

	return
}

// Pc returns current program counter.
func (emu *Emulator) Pc() uint16 {
	return emu.Cpu.Registers.Pc
}

// LineNo returns the current line number for the executing opcode, or 0
// if the program was not assembled.
func (emu *Emulator) LineNo() int {
	dbg := emu.Program.Debug(emu.Pc())
	if dbg.Opcode == nil {
		return 0
	}

	return dbg.LineNo
}

// Snapshot returns a copy of the screen.
func (emu *Emulator) Snapshot() display.Snapshot {
	return emu.Cpu.Display.Snapshot()
}

// Sounding reports whether the beeper should be on.
func (emu *Emulator) Sounding() bool {
	return emu.Timers.Sounding()
}

// Frames returns the number of frames run since a reset.
func (emu *Emulator) Frames() int {
	return emu.frames
}

// Tick performs a single instruction of the emulator.
//
// done is set once the program runs off the end of memory, or the CPU has
// halted. Unknown opcodes are logged and skipped.
func (emu *Emulator) Tick() (done bool, err error) {
	pc := emu.Pc()
	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			err = &ErrRuntime{Pc: pc, LineNo: lineno, Err: err}
		}
	}()

	if emu.Verbose {
		code, _ := emu.Cpu.Fetch()
		emu.logger.Debug("step",
			log.Uint16("pc", pc),
			log.Uint16("word", code.Word),
			log.String("op", code.String()),
			log.String("regs", emu.Cpu.Registers.String()))
	}

	err = emu.Cpu.Step()
	switch {
	case err == nil:
	case errors.Is(err, cpu.ErrPcEnd), errors.Is(err, cpu.ErrHalted):
		err = nil
		done = true
	case errors.Is(err, cpu.ErrOpcodeUnknown):
		word, _ := emu.Cpu.Memory.ReadWord(pc)
		emu.logger.Warn("unknown opcode skipped",
			log.Uint16("pc", pc),
			log.Uint16("word", word),
			log.Int("line", lineno))
		err = nil
	}

	return
}

// Frame runs one 60th of a second worth of instructions, then ticks the
// timers.
func (emu *Emulator) Frame() (done bool, err error) {
	steps := max(emu.Config.Hz/FRAME_HZ, 1)

	for range steps {
		done, err = emu.Tick()
		if done || err != nil {
			return
		}
		if emu.Cpu.State == cpu.STATE_AWAITING_KEY {
			// Nothing to do until the frontend delivers a key.
			break
		}
	}

	emu.Timers.Tick()
	emu.frames++

	return
}

// Run frames until the program ends, a fatal error occurs, the frame limit
// is reached, or the context is cancelled. A frame is run on each receive
// from frames; when frames is nil, frames are run back to back.
func (emu *Emulator) Run(ctx context.Context, frames <-chan time.Time) (err error) {
	for {
		if frames == nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		} else {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-frames:
			}
		}

		var done bool
		done, err = emu.Frame()
		if err != nil || done {
			return
		}

		if emu.Config.FrameLimit > 0 && emu.frames >= emu.Config.FrameLimit {
			emu.logger.Debug("frame limit reached", log.Int("frames", emu.frames))
			return
		}
	}
}

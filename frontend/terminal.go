// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package frontend

import (
	"context"
	"errors"
	"fmt"
	stdio "io"
	"os"
	"time"

	"github.com/retroenv/retrogolib/log"
	"golang.org/x/term"

	"github.com/ezrec/chip8/display"
	"github.com/ezrec/chip8/emulator"
)

const (
	HOLD_FRAMES = 6 // Frames a terminal key stays down after its last repeat.

	KEY_ESCAPE = 0x1b
	KEY_CTRL_C = 0x03
)

var ErrNotTerminal = errors.New(f("stdin is not a terminal"))

// Terminal runs the emulator in a text terminal, drawing the screen with
// half-block characters.
//
// Terminals only report key presses, so each key is released HOLD_FRAMES
// frames after the last time it was seen.
type Terminal struct {
	Emulator *emulator.Emulator
	Output   stdio.Writer // Defaults to os.Stdout.
	Hold     int          // Frames a key stays down; defaults to HOLD_FRAMES.

	logger *log.Logger
	held   [len(KEY_MAP)]int
	drawn  bool
	gen    uint64
	status string
}

// NewTerminal creates a terminal frontend for an emulator.
func NewTerminal(emu *emulator.Emulator, logger *log.Logger) *Terminal {
	return &Terminal{
		Emulator: emu,
		Output:   os.Stdout,
		Hold:     HOLD_FRAMES,
		logger:   logger,
	}
}

// Feed delivers a byte read from the terminal. Returns true if the byte
// asks to quit.
func (tm *Terminal) Feed(b byte) (quit bool) {
	if b == KEY_ESCAPE || b == KEY_CTRL_C {
		quit = true
		return
	}

	key, ok := KeyOf(rune(b))
	if !ok {
		return
	}

	hold := tm.Hold
	if hold <= 0 {
		hold = HOLD_FRAMES
	}

	tm.held[key] = hold
	_ = tm.Emulator.Keys.Press(key)

	return
}

// age counts down held keys, releasing those that expire.
func (tm *Terminal) age() {
	for key, frames := range tm.held {
		if frames == 0 {
			continue
		}
		frames--
		tm.held[key] = frames
		if frames == 0 {
			_ = tm.Emulator.Keys.Release(uint8(key))
		}
	}
}

// Draw the screen and status line if either changed.
func (tm *Terminal) Draw() (err error) {
	gen := tm.Emulator.Cpu.Display.Generation()
	status := Status(tm.Emulator)
	if tm.drawn && gen == tm.gen && status == tm.status {
		return
	}

	tm.drawn = true
	tm.gen = gen
	tm.status = status

	snap := tm.Emulator.Snapshot()
	_, err = fmt.Fprintf(tm.Output, "\x1b[H%s\r\n\x1b[K%s\r\n",
		HalfBlock(&snap, "\r\n"), status)

	return
}

// Frame runs one emulator frame, then releases expired keys and redraws.
func (tm *Terminal) Frame() (done bool, err error) {
	done, err = tm.Emulator.Frame()
	tm.age()
	if err != nil {
		return
	}

	err = tm.Draw()

	return
}

// Run the emulator at FRAME_HZ until it ends, the user quits, or ctx is
// cancelled.
func (tm *Terminal) Run(ctx context.Context) (err error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		err = ErrNotTerminal
		return
	}

	width, height, err := term.GetSize(fd)
	if err != nil {
		return
	}
	if width < display.WIDTH || height < display.HEIGHT/2+1 {
		tm.logger.Warn("terminal smaller than screen",
			log.Int("width", width),
			log.Int("height", height))
	}

	state, err := term.MakeRaw(fd)
	if err != nil {
		return
	}
	defer func() {
		_ = term.Restore(fd, state)
		fmt.Fprint(tm.Output, "\x1b[?25h\r\n")
	}()

	keys, stop, err := readKeys(fd)
	if err != nil {
		return
	}
	defer stop()

	fmt.Fprint(tm.Output, "\x1b[2J\x1b[?25l")

	ticker := time.NewTicker(time.Second / emulator.FRAME_HZ)
	defer ticker.Stop()

	limit := tm.Emulator.Config.FrameLimit

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case b := <-keys:
			if tm.Feed(b) {
				return
			}
		case <-ticker.C:
			var done bool
			done, err = tm.Frame()
			if err != nil || done {
				return
			}
			if limit > 0 && tm.Emulator.Frames() >= limit {
				return
			}
		}
	}
}

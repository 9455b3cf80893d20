// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package window runs the emulator in a desktop window, with keyboard input
// and a beeper.
//
// Keys:
//
//	1234/QWER/ASDF/ZXCV  keypad
//	F5                   reset
//	F9                   copy the screen to the clipboard as text
//	F12                  toggle the status line
//	Escape               quit
package window

import (
	"errors"
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/retroenv/retrogolib/log"
	"golang.design/x/clipboard"
	"golang.org/x/image/font/basicfont"

	"github.com/ezrec/chip8/cpu"
	"github.com/ezrec/chip8/display"
	"github.com/ezrec/chip8/emulator"
	"github.com/ezrec/chip8/frontend"
	"github.com/ezrec/chip8/translate"
)

var f = translate.From

const (
	DEFAULT_SCALE = 10 // Window pixels per screen pixel.
)

// Host keys, in frontend.KEY_LAYOUT order.
var hostKeys = [len(frontend.KEY_LAYOUT)]ebiten.Key{
	ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3, ebiten.KeyDigit4,
	ebiten.KeyQ, ebiten.KeyW, ebiten.KeyE, ebiten.KeyR,
	ebiten.KeyA, ebiten.KeyS, ebiten.KeyD, ebiten.KeyF,
	ebiten.KeyZ, ebiten.KeyX, ebiten.KeyC, ebiten.KeyV,
}

var statusColor = color.RGBA{R: 0xff, G: 0xcc, B: 0x33, A: 0xff}

// Window is an ebiten.Game running one emulator frame per update.
type Window struct {
	Emulator *emulator.Emulator
	Beeper   *Beeper // Optional.
	Scale    int

	logger *log.Logger
	screen *ebiten.Image
	pixels []byte
	status bool
	done   bool
	err    error

	clipboardOnce sync.Once
	clipboardOK   bool
}

var _ ebiten.Game = (*Window)(nil)

// NewWindow creates a window for an emulator.
func NewWindow(emu *emulator.Emulator, scale int, logger *log.Logger) *Window {
	if scale <= 0 {
		scale = DEFAULT_SCALE
	}

	return &Window{
		Emulator: emu,
		Scale:    scale,
		logger:   logger,
	}
}

// Run opens the window and runs until the user quits or the frame limit is
// reached. Returns the runtime error that stopped the program, if any.
func (w *Window) Run() (err error) {
	title := "chip8"
	if w.Emulator.Rom != nil {
		title = f("chip8 - %s", w.Emulator.Rom.Name)
	}

	ebiten.SetWindowSize(display.WIDTH*w.Scale, display.HEIGHT*w.Scale)
	ebiten.SetWindowTitle(title)
	ebiten.SetTPS(emulator.FRAME_HZ)

	err = ebiten.RunGame(w)
	if errors.Is(err, ebiten.Termination) {
		err = nil
	}
	if err != nil {
		return
	}

	return w.err
}

func (w *Window) copyScreen() {
	w.clipboardOnce.Do(func() {
		w.clipboardOK = clipboard.Init() == nil
	})
	if !w.clipboardOK {
		w.logger.Warn("clipboard unavailable")
		return
	}

	snap := w.Emulator.Snapshot()
	clipboard.Write(clipboard.FmtText, []byte(snap.String()))
}

// Update polls the keyboard and runs one frame.
func (w *Window) Update() (err error) {
	if ebiten.IsWindowBeingClosed() || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		w.status = !w.status
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyF9) {
		w.copyScreen()
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		err = w.Emulator.Reset()
		if err != nil {
			return
		}
		w.done = false
		w.err = nil
	}

	for index, key := range hostKeys {
		_ = w.Emulator.Keys.Set(frontend.KEY_MAP[index], ebiten.IsKeyPressed(key))
	}

	if !w.done {
		w.done, w.err = w.Emulator.Frame()
		if w.err != nil {
			w.logger.Error("program stopped", log.Err(w.err))
			w.done = true
		}
	}

	if w.Beeper != nil {
		w.Beeper.Set(!w.done && w.Emulator.Sounding())
	}

	limit := w.Emulator.Config.FrameLimit
	if limit > 0 && w.Emulator.Frames() >= limit {
		return ebiten.Termination
	}

	return
}

// Draw the screen, and the status line when enabled or the program is not
// running.
func (w *Window) Draw(screen *ebiten.Image) {
	if w.screen == nil {
		w.screen = ebiten.NewImage(display.WIDTH, display.HEIGHT)
	}

	snap := w.Emulator.Snapshot()
	w.pixels = frontend.Pixels(&snap, w.pixels)
	w.screen.WritePixels(w.pixels)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(w.Scale), float64(w.Scale))
	screen.DrawImage(w.screen, op)

	if w.status || w.done || w.Emulator.Cpu.State != cpu.STATE_RUNNING {
		text.Draw(screen, frontend.Status(w.Emulator), basicfont.Face7x13, 4, 14, statusColor)
	}
}

// Layout keeps the window at the scaled screen size.
func (w *Window) Layout(_, _ int) (int, int) {
	return display.WIDTH * w.Scale, display.HEIGHT * w.Scale
}

// Package frontend holds the pieces shared by the interactive frontends:
// the keyboard layout, pixel conversion and text rendering of the screen,
// and the terminal frontend.
package frontend

import (
	"image/color"
	"strings"

	"github.com/ezrec/chip8/display"
	"github.com/ezrec/chip8/emulator"
	"github.com/ezrec/chip8/translate"
)

var f = translate.From

// KEY_LAYOUT is the host keyboard layout, in the same order as KEY_MAP.
const KEY_LAYOUT = "1234qwerasdfzxcv"

// KEY_MAP maps each position of KEY_LAYOUT to a keypad key.
//
//	1 2 3 C
//	4 5 6 D
//	7 8 9 E
//	A 0 B F
var KEY_MAP = [len(KEY_LAYOUT)]uint8{
	0x1, 0x2, 0x3, 0xc,
	0x4, 0x5, 0x6, 0xd,
	0x7, 0x8, 0x9, 0xe,
	0xa, 0x0, 0xb, 0xf,
}

var (
	ColorOn  = color.RGBA{R: 0x33, G: 0xff, B: 0x66, A: 0xff} // Pixel lit.
	ColorOff = color.RGBA{R: 0x10, G: 0x10, B: 0x10, A: 0xff} // Pixel dark.
)

// KeyOf returns the keypad key for a host key, ignoring case.
func KeyOf(r rune) (key uint8, ok bool) {
	if r >= 'A' && r <= 'Z' {
		r += 'a' - 'A'
	}

	index := strings.IndexRune(KEY_LAYOUT, r)
	if index < 0 {
		return
	}

	key = KEY_MAP[index]
	ok = true

	return
}

// Pixels writes the snapshot into an RGBA buffer of WIDTH*HEIGHT*4 bytes,
// allocating it if nil or too short.
func Pixels(snap *display.Snapshot, buffer []byte) []byte {
	size := display.WIDTH * display.HEIGHT * 4
	if len(buffer) < size {
		buffer = make([]byte, size)
	}

	offset := 0
	for y := range display.HEIGHT {
		for x := range display.WIDTH {
			c := ColorOff
			if snap.Pixel(x, y) {
				c = ColorOn
			}
			buffer[offset+0] = c.R
			buffer[offset+1] = c.G
			buffer[offset+2] = c.B
			buffer[offset+3] = c.A
			offset += 4
		}
	}

	return buffer[:size]
}

var halfBlock = [4]rune{' ', '▀', '▄', '█'}

// HalfBlock renders the snapshot as HEIGHT/2 lines of text, two pixel rows
// per character cell. Lines are joined with eol.
func HalfBlock(snap *display.Snapshot, eol string) string {
	var sb strings.Builder
	for y := 0; y < display.HEIGHT; y += 2 {
		if y > 0 {
			sb.WriteString(eol)
		}
		for x := range display.WIDTH {
			index := 0
			if snap.Pixel(x, y) {
				index |= 1
			}
			if snap.Pixel(x, y+1) {
				index |= 2
			}
			sb.WriteRune(halfBlock[index])
		}
	}

	return sb.String()
}

// Status describes where the emulator is and which keys are held, for
// overlays and status lines.
func Status(emu *emulator.Emulator) string {
	name := ""
	if emu.Rom != nil {
		name = emu.Rom.Name
	}

	status := f("%s %v pc 0x%03x", name, emu.Cpu.State, emu.Pc())
	if lineno := emu.LineNo(); lineno > 0 {
		status += f(" line %d", lineno)
	}

	keys := ""
	for key, down := range emu.Keys.Held() {
		if down {
			keys += f("%X", key)
		}
	}
	if keys != "" {
		status += f(" keys %s", keys)
	}

	return strings.TrimSpace(status)
}

// Package display implements the 64x32 monochrome framebuffer.
//
// Pixels are only changed by XOR-compositing sprites or by clearing the
// whole screen. Sprite pixels that fall outside the grid wrap around to the
// opposite edge, unless Clip is set, in which case they are dropped.
package display

import (
	"strings"
)

const (
	WIDTH  = 64 // Pixels per row.
	HEIGHT = 32 // Rows.

	SPRITE_WIDTH = 8 // Pixels per sprite row byte.
)

// Snapshot is a read-only copy of the framebuffer, indexed [y][x].
// Each entry is 0 (off) or 1 (on).
type Snapshot [HEIGHT][WIDTH]uint8

// Pixel reports whether the pixel at (x, y) is on.
func (snap *Snapshot) Pixel(x, y int) bool {
	return snap[y][x] != 0
}

// String renders the snapshot as text, '#' for on and '.' for off.
func (snap *Snapshot) String() string {
	var sb strings.Builder
	sb.Grow(HEIGHT * (WIDTH + 1))
	for y := range HEIGHT {
		for x := range WIDTH {
			if snap[y][x] != 0 {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Framebuffer is the 1-bit pixel grid.
type Framebuffer struct {
	Clip bool // If set, drop sprite pixels past the right and bottom edges.

	pixel      Snapshot
	generation uint64
}

// Clear sets every pixel to off.
func (fb *Framebuffer) Clear() {
	clear(fb.pixel[:])
	fb.generation++
}

// DrawSprite XORs each row byte onto the grid at (x, y), most significant
// bit leftmost. Returns true if any pixel was turned off.
func (fb *Framebuffer) DrawSprite(x, y uint8, rows []byte) (collision bool) {
	ox := int(x) % WIDTH
	oy := int(y) % HEIGHT

	for r, bits := range rows {
		py := oy + r
		if py >= HEIGHT {
			if fb.Clip {
				break
			}
			py %= HEIGHT
		}
		for w := range SPRITE_WIDTH {
			if bits&(0x80>>w) == 0 {
				continue
			}
			px := ox + w
			if px >= WIDTH {
				if fb.Clip {
					break
				}
				px %= WIDTH
			}
			if fb.pixel[py][px] != 0 {
				collision = true
			}
			fb.pixel[py][px] ^= 1
		}
	}

	fb.generation++

	return
}

// Pixel reports whether the pixel at (x, y) is on.
// Coordinates wrap.
func (fb *Framebuffer) Pixel(x, y int) bool {
	x = ((x % WIDTH) + WIDTH) % WIDTH
	y = ((y % HEIGHT) + HEIGHT) % HEIGHT
	return fb.pixel[y][x] != 0
}

// Snapshot returns a copy of the grid.
func (fb *Framebuffer) Snapshot() Snapshot {
	return fb.pixel
}

// Generation increments every time the framebuffer is drawn to or cleared.
func (fb *Framebuffer) Generation() uint64 {
	return fb.generation
}

func (fb *Framebuffer) String() string {
	return fb.pixel.String()
}

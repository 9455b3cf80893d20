package frontend

import (
	"bytes"
	"strings"
	"testing"

	"github.com/retroenv/retrogolib/log"
	"github.com/stretchr/testify/assert"

	"github.com/ezrec/chip8/display"
	"github.com/ezrec/chip8/emulator"
	"github.com/ezrec/chip8/io"
)

func TestKeyOf(t *testing.T) {
	table := [](struct {
		r   rune
		key uint8
		ok  bool
	}){
		{'1', 0x1, true},
		{'4', 0xc, true},
		{'q', 0x4, true},
		{'W', 0x5, true},
		{'r', 0xd, true},
		{'s', 0x8, true},
		{'f', 0xe, true},
		{'z', 0xa, true},
		{'x', 0x0, true},
		{'C', 0xb, true},
		{'v', 0xf, true},
		{'5', 0, false},
		{'p', 0, false},
		{' ', 0, false},
	}

	for _, entry := range table {
		key, ok := KeyOf(entry.r)
		assert.Equal(t, entry.ok, ok, "%q", entry.r)
		assert.Equal(t, entry.key, key, "%q", entry.r)
	}
}

func TestKeyMap(t *testing.T) {
	assert := assert.New(t)

	seen := map[uint8]bool{}
	for _, key := range KEY_MAP {
		seen[key] = true
	}
	assert.Len(seen, io.KEY_COUNT)
}

func TestPixels(t *testing.T) {
	assert := assert.New(t)

	snap := display.Snapshot{}
	snap[0][1] = 1
	snap[31][63] = 1

	buffer := Pixels(&snap, nil)
	assert.Len(buffer, display.WIDTH*display.HEIGHT*4)
	assert.Equal([]byte{ColorOff.R, ColorOff.G, ColorOff.B, ColorOff.A}, buffer[0:4])
	assert.Equal([]byte{ColorOn.R, ColorOn.G, ColorOn.B, ColorOn.A}, buffer[4:8])
	assert.Equal([]byte{ColorOn.R, ColorOn.G, ColorOn.B, ColorOn.A}, buffer[len(buffer)-4:])

	again := Pixels(&display.Snapshot{}, buffer)
	assert.Same(&buffer[0], &again[0])
	assert.Equal(ColorOff.G, again[5])
}

func TestHalfBlock(t *testing.T) {
	assert := assert.New(t)

	snap := display.Snapshot{}
	snap[0][0] = 1
	snap[1][1] = 1
	snap[0][2] = 1
	snap[1][2] = 1

	lines := strings.Split(HalfBlock(&snap, "\n"), "\n")
	assert.Len(lines, display.HEIGHT/2)
	assert.Equal("▀▄█ ", string([]rune(lines[0])[:4]))
	assert.Equal(strings.Repeat(" ", display.WIDTH), lines[1])
}

func newTestTerminal(t *testing.T) (tm *Terminal, out *bytes.Buffer) {
	emu := emulator.NewEmulator(emulator.DefaultConfig(), log.NewTestLogger(t))
	out = &bytes.Buffer{}
	tm = NewTerminal(emu, log.NewTestLogger(t))
	tm.Output = out
	tm.Hold = 2
	return
}

func TestTerminal_Feed(t *testing.T) {
	assert := assert.New(t)

	tm, _ := newTestTerminal(t)
	keys := &tm.Emulator.Keys

	assert.True(tm.Feed(KEY_ESCAPE))
	assert.True(tm.Feed(KEY_CTRL_C))
	assert.False(tm.Feed('p'))

	assert.False(tm.Feed('w'))
	assert.True(keys.Down(0x5))

	tm.age()
	assert.True(keys.Down(0x5))

	// A repeat extends the hold.
	tm.Feed('W')
	tm.age()
	assert.True(keys.Down(0x5))
	tm.age()
	assert.False(keys.Down(0x5))

	tm.age()
	assert.False(keys.Down(0x5))
}

func TestTerminal_Frame(t *testing.T) {
	assert := assert.New(t)

	tm, out := newTestTerminal(t)
	assert.NoError(tm.Emulator.Assemble("wait", strings.NewReader(strings.Join([]string{
		"  ld v0, k",
		"  ld f, v0",
		"  drw v1, v1, 5",
		"self: jp self",
	}, "\n"))))

	done, err := tm.Frame()
	assert.NoError(err)
	assert.False(done)
	assert.Contains(out.String(), "awaiting key")

	// Unchanged screen is not redrawn.
	out.Reset()
	_, err = tm.Frame()
	assert.NoError(err)
	assert.Empty(out.String())

	// Key released by aging completes the wait.
	tm.Feed('1')
	for range 3 {
		_, err = tm.Frame()
		assert.NoError(err)
	}
	assert.Equal(uint8(1), tm.Emulator.Cpu.Registers.Get(0))
	assert.Contains(out.String(), "\x1b[H")
	assert.Contains(out.String(), "█")
	assert.Contains(out.String(), "wait running")
}

func TestStatus(t *testing.T) {
	assert := assert.New(t)

	emu := emulator.NewEmulator(emulator.DefaultConfig(), log.NewTestLogger(t))
	assert.Equal("running pc 0x200", Status(emu))

	assert.NoError(emu.Load(&io.Rom{Name: "pong", Data: []byte{0x00, 0xe0}}))
	assert.NoError(emu.Keys.Press(0xa))
	assert.NoError(emu.Keys.Press(0x2))
	assert.Equal("pong running pc 0x200 keys 2A", Status(emu))
}

func TestTerminal_Draw(t *testing.T) {
	assert := assert.New(t)

	tm, out := newTestTerminal(t)

	assert.NoError(tm.Draw())
	assert.NotEmpty(out.String())

	out.Reset()
	assert.NoError(tm.Draw())
	assert.Empty(out.String())

	// A clear redraws even when no pixel changes.
	tm.Emulator.Cpu.Display.Clear()
	assert.NoError(tm.Draw())
	assert.Contains(out.String(), "\x1b[H")

	out.Reset()
	assert.NoError(tm.Emulator.Keys.Press(0x1))
	assert.NoError(tm.Draw())
	assert.Contains(out.String(), "keys 1")
}

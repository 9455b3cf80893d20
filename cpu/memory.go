package cpu

// Memory layout constants.
const (
	MEMORY_SIZE   = 0x1000                     // Total addressable memory.
	PROGRAM_BASE  = 0x200                      // Programs are loaded here.
	PROGRAM_LIMIT = MEMORY_SIZE - PROGRAM_BASE // Largest loadable program.
	FONT_BASE     = 0x050                      // Built-in hexadecimal glyphs.
	FONT_HEIGHT   = 5                          // Rows per glyph.
)

// font holds the 4x5 glyphs for the hexadecimal digits 0-F.
var font = [16 * FONT_HEIGHT]uint8{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// FontAddress returns the address of the glyph for a hexadecimal digit.
func FontAddress(digit uint8) uint16 {
	return FONT_BASE + uint16(digit&0xf)*FONT_HEIGHT
}

// Memory is the byte-addressable program and data store.
type Memory struct {
	Data [MEMORY_SIZE]uint8
}

// Reset zeros memory and installs the font table.
func (mem *Memory) Reset() {
	clear(mem.Data[:])
	copy(mem.Data[FONT_BASE:], font[:])
}

// Load copies data into memory starting at offset.
func (mem *Memory) Load(data []byte, offset int) (err error) {
	if offset < 0 || offset+len(data) > MEMORY_SIZE {
		err = ErrLoadTooLarge
		return
	}

	copy(mem.Data[offset:], data)

	return
}

// Read a single byte.
func (mem *Memory) Read(addr uint16) (value uint8, err error) {
	if int(addr) >= MEMORY_SIZE {
		err = ErrOutOfBounds
		return
	}

	value = mem.Data[addr]
	return
}

// Write a single byte.
func (mem *Memory) Write(addr uint16, value uint8) (err error) {
	if int(addr) >= MEMORY_SIZE {
		err = ErrOutOfBounds
		return
	}

	mem.Data[addr] = value
	return
}

// ReadWord reads a big-endian instruction word.
func (mem *Memory) ReadWord(addr uint16) (word uint16, err error) {
	if int(addr)+1 >= MEMORY_SIZE {
		err = ErrOutOfBounds
		return
	}

	word = uint16(mem.Data[addr])<<8 | uint16(mem.Data[addr+1])
	return
}

// Slice returns the n bytes starting at addr.
// The returned slice aliases memory and must not be modified.
func (mem *Memory) Slice(addr uint16, n int) (data []byte, err error) {
	if int(addr)+n > MEMORY_SIZE {
		err = ErrOutOfBounds
		return
	}

	data = mem.Data[addr : int(addr)+n]
	return
}

// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package io

import (
	"io"
	"os"
	"path/filepath"

	"github.com/ezrec/chip8/cpu"
)

// Rom is a program image, loaded at the program base.
type Rom struct {
	Name string // Display name, usually the file's base name.
	Data []byte // Program bytes.
}

// ReadRom reads a program image. Images that would not fit between the
// program base and the end of memory are rejected.
func ReadRom(name string, input io.Reader) (rom *Rom, err error) {
	data, err := io.ReadAll(io.LimitReader(input, cpu.PROGRAM_LIMIT+1))
	if err != nil {
		return
	}

	if len(data) == 0 {
		err = ErrRomEmpty
		return
	}

	if len(data) > cpu.PROGRAM_LIMIT {
		err = cpu.ErrLoadTooLarge
		return
	}

	rom = &Rom{
		Name: name,
		Data: data,
	}

	return
}

// OpenRom reads a program image from a file.
func OpenRom(path string) (rom *Rom, err error) {
	file, err := os.Open(path)
	if err != nil {
		return
	}
	defer file.Close()

	return ReadRom(filepath.Base(path), file)
}

// Load the image into the CPU.
func (rom *Rom) Load(target *cpu.Cpu) error {
	return target.Load(rom.Data)
}

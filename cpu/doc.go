// Package cpu implements the interpreter and assembler for the CHIP-8
// instruction set.
//
// The CPU consists of a 4KiB memory image, sixteen 8-bit general-purpose
// registers (V0-VF, with VF doubling as the flag register), a 16-bit
// address register (I), a program counter, a bounded return-address stack,
// and a 64x32 monochrome framebuffer. Keypad, timers and the random source
// are supplied by the caller through the Keypad, Timer and Random
// interfaces.
//
// The assembler provides a small assembly language for the CHIP-8
// instruction set, supporting macros, labels, equates, and compile-time
// expression evaluation.
package cpu

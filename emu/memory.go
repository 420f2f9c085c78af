// Package emu provides functional CHIP-8 emulation.
package emu

import "fmt"

// Memory layout.
//
//	0x000-0x1FF: interpreter area, font glyphs at FontStart
//	0x200-0xFFF: program space
const (
	// MemorySize is the size of the address space in bytes.
	MemorySize = 4096

	// MaxAddress is the last valid address.
	MaxAddress = MemorySize - 1

	// ProgramStart is where program images are loaded and where
	// execution begins.
	ProgramStart = 0x200

	// MaxProgramSize is the largest image Load accepts.
	MaxProgramSize = MaxAddress - ProgramStart + 1

	// FontStart is the address of the glyph for digit 0.
	FontStart = 0x000

	// GlyphSize is the number of bytes (rows) of one font glyph.
	GlyphSize = 5
)

// FontSet holds the 4x5 glyphs for the hexadecimal digits 0-F.
var FontSet = [16 * GlyphSize]byte{
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

// GlyphAddress returns the address of the glyph for the low nibble of digit.
func GlyphAddress(digit uint8) uint16 {
	return FontStart + uint16(digit&0xF)*GlyphSize
}

// Memory is the 4KB CHIP-8 address space. Every access is bounds checked.
type Memory struct {
	data    [MemorySize]byte
	onWrite func(addr uint16)
}

// NewMemory creates a memory with the font set loaded.
func NewMemory() *Memory {
	m := &Memory{}
	copy(m.data[FontStart:], FontSet[:])
	return m
}

// SetWriteHook registers fn to be called with the address of every byte
// written after the call. A nil fn removes the hook.
func (m *Memory) SetWriteHook(fn func(addr uint16)) {
	m.onWrite = fn
}

// checkRange validates the n-byte range starting at addr.
func checkRange(addr uint16, n int) error {
	if int(addr)+n-1 > MaxAddress {
		return fmt.Errorf("access of %d bytes at 0x%04X: %w", n, addr, ErrOutOfBounds)
	}
	return nil
}

// Read8 reads a byte.
func (m *Memory) Read8(addr uint16) (byte, error) {
	if err := checkRange(addr, 1); err != nil {
		return 0, err
	}
	return m.data[addr], nil
}

// Write8 writes a byte.
func (m *Memory) Write8(addr uint16, value byte) error {
	if err := checkRange(addr, 1); err != nil {
		return err
	}
	m.data[addr] = value
	m.written(addr)
	return nil
}

// Read16 reads a big-endian 16-bit word at addr and addr+1.
func (m *Memory) Read16(addr uint16) (uint16, error) {
	if err := checkRange(addr, 2); err != nil {
		return 0, err
	}
	return uint16(m.data[addr])<<8 | uint16(m.data[addr+1]), nil
}

// ReadRange returns a copy of n bytes starting at addr.
func (m *Memory) ReadRange(addr uint16, n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	if err := checkRange(addr, n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, m.data[addr:])
	return out, nil
}

// WriteRange writes data starting at addr. Nothing is written when the
// range does not fit.
func (m *Memory) WriteRange(addr uint16, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if err := checkRange(addr, len(data)); err != nil {
		return err
	}
	copy(m.data[addr:], data)
	for i := range data {
		m.written(addr + uint16(i))
	}
	return nil
}

// LoadProgram copies a program image to ProgramStart.
func (m *Memory) LoadProgram(program []byte) error {
	if len(program) > MaxProgramSize {
		return fmt.Errorf("%d bytes exceeds the %d byte limit: %w",
			len(program), MaxProgramSize, ErrRomTooLarge)
	}
	return m.WriteRange(ProgramStart, program)
}

func (m *Memory) written(addr uint16) {
	if m.onWrite != nil {
		m.onWrite(addr)
	}
}

// Clear zeroes memory and reloads the font set. The write hook is not
// called.
func (m *Memory) Clear() {
	m.data = [MemorySize]byte{}
	copy(m.data[FontStart:], FontSet[:])
}

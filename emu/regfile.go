// Package emu provides functional CHIP-8 emulation.
package emu

// RegisterCount is the number of general-purpose V registers.
const RegisterCount = 16

// FlagRegister is the index of VF, which doubles as the carry, borrow
// and collision flag.
const FlagRegister = 0xF

// RegFile represents the CHIP-8 register file.
// It contains 16 general-purpose 8-bit registers (V0-VF),
// the address register (I), and the program counter (PC).
type RegFile struct {
	// V holds general-purpose registers V0-VF.
	// V[0xF] is overwritten by arithmetic and draw operations.
	V [RegisterCount]uint8

	// I is the address register. Only the low 12 bits address memory.
	I uint16

	// PC is the program counter.
	PC uint16
}

// ReadReg reads a V register. Only the low nibble of reg is used.
func (r *RegFile) ReadReg(reg uint8) uint8 {
	return r.V[reg&0xF]
}

// WriteReg writes a V register. Only the low nibble of reg is used.
func (r *RegFile) WriteReg(reg uint8, value uint8) {
	r.V[reg&0xF] = value
}

// SetFlag writes 1 or 0 to VF.
func (r *RegFile) SetFlag(set bool) {
	if set {
		r.V[FlagRegister] = 1
		return
	}
	r.V[FlagRegister] = 0
}

// Flag reads VF.
func (r *RegFile) Flag() uint8 {
	return r.V[FlagRegister]
}

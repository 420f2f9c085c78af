// Package emu provides functional CHIP-8 emulation.
package emu

// ALU implements the CHIP-8 register arithmetic and logic operations.
// All results wrap modulo 256. Where VF is written as a flag it is
// written before the destination, so a destination of VF keeps the
// arithmetic result.
type ALU struct {
	regFile *RegFile
}

// NewALU creates a new ALU connected to the given register file.
func NewALU(regFile *RegFile) *ALU {
	return &ALU{regFile: regFile}
}

// LDImm loads an immediate: Vx = nn
func (a *ALU) LDImm(x, nn uint8) {
	a.regFile.WriteReg(x, nn)
}

// ADDImm adds an immediate without touching VF: Vx = Vx + nn
func (a *ALU) ADDImm(x, nn uint8) {
	a.regFile.WriteReg(x, a.regFile.ReadReg(x)+nn)
}

// LD copies a register: Vx = Vy
func (a *ALU) LD(x, y uint8) {
	a.regFile.WriteReg(x, a.regFile.ReadReg(y))
}

// OR performs bitwise OR: Vx = Vx | Vy
func (a *ALU) OR(x, y uint8) {
	a.regFile.WriteReg(x, a.regFile.ReadReg(x)|a.regFile.ReadReg(y))
}

// AND performs bitwise AND: Vx = Vx & Vy
func (a *ALU) AND(x, y uint8) {
	a.regFile.WriteReg(x, a.regFile.ReadReg(x)&a.regFile.ReadReg(y))
}

// XOR performs bitwise XOR: Vx = Vx ^ Vy
func (a *ALU) XOR(x, y uint8) {
	a.regFile.WriteReg(x, a.regFile.ReadReg(x)^a.regFile.ReadReg(y))
}

// ADD adds with carry: VF = carry, Vx = Vx + Vy
func (a *ALU) ADD(x, y uint8) {
	sum := uint16(a.regFile.ReadReg(x)) + uint16(a.regFile.ReadReg(y))

	a.regFile.SetFlag(sum > 0xFF)
	a.regFile.WriteReg(x, uint8(sum))
}

// SUB subtracts: VF = (Vx >= Vy), Vx = Vx - Vy
func (a *ALU) SUB(x, y uint8) {
	vx := a.regFile.ReadReg(x)
	vy := a.regFile.ReadReg(y)

	a.regFile.SetFlag(vx >= vy)
	a.regFile.WriteReg(x, vx-vy)
}

// SUBN subtracts in reverse: VF = (Vy >= Vx), Vx = Vy - Vx
func (a *ALU) SUBN(x, y uint8) {
	vx := a.regFile.ReadReg(x)
	vy := a.regFile.ReadReg(y)

	a.regFile.SetFlag(vy >= vx)
	a.regFile.WriteReg(x, vy-vx)
}

// SHR shifts right by one: VF = Vx & 1, Vx = Vx >> 1
func (a *ALU) SHR(x uint8) {
	vx := a.regFile.ReadReg(x)

	a.regFile.SetFlag(vx&0x01 != 0)
	a.regFile.WriteReg(x, vx>>1)
}

// SHL shifts left by one: VF = Vx >> 7, Vx = Vx << 1
func (a *ALU) SHL(x uint8) {
	vx := a.regFile.ReadReg(x)

	a.regFile.SetFlag(vx&0x80 != 0)
	a.regFile.WriteReg(x, vx<<1)
}

// RND stores a masked random byte: Vx = random & nn
func (a *ALU) RND(x, nn, random uint8) {
	a.regFile.WriteReg(x, random&nn)
}

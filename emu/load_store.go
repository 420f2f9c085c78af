// Package emu provides functional CHIP-8 emulation.
package emu

// LoadStoreUnit implements the operations that move data through the I
// register. Multi-byte transfers are bounds checked as a whole before
// anything is written, and none of them change I.
type LoadStoreUnit struct {
	regFile *RegFile
	memory  *Memory
}

// NewLoadStoreUnit creates a new LoadStoreUnit connected to the given
// register file and memory.
func NewLoadStoreUnit(regFile *RegFile, memory *Memory) *LoadStoreUnit {
	return &LoadStoreUnit{
		regFile: regFile,
		memory:  memory,
	}
}

// LDI sets the address register: I = nnn
func (lsu *LoadStoreUnit) LDI(nnn uint16) {
	lsu.regFile.I = nnn
}

// ADDI adds a register to I without touching VF: I = I + Vx
func (lsu *LoadStoreUnit) ADDI(x uint8) {
	lsu.regFile.I += uint16(lsu.regFile.ReadReg(x))
}

// LDF points I at the font glyph for the low nibble of Vx.
func (lsu *LoadStoreUnit) LDF(x uint8) {
	lsu.regFile.I = GlyphAddress(lsu.regFile.ReadReg(x))
}

// LDB stores the decimal digits of Vx at mem[I], mem[I+1], mem[I+2].
func (lsu *LoadStoreUnit) LDB(x uint8) error {
	vx := lsu.regFile.ReadReg(x)
	digits := []byte{vx / 100, (vx / 10) % 10, vx % 10}
	return lsu.memory.WriteRange(lsu.regFile.I, digits)
}

// STR stores V0..Vx to mem[I..I+x].
func (lsu *LoadStoreUnit) STR(x uint8) error {
	n := int(x&0xF) + 1
	return lsu.memory.WriteRange(lsu.regFile.I, lsu.regFile.V[:n])
}

// LDR loads V0..Vx from mem[I..I+x].
func (lsu *LoadStoreUnit) LDR(x uint8) error {
	n := int(x&0xF) + 1
	data, err := lsu.memory.ReadRange(lsu.regFile.I, n)
	if err != nil {
		return err
	}
	copy(lsu.regFile.V[:n], data)
	return nil
}

// Sprite reads the n sprite rows starting at I.
func (lsu *LoadStoreUnit) Sprite(n uint8) ([]byte, error) {
	return lsu.memory.ReadRange(lsu.regFile.I, int(n))
}

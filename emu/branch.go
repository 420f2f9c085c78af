// Package emu provides functional CHIP-8 emulation.
package emu

// InstructionSize is the width of every instruction in bytes.
const InstructionSize = 2

// BranchUnit implements the CHIP-8 control flow operations. Every
// method leaves PC at the address of the next instruction to fetch.
type BranchUnit struct {
	regFile *RegFile
	stack   *Stack
}

// NewBranchUnit creates a new BranchUnit connected to the given register
// file and call stack.
func NewBranchUnit(regFile *RegFile, stack *Stack) *BranchUnit {
	return &BranchUnit{regFile: regFile, stack: stack}
}

// JP jumps to an absolute address: PC = nnn
func (b *BranchUnit) JP(nnn uint16) {
	b.regFile.PC = nnn
}

// JPV0 jumps to an address offset by V0: PC = nnn + V0
func (b *BranchUnit) JPV0(nnn uint16) {
	b.regFile.PC = nnn + uint16(b.regFile.ReadReg(0))
}

// CALL pushes the address of the following instruction and jumps to nnn.
// On overflow PC is left unchanged.
func (b *BranchUnit) CALL(nnn uint16) error {
	if err := b.stack.Push(b.regFile.PC + InstructionSize); err != nil {
		return err
	}
	b.regFile.PC = nnn
	return nil
}

// RET pops the return address into PC. On underflow PC is left unchanged.
func (b *BranchUnit) RET() error {
	addr, err := b.stack.Pop()
	if err != nil {
		return err
	}
	b.regFile.PC = addr
	return nil
}

// Skip advances PC past the next instruction when cond holds, and to the
// next instruction otherwise.
func (b *BranchUnit) Skip(cond bool) {
	if cond {
		b.regFile.PC += 2 * InstructionSize
		return
	}
	b.regFile.PC += InstructionSize
}

// SEImm skips if Vx == nn.
func (b *BranchUnit) SEImm(x, nn uint8) {
	b.Skip(b.regFile.ReadReg(x) == nn)
}

// SNEImm skips if Vx != nn.
func (b *BranchUnit) SNEImm(x, nn uint8) {
	b.Skip(b.regFile.ReadReg(x) != nn)
}

// SE skips if Vx == Vy.
func (b *BranchUnit) SE(x, y uint8) {
	b.Skip(b.regFile.ReadReg(x) == b.regFile.ReadReg(y))
}

// SNE skips if Vx != Vy.
func (b *BranchUnit) SNE(x, y uint8) {
	b.Skip(b.regFile.ReadReg(x) != b.regFile.ReadReg(y))
}

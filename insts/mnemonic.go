package insts

import (
	"github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// mnemonics maps each operation to its entry in the shared CHIP-8
// instruction set description.
var mnemonics = map[Op]chip8.OpcodeID{
	OpCLS:    chip8.Cls,
	OpRET:    chip8.Ret,
	OpJP:     chip8.Jp,
	OpCALL:   chip8.Call,
	OpSEImm:  chip8.Se,
	OpSNEImm: chip8.Sne,
	OpSEReg:  chip8.Se,
	OpLDImm:  chip8.Ld,
	OpADDImm: chip8.Add,
	OpLDReg:  chip8.Ld,
	OpOR:     chip8.Or,
	OpAND:    chip8.And,
	OpXOR:    chip8.Xor,
	OpADDReg: chip8.Add,
	OpSUB:    chip8.Sub,
	OpSHR:    chip8.Shr,
	OpSUBN:   chip8.Subn,
	OpSHL:    chip8.Shl,
	OpSNEReg: chip8.Sne,
	OpLDI:    chip8.Ld,
	OpJPV0:   chip8.Jp,
	OpRND:    chip8.Rnd,
	OpDRW:    chip8.Drw,
	OpSKP:    chip8.Skp,
	OpSKNP:   chip8.Sknp,
	OpLDVxDT: chip8.Ld,
	OpLDVxK:  chip8.Ld,
	OpLDDTVx: chip8.Ld,
	OpLDSTVx: chip8.Ld,
	OpADDI:   chip8.Add,
	OpLDF:    chip8.Ld,
	OpLDB:    chip8.Ld,
	OpSTR:    chip8.Ld,
	OpLDR:    chip8.Ld,
}

// Mnemonic returns the assembler mnemonic of the operation, or "unknown".
func (o Op) Mnemonic() string {
	if id, ok := mnemonics[o]; ok && id != chip8.InvalidOpcodeID {
		return chip8.OpcodeIDToName[id]
	}
	return "unknown"
}

// String implements fmt.Stringer.
func (o Op) String() string {
	return o.Mnemonic()
}

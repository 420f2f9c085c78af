// Package insts provides CHIP-8 instruction definitions and decoding.
package insts

import "fmt"

// Op represents a CHIP-8 operation.
type Op uint8

// CHIP-8 operations. Names follow the conventional mnemonic plus the
// operand form where the mnemonic alone is ambiguous.
const (
	OpUnknown Op = iota
	OpCLS        // 00E0
	OpRET        // 00EE
	OpJP         // 1nnn
	OpCALL       // 2nnn
	OpSEImm      // 3xnn
	OpSNEImm     // 4xnn
	OpSEReg      // 5xy0
	OpLDImm      // 6xnn
	OpADDImm     // 7xnn
	OpLDReg      // 8xy0
	OpOR         // 8xy1
	OpAND        // 8xy2
	OpXOR        // 8xy3
	OpADDReg     // 8xy4
	OpSUB        // 8xy5
	OpSHR        // 8xy6
	OpSUBN       // 8xy7
	OpSHL        // 8xyE
	OpSNEReg     // 9xy0
	OpLDI        // Annn
	OpJPV0       // Bnnn
	OpRND        // Cxnn
	OpDRW        // Dxyn
	OpSKP        // Ex9E
	OpSKNP       // ExA1
	OpLDVxDT     // Fx07
	OpLDVxK      // Fx0A
	OpLDDTVx     // Fx15
	OpLDSTVx     // Fx18
	OpADDI       // Fx1E
	OpLDF        // Fx29
	OpLDB        // Fx33
	OpSTR        // Fx55
	OpLDR        // Fx65
)

// Format groups operations by the machine resource they use.
type Format uint8

// Instruction formats.
const (
	FormatUnknown Format = iota
	FormatFlow           // Jumps, calls and returns (set PC explicitly)
	FormatSkip           // Conditional skips (PC += 2 or 4)
	FormatALU            // Register loads and arithmetic
	FormatIndex          // Writes to the I register
	FormatMemory         // Bulk and BCD memory transfers through I
	FormatDisplay        // Framebuffer operations
	FormatTimer          // Delay and sound timer transfers
	FormatKey            // Blocking key wait
	FormatRandom         // Random byte generation
)

// Instruction represents a decoded CHIP-8 instruction.
type Instruction struct {
	Op     Op     // Operation
	Format Format // Resource class
	Word   uint16 // Raw instruction word

	X   uint8  // Second nibble, register index
	Y   uint8  // Third nibble, register index
	N   uint8  // Low nibble
	NN  uint8  // Low byte
	NNN uint16 // Low 12 bits
}

// String returns the raw word followed by the mnemonic.
func (i *Instruction) String() string {
	return fmt.Sprintf("%04X %s", i.Word, i.Op)
}

// Nibbles splits an instruction word into its four 4-bit fields, most
// significant first.
func Nibbles(word uint16) (a, b, c, d uint8) {
	return uint8(word >> 12), uint8(word>>8) & 0xF, uint8(word>>4) & 0xF, uint8(word) & 0xF
}

// Decoder decodes CHIP-8 instruction words.
type Decoder struct{}

// NewDecoder creates a new CHIP-8 instruction decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode decodes a 16-bit instruction word. Unmatched words return an
// instruction with Op set to OpUnknown; operand fields are still filled.
func (d *Decoder) Decode(word uint16) *Instruction {
	a, x, y, n := Nibbles(word)

	inst := &Instruction{
		Op:     OpUnknown,
		Format: FormatUnknown,
		Word:   word,
		X:      x,
		Y:      y,
		N:      n,
		NN:     uint8(word),
		NNN:    word & 0x0FFF,
	}

	switch a {
	case 0x0:
		d.decodeSystem(word, inst)
	case 0x1:
		inst.set(OpJP, FormatFlow)
	case 0x2:
		inst.set(OpCALL, FormatFlow)
	case 0x3:
		inst.set(OpSEImm, FormatSkip)
	case 0x4:
		inst.set(OpSNEImm, FormatSkip)
	case 0x5:
		if n == 0x0 {
			inst.set(OpSEReg, FormatSkip)
		}
	case 0x6:
		inst.set(OpLDImm, FormatALU)
	case 0x7:
		inst.set(OpADDImm, FormatALU)
	case 0x8:
		d.decodeArithmetic(n, inst)
	case 0x9:
		if n == 0x0 {
			inst.set(OpSNEReg, FormatSkip)
		}
	case 0xA:
		inst.set(OpLDI, FormatIndex)
	case 0xB:
		inst.set(OpJPV0, FormatFlow)
	case 0xC:
		inst.set(OpRND, FormatRandom)
	case 0xD:
		inst.set(OpDRW, FormatDisplay)
	case 0xE:
		d.decodeKey(inst.NN, inst)
	case 0xF:
		d.decodeMisc(inst.NN, inst)
	}

	return inst
}

// decodeSystem decodes the 0x0 group. Only 00E0 and 00EE are defined;
// machine-code calls (0nnn) are not supported.
func (d *Decoder) decodeSystem(word uint16, inst *Instruction) {
	switch word {
	case 0x00E0:
		inst.set(OpCLS, FormatDisplay)
	case 0x00EE:
		inst.set(OpRET, FormatFlow)
	}
}

// decodeArithmetic decodes the 8xyN register-register group.
func (d *Decoder) decodeArithmetic(n uint8, inst *Instruction) {
	switch n {
	case 0x0:
		inst.set(OpLDReg, FormatALU)
	case 0x1:
		inst.set(OpOR, FormatALU)
	case 0x2:
		inst.set(OpAND, FormatALU)
	case 0x3:
		inst.set(OpXOR, FormatALU)
	case 0x4:
		inst.set(OpADDReg, FormatALU)
	case 0x5:
		inst.set(OpSUB, FormatALU)
	case 0x6:
		inst.set(OpSHR, FormatALU)
	case 0x7:
		inst.set(OpSUBN, FormatALU)
	case 0xE:
		inst.set(OpSHL, FormatALU)
	}
}

// decodeKey decodes the ExNN keypad skip group.
func (d *Decoder) decodeKey(nn uint8, inst *Instruction) {
	switch nn {
	case 0x9E:
		inst.set(OpSKP, FormatSkip)
	case 0xA1:
		inst.set(OpSKNP, FormatSkip)
	}
}

// decodeMisc decodes the FxNN group.
func (d *Decoder) decodeMisc(nn uint8, inst *Instruction) {
	switch nn {
	case 0x07:
		inst.set(OpLDVxDT, FormatTimer)
	case 0x0A:
		inst.set(OpLDVxK, FormatKey)
	case 0x15:
		inst.set(OpLDDTVx, FormatTimer)
	case 0x18:
		inst.set(OpLDSTVx, FormatTimer)
	case 0x1E:
		inst.set(OpADDI, FormatIndex)
	case 0x29:
		inst.set(OpLDF, FormatIndex)
	case 0x33:
		inst.set(OpLDB, FormatMemory)
	case 0x55:
		inst.set(OpSTR, FormatMemory)
	case 0x65:
		inst.set(OpLDR, FormatMemory)
	}
}

func (i *Instruction) set(op Op, format Format) {
	i.Op = op
	i.Format = format
}

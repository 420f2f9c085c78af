package benchmarks

// Helper functions for building CHIP-8 programs. Register arguments use
// the low nibble, addresses the low 12 bits.

// BuildProgram assembles instruction words into a big-endian byte slice.
func BuildProgram(words ...uint16) []byte {
	program := make([]byte, 0, len(words)*2)
	for _, w := range words {
		program = append(program, byte(w>>8), byte(w))
	}
	return program
}

// Addr returns the address of the i-th instruction of a program loaded
// at the program area.
func Addr(i int) uint16 {
	return uint16(0x200 + 2*i)
}

func encodeAddr(op uint16, nnn uint16) uint16 {
	return op<<12 | nnn&0x0FFF
}

func encodeXNN(op uint16, x, nn uint8) uint16 {
	return op<<12 | uint16(x&0xF)<<8 | uint16(nn)
}

func encodeXYN(op uint16, x, y, n uint8) uint16 {
	return op<<12 | uint16(x&0xF)<<8 | uint16(y&0xF)<<4 | uint16(n&0xF)
}

// EncodeCLS encodes 00E0.
func EncodeCLS() uint16 { return 0x00E0 }

// EncodeRET encodes 00EE.
func EncodeRET() uint16 { return 0x00EE }

// EncodeJP encodes 1nnn.
func EncodeJP(nnn uint16) uint16 { return encodeAddr(0x1, nnn) }

// EncodeCALL encodes 2nnn.
func EncodeCALL(nnn uint16) uint16 { return encodeAddr(0x2, nnn) }

// EncodeSEImm encodes 3xnn.
func EncodeSEImm(x, nn uint8) uint16 { return encodeXNN(0x3, x, nn) }

// EncodeSNEImm encodes 4xnn.
func EncodeSNEImm(x, nn uint8) uint16 { return encodeXNN(0x4, x, nn) }

// EncodeSE encodes 5xy0.
func EncodeSE(x, y uint8) uint16 { return encodeXYN(0x5, x, y, 0x0) }

// EncodeLDImm encodes 6xnn.
func EncodeLDImm(x, nn uint8) uint16 { return encodeXNN(0x6, x, nn) }

// EncodeADDImm encodes 7xnn.
func EncodeADDImm(x, nn uint8) uint16 { return encodeXNN(0x7, x, nn) }

// EncodeLD encodes 8xy0.
func EncodeLD(x, y uint8) uint16 { return encodeXYN(0x8, x, y, 0x0) }

// EncodeOR encodes 8xy1.
func EncodeOR(x, y uint8) uint16 { return encodeXYN(0x8, x, y, 0x1) }

// EncodeAND encodes 8xy2.
func EncodeAND(x, y uint8) uint16 { return encodeXYN(0x8, x, y, 0x2) }

// EncodeXOR encodes 8xy3.
func EncodeXOR(x, y uint8) uint16 { return encodeXYN(0x8, x, y, 0x3) }

// EncodeADD encodes 8xy4.
func EncodeADD(x, y uint8) uint16 { return encodeXYN(0x8, x, y, 0x4) }

// EncodeSUB encodes 8xy5.
func EncodeSUB(x, y uint8) uint16 { return encodeXYN(0x8, x, y, 0x5) }

// EncodeSHR encodes 8xy6.
func EncodeSHR(x uint8) uint16 { return encodeXYN(0x8, x, 0, 0x6) }

// EncodeSUBN encodes 8xy7.
func EncodeSUBN(x, y uint8) uint16 { return encodeXYN(0x8, x, y, 0x7) }

// EncodeSHL encodes 8xyE.
func EncodeSHL(x uint8) uint16 { return encodeXYN(0x8, x, 0, 0xE) }

// EncodeSNE encodes 9xy0.
func EncodeSNE(x, y uint8) uint16 { return encodeXYN(0x9, x, y, 0x0) }

// EncodeLDI encodes Annn.
func EncodeLDI(nnn uint16) uint16 { return encodeAddr(0xA, nnn) }

// EncodeJPV0 encodes Bnnn.
func EncodeJPV0(nnn uint16) uint16 { return encodeAddr(0xB, nnn) }

// EncodeRND encodes Cxnn.
func EncodeRND(x, nn uint8) uint16 { return encodeXNN(0xC, x, nn) }

// EncodeDRW encodes Dxyn.
func EncodeDRW(x, y, n uint8) uint16 { return encodeXYN(0xD, x, y, n) }

// EncodeSKP encodes Ex9E.
func EncodeSKP(x uint8) uint16 { return encodeXNN(0xE, x, 0x9E) }

// EncodeSKNP encodes ExA1.
func EncodeSKNP(x uint8) uint16 { return encodeXNN(0xE, x, 0xA1) }

// EncodeLDVxDT encodes Fx07.
func EncodeLDVxDT(x uint8) uint16 { return encodeXNN(0xF, x, 0x07) }

// EncodeLDVxK encodes Fx0A.
func EncodeLDVxK(x uint8) uint16 { return encodeXNN(0xF, x, 0x0A) }

// EncodeLDDT encodes Fx15.
func EncodeLDDT(x uint8) uint16 { return encodeXNN(0xF, x, 0x15) }

// EncodeLDST encodes Fx18.
func EncodeLDST(x uint8) uint16 { return encodeXNN(0xF, x, 0x18) }

// EncodeADDI encodes Fx1E.
func EncodeADDI(x uint8) uint16 { return encodeXNN(0xF, x, 0x1E) }

// EncodeLDF encodes Fx29.
func EncodeLDF(x uint8) uint16 { return encodeXNN(0xF, x, 0x29) }

// EncodeLDB encodes Fx33.
func EncodeLDB(x uint8) uint16 { return encodeXNN(0xF, x, 0x33) }

// EncodeSTR encodes Fx55.
func EncodeSTR(x uint8) uint16 { return encodeXNN(0xF, x, 0x55) }

// EncodeLDR encodes Fx65.
func EncodeLDR(x uint8) uint16 { return encodeXNN(0xF, x, 0x65) }

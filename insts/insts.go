// Package insts provides CHIP-8 instruction definitions and decoding.
//
// Every CHIP-8 instruction is a single big-endian 16-bit word. The decoder
// splits the word into four nibbles (a, b, c, d), derives the common operand
// forms and tags the result with an Op and a Format:
//   - nnn: low 12 bits (address)
//   - nn:  low 8 bits (immediate byte)
//   - n:   low 4 bits (sprite height)
//   - x:   second nibble (register index)
//   - y:   third nibble (register index)
//
// Words that match no entry of the instruction table decode to OpUnknown.
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst := decoder.Decode(0x8124) // ADD V1, V2
//	fmt.Printf("Op: %v, X: %d, Y: %d\n", inst.Op, inst.X, inst.Y)
package insts

// Package emu provides functional CHIP-8 emulation.
package emu

import (
	"errors"
	"fmt"
)

// Errors returned by the machine. Wrapped errors carry the failing
// address; test them with errors.Is.
var (
	// ErrRomTooLarge is returned by Load when the image does not fit
	// between ProgramStart and the end of memory.
	ErrRomTooLarge = errors.New("rom too large")

	// ErrOutOfBounds is returned when a fetch or an I-relative access
	// reaches past the last memory address.
	ErrOutOfBounds = errors.New("address out of bounds")

	// ErrUnknownOpcode matches every *UnknownOpcodeError.
	ErrUnknownOpcode = errors.New("unknown opcode")

	// ErrStackOverflow is returned by CALL with all 16 stack slots in use.
	ErrStackOverflow = errors.New("stack overflow")

	// ErrStackUnderflow is returned by RET with an empty stack.
	ErrStackUnderflow = errors.New("stack underflow")

	// ErrInvalidKey is returned for key codes above 0xF.
	ErrInvalidKey = errors.New("invalid key code")

	// ErrMaxInstructions is returned once the configured instruction
	// limit has been reached.
	ErrMaxInstructions = errors.New("max instructions reached")

	// ErrHalted wraps the fault that stopped the machine. It is returned
	// by every Step until Reset.
	ErrHalted = errors.New("machine halted")
)

// UnknownOpcodeError reports an instruction word that matches no entry
// of the instruction table.
type UnknownOpcodeError struct {
	Opcode uint16
	PC     uint16
}

func (e *UnknownOpcodeError) Error() string {
	return fmt.Sprintf("unknown opcode 0x%04X at PC=0x%03X", e.Opcode, e.PC)
}

// Is reports whether target is ErrUnknownOpcode.
func (e *UnknownOpcodeError) Is(target error) bool {
	return target == ErrUnknownOpcode
}

// IsFatal reports whether err stops the machine. Unknown opcodes and
// the instruction limit are left to the host.
func IsFatal(err error) bool {
	return errors.Is(err, ErrOutOfBounds) ||
		errors.Is(err, ErrStackOverflow) ||
		errors.Is(err, ErrStackUnderflow) ||
		errors.Is(err, ErrHalted)
}

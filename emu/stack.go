// Package emu provides functional CHIP-8 emulation.
package emu

import "fmt"

// StackSize is the number of return address slots.
const StackSize = 16

// Stack is the bounded call stack. The pointer counts used slots; it
// never wraps.
type Stack struct {
	slots [StackSize]uint16
	sp    uint8
}

// Push stores a return address.
func (s *Stack) Push(addr uint16) error {
	if s.sp >= StackSize {
		return fmt.Errorf("push 0x%03X with %d slots in use: %w", addr, s.sp, ErrStackOverflow)
	}
	s.slots[s.sp] = addr
	s.sp++
	return nil
}

// Pop removes and returns the most recent return address.
func (s *Stack) Pop() (uint16, error) {
	if s.sp == 0 {
		return 0, ErrStackUnderflow
	}
	s.sp--
	return s.slots[s.sp], nil
}

// Pointer returns the number of slots in use (0-16).
func (s *Stack) Pointer() int {
	return int(s.sp)
}

// Frames returns the stored return addresses, oldest first.
func (s *Stack) Frames() []uint16 {
	out := make([]uint16, s.sp)
	copy(out, s.slots[:s.sp])
	return out
}

// Reset empties the stack.
func (s *Stack) Reset() {
	s.slots = [StackSize]uint16{}
	s.sp = 0
}

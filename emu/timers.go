// Package emu provides functional CHIP-8 emulation.
package emu

// Timers holds the delay and sound countdown registers. Both are
// decremented only by Tick, never below zero.
type Timers struct {
	Delay uint8
	Sound uint8
}

// Tick decrements both timers by one, floored at zero.
func (t *Timers) Tick() {
	if t.Delay > 0 {
		t.Delay--
	}
	if t.Sound > 0 {
		t.Sound--
	}
}

// SoundActive reports whether the buzzer should be on.
func (t *Timers) SoundActive() bool {
	return t.Sound > 0
}

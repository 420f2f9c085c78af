// Package emu provides functional CHIP-8 emulation.
package emu

import "fmt"

// KeyCount is the number of keys on the hexadecimal keypad.
const KeyCount = 16

// Keypad holds the pressed state of the 16 keys. It is written by the
// host and read by the skip and key-wait instructions.
type Keypad struct {
	keys [KeyCount]bool
}

// Set records a key press or release.
func (k *Keypad) Set(code uint8, pressed bool) error {
	if code >= KeyCount {
		return fmt.Errorf("key 0x%02X: %w", code, ErrInvalidKey)
	}
	k.keys[code] = pressed
	return nil
}

// IsPressed reports whether a key is held. Codes above 0xF are never
// pressed.
func (k *Keypad) IsPressed(code uint8) bool {
	if code >= KeyCount {
		return false
	}
	return k.keys[code]
}

// FirstPressed returns the lowest pressed key code.
func (k *Keypad) FirstPressed() (uint8, bool) {
	for code, pressed := range k.keys {
		if pressed {
			return uint8(code), true
		}
	}
	return 0, false
}

// ReleaseAll marks every key as released.
func (k *Keypad) ReleaseAll() {
	k.keys = [KeyCount]bool{}
}

package main

import "time"

// keyMap maps the left-hand block of a QWERTY keyboard onto the hex
// keypad:
//
//	1 2 3 4     1 2 3 C
//	q w e r  -> 4 5 6 D
//	a s d f     7 8 9 E
//	z x c v     A 0 B F
var keyMap = map[byte]uint8{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xC,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xD,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xE,
	'z': 0xA, 'x': 0x0, 'c': 0xB, 'v': 0xF,
}

// quitKey ends an interactive session.
const quitKey = 0x1B

// mapKey returns the keypad code for a terminal byte. Upper-case letters
// map like their lower-case forms.
func mapKey(b byte) (uint8, bool) {
	if b >= 'A' && b <= 'Z' {
		b += 'a' - 'A'
	}
	code, ok := keyMap[b]
	return code, ok
}

// keySetter receives keypad transitions.
type keySetter interface {
	SetKey(code uint8, pressed bool) error
}

// Keyboard turns terminal key presses into keypad state. Terminals do not
// report key releases, so a key stays down until hold has elapsed since
// its last repeat.
type Keyboard struct {
	target   keySetter
	hold     time.Duration
	deadline [16]time.Time
}

// NewKeyboard creates a keyboard feeding target.
func NewKeyboard(target keySetter, hold time.Duration) *Keyboard {
	return &Keyboard{target: target, hold: hold}
}

// Press handles one byte read from the terminal. It reports whether the
// byte was a mapped key.
func (k *Keyboard) Press(b byte, now time.Time) bool {
	code, ok := mapKey(b)
	if !ok {
		return false
	}
	if k.deadline[code].IsZero() {
		_ = k.target.SetKey(code, true)
	}
	k.deadline[code] = now.Add(k.hold)
	return true
}

// Release lifts every key whose hold time has expired.
func (k *Keyboard) Release(now time.Time) {
	for code, deadline := range k.deadline {
		if deadline.IsZero() || now.Before(deadline) {
			continue
		}
		k.deadline[code] = time.Time{}
		_ = k.target.SetKey(uint8(code), false)
	}
}

// Held reports whether code is currently held.
func (k *Keyboard) Held(code uint8) bool {
	return int(code) < len(k.deadline) && !k.deadline[code].IsZero()
}

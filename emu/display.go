// Package emu provides functional CHIP-8 emulation.
package emu

import "strings"

// Display dimensions in pixels.
const (
	DisplayWidth  = 64
	DisplayHeight = 32
)

// Frame is a snapshot of the display. Every entry is 0 or 1.
type Frame [DisplayHeight][DisplayWidth]uint8

// Framebuffer is the monochrome display. Sprites are composited by XOR.
// The dirty flag is raised by every mutation and cleared only by
// ConsumeRedraw.
type Framebuffer struct {
	pixels Frame
	dirty  bool
}

// Clear turns every pixel off.
func (f *Framebuffer) Clear() {
	f.pixels = Frame{}
	f.dirty = true
}

// DrawSprite XORs an 8-pixel-wide sprite, one byte per row, onto the
// display at (x, y). Each pixel wraps around the edges independently.
// It returns true if any lit pixel was turned off.
func (f *Framebuffer) DrawSprite(x, y uint8, rows []byte) bool {
	collision := false

	for r, bits := range rows {
		py := (int(y) + r) % DisplayHeight
		for c := 0; c < 8; c++ {
			if bits&(0x80>>c) == 0 {
				continue
			}
			px := (int(x) + c) % DisplayWidth
			if f.pixels[py][px] == 1 {
				collision = true
			}
			f.pixels[py][px] ^= 1
		}
	}

	f.dirty = true
	return collision
}

// Pixel returns the pixel at (x, y). Coordinates wrap.
func (f *Framebuffer) Pixel(x, y int) uint8 {
	return f.pixels[mod(y, DisplayHeight)][mod(x, DisplayWidth)]
}

// Frame returns a copy of the display contents.
func (f *Framebuffer) Frame() Frame {
	return f.pixels
}

// Dirty reports whether the display changed since the last ConsumeRedraw.
func (f *Framebuffer) Dirty() bool {
	return f.dirty
}

// ConsumeRedraw returns the dirty flag and clears it.
func (f *Framebuffer) ConsumeRedraw() bool {
	d := f.dirty
	f.dirty = false
	return d
}

// LitPixels counts the pixels that are on.
func (f *Framebuffer) LitPixels() int {
	n := 0
	for y := range f.pixels {
		for x := range f.pixels[y] {
			n += int(f.pixels[y][x])
		}
	}
	return n
}

// String renders the display as text, one line per row, '#' for lit
// pixels and '.' otherwise.
func (f *Framebuffer) String() string {
	return f.pixels.String()
}

// String renders the frame as text, one line per row.
func (fr Frame) String() string {
	var sb strings.Builder
	sb.Grow(DisplayHeight * (DisplayWidth + 1))
	for y := range fr {
		for x := range fr[y] {
			if fr[y][x] != 0 {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func mod(v, m int) int {
	v %= m
	if v < 0 {
		v += m
	}
	return v
}

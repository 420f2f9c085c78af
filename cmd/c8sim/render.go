package main

import (
	"bytes"
	"io"

	"github.com/sarchlab/c8sim/emu"
)

const (
	ansiHome       = "\x1b[H"
	ansiClear      = "\x1b[2J"
	ansiHideCursor = "\x1b[?25l"
	ansiShowCursor = "\x1b[?25h"
)

// Renderer draws frames to a terminal. Each pixel is two cells wide so
// the picture keeps its aspect ratio.
type Renderer struct {
	out io.Writer
	buf bytes.Buffer
}

// NewRenderer creates a renderer writing to out.
func NewRenderer(out io.Writer) *Renderer {
	return &Renderer{out: out}
}

// Begin clears the screen and hides the cursor.
func (r *Renderer) Begin() error {
	_, err := io.WriteString(r.out, ansiClear+ansiHome+ansiHideCursor)
	return err
}

// End restores the cursor below the picture.
func (r *Renderer) End() error {
	_, err := io.WriteString(r.out, ansiShowCursor+"\r\n")
	return err
}

// Draw writes a full frame, overwriting the previous one.
func (r *Renderer) Draw(frame emu.Frame) error {
	r.buf.Reset()
	r.buf.WriteString(ansiHome)
	for y := range frame {
		for x := range frame[y] {
			if frame[y][x] != 0 {
				r.buf.WriteString("██")
			} else {
				r.buf.WriteString("  ")
			}
		}
		// Raw mode disables output post-processing.
		r.buf.WriteString("\r\n")
	}
	_, err := r.out.Write(r.buf.Bytes())
	return err
}

// Beep rings the terminal bell.
func (r *Renderer) Beep() error {
	_, err := io.WriteString(r.out, "\a")
	return err
}

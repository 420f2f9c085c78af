package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/retroenv/retrogolib/log"

	"github.com/sarchlab/c8sim/timing/core"
)

// keyHold is how long a key stays pressed after the last byte the
// terminal delivered for it. It covers the usual auto-repeat delay.
const keyHold = 150 * time.Millisecond

// session advances a core in host time, feeding it keys and drawing its
// display.
type session struct {
	core     *core.Core
	keyboard *Keyboard
	renderer *Renderer
	beeping  bool
}

func newSession(c *core.Core, renderer *Renderer) *session {
	return &session{
		core:     c,
		keyboard: NewKeyboard(c.Machine(), keyHold),
		renderer: renderer,
	}
}

// frame handles one host frame: pending input, elapsed time and redraw.
// It reports whether the user asked to quit.
func (s *session) frame(now time.Time, elapsed time.Duration, input []byte) (bool, error) {
	for _, b := range input {
		if b == quitKey {
			return true, nil
		}
		s.keyboard.Press(b, now)
	}
	s.keyboard.Release(now)

	if err := s.core.Advance(elapsed); err != nil {
		return false, err
	}

	m := s.core.Machine()
	if m.ConsumeRedraw() {
		if err := s.renderer.Draw(m.Framebuffer()); err != nil {
			return false, fmt.Errorf("failed to draw frame: %w", err)
		}
	}

	sound := m.Timers().SoundActive()
	if sound && !s.beeping {
		if err := s.renderer.Beep(); err != nil {
			return false, fmt.Errorf("failed to beep: %w", err)
		}
	}
	s.beeping = sound

	return false, nil
}

// runInteractive runs the core in real time on the controlling terminal
// until the program stops, the user presses Esc or ctx is cancelled.
func runInteractive(ctx context.Context, c *core.Core, logger *log.Logger) error {
	term, err := enterRawTerm(int(os.Stdin.Fd()))
	if err != nil {
		return err
	}
	defer func() {
		if err := term.Restore(); err != nil {
			logger.Error("Restoring terminal failed", log.Err(err))
		}
	}()

	renderer := NewRenderer(os.Stdout)
	if err := renderer.Begin(); err != nil {
		return err
	}
	defer func() { _ = renderer.End() }()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	input := readInput(ctx, os.Stdin)

	s := newSession(c, renderer)
	ticker := time.NewTicker(c.Config().TimerPeriod())
	defer ticker.Stop()

	last := time.Now()
	var pending []byte

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case b := <-input:
			pending = append(pending, b...)

		case now := <-ticker.C:
			quit, err := s.frame(now, now.Sub(last), pending)
			if err != nil || quit {
				return err
			}
			last = now
			pending = pending[:0]
		}
	}
}

// readInput forwards terminal bytes until ctx is cancelled. Reads time
// out in raw mode and report io.EOF when nothing was typed.
func readInput(ctx context.Context, f *os.File) <-chan []byte {
	ch := make(chan []byte)

	go func() {
		buf := make([]byte, 64)
		for ctx.Err() == nil {
			n, err := f.Read(buf)
			if errors.Is(err, io.EOF) || n == 0 {
				continue
			}
			if err != nil {
				return
			}

			data := make([]byte, n)
			copy(data, buf[:n])
			select {
			case ch <- data:
			case <-ctx.Done():
				return
			}
		}
	}()

	return ch
}

//go:build linux || darwin

package main

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// rawTerminal holds the terminal state to restore on exit.
type rawTerminal struct {
	fd      int
	restore unix.Termios
}

// enterRawTerm puts the terminal into non-canonical mode without echo.
// Reads return after at most a tenth of a second, with or without input.
func enterRawTerm(fd int) (*rawTerminal, error) {
	termios, err := unix.IoctlGetTermios(fd, ioctlReadTermios)
	if err != nil {
		return nil, fmt.Errorf("failed to read terminal state: %w", err)
	}

	t := &rawTerminal{fd: fd, restore: *termios}
	termstate := *termios

	termstate.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.INLCR | unix.ICRNL | unix.IXON
	termstate.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.IEXTEN
	termstate.Cflag &^= unix.CSIZE | unix.PARENB
	termstate.Cflag |= unix.CS8
	termstate.Oflag &^= unix.OPOST

	termstate.Cc[unix.VMIN] = 0
	termstate.Cc[unix.VTIME] = 1

	if err := unix.IoctlSetTermios(fd, ioctlWriteTermios, &termstate); err != nil {
		return nil, fmt.Errorf("failed to enter raw mode: %w", err)
	}
	return t, nil
}

// Restore returns the terminal to the state it had before enterRawTerm.
func (t *rawTerminal) Restore() error {
	if err := unix.IoctlSetTermios(t.fd, ioctlWriteTermios, &t.restore); err != nil {
		return fmt.Errorf("failed to restore terminal: %w", err)
	}
	return nil
}

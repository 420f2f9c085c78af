//go:build !linux && !darwin

package main

import "errors"

type rawTerminal struct{}

func enterRawTerm(int) (*rawTerminal, error) {
	return nil, errors.New("interactive mode is not supported on this platform, use -headless")
}

func (t *rawTerminal) Restore() error {
	return nil
}

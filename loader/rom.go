// Package loader reads raw CHIP-8 program images.
//
// An image is a flat byte sequence with no header, loaded at
// emu.ProgramStart. The only validation possible is on its size.
package loader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sarchlab/c8sim/emu"
)

// ErrEmptyProgram is returned for images with no bytes.
var ErrEmptyProgram = errors.New("empty program image")

// Program represents a program image ready for loading into a machine.
type Program struct {
	// Name identifies the image, usually the file name without extension.
	Name string
	// Data contains the raw image.
	Data []byte
	// EntryPoint is the address where the image is loaded and execution
	// begins.
	EntryPoint uint16
}

// Target is anything a program can be loaded into.
type Target interface {
	Load(rom []byte) error
}

// Load reads a program image from a file.
func Load(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open program file: %w", err)
	}
	defer func() { _ = f.Close() }()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return Read(name, f)
}

// Read reads a program image from r. It never reads more than one byte
// past the size limit.
func Read(name string, r io.Reader) (*Program, error) {
	data, err := io.ReadAll(io.LimitReader(r, emu.MaxProgramSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read program %q: %w", name, err)
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("program %q: %w", name, ErrEmptyProgram)
	}
	if len(data) > emu.MaxProgramSize {
		return nil, fmt.Errorf("program %q is larger than %d bytes: %w",
			name, emu.MaxProgramSize, emu.ErrRomTooLarge)
	}

	return &Program{
		Name:       name,
		Data:       data,
		EntryPoint: emu.ProgramStart,
	}, nil
}

// Size returns the image size in bytes.
func (p *Program) Size() int {
	return len(p.Data)
}

// Words returns the number of whole instruction words in the image.
func (p *Program) Words() int {
	return len(p.Data) / emu.InstructionSize
}

// LoadInto copies the image into t.
func (p *Program) LoadInto(t Target) error {
	if err := t.Load(p.Data); err != nil {
		return fmt.Errorf("failed to load program %q: %w", p.Name, err)
	}
	return nil
}

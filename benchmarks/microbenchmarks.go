package benchmarks

import (
	"bytes"
	"fmt"
	"math/bits"

	"github.com/sarchlab/c8sim/emu"
	"github.com/sarchlab/c8sim/timing/core"
)

// GetMicrobenchmarks returns the standard set of programs. Each one
// targets a specific part of the machine and ends in a self-jump.
func GetMicrobenchmarks() []Benchmark {
	return []Benchmark{
		countLoop(),
		fibonacci(),
		bcdDigits(),
		nestedCalls(),
		fontSprites(),
		spriteCollision(),
		memoryCopy(),
		selfModifying(),
		delayTimer(),
		keyWait(),
	}
}

// GetCoreBenchmarks returns a minimal set for quick validation: a loop,
// a call-heavy program and a draw-heavy program.
func GetCoreBenchmarks() []Benchmark {
	return []Benchmark{
		countLoop(),
		nestedCalls(),
		fontSprites(),
	}
}

func expectReg(m *emu.Machine, reg uint8, want uint8) error {
	if got := m.RegFile().ReadReg(reg); got != want {
		return fmt.Errorf("V%X = 0x%02X, want 0x%02X", reg, got, want)
	}
	return nil
}

func expectPC(m *emu.Machine, want uint16) error {
	if got := m.RegFile().PC; got != want {
		return fmt.Errorf("PC = 0x%03X, want 0x%03X", got, want)
	}
	return nil
}

// 1. Count Loop - ALU and skip throughput
func countLoop() Benchmark {
	return Benchmark{
		Name:        "count_loop",
		Description: "Count V0 to 200 with ADD/SE/JP - measures loop throughput",
		Program: BuildProgram(
			EncodeLDImm(0, 0),
			EncodeADDImm(0, 1), // loop:
			EncodeSEImm(0, 200),
			EncodeJP(Addr(1)),
			EncodeJP(Addr(4)), // halt
		),
		Frames: 60,
		Check: func(m *emu.Machine, _ core.Stats) error {
			if err := expectReg(m, 0, 200); err != nil {
				return err
			}
			return expectPC(m, Addr(4))
		},
	}
}

// 2. Fibonacci - register moves and carry
func fibonacci() Benchmark {
	return Benchmark{
		Name:        "fibonacci",
		Description: "F(13) by repeated addition - register moves and carry flag",
		Program: BuildProgram(
			EncodeLDImm(0, 0),  // a
			EncodeLDImm(1, 1),  // b
			EncodeLDImm(2, 13), // n
			EncodeLD(3, 0),     // loop: t = a
			EncodeADD(3, 1),    // t += b
			EncodeLD(0, 1),     // a = b
			EncodeLD(1, 3),     // b = t
			EncodeADDImm(2, 0xFF),
			EncodeSEImm(2, 0),
			EncodeJP(Addr(3)),
			EncodeJP(Addr(10)), // halt
		),
		Frames: 15,
		Check: func(m *emu.Machine, _ core.Stats) error {
			if err := expectReg(m, 0, 233); err != nil {
				return err
			}
			// F(14) = 377 wraps and sets the carry on the last addition.
			if err := expectReg(m, 1, 377%256); err != nil {
				return err
			}
			return expectReg(m, 0xF, 1)
		},
	}
}

// 3. BCD Digits - decimal conversion through memory
func bcdDigits() Benchmark {
	return Benchmark{
		Name:        "bcd_digits",
		Description: "LD B,Vx of 234 then reload - BCD store and bulk load",
		Program: BuildProgram(
			EncodeLDImm(0, 234),
			EncodeLDI(0x300),
			EncodeLDB(0),
			EncodeLDR(2),
			EncodeJP(Addr(4)), // halt
		),
		Frames: 2,
		Check: func(m *emu.Machine, _ core.Stats) error {
			for reg, want := range []uint8{2, 3, 4} {
				if err := expectReg(m, uint8(reg), want); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// 4. Nested Calls - fills the call stack exactly
func nestedCalls() Benchmark {
	return Benchmark{
		Name:        "nested_calls",
		Description: "Recursive CALL to depth 16 and unwind - stack discipline",
		Program: BuildProgram(
			EncodeLDImm(0, 15),
			EncodeCALL(Addr(3)),
			EncodeJP(Addr(2)), // halt
			EncodeSEImm(0, 0), // sub:
			EncodeJP(Addr(6)),
			EncodeRET(),
			EncodeADDImm(0, 0xFF),
			EncodeADDImm(1, 1),
			EncodeCALL(Addr(3)),
			EncodeRET(),
		),
		Frames: 15,
		Check: func(m *emu.Machine, _ core.Stats) error {
			if err := expectReg(m, 1, 15); err != nil {
				return err
			}
			if sp := m.Stack().Pointer(); sp != 0 {
				return fmt.Errorf("stack pointer = %d, want 0", sp)
			}
			return expectPC(m, Addr(2))
		},
	}
}

// 5. Font Sprites - draws every glyph side by side
func fontSprites() Benchmark {
	return Benchmark{
		Name:        "font_sprites",
		Description: "Draw glyphs 0-F across the top row - DRW and LD F,Vx",
		Program: BuildProgram(
			EncodeLDImm(0, 0), // digit
			EncodeLDImm(1, 0), // x
			EncodeLDImm(2, 0), // y
			EncodeLDF(0),      // loop:
			EncodeDRW(1, 2, emu.GlyphSize),
			EncodeADDImm(1, 4),
			EncodeADDImm(0, 1),
			EncodeSEImm(0, 16),
			EncodeJP(Addr(3)),
			EncodeJP(Addr(9)), // halt
		),
		Frames: 15,
		Check: func(m *emu.Machine, _ core.Stats) error {
			want := 0
			for _, row := range emu.FontSet {
				want += bits.OnesCount8(row)
			}
			if got := m.Display().LitPixels(); got != want {
				return fmt.Errorf("%d pixels lit, want %d", got, want)
			}
			return expectReg(m, 0xF, 0)
		},
	}
}

// 6. Sprite Collision - XOR erase
func spriteCollision() Benchmark {
	return Benchmark{
		Name:        "sprite_collision",
		Description: "Draw the same glyph twice - collision flag and XOR erase",
		Program: BuildProgram(
			EncodeLDImm(1, 0),
			EncodeLDImm(0, 8),
			EncodeLDF(0),
			EncodeDRW(1, 1, emu.GlyphSize),
			EncodeDRW(1, 1, emu.GlyphSize),
			EncodeJP(Addr(5)), // halt
		),
		Frames: 2,
		Check: func(m *emu.Machine, _ core.Stats) error {
			if got := m.Display().LitPixels(); got != 0 {
				return fmt.Errorf("%d pixels lit, want 0", got)
			}
			return expectReg(m, 0xF, 1)
		},
	}
}

// 7. Memory Copy - bulk register transfers
func memoryCopy() Benchmark {
	return Benchmark{
		Name:        "memory_copy",
		Description: "Copy 16 font bytes to 0x400 through V0-VF",
		Program: BuildProgram(
			EncodeLDI(emu.FontStart),
			EncodeLDR(0xF),
			EncodeLDI(0x400),
			EncodeSTR(0xF),
			EncodeJP(Addr(4)), // halt
		),
		Frames: 2,
		Check: func(m *emu.Machine, _ core.Stats) error {
			got, err := m.Memory().ReadRange(0x400, 16)
			if err != nil {
				return err
			}
			if !bytes.Equal(got, emu.FontSet[:16]) {
				return fmt.Errorf("copied % X, want % X", got, emu.FontSet[:16])
			}
			return nil
		},
	}
}

// 8. Self Modifying - decode cache invalidation
func selfModifying() Benchmark {
	return Benchmark{
		Name:        "self_modifying",
		Description: "Run a subroutine, overwrite it, run it again - decode cache invalidation",
		Program: BuildProgram(
			EncodeLDImm(0, 0x70),
			EncodeLDImm(1, 0x05),
			EncodeCALL(Addr(8)),
			EncodeLDI(Addr(8)),
			EncodeSTR(1),
			EncodeCALL(Addr(8)),
			EncodeJP(Addr(6)), // halt
			0x0000,
			EncodeLDImm(5, 0), // sub: rewritten to ADD V0,5
			EncodeRET(),
		),
		Frames: 2,
		Check: func(m *emu.Machine, _ core.Stats) error {
			if err := expectReg(m, 0, 0x75); err != nil {
				return err
			}
			return expectPC(m, Addr(6))
		},
	}
}

// 9. Delay Timer - busy wait on DT
func delayTimer() Benchmark {
	return Benchmark{
		Name:        "delay_timer",
		Description: "Set DT to 10 and spin until it expires - timer ticks vs. cycles",
		Program: BuildProgram(
			EncodeLDImm(0, 10),
			EncodeLDDT(0),
			EncodeLDVxDT(0), // loop:
			EncodeADDImm(1, 1),
			EncodeSEImm(0, 0),
			EncodeJP(Addr(2)),
			EncodeJP(Addr(6)), // halt
		),
		Frames: 15,
		Check: func(m *emu.Machine, stats core.Stats) error {
			if stats.TimerTicks < 10 {
				return fmt.Errorf("%d timer ticks, want at least 10", stats.TimerTicks)
			}
			if err := expectReg(m, 0, 0); err != nil {
				return err
			}
			return expectPC(m, Addr(6))
		},
	}
}

// 10. Key Wait - blocking input as explicit state
func keyWait() Benchmark {
	return Benchmark{
		Name:        "key_wait",
		Description: "LD Vx,K with key A held - key-wait state machine",
		Setup: func(m *emu.Machine) {
			_ = m.SetKey(0xA, true)
		},
		Program: BuildProgram(
			EncodeLDVxK(3),
			EncodeJP(Addr(1)), // halt
		),
		Frames: 1,
		Check: func(m *emu.Machine, stats core.Stats) error {
			if stats.WaitCycles == 0 {
				return fmt.Errorf("no keypad polls recorded")
			}
			return expectReg(m, 3, 0xA)
		},
	}
}

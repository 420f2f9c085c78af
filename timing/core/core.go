// Package core provides the host-side driver of a CHIP-8 machine.
// It turns elapsed wall-clock time into machine cycles and timer ticks,
// charges each instruction its latency and applies the unknown-opcode
// policy.
package core

import (
	"errors"
	"fmt"
	"time"

	"github.com/retroenv/retrogolib/log"

	"github.com/sarchlab/c8sim/emu"
	"github.com/sarchlab/c8sim/insts"
	"github.com/sarchlab/c8sim/timing/cache"
	"github.com/sarchlab/c8sim/timing/latency"
)

// Stats holds performance statistics for the core.
type Stats struct {
	// Cycles is the total number of cycles simulated.
	Cycles uint64
	// Instructions is the number of instructions executed.
	Instructions uint64
	// TimerTicks is the number of 60 Hz timer ticks delivered.
	TimerTicks uint64
	// WaitCycles is the number of keypad polls during key waits.
	WaitCycles uint64
	// SkippedOpcodes is the number of unknown opcodes skipped by policy.
	SkippedOpcodes uint64
	// Frames is the number of timer periods run by RunFrames.
	Frames uint64
	// CacheHits and CacheMisses count decode cache lookups.
	CacheHits   uint64
	CacheMisses uint64
}

// CPI returns cycles per instruction, or 0 before the first instruction.
func (s Stats) CPI() float64 {
	if s.Instructions == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(s.Instructions)
}

// Core drives a Machine at the configured clock and timer rates.
type Core struct {
	machine *emu.Machine
	table   *latency.Table
	cache   *cache.Cache
	logger  *log.Logger

	machineOpts []emu.MachineOption

	// Simulated time and the due times of the next cycle and tick
	clock     time.Duration
	nextCycle time.Duration
	nextTick  time.Duration

	// Cycles still owed by the last multi-cycle instruction
	busy uint64

	stats Stats
	err   error
}

// Option is a functional option for configuring the Core.
type Option func(*Core)

// WithLogger sets the logger for key-wait and skipped-opcode events.
func WithLogger(logger *log.Logger) Option {
	return func(c *Core) {
		c.logger = logger
	}
}

// WithMachineOptions passes options through to the Machine.
func WithMachineOptions(opts ...emu.MachineOption) Option {
	return func(c *Core) {
		c.machineOpts = append(c.machineOpts, opts...)
	}
}

// NewCore creates a core and its machine. The timing configuration must
// pass Validate.
func NewCore(config *latency.TimingConfig, opts ...Option) (*Core, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid timing config: %w", err)
	}

	c := &Core{
		table: latency.NewTableWithConfig(config),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = log.NewWithConfig(log.DefaultConfig())
	}

	machineOpts := c.machineOpts
	if config.DecodeCache {
		c.cache = cache.New(config.CacheConfig())
		machineOpts = append(machineOpts, emu.WithDecodeCache(c.cache))
	}

	c.machine = emu.NewMachine(machineOpts...)
	c.resetClock()

	return c, nil
}

// Machine returns the driven machine.
func (c *Core) Machine() *emu.Machine {
	return c.machine
}

// Config returns the timing configuration.
func (c *Core) Config() *latency.TimingConfig {
	return c.table.Config()
}

// Stats returns performance statistics for the core.
func (c *Core) Stats() Stats {
	stats := c.stats
	if c.cache != nil {
		cs := c.cache.Stats()
		stats.CacheHits = cs.Hits
		stats.CacheMisses = cs.Misses
	}
	return stats
}

// Halted returns true once the core has stopped on an error.
func (c *Core) Halted() bool {
	return c.err != nil
}

// Err returns the error that stopped the core, or nil.
func (c *Core) Err() error {
	return c.err
}

// Load loads a program image into the machine.
func (c *Core) Load(rom []byte) error {
	return c.machine.Load(rom)
}

// Reset returns the machine to power-on state and clears statistics and
// simulated time.
func (c *Core) Reset() {
	c.machine.Reset()
	c.stats = Stats{}
	c.busy = 0
	c.err = nil
	c.resetClock()
}

func (c *Core) resetClock() {
	c.clock = 0
	c.nextCycle = c.Config().CyclePeriod()
	c.nextTick = c.Config().TimerPeriod()
}

// Advance simulates elapsed wall-clock time. Cycles and timer ticks are
// interleaved in time order; a tick due at the same instant as a cycle
// is delivered first.
func (c *Core) Advance(elapsed time.Duration) error {
	if c.err != nil {
		return c.err
	}

	target := c.clock + elapsed
	cyclePeriod := c.Config().CyclePeriod()
	timerPeriod := c.Config().TimerPeriod()

	for {
		if c.nextTick <= c.nextCycle {
			if c.nextTick > target {
				break
			}
			c.clock = c.nextTick
			c.tick()
			c.nextTick += timerPeriod
			continue
		}

		if c.nextCycle > target {
			break
		}
		c.clock = c.nextCycle
		if err := c.cycle(); err != nil {
			return err
		}
		c.nextCycle += cyclePeriod
	}

	c.clock = target
	return nil
}

// RunFrames advances the core by n timer periods.
func (c *Core) RunFrames(n int) error {
	period := c.Config().TimerPeriod()
	for i := 0; i < n; i++ {
		if err := c.Advance(period); err != nil {
			return err
		}
		c.stats.Frames++
	}
	return nil
}

// RunCycles executes the given number of cycles without advancing the
// timers. It returns the error that stopped the core, if any.
func (c *Core) RunCycles(cycles uint64) error {
	if c.err != nil {
		return c.err
	}
	for i := uint64(0); i < cycles; i++ {
		if err := c.cycle(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Core) tick() {
	c.machine.TickTimers()
	c.stats.TimerTicks++
}

// cycle spends one machine cycle, stepping the machine when the previous
// instruction has been paid for.
func (c *Core) cycle() error {
	c.stats.Cycles++

	if c.busy > 0 {
		c.busy--
		return nil
	}

	result := c.machine.Step()
	if result.Err != nil {
		return c.handleError(result)
	}

	c.busy = c.table.GetLatency(result.Inst) - 1

	if result.Inst == nil {
		c.stats.WaitCycles++
		return nil
	}

	c.stats.Instructions++
	if result.Inst.Format == insts.FormatKey {
		c.logger.Debug("Waiting for key",
			log.Hex("pc", c.machine.RegFile().PC),
			log.Uint8("register", result.Inst.X))
	}

	return nil
}

func (c *Core) handleError(result emu.StepResult) error {
	var unknown *emu.UnknownOpcodeError
	if errors.As(result.Err, &unknown) && !c.Config().HaltOnUnknownOpcode {
		c.logger.Warn("Skipping unknown opcode",
			log.Hex("opcode", unknown.Opcode),
			log.Hex("pc", unknown.PC))

		if err := c.machine.Skip(); err != nil {
			return c.stop(err)
		}
		c.stats.SkippedOpcodes++
		return nil
	}

	return c.stop(result.Err)
}

func (c *Core) stop(err error) error {
	c.err = fmt.Errorf("core stopped at cycle %d: %w", c.stats.Cycles, err)
	return c.err
}

// Package latency provides instruction timing models for the host driver.
//
// Every instruction costs a configurable number of machine cycles
// depending on its format. The clock and timer rates that turn cycles
// into wall-clock time are part of the same TimingConfig.
package latency

import (
	"github.com/sarchlab/c8sim/insts"
)

// Table provides instruction latency lookups.
type Table struct {
	config *TimingConfig
}

// NewTable creates a new latency table with default timing values.
func NewTable() *Table {
	return &Table{
		config: DefaultTimingConfig(),
	}
}

// NewTableWithConfig creates a new latency table with custom timing configuration.
func NewTableWithConfig(config *TimingConfig) *Table {
	return &Table{
		config: config,
	}
}

// GetLatency returns the cost in cycles of the given instruction. A nil
// instruction stands for a keypad poll during a key wait.
func (t *Table) GetLatency(inst *insts.Instruction) uint64 {
	if inst == nil {
		return t.config.KeyLatency
	}

	switch inst.Format {
	case insts.FormatALU:
		return t.config.ALULatency
	case insts.FormatFlow, insts.FormatSkip:
		return t.config.BranchLatency
	case insts.FormatIndex, insts.FormatMemory:
		return t.config.MemoryLatency
	case insts.FormatDisplay:
		return t.config.DrawLatency
	case insts.FormatKey:
		return t.config.KeyLatency
	case insts.FormatTimer:
		return t.config.TimerLatency
	case insts.FormatRandom:
		return t.config.RandomLatency
	default:
		return 1
	}
}

// IsMemoryOp returns true if the instruction reads or writes guest
// memory through I.
func (t *Table) IsMemoryOp(inst *insts.Instruction) bool {
	if inst == nil {
		return false
	}
	return inst.Format == insts.FormatMemory || inst.Op == insts.OpDRW
}

// IsBranchOp returns true if the instruction may change the flow of
// control.
func (t *Table) IsBranchOp(inst *insts.Instruction) bool {
	if inst == nil {
		return false
	}
	return inst.Format == insts.FormatFlow || inst.Format == insts.FormatSkip
}

// Config returns the current timing configuration.
func (t *Table) Config() *TimingConfig {
	return t.config
}

// Package emu provides functional CHIP-8 emulation.
package emu

import (
	"fmt"
	"math/rand/v2"

	"github.com/sarchlab/c8sim/insts"
)

// State is the execution state of a Machine.
type State uint8

// Machine states.
const (
	// StateRunning fetches and executes one instruction per Step.
	StateRunning State = iota
	// StateAwaitingKey polls the keypad on each Step until a key is down.
	StateAwaitingKey
	// StateHalted refuses to step until Reset.
	StateHalted
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateAwaitingKey:
		return "awaiting-key"
	case StateHalted:
		return "halted"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// StepResult represents the result of a single Step.
type StepResult struct {
	// Inst is the instruction that was executed or attempted. It is nil
	// when the step only polled the keypad.
	Inst *insts.Instruction

	// AwaitingKey is true if the machine is waiting for a key press
	// after this step.
	AwaitingKey bool

	// Err is set if an error occurred during execution.
	Err error
}

// DecodeCache stores decoded instructions by guest address.
type DecodeCache interface {
	Lookup(addr uint16) (*insts.Instruction, bool)
	Insert(addr uint16, inst *insts.Instruction)
	Invalidate(addr uint16)
	Reset()
}

// Machine executes CHIP-8 programs functionally. It is a synchronous
// state transducer: nothing happens between calls to Step and
// TickTimers, and it must be driven from a single goroutine.
type Machine struct {
	regFile *RegFile
	memory  *Memory
	stack   *Stack
	display *Framebuffer
	keypad  *Keypad
	timers  *Timers
	decoder *insts.Decoder

	// Execution units
	alu        *ALU
	lsu        *LoadStoreUnit
	branchUnit *BranchUnit

	decodeCache DecodeCache
	random      func() uint8

	// Execution state
	state            State
	waitReg          uint8
	fault            error
	instructionCount uint64
	maxInstructions  uint64 // 0 means no limit
}

// MachineOption is a functional option for configuring the Machine.
type MachineOption func(*Machine)

// WithRandomSource sets the byte source used by RND.
func WithRandomSource(random func() uint8) MachineOption {
	return func(m *Machine) {
		m.random = random
	}
}

// WithDecodeCache enables caching of decoded instructions. The cache is
// invalidated on every guest memory write.
func WithDecodeCache(c DecodeCache) MachineOption {
	return func(m *Machine) {
		m.decodeCache = c
	}
}

// WithMaxInstructions sets the maximum number of instructions to execute.
// A value of 0 means no limit.
func WithMaxInstructions(limit uint64) MachineOption {
	return func(m *Machine) {
		m.maxInstructions = limit
	}
}

// NewMachine creates a machine in its power-on state: fonts loaded, PC at
// ProgramStart, everything else zero.
func NewMachine(opts ...MachineOption) *Machine {
	regFile := &RegFile{PC: ProgramStart}
	memory := NewMemory()
	stack := &Stack{}

	m := &Machine{
		regFile: regFile,
		memory:  memory,
		stack:   stack,
		display: &Framebuffer{},
		keypad:  &Keypad{},
		timers:  &Timers{},
		decoder: insts.NewDecoder(),
		random:  defaultRandom,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.alu = NewALU(regFile)
	m.lsu = NewLoadStoreUnit(regFile, memory)
	m.branchUnit = NewBranchUnit(regFile, stack)

	if m.decodeCache != nil {
		memory.SetWriteHook(m.decodeCache.Invalidate)
	}

	return m
}

func defaultRandom() uint8 {
	return uint8(rand.UintN(256))
}

// RegFile returns the machine's register file.
func (m *Machine) RegFile() *RegFile {
	return m.regFile
}

// Memory returns the machine's memory.
func (m *Machine) Memory() *Memory {
	return m.memory
}

// Stack returns the machine's call stack.
func (m *Machine) Stack() *Stack {
	return m.stack
}

// Display returns the machine's framebuffer.
func (m *Machine) Display() *Framebuffer {
	return m.display
}

// Keypad returns the machine's keypad.
func (m *Machine) Keypad() *Keypad {
	return m.keypad
}

// Timers returns the machine's delay and sound timers.
func (m *Machine) Timers() *Timers {
	return m.timers
}

// InstructionCount returns the number of instructions executed.
func (m *Machine) InstructionCount() uint64 {
	return m.instructionCount
}

// State returns the current execution state.
func (m *Machine) State() State {
	return m.state
}

// WaitRegister returns the register that receives the key code while
// the machine is awaiting a key.
func (m *Machine) WaitRegister() uint8 {
	return m.waitReg
}

// Fault returns the error that halted the machine, or nil.
func (m *Machine) Fault() error {
	return m.fault
}

// Load copies a program image to ProgramStart. Registers, stack and
// display are left untouched.
func (m *Machine) Load(rom []byte) error {
	if err := m.memory.LoadProgram(rom); err != nil {
		return fmt.Errorf("failed to load program: %w", err)
	}
	return nil
}

// Reset returns the machine to its power-on state. Memory is cleared,
// so a program must be loaded again.
func (m *Machine) Reset() {
	*m.regFile = RegFile{PC: ProgramStart}
	m.memory.Clear()
	m.stack.Reset()
	*m.display = Framebuffer{}
	m.keypad.ReleaseAll()
	*m.timers = Timers{}

	if m.decodeCache != nil {
		m.decodeCache.Reset()
	}

	m.state = StateRunning
	m.waitReg = 0
	m.fault = nil
	m.instructionCount = 0
}

// SetKey records a key press or release from the host.
func (m *Machine) SetKey(code uint8, pressed bool) error {
	return m.keypad.Set(code, pressed)
}

// TickTimers decrements the delay and sound timers. The host calls it at
// 60 Hz regardless of the instruction rate.
func (m *Machine) TickTimers() {
	m.timers.Tick()
}

// Framebuffer returns a snapshot of the display.
func (m *Machine) Framebuffer() Frame {
	return m.display.Frame()
}

// ConsumeRedraw reports whether the display changed since the last call.
func (m *Machine) ConsumeRedraw() bool {
	return m.display.ConsumeRedraw()
}

// Skip moves PC past the current instruction without executing it. Hosts
// use it to continue after an unknown opcode.
func (m *Machine) Skip() error {
	if m.fault != nil {
		return fmt.Errorf("%w: %w", ErrHalted, m.fault)
	}
	if m.state == StateAwaitingKey {
		m.state = StateRunning
	}
	m.regFile.PC += InstructionSize
	return nil
}

// Step executes a single instruction, or polls the keypad while the
// machine is awaiting a key.
func (m *Machine) Step() StepResult {
	if m.fault != nil {
		return StepResult{Err: fmt.Errorf("%w: %w", ErrHalted, m.fault)}
	}

	if m.state == StateAwaitingKey {
		return m.pollKey()
	}

	// Check instruction limit before executing
	if m.maxInstructions > 0 && m.instructionCount >= m.maxInstructions {
		return StepResult{Err: ErrMaxInstructions}
	}

	// 1. Fetch and decode
	inst, err := m.fetch(m.regFile.PC)
	if err != nil {
		return m.halt(nil, err)
	}

	// 2. Execute
	result := m.execute(inst)
	if result.Err == nil {
		m.instructionCount++
	}

	return result
}

// Run steps the machine up to n times, stopping at the first error.
func (m *Machine) Run(n int) error {
	for i := 0; i < n; i++ {
		if result := m.Step(); result.Err != nil {
			return result.Err
		}
	}
	return nil
}

// fetch reads and decodes the instruction at pc, going through the
// decode cache when one is configured.
func (m *Machine) fetch(pc uint16) (*insts.Instruction, error) {
	if m.decodeCache != nil {
		if inst, ok := m.decodeCache.Lookup(pc); ok {
			return inst, nil
		}
	}

	word, err := m.memory.Read16(pc)
	if err != nil {
		return nil, fmt.Errorf("fetch at PC=0x%03X: %w", pc, err)
	}

	inst := m.decoder.Decode(word)
	if m.decodeCache != nil {
		m.decodeCache.Insert(pc, inst)
	}

	return inst, nil
}

// halt latches a fatal error. PC is left at the faulting instruction.
func (m *Machine) halt(inst *insts.Instruction, err error) StepResult {
	m.fault = err
	m.state = StateHalted
	return StepResult{Inst: inst, Err: err}
}

// pollKey resolves a pending key wait with the lowest pressed key.
func (m *Machine) pollKey() StepResult {
	code, ok := m.keypad.FirstPressed()
	if !ok {
		return StepResult{AwaitingKey: true}
	}

	m.regFile.WriteReg(m.waitReg, code)
	m.regFile.PC += InstructionSize
	m.state = StateRunning

	return StepResult{}
}

// execute dispatches and executes a decoded instruction.
func (m *Machine) execute(inst *insts.Instruction) StepResult {
	var err error

	switch inst.Format {
	case insts.FormatFlow:
		if err = m.executeFlow(inst); err != nil {
			return m.halt(inst, err)
		}
		return StepResult{Inst: inst} // PC already updated
	case insts.FormatSkip:
		m.executeSkip(inst)
		return StepResult{Inst: inst} // PC already updated
	case insts.FormatKey:
		m.state = StateAwaitingKey
		m.waitReg = inst.X
		return StepResult{Inst: inst, AwaitingKey: true} // PC advances on resolution
	case insts.FormatALU:
		m.executeALU(inst)
	case insts.FormatIndex:
		m.executeIndex(inst)
	case insts.FormatMemory:
		err = m.executeMemory(inst)
	case insts.FormatDisplay:
		err = m.executeDisplay(inst)
	case insts.FormatTimer:
		m.executeTimer(inst)
	case insts.FormatRandom:
		m.alu.RND(inst.X, inst.NN, m.random())
	default:
		return StepResult{
			Inst: inst,
			Err:  &UnknownOpcodeError{Opcode: inst.Word, PC: m.regFile.PC},
		}
	}

	if err != nil {
		return m.halt(inst, fmt.Errorf("%s at PC=0x%03X: %w", inst.Op, m.regFile.PC, err))
	}

	m.regFile.PC += InstructionSize

	return StepResult{Inst: inst}
}

func (m *Machine) executeFlow(inst *insts.Instruction) error {
	switch inst.Op {
	case insts.OpJP:
		m.branchUnit.JP(inst.NNN)
	case insts.OpJPV0:
		m.branchUnit.JPV0(inst.NNN)
	case insts.OpCALL:
		if err := m.branchUnit.CALL(inst.NNN); err != nil {
			return fmt.Errorf("CALL 0x%03X at PC=0x%03X: %w", inst.NNN, m.regFile.PC, err)
		}
	case insts.OpRET:
		if err := m.branchUnit.RET(); err != nil {
			return fmt.Errorf("RET at PC=0x%03X: %w", m.regFile.PC, err)
		}
	}
	return nil
}

func (m *Machine) executeSkip(inst *insts.Instruction) {
	switch inst.Op {
	case insts.OpSEImm:
		m.branchUnit.SEImm(inst.X, inst.NN)
	case insts.OpSNEImm:
		m.branchUnit.SNEImm(inst.X, inst.NN)
	case insts.OpSEReg:
		m.branchUnit.SE(inst.X, inst.Y)
	case insts.OpSNEReg:
		m.branchUnit.SNE(inst.X, inst.Y)
	case insts.OpSKP:
		m.branchUnit.Skip(m.keypad.IsPressed(m.regFile.ReadReg(inst.X)))
	case insts.OpSKNP:
		m.branchUnit.Skip(!m.keypad.IsPressed(m.regFile.ReadReg(inst.X)))
	}
}

func (m *Machine) executeALU(inst *insts.Instruction) {
	switch inst.Op {
	case insts.OpLDImm:
		m.alu.LDImm(inst.X, inst.NN)
	case insts.OpADDImm:
		m.alu.ADDImm(inst.X, inst.NN)
	case insts.OpLDReg:
		m.alu.LD(inst.X, inst.Y)
	case insts.OpOR:
		m.alu.OR(inst.X, inst.Y)
	case insts.OpAND:
		m.alu.AND(inst.X, inst.Y)
	case insts.OpXOR:
		m.alu.XOR(inst.X, inst.Y)
	case insts.OpADDReg:
		m.alu.ADD(inst.X, inst.Y)
	case insts.OpSUB:
		m.alu.SUB(inst.X, inst.Y)
	case insts.OpSUBN:
		m.alu.SUBN(inst.X, inst.Y)
	case insts.OpSHR:
		m.alu.SHR(inst.X)
	case insts.OpSHL:
		m.alu.SHL(inst.X)
	}
}

func (m *Machine) executeIndex(inst *insts.Instruction) {
	switch inst.Op {
	case insts.OpLDI:
		m.lsu.LDI(inst.NNN)
	case insts.OpADDI:
		m.lsu.ADDI(inst.X)
	case insts.OpLDF:
		m.lsu.LDF(inst.X)
	}
}

func (m *Machine) executeMemory(inst *insts.Instruction) error {
	switch inst.Op {
	case insts.OpLDB:
		return m.lsu.LDB(inst.X)
	case insts.OpSTR:
		return m.lsu.STR(inst.X)
	case insts.OpLDR:
		return m.lsu.LDR(inst.X)
	}
	return nil
}

func (m *Machine) executeDisplay(inst *insts.Instruction) error {
	if inst.Op == insts.OpCLS {
		m.display.Clear()
		return nil
	}

	rows, err := m.lsu.Sprite(inst.N)
	if err != nil {
		return err
	}

	x := m.regFile.ReadReg(inst.X)
	y := m.regFile.ReadReg(inst.Y)
	m.regFile.SetFlag(m.display.DrawSprite(x, y, rows))

	return nil
}

func (m *Machine) executeTimer(inst *insts.Instruction) {
	switch inst.Op {
	case insts.OpLDVxDT:
		m.regFile.WriteReg(inst.X, m.timers.Delay)
	case insts.OpLDDTVx:
		m.timers.Delay = m.regFile.ReadReg(inst.X)
	case insts.OpLDSTVx:
		m.timers.Sound = m.regFile.ReadReg(inst.X)
	}
}

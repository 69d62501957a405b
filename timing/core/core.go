// Package core provides the cycle-level model of a single-cycle RV32 core.
//
// Each clock edge is split in two. Evaluate computes the whole cycle from the
// current register state without changing it, and Commit applies the result.
// The split lets the SoC route the core's bus request through the arbiter
// between the two phases.
package core

import (
	"github.com/go-logr/logr"

	"github.com/sarchlab/rvsoc/emu"
	"github.com/sarchlab/rvsoc/insts"
	"github.com/sarchlab/rvsoc/timing/bus"
)

// DefaultTrapVector is the handler address used when none is configured.
const DefaultTrapVector uint32 = 0x100

// Bus is the core's view of the interconnect.
type Bus interface {
	// Fetch returns the instruction word at addr and the number of extra
	// cycles the fetch must wait before the word is usable.
	Fetch(addr uint32) (word uint32, stall int)
	// Read returns the data word at addr.
	Read(addr uint32) uint32
}

// StallReason tells why a cycle did not retire an instruction.
type StallReason uint8

const (
	// StallNone is an execute cycle.
	StallNone StallReason = iota
	// StallFetch waits for an instruction fetch.
	StallFetch
	// StallBus waits for write mastership.
	StallBus
)

// Cycle is the result of evaluating one clock cycle.
type Cycle struct {
	PC      uint32
	Inst    *insts.Instruction
	Signals Signals
	Stall   StallReason

	// fetchWait is the wait loaded into the fetch counter on commit.
	fetchWait int

	// fetched is the word returned with a fetch stall, held until it retires.
	fetched uint32

	ALUResult uint32
	StoreData uint32
	WriteBack uint32
	NextPC    uint32

	TrapTaken bool
}

// WriteRequest returns the core's write channel for this cycle.
func (c Cycle) WriteRequest() bus.Request {
	return bus.Request{
		Address: c.ALUResult,
		Data:    c.StoreData,
		Valid:   c.Stall == StallNone && c.Signals.MemWrite,
	}
}

// CommitInputs carries the results of the edge that the core does not own.
type CommitInputs struct {
	// StoreAccepted reports that the arbiter delivered this cycle's store.
	StoreAccepted bool
	// CSRWrite is the memory-mapped software write of mepc.
	CSRWrite SoftwareWrite
	// Reset is the synchronous reset input.
	Reset bool
}

// Stats holds performance statistics for the core.
type Stats struct {
	// Cycles is the total number of cycles committed.
	Cycles uint64
	// Instructions is the number of instructions retired.
	Instructions uint64
	// FetchStalls is the number of cycles spent waiting for fetch.
	FetchStalls uint64
	// BusStalls is the number of cycles a store waited for mastership.
	BusStalls uint64
	// Traps is the number of traps taken.
	Traps uint64
	// Returns is the number of MRETs retired.
	Returns uint64
	// Illegal is the number of unsupported opcodes retired as no-ops.
	Illegal uint64
}

// Core is the single-cycle RV32 core.
type Core struct {
	pc      ProgramCounter
	csr     *ExceptionContext
	regFile *emu.RegFile
	decoder *insts.Decoder
	alu     *emu.ALU

	trapVector uint32
	inTrap     bool

	// Word returned by a stalled fetch, used when the wait runs out.
	fetchWait  int
	fetchPC    uint32
	fetchWord  uint32
	fetchValid bool

	log   logr.Logger
	stats Stats
}

// Option is a functional option for configuring the Core.
type Option func(*Core)

// WithTrapVector sets the address the core jumps to when a trap is taken.
func WithTrapVector(addr uint32) Option {
	return func(c *Core) {
		c.trapVector = addr
	}
}

// WithLogger sets the logger used for trap and trace messages.
func WithLogger(log logr.Logger) Option {
	return func(c *Core) {
		c.log = log
	}
}

// NewCore creates a core over the given register file.
func NewCore(regFile *emu.RegFile, opts ...Option) *Core {
	c := &Core{
		csr:        NewExceptionContext(),
		regFile:    regFile,
		decoder:    insts.NewDecoder(),
		alu:        emu.NewALU(),
		trapVector: DefaultTrapVector,
		log:        logr.Discard(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// PC returns the current fetch address.
func (c *Core) PC() uint32 {
	return c.pc.Value()
}

// MEPC returns the exception-context register.
func (c *Core) MEPC() uint32 {
	return c.csr.Value()
}

// InTrap reports whether the core is inside a trap handler.
func (c *Core) InTrap() bool {
	return c.inTrap
}

// RegFile returns the core's register file.
func (c *Core) RegFile() *emu.RegFile {
	return c.regFile
}

// TrapVector returns the configured handler address.
func (c *Core) TrapVector() uint32 {
	return c.trapVector
}

// Stats returns performance statistics for the core.
func (c *Core) Stats() Stats {
	return c.stats
}

// ContextStats returns the exception-context writer counters.
func (c *Core) ContextStats() ContextStats {
	return c.csr.Stats()
}

// Evaluate computes one cycle from the current state. It does not change
// the core.
func (c *Core) Evaluate(b Bus, trapPending bool) Cycle {
	pc := c.pc.Value()
	cycle := Cycle{PC: pc, NextPC: pc}

	if c.fetchWait > 0 {
		cycle.Stall = StallFetch
		cycle.fetchWait = c.fetchWait - 1
		return cycle
	}

	var word uint32
	if c.fetchValid && c.fetchPC == pc {
		word = c.fetchWord
	} else {
		var stall int
		word, stall = b.Fetch(pc)
		if stall > 0 {
			cycle.Stall = StallFetch
			cycle.fetchWait = stall - 1
			cycle.fetched = word
			return cycle
		}
	}

	inst := c.decoder.Decode(word)
	s := Decode(inst.Opcode, inst.Funct3, inst.Funct7, trapPending)
	cycle.Inst = inst
	cycle.Signals = s

	rs1, rs2 := c.regFile.ReadPorts(inst.Rs1, inst.Rs2)
	operand := rs2
	if s.OperandSource == OperandImmediate {
		operand = inst.Imm
	}

	result, zero := c.alu.Execute(rs1, operand, s.ALUOp)
	cycle.ALUResult = result
	cycle.StoreData = rs2

	switch s.ResultSource {
	case ResultALU:
		cycle.WriteBack = result
	case ResultMemory:
		if s.RegWrite {
			cycle.WriteBack = b.Read(result)
		}
	case ResultPCPlus4:
		cycle.WriteBack = pc + 4
	case ResultImmediate:
		cycle.WriteBack = inst.Imm
	}

	switch {
	case s.Trap:
		cycle.NextPC = c.trapVector
		cycle.TrapTaken = true
	case s.Return:
		cycle.NextPC = c.csr.Value()
	case s.Jump:
		cycle.NextPC = pc + inst.Imm
	case s.Branch && zero:
		cycle.NextPC = pc + inst.Imm
	default:
		cycle.NextPC = pc + 4
	}

	return cycle
}

// Commit applies an evaluated cycle at the clock edge.
func (c *Core) Commit(cycle Cycle, in CommitInputs) {
	c.stats.Cycles++

	if in.Reset {
		c.pc.Tick(0, false, true)
		c.csr.Tick(Capture{}, SoftwareWrite{}, true)
		c.regFile.Reset()
		c.inTrap = false
		c.clearFetch()
		return
	}

	if cycle.Stall == StallNone && cycle.Signals.MemWrite && !in.StoreAccepted {
		cycle.Stall = StallBus
	}

	switch cycle.Stall {
	case StallFetch:
		c.stats.FetchStalls++
		if c.fetchWait == 0 {
			c.fetchPC, c.fetchWord, c.fetchValid = cycle.PC, cycle.fetched, true
		}
		c.fetchWait = cycle.fetchWait
		c.csr.Tick(Capture{}, in.CSRWrite, false)
		c.pc.Tick(cycle.NextPC, false, false)
		return
	case StallBus:
		c.stats.BusStalls++
		c.csr.Tick(Capture{}, in.CSRWrite, false)
		c.pc.Tick(cycle.NextPC, false, false)
		return
	}

	s := cycle.Signals
	c.fetchValid = false
	c.regFile.Write(s.RegWrite, cycle.Inst.Rd, cycle.WriteBack)
	c.csr.Tick(Capture{PC: cycle.PC, Valid: s.CSRWrite}, in.CSRWrite, false)
	c.pc.Tick(cycle.NextPC, true, false)
	c.stats.Instructions++

	switch {
	case cycle.TrapTaken:
		c.inTrap = true
		c.stats.Traps++
		c.log.V(0).Info("trap taken", "pc", cycle.PC, "vector", cycle.NextPC)
	case s.Return:
		c.inTrap = false
		c.stats.Returns++
		c.log.V(0).Info("trap return", "pc", cycle.PC, "target", cycle.NextPC)
	case s.Category == CategoryIllegal:
		c.stats.Illegal++
	}

	c.log.V(2).Info("retire", "inst", cycle.Inst.String(), "pc", cycle.PC, "next", cycle.NextPC)
}

// Reset clears all core state immediately, including the register file.
func (c *Core) Reset() {
	c.pc.Reset()
	c.csr.Reset()
	c.regFile.Reset()
	c.inTrap = false
	c.clearFetch()
	c.stats = Stats{}
}

func (c *Core) clearFetch() {
	c.fetchWait = 0
	c.fetchValid = false
}

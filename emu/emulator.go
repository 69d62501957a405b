package emu

import (
	"errors"
	"fmt"

	"github.com/sarchlab/rvsoc/insts"
)

// ErrMaxInstructions is reported when the instruction limit is reached.
var ErrMaxInstructions = errors.New("max instructions reached")

// HaltWord is JAL x0, 0: a jump to itself. The reference emulator treats it
// as the end of a program.
const HaltWord uint32 = 0x0000006F

// StepResult represents the result of executing a single instruction.
type StepResult struct {
	// Exited is true if the program reached HaltWord.
	Exited bool

	// ExitCode is the value of a0 (x10) when Exited is true.
	ExitCode uint32

	// Err is set if an error occurred during execution.
	Err error
}

// DataPort is the emulator's view of the address space.
type DataPort interface {
	Read(addr uint32) uint32
	Write(addr, data uint32)
}

// Emulator executes RV32 instructions functionally, one per Step, with no
// notion of cycles, buses or interrupts. It serves as a golden model for
// the cycle-level core.
type Emulator struct {
	regFile *RegFile
	fetch   DataPort
	data    DataPort
	decoder *insts.Decoder
	alu     *ALU

	pc   uint32
	mepc uint32

	instructionCount uint64
	maxInstructions  uint64 // 0 means no limit
}

// EmulatorOption is a functional option for configuring the Emulator.
type EmulatorOption func(*Emulator)

// WithDataPort sets the port used by loads and stores.
// By default loads and stores use the fetch port.
func WithDataPort(port DataPort) EmulatorOption {
	return func(e *Emulator) {
		e.data = port
	}
}

// WithMaxInstructions sets the maximum number of instructions to execute.
// A value of 0 means no limit.
func WithMaxInstructions(max uint64) EmulatorOption {
	return func(e *Emulator) {
		e.maxInstructions = max
	}
}

// WithExceptionPC presets the saved return address used by MRET.
func WithExceptionPC(mepc uint32) EmulatorOption {
	return func(e *Emulator) {
		e.mepc = mepc
	}
}

// NewEmulator creates a new emulator fetching from the given port.
func NewEmulator(fetch DataPort, opts ...EmulatorOption) *Emulator {
	e := &Emulator{
		regFile: &RegFile{},
		fetch:   fetch,
		data:    fetch,
		decoder: insts.NewDecoder(),
		alu:     NewALU(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// RegFile returns the emulator's register file.
func (e *Emulator) RegFile() *RegFile {
	return e.regFile
}

// PC returns the address of the next instruction.
func (e *Emulator) PC() uint32 {
	return e.pc
}

// SetPC sets the address of the next instruction.
func (e *Emulator) SetPC(pc uint32) {
	e.pc = pc
}

// InstructionCount returns the number of instructions executed.
func (e *Emulator) InstructionCount() uint64 {
	return e.instructionCount
}

// Reset clears registers, PC and counters.
func (e *Emulator) Reset() {
	e.regFile.Reset()
	e.pc = 0
	e.mepc = 0
	e.instructionCount = 0
}

// Step executes a single instruction.
func (e *Emulator) Step() StepResult {
	if e.maxInstructions > 0 && e.instructionCount >= e.maxInstructions {
		return StepResult{Err: ErrMaxInstructions}
	}

	word := e.fetch.Read(e.pc)
	if word == HaltWord {
		return StepResult{Exited: true, ExitCode: e.regFile.ReadReg(10)}
	}

	inst := e.decoder.Decode(word)
	e.execute(inst)
	e.instructionCount++

	return StepResult{}
}

// Run executes instructions until the program halts or an error occurs.
func (e *Emulator) Run() (uint32, error) {
	for {
		result := e.Step()
		if result.Exited {
			return result.ExitCode, nil
		}
		if result.Err != nil {
			return 0, fmt.Errorf("emulation stopped at pc=0x%08x: %w", e.pc, result.Err)
		}
	}
}

// execute applies one decoded instruction and advances the PC.
func (e *Emulator) execute(inst *insts.Instruction) {
	rs1, rs2 := e.regFile.ReadPorts(inst.Rs1, inst.Rs2)
	next := e.pc + 4

	switch inst.Opcode {
	case insts.OpcodeOp:
		result, _ := e.alu.Execute(rs1, rs2, aluOpFor(inst.Funct3, inst.Funct7, true))
		e.regFile.WriteReg(inst.Rd, result)
	case insts.OpcodeOpImm:
		result, _ := e.alu.Execute(rs1, inst.Imm, aluOpFor(inst.Funct3, inst.Funct7, false))
		e.regFile.WriteReg(inst.Rd, result)
	case insts.OpcodeLoad:
		e.regFile.WriteReg(inst.Rd, e.data.Read(rs1+inst.Imm))
	case insts.OpcodeStore:
		e.data.Write(rs1+inst.Imm, rs2)
	case insts.OpcodeBranch:
		if rs1 == rs2 {
			next = e.pc + inst.Imm
		}
	case insts.OpcodeLUI:
		e.regFile.WriteReg(inst.Rd, inst.Imm)
	case insts.OpcodeJAL:
		e.regFile.WriteReg(inst.Rd, e.pc+4)
		next = e.pc + inst.Imm
	case insts.OpcodeSystem:
		next = e.mepc
	}

	e.pc = next
}

// aluOpFor maps funct3/funct7 to an ALU operation for OP and OP-IMM.
func aluOpFor(funct3, funct7 uint8, register bool) ALUOp {
	switch funct3 {
	case insts.Funct3ADD:
		if register && funct7 == insts.Funct7SUB {
			return ALUSub
		}
		return ALUAdd
	case insts.Funct3SLT, insts.Funct3SLTU:
		return ALULessThan
	case insts.Funct3XOR:
		return ALUXor
	case insts.Funct3OR:
		return ALUOr
	case insts.Funct3AND:
		return ALUAnd
	default:
		return ALUAdd
	}
}

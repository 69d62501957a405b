package core

import (
	"github.com/sarchlab/rvsoc/emu"
	"github.com/sarchlab/rvsoc/insts"
)

// Category is the instruction class selected by the opcode.
type Category uint8

const (
	// CategoryIllegal is any opcode outside the supported subset. It decodes
	// to all-zero signals.
	CategoryIllegal Category = iota
	// CategoryRegister is register-register arithmetic (OP).
	CategoryRegister
	// CategoryImmediate is register-immediate arithmetic (OP-IMM).
	CategoryImmediate
	// CategoryLoad is LW.
	CategoryLoad
	// CategoryStore is SW.
	CategoryStore
	// CategoryBranch is BEQ.
	CategoryBranch
	// CategoryUpper is LUI.
	CategoryUpper
	// CategoryJump is JAL.
	CategoryJump
	// CategoryReturn is MRET.
	CategoryReturn
)

func (c Category) String() string {
	switch c {
	case CategoryRegister:
		return "register"
	case CategoryImmediate:
		return "immediate"
	case CategoryLoad:
		return "load"
	case CategoryStore:
		return "store"
	case CategoryBranch:
		return "branch"
	case CategoryUpper:
		return "upper"
	case CategoryJump:
		return "jump"
	case CategoryReturn:
		return "return"
	default:
		return "illegal"
	}
}

// Classify maps an opcode to its category.
func Classify(opcode insts.Opcode) Category {
	switch opcode {
	case insts.OpcodeOp:
		return CategoryRegister
	case insts.OpcodeOpImm:
		return CategoryImmediate
	case insts.OpcodeLoad:
		return CategoryLoad
	case insts.OpcodeStore:
		return CategoryStore
	case insts.OpcodeBranch:
		return CategoryBranch
	case insts.OpcodeLUI:
		return CategoryUpper
	case insts.OpcodeJAL:
		return CategoryJump
	case insts.OpcodeSystem:
		return CategoryReturn
	default:
		return CategoryIllegal
	}
}

// OperandSource selects the ALU's second operand.
type OperandSource uint8

const (
	// OperandRegister uses rs2.
	OperandRegister OperandSource = iota
	// OperandImmediate uses the decoded immediate.
	OperandImmediate
)

// ResultSource selects the value written back to rd.
type ResultSource uint8

const (
	// ResultALU writes the ALU result.
	ResultALU ResultSource = iota
	// ResultMemory writes the loaded word.
	ResultMemory
	// ResultPCPlus4 writes the link address.
	ResultPCPlus4
	// ResultImmediate writes the immediate unchanged.
	ResultImmediate
)

// Signals is the control bundle for one cycle.
type Signals struct {
	Category Category

	RegWrite      bool
	MemWrite      bool
	OperandSource OperandSource
	ResultSource  ResultSource
	ALUOp         emu.ALUOp

	Branch bool
	Jump   bool
	Return bool

	// Trap and CSRWrite are only ever set by the trap override.
	Trap     bool
	CSRWrite bool
}

// Decode derives the control signals for an instruction. When trapPending
// is set the destructive outputs are forced off and the trap outputs on,
// whatever the instruction is.
func Decode(opcode insts.Opcode, funct3, funct7 uint8, trapPending bool) Signals {
	s := decodeCategory(Classify(opcode), funct3, funct7)

	if trapPending {
		s.RegWrite = false
		s.MemWrite = false
		s.Trap = true
		s.CSRWrite = true
	}

	return s
}

func decodeCategory(cat Category, funct3, funct7 uint8) Signals {
	s := Signals{Category: cat}

	switch cat {
	case CategoryRegister:
		s.RegWrite = true
		s.OperandSource = OperandRegister
		s.ResultSource = ResultALU
		s.ALUOp = aluOp(funct3, funct7, true)
	case CategoryImmediate:
		s.RegWrite = true
		s.OperandSource = OperandImmediate
		s.ResultSource = ResultALU
		s.ALUOp = aluOp(funct3, funct7, false)
	case CategoryLoad:
		s.RegWrite = true
		s.OperandSource = OperandImmediate
		s.ResultSource = ResultMemory
		s.ALUOp = emu.ALUAdd
	case CategoryStore:
		s.MemWrite = true
		s.OperandSource = OperandImmediate
		s.ALUOp = emu.ALUAdd
	case CategoryBranch:
		s.OperandSource = OperandRegister
		s.ALUOp = emu.ALUSub
		s.Branch = true
	case CategoryUpper:
		s.RegWrite = true
		s.OperandSource = OperandImmediate
		s.ResultSource = ResultImmediate
		s.ALUOp = emu.ALUAdd
	case CategoryJump:
		s.RegWrite = true
		s.ResultSource = ResultPCPlus4
		s.ALUOp = emu.ALUAdd
		s.Jump = true
	case CategoryReturn:
		s.ALUOp = emu.ALUAdd
		s.Return = true
	}

	return s
}

// aluOp selects the ALU operation from funct3. funct7 only matters for
// register-register subtract.
func aluOp(funct3, funct7 uint8, register bool) emu.ALUOp {
	switch funct3 {
	case insts.Funct3ADD:
		if register && funct7 == insts.Funct7SUB {
			return emu.ALUSub
		}
		return emu.ALUAdd
	case insts.Funct3SLT, insts.Funct3SLTU:
		return emu.ALULessThan
	case insts.Funct3XOR:
		return emu.ALUXor
	case insts.Funct3OR:
		return emu.ALUOr
	case insts.Funct3AND:
		return emu.ALUAnd
	default:
		return emu.ALUAdd
	}
}

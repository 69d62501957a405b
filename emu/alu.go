package emu

// ALUOp selects the ALU operation. The numeric values are the 3-bit ALU
// control codes driven by the control decoder.
type ALUOp uint8

// ALU operations.
const (
	ALUAdd      ALUOp = 0 // a + b
	ALUSub      ALUOp = 1 // a - b
	ALUAnd      ALUOp = 2 // a & b
	ALUOr       ALUOp = 3 // a | b
	ALUXor      ALUOp = 4 // a ^ b
	ALULessThan ALUOp = 5 // 1 if a < b (unsigned), else 0
)

// String returns the mnemonic of the operation.
func (op ALUOp) String() string {
	switch op {
	case ALUAdd:
		return "add"
	case ALUSub:
		return "sub"
	case ALUAnd:
		return "and"
	case ALUOr:
		return "or"
	case ALUXor:
		return "xor"
	case ALULessThan:
		return "lt"
	default:
		return "invalid"
	}
}

// ALU implements the combinational arithmetic/logic unit.
type ALU struct{}

// NewALU creates a new ALU.
func NewALU() *ALU {
	return &ALU{}
}

// Execute computes op over a and b. Undefined operations yield 0.
// zero reports whether the result is 0, which the branch logic uses.
func (a *ALU) Execute(x, y uint32, op ALUOp) (result uint32, zero bool) {
	switch op {
	case ALUAdd:
		result = x + y
	case ALUSub:
		result = x - y
	case ALUAnd:
		result = x & y
	case ALUOr:
		result = x | y
	case ALUXor:
		result = x ^ y
	case ALULessThan:
		if x < y {
			result = 1
		}
	}

	return result, result == 0
}

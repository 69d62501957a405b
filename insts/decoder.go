package insts

import "fmt"

// Opcode is the 7-bit major opcode in bits [6:0] of an RV32 instruction.
type Opcode uint8

// Major opcodes understood by the core.
const (
	OpcodeLoad   Opcode = 0x03 // 0000011
	OpcodeOpImm  Opcode = 0x13 // 0010011
	OpcodeAUIPC  Opcode = 0x17 // 0010111
	OpcodeStore  Opcode = 0x23 // 0100011
	OpcodeOp     Opcode = 0x33 // 0110011
	OpcodeLUI    Opcode = 0x37 // 0110111
	OpcodeBranch Opcode = 0x63 // 1100011
	OpcodeJALR   Opcode = 0x67 // 1100111
	OpcodeJAL    Opcode = 0x6F // 1101111
	OpcodeSystem Opcode = 0x73 // 1110011
)

// String returns the assembler mnemonic group for the opcode.
func (o Opcode) String() string {
	switch o {
	case OpcodeLoad:
		return "LOAD"
	case OpcodeOpImm:
		return "OP-IMM"
	case OpcodeAUIPC:
		return "AUIPC"
	case OpcodeStore:
		return "STORE"
	case OpcodeOp:
		return "OP"
	case OpcodeLUI:
		return "LUI"
	case OpcodeBranch:
		return "BRANCH"
	case OpcodeJALR:
		return "JALR"
	case OpcodeJAL:
		return "JAL"
	case OpcodeSystem:
		return "SYSTEM"
	default:
		return fmt.Sprintf("opcode(0x%02x)", uint8(o))
	}
}

// Format represents an instruction encoding format.
type Format uint8

// Instruction formats.
const (
	FormatUnknown Format = iota
	FormatR              // rd, rs1, rs2
	FormatI              // rd, rs1, imm[11:0]
	FormatS              // rs1, rs2, split imm[11:5|4:0]
	FormatB              // rs1, rs2, scrambled imm[12|10:5|4:1|11]
	FormatU              // rd, imm[31:12]
	FormatJ              // rd, scrambled imm[20|10:1|11|19:12]
)

// String returns the single-letter format name.
func (f Format) String() string {
	switch f {
	case FormatR:
		return "R"
	case FormatI:
		return "I"
	case FormatS:
		return "S"
	case FormatB:
		return "B"
	case FormatU:
		return "U"
	case FormatJ:
		return "J"
	default:
		return "?"
	}
}

// FormatOf returns the encoding format used by an opcode.
func FormatOf(op Opcode) Format {
	switch op {
	case OpcodeOp:
		return FormatR
	case OpcodeOpImm, OpcodeLoad, OpcodeJALR, OpcodeSystem:
		return FormatI
	case OpcodeStore:
		return FormatS
	case OpcodeBranch:
		return FormatB
	case OpcodeLUI, OpcodeAUIPC:
		return FormatU
	case OpcodeJAL:
		return FormatJ
	default:
		return FormatUnknown
	}
}

// Instruction represents a decoded RV32 instruction word.
type Instruction struct {
	Word   uint32 // Raw instruction word
	Opcode Opcode // Bits [6:0]
	Format Format // Encoding format implied by the opcode

	Rd     uint8 // Bits [11:7]
	Funct3 uint8 // Bits [14:12]
	Rs1    uint8 // Bits [19:15]
	Rs2    uint8 // Bits [24:20]
	Funct7 uint8 // Bits [31:25]

	// Imm is the sign-extended immediate for the instruction's format.
	// It is zero for R-format instructions.
	Imm uint32
}

// String returns a compact field dump, used by trace logging.
func (i *Instruction) String() string {
	return fmt.Sprintf("%08x %s/%s rd=x%d rs1=x%d rs2=x%d f3=%d f7=0x%02x imm=%d",
		i.Word, i.Opcode, i.Format, i.Rd, i.Rs1, i.Rs2, i.Funct3, i.Funct7, int32(i.Imm))
}

// Decoder decodes RV32 machine code into instructions.
type Decoder struct{}

// NewDecoder creates a new RV32 instruction decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode splits a 32-bit instruction word into its fields.
// Decoding never fails; unknown opcodes yield FormatUnknown with a zero
// immediate and are treated as no-ops by the control path.
func (d *Decoder) Decode(word uint32) *Instruction {
	op := Opcode(word & 0x7F)

	return &Instruction{
		Word:   word,
		Opcode: op,
		Format: FormatOf(op),
		Rd:     uint8((word >> 7) & 0x1F),
		Funct3: uint8((word >> 12) & 0x7),
		Rs1:    uint8((word >> 15) & 0x1F),
		Rs2:    uint8((word >> 20) & 0x1F),
		Funct7: uint8((word >> 25) & 0x7F),
		Imm:    Immediate(word),
	}
}

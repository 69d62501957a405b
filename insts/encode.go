package insts

// Funct3 values for the instructions the encoders emit.
const (
	Funct3ADD  = 0b000
	Funct3SLT  = 0b010
	Funct3SLTU = 0b011
	Funct3XOR  = 0b100
	Funct3OR   = 0b110
	Funct3AND  = 0b111
	Funct3LW   = 0b010
	Funct3SW   = 0b010
	Funct3BEQ  = 0b000
)

// Funct7SUB selects subtraction for OP instructions with funct3 ADD.
const Funct7SUB = 0b0100000

// MRET is the machine-mode trap return instruction.
const MRET uint32 = 0x30200073

// NOP is ADDI x0, x0, 0.
const NOP uint32 = 0x00000013

// EncodeR builds an R-format word.
func EncodeR(op Opcode, rd, funct3, rs1, rs2, funct7 uint8) uint32 {
	return uint32(funct7&0x7F)<<25 |
		uint32(rs2&0x1F)<<20 |
		uint32(rs1&0x1F)<<15 |
		uint32(funct3&0x7)<<12 |
		uint32(rd&0x1F)<<7 |
		uint32(op&0x7F)
}

// EncodeI builds an I-format word. imm is truncated to 12 bits.
func EncodeI(op Opcode, rd, funct3, rs1 uint8, imm int32) uint32 {
	return (uint32(imm)&0xFFF)<<20 |
		uint32(rs1&0x1F)<<15 |
		uint32(funct3&0x7)<<12 |
		uint32(rd&0x1F)<<7 |
		uint32(op&0x7F)
}

// EncodeS builds an S-format word. imm is truncated to 12 bits.
func EncodeS(op Opcode, funct3, rs1, rs2 uint8, imm int32) uint32 {
	u := uint32(imm) & 0xFFF
	return (u>>5)<<25 |
		uint32(rs2&0x1F)<<20 |
		uint32(rs1&0x1F)<<15 |
		uint32(funct3&0x7)<<12 |
		(u&0x1F)<<7 |
		uint32(op&0x7F)
}

// EncodeB builds a B-format word. offset is a byte offset; bit 0 is dropped.
func EncodeB(op Opcode, funct3, rs1, rs2 uint8, offset int32) uint32 {
	u := uint32(offset) & 0x1FFE
	return ((u>>12)&0x1)<<31 |
		((u>>5)&0x3F)<<25 |
		uint32(rs2&0x1F)<<20 |
		uint32(rs1&0x1F)<<15 |
		uint32(funct3&0x7)<<12 |
		((u>>1)&0xF)<<8 |
		((u>>11)&0x1)<<7 |
		uint32(op&0x7F)
}

// EncodeU builds a U-format word from the upper 20 bits of imm20.
func EncodeU(op Opcode, rd uint8, imm20 uint32) uint32 {
	return (imm20&0xFFFFF)<<12 | uint32(rd&0x1F)<<7 | uint32(op&0x7F)
}

// EncodeJ builds a J-format word. offset is a byte offset; bit 0 is dropped.
func EncodeJ(op Opcode, rd uint8, offset int32) uint32 {
	u := uint32(offset) & 0x1FFFFE
	return ((u>>20)&0x1)<<31 |
		((u>>1)&0x3FF)<<21 |
		((u>>11)&0x1)<<20 |
		((u>>12)&0xFF)<<12 |
		uint32(rd&0x1F)<<7 |
		uint32(op&0x7F)
}

// ADD encodes ADD rd, rs1, rs2.
func ADD(rd, rs1, rs2 uint8) uint32 { return EncodeR(OpcodeOp, rd, Funct3ADD, rs1, rs2, 0) }

// SUB encodes SUB rd, rs1, rs2.
func SUB(rd, rs1, rs2 uint8) uint32 { return EncodeR(OpcodeOp, rd, Funct3ADD, rs1, rs2, Funct7SUB) }

// AND encodes AND rd, rs1, rs2.
func AND(rd, rs1, rs2 uint8) uint32 { return EncodeR(OpcodeOp, rd, Funct3AND, rs1, rs2, 0) }

// OR encodes OR rd, rs1, rs2.
func OR(rd, rs1, rs2 uint8) uint32 { return EncodeR(OpcodeOp, rd, Funct3OR, rs1, rs2, 0) }

// XOR encodes XOR rd, rs1, rs2.
func XOR(rd, rs1, rs2 uint8) uint32 { return EncodeR(OpcodeOp, rd, Funct3XOR, rs1, rs2, 0) }

// SLT encodes SLT rd, rs1, rs2.
func SLT(rd, rs1, rs2 uint8) uint32 { return EncodeR(OpcodeOp, rd, Funct3SLT, rs1, rs2, 0) }

// ADDI encodes ADDI rd, rs1, imm.
func ADDI(rd, rs1 uint8, imm int32) uint32 { return EncodeI(OpcodeOpImm, rd, Funct3ADD, rs1, imm) }

// ANDI encodes ANDI rd, rs1, imm.
func ANDI(rd, rs1 uint8, imm int32) uint32 { return EncodeI(OpcodeOpImm, rd, Funct3AND, rs1, imm) }

// ORI encodes ORI rd, rs1, imm.
func ORI(rd, rs1 uint8, imm int32) uint32 { return EncodeI(OpcodeOpImm, rd, Funct3OR, rs1, imm) }

// XORI encodes XORI rd, rs1, imm.
func XORI(rd, rs1 uint8, imm int32) uint32 { return EncodeI(OpcodeOpImm, rd, Funct3XOR, rs1, imm) }

// LW encodes LW rd, offset(rs1).
func LW(rd, rs1 uint8, offset int32) uint32 { return EncodeI(OpcodeLoad, rd, Funct3LW, rs1, offset) }

// SW encodes SW rs2, offset(rs1).
func SW(rs2, rs1 uint8, offset int32) uint32 {
	return EncodeS(OpcodeStore, Funct3SW, rs1, rs2, offset)
}

// BEQ encodes BEQ rs1, rs2, offset.
func BEQ(rs1, rs2 uint8, offset int32) uint32 {
	return EncodeB(OpcodeBranch, Funct3BEQ, rs1, rs2, offset)
}

// LUI encodes LUI rd, imm20.
func LUI(rd uint8, imm20 uint32) uint32 { return EncodeU(OpcodeLUI, rd, imm20) }

// JAL encodes JAL rd, offset.
func JAL(rd uint8, offset int32) uint32 { return EncodeJ(OpcodeJAL, rd, offset) }

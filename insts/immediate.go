package insts

// Immediate returns the sign-extended 32-bit immediate encoded in word.
//
// The encoding is selected by the opcode in bits [6:0]:
//   - I: imm[11:0] = word[31:20]
//   - S: imm[11:5] = word[31:25], imm[4:0] = word[11:7]
//   - B: imm[12|10:5] = word[31:25], imm[4:1|11] = word[11:7], imm[0] = 0
//   - U: imm[31:12] = word[31:12], low 12 bits zero
//   - J: imm[20|10:1|11|19:12] = word[31:12], imm[0] = 0
//
// R-format and unknown opcodes return 0.
func Immediate(word uint32) uint32 {
	switch FormatOf(Opcode(word & 0x7F)) {
	case FormatI:
		return immI(word)
	case FormatS:
		return immS(word)
	case FormatB:
		return immB(word)
	case FormatU:
		return immU(word)
	case FormatJ:
		return immJ(word)
	default:
		return 0
	}
}

// signExtend replicates bit (bits-1) of v into the upper bits.
func signExtend(v uint32, bits uint) uint32 {
	shift := 32 - bits
	return uint32(int32(v<<shift) >> shift)
}

func immI(word uint32) uint32 {
	return signExtend(word>>20, 12)
}

func immS(word uint32) uint32 {
	imm := ((word >> 25) << 5) | ((word >> 7) & 0x1F)
	return signExtend(imm, 12)
}

func immB(word uint32) uint32 {
	imm := ((word >> 31) & 0x1) << 12
	imm |= ((word >> 7) & 0x1) << 11
	imm |= ((word >> 25) & 0x3F) << 5
	imm |= ((word >> 8) & 0xF) << 1
	return signExtend(imm, 13)
}

func immU(word uint32) uint32 {
	return word & 0xFFFFF000
}

func immJ(word uint32) uint32 {
	imm := ((word >> 31) & 0x1) << 20
	imm |= ((word >> 12) & 0xFF) << 12
	imm |= ((word >> 20) & 0x1) << 11
	imm |= ((word >> 21) & 0x3FF) << 1
	return signExtend(imm, 21)
}

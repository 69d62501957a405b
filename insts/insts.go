// Package insts provides RV32 instruction definitions and decoding.
//
// This package implements decoding of RV32 machine code into structured
// instruction representations. It covers the subset the SoC core executes:
//   - Register-register ALU ops: ADD, SUB, AND, OR, XOR, SLT
//   - Register-immediate ALU ops: ADDI, ANDI, ORI, XORI, SLTI
//   - Loads and stores: LW, SW
//   - Branches: BEQ
//   - Upper immediates and jumps: LUI, JAL
//   - Trap return: MRET
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst := decoder.Decode(0x02A00093) // ADDI x1, x0, 42
//	fmt.Printf("Opcode: %v, Rd: %d, Imm: %d\n", inst.Opcode, inst.Rd, int32(inst.Imm))
package insts

// Package emu provides the RV32 datapath building blocks and a functional
// reference emulator.
package emu

// RegFile represents the RV32 integer register file.
// It has two combinational read ports and one write port.
type RegFile struct {
	// X holds general-purpose registers x0-x31.
	// X[0] is hard-wired to zero: it always reads 0 and ignores writes.
	X [32]uint32
}

// ReadReg reads a register value. Register 0 and out-of-range registers return 0.
func (r *RegFile) ReadReg(reg uint8) uint32 {
	if reg == 0 || reg >= 32 {
		return 0
	}
	return r.X[reg]
}

// ReadPorts reads both source operands in the same cycle.
func (r *RegFile) ReadPorts(rs1, rs2 uint8) (uint32, uint32) {
	return r.ReadReg(rs1), r.ReadReg(rs2)
}

// WriteReg writes a value to a register. Writes to register 0 are ignored.
func (r *RegFile) WriteReg(reg uint8, value uint32) {
	if reg == 0 || reg >= 32 {
		return
	}
	r.X[reg] = value
}

// Write commits the write port at a clock edge. Nothing changes unless
// enable is set.
func (r *RegFile) Write(enable bool, reg uint8, value uint32) {
	if !enable {
		return
	}
	r.WriteReg(reg, value)
}

// Reset clears every register.
func (r *RegFile) Reset() {
	clear(r.X[:])
}

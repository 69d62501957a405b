package core

// StepPC returns the next PC. Reset dominates, then enable; a disabled PC
// holds its value for any number of cycles.
func StepPC(current, next uint32, enable, reset bool) uint32 {
	switch {
	case reset:
		return 0
	case enable:
		return next
	default:
		return current
	}
}

// ProgramCounter is the fetch address register.
type ProgramCounter struct {
	pc uint32
}

// Value returns the current fetch address.
func (p *ProgramCounter) Value() uint32 {
	return p.pc
}

// Tick commits one clock edge.
func (p *ProgramCounter) Tick(next uint32, enable, reset bool) {
	p.pc = StepPC(p.pc, next, enable, reset)
}

// Reset clears the register immediately.
func (p *ProgramCounter) Reset() {
	p.pc = 0
}

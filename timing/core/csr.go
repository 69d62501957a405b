package core

// Capture is the hardware request to save a PC into the exception context.
type Capture struct {
	PC    uint32
	Valid bool
}

// SoftwareWrite is a memory-mapped write to the exception context.
type SoftwareWrite struct {
	Value uint32
	Valid bool
}

// StepContext returns the next exception-context value. Reset clears it.
// A software write beats a hardware capture in the same cycle, and with
// neither present the value is retained.
func StepContext(current uint32, hw Capture, sw SoftwareWrite, reset bool) uint32 {
	switch {
	case reset:
		return 0
	case sw.Valid:
		return sw.Value
	case hw.Valid:
		return hw.PC
	default:
		return current
	}
}

// ContextStats counts exception-context writers.
type ContextStats struct {
	Captures       uint64
	SoftwareWrites uint64
	// Collisions counts cycles where both writers were asserted.
	Collisions uint64
}

// ExceptionContext holds mepc, the saved trap return address.
type ExceptionContext struct {
	mepc  uint32
	stats ContextStats
}

// NewExceptionContext creates a cleared exception context.
func NewExceptionContext() *ExceptionContext {
	return &ExceptionContext{}
}

// Value returns the saved address.
func (e *ExceptionContext) Value() uint32 {
	return e.mepc
}

// Tick commits one clock edge.
func (e *ExceptionContext) Tick(hw Capture, sw SoftwareWrite, reset bool) {
	if !reset {
		if hw.Valid {
			e.stats.Captures++
		}
		if sw.Valid {
			e.stats.SoftwareWrites++
		}
		if hw.Valid && sw.Valid {
			e.stats.Collisions++
		}
	}

	e.mepc = StepContext(e.mepc, hw, sw, reset)
}

// Reset clears the register immediately.
func (e *ExceptionContext) Reset() {
	e.mepc = 0
	e.stats = ContextStats{}
}

// Stats returns the writer counters.
func (e *ExceptionContext) Stats() ContextStats {
	return e.stats
}

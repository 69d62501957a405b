// Package timer provides the SoC's only interrupt source.
package timer

// Stats holds timer statistics.
type Stats struct {
	Interrupts uint64
	Acks       uint64
}

// Timer is a free-running counter with a compare register. When compare is
// non-zero and the count reaches it, the count restarts and the interrupt
// stays pending until acknowledged.
type Timer struct {
	count   uint32
	compare uint32
	pending bool

	stats Stats
}

// New creates a timer with the given compare value. Zero disables it.
func New(compare uint32) *Timer {
	return &Timer{compare: compare}
}

// Count returns the current count.
func (t *Timer) Count() uint32 {
	return t.count
}

// Compare returns the compare register.
func (t *Timer) Compare() uint32 {
	return t.compare
}

// SetCompare writes the compare register and restarts the count.
func (t *Timer) SetCompare(v uint32) {
	t.compare = v
	t.count = 0
}

// Pending reports an unacknowledged interrupt.
func (t *Timer) Pending() bool {
	return t.pending
}

// Tick advances one clock edge. ack clears a pending interrupt; a new
// expiry in the same tick wins.
func (t *Timer) Tick(ack bool) {
	if ack && t.pending {
		t.pending = false
		t.stats.Acks++
	}

	t.count++
	if t.compare != 0 && t.count >= t.compare {
		t.count = 0
		t.pending = true
		t.stats.Interrupts++
	}
}

// Reset clears the count and any pending interrupt. The compare register is
// kept.
func (t *Timer) Reset() {
	t.count = 0
	t.pending = false
	t.stats = Stats{}
}

// Stats returns timer statistics.
func (t *Timer) Stats() Stats {
	return t.stats
}

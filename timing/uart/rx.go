package uart

type rxState uint8

const (
	rxIdle rxState = iota
	rxStart
	rxData
	rxStop
)

// RxStats holds receiver statistics.
type RxStats struct {
	Bytes         uint64
	FramingErrors uint64
	// Glitches counts start edges that were high again at mid-bit.
	Glitches uint64
}

// Receiver samples a serial line once per tick and rebuilds bytes. It
// confirms the start bit at its middle and then samples every bit period.
type Receiver struct {
	ticksPerBit int

	state rxState
	wait  int
	bit   int
	shift byte

	stats RxStats
}

// NewReceiver creates a receiver with the given bit period.
func NewReceiver(ticksPerBit int) *Receiver {
	if ticksPerBit < 1 {
		ticksPerBit = 1
	}
	return &Receiver{ticksPerBit: ticksPerBit}
}

// Sample consumes one tick's line level. It returns a byte and true when a
// stop bit completes a valid frame.
func (r *Receiver) Sample(level uint8) (byte, bool) {
	if r.state == rxIdle {
		if level != 0 {
			return 0, false
		}
		r.state = rxStart
		r.wait = r.ticksPerBit / 2
		if r.wait > 0 {
			return 0, false
		}
		return r.sample(level)
	}

	r.wait--
	if r.wait > 0 {
		return 0, false
	}
	return r.sample(level)
}

func (r *Receiver) sample(level uint8) (byte, bool) {
	r.wait = r.ticksPerBit

	switch r.state {
	case rxStart:
		if level != 0 {
			r.stats.Glitches++
			r.state = rxIdle
			return 0, false
		}
		r.state = rxData
		r.bit = 0
		r.shift = 0
	case rxData:
		r.shift |= (level & 1) << r.bit
		r.bit++
		if r.bit == 8 {
			r.state = rxStop
		}
	case rxStop:
		r.state = rxIdle
		if level == 0 {
			r.stats.FramingErrors++
			return 0, false
		}
		r.stats.Bytes++
		return r.shift, true
	}

	return 0, false
}

// Reset returns the receiver to idle.
func (r *Receiver) Reset() {
	r.state = rxIdle
	r.wait = 0
	r.bit = 0
	r.shift = 0
	r.stats = RxStats{}
}

// Stats returns receiver statistics.
func (r *Receiver) Stats() RxStats {
	return r.stats
}

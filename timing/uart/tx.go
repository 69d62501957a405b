// Package uart models an 8N1 serial transmitter and a matching line
// receiver, both counted in clock ticks.
package uart

import (
	"fmt"

	"github.com/go-logr/logr"
)

// DefaultTicksPerBit is the bit period used when none is configured.
const DefaultTicksPerBit = 108

// FrameBits is the number of bit periods in one frame: start, eight data
// bits, stop.
const FrameBits = 10

// State is the transmitter FSM state.
type State uint8

const (
	// StateIdle holds the line high and waits for data-valid.
	StateIdle State = iota
	// StateStart drives the start bit.
	StateStart
	// StateData drives the data bits, LSB first.
	StateData
	// StateStop drives the stop bit.
	StateStop
	// StateCleanup follows the stop bit for one tick. The line is high and
	// the transmitter is no longer busy.
	StateCleanup
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStart:
		return "start"
	case StateData:
		return "data"
	case StateStop:
		return "stop"
	case StateCleanup:
		return "cleanup"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// TxStats holds transmitter statistics.
type TxStats struct {
	Frames uint64
	// Dropped counts data-valid pulses that arrived while busy.
	Dropped uint64
}

// Transmitter is a Moore machine: Line, Busy and Done depend only on the
// registered state.
type Transmitter struct {
	ticksPerBit int

	state State
	bit   int  // data bit index in StateData
	ticks int  // ticks spent in the current bit
	data  byte // captured byte
	done  bool

	log   logr.Logger
	stats TxStats
}

// TxOption is a functional option for configuring the Transmitter.
type TxOption func(*Transmitter)

// WithTxLogger sets the logger used for frame messages.
func WithTxLogger(log logr.Logger) TxOption {
	return func(t *Transmitter) {
		t.log = log
	}
}

// NewTransmitter creates an idle transmitter. A ticksPerBit below 1 is
// treated as 1.
func NewTransmitter(ticksPerBit int, opts ...TxOption) *Transmitter {
	if ticksPerBit < 1 {
		ticksPerBit = 1
	}

	t := &Transmitter{
		ticksPerBit: ticksPerBit,
		log:         logr.Discard(),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// TicksPerBit returns the bit period.
func (t *Transmitter) TicksPerBit() int {
	return t.ticksPerBit
}

// State returns the FSM state.
func (t *Transmitter) State() State {
	return t.state
}

// BitIndex returns the data bit being driven in StateData.
func (t *Transmitter) BitIndex() int {
	return t.bit
}

// Line returns the serial output level, 1 or 0.
func (t *Transmitter) Line() uint8 {
	switch t.state {
	case StateStart:
		return 0
	case StateData:
		return (t.data >> t.bit) & 1
	default:
		return 1
	}
}

// Busy reports that a frame is in flight, Start through Stop.
func (t *Transmitter) Busy() bool {
	return t.state != StateIdle && t.state != StateCleanup
}

// Done is the one-tick completion pulse raised when Cleanup ends.
func (t *Transmitter) Done() bool {
	return t.done
}

// Tick advances one clock edge. dv with data starts a frame when the
// transmitter is not busy and is ignored otherwise.
func (t *Transmitter) Tick(dv bool, data byte) {
	t.done = false

	switch t.state {
	case StateCleanup:
		t.done = true
		t.state = StateIdle
		fallthrough
	case StateIdle:
		if dv {
			t.data = data
			t.state = StateStart
			t.ticks = 1
		}
		return
	}

	if dv {
		t.stats.Dropped++
	}

	if t.ticks < t.ticksPerBit {
		t.ticks++
		return
	}

	t.ticks = 1
	switch t.state {
	case StateStart:
		t.state = StateData
		t.bit = 0
	case StateData:
		if t.bit < 7 {
			t.bit++
			return
		}
		t.state = StateStop
	case StateStop:
		t.state = StateCleanup
		t.ticks = 0
		t.stats.Frames++
		t.log.V(1).Info("uart frame sent", "byte", t.data)
	}
}

// Reset returns to idle immediately.
func (t *Transmitter) Reset() {
	t.state = StateIdle
	t.bit = 0
	t.ticks = 0
	t.data = 0
	t.done = false
	t.stats = TxStats{}
}

// Stats returns transmitter statistics.
func (t *Transmitter) Stats() TxStats {
	return t.stats
}

// Frame returns the line levels of the frame for b, one per bit period.
func Frame(b byte) [FrameBits]uint8 {
	var f [FrameBits]uint8
	f[0] = 0
	for i := 0; i < 8; i++ {
		f[i+1] = (b >> i) & 1
	}
	f[9] = 1
	return f
}

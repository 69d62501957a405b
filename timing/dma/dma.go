// Package dma provides a word-copy engine that competes with the CPU for
// bus writes.
package dma

import (
	"errors"

	"github.com/go-logr/logr"

	"github.com/sarchlab/rvsoc/timing/bus"
)

// ErrBusy is returned when a transfer is started while one is running.
var ErrBusy = errors.New("dma: transfer in progress")

// Descriptor describes one copy of Words words from Src to Dst.
type Descriptor struct {
	Src   uint32
	Dst   uint32
	Words uint32
}

// Reader is the engine's read port.
type Reader interface {
	Read(addr uint32) uint32
}

// Stats holds engine statistics.
type Stats struct {
	Transfers uint64
	Words     uint64
	Cancels   uint64
}

// Engine copies one word per accepted bus write. It holds its request
// valid until the arbiter accepts it.
type Engine struct {
	desc  Descriptor
	index uint32
	busy  bool

	log   logr.Logger
	stats Stats
}

// Option is a functional option for configuring the Engine.
type Option func(*Engine)

// WithLogger sets the logger used for transfer messages.
func WithLogger(log logr.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// New creates an idle engine.
func New(opts ...Option) *Engine {
	e := &Engine{log: logr.Discard()}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Start begins a transfer. A zero-length transfer completes immediately.
func (e *Engine) Start(d Descriptor) error {
	if e.busy {
		return ErrBusy
	}

	e.desc = d
	e.index = 0
	if d.Words == 0 {
		return nil
	}

	e.busy = true
	e.log.V(1).Info("dma start", "src", d.Src, "dst", d.Dst, "words", d.Words)
	return nil
}

// Busy reports a transfer in progress.
func (e *Engine) Busy() bool {
	return e.busy
}

// Remaining returns the number of words still to copy.
func (e *Engine) Remaining() uint32 {
	if !e.busy {
		return 0
	}
	return e.desc.Words - e.index
}

// Descriptor returns the current or last transfer.
func (e *Engine) Descriptor() Descriptor {
	return e.desc
}

// Request presents this cycle's write channel.
func (e *Engine) Request(r Reader) bus.Request {
	if !e.busy {
		return bus.Request{}
	}

	offset := 4 * e.index
	return bus.Request{
		Address: e.desc.Dst + offset,
		Data:    r.Read(e.desc.Src + offset),
		Valid:   true,
	}
}

// Commit advances past an accepted write at the clock edge.
func (e *Engine) Commit(accepted bool) {
	if !e.busy || !accepted {
		return
	}

	e.index++
	e.stats.Words++
	if e.index == e.desc.Words {
		e.busy = false
		e.stats.Transfers++
		e.log.V(1).Info("dma done", "words", e.desc.Words)
	}
}

// Cancel drops the request. Words already written stay written.
func (e *Engine) Cancel() {
	if e.busy {
		e.stats.Cancels++
		e.log.V(1).Info("dma cancel", "remaining", e.Remaining())
	}
	e.busy = false
}

// Reset returns to idle and clears statistics.
func (e *Engine) Reset() {
	e.desc = Descriptor{}
	e.index = 0
	e.busy = false
	e.stats = Stats{}
}

// Stats returns engine statistics.
func (e *Engine) Stats() Stats {
	return e.stats
}

package bus

import (
	"github.com/go-logr/logr"
)

// Master identifies a bus requester.
type Master uint8

const (
	// MasterCPU is the core.
	MasterCPU Master = iota
	// MasterDMA is the DMA engine.
	MasterDMA
)

func (m Master) String() string {
	if m == MasterDMA {
		return "DMA"
	}
	return "CPU"
}

// Request is one requester's write channel.
type Request struct {
	Address uint32
	Data    uint32
	Valid   bool
}

// ReadRequest is a combinational read on a requester's read port.
type ReadRequest struct {
	Master  Master
	Address uint32
}

// Routing is the arbiter's decision for one cycle.
type Routing struct {
	// Master is the write master for this cycle.
	Master Master

	// Channels holds the write channel of each region. At most one is valid.
	Channels [numRegions]Request

	CPUAccepted bool
	DMAAccepted bool
	// CPUMasked is set when a valid CPU write was blocked by DMA mastership.
	CPUMasked bool
}

// Channel returns the write channel of a region.
func (r Routing) Channel(region Region) Request {
	return r.Channels[region]
}

// Stats holds arbiter statistics.
type Stats struct {
	CPUWrites    uint64
	DMAWrites    uint64
	MaskedWrites uint64
	Handoffs     uint64
	Reads        uint64
	Fetches      uint64
}

// Arbiter serializes writes between the CPU and the DMA engine.
//
// Mastership is a registered signal: a DMA request takes the bus on the
// next edge, and the bus returns to the CPU on the edge after the DMA
// request drops. Reads are never gated.
type Arbiter struct {
	targets Map
	active  Master

	log   logr.Logger
	stats Stats
}

// ArbiterOption is a functional option for configuring the Arbiter.
type ArbiterOption func(*Arbiter)

// WithLogger sets the logger used for mastership handoffs.
func WithLogger(log logr.Logger) ArbiterOption {
	return func(a *Arbiter) {
		a.log = log
	}
}

// NewArbiter creates an arbiter in front of the given targets.
func NewArbiter(targets Map, opts ...ArbiterOption) *Arbiter {
	a := &Arbiter{
		targets: targets,
		active:  MasterCPU,
		log:     logr.Discard(),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// ActiveMaster returns the current write master.
func (a *Arbiter) ActiveMaster() Master {
	return a.active
}

// Route decides which write reaches which region this cycle. It does not
// change the arbiter.
func (a *Arbiter) Route(cpu, dma Request) Routing {
	r := Routing{Master: a.active}

	var winner Request
	switch a.active {
	case MasterDMA:
		winner = dma
		r.DMAAccepted = dma.Valid
		r.CPUMasked = cpu.Valid
	default:
		winner = cpu
		r.CPUAccepted = cpu.Valid
	}

	if winner.Valid {
		r.Channels[Decode(winner.Address)] = winner
	}

	return r
}

// Commit applies a routing at the clock edge and registers the next
// master from the DMA request line.
func (a *Arbiter) Commit(r Routing, dmaValid bool) {
	for region, ch := range r.Channels {
		if !ch.Valid {
			continue
		}
		if t := a.targets.Target(Region(region)); t != nil {
			t.Write(ch.Address, ch.Data)
		}
	}

	if r.CPUAccepted {
		a.stats.CPUWrites++
	}
	if r.DMAAccepted {
		a.stats.DMAWrites++
	}
	if r.CPUMasked {
		a.stats.MaskedWrites++
	}

	next := MasterCPU
	if dmaValid {
		next = MasterDMA
	}

	if next != a.active {
		a.stats.Handoffs++
		a.log.V(1).Info("bus handoff", "from", a.active.String(), "to", next.String())
	}
	a.active = next
}

// Tick routes and commits one cycle.
func (a *Arbiter) Tick(cpu, dma Request) Routing {
	r := a.Route(cpu, dma)
	a.Commit(r, dma.Valid)
	return r
}

// Read performs a combinational read for either requester.
func (a *Arbiter) Read(req ReadRequest) uint32 {
	a.stats.Reads++
	return a.targets.Read(req.Address)
}

// Fetch reads an instruction word.
func (a *Arbiter) Fetch(addr uint32) uint32 {
	a.stats.Fetches++
	return a.targets.Read(addr)
}

// Reset returns mastership to the CPU and clears the statistics.
func (a *Arbiter) Reset() {
	a.active = MasterCPU
	a.stats = Stats{}
}

// Stats returns arbiter statistics.
func (a *Arbiter) Stats() Stats {
	return a.stats
}

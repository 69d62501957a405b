// Package soc assembles the core, bus, memories and peripherals into one
// clocked system.
//
// Every Tick is one clock edge. All components are evaluated against the
// state left by the previous edge, and only then is any state committed, so
// the order in which parts are evaluated does not leak into the result.
package soc

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-logr/logr"

	"github.com/sarchlab/rvsoc/config"
	"github.com/sarchlab/rvsoc/emu"
	"github.com/sarchlab/rvsoc/loader"
	"github.com/sarchlab/rvsoc/timing/bus"
	"github.com/sarchlab/rvsoc/timing/cache"
	"github.com/sarchlab/rvsoc/timing/core"
	"github.com/sarchlab/rvsoc/timing/dma"
	"github.com/sarchlab/rvsoc/timing/timer"
	"github.com/sarchlab/rvsoc/timing/uart"
)

// ErrCycleLimit is returned by Run when the configured cycle budget is spent
// before the firmware halts.
var ErrCycleLimit = errors.New("cycle limit reached")

// SoC is a complete simulated system. It is not safe for concurrent use.
type SoC struct {
	cfg   config.Config
	image loader.Image

	rom *emu.Memory
	ram *emu.Memory
	io  *ioBlock

	arbiter    *bus.Arbiter
	fetchCache *cache.Cache
	core       *core.Core
	timer      *timer.Timer
	dma        *dma.Engine
	tx         *uart.Transmitter
	rx         *uart.Receiver

	output    []byte
	outWriter io.Writer

	halted   bool
	exitCode uint32
	cycles   uint64

	dmaRejected uint64

	log logr.Logger
}

// Option is a functional option for configuring the SoC.
type Option func(*SoC)

// WithLogger sets the logger handed to every component.
func WithLogger(log logr.Logger) Option {
	return func(s *SoC) {
		s.log = log
	}
}

// WithUARTOutput copies every byte decoded from the serial line to w.
func WithUARTOutput(w io.Writer) Option {
	return func(s *SoC) {
		s.outWriter = w
	}
}

// WithFetchCache enables the fetch cache with the given geometry,
// overriding the configuration.
func WithFetchCache(c cache.Config) Option {
	return func(s *SoC) {
		s.cfg.FetchCache.Enabled = true
		s.cfg.FetchCache.Config = c
	}
}

// New builds a SoC from a configuration and a boot image.
func New(cfg *config.Config, img *loader.Image, opts ...Option) (*SoC, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if img == nil {
		img = &loader.Image{}
	}

	s := &SoC{
		cfg:   *cfg.Clone(),
		image: *img,
		log:   logr.Discard(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if err := s.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	rom, err := emu.NewROM(s.cfg.ROMWords, img.ROM)
	if err != nil {
		return nil, fmt.Errorf("loading ROM: %w", err)
	}
	s.rom = rom

	s.ram = emu.NewMemory(s.cfg.RAMWords)
	if err := s.ram.Load(img.RAM); err != nil {
		return nil, fmt.Errorf("loading RAM: %w", err)
	}

	s.io = &ioBlock{soc: s}
	s.arbiter = bus.NewArbiter(
		bus.Map{ROM: s.rom, RAM: s.ram, IO: s.io},
		bus.WithLogger(s.log.WithName("bus")),
	)

	if s.cfg.FetchCache.Enabled {
		s.fetchCache = cache.New(s.cfg.FetchCache.Config, s.arbiter)
	}

	s.core = core.NewCore(&emu.RegFile{},
		core.WithTrapVector(s.cfg.TrapVector),
		core.WithLogger(s.log.WithName("core")),
	)
	s.timer = timer.New(s.cfg.TimerCompare)
	s.dma = dma.New(dma.WithLogger(s.log.WithName("dma")))
	s.tx = uart.NewTransmitter(s.cfg.TicksPerBit, uart.WithTxLogger(s.log.WithName("uart")))
	s.rx = uart.NewReceiver(s.cfg.TicksPerBit)

	return s, nil
}

// corePort is the core's view of the bus: fetch through the cache for ROM
// and plain CPU reads for data.
type corePort struct{ s *SoC }

func (p corePort) Fetch(addr uint32) (uint32, int) {
	if p.s.fetchCache != nil && bus.Decode(addr) == bus.RegionROM {
		return p.s.fetchCache.Fetch(addr)
	}
	return p.s.arbiter.Fetch(addr), 0
}

func (p corePort) Read(addr uint32) uint32 {
	return p.s.arbiter.Read(bus.ReadRequest{Master: bus.MasterCPU, Address: addr})
}

// dmaPort is the DMA engine's read port.
type dmaPort struct{ s *SoC }

func (p dmaPort) Read(addr uint32) uint32 {
	return p.s.arbiter.Read(bus.ReadRequest{Master: bus.MasterDMA, Address: addr})
}

// Tick simulates one clock edge. It does nothing once the SoC has halted.
func (s *SoC) Tick() {
	if s.halted {
		return
	}

	// Evaluate against the current state.
	trapPending := s.timer.Pending() && !s.core.InTrap()
	cycle := s.core.Evaluate(corePort{s}, trapPending)
	dmaReq := s.dma.Request(dmaPort{s})
	routing := s.arbiter.Route(cycle.WriteRequest(), dmaReq)

	// Commit.
	s.arbiter.Commit(routing, dmaReq.Valid)
	w := s.io.take()

	var (
		txValid  bool
		txData   byte
		csrWrite core.SoftwareWrite
	)

	if w.valid {
		switch w.reg {
		case RegUARTTxData:
			txValid, txData = true, byte(w.data)
		case RegMEPC:
			csrWrite = core.SoftwareWrite{Value: w.data, Valid: true}
		}
	}

	s.tx.Tick(txValid, txData)

	s.timer.Tick(cycle.TrapTaken)
	if w.valid && w.reg == RegTimerCompare {
		s.timer.SetCompare(w.data)
	}

	s.dma.Commit(routing.DMAAccepted)
	if w.valid {
		s.applyDMAWrite(w)
	}

	s.core.Commit(cycle, core.CommitInputs{
		StoreAccepted: routing.CPUAccepted,
		CSRWrite:      csrWrite,
	})

	if b, ok := s.rx.Sample(s.tx.Line()); ok {
		s.output = append(s.output, b)
		if s.outWriter != nil {
			_, _ = s.outWriter.Write([]byte{b})
		}
	}

	s.cycles++

	if w.valid && w.reg == RegSimExit {
		s.halted = true
		s.exitCode = w.data
		s.log.V(0).Info("halt", "code", w.data, "cycle", s.cycles)
	}
}

func (s *SoC) applyDMAWrite(w ioWrite) {
	switch w.reg {
	case RegDMASrc:
		s.io.dmaSrc = w.data
	case RegDMADst:
		s.io.dmaDst = w.data
	case RegDMALen:
		err := s.dma.Start(dma.Descriptor{Src: s.io.dmaSrc, Dst: s.io.dmaDst, Words: w.data})
		if err != nil {
			s.dmaRejected++
			s.log.Error(err, "DMA_LEN write ignored", "cycle", s.cycles)
		}
	}
}

// Run ticks until the firmware halts and returns its exit code.
func (s *SoC) Run() (uint32, error) {
	for !s.halted {
		if s.cfg.MaxCycles > 0 && s.cycles >= s.cfg.MaxCycles {
			return 0, fmt.Errorf("%w after %d cycles at pc=0x%08x",
				ErrCycleLimit, s.cycles, s.core.PC())
		}
		s.Tick()
	}
	return s.exitCode, nil
}

// RunCycles ticks at most n times. It returns true if the SoC is still
// running.
func (s *SoC) RunCycles(n uint64) bool {
	for i := uint64(0); i < n && !s.halted; i++ {
		s.Tick()
	}
	return !s.halted
}

// Halted reports whether the firmware wrote SIM_EXIT.
func (s *SoC) Halted() bool {
	return s.halted
}

// ExitCode returns the value written to SIM_EXIT.
func (s *SoC) ExitCode() uint32 {
	return s.exitCode
}

// Cycles returns the number of clock edges simulated.
func (s *SoC) Cycles() uint64 {
	return s.cycles
}

// UARTOutput returns every byte decoded from the serial line so far.
func (s *SoC) UARTOutput() []byte {
	out := make([]byte, len(s.output))
	copy(out, s.output)
	return out
}

// Config returns the effective configuration.
func (s *SoC) Config() config.Config {
	return s.cfg
}

// Core returns the CPU core.
func (s *SoC) Core() *core.Core { return s.core }

// Arbiter returns the bus arbiter.
func (s *SoC) Arbiter() *bus.Arbiter { return s.arbiter }

// Timer returns the interrupt timer.
func (s *SoC) Timer() *timer.Timer { return s.timer }

// DMA returns the DMA engine.
func (s *SoC) DMA() *dma.Engine { return s.dma }

// Transmitter returns the UART transmitter.
func (s *SoC) Transmitter() *uart.Transmitter { return s.tx }

// ROM returns the boot ROM.
func (s *SoC) ROM() *emu.Memory { return s.rom }

// RAM returns the data RAM.
func (s *SoC) RAM() *emu.Memory { return s.ram }

// FetchCache returns the fetch cache, or nil when it is disabled.
func (s *SoC) FetchCache() *cache.Cache { return s.fetchCache }

// Reset returns every component to its power-on state and reloads RAM from
// the boot image.
func (s *SoC) Reset() {
	s.core.Reset()
	s.arbiter.Reset()
	s.timer.Reset()
	s.timer.SetCompare(s.cfg.TimerCompare)
	s.dma.Reset()
	s.tx.Reset()
	s.rx.Reset()
	s.io.reset()
	if s.fetchCache != nil {
		s.fetchCache.Reset()
	}

	s.ram.Clear()
	_ = s.ram.Load(s.image.RAM)
	s.rom.ResetStats()
	s.ram.ResetStats()

	s.output = nil
	s.halted = false
	s.exitCode = 0
	s.cycles = 0
	s.dmaRejected = 0
}

// Stats collects statistics from every component.
func (s *SoC) Stats() Stats {
	cs := s.core.Stats()
	ctx := s.core.ContextStats()
	bs := s.arbiter.Stats()
	ds := s.dma.Stats()
	ts := s.tx.Stats()
	rs := s.rx.Stats()

	st := Stats{
		Cycles:             s.cycles,
		Instructions:       cs.Instructions,
		FetchStalls:        cs.FetchStalls,
		BusStalls:          cs.BusStalls,
		Traps:              cs.Traps,
		Returns:            cs.Returns,
		Illegal:            cs.Illegal,
		MEPCCaptures:       ctx.Captures,
		MEPCSoftwareWrites: ctx.SoftwareWrites,
		MEPCCollisions:     ctx.Collisions,
		CPUWrites:          bs.CPUWrites,
		DMAWrites:          bs.DMAWrites,
		MaskedWrites:       bs.MaskedWrites,
		Handoffs:           bs.Handoffs,
		DMATransfers:       ds.Transfers,
		DMAWords:           ds.Words,
		DMARejected:        s.dmaRejected,
		UARTFrames:         ts.Frames,
		UARTDropped:        ts.Dropped,
		UARTBytes:          rs.Bytes,
		FramingErrors:      rs.FramingErrors,
		TimerInterrupts:    s.timer.Stats().Interrupts,
	}

	if s.fetchCache != nil {
		fs := s.fetchCache.Stats()
		st.FetchHits = fs.Hits
		st.FetchMisses = fs.Misses
	}

	return st
}

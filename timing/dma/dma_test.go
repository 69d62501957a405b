package dma_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvsoc/emu"
	"github.com/sarchlab/rvsoc/timing/bus"
	"github.com/sarchlab/rvsoc/timing/dma"
)

// dmaPort reads through the arbiter's DMA read port.
type dmaPort struct{ arbiter *bus.Arbiter }

func (p dmaPort) Read(addr uint32) uint32 {
	return p.arbiter.Read(bus.ReadRequest{Master: bus.MasterDMA, Address: addr})
}

var _ = Describe("Engine", func() {
	var (
		ram     *emu.Memory
		arbiter *bus.Arbiter
		engine  *dma.Engine
	)

	BeforeEach(func() {
		ram = emu.NewMemory(64)
		arbiter = bus.NewArbiter(bus.Map{RAM: ram})
		engine = dma.New()
	})

	tick := func() bus.Routing {
		req := engine.Request(dmaPort{arbiter})
		r := arbiter.Tick(bus.Request{}, req)
		engine.Commit(r.DMAAccepted)
		return r
	}

	It("should be idle with no request", func() {
		Expect(engine.Busy()).To(BeFalse())
		Expect(engine.Request(dmaPort{arbiter}).Valid).To(BeFalse())
	})

	It("should copy words once it owns the bus", func() {
		for i := uint32(0); i < 4; i++ {
			ram.Write(bus.RAMBase+4*i, 0x100+i)
		}
		Expect(engine.Start(dma.Descriptor{
			Src: bus.RAMBase, Dst: bus.RAMBase + 0x40, Words: 4,
		})).To(Succeed())
		Expect(engine.Remaining()).To(Equal(uint32(4)))

		r := tick()
		Expect(r.DMAAccepted).To(BeFalse())
		Expect(engine.Remaining()).To(Equal(uint32(4)))

		for i := 0; i < 4; i++ {
			Expect(tick().DMAAccepted).To(BeTrue())
		}
		Expect(engine.Busy()).To(BeFalse())
		Expect(ram.Words()[16:20]).To(Equal([]uint32{0x100, 0x101, 0x102, 0x103}))
		Expect(engine.Stats()).To(Equal(dma.Stats{Transfers: 1, Words: 4}))

		tick()
		Expect(arbiter.ActiveMaster()).To(Equal(bus.MasterCPU))
	})

	It("should refuse a second start while busy", func() {
		Expect(engine.Start(dma.Descriptor{Words: 2})).To(Succeed())
		Expect(engine.Start(dma.Descriptor{Words: 2})).To(MatchError(dma.ErrBusy))
	})

	It("should complete an empty transfer immediately", func() {
		Expect(engine.Start(dma.Descriptor{Words: 0})).To(Succeed())
		Expect(engine.Busy()).To(BeFalse())
	})

	It("should hand the bus back one tick after cancel", func() {
		Expect(engine.Start(dma.Descriptor{
			Src: bus.RAMBase, Dst: bus.RAMBase + 0x40, Words: 8,
		})).To(Succeed())
		tick()
		tick()
		Expect(arbiter.ActiveMaster()).To(Equal(bus.MasterDMA))

		engine.Cancel()
		Expect(engine.Request(dmaPort{arbiter}).Valid).To(BeFalse())

		r := tick()
		Expect(r.DMAAccepted).To(BeFalse())
		for _, ch := range r.Channels {
			Expect(ch.Valid).To(BeFalse())
		}
		Expect(arbiter.ActiveMaster()).To(Equal(bus.MasterCPU))
		Expect(engine.Stats().Cancels).To(Equal(uint64(1)))
		Expect(engine.Stats().Words).To(Equal(uint64(1)))
	})

	It("should reset to idle", func() {
		Expect(engine.Start(dma.Descriptor{Words: 3})).To(Succeed())
		engine.Reset()
		Expect(engine.Busy()).To(BeFalse())
		Expect(engine.Remaining()).To(Equal(uint32(0)))
	})
})

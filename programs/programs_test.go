package programs_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvsoc/config"
	"github.com/sarchlab/rvsoc/programs"
	"github.com/sarchlab/rvsoc/timing/soc"
)

var _ = Describe("Programs", func() {
	run := func(p programs.Program, cacheOn bool) *soc.SoC {
		cfg := config.Default()
		cfg.TicksPerBit = 4
		cfg.MaxCycles = 200_000
		cfg.FetchCache.Enabled = cacheOn

		s, err := soc.New(cfg, p.Image())
		Expect(err).NotTo(HaveOccurred())

		code, err := s.Run()
		Expect(err).NotTo(HaveOccurred())
		Expect(code).To(Equal(p.ExpectedExit))
		Expect(string(s.UARTOutput())).To(Equal(p.ExpectedOutput))
		return s
	}

	for _, p := range programs.All() {
		p := p
		It("should run "+p.Name+" to its expected result", func() {
			run(p, false)
		})

		It("should run "+p.Name+" with the fetch cache", func() {
			s := run(p, true)
			Expect(s.Stats().FetchMisses).To(BeNumerically(">", 0))
			Expect(s.Stats().FetchStalls).To(BeNumerically(">", 0))
		})
	}

	It("should take and return from three traps", func() {
		s := run(programs.TimerTrap(), false)
		Expect(s.Stats().Traps).To(Equal(uint64(programs.TimerTrapCount)))
		Expect(s.Stats().Returns).To(Equal(uint64(programs.TimerTrapCount)))
	})

	It("should stall the store made while DMA owns the bus", func() {
		s := run(programs.DMACopy(), false)
		st := s.Stats()
		Expect(st.DMAWords).To(Equal(uint64(len(programs.DMACopyWords))))
		Expect(st.MaskedWrites).To(BeNumerically(">", 0))
		Expect(st.BusStalls).To(Equal(st.MaskedWrites))
		Expect(s.RAM().Peek(0x20000050)).To(Equal(uint32(5)))
	})

	It("should list and look up programs", func() {
		Expect(programs.Names()).To(Equal([]string{"dma-copy", "hello", "timer-trap"}))

		p, err := programs.Lookup("hello")
		Expect(err).NotTo(HaveOccurred())
		Expect(p.ExpectedOutput).To(Equal(programs.HelloMessage))

		_, err = programs.Lookup("doom")
		Expect(err).To(MatchError(programs.ErrUnknownProgram))
	})

	It("should hand out independent images", func() {
		p := programs.Hello()
		img := p.Image()
		img.ROM[0] = 0
		Expect(p.Words[0]).NotTo(Equal(uint32(0)))
	})
})

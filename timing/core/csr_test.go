package core_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvsoc/timing/core"
)

var _ = Describe("Exception context", func() {
	hw := core.Capture{PC: 0x40, Valid: true}
	sw := core.SoftwareWrite{Value: 0x80, Valid: true}

	DescribeTable("writer priority",
		func(hw core.Capture, sw core.SoftwareWrite, reset bool, want uint32) {
			Expect(core.StepContext(0x10, hw, sw, reset)).To(Equal(want))
		},
		Entry("retain", core.Capture{}, core.SoftwareWrite{}, false, uint32(0x10)),
		Entry("hardware capture", hw, core.SoftwareWrite{}, false, uint32(0x40)),
		Entry("software write", core.Capture{}, sw, false, uint32(0x80)),
		Entry("software beats hardware", hw, sw, false, uint32(0x80)),
		Entry("reset dominates", hw, sw, true, uint32(0)),
	)

	It("should commit and count writers", func() {
		ctx := core.NewExceptionContext()

		ctx.Tick(hw, core.SoftwareWrite{}, false)
		Expect(ctx.Value()).To(Equal(uint32(0x40)))

		ctx.Tick(hw, sw, false)
		Expect(ctx.Value()).To(Equal(uint32(0x80)))

		ctx.Tick(core.Capture{}, core.SoftwareWrite{}, false)
		Expect(ctx.Value()).To(Equal(uint32(0x80)))

		Expect(ctx.Stats()).To(Equal(core.ContextStats{
			Captures: 2, SoftwareWrites: 1, Collisions: 1,
		}))

		ctx.Tick(hw, sw, true)
		Expect(ctx.Value()).To(Equal(uint32(0)))

		ctx.Tick(hw, core.SoftwareWrite{}, false)
		ctx.Reset()
		Expect(ctx.Value()).To(Equal(uint32(0)))
		Expect(ctx.Stats()).To(Equal(core.ContextStats{}))
	})
})

var _ = Describe("Program counter", func() {
	DescribeTable("step",
		func(enable, reset bool, want uint32) {
			Expect(core.StepPC(0x20, 0x24, enable, reset)).To(Equal(want))
		},
		Entry("hold", false, false, uint32(0x20)),
		Entry("update", true, false, uint32(0x24)),
		Entry("reset beats enable", true, true, uint32(0)),
		Entry("reset while stalled", false, true, uint32(0)),
	)

	It("should hold through any number of stalls", func() {
		var pc core.ProgramCounter
		pc.Tick(0x100, true, false)
		for i := 0; i < 50; i++ {
			pc.Tick(uint32(i*4+0x200), false, false)
			Expect(pc.Value()).To(Equal(uint32(0x100)))
		}

		pc.Reset()
		Expect(pc.Value()).To(Equal(uint32(0)))
	})
})

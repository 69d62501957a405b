package emu_test

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvsoc/emu"
)

var _ = Describe("ALU", func() {
	var alu *emu.ALU

	BeforeEach(func() {
		alu = emu.NewALU()
	})

	DescribeTable("operations",
		func(a, b uint32, op emu.ALUOp, want uint32, zero bool) {
			result, z := alu.Execute(a, b, op)
			Expect(result).To(Equal(want))
			Expect(z).To(Equal(zero))
		},
		Entry("add", uint32(2), uint32(3), emu.ALUAdd, uint32(5), false),
		Entry("add wraps", uint32(0xFFFFFFFF), uint32(1), emu.ALUAdd, uint32(0), true),
		Entry("sub", uint32(7), uint32(7), emu.ALUSub, uint32(0), true),
		Entry("sub borrows", uint32(0), uint32(1), emu.ALUSub, uint32(0xFFFFFFFF), false),
		Entry("and", uint32(0xF0F0), uint32(0xFF00), emu.ALUAnd, uint32(0xF000), false),
		Entry("or", uint32(0xF0F0), uint32(0x0F0F), emu.ALUOr, uint32(0xFFFF), false),
		Entry("xor", uint32(0xFFFF), uint32(0xFFFF), emu.ALUXor, uint32(0), true),
		Entry("less-than is unsigned", uint32(0xFFFFFFFF), uint32(1), emu.ALULessThan, uint32(0), true),
		Entry("less-than", uint32(1), uint32(2), emu.ALULessThan, uint32(1), false),
		Entry("undefined op", uint32(9), uint32(9), emu.ALUOp(6), uint32(0), true),
	)

	It("should match Go arithmetic on random operands", func() {
		rng := rand.New(rand.NewSource(1))
		for i := 0; i < 1000; i++ {
			a, b := rng.Uint32(), rng.Uint32()

			r, _ := alu.Execute(a, b, emu.ALUAdd)
			Expect(r).To(Equal(a + b))
			r, _ = alu.Execute(a, b, emu.ALUSub)
			Expect(r).To(Equal(a - b))
			r, _ = alu.Execute(a, b, emu.ALUXor)
			Expect(r).To(Equal(a ^ b))

			lt := uint32(0)
			if a < b {
				lt = 1
			}
			r, z := alu.Execute(a, b, emu.ALULessThan)
			Expect(r).To(Equal(lt))
			Expect(z).To(Equal(lt == 0))
		}
	})

	It("should name its operations", func() {
		Expect(emu.ALUSub.String()).To(Equal("sub"))
		Expect(emu.ALULessThan.String()).To(Equal("lt"))
	})
})

package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvsoc/emu"
	"github.com/sarchlab/rvsoc/insts"
)

var _ = Describe("Emulator", func() {
	var (
		rom *emu.Memory
		ram *emu.Memory
	)

	newEmulator := func(program []uint32, opts ...emu.EmulatorOption) *emu.Emulator {
		var err error
		rom, err = emu.NewROM(64, program)
		Expect(err).NotTo(HaveOccurred())
		ram = emu.NewMemory(64)
		return emu.NewEmulator(rom, append([]emu.EmulatorOption{emu.WithDataPort(ram)}, opts...)...)
	}

	It("should run arithmetic to completion", func() {
		e := newEmulator([]uint32{
			insts.ADDI(1, 0, 7),
			insts.ADDI(2, 0, 5),
			insts.SUB(10, 1, 2),
			emu.HaltWord,
		})

		code, err := e.Run()
		Expect(err).NotTo(HaveOccurred())
		Expect(code).To(Equal(uint32(2)))
		Expect(e.InstructionCount()).To(Equal(uint64(3)))
	})

	It("should store and load through the data port", func() {
		e := newEmulator([]uint32{
			insts.ADDI(1, 0, 0x55),
			insts.SW(1, 0, 8),
			insts.LW(10, 0, 8),
			emu.HaltWord,
		})

		code, err := e.Run()
		Expect(err).NotTo(HaveOccurred())
		Expect(code).To(Equal(uint32(0x55)))
		Expect(ram.Peek(8)).To(Equal(uint32(0x55)))
	})

	It("should take equal branches and fall through otherwise", func() {
		e := newEmulator([]uint32{
			insts.ADDI(1, 0, 1),
			insts.BEQ(1, 0, 8), // not taken
			insts.BEQ(0, 0, 8), // taken, skips the next instruction
			insts.ADDI(10, 0, 99),
			insts.ADDI(10, 10, 4),
			emu.HaltWord,
		})

		code, err := e.Run()
		Expect(err).NotTo(HaveOccurred())
		Expect(code).To(Equal(uint32(4)))
	})

	It("should link on JAL and load upper immediates", func() {
		e := newEmulator([]uint32{
			insts.JAL(1, 8),
			emu.HaltWord,
			insts.LUI(2, 0x12345),
			insts.ADD(10, 1, 0),
			insts.JAL(0, -12),
		})

		code, err := e.Run()
		Expect(err).NotTo(HaveOccurred())
		Expect(code).To(Equal(uint32(4)))
		Expect(e.RegFile().ReadReg(2)).To(Equal(uint32(0x12345000)))
	})

	It("should return to the saved exception PC on MRET", func() {
		e := newEmulator([]uint32{
			insts.MRET,
			emu.HaltWord,
			insts.ADDI(10, 0, 3),
			emu.HaltWord,
		}, emu.WithExceptionPC(8))

		code, err := e.Run()
		Expect(err).NotTo(HaveOccurred())
		Expect(code).To(Equal(uint32(3)))
	})

	It("should stop at the instruction limit", func() {
		e := newEmulator([]uint32{insts.BEQ(0, 0, 0)}, emu.WithMaxInstructions(10))

		_, err := e.Run()
		Expect(err).To(MatchError(emu.ErrMaxInstructions))
		Expect(e.InstructionCount()).To(Equal(uint64(10)))
	})

	It("should clear state on reset", func() {
		e := newEmulator([]uint32{insts.ADDI(1, 0, 1), emu.HaltWord})
		e.Step()
		Expect(e.PC()).To(Equal(uint32(4)))

		e.Reset()
		Expect(e.PC()).To(Equal(uint32(0)))
		Expect(e.RegFile().ReadReg(1)).To(Equal(uint32(0)))
		Expect(e.InstructionCount()).To(Equal(uint64(0)))
	})
})

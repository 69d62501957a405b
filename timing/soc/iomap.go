package soc

import "github.com/sarchlab/rvsoc/timing/bus"

// IO register offsets. Only the low byte of an IO address selects the
// register.
const (
	RegUARTTxData   uint32 = 0x00 // W: send the low byte
	RegUARTStatus   uint32 = 0x04 // R: bit 0 busy, bit 1 done
	RegMEPC         uint32 = 0x08 // R/W: exception return address
	RegTimerCompare uint32 = 0x0C // R/W
	RegTimerCount   uint32 = 0x10 // R
	RegDMASrc       uint32 = 0x14 // R/W
	RegDMADst       uint32 = 0x18 // R/W
	RegDMALen       uint32 = 0x1C // W: start; R: words remaining
	RegSimExit      uint32 = 0x20 // W: halt with the written code
)

// UART_STATUS bits.
const (
	StatusBusy uint32 = 1 << 0
	StatusDone uint32 = 1 << 1
)

// Addr returns the bus address of an IO register.
func Addr(reg uint32) uint32 {
	return bus.IOBase | reg
}

// ioWrite is a store latched by the IO block at a clock edge.
type ioWrite struct {
	reg   uint32
	data  uint32
	valid bool
}

// ioBlock is the IO region target. Reads are combinational over the
// peripherals' current state. A write is latched and applied by the SoC in
// the same edge.
type ioBlock struct {
	soc   *SoC
	latch ioWrite

	dmaSrc uint32
	dmaDst uint32
}

func (b *ioBlock) Read(addr uint32) uint32 {
	s := b.soc

	switch addr & 0xFF {
	case RegUARTStatus:
		var v uint32
		if s.tx.Busy() {
			v |= StatusBusy
		}
		if s.tx.Done() {
			v |= StatusDone
		}
		return v
	case RegMEPC:
		return s.core.MEPC()
	case RegTimerCompare:
		return s.timer.Compare()
	case RegTimerCount:
		return s.timer.Count()
	case RegDMASrc:
		return b.dmaSrc
	case RegDMADst:
		return b.dmaDst
	case RegDMALen:
		return s.dma.Remaining()
	default:
		return 0
	}
}

func (b *ioBlock) Write(addr, data uint32) {
	b.latch = ioWrite{reg: addr & 0xFF, data: data, valid: true}
}

// take returns and clears the latched write.
func (b *ioBlock) take() ioWrite {
	w := b.latch
	b.latch = ioWrite{}
	return w
}

func (b *ioBlock) reset() {
	b.latch = ioWrite{}
	b.dmaSrc = 0
	b.dmaDst = 0
}

package uart_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvsoc/timing/uart"
)

// loopback drives tx with msg and collects whatever rx decodes.
func loopback(ticksPerBit int, msg []byte, gap int) []byte {
	tx := uart.NewTransmitter(ticksPerBit)
	rx := uart.NewReceiver(ticksPerBit)

	var got []byte
	pending := msg
	idleFor := 0

	limit := (len(msg) + 2) * (uart.FrameBits*ticksPerBit + gap + 2)
	for i := 0; i < limit; i++ {
		dv := false
		var b byte
		if len(pending) > 0 && !tx.Busy() {
			if idleFor >= gap {
				dv = true
				b = pending[0]
				pending = pending[1:]
				idleFor = 0
			} else {
				idleFor++
			}
		}

		tx.Tick(dv, b)
		if c, ok := rx.Sample(tx.Line()); ok {
			got = append(got, c)
		}
	}

	return got
}

var _ = Describe("Receiver", func() {
	DescribeTable("loopback",
		func(ticksPerBit, gap int) {
			msg := []byte("Hi\x00\xff\x5a")
			Expect(loopback(ticksPerBit, msg, gap)).To(Equal(msg))
		},
		Entry("one tick per bit, back to back", 1, 0),
		Entry("two ticks per bit, back to back", 2, 0),
		Entry("odd bit period", 7, 0),
		Entry("default period with gaps", uart.DefaultTicksPerBit, 13),
	)

	It("should count a low stop bit as a framing error", func() {
		rx := uart.NewReceiver(1)
		for i := 0; i < 10; i++ {
			_, ok := rx.Sample(0)
			Expect(ok).To(BeFalse())
		}
		Expect(rx.Stats().FramingErrors).To(Equal(uint64(1)))
		Expect(rx.Stats().Bytes).To(Equal(uint64(0)))
	})

	It("should reject a start glitch", func() {
		rx := uart.NewReceiver(4)
		rx.Sample(0)
		rx.Sample(1)
		rx.Sample(1)
		Expect(rx.Stats().Glitches).To(Equal(uint64(1)))

		rx.Reset()
		Expect(rx.Stats()).To(Equal(uart.RxStats{}))
	})
})

package programs

import (
	"errors"
	"fmt"
	"sort"

	"github.com/sarchlab/rvsoc/insts"
	"github.com/sarchlab/rvsoc/loader"
	"github.com/sarchlab/rvsoc/timing/bus"
	"github.com/sarchlab/rvsoc/timing/soc"
)

// ErrUnknownProgram is returned by Lookup for a name that is not built in.
var ErrUnknownProgram = errors.New("unknown program")

// Register conventions shared by the demos.
const (
	regIO   = 5 // IO base
	regT0   = 6
	regT1   = 7
	regRAM  = 8 // RAM base
	regA0   = 10
	regA1   = 11
	regK0   = 12 // handler scratch
	regSave = 13
)

// HelloMessage is what the hello demo prints.
const HelloMessage = "Hello from RV32!\n"

// Program is a built-in firmware image.
type Program struct {
	// Name identifies the program
	Name string

	// Description explains what the program exercises
	Description string

	// Words is the ROM image
	Words []uint32

	// ExpectedExit is the SIM_EXIT code of a correct run
	ExpectedExit uint32

	// ExpectedOutput is the UART output of a correct run
	ExpectedOutput string
}

// Image returns the program as a boot image.
func (p Program) Image() *loader.Image {
	words := make([]uint32, len(p.Words))
	copy(words, p.Words)
	return &loader.Image{ROM: words}
}

// All returns every built-in program.
func All() []Program {
	return []Program{
		Hello(),
		TimerTrap(),
		DMACopy(),
	}
}

// Names returns the built-in program names in sorted order.
func Names() []string {
	var names []string
	for _, p := range All() {
		names = append(names, p.Name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the built-in program with the given name.
func Lookup(name string) (Program, error) {
	for _, p := range All() {
		if p.Name == name {
			return p, nil
		}
	}
	return Program{}, fmt.Errorf("%w: %q", ErrUnknownProgram, name)
}

// prologue loads the IO and RAM base registers.
func prologue(b *Builder) *Builder {
	return b.
		LoadImm(regIO, bus.IOBase).
		LoadImm(regRAM, bus.RAMBase)
}

// exit writes SIM_EXIT with the value of reg and parks the core.
func exit(b *Builder, reg uint8) *Builder {
	return b.
		Emit(insts.SW(reg, regIO, int32(soc.RegSimExit))).
		Halt()
}

// waitTxIdle spins until UART_STATUS.busy is clear.
func waitTxIdle(b *Builder, label string) *Builder {
	return b.
		Label(label).
		Emit(
			insts.LW(regT0, regIO, int32(soc.RegUARTStatus)),
			insts.ANDI(regT0, regT0, int32(soc.StatusBusy)),
		).
		BEQ(regT0, 0, label+"_idle").
		Jump(label).
		Label(label + "_idle")
}

// Hello prints HelloMessage over the UART, polling the busy bit between
// characters.
func Hello() Program {
	b := prologue(NewBuilder())
	for i, c := range []byte(HelloMessage) {
		waitTxIdle(b, fmt.Sprintf("tx%d", i))
		b.Emit(
			insts.ADDI(regT1, 0, int32(c)),
			insts.SW(regT1, regIO, int32(soc.RegUARTTxData)),
		)
	}
	waitTxIdle(b, "flush")
	exit(b, 0)

	return Program{
		Name:           "hello",
		Description:    "prints a line over the UART by polling UART_STATUS",
		Words:          b.MustBuild(),
		ExpectedExit:   0,
		ExpectedOutput: HelloMessage,
	}
}

// TimerTrapCount is the number of interrupts the timer demo waits for.
const TimerTrapCount = 3

// TimerTrap arms the timer and waits in a loop while the trap handler
// counts interrupts in RAM. It exits with the count.
func TimerTrap() Program {
	b := prologue(NewBuilder()).
		Emit(
			insts.ADDI(regT0, 0, 200),
			insts.SW(regT0, regIO, int32(soc.RegTimerCompare)),
			insts.ADDI(regA1, 0, TimerTrapCount),
		).
		Label("wait").
		Emit(
			insts.LW(regA0, regRAM, 0),
			insts.SUB(regT1, regA0, regA1),
		).
		BEQ(regT1, 0, "done").
		Jump("wait").
		Label("done").
		Emit(insts.SW(0, regIO, int32(soc.RegTimerCompare)))
	exit(b, regA0)

	// The handler only touches k0.
	b.Org(0x100).
		Label("handler").
		Emit(
			insts.LW(regK0, regRAM, 0),
			insts.ADDI(regK0, regK0, 1),
			insts.SW(regK0, regRAM, 0),
			insts.MRET,
		)

	return Program{
		Name:         "timer-trap",
		Description:  "takes timer interrupts into a handler at 0x100 that counts them",
		Words:        b.MustBuild(),
		ExpectedExit: TimerTrapCount,
	}
}

// DMACopyWords is the source data of the DMA demo.
var DMACopyWords = []uint32{0x11, 0x22, 0x33, 0x44}

// DMACopySum is the DMA demo's exit code: the copied words plus a marker
// stored while the DMA engine owns the bus.
const DMACopySum = 0x11 + 0x22 + 0x33 + 0x44 + 5

// DMACopy fills RAM, copies it with the DMA engine, stores while the DMA
// engine holds the bus, and exits with the sum of the destination.
func DMACopy() Program {
	b := prologue(NewBuilder())
	for i, w := range DMACopyWords {
		b.Emit(
			insts.ADDI(regT0, 0, int32(w)),
			insts.SW(regT0, regRAM, int32(4*i)),
		)
	}

	b.Emit(
		insts.ADDI(regSave, 0, 5),
		insts.SW(regRAM, regIO, int32(soc.RegDMASrc)),
		insts.ADDI(regT1, regRAM, 0x40),
		insts.SW(regT1, regIO, int32(soc.RegDMADst)),
		insts.ADDI(regT0, 0, int32(len(DMACopyWords))),
		insts.SW(regT0, regIO, int32(soc.RegDMALen)),
		insts.NOP,
		// Mastership has moved to DMA by now, so this store waits.
		insts.SW(regSave, regRAM, 0x50),
	).
		Label("poll").
		Emit(insts.LW(regT0, regIO, int32(soc.RegDMALen))).
		BEQ(regT0, 0, "sum").
		Jump("poll").
		Label("sum").
		Emit(insts.LW(regA0, regRAM, 0x50))

	for i := range DMACopyWords {
		b.Emit(
			insts.LW(regA1, regRAM, int32(0x40+4*i)),
			insts.ADD(regA0, regA0, regA1),
		)
	}
	exit(b, regA0)

	return Program{
		Name:         "dma-copy",
		Description:  "copies RAM with the DMA engine while the CPU stores into RAM",
		Words:        b.MustBuild(),
		ExpectedExit: DMACopySum,
	}
}

// Package bus models the shared address space and the write arbiter between
// the CPU and the DMA engine.
package bus

import "fmt"

// Region select bits.
const (
	IOBit  uint32 = 1 << 30
	RAMBit uint32 = 1 << 29
)

// Base addresses of the regions.
const (
	ROMBase uint32 = 0
	RAMBase        = RAMBit
	IOBase         = IOBit
)

// Region identifies the target of an address.
type Region uint8

const (
	// RegionROM holds the boot image.
	RegionROM Region = iota
	// RegionRAM is data memory.
	RegionRAM
	// RegionIO is the peripheral register block.
	RegionIO

	numRegions
)

func (r Region) String() string {
	switch r {
	case RegionROM:
		return "ROM"
	case RegionRAM:
		return "RAM"
	case RegionIO:
		return "IO"
	default:
		return fmt.Sprintf("region(%d)", uint8(r))
	}
}

// Decode maps an address to its region. IO takes precedence over RAM, and
// RAM over ROM, so an address with both select bits set is IO.
func Decode(addr uint32) Region {
	switch {
	case addr&IOBit != 0:
		return RegionIO
	case addr&RAMBit != 0:
		return RegionRAM
	default:
		return RegionROM
	}
}

// Target is anything addressable on the bus.
type Target interface {
	Read(addr uint32) uint32
	Write(addr, data uint32)
}

// Map binds each region to a target. A nil target reads as 0 and ignores
// writes.
type Map struct {
	ROM Target
	RAM Target
	IO  Target
}

// Target returns the target of a region.
func (m Map) Target(r Region) Target {
	switch r {
	case RegionRAM:
		return m.RAM
	case RegionIO:
		return m.IO
	default:
		return m.ROM
	}
}

// Read reads addr from the target of its region.
func (m Map) Read(addr uint32) uint32 {
	t := m.Target(Decode(addr))
	if t == nil {
		return 0
	}
	return t.Read(addr)
}

// Write writes addr on the target of its region.
func (m Map) Write(addr, data uint32) {
	t := m.Target(Decode(addr))
	if t == nil {
		return
	}
	t.Write(addr, data)
}

package cache

import (
	"github.com/sarchlab/rvsoc/emu"
)

// MemoryBacking wraps emu.Memory as a BackingStore.
type MemoryBacking struct {
	memory *emu.Memory
}

// NewMemoryBacking creates a new MemoryBacking adapter.
func NewMemoryBacking(memory *emu.Memory) *MemoryBacking {
	return &MemoryBacking{memory: memory}
}

// Fetch reads a word from the backing memory.
func (m *MemoryBacking) Fetch(addr uint32) uint32 {
	return m.memory.Read(addr)
}

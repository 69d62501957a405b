package emu

import (
	"errors"
	"fmt"
)

// ErrImageTooLarge is returned when a boot image does not fit in memory.
var ErrImageTooLarge = errors.New("image larger than memory")

// Memory is a word-addressable storage array behind a byte address.
//
// Byte address bits [1:0] are ignored, so addresses 0x4-0x7 all select word
// index 1. Indices wrap modulo the memory size, which discards region select
// bits above the array.
type Memory struct {
	words    []uint32
	readOnly bool

	// Statistics
	reads   uint64
	writes  uint64
	dropped uint64
}

// MemoryStats holds access counters for a memory.
type MemoryStats struct {
	Reads   uint64
	Writes  uint64
	Dropped uint64 // writes ignored because the memory is read-only
}

// NewMemory creates a writable memory of the given number of words.
func NewMemory(words int) *Memory {
	if words <= 0 {
		words = 1
	}
	return &Memory{words: make([]uint32, words)}
}

// NewROM creates a read-only memory preloaded with image.
// Words in image beyond size return ErrImageTooLarge.
func NewROM(words int, image []uint32) (*Memory, error) {
	m := NewMemory(words)
	if err := m.Load(image); err != nil {
		return nil, err
	}
	m.readOnly = true
	return m, nil
}

// Size returns the number of words.
func (m *Memory) Size() int {
	return len(m.words)
}

// ReadOnly reports whether writes are ignored.
func (m *Memory) ReadOnly() bool {
	return m.readOnly
}

// index maps a byte address to a word index.
func (m *Memory) index(addr uint32) int {
	return int((addr >> 2) % uint32(len(m.words)))
}

// Read returns the word at addr. Reads are combinational.
func (m *Memory) Read(addr uint32) uint32 {
	m.reads++
	return m.words[m.index(addr)]
}

// Peek returns the word at addr without counting an access.
func (m *Memory) Peek(addr uint32) uint32 {
	return m.words[m.index(addr)]
}

// Write stores data at addr. Read-only memories drop the write.
func (m *Memory) Write(addr, data uint32) {
	if m.readOnly {
		m.dropped++
		return
	}
	m.writes++
	m.words[m.index(addr)] = data
}

// Load copies image into the memory starting at word index 0.
// Load ignores the read-only flag; it models boot-time initialization.
func (m *Memory) Load(image []uint32) error {
	if len(image) > len(m.words) {
		return fmt.Errorf("%w: %d words into %d", ErrImageTooLarge, len(image), len(m.words))
	}
	copy(m.words, image)
	return nil
}

// Words returns a copy of the memory contents.
func (m *Memory) Words() []uint32 {
	out := make([]uint32, len(m.words))
	copy(out, m.words)
	return out
}

// Clear zeroes every word.
func (m *Memory) Clear() {
	clear(m.words)
}

// Stats returns the access counters.
func (m *Memory) Stats() MemoryStats {
	return MemoryStats{Reads: m.reads, Writes: m.writes, Dropped: m.dropped}
}

// ResetStats clears the access counters.
func (m *Memory) ResetStats() {
	m.reads, m.writes, m.dropped = 0, 0, 0
}

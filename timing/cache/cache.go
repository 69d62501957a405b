// Package cache provides an instruction fetch cache modeled with Akita cache
// components.
package cache

import (
	"fmt"

	akitacache "github.com/sarchlab/akita/v4/mem/cache"
)

// Config holds cache configuration parameters.
type Config struct {
	// Size in bytes
	Size int `json:"size" yaml:"size" toml:"size"`
	// Associativity (number of ways)
	Associativity int `json:"associativity" yaml:"associativity" toml:"associativity"`
	// BlockSize in bytes (cache line size), a multiple of 4
	BlockSize int `json:"block_size" yaml:"block_size" toml:"block_size"`
	// HitLatency in extra cycles a hit waits
	HitLatency int `json:"hit_latency" yaml:"hit_latency" toml:"hit_latency"`
	// MissLatency in extra cycles a miss waits while the line fills
	MissLatency int `json:"miss_latency" yaml:"miss_latency" toml:"miss_latency"`
}

// DefaultConfig returns a small two-way cache sized for boot ROMs.
func DefaultConfig() Config {
	return Config{
		Size:          256, // 256B
		Associativity: 2,   // 2-way
		BlockSize:     16,  // 4 words per line
		HitLatency:    0,   // single-cycle core
		MissLatency:   4,
	}
}

// Validate checks that the geometry describes at least one set.
func (c Config) Validate() error {
	if c.Associativity <= 0 {
		return fmt.Errorf("cache associativity must be positive, got %d", c.Associativity)
	}
	if c.BlockSize <= 0 || c.BlockSize%4 != 0 {
		return fmt.Errorf("cache block size must be a positive multiple of 4, got %d", c.BlockSize)
	}
	if c.Size < c.Associativity*c.BlockSize || c.Size%(c.Associativity*c.BlockSize) != 0 {
		return fmt.Errorf("cache size %d is not a multiple of %d ways x %dB",
			c.Size, c.Associativity, c.BlockSize)
	}
	if c.HitLatency < 0 || c.MissLatency < 0 {
		return fmt.Errorf("cache latencies must not be negative")
	}
	return nil
}

// AccessResult contains the result of a cache access.
type AccessResult struct {
	// Hit indicates whether the access was a cache hit.
	Hit bool
	// Latency is the number of extra cycles this access waits.
	Latency int
	// Word is the instruction word.
	Word uint32
	// Evicted is true if a valid line was replaced.
	Evicted bool
	// EvictedAddr is the address of the evicted line (if Evicted is true).
	EvictedAddr uint32
}

// Statistics holds cache performance statistics.
type Statistics struct {
	Reads     uint64
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// BackingStore is the next level the cache fills lines from.
type BackingStore interface {
	Fetch(addr uint32) uint32
}

// Cache is a read-only, word-granular fetch cache.
type Cache struct {
	config Config

	// Akita cache directory for tag/state management
	directory *akitacache.DirectoryImpl

	// Data storage - indexed by (setID * associativity + wayID)
	dataStore [][]uint32

	stats   Statistics
	backing BackingStore
}

// New creates a new cache with the given configuration.
func New(config Config, backing BackingStore) *Cache {
	numSets := config.Size / (config.Associativity * config.BlockSize)
	totalBlocks := numSets * config.Associativity

	dataStore := make([][]uint32, totalBlocks)
	for i := range dataStore {
		dataStore[i] = make([]uint32, config.BlockSize/4)
	}

	return &Cache{
		config: config,
		directory: akitacache.NewDirectory(
			numSets,
			config.Associativity,
			config.BlockSize,
			akitacache.NewLRUVictimFinder(),
		),
		dataStore: dataStore,
		backing:   backing,
	}
}

// Config returns the cache configuration.
func (c *Cache) Config() Config {
	return c.config
}

// Stats returns cache statistics.
func (c *Cache) Stats() Statistics {
	return c.stats
}

// ResetStats clears cache statistics.
func (c *Cache) ResetStats() {
	c.stats = Statistics{}
}

func (c *Cache) blockIndex(block *akitacache.Block) int {
	return block.SetID*c.config.Associativity + block.WayID
}

func (c *Cache) blockAddr(addr uint32) uint32 {
	size := uint32(c.config.BlockSize)
	return addr / size * size
}

// Read looks up the word at addr, filling its line on a miss.
func (c *Cache) Read(addr uint32) AccessResult {
	c.stats.Reads++

	blockAddr := c.blockAddr(addr)
	offset := (addr - blockAddr) / 4

	block := c.directory.Lookup(0, uint64(blockAddr))
	if block != nil && block.IsValid {
		c.stats.Hits++
		c.directory.Visit(block)

		return AccessResult{
			Hit:     true,
			Latency: c.config.HitLatency,
			Word:    c.dataStore[c.blockIndex(block)][offset],
		}
	}

	c.stats.Misses++
	return c.fill(blockAddr, offset)
}

// Fetch implements the core's instruction port: the word and the cycles
// to wait for it.
func (c *Cache) Fetch(addr uint32) (uint32, int) {
	r := c.Read(addr)
	return r.Word, r.Latency
}

func (c *Cache) fill(blockAddr, offset uint32) AccessResult {
	result := AccessResult{Latency: c.config.MissLatency}

	victim := c.directory.FindVictim(uint64(blockAddr))
	if victim == nil {
		return result
	}

	if victim.IsValid {
		c.stats.Evictions++
		result.Evicted = true
		result.EvictedAddr = uint32(victim.Tag)
	}

	line := c.dataStore[c.blockIndex(victim)]
	for i := range line {
		if c.backing != nil {
			line[i] = c.backing.Fetch(blockAddr + uint32(i*4))
		} else {
			line[i] = 0
		}
	}

	victim.Tag = uint64(blockAddr)
	victim.IsValid = true
	victim.IsDirty = false
	c.directory.Visit(victim)

	result.Word = line[offset]
	return result
}

// Invalidate drops the line holding addr.
func (c *Cache) Invalidate(addr uint32) {
	block := c.directory.Lookup(0, uint64(c.blockAddr(addr)))
	if block != nil && block.IsValid {
		block.IsValid = false
	}
}

// InvalidateAll drops every line and keeps statistics.
func (c *Cache) InvalidateAll() {
	for _, set := range c.directory.GetSets() {
		for _, block := range set.Blocks {
			block.IsValid = false
		}
	}
}

// Reset invalidates all lines and clears statistics.
func (c *Cache) Reset() {
	c.directory.Reset()
	c.stats = Statistics{}
}

package cache_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvsoc/emu"
	"github.com/sarchlab/rvsoc/timing/cache"
)

var _ = Describe("Cache", func() {
	var (
		c      *cache.Cache
		memory *emu.Memory
	)

	BeforeEach(func() {
		memory = emu.NewMemory(256)
		for i := 0; i < memory.Size(); i++ {
			memory.Write(uint32(i*4), uint32(0x1000+i))
		}
		memory.ResetStats()

		// 128B, 2-way, 16B lines: 4 sets
		config := cache.Config{
			Size:          128,
			Associativity: 2,
			BlockSize:     16,
			HitLatency:    0,
			MissLatency:   5,
		}
		Expect(config.Validate()).To(Succeed())
		c = cache.New(config, cache.NewMemoryBacking(memory))
	})

	Describe("Read operations", func() {
		It("should miss on cold cache and fill the whole line", func() {
			result := c.Read(0x0)
			Expect(result.Hit).To(BeFalse())
			Expect(result.Latency).To(Equal(5))
			Expect(result.Word).To(Equal(uint32(0x1000)))
			Expect(memory.Stats().Reads).To(Equal(uint64(4)))
		})

		It("should hit on other words of the same line", func() {
			c.Read(0x0)

			result := c.Read(0xC)
			Expect(result.Hit).To(BeTrue())
			Expect(result.Latency).To(Equal(0))
			Expect(result.Word).To(Equal(uint32(0x1003)))

			stats := c.Stats()
			Expect(stats.Reads).To(Equal(uint64(2)))
			Expect(stats.Hits).To(Equal(uint64(1)))
			Expect(stats.Misses).To(Equal(uint64(1)))
		})

		It("should report the stall through Fetch", func() {
			word, stall := c.Fetch(0x10)
			Expect(word).To(Equal(uint32(0x1004)))
			Expect(stall).To(Equal(5))

			_, stall = c.Fetch(0x10)
			Expect(stall).To(Equal(0))
		})
	})

	Describe("Eviction", func() {
		It("should evict the least recently used way", func() {
			// Set 0 lines: 0x00, 0x40, 0x80
			c.Read(0x00)
			c.Read(0x40)
			c.Read(0x00)

			result := c.Read(0x80)
			Expect(result.Evicted).To(BeTrue())
			Expect(result.EvictedAddr).To(Equal(uint32(0x40)))

			Expect(c.Read(0x00).Hit).To(BeTrue())
			Expect(c.Read(0x40).Hit).To(BeFalse())
			Expect(c.Stats().Evictions).To(Equal(uint64(2)))
		})
	})

	Describe("Invalidation", func() {
		It("should refetch an invalidated line", func() {
			c.Read(0x0)
			c.Invalidate(0x4)
			Expect(c.Read(0x0).Hit).To(BeFalse())
		})

		It("should drop every line", func() {
			c.Read(0x00)
			c.Read(0x10)
			c.InvalidateAll()
			Expect(c.Read(0x00).Hit).To(BeFalse())
			Expect(c.Read(0x10).Hit).To(BeFalse())
		})

		It("should clear statistics on reset", func() {
			c.Read(0x0)
			c.Reset()
			Expect(c.Stats()).To(Equal(cache.Statistics{}))
			Expect(c.Read(0x0).Hit).To(BeFalse())
		})
	})

	Describe("Configuration", func() {
		It("should accept the default", func() {
			Expect(cache.DefaultConfig().Validate()).To(Succeed())
		})

		It("should reject a size that is not a whole number of sets", func() {
			cfg := cache.DefaultConfig()
			cfg.Size = 100
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("should reject unaligned blocks", func() {
			cfg := cache.DefaultConfig()
			cfg.BlockSize = 6
			Expect(cfg.Validate()).NotTo(Succeed())
		})
	})
})

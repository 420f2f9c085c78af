// Package cache provides a decoded-instruction cache built on the Akita
// cache directory.
//
// The cache maps guest addresses to decoded instructions so that a hot
// loop is decoded once. Lines cover BlockSize consecutive guest bytes and
// hold one slot per byte, since an instruction may start at any address.
// Any write to guest memory must be reported through Invalidate.
package cache

import (
	"fmt"

	akitacache "github.com/sarchlab/akita/v4/mem/cache"

	"github.com/sarchlab/c8sim/insts"
)

// Config holds cache configuration parameters.
type Config struct {
	// Size is the number of guest bytes the cache can cover.
	Size int
	// Associativity (number of ways)
	Associativity int
	// BlockSize is the number of guest bytes per line.
	BlockSize int
}

// DefaultConfig returns a 1KB, 4-way cache with 16-byte lines, enough for
// the working set of most programs.
func DefaultConfig() Config {
	return Config{
		Size:          1024,
		Associativity: 4,
		BlockSize:     16,
	}
}

// Validate checks that the geometry describes at least one full set.
func (c Config) Validate() error {
	if c.BlockSize <= 0 {
		return fmt.Errorf("block size must be positive, got %d", c.BlockSize)
	}
	if c.Associativity <= 0 {
		return fmt.Errorf("associativity must be positive, got %d", c.Associativity)
	}
	if c.Size < c.BlockSize*c.Associativity {
		return fmt.Errorf("size %d is smaller than one set (%d bytes)",
			c.Size, c.BlockSize*c.Associativity)
	}
	if c.Size%(c.BlockSize*c.Associativity) != 0 {
		return fmt.Errorf("size %d is not a multiple of the set size %d",
			c.Size, c.BlockSize*c.Associativity)
	}
	return nil
}

// Statistics holds cache performance statistics.
type Statistics struct {
	Lookups       uint64
	Hits          uint64
	Misses        uint64
	Inserts       uint64
	Evictions     uint64
	Invalidations uint64
}

// HitRate returns hits over lookups, or 0 before the first lookup.
func (s Statistics) HitRate() float64 {
	if s.Lookups == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.Lookups)
}

// Cache is a set-associative decoded-instruction cache.
type Cache struct {
	config Config

	// Akita cache directory for tag/LRU management
	directory *akitacache.DirectoryImpl

	// Decoded instructions - indexed by (setID * associativity + wayID),
	// then by byte offset within the line
	lines [][]*insts.Instruction

	stats Statistics
}

// New creates a new cache with the given configuration. The
// configuration must pass Validate.
func New(config Config) *Cache {
	numSets := config.Size / (config.Associativity * config.BlockSize)
	totalBlocks := numSets * config.Associativity

	lines := make([][]*insts.Instruction, totalBlocks)
	for i := range lines {
		lines[i] = make([]*insts.Instruction, config.BlockSize)
	}

	return &Cache{
		config: config,
		directory: akitacache.NewDirectory(
			numSets,
			config.Associativity,
			config.BlockSize,
			akitacache.NewLRUVictimFinder(),
		),
		lines: lines,
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

func (c *Cache) blockAddr(addr uint16) uint64 {
	bs := uint64(c.config.BlockSize)
	return (uint64(addr) / bs) * bs
}

func (c *Cache) offset(addr uint16) int {
	return int(addr) % c.config.BlockSize
}

// Lookup returns the instruction decoded at addr, if cached.
func (c *Cache) Lookup(addr uint16) (*insts.Instruction, bool) {
	c.stats.Lookups++

	block := c.directory.Lookup(0, c.blockAddr(addr))
	if block != nil && block.IsValid {
		inst := c.lines[c.blockIndex(block)][c.offset(addr)]
		if inst != nil {
			c.stats.Hits++
			c.directory.Visit(block)
			return inst, true
		}
	}

	c.stats.Misses++
	return nil, false
}

// Insert records the instruction decoded at addr, allocating a line and
// evicting the least recently used one if needed.
func (c *Cache) Insert(addr uint16, inst *insts.Instruction) {
	c.stats.Inserts++
	blockAddr := c.blockAddr(addr)

	block := c.directory.Lookup(0, blockAddr)
	if block == nil || !block.IsValid {
		block = c.directory.FindVictim(blockAddr)
		if block == nil {
			return
		}
		if block.IsValid {
			c.stats.Evictions++
		}

		clear(c.lines[c.blockIndex(block)])
		block.Tag = blockAddr
		block.IsValid = true
		block.IsDirty = false
	}

	c.lines[c.blockIndex(block)][c.offset(addr)] = inst
	c.directory.Visit(block)
}

// Invalidate drops every cached instruction that covers the byte at addr:
// the one starting at addr and the one starting at addr-1.
func (c *Cache) Invalidate(addr uint16) {
	c.invalidateSlot(addr)
	if addr > 0 {
		c.invalidateSlot(addr - 1)
	}
}

func (c *Cache) invalidateSlot(addr uint16) {
	block := c.directory.Lookup(0, c.blockAddr(addr))
	if block == nil || !block.IsValid {
		return
	}

	line := c.lines[c.blockIndex(block)]
	off := c.offset(addr)
	if line[off] != nil {
		line[off] = nil
		c.stats.Invalidations++
	}
}

// ValidLines counts the allocated lines.
func (c *Cache) ValidLines() int {
	n := 0
	for _, set := range c.directory.GetSets() {
		for _, block := range set.Blocks {
			if block.IsValid {
				n++
			}
		}
	}
	return n
}

// Reset invalidates all lines and clears statistics.
func (c *Cache) Reset() {
	c.directory.Reset()
	for _, line := range c.lines {
		clear(line)
	}
	c.stats = Statistics{}
}

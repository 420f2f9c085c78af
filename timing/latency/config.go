package latency

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sarchlab/c8sim/timing/cache"
)

// TimingConfig holds the host clock rates and the cost of each
// instruction class in machine cycles.
type TimingConfig struct {
	// ClockHz is the number of machine cycles per second.
	// Default: 700.
	ClockHz uint64 `json:"clock_hz"`

	// TimerHz is the delay/sound timer tick rate. Default: 60.
	TimerHz uint64 `json:"timer_hz"`

	// ALULatency is the cost of register loads and arithmetic.
	// Default: 1 cycle.
	ALULatency uint64 `json:"alu_latency"`

	// BranchLatency is the cost of jumps, calls, returns and skips.
	// Default: 1 cycle.
	BranchLatency uint64 `json:"branch_latency"`

	// MemoryLatency is the cost of I register updates and of BCD and
	// bulk register transfers. Default: 1 cycle.
	MemoryLatency uint64 `json:"memory_latency"`

	// DrawLatency is the cost of CLS and DRW. Default: 1 cycle.
	DrawLatency uint64 `json:"draw_latency"`

	// KeyLatency is the cost of entering a key wait, and of every poll
	// while waiting. Default: 1 cycle.
	KeyLatency uint64 `json:"key_latency"`

	// TimerLatency is the cost of delay/sound timer transfers.
	// Default: 1 cycle.
	TimerLatency uint64 `json:"timer_latency"`

	// RandomLatency is the cost of RND. Default: 1 cycle.
	RandomLatency uint64 `json:"random_latency"`

	// HaltOnUnknownOpcode stops the run at an unknown opcode. When false
	// the opcode is logged and skipped. Default: true.
	HaltOnUnknownOpcode bool `json:"halt_on_unknown_opcode"`

	// DecodeCache enables the decoded-instruction cache. Default: true.
	DecodeCache bool `json:"decode_cache"`

	// DecodeCacheSize is the number of guest bytes the decode cache
	// covers. Default: 1024.
	DecodeCacheSize int `json:"decode_cache_size"`

	// DecodeCacheWays is the decode cache associativity. Default: 4.
	DecodeCacheWays int `json:"decode_cache_ways"`

	// DecodeCacheBlockSize is the decode cache line size in guest
	// bytes. Default: 16.
	DecodeCacheBlockSize int `json:"decode_cache_block_size"`
}

// DefaultTimingConfig returns a TimingConfig with the conventional
// 700 Hz clock and 60 Hz timers.
func DefaultTimingConfig() *TimingConfig {
	def := cache.DefaultConfig()

	return &TimingConfig{
		ClockHz:              700,
		TimerHz:              60,
		ALULatency:           1,
		BranchLatency:        1,
		MemoryLatency:        1,
		DrawLatency:          1,
		KeyLatency:           1,
		TimerLatency:         1,
		RandomLatency:        1,
		HaltOnUnknownOpcode:  true,
		DecodeCache:          true,
		DecodeCacheSize:      def.Size,
		DecodeCacheWays:      def.Associativity,
		DecodeCacheBlockSize: def.BlockSize,
	}
}

// LoadConfig loads a TimingConfig from a JSON file. Fields missing from
// the file keep their default values.
func LoadConfig(path string) (*TimingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read timing config file: %w", err)
	}

	config := DefaultTimingConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse timing config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a TimingConfig to a JSON file.
func (c *TimingConfig) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize timing config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write timing config file: %w", err)
	}

	return nil
}

// MaxRateHz is the highest clock or timer rate whose period is still at
// least one nanosecond.
const MaxRateHz = uint64(time.Second)

// Validate checks that rates are in range, latencies are positive and
// the decode cache geometry is usable when enabled.
func (c *TimingConfig) Validate() error {
	if c.ClockHz == 0 {
		return fmt.Errorf("clock_hz must be > 0")
	}
	if c.ClockHz > MaxRateHz {
		return fmt.Errorf("clock_hz must be <= %d, got %d", MaxRateHz, c.ClockHz)
	}
	if c.TimerHz == 0 {
		return fmt.Errorf("timer_hz must be > 0")
	}
	if c.TimerHz > MaxRateHz {
		return fmt.Errorf("timer_hz must be <= %d, got %d", MaxRateHz, c.TimerHz)
	}
	if c.ALULatency == 0 {
		return fmt.Errorf("alu_latency must be > 0")
	}
	if c.BranchLatency == 0 {
		return fmt.Errorf("branch_latency must be > 0")
	}
	if c.MemoryLatency == 0 {
		return fmt.Errorf("memory_latency must be > 0")
	}
	if c.DrawLatency == 0 {
		return fmt.Errorf("draw_latency must be > 0")
	}
	if c.KeyLatency == 0 {
		return fmt.Errorf("key_latency must be > 0")
	}
	if c.TimerLatency == 0 {
		return fmt.Errorf("timer_latency must be > 0")
	}
	if c.RandomLatency == 0 {
		return fmt.Errorf("random_latency must be > 0")
	}
	if c.DecodeCache {
		if err := c.CacheConfig().Validate(); err != nil {
			return fmt.Errorf("invalid decode cache: %w", err)
		}
	}
	return nil
}

// CacheConfig returns the decode cache geometry.
func (c *TimingConfig) CacheConfig() cache.Config {
	return cache.Config{
		Size:          c.DecodeCacheSize,
		Associativity: c.DecodeCacheWays,
		BlockSize:     c.DecodeCacheBlockSize,
	}
}

// CyclePeriod returns the wall-clock duration of one machine cycle.
func (c *TimingConfig) CyclePeriod() time.Duration {
	return time.Second / time.Duration(c.ClockHz)
}

// TimerPeriod returns the wall-clock interval between timer ticks.
func (c *TimingConfig) TimerPeriod() time.Duration {
	return time.Second / time.Duration(c.TimerHz)
}

// Clone returns a deep copy of the TimingConfig.
func (c *TimingConfig) Clone() *TimingConfig {
	clone := *c
	return &clone
}

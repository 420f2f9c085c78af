package latency_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/c8sim/insts"
	"github.com/sarchlab/c8sim/timing/latency"
)

var _ = Describe("Latency", func() {
	var (
		table   *latency.Table
		decoder *insts.Decoder
	)

	BeforeEach(func() {
		table = latency.NewTable()
		decoder = insts.NewDecoder()
	})

	Describe("Default Timing Values", func() {
		It("should run at 700 Hz with 60 Hz timers", func() {
			config := table.Config()
			Expect(config.ClockHz).To(Equal(uint64(700)))
			Expect(config.TimerHz).To(Equal(uint64(60)))
		})

		It("should charge one cycle per instruction", func() {
			for word := 0; word <= 0xFFFF; word += 0x0111 {
				Expect(table.GetLatency(decoder.Decode(uint16(word)))).To(Equal(uint64(1)))
			}
		})

		It("should halt on unknown opcodes and cache decodes", func() {
			config := table.Config()
			Expect(config.HaltOnUnknownOpcode).To(BeTrue())
			Expect(config.DecodeCache).To(BeTrue())
		})
	})

	Describe("Custom Configuration", func() {
		BeforeEach(func() {
			config := latency.DefaultTimingConfig()
			config.ALULatency = 2
			config.BranchLatency = 3
			config.MemoryLatency = 4
			config.DrawLatency = 5
			config.KeyLatency = 6
			config.TimerLatency = 7
			config.RandomLatency = 8
			table = latency.NewTableWithConfig(config)
		})

		DescribeTable("should charge by format",
			func(word uint16, want uint64) {
				Expect(table.GetLatency(decoder.Decode(word))).To(Equal(want))
			},
			Entry("LD Vx,nn", uint16(0x6012), uint64(2)),
			Entry("ADD Vx,Vy", uint16(0x8124), uint64(2)),
			Entry("JP", uint16(0x1234), uint64(3)),
			Entry("CALL", uint16(0x2345), uint64(3)),
			Entry("RET", uint16(0x00EE), uint64(3)),
			Entry("SE Vx,nn", uint16(0x3012), uint64(3)),
			Entry("SKP", uint16(0xE09E), uint64(3)),
			Entry("LD I,nnn", uint16(0xA123), uint64(4)),
			Entry("LD [I],Vx", uint16(0xF355), uint64(4)),
			Entry("LD B,Vx", uint16(0xF333), uint64(4)),
			Entry("CLS", uint16(0x00E0), uint64(5)),
			Entry("DRW", uint16(0xD125), uint64(5)),
			Entry("LD Vx,K", uint16(0xF00A), uint64(6)),
			Entry("LD DT,Vx", uint16(0xF015), uint64(7)),
			Entry("RND", uint16(0xC0FF), uint64(8)),
			Entry("unknown", uint16(0x0123), uint64(1)),
		)

		It("should charge key polls at the key latency", func() {
			Expect(table.GetLatency(nil)).To(Equal(uint64(6)))
		})
	})

	Describe("Instruction Type Detection", func() {
		It("should detect memory operations", func() {
			Expect(table.IsMemoryOp(decoder.Decode(0xF155))).To(BeTrue())
			Expect(table.IsMemoryOp(decoder.Decode(0xF165))).To(BeTrue())
			Expect(table.IsMemoryOp(decoder.Decode(0xD011))).To(BeTrue())
			Expect(table.IsMemoryOp(decoder.Decode(0xA123))).To(BeFalse())
			Expect(table.IsMemoryOp(nil)).To(BeFalse())
		})

		It("should detect branch operations", func() {
			Expect(table.IsBranchOp(decoder.Decode(0x1200))).To(BeTrue())
			Expect(table.IsBranchOp(decoder.Decode(0x4100))).To(BeTrue())
			Expect(table.IsBranchOp(decoder.Decode(0x6100))).To(BeFalse())
			Expect(table.IsBranchOp(nil)).To(BeFalse())
		})
	})
})

var _ = Describe("TimingConfig", func() {
	Describe("Default Config", func() {
		It("should create valid default config", func() {
			config := latency.DefaultTimingConfig()
			Expect(config.Validate()).To(Succeed())
		})

		It("should derive periods from the rates", func() {
			config := latency.DefaultTimingConfig()
			config.ClockHz = 1000
			config.TimerHz = 50
			Expect(config.CyclePeriod()).To(Equal(time.Millisecond))
			Expect(config.TimerPeriod()).To(Equal(20 * time.Millisecond))
		})
	})

	Describe("Validation", func() {
		DescribeTable("should reject zero values",
			func(mutate func(c *latency.TimingConfig)) {
				config := latency.DefaultTimingConfig()
				mutate(config)
				Expect(config.Validate()).To(HaveOccurred())
			},
			Entry("clock", func(c *latency.TimingConfig) { c.ClockHz = 0 }),
			Entry("timer", func(c *latency.TimingConfig) { c.TimerHz = 0 }),
			Entry("clock above 1 GHz", func(c *latency.TimingConfig) { c.ClockHz = latency.MaxRateHz + 1 }),
			Entry("timer above 1 GHz", func(c *latency.TimingConfig) { c.TimerHz = latency.MaxRateHz + 1 }),
			Entry("cache block size", func(c *latency.TimingConfig) { c.DecodeCacheBlockSize = 0 }),
			Entry("alu", func(c *latency.TimingConfig) { c.ALULatency = 0 }),
			Entry("branch", func(c *latency.TimingConfig) { c.BranchLatency = 0 }),
			Entry("memory", func(c *latency.TimingConfig) { c.MemoryLatency = 0 }),
			Entry("draw", func(c *latency.TimingConfig) { c.DrawLatency = 0 }),
			Entry("key", func(c *latency.TimingConfig) { c.KeyLatency = 0 }),
			Entry("timer latency", func(c *latency.TimingConfig) { c.TimerLatency = 0 }),
			Entry("random", func(c *latency.TimingConfig) { c.RandomLatency = 0 }),
		)

		It("should reject a broken decode cache geometry", func() {
			config := latency.DefaultTimingConfig()
			config.DecodeCacheWays = 3
			Expect(config.Validate()).To(HaveOccurred())
		})

		It("should accept a 1 GHz clock", func() {
			config := latency.DefaultTimingConfig()
			config.ClockHz = latency.MaxRateHz
			Expect(config.Validate()).To(Succeed())
			Expect(config.CyclePeriod()).To(Equal(time.Nanosecond))
		})

		It("should ignore the geometry when the cache is off", func() {
			config := latency.DefaultTimingConfig()
			config.DecodeCache = false
			config.DecodeCacheWays = 0
			Expect(config.Validate()).To(Succeed())
		})
	})

	Describe("Clone", func() {
		It("should create independent copy", func() {
			original := latency.DefaultTimingConfig()
			clone := original.Clone()

			clone.ALULatency = 100

			Expect(original.ALULatency).To(Equal(uint64(1)))
			Expect(clone.ALULatency).To(Equal(uint64(100)))
		})
	})

	Describe("File Operations", func() {
		var tempDir string

		BeforeEach(func() {
			var err error
			tempDir, err = os.MkdirTemp("", "latency-test")
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			_ = os.RemoveAll(tempDir)
		})

		It("should save and load config", func() {
			original := latency.DefaultTimingConfig()
			original.ClockHz = 1000
			original.DrawLatency = 10
			original.HaltOnUnknownOpcode = false

			path := filepath.Join(tempDir, "timing.json")
			Expect(original.SaveConfig(path)).To(Succeed())

			loaded, err := latency.LoadConfig(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(Equal(original))
		})

		It("should keep defaults for missing fields", func() {
			path := filepath.Join(tempDir, "partial.json")
			Expect(os.WriteFile(path, []byte(`{"clock_hz": 500}`), 0644)).To(Succeed())

			loaded, err := latency.LoadConfig(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.ClockHz).To(Equal(uint64(500)))
			Expect(loaded.TimerHz).To(Equal(uint64(60)))
			Expect(loaded.DecodeCache).To(BeTrue())
		})

		It("should return error for non-existent file", func() {
			_, err := latency.LoadConfig("/nonexistent/path/timing.json")
			Expect(err).To(HaveOccurred())
		})

		It("should return error for invalid JSON", func() {
			path := filepath.Join(tempDir, "invalid.json")
			err := os.WriteFile(path, []byte("not valid json"), 0644)
			Expect(err).NotTo(HaveOccurred())

			_, err = latency.LoadConfig(path)
			Expect(err).To(HaveOccurred())
		})
	})
})

package emu_test

import (
	"errors"

	"github.com/google/go-cmp/cmp"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/c8sim/emu"
	"github.com/sarchlab/c8sim/timing/cache"
)

var _ = Describe("Machine", func() {
	var (
		m       *emu.Machine
		regFile *emu.RegFile
	)

	load := func(words ...uint16) {
		Expect(m.Load(program(words...))).To(Succeed())
	}

	step := func() emu.StepResult {
		result := m.Step()
		Expect(result.Err).NotTo(HaveOccurred())
		return result
	}

	BeforeEach(func() {
		m = emu.NewMachine(emu.WithRandomSource(func() uint8 { return 0xA5 }))
		regFile = m.RegFile()
	})

	Describe("NewMachine", func() {
		It("should start at the program area", func() {
			Expect(regFile.PC).To(Equal(uint16(emu.ProgramStart)))
			Expect(regFile.I).To(BeZero())
			Expect(m.Stack().Pointer()).To(BeZero())
			Expect(m.State()).To(Equal(emu.StateRunning))
		})

		It("should preload the font set", func() {
			data, err := m.Memory().ReadRange(emu.FontStart, len(emu.FontSet))
			Expect(err).NotTo(HaveOccurred())
			Expect(data).To(Equal(emu.FontSet[:]))
		})

		It("should start with a blank, clean display", func() {
			Expect(m.Framebuffer()).To(Equal(emu.Frame{}))
			Expect(m.ConsumeRedraw()).To(BeFalse())
		})
	})

	Describe("Load", func() {
		It("should copy the image to 0x200", func() {
			rom := []byte{0x12, 0x34, 0x56, 0x78, 0x9A}
			Expect(m.Load(rom)).To(Succeed())

			for k, b := range rom {
				v, err := m.Memory().Read8(uint16(emu.ProgramStart + k))
				Expect(err).NotTo(HaveOccurred())
				Expect(v).To(Equal(b))
			}
		})

		It("should leave the font area intact", func() {
			Expect(m.Load(make([]byte, 100))).To(Succeed())

			data, _ := m.Memory().ReadRange(emu.FontStart, len(emu.FontSet))
			Expect(data).To(Equal(emu.FontSet[:]))
		})

		It("should accept an image filling all program space", func() {
			rom := make([]byte, emu.MaxProgramSize)
			rom[len(rom)-1] = 0xEE
			Expect(m.Load(rom)).To(Succeed())

			v, _ := m.Memory().Read8(emu.MaxAddress)
			Expect(v).To(Equal(byte(0xEE)))
		})

		It("should reject an image one byte too large", func() {
			err := m.Load(make([]byte, 3585))
			Expect(errors.Is(err, emu.ErrRomTooLarge)).To(BeTrue())

			// Still usable
			Expect(m.Load(program(0x6001))).To(Succeed())
			step()
			Expect(regFile.V[0]).To(Equal(uint8(1)))
		})

		It("should not touch registers, stack or display", func() {
			load(0x2300)
			step()
			regFile.V[3] = 7
			m.Display().Clear()

			load(0x00E0)

			Expect(regFile.PC).To(Equal(uint16(0x300)))
			Expect(regFile.V[3]).To(Equal(uint8(7)))
			Expect(m.Stack().Pointer()).To(Equal(1))
			Expect(m.Display().Dirty()).To(BeTrue())
		})
	})

	Describe("Step", func() {
		Context("flow instructions", func() {
			It("should jump without advancing", func() {
				load(0x1250)
				result := step()
				Expect(regFile.PC).To(Equal(uint16(0x250)))
				Expect(result.Inst.Word).To(Equal(uint16(0x1250)))
			})

			It("should return to the instruction after CALL", func() {
				load(0x2300)
				Expect(m.Memory().WriteRange(0x300, program(0x00EE))).To(Succeed())

				step()
				Expect(regFile.PC).To(Equal(uint16(0x300)))
				Expect(m.Stack().Pointer()).To(Equal(1))
				Expect(m.Stack().Frames()).To(Equal([]uint16{0x202}))

				step()
				Expect(regFile.PC).To(Equal(uint16(0x202)))
				Expect(m.Stack().Pointer()).To(BeZero())
			})

			It("should jump relative to V0", func() {
				load(0x6010, 0xB300)
				step()
				step()
				Expect(regFile.PC).To(Equal(uint16(0x310)))
			})

			It("should overflow on the 17th nested CALL", func() {
				// CALL 0x200 recursively
				load(0x2200)
				for i := 0; i < emu.StackSize; i++ {
					step()
				}
				Expect(m.Stack().Pointer()).To(Equal(emu.StackSize))

				result := m.Step()
				Expect(errors.Is(result.Err, emu.ErrStackOverflow)).To(BeTrue())
				Expect(m.Stack().Pointer()).To(Equal(emu.StackSize))
				Expect(regFile.PC).To(Equal(uint16(0x200)))
			})

			It("should underflow on RET with an empty stack", func() {
				load(0x00EE)
				result := m.Step()
				Expect(errors.Is(result.Err, emu.ErrStackUnderflow)).To(BeTrue())
				Expect(m.Stack().Pointer()).To(BeZero())
				Expect(regFile.PC).To(Equal(uint16(0x200)))
			})
		})

		Context("skip instructions", func() {
			DescribeTable("should advance by 4 when taken and 2 otherwise",
				func(setup []uint16, skip uint16, wantPC uint16) {
					load(append(setup, skip)...)
					for range setup {
						step()
					}
					start := regFile.PC
					step()
					Expect(regFile.PC).To(Equal(start + wantPC))
				},
				Entry("SE Vx,nn taken", []uint16{0x6142}, uint16(0x3142), uint16(4)),
				Entry("SE Vx,nn not taken", []uint16{0x6142}, uint16(0x3143), uint16(2)),
				Entry("SNE Vx,nn taken", []uint16{0x6142}, uint16(0x4143), uint16(4)),
				Entry("SNE Vx,nn not taken", []uint16{0x6142}, uint16(0x4142), uint16(2)),
				Entry("SE Vx,Vy taken", []uint16{0x6105, 0x6205}, uint16(0x5120), uint16(4)),
				Entry("SE Vx,Vy not taken", []uint16{0x6105, 0x6206}, uint16(0x5120), uint16(2)),
				Entry("SNE Vx,Vy taken", []uint16{0x6105, 0x6206}, uint16(0x9120), uint16(4)),
				Entry("SNE Vx,Vy not taken", []uint16{0x6105, 0x6205}, uint16(0x9120), uint16(2)),
			)

			It("should skip on a pressed key", func() {
				load(0x6A07, 0xEA9E)
				Expect(m.SetKey(0x7, true)).To(Succeed())
				step()
				step()
				Expect(regFile.PC).To(Equal(uint16(0x206)))
			})

			It("should not skip on a released key", func() {
				load(0x6A07, 0xEA9E)
				step()
				step()
				Expect(regFile.PC).To(Equal(uint16(0x204)))
			})

			It("should skip on a released key for SKNP", func() {
				load(0x6A07, 0xEAA1)
				step()
				step()
				Expect(regFile.PC).To(Equal(uint16(0x206)))
			})

			It("should treat key codes above 0xF as released", func() {
				load(0x6A20, 0xEAA1)
				Expect(m.SetKey(0x0, true)).To(Succeed())
				step()
				step()
				Expect(regFile.PC).To(Equal(uint16(0x206)))
			})
		})

		Context("ALU instructions", func() {
			It("should add with carry", func() {
				load(0x60FF, 0x6101, 0x8014)
				Expect(m.Run(3)).To(Succeed())
				Expect(regFile.V[0]).To(Equal(uint8(0x00)))
				Expect(regFile.V[0xF]).To(Equal(uint8(1)))
			})

			It("should subtract with borrow", func() {
				load(0x6001, 0x6102, 0x8015)
				Expect(m.Run(3)).To(Succeed())
				Expect(regFile.V[0]).To(Equal(uint8(0xFF)))
				Expect(regFile.V[0xF]).To(Equal(uint8(0)))
			})

			It("should shift right", func() {
				load(0x6003, 0x8006)
				Expect(m.Run(2)).To(Succeed())
				Expect(regFile.V[0]).To(Equal(uint8(0x01)))
				Expect(regFile.V[0xF]).To(Equal(uint8(1)))
			})

			It("should leave VF alone on ADD Vx,nn overflow", func() {
				load(0x6F05, 0x60FF, 0x7002)
				Expect(m.Run(3)).To(Succeed())
				Expect(regFile.V[0]).To(Equal(uint8(0x01)))
				Expect(regFile.V[0xF]).To(Equal(uint8(0x05)))
			})

			It("should mask the random byte", func() {
				load(0xC30F)
				step()
				Expect(regFile.V[3]).To(Equal(uint8(0x05)))
			})

			It("should advance PC by 2", func() {
				load(0x6001, 0x8104)
				Expect(m.Run(2)).To(Succeed())
				Expect(regFile.PC).To(Equal(uint16(0x204)))
			})
		})

		Context("index and memory instructions", func() {
			It("should load I", func() {
				load(0xA123)
				step()
				Expect(regFile.I).To(Equal(uint16(0x123)))
			})

			It("should add to I modulo 65536 without touching VF", func() {
				load(0x6410, 0xF41E)
				regFile.I = 0xFFF8
				regFile.V[0xF] = 9
				Expect(m.Run(2)).To(Succeed())
				Expect(regFile.I).To(Equal(uint16(0x0008)))
				Expect(regFile.V[0xF]).To(Equal(uint8(9)))
			})

			It("should point I at a font glyph", func() {
				load(0x650A, 0xF529)
				Expect(m.Run(2)).To(Succeed())
				Expect(regFile.I).To(Equal(uint16(emu.FontStart + 0xA*emu.GlyphSize)))
			})

			It("should store BCD digits", func() {
				load(0x66EA, 0xA300, 0xF633)
				Expect(m.Run(3)).To(Succeed())

				digits, _ := m.Memory().ReadRange(0x300, 3)
				Expect(digits).To(Equal([]byte{2, 3, 4}))
				Expect(regFile.I).To(Equal(uint16(0x300)))
			})

			It("should store and reload V0..Vx", func() {
				load(0x6011, 0x6122, 0x6233, 0xA400, 0xF255, 0x6000, 0x6100, 0x6200, 0xF265)
				Expect(m.Run(9)).To(Succeed())

				stored, _ := m.Memory().ReadRange(0x400, 4)
				Expect(stored).To(Equal([]byte{0x11, 0x22, 0x33, 0x00}))
				Expect(regFile.V[:3]).To(Equal([]uint8{0x11, 0x22, 0x33}))
				Expect(regFile.I).To(Equal(uint16(0x400)))
			})

			It("should halt when a store runs past memory", func() {
				load(0xAFFE, 0xF255)
				step()

				result := m.Step()
				Expect(errors.Is(result.Err, emu.ErrOutOfBounds)).To(BeTrue())
				Expect(m.State()).To(Equal(emu.StateHalted))

				v, _ := m.Memory().Read8(0xFFE)
				Expect(v).To(BeZero())
			})
		})

		Context("display instructions", func() {
			It("should clear the display and mark it dirty", func() {
				load(0xA000, 0xD005, 0x00E0)
				Expect(m.Run(2)).To(Succeed())
				m.ConsumeRedraw()

				step()
				Expect(m.Framebuffer()).To(Equal(emu.Frame{}))
				Expect(m.ConsumeRedraw()).To(BeTrue())
				Expect(regFile.PC).To(Equal(uint16(0x206)))
			})

			It("should detect collisions on redraw", func() {
				load(0xA300, 0xD011, 0xD011)
				Expect(m.Memory().Write8(0x300, 0xFF)).To(Succeed())

				Expect(m.Run(2)).To(Succeed())
				Expect(regFile.V[0xF]).To(Equal(uint8(0)))
				Expect(m.Display().LitPixels()).To(Equal(8))

				step()
				Expect(regFile.V[0xF]).To(Equal(uint8(1)))
				Expect(m.Framebuffer()).To(Equal(emu.Frame{}))
				Expect(regFile.I).To(Equal(uint16(0x300)))
				Expect(regFile.PC).To(Equal(uint16(0x206)))
			})

			It("should draw a font glyph", func() {
				load(0x6000, 0xF029, 0x6104, 0x6202, 0xD125)
				Expect(m.Run(5)).To(Succeed())

				var want emu.Frame
				for row, bits := range emu.FontSet[:emu.GlyphSize] {
					for col := 0; col < 8; col++ {
						if bits&(0x80>>col) != 0 {
							want[2+row][4+col] = 1
						}
					}
				}
				Expect(cmp.Diff(want, m.Framebuffer())).To(BeEmpty())
			})

			It("should wrap sprites around the edges", func() {
				load(0x603F, 0x611F, 0xA300, 0xD012)
				Expect(m.Memory().WriteRange(0x300, []byte{0xC0, 0xC0})).To(Succeed())
				Expect(m.Run(4)).To(Succeed())

				Expect(m.Display().Pixel(63, 31)).To(Equal(uint8(1)))
				Expect(m.Display().Pixel(0, 31)).To(Equal(uint8(1)))
				Expect(m.Display().Pixel(63, 0)).To(Equal(uint8(1)))
				Expect(m.Display().Pixel(0, 0)).To(Equal(uint8(1)))
				Expect(m.Display().LitPixels()).To(Equal(4))
			})

			It("should halt when sprite rows run past memory", func() {
				load(0xAFFE, 0xD005)
				step()
				result := m.Step()
				Expect(errors.Is(result.Err, emu.ErrOutOfBounds)).To(BeTrue())
			})
		})

		Context("timer instructions", func() {
			It("should move values between registers and timers", func() {
				load(0x6030, 0xF015, 0xF018, 0xF107)
				Expect(m.Run(4)).To(Succeed())
				Expect(m.Timers().Delay).To(Equal(uint8(0x30)))
				Expect(m.Timers().Sound).To(Equal(uint8(0x30)))
				Expect(regFile.V[1]).To(Equal(uint8(0x30)))
			})

			It("should not advance timers on step", func() {
				load(0x6030, 0xF015, 0x1204)
				Expect(m.Run(10)).To(Succeed())
				Expect(m.Timers().Delay).To(Equal(uint8(0x30)))

				m.TickTimers()
				Expect(m.Timers().Delay).To(Equal(uint8(0x2F)))
			})
		})

		Context("key wait", func() {
			It("should poll without changing state until a key is pressed", func() {
				load(0xF30A)
				regFile.V[3] = 0x55

				result := step()
				Expect(result.AwaitingKey).To(BeTrue())
				Expect(m.State()).To(Equal(emu.StateAwaitingKey))
				Expect(m.WaitRegister()).To(Equal(uint8(3)))

				for i := 0; i < 5; i++ {
					result = step()
					Expect(result.Inst).To(BeNil())
					Expect(result.AwaitingKey).To(BeTrue())
					Expect(regFile.PC).To(Equal(uint16(0x200)))
					Expect(regFile.V[3]).To(Equal(uint8(0x55)))
				}

				Expect(m.SetKey(0xB, true)).To(Succeed())
				result = step()
				Expect(result.AwaitingKey).To(BeFalse())
				Expect(regFile.PC).To(Equal(uint16(0x202)))
				Expect(regFile.V[3]).To(Equal(uint8(0xB)))
				Expect(m.State()).To(Equal(emu.StateRunning))
			})

			It("should pick the lowest pressed key", func() {
				load(0xF00A)
				step()
				Expect(m.SetKey(0x9, true)).To(Succeed())
				Expect(m.SetKey(0x4, true)).To(Succeed())
				step()
				Expect(regFile.V[0]).To(Equal(uint8(0x4)))
			})

			It("should keep timers running while waiting", func() {
				load(0xF00A)
				m.Timers().Delay = 2
				step()
				m.TickTimers()
				step()
				Expect(m.Timers().Delay).To(Equal(uint8(1)))
			})
		})

		Context("unknown instructions", func() {
			It("should report the opcode and leave PC", func() {
				load(0x0123)
				result := m.Step()

				var unknown *emu.UnknownOpcodeError
				Expect(errors.As(result.Err, &unknown)).To(BeTrue())
				Expect(unknown.Opcode).To(Equal(uint16(0x0123)))
				Expect(unknown.PC).To(Equal(uint16(0x200)))
				Expect(errors.Is(result.Err, emu.ErrUnknownOpcode)).To(BeTrue())
				Expect(emu.IsFatal(result.Err)).To(BeFalse())
				Expect(regFile.PC).To(Equal(uint16(0x200)))
				Expect(m.State()).To(Equal(emu.StateRunning))
			})

			It("should continue after Skip", func() {
				load(0x0123, 0x6007)
				Expect(m.Step().Err).To(HaveOccurred())
				Expect(m.Skip()).To(Succeed())
				step()
				Expect(regFile.V[0]).To(Equal(uint8(7)))
				Expect(m.InstructionCount()).To(Equal(uint64(1)))
			})
		})

		Context("fetch", func() {
			It("should halt when PC+1 is past memory", func() {
				load(0x1FFF)
				step()
				result := m.Step()
				Expect(errors.Is(result.Err, emu.ErrOutOfBounds)).To(BeTrue())
				Expect(result.Inst).To(BeNil())
			})

			It("should fetch the last full word", func() {
				load(0x1FFE)
				Expect(m.Memory().WriteRange(0xFFE, program(0x1FFE))).To(Succeed())
				Expect(m.Run(3)).To(Succeed())
				Expect(regFile.PC).To(Equal(uint16(0xFFE)))
			})
		})
	})

	Describe("halting", func() {
		It("should latch fatal errors until Reset", func() {
			load(0x00EE)
			first := m.Step()
			Expect(emu.IsFatal(first.Err)).To(BeTrue())

			again := m.Step()
			Expect(errors.Is(again.Err, emu.ErrHalted)).To(BeTrue())
			Expect(errors.Is(again.Err, emu.ErrStackUnderflow)).To(BeTrue())
			Expect(errors.Is(m.Skip(), emu.ErrHalted)).To(BeTrue())
			Expect(m.Fault()).To(MatchError(emu.ErrStackUnderflow))

			m.Reset()
			Expect(m.State()).To(Equal(emu.StateRunning))
			Expect(m.Fault()).To(BeNil())
		})
	})

	Describe("Reset", func() {
		It("should restore the power-on state", func() {
			load(0x6042, 0xA300, 0xD005, 0x2400)
			Expect(m.Run(4)).To(Succeed())
			Expect(m.SetKey(1, true)).To(Succeed())
			m.Timers().Sound = 9

			m.Reset()

			Expect(*regFile).To(Equal(emu.RegFile{PC: emu.ProgramStart}))
			Expect(m.Stack().Pointer()).To(BeZero())
			Expect(m.Framebuffer()).To(Equal(emu.Frame{}))
			Expect(m.Keypad().IsPressed(1)).To(BeFalse())
			Expect(*m.Timers()).To(Equal(emu.Timers{}))
			Expect(m.InstructionCount()).To(BeZero())

			word, _ := m.Memory().Read16(emu.ProgramStart)
			Expect(word).To(BeZero())
			data, _ := m.Memory().ReadRange(emu.FontStart, len(emu.FontSet))
			Expect(data).To(Equal(emu.FontSet[:]))
		})
	})

	Describe("options", func() {
		It("should stop at the instruction limit", func() {
			m = emu.NewMachine(emu.WithMaxInstructions(3))
			Expect(m.Load(program(0x1200))).To(Succeed())

			err := m.Run(10)
			Expect(errors.Is(err, emu.ErrMaxInstructions)).To(BeTrue())
			Expect(m.InstructionCount()).To(Equal(uint64(3)))
		})

		Context("with a decode cache", func() {
			var c *cache.Cache

			BeforeEach(func() {
				c = cache.New(cache.DefaultConfig())
				m = emu.NewMachine(emu.WithDecodeCache(c))
				regFile = m.RegFile()
			})

			It("should hit on loops", func() {
				load(0x7001, 0x1200)
				Expect(m.Run(10)).To(Succeed())
				Expect(regFile.V[0]).To(Equal(uint8(5)))
				Expect(c.Stats().Misses).To(Equal(uint64(2)))
				Expect(c.Stats().Hits).To(Equal(uint64(8)))
			})

			It("should see self-modifying stores", func() {
				load(
					0x6070, // 0x200: LD V0,0x70
					0x6105, // 0x202: LD V1,0x05
					0x2210, // 0x204: CALL 0x210
					0xA210, // 0x206: LD I,0x210
					0xF155, // 0x208: LD [I],V1
					0x2210, // 0x20A: CALL 0x210
					0x120C, // 0x20C: JP 0x20C
					0x0000,
					0x6500, // 0x210: LD V5,0x00, rewritten to ADD V0,5
					0x00EE, // 0x212: RET
				)
				Expect(m.Run(10)).To(Succeed())

				Expect(regFile.V[0]).To(Equal(uint8(0x75)))
				Expect(regFile.PC).To(Equal(uint16(0x20C)))
				Expect(c.Stats().Invalidations).To(BeNumerically(">=", 1))
			})

			It("should drop stale entries on Load", func() {
				load(0x6001)
				step()
				regFile.PC = emu.ProgramStart

				load(0x6002)
				step()
				Expect(regFile.V[0]).To(Equal(uint8(2)))
			})

			It("should drop stale entries on Reset", func() {
				load(0x6001)
				step()
				m.Reset()
				Expect(c.Stats()).To(Equal(cache.Statistics{}))

				load(0x6002)
				step()
				Expect(regFile.V[0]).To(Equal(uint8(2)))
			})
		})
	})
})

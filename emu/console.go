// Package emu assembles the NES hardware into a console and exposes its
// control surface: cartridge loading, frame stepping, reset, video and audio
// output, and save states.
package emu

import (
	"errors"
	"io"

	"nescore/emu/log"
	"nescore/hw"
	"nescore/hw/apu"
	"nescore/hw/hwdefs"
	"nescore/hw/input"
	"nescore/hw/mappers"
	"nescore/ines"
)

var errNoCartridge = errors.New("no cartridge inserted")

// A Console is a NES with its cartridge slot. A Console is not safe for
// concurrent use, but distinct consoles share no state.
type Console struct {
	CPU *hw.CPU
	PPU *hw.PPU
	APU *apu.APU

	rom    *ines.Rom
	mapper mappers.Mapper

	// Frame deadline, in PPU cycles since power up. Each RunFrame moves it
	// by exactly one frame so that the fractional CPU cycles per frame
	// never accumulate.
	frameTarget int64
}

// New creates a console at power-up state, without cartridge.
func New(cfg Config) *Console {
	ppu := hw.NewPPU()
	ppu.NoSpriteLimit = cfg.Video.NoSpriteLimit

	cpu := hw.NewCPU(ppu)
	cpu.APU = apu.New(cpu, apu.NewMixer(cfg.Audio.SampleRate, cfg.Audio.Mute))
	cpu.InitBus()

	c := &Console{
		CPU: cpu,
		PPU: ppu,
		APU: cpu.APU,
	}
	if cfg.TraceOut != nil {
		c.SetTraceOutput(cfg.TraceOut)
	}
	c.PowerCycle()
	return c
}

// LoadROM parses an iNES image, inserts the cartridge and power cycles the
// console. On error the console is left untouched.
func (c *Console) LoadROM(data []byte) error {
	rom, err := ines.Decode(data)
	if err != nil {
		return wrapErr(KindCartridge, "load rom", err)
	}
	return c.Insert(rom)
}

// Insert inserts an already parsed cartridge and power cycles the console.
// On error the console is left untouched.
func (c *Console) Insert(rom *ines.Rom) error {
	m, err := mappers.New(rom, c.CPU)
	if err != nil {
		return wrapErr(KindCartridge, "load rom", err)
	}

	c.rom = rom
	c.mapper = m
	c.CPU.MapCartridge(m)
	c.PPU.SetMapper(m)

	log.ModEmu.InfoZ("cartridge inserted").
		Stringer("mapper", m.Desc()).
		Stringer("mirroring", rom.Mirroring()).
		End()

	c.PowerCycle()
	return nil
}

// Cartridge returns the inserted rom, or nil.
func (c *Console) Cartridge() *ines.Rom {
	return c.rom
}

// Reset presses the reset button. Memory and cartridge are kept.
func (c *Console) Reset() {
	c.reset(hwdefs.SoftReset)
}

// PowerCycle switches the console off and on, clearing RAM, VRAM, OAM and
// palettes.
func (c *Console) PowerCycle() {
	c.reset(hwdefs.HardReset)
	c.frameTarget = 0
}

func (c *Console) reset(soft bool) {
	c.CPU.Reset(soft)
	c.PPU.Reset(soft)
	c.APU.Reset(soft)
	c.CPU.Ports.Reset()

	log.ModEmu.InfoZ("console reset").Bool("soft", soft).End()
}

// Step executes one CPU instruction, or enters an interrupt handler, and runs
// the PPU and APU for the same time. It returns the number of CPU cycles
// elapsed, stall cycles included. Without cartridge it does nothing.
func (c *Console) Step() int {
	if c.mapper == nil {
		return 0
	}
	n := c.CPU.Step()
	for range 3 * n {
		c.PPU.Tick()
	}
	for range n {
		c.APU.Tick()
	}
	return n
}

// RunFrame runs the console for one frame of 29780⅔ CPU cycles, with in as
// the controllers state. Cycles overshooting the frame are deducted from the
// next one. Without cartridge it does nothing.
func (c *Console) RunFrame(in input.State) {
	if c.mapper == nil {
		return
	}
	c.CPU.Ports.SetButtons(0, in[0])
	c.CPU.Ports.SetButtons(1, in[1])

	c.frameTarget += hwdefs.PPUCyclesPerFrame
	for 3*c.CPU.Cycles < c.frameTarget {
		c.Step()
	}
}

// Framebuffer returns a copy of the last complete frame, as 256x240 RGBA8
// pixels.
func (c *Console) Framebuffer() []byte {
	return append([]byte(nil), c.PPU.Framebuffer()...)
}

// AudioSamples drains the audio samples produced so far.
func (c *Console) AudioSamples() []int16 {
	return c.APU.Mixer().Samples()
}

// SampleRate returns the audio sample rate, in Hz.
func (c *Console) SampleRate() int {
	return c.APU.Mixer().SampleRate()
}

// FrameCount returns the number of frames completed since power up.
func (c *Console) FrameCount() uint32 {
	return c.PPU.FrameCount
}

// Cycles returns the number of CPU cycles elapsed since power up.
func (c *Console) Cycles() int64 {
	return c.CPU.Cycles
}

// SetTraceOutput enables CPU execution tracing to w, or disables it if w is
// nil.
func (c *Console) SetTraceOutput(w io.Writer) {
	c.CPU.SetTraceOutput(w)
}

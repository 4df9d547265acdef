package hw

import (
	"testing"

	"nescore/hw/apu"
	"nescore/hw/mappers"
	"nescore/ines"
)

// Vectors of the test cartridges.
const (
	testReset = 0x8000
	testNMI   = 0x9000
	testIRQ   = 0xA000
)

// newTestSystem builds a CPU, PPU and APU with an NROM cartridge and resets
// them.
func newTestSystem(tb testing.TB, prg, chr []byte, mirroring ines.NTMirroring) *CPU {
	tb.Helper()

	ppu := NewPPU()
	cpu := NewCPU(ppu)
	cpu.APU = apu.New(cpu, apu.NewMixer(apu.DefaultSampleRate, true))
	cpu.InitBus()

	m, err := mappers.New(ines.New(prg, chr, 0, mirroring), cpu)
	if err != nil {
		tb.Fatal(err)
	}
	cpu.MapCartridge(m)
	ppu.SetMapper(m)

	ppu.Reset(false)
	cpu.APU.Reset(false)
	cpu.Reset(false)
	return cpu
}

// newTestCPU returns a system running prog from $8000. The NMI handler starts
// with a NOP, the IRQ handler is a single RTI.
func newTestCPU(tb testing.TB, prog ...byte) *CPU {
	tb.Helper()

	prg := make([]byte, 0x8000)
	copy(prg, prog)
	prg[testNMI-0x8000] = 0xEA // NOP
	prg[testIRQ-0x8000] = 0x40 // RTI
	putVector(prg, NMIVector, testNMI)
	putVector(prg, ResetVector, testReset)
	putVector(prg, IRQVector, testIRQ)
	return newTestSystem(tb, prg, make([]byte, 0x2000), ines.VertMirroring)
}

func putVector(prg []byte, vector, addr uint16) {
	prg[vector-0x8000] = uint8(addr)
	prg[vector-0x8000+1] = uint8(addr >> 8)
}

// tickPPU advances the PPU n dots.
func tickPPU(p *PPU, n int) {
	for range n {
		p.Tick()
	}
}

// tickTo advances the PPU until it reaches (scanline, dot).
func tickTo(p *PPU, scanline int, dot uint32) {
	for p.Scanline != scanline || p.Cycle != dot {
		p.Tick()
	}
}

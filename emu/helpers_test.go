package emu

import (
	"testing"

	"nescore/hw/input"
	"nescore/ines"
)

// Vectors of the test cartridges.
const (
	testReset = 0x8000
	testNMI   = 0x9000
	testIRQ   = 0xA000
)

// cart describes a test cartridge: a 32KB PRG with the program at $8000 and
// an optional NMI handler at $9000.
type cart struct {
	prog   []byte
	nmi    []byte
	chrRAM bool
}

func (c cart) rom() *ines.Rom {
	prg := make([]byte, 0x8000)
	copy(prg, c.prog)
	copy(prg[testNMI-0x8000:], c.nmi)
	prg[testIRQ-0x8000] = 0x40 // RTI

	putVector(prg, 0xFFFA, testNMI)
	putVector(prg, 0xFFFC, testReset)
	putVector(prg, 0xFFFE, testIRQ)

	var chr []byte
	if !c.chrRAM {
		chr = make([]byte, 0x2000)
		for i := range chr {
			chr[i] = byte(i * 13)
		}
	}
	return ines.New(prg, chr, 0, ines.VertMirroring)
}

func (c cart) bytes() []byte {
	return c.rom().Bytes()
}

func putVector(prg []byte, vector, addr uint16) {
	prg[vector-0x8000] = uint8(addr)
	prg[vector-0x8000+1] = uint8(addr >> 8)
}

// newTestConsole returns a console with the cartridge inserted.
func newTestConsole(tb testing.TB, c cart) *Console {
	tb.Helper()

	cfg := DefaultConfig()
	nes := New(cfg)
	if err := nes.LoadROM(c.bytes()); err != nil {
		tb.Fatalf("LoadROM: %v", err)
	}
	return nes
}

// loop is an endless loop at $8000.
var loop = []byte{0x4C, 0x00, 0x80} // JMP $8000

// demo enables background rendering, NMIs and the first pulse channel. The
// NMI handler changes the pulse period and the background color every frame.
var demo = cart{
	prog: []byte{
		0xA9, 0x3F, // LDA #$3F
		0x8D, 0x06, 0x20, // STA $2006
		0xA9, 0x00, // LDA #$00
		0x8D, 0x06, 0x20, // STA $2006
		0xA9, 0x21, // LDA #$21
		0x8D, 0x07, 0x20, // STA $2007
		0xA9, 0x01, // LDA #$01
		0x8D, 0x15, 0x40, // STA $4015
		0xA9, 0xBF, // LDA #$BF
		0x8D, 0x00, 0x40, // STA $4000
		0xA9, 0xFD, // LDA #$FD
		0x8D, 0x02, 0x40, // STA $4002
		0xA9, 0x00, // LDA #$00
		0x8D, 0x03, 0x40, // STA $4003
		0xA9, 0x1E, // LDA #$1E
		0x8D, 0x01, 0x20, // STA $2001
		0xA9, 0x80, // LDA #$80
		0x8D, 0x00, 0x20, // STA $2000
		0xE8,             // INX
		0x4C, 0x2D, 0x80, // JMP $802D
	},
	nmi: []byte{
		0xE6, 0x00, // INC $00
		0xA5, 0x00, // LDA $00
		0x8D, 0x02, 0x40, // STA $4002
		0xA9, 0x3F, // LDA #$3F
		0x8D, 0x06, 0x20, // STA $2006
		0xA9, 0x00, // LDA #$00
		0x8D, 0x06, 0x20, // STA $2006
		0xA5, 0x00, // LDA $00
		0x29, 0x3F, // AND #$3F
		0x8D, 0x07, 0x20, // STA $2007
		0xA9, 0x00, // LDA #$00
		0x8D, 0x06, 0x20, // STA $2006
		0x8D, 0x06, 0x20, // STA $2006
		0x40, // RTI
	},
}

// output is what a console produces over some frames.
type output struct {
	frames  [][]byte
	samples []int16
}

func runFrames(nes *Console, n int, in input.State) output {
	var out output
	for range n {
		nes.RunFrame(in)
		out.frames = append(out.frames, nes.Framebuffer())
		out.samples = append(out.samples, nes.AudioSamples()...)
	}
	return out
}

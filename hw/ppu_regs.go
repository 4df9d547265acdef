package hw

import (
	"nescore/emu/log"
	"nescore/hw/hwio"
)

const (
	// PPUCTRL bits
	// $2000

	// Nametable selection mask
	// (0 = $2000; 1 = $2400; 2 = $2800; 3 = $2C00)
	ntselect = 0b11

	// VRAM address increment per CPU read/write of PPUDATA
	// (0: +1 i.e. horizontal; 1: +32 i.e. vertical)
	vramIncr = 1 << 2

	// Sprite pattern table address for 8x8 sprites
	// (0: $0000; 1: $1000; ignored in 8x16 mode)
	spriteAddr = 1 << 3

	// Background pattern table address (0: $0000; 1: $1000)
	backgroundAddr = 1 << 4

	// Sprite size (0: 8x8 pixels; 1: 8x16 pixels)
	spriteSize = 1 << 5

	// Generate an NMI at the start of the
	// vertical blanking interval (0: off; 1: on)
	nmi = 1 << 7
)

const (
	// PPUMASK bits
	// $2001

	// Greyscale
	// (0: normal color, 1: produce a greyscale display)
	greyscale = 1 << 0

	// Show background in leftmost 8 pixels of screen
	leftmostBg = 1 << 1

	// Show sprites in leftmost 8 pixels of screen
	leftmostSprites = 1 << 2

	showBg      = 1 << 3
	showSprites = 1 << 4
)

const (
	// PPUSTATUS bits
	// $2002

	// Returns stale PPU bus contents.
	openbusMask = 0b11111

	// Sprite overflow. Set during sprite evaluation when more than 8
	// sprites are found on a scanline, cleared at dot 1 of the pre-render
	// line.
	spriteOverflow = 1 << 5

	// Sprite 0 Hit. Set when a nonzero pixel of sprite 0 overlaps a nonzero
	// background pixel; cleared at dot 1 of the pre-render line.
	sprite0Hit = 1 << 6

	// Vertical blank has started. Set at dot 1 of line 241, cleared after
	// reading $2002 and at dot 1 of the pre-render line.
	vblank = 1 << 7
)

// loopy is the layout of the v and t VRAM address registers:
//
//	yyy NN YYYYY XXXXX
//	||| || ||||| +++++-- coarse X scroll
//	||| || +++++-------- coarse Y scroll
//	||| ++-------------- nametable select
//	+++----------------- fine Y scroll
type loopy uint16

func (l loopy) coarsex() uint16   { return uint16(l) & 0x1F }
func (l loopy) coarsey() uint16   { return uint16(l>>5) & 0x1F }
func (l loopy) nametable() uint16 { return uint16(l>>10) & 0b11 }
func (l loopy) finey() uint16     { return uint16(l>>12) & 0b111 }

// high returns the 6 bits written by the first PPUADDR write.
func (l loopy) high() uint8 { return uint8(l>>8) & 0x3F }
func (l loopy) low() uint8  { return uint8(l) }
func (l loopy) val() uint16 { return uint16(l) & 0x7FFF }

func (l *loopy) setCoarsex(x uint8) {
	*l = *l&^0x1F | loopy(x&0x1F)
}

func (l *loopy) setCoarsey(y uint8) {
	*l = *l&^(0x1F<<5) | loopy(y&0x1F)<<5
}

func (l *loopy) setNametable(nt uint8) {
	*l = *l&^(0b11<<10) | loopy(nt&0b11)<<10
}

func (l *loopy) setFiney(y uint8) {
	*l = *l&^(0b111<<12) | loopy(y&0b111)<<12
}

// setHigh sets bits 8-13 and clears bit 14.
func (l *loopy) setHigh(val uint8) {
	*l = *l&^0x7F00 | loopy(val&0x3F)<<8
}

func (l *loopy) setLow(val uint8) {
	*l = *l&^0xFF | loopy(val)
}

// incx increments coarse X, switching horizontal nametable on wrap.
func (l *loopy) incx() {
	if l.coarsex() == 31 {
		*l &^= 0x1F
		*l ^= 0x0400
		return
	}
	*l++
}

// incy increments fine Y, overflowing into coarse Y which switches vertical
// nametable at row 29. Rows 30 and 31 (attribute data) wrap without
// switching.
func (l *loopy) incy() {
	if l.finey() < 7 {
		*l += 0x1000
		return
	}
	*l &^= 0x7000
	y := l.coarsey()
	switch y {
	case 29:
		y = 0
		*l ^= 0x0800
	case 31:
		y = 0
	default:
		y++
	}
	l.setCoarsey(uint8(y))
}

func (p *PPU) initRegs() {
	openBus := func(uint8) uint8 { return p.openBus }

	p.PPUCTRL = hwio.Reg8{Name: "PPUCTRL", ReadCb: openBus, PeekCb: openBus, WriteCb: p.writePPUCTRL}
	p.PPUMASK = hwio.Reg8{Name: "PPUMASK", ReadCb: openBus, PeekCb: openBus, WriteCb: p.writePPUMASK}
	p.PPUSTATUS = hwio.Reg8{
		Name:    "PPUSTATUS",
		RoMask:  0xFF,
		ReadCb:  p.readPPUSTATUS,
		PeekCb:  func(val uint8) uint8 { return val&^openbusMask | p.openBus&openbusMask },
		WriteCb: func(_, val uint8) { p.openBus = val },
	}
	p.OAMADDR = hwio.Reg8{Name: "OAMADDR", ReadCb: openBus, PeekCb: openBus, WriteCb: p.writeOAMADDR}
	p.OAMDATA = hwio.Reg8{Name: "OAMDATA", ReadCb: p.readOAMDATA, PeekCb: p.peekOAMDATA, WriteCb: p.writeOAMDATA}
	p.PPUSCROLL = hwio.Reg8{Name: "PPUSCROLL", ReadCb: openBus, PeekCb: openBus, WriteCb: p.writePPUSCROLL}
	p.PPUADDR = hwio.Reg8{Name: "PPUADDR", ReadCb: openBus, PeekCb: openBus, WriteCb: p.writePPUADDR}
	p.PPUDATA = hwio.Reg8{Name: "PPUDATA", ReadCb: p.readPPUDATA, PeekCb: func(uint8) uint8 { return p.dataBuf }, WriteCb: p.writePPUDATA}
}

// mapRegs maps the 8 PPU registers at off.
func (p *PPU) mapRegs(bus *hwio.Table, off uint16) {
	bus.MapRegs(off,
		&p.PPUCTRL, &p.PPUMASK, &p.PPUSTATUS, &p.OAMADDR,
		&p.OAMDATA, &p.PPUSCROLL, &p.PPUADDR, &p.PPUDATA)
}

// updateNMI drives the CPU NMI line, which is asserted while vblank is set
// and NMI generation is enabled. Enabling NMI during vblank thus triggers
// another one.
func (p *PPU) updateNMI() {
	if p.CPU == nil {
		return
	}
	p.CPU.SetNMI(p.PPUCTRL.Value&nmi != 0 && p.PPUSTATUS.Value&vblank != 0)
}

// PPUCTRL: $2000
func (p *PPU) writePPUCTRL(_, val uint8) {
	log.ModPPU.DebugZ("Write to PPUCTRL").Hex8("val", val).End()
	p.openBus = val
	p.vramTmp.setNametable(val & ntselect)
	p.updateNMI()
}

// PPUMASK: $2001
func (p *PPU) writePPUMASK(_, val uint8) {
	log.ModPPU.DebugZ("Write to PPUMASK").Hex8("val", val).End()
	p.openBus = val
}

// PPUSTATUS: $2002
func (p *PPU) readPPUSTATUS(val uint8) uint8 {
	ret := val&^openbusMask | p.openBus&openbusMask

	p.PPUSTATUS.Value &^= vblank
	p.writeLatch = false
	p.updateNMI()

	p.openBus = ret
	return ret
}

// OAMADDR: $2003
func (p *PPU) writeOAMADDR(_, val uint8) {
	p.openBus = val
	p.oamAddr = val
}

// OAMDATA: $2004
func (p *PPU) readOAMDATA(uint8) uint8 {
	p.openBus = p.oam[p.oamAddr]
	return p.openBus
}

func (p *PPU) peekOAMDATA(uint8) uint8 {
	return p.oam[p.oamAddr]
}

func (p *PPU) writeOAMDATA(_, val uint8) {
	p.openBus = val
	p.writeOAM(val)
}

func (p *PPU) writeOAM(val uint8) {
	p.oam[p.oamAddr] = val
	p.oamAddr++
}

// PPUSCROLL: $2005
func (p *PPU) writePPUSCROLL(_, val uint8) {
	log.ModPPU.DebugZ("Write to PPUSCROLL").Hex8("val", val).End()
	p.openBus = val

	if !p.writeLatch { // first write
		p.fineX = val & 0b111
		p.vramTmp.setCoarsex(val >> 3)
	} else { // second write
		p.vramTmp.setFiney(val)
		p.vramTmp.setCoarsey(val >> 3)
	}
	p.writeLatch = !p.writeLatch
}

// To read/write VRAM from CPU, PPUADDR is set to the address of the
// operation. It's a 16-bit register so 2 writes are necessary.
// PPUADDR: $2006
func (p *PPU) writePPUADDR(_, val uint8) {
	p.openBus = val

	if !p.writeLatch { // first write
		p.vramTmp.setHigh(val)
	} else { // second write
		p.vramTmp.setLow(val)
		p.vramAddr = p.vramTmp
	}
	p.writeLatch = !p.writeLatch
}

// PPUDATA: $2007
func (p *PPU) readPPUDATA(uint8) uint8 {
	addr := p.vramAddr.val() & 0x3FFF

	var val uint8
	if addr < 0x3F00 {
		// Reading VRAM is too slow so the actual data will be returned at
		// the next read.
		val = p.dataBuf
		p.dataBuf = p.Bus.Read8(addr, false)
	} else {
		// Reading palette data is immediate, the buffer gets the
		// nametable byte "beneath" the palette.
		val = p.Bus.Read8(addr, false)
		p.dataBuf = p.Bus.Read8(addr-0x1000, false)
	}
	p.incVRAMaddr()

	log.ModPPU.DebugZ("VRAM read").
		Hex16("addr", addr).
		Hex8("val", val).
		End()
	p.openBus = val
	return val
}

func (p *PPU) writePPUDATA(_, val uint8) {
	addr := p.vramAddr.val() & 0x3FFF
	p.openBus = val
	p.Bus.Write8(addr, val)
	p.incVRAMaddr()

	log.ModPPU.DebugZ("VRAM write").
		Hex16("addr", addr).
		Hex8("val", val).
		End()
}

// After each i/o on PPUDATA, the VRAM address is incremented.
func (p *PPU) incVRAMaddr() {
	incr := loopy(1)
	if p.PPUCTRL.Value&vramIncr != 0 {
		incr = 32
	}
	p.vramAddr = (p.vramAddr + incr) & 0x7FFF
}

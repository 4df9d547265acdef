package hw

import (
	"nescore/emu/log"
	"nescore/hw/hwdefs"
	"nescore/hw/hwio"
	"nescore/hw/mappers"
	"nescore/hw/snapshot"
	"nescore/ines"
)

const (
	NumScanlines = hwdefs.ScanlinesPerFrame // Number of scanlines per frame.
	NumCycles    = hwdefs.DotsPerScanline   // Number of PPU cycles per scanline.

	postRenderLine = 240
	vblankLine     = 241
	preRenderLine  = 261

	screenWidth  = hwdefs.ScreenWidth
	screenHeight = hwdefs.ScreenHeight
)

type PPU struct {
	Bus *hwio.Table // PPU bus
	CPU *CPU

	Cycle      uint32 // Current cycle/pixel in scanline
	Scanline   int    // Current scanline being drawn
	FrameCount uint32 // Completed frames

	// NoSpriteLimit lifts the 8 sprites per scanline limit. The sprite
	// overflow flag is then never set.
	NoSpriteLimit bool

	// CPU-exposed memory-mapped PPU registers, mapped from $2000 to $2007,
	// mirrored up to $3fff.
	PPUCTRL   hwio.Reg8
	PPUMASK   hwio.Reg8
	PPUSTATUS hwio.Reg8
	OAMADDR   hwio.Reg8
	OAMDATA   hwio.Reg8
	PPUSCROLL hwio.Reg8
	PPUADDR   hwio.Reg8
	PPUDATA   hwio.Reg8

	mapper mappers.Mapper

	// $2000-$2FFF, 4 nametables. Only the first 2 are used unless the
	// cartridge provides four-screen mirroring.
	nametables [0x1000]uint8
	palette    [0x20]uint8
	oam        [0x100]uint8
	oamAddr    uint8

	// VRAM read/write
	vramAddr   loopy // v
	vramTmp    loopy // t
	fineX      uint8 // x
	writeLatch bool  // w
	dataBuf    uint8
	openBus    uint8

	bg          bgRegs
	sprites     [snapshot.MaxSprites]sprite
	spriteCount int

	back  []uint8 // palette indices, being rendered
	frame []uint8 // palette indices, last complete frame
	front []byte  // frame, in RGBA
}

func NewPPU() *PPU {
	p := &PPU{
		Bus:   hwio.NewTable("ppu"),
		back:  make([]uint8, screenWidth*screenHeight),
		frame: make([]uint8, screenWidth*screenHeight),
		front: make([]byte, screenWidth*screenHeight*4),
	}
	p.initRegs()
	p.initBus()
	toRGBA(p.front, p.frame)
	return p
}

// initBus maps the PPU address space:
//
//	$0000-$1FFF	pattern tables (cartridge CHR)
//	$2000-$2FFF	nametables
//	$3000-$3EFF	mirrors of $2000-$2EFF
//	$3F00-$3F1F	palette RAM indexes
//	$3F20-$3FFF	mirrors of $3F00-$3F1F
func (p *PPU) initBus() {
	p.Bus.MapDevice(0x0000, &hwio.Device{
		Name:    "CHR",
		Size:    0x2000,
		ReadCb:  p.readCHR,
		PeekCb:  p.readCHR,
		WriteCb: p.writeCHR,
	})
	p.Bus.MapDevice(0x2000, &hwio.Device{
		Name:    "NAMETABLES",
		Size:    0x1F00,
		ReadCb:  func(addr uint16) uint8 { return p.nametables[p.ntIndex(addr)] },
		WriteCb: func(addr uint16, val uint8) { p.nametables[p.ntIndex(addr)] = val },
	})
	p.Bus.MapDevice(0x3F00, &hwio.Device{
		Name:    "PALETTES",
		Size:    0x100,
		ReadCb:  func(addr uint16) uint8 { return p.palette[paletteIndex(addr)] },
		WriteCb: func(addr uint16, val uint8) { p.palette[paletteIndex(addr)] = val & 0x3F },
	})
}

// SetMapper connects the cartridge to the PPU bus.
func (p *PPU) SetMapper(m mappers.Mapper) {
	p.mapper = m
}

func (p *PPU) readCHR(addr uint16) uint8 {
	if p.mapper == nil {
		return 0
	}
	return p.mapper.ReadCHR(addr)
}

func (p *PPU) writeCHR(addr uint16, val uint8) {
	if p.mapper != nil {
		p.mapper.WriteCHR(addr, val)
	}
}

// ntIndex returns the offset in nametable RAM of a PPU address in
// $2000-$3EFF, following the cartridge mirroring.
func (p *PPU) ntIndex(addr uint16) uint16 {
	mirroring := ines.HorzMirroring
	if p.mapper != nil {
		mirroring = p.mapper.Mirroring()
	}
	off := (addr - 0x2000) & 0x0FFF
	return mirroring.Nametable(off/0x400)*0x400 + off&0x3FF
}

// paletteIndex returns the offset in palette RAM of a PPU address in
// $3F00-$3FFF. $3F10/$3F14/$3F18/$3F1C mirror $3F00/$3F04/$3F08/$3F0C.
func paletteIndex(addr uint16) uint16 {
	idx := addr & 0x1F
	if idx&0x13 == 0x10 {
		idx &^= 0x10
	}
	return idx
}

// Reset resets the PPU latches and position. A hard reset also clears
// nametable, palette and OAM memory.
func (p *PPU) Reset(soft bool) {
	if !soft {
		clear(p.nametables[:])
		clear(p.palette[:])
		clear(p.oam[:])
		clear(p.back)
		clear(p.frame)
		toRGBA(p.front, p.frame)
		p.oamAddr = 0
		p.vramAddr = 0
		p.PPUSTATUS.Value = 0
		p.FrameCount = 0
	}

	p.PPUCTRL.Value = 0
	p.PPUMASK.Value = 0
	p.vramTmp = 0
	p.fineX = 0
	p.writeLatch = false
	p.dataBuf = 0
	p.openBus = 0
	p.bg = bgRegs{}
	p.spriteCount = 0

	p.Scanline = 0
	p.Cycle = 0

	log.ModPPU.InfoZ("reset").Bool("soft", soft).End()
}

func (p *PPU) renderingEnabled() bool {
	return p.PPUMASK.Value&(showBg|showSprites) != 0
}

// Tick advances the PPU by one dot.
func (p *PPU) Tick() {
	line, dot := p.Scanline, p.Cycle
	visible := line < postRenderLine
	pre := line == preRenderLine

	if (visible || pre) && p.renderingEnabled() {
		p.fetch(dot, pre)

		switch {
		case dot == 257:
			if visible {
				p.evalSprites()
			} else {
				p.spriteCount = 0
			}
		case dot == 260:
			if sc, ok := p.mapper.(mappers.ScanlineCounter); ok {
				sc.Scanline()
			}
		}
	}

	if visible && dot >= 1 && dot <= 256 {
		p.renderPixel(int(dot-1), line)
	}

	switch {
	case line == vblankLine && dot == 1:
		p.PPUSTATUS.Value |= vblank
		p.updateNMI()
		p.swapFrames()
	case pre && dot == 1:
		p.PPUSTATUS.Value &^= vblank | sprite0Hit | spriteOverflow
		p.updateNMI()
	}

	p.Cycle++
	if p.Cycle >= NumCycles {
		p.Cycle = 0
		p.Scanline++
		if p.Scanline >= NumScanlines {
			p.Scanline = 0
		}
	}
}

// swapFrames publishes the frame just rendered.
func (p *PPU) swapFrames() {
	copy(p.frame, p.back)
	toRGBA(p.front, p.frame)
	p.FrameCount++

	log.ModPPU.DebugZ("frame complete").Uint32("frame", p.FrameCount).End()
}

// Framebuffer returns the last complete frame as 256x240 RGBA8 pixels. The
// slice is owned by the PPU and rewritten at each frame.
func (p *PPU) Framebuffer() []byte {
	return p.front
}

/* state */

func (p *PPU) State() snapshot.PPU {
	state := snapshot.PPU{
		Palette:     p.palette,
		OAMMem:      p.oam,
		Nametables:  p.nametables,
		Pixels:      append([]uint8(nil), p.back...),
		Frame:       append([]uint8(nil), p.frame...),
		SpriteCount: uint8(p.spriteCount),
		OpenBus:     p.openBus,
		OAMAddr:     p.oamAddr,
		VRAMAddr:    uint16(p.vramAddr),
		VRAMTemp:    uint16(p.vramTmp),
		FineX:       p.fineX,
		WriteLatch:  p.writeLatch,
		PPUDataBuf:  p.dataBuf,
		BgRegs:      p.bg.state(),
		PPUCTRL:     p.PPUCTRL.Value,
		PPUMASK:     p.PPUMASK.Value,
		PPUSTATUS:   p.PPUSTATUS.Value,
		NMIOutput:   p.PPUCTRL.Value&nmi != 0,
		Cycle:       p.Cycle,
		Scanline:    p.Scanline,
		FrameCount:  p.FrameCount,
	}
	for i := range p.sprites {
		state.Sprites[i] = p.sprites[i].state()
	}
	return state
}

// SetState restores a PPU state. The state must have been validated. The
// RGBA frame is rebuilt from the restored palette indices.
func (p *PPU) SetState(state *snapshot.PPU) {
	p.palette = state.Palette
	p.oam = state.OAMMem
	p.nametables = state.Nametables
	copy(p.back, state.Pixels)
	copy(p.frame, state.Frame)
	p.spriteCount = int(state.SpriteCount)
	p.openBus = state.OpenBus
	p.oamAddr = state.OAMAddr
	p.vramAddr = loopy(state.VRAMAddr)
	p.vramTmp = loopy(state.VRAMTemp)
	p.fineX = state.FineX
	p.writeLatch = state.WriteLatch
	p.dataBuf = state.PPUDataBuf
	p.bg.setState(&state.BgRegs)
	p.PPUCTRL.Value = state.PPUCTRL
	p.PPUMASK.Value = state.PPUMASK
	p.PPUSTATUS.Value = state.PPUSTATUS
	p.Cycle = state.Cycle
	p.Scanline = state.Scanline
	p.FrameCount = state.FrameCount
	for i := range p.sprites {
		p.sprites[i].setState(&state.Sprites[i])
	}
	toRGBA(p.front, p.frame)
}

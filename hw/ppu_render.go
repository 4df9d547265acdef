package hw

import (
	"math/bits"

	"nescore/hw/snapshot"
)

// bgRegs holds the background fetch latches and shift registers.
type bgRegs struct {
	nt   uint8 // nametable byte
	at   uint8 // palette bits of the tile being fetched
	lo   uint8 // pattern low plane
	hi   uint8 // pattern high plane
	shlo uint16
	shhi uint16

	// 8-bit attribute shift registers, fed by 1-bit latches.
	atshlo uint8
	atshhi uint8
	atlo   bool
	athi   bool
}

func (bg *bgRegs) shift() {
	bg.shlo <<= 1
	bg.shhi <<= 1
	bg.atshlo = bg.atshlo<<1 | b2u8(bg.atlo)
	bg.atshhi = bg.atshhi<<1 | b2u8(bg.athi)
}

// reload loads the fetched tile into the low half of the shift registers.
func (bg *bgRegs) reload() {
	bg.shlo = bg.shlo&0xFF00 | uint16(bg.lo)
	bg.shhi = bg.shhi&0xFF00 | uint16(bg.hi)
	bg.atlo = bg.at&1 != 0
	bg.athi = bg.at&2 != 0
}

// pixel returns the 4-bit background palette index at fine x.
func (bg *bgRegs) pixel(finex uint8) uint8 {
	p0 := uint8(bg.shlo>>(15-finex)) & 1
	p1 := uint8(bg.shhi>>(15-finex)) & 1
	a0 := (bg.atshlo >> (7 - finex)) & 1
	a1 := (bg.atshhi >> (7 - finex)) & 1
	return a1<<3 | a0<<2 | p1<<1 | p0
}

func (bg *bgRegs) state() snapshot.PPUBgRegs {
	return snapshot.PPUBgRegs{
		NT:        bg.nt,
		AT:        bg.at,
		BgLo:      bg.lo,
		BgHi:      bg.hi,
		BgShiftLo: bg.shlo,
		BgShiftHi: bg.shhi,
		ATShiftLo: bg.atshlo,
		ATShiftHi: bg.atshhi,
		ATLatchLo: bg.atlo,
		ATLatchHi: bg.athi,
	}
}

func (bg *bgRegs) setState(state *snapshot.PPUBgRegs) {
	*bg = bgRegs{
		nt:     state.NT,
		at:     state.AT,
		lo:     state.BgLo,
		hi:     state.BgHi,
		shlo:   state.BgShiftLo,
		shhi:   state.BgShiftHi,
		atshlo: state.ATShiftLo,
		atshhi: state.ATShiftHi,
		atlo:   state.ATLatchLo,
		athi:   state.ATLatchHi,
	}
}

func b2u8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// fetch runs the background fetch pipeline and the scroll updates for the
// current dot of a rendered line.
func (p *PPU) fetch(dot uint32, pre bool) {
	if (dot >= 2 && dot <= 257) || (dot >= 321 && dot <= 337) {
		p.bg.shift()

		switch (dot - 1) % 8 {
		case 0:
			p.bg.reload()
			p.fetchNT()
		case 2:
			p.fetchAT()
		case 4:
			p.bg.lo = p.Bus.Read8(p.bgPatternAddr(), false)
		case 6:
			p.bg.hi = p.Bus.Read8(p.bgPatternAddr()+8, false)
		case 7:
			p.vramAddr.incx()
		}
	}

	switch {
	case dot == 256:
		p.vramAddr.incy()
	case dot == 257:
		// Copy horizontal bits from t to v.
		p.vramAddr = p.vramAddr&^0x041F | p.vramTmp&0x041F
	case dot == 338 || dot == 340:
		// Unused nametable fetches.
		p.fetchNT()
	case pre && dot >= 280 && dot <= 304:
		// Copy vertical bits from t to v.
		p.vramAddr = p.vramAddr&^0x7BE0 | p.vramTmp&0x7BE0
	}
}

func (p *PPU) fetchNT() {
	p.bg.nt = p.Bus.Read8(0x2000|p.vramAddr.val()&0x0FFF, false)
}

func (p *PPU) fetchAT() {
	v := p.vramAddr.val()
	addr := 0x23C0 | v&0x0C00 | (v>>4)&0x38 | (v>>2)&0x07
	shift := (v>>4)&4 | v&2
	p.bg.at = (p.Bus.Read8(addr, false) >> shift) & 0b11
}

func (p *PPU) bgPatternAddr() uint16 {
	var base uint16
	if p.PPUCTRL.Value&backgroundAddr != 0 {
		base = 0x1000
	}
	return base + uint16(p.bg.nt)*16 + p.vramAddr.finey()
}

// sprite is a sprite selected for the current scanline. Its pattern is
// pre-flipped so that bit 7 is always the leftmost pixel.
type sprite struct {
	id    uint8 // OAM index
	x     uint8
	attr  uint8
	datal uint8
	datah uint8
}

func (s *sprite) state() snapshot.Sprite {
	return snapshot.Sprite{ID: s.id, X: s.x, Attr: s.attr, DataL: s.datal, DataH: s.datah}
}

func (s *sprite) setState(state *snapshot.Sprite) {
	*s = sprite{id: state.ID, x: state.X, attr: state.Attr, datal: state.DataL, datah: state.DataH}
}

const (
	sprPalette  = 0b11
	sprPriority = 1 << 5 // behind background
	sprFlipH    = 1 << 6
	sprFlipV    = 1 << 7
)

func (p *PPU) spriteHeight() int {
	if p.PPUCTRL.Value&spriteSize != 0 {
		return 16
	}
	return 8
}

// evalSprites selects the sprites of the next scanline and fetches their
// patterns.
func (p *PPU) evalSprites() {
	h := p.spriteHeight()
	limit := 8
	if p.NoSpriteLimit {
		limit = len(p.sprites)
	}

	count := 0
	for i := range 64 {
		y := p.oam[i*4]
		row := p.Scanline - int(y)
		if row < 0 || row >= h {
			continue
		}
		if count == limit {
			p.PPUSTATUS.Value |= spriteOverflow
			break
		}
		p.sprites[count] = p.fetchSprite(uint8(i), row, h)
		count++
	}
	p.spriteCount = count
}

func (p *PPU) fetchSprite(i uint8, row, h int) sprite {
	tile := uint16(p.oam[int(i)*4+1])
	attr := p.oam[int(i)*4+2]
	x := p.oam[int(i)*4+3]

	if attr&sprFlipV != 0 {
		row = h - 1 - row
	}

	var addr uint16
	if h == 8 {
		if p.PPUCTRL.Value&spriteAddr != 0 {
			addr = 0x1000
		}
		addr += tile*16 + uint16(row)
	} else {
		addr = (tile&1)*0x1000 + (tile&0xFE)*16
		if row >= 8 {
			addr += 16
			row -= 8
		}
		addr += uint16(row)
	}

	lo := p.Bus.Read8(addr, false)
	hi := p.Bus.Read8(addr+8, false)
	if attr&sprFlipH != 0 {
		lo = bits.Reverse8(lo)
		hi = bits.Reverse8(hi)
	}
	return sprite{id: i, x: x, attr: attr, datal: lo, datah: hi}
}

// spritePixel returns the first opaque sprite pixel at x, as a 4-bit
// palette index (0 if none).
func (p *PPU) spritePixel(x int) (color uint8, spr *sprite) {
	for i := range p.spriteCount {
		s := &p.sprites[i]
		off := x - int(s.x)
		if off < 0 || off > 7 {
			continue
		}
		shift := 7 - off
		c := (s.datah>>shift&1)<<1 | s.datal>>shift&1
		if c == 0 {
			continue
		}
		return (s.attr&sprPalette)<<2 | c, s
	}
	return 0, nil
}

// renderPixel composes the background and sprite pixels at (x, y) into the
// back buffer.
func (p *PPU) renderPixel(x, y int) {
	mask := p.PPUMASK.Value

	var bgc, sprc uint8
	var spr *sprite
	if p.renderingEnabled() {
		if mask&showBg != 0 && (x >= 8 || mask&leftmostBg != 0) {
			bgc = p.bg.pixel(p.fineX)
		}
		if mask&showSprites != 0 && (x >= 8 || mask&leftmostSprites != 0) {
			sprc, spr = p.spritePixel(x)
		}
	}

	bgOpaque := bgc&3 != 0
	sprOpaque := sprc&3 != 0

	var addr uint8
	switch {
	case !bgOpaque && !sprOpaque:
		addr = 0
	case !bgOpaque:
		addr = 0x10 | sprc
	case !sprOpaque:
		addr = bgc
	default:
		if spr.id == 0 && x != 255 {
			p.PPUSTATUS.Value |= sprite0Hit
		}
		if spr.attr&sprPriority == 0 {
			addr = 0x10 | sprc
		} else {
			addr = bgc
		}
	}

	idx := p.palette[paletteIndex(uint16(addr))]
	if mask&greyscale != 0 {
		idx &= 0x30
	}
	p.back[y*screenWidth+x] = idx
}

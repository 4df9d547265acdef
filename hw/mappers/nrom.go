package mappers

import (
	"nescore/hw/snapshot"
	"nescore/ines"
)

// NROM has no bank switching: 16KB or 32KB of PRG ROM at $8000 (16KB images
// are mirrored at $C000), optional 8KB PRG RAM at $6000 and 8KB CHR ROM or
// RAM.
var NROM = Desc{
	Name: "NROM",
	ID:   nromID,
	New:  newNROM,
}

const nromID = 0

type nrom struct {
	*base
}

func newNROM(rom *ines.Rom, _ Host) (Mapper, error) {
	b, err := newbase(nromID, rom, 0x2000)
	if err != nil {
		return nil, err
	}
	return &nrom{base: b}, nil
}

func (m *nrom) Read8(addr uint16) uint8 {
	switch {
	case addr >= 0x8000:
		return m.prg[int(addr-0x8000)%len(m.prg)]
	case addr >= 0x6000:
		return m.prgRAM[addr-0x6000]
	}
	return 0
}

func (m *nrom) Write8(addr uint16, val uint8) {
	switch {
	case addr >= 0x8000:
		modMapper.DebugZ("write to PRG ROM ignored").
			Hex16("addr", addr).
			Hex8("val", val).
			End()
	case addr >= 0x6000:
		m.prgRAM[addr-0x6000] = val
	}
}

func (m *nrom) ReadCHR(addr uint16) uint8 {
	return m.chr[addr&0x1FFF]
}

func (m *nrom) WriteCHR(addr uint16, val uint8) {
	if m.chrRAM {
		m.chr[addr&0x1FFF] = val
	}
}

func (m *nrom) SetState(state *snapshot.Mapper) error {
	if err := m.checkState(state); err != nil {
		return err
	}
	m.setState(state)
	return nil
}

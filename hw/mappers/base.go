// Package mappers implements the cartridge side of the console address
// spaces. Each mapper variant is registered in All under its iNES number.
package mappers

import (
	"errors"
	"fmt"

	"nescore/emu/log"
	"nescore/hw/snapshot"
	"nescore/ines"
)

var modMapper = log.NewModule("mapper")

var ErrUnsupported = errors.New("unsupported mapper")

// A Mapper translates CPU addresses in $4020-$FFFF and PPU addresses in
// $0000-$1FFF into cartridge ROM/RAM accesses. It owns the cartridge memory.
type Mapper interface {
	Desc() Desc

	Read8(addr uint16) uint8
	Write8(addr uint16, val uint8)

	ReadCHR(addr uint16) uint8
	WriteCHR(addr uint16, val uint8)

	// Mirroring returns the current nametable layout.
	Mirroring() ines.NTMirroring

	State() snapshot.Mapper
	SetState(*snapshot.Mapper) error
}

// ScanlineCounter is implemented by mappers counting rendered scanlines (for
// example to raise IRQs). The PPU calls Scanline once per rendered line.
type ScanlineCounter interface {
	Scanline()
}

// Host is the console side of the cartridge connector.
type Host interface {
	// SetIRQ drives the cartridge IRQ line.
	SetIRQ(asserted bool)
}

type Desc struct {
	Name string
	ID   uint16
	New  func(rom *ines.Rom, host Host) (Mapper, error)
}

func (d Desc) String() string {
	return fmt.Sprintf("%s (%d)", d.Name, d.ID)
}

// New creates the mapper declared by the rom header.
func New(rom *ines.Rom, host Host) (Mapper, error) {
	desc, ok := All[rom.Mapper()]
	if !ok {
		return nil, fmt.Errorf("%w %d", ErrUnsupported, rom.Mapper())
	}
	m, err := desc.New(rom, host)
	if err != nil {
		return nil, fmt.Errorf("failed to load mapper %s: %w", desc.Name, err)
	}
	modMapper.InfoZ("mapper loaded").
		String("name", desc.Name).
		Int("prg", len(rom.PRG)).
		Int("chr", len(rom.CHR)).
		End()
	return m, nil
}

func ispow2(n int) bool {
	return n&(n-1) == 0
}

// base holds the memory shared by all mapper variants.
type base struct {
	id uint16

	prg    []byte
	prgRAM []byte
	chr    []byte
	chrRAM bool

	mirroring ines.NTMirroring
}

func newbase(id uint16, rom *ines.Rom, prgRAMSize int) (*base, error) {
	if len(rom.PRG) == 0 || !ispow2(len(rom.PRG)) {
		return nil, fmt.Errorf("only support PRG ROM with power of 2 size, got %d", len(rom.PRG))
	}

	b := &base{
		id:        id,
		prg:       append([]byte(nil), rom.PRG...),
		prgRAM:    make([]byte, prgRAMSize),
		mirroring: rom.Mirroring(),
	}
	if len(rom.CHR) == 0 {
		b.chr = make([]byte, ines.CHRBankSize)
		b.chrRAM = true
	} else {
		b.chr = append([]byte(nil), rom.CHR...)
	}
	return b, nil
}

func (b *base) Desc() Desc                  { return All[b.id] }
func (b *base) Mirroring() ines.NTMirroring { return b.mirroring }

func (b *base) State() snapshot.Mapper {
	state := snapshot.Mapper{
		ID:     b.id,
		PRGRAM: append([]byte(nil), b.prgRAM...),
	}
	if b.chrRAM {
		state.CHRRAM = append([]byte(nil), b.chr...)
	}
	return state
}

// checkState validates state against the cartridge memory layout, without
// modifying anything.
func (b *base) checkState(state *snapshot.Mapper) error {
	if state.ID != b.id {
		return fmt.Errorf("state is for mapper %d, cartridge uses %d", state.ID, b.id)
	}
	if len(state.PRGRAM) != len(b.prgRAM) {
		return fmt.Errorf("PRG RAM size mismatch: %d != %d", len(state.PRGRAM), len(b.prgRAM))
	}
	chrRAM := 0
	if b.chrRAM {
		chrRAM = len(b.chr)
	}
	if len(state.CHRRAM) != chrRAM {
		return fmt.Errorf("CHR RAM size mismatch: %d != %d", len(state.CHRRAM), chrRAM)
	}
	return nil
}

func (b *base) setState(state *snapshot.Mapper) {
	copy(b.prgRAM, state.PRGRAM)
	if b.chrRAM {
		copy(b.chr, state.CHRRAM)
	}
}

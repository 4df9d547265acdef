package mappers

import (
	"errors"
	"testing"

	"nescore/hw/snapshot"
	"nescore/ines"
)

func newTestNROM(tb testing.TB, prgsz, chrsz int) Mapper {
	tb.Helper()

	prg := make([]byte, prgsz)
	for i := range prg {
		prg[i] = byte(i >> 8)
	}
	prg[0] = 0xAA
	prg[len(prg)-1] = 0xBB

	m, err := New(ines.New(prg, make([]byte, chrsz), 0, ines.VertMirroring), nil)
	if err != nil {
		tb.Fatal(err)
	}
	return m
}

func TestNROMMirroring16K(t *testing.T) {
	m := newTestNROM(t, 0x4000, 0x2000)

	for off := uint16(0); off < 0x4000; off += 0x123 {
		if lo, hi := m.Read8(0x8000+off), m.Read8(0xC000+off); lo != hi {
			t.Fatalf("Read8(%04x)=%02x != Read8(%04x)=%02x", 0x8000+off, lo, 0xC000+off, hi)
		}
	}
	if got := m.Read8(0x8000); got != 0xAA {
		t.Errorf("Read8(8000) = %02x, want aa", got)
	}
	if got := m.Read8(0xFFFF); got != 0xBB {
		t.Errorf("Read8(ffff) = %02x, want bb", got)
	}
}

func TestNROM32K(t *testing.T) {
	m := newTestNROM(t, 0x8000, 0x2000)

	if got := m.Read8(0xC000); got != 0x40 {
		t.Errorf("Read8(c000) = %02x, want 40", got)
	}
	if got := m.Read8(0xFFFF); got != 0xBB {
		t.Errorf("Read8(ffff) = %02x, want bb", got)
	}
}

func TestNROMWrites(t *testing.T) {
	m := newTestNROM(t, 0x4000, 0x2000)

	m.Write8(0x8000, 0x12)
	if got := m.Read8(0x8000); got != 0xAA {
		t.Errorf("PRG ROM was modified: %02x", got)
	}

	m.Write8(0x6010, 0x34)
	if got := m.Read8(0x6010); got != 0x34 {
		t.Errorf("PRG RAM Read8(6010) = %02x, want 34", got)
	}

	m.WriteCHR(0x0010, 0x56)
	if got := m.ReadCHR(0x0010); got != 0 {
		t.Errorf("CHR ROM was modified: %02x", got)
	}

	if got := m.Read8(0x5000); got != 0 {
		t.Errorf("Read8(5000) = %02x, want 0", got)
	}
	if m.Mirroring() != ines.VertMirroring {
		t.Errorf("Mirroring() = %s, want vertical", m.Mirroring())
	}
}

func TestNROMCHRRAM(t *testing.T) {
	m := newTestNROM(t, 0x4000, 0)

	m.WriteCHR(0x1FFF, 0x78)
	if got := m.ReadCHR(0x1FFF); got != 0x78 {
		t.Errorf("CHR RAM ReadCHR(1fff) = %02x, want 78", got)
	}

	state := m.State()
	if len(state.CHRRAM) != 0x2000 {
		t.Fatalf("CHR RAM not saved, len=%d", len(state.CHRRAM))
	}

	m.WriteCHR(0x1FFF, 0x00)
	if err := m.SetState(&state); err != nil {
		t.Fatal(err)
	}
	if got := m.ReadCHR(0x1FFF); got != 0x78 {
		t.Errorf("after SetState ReadCHR(1fff) = %02x, want 78", got)
	}
}

func TestNROMSetStateMismatch(t *testing.T) {
	m := newTestNROM(t, 0x4000, 0x2000)
	m.Write8(0x6000, 0x99)

	bad := []snapshot.Mapper{
		{ID: 1, PRGRAM: make([]byte, 0x2000)},
		{ID: 0, PRGRAM: make([]byte, 10)},
		{ID: 0, PRGRAM: make([]byte, 0x2000), CHRRAM: make([]byte, 0x2000)},
	}
	for i, state := range bad {
		if err := m.SetState(&state); err == nil {
			t.Errorf("state %d: SetState should fail", i)
		}
	}
	if got := m.Read8(0x6000); got != 0x99 {
		t.Errorf("failed SetState modified PRG RAM: %02x", got)
	}
}

func TestUnsupportedMapper(t *testing.T) {
	rom := ines.New(make([]byte, 0x4000), nil, 4, ines.HorzMirroring)
	if _, err := New(rom, nil); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("New() error = %v, want ErrUnsupported", err)
	}
}

func TestNROMDesc(t *testing.T) {
	m := newTestNROM(t, 0x4000, 0x2000)
	if d := m.Desc(); d.Name != "NROM" || d.ID != 0 {
		t.Errorf("Desc() = %v", d)
	}
}

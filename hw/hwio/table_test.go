package hwio

import "testing"

type testTable struct {
	*Table
	tb testing.TB

	RAM    Mem
	Reg1   Reg8
	Dev    Device
	devval uint8
}

func newTestTable(tb testing.TB) *testTable {
	tbl := &testTable{Table: NewTable("test"), tb: tb}
	tbl.RAM = Mem{Name: "ram", Data: make([]byte, 0x100), VSize: 0x400}
	tbl.Reg1 = Reg8{Name: "reg1", Value: 0x10, ReadCb: tbl.ReadREG1}
	tbl.Dev = Device{
		Name:    "dev",
		Size:    0x10,
		ReadCb:  func(addr uint16) uint8 { return 0xE1 },
		PeekCb:  func(addr uint16) uint8 { return 0xE2 },
		WriteCb: func(addr uint16, val uint8) { tbl.devval = uint8(addr) & val },
	}

	tbl.MapMem(0x0000, &tbl.RAM)
	tbl.MapReg8(0x1000, &tbl.Reg1)
	tbl.MapDevice(0x2000, &tbl.Dev)
	return tbl
}

func (tbl *testTable) ReadREG1(val uint8) uint8 { return tbl.Reg1.Value + 1 }

func (tbl *testTable) wantRead8(addr uint16, want uint8) {
	tbl.tb.Helper()
	if got := tbl.Read8(addr, false); got != want {
		tbl.tb.Errorf("Read8(%04x) = %02x, want %02x", addr, got, want)
	}
}

func (tbl *testTable) wantPeek8(addr uint16, want uint8) {
	tbl.tb.Helper()
	if got := tbl.Peek8(addr); got != want {
		tbl.tb.Errorf("Peek8(%04x) = %02x, want %02x", addr, got, want)
	}
}

func TestTableMem(t *testing.T) {
	tbl := newTestTable(t)

	tbl.Write8(0x0042, 0xAB)
	tbl.wantRead8(0x0042, 0xAB)
	// Mirrors.
	tbl.wantRead8(0x0142, 0xAB)
	tbl.wantRead8(0x0342, 0xAB)
	tbl.Write8(0x03FF, 0xCD)
	tbl.wantRead8(0x00FF, 0xCD)
	tbl.wantPeek8(0x00FF, 0xCD)
}

func TestTableRegs(t *testing.T) {
	tbl := newTestTable(t)

	tbl.wantRead8(0x1000, 0x11)
	tbl.wantPeek8(0x1000, 0x10)
	tbl.Write8(0x1000, 0x20)
	tbl.wantRead8(0x1000, 0x21)
}

func TestTableDevice(t *testing.T) {
	tbl := newTestTable(t)

	tbl.wantRead8(0x2000, 0xE1)
	tbl.wantRead8(0x200F, 0xE1)
	tbl.wantPeek8(0x2005, 0xE2)
	tbl.wantRead8(0x2010, 0x00)

	tbl.Write8(0x200F, 0xFF)
	if tbl.devval != 0x0F {
		t.Errorf("device write: devval = %02x, want 0f", tbl.devval)
	}
}

func TestTableUnmapped(t *testing.T) {
	tbl := newTestTable(t)

	tbl.wantRead8(0x8000, 0)
	tbl.Write8(0x8000, 0x12) // must not panic
	if tbl.Lookup(0x8000) != nil {
		t.Errorf("Lookup(8000) should be nil")
	}
}

func TestTableUnmap(t *testing.T) {
	tbl := newTestTable(t)

	tbl.Write8(0x0010, 0x77)
	tbl.Unmap(0x0000, 0x00FF)
	tbl.wantRead8(0x0010, 0x00)
	tbl.wantRead8(0x0110, 0x77)

	tbl.Reset()
	tbl.wantRead8(0x0110, 0x00)
	tbl.wantRead8(0x1000, 0x00)
}

func TestTableMapRegsRemap(t *testing.T) {
	tbl := NewTable("regs")
	regs := []*Reg8{{Name: "a", Value: 1}, nil, {Name: "c", Value: 3}}

	for base := uint16(0x2000); base < 0x2010; base += 4 {
		tbl.MapRegs(base, regs...)
	}
	for base := uint16(0x2000); base < 0x2010; base += 4 {
		if got := tbl.Read8(base, false); got != 1 {
			t.Errorf("Read8(%04x) = %d, want 1", base, got)
		}
		if got := tbl.Read8(base+1, false); got != 0 {
			t.Errorf("Read8(%04x) = %d, want 0 (unmapped)", base+1, got)
		}
		if got := tbl.Read8(base+2, false); got != 3 {
			t.Errorf("Read8(%04x) = %d, want 3", base+2, got)
		}
	}
	if len(tbl.devs) != 2 {
		t.Errorf("remapping the same registers should not add devices, got %d", len(tbl.devs))
	}
}

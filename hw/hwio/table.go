// Package hwio provides the plumbing used to build memory-mapped address
// spaces: a Table routes every address of a 16-bit space to the device
// (memory, register or callback-driven area) mapped there.
package hwio

import (
	"fmt"

	"nescore/emu/log"
)

// log unmapped accesses (useful for debugging but verbose on NES since many
// games read from open bus)
const logUnmapped = false

type BankIO8 interface {
	// Read8 reads a byte from the given address. If peek is true, the read
	// shouldn't have any side effects (debugging/tracing).
	Read8(addr uint16, peek bool) uint8
	Write8(addr uint16, val uint8)
}

func Write16(b BankIO8, addr uint16, val uint16) {
	b.Write8(addr, uint8(val))
	b.Write8(addr+1, uint8(val>>8))
}

func Read16(b BankIO8, addr uint16) uint16 {
	lo := b.Read8(addr, false)
	hi := b.Read8(addr+1, false)
	return uint16(hi)<<8 | uint16(lo)
}

// A Table is a 64KB address space. Each address is resolved to a device
// through a flat index, so dispatch costs one array lookup.
type Table struct {
	Name string

	devs []BankIO8
	idx  [0x10000]uint8 // 0 means unmapped, devs[i-1] otherwise
}

func NewTable(name string) *Table {
	return &Table{Name: name}
}

// Reset unmaps everything.
func (t *Table) Reset() {
	t.devs = t.devs[:0]
	t.idx = [0x10000]uint8{}
}

func (t *Table) devIndex(dev BankIO8) uint8 {
	for i, d := range t.devs {
		if d == dev {
			return uint8(i + 1)
		}
	}
	if len(t.devs) == 0xFF {
		panic(fmt.Sprintf("hwio: table %s: too many devices", t.Name))
	}
	t.devs = append(t.devs, dev)
	return uint8(len(t.devs))
}

// Map maps dev over the inclusive range [begin, end], replacing whatever was
// mapped there.
func (t *Table) Map(begin, end uint16, dev BankIO8) {
	if end < begin {
		panic(fmt.Sprintf("hwio: table %s: invalid range [%04x-%04x]", t.Name, begin, end))
	}
	i := t.devIndex(dev)
	for addr := int(begin); addr <= int(end); addr++ {
		t.idx[addr] = i
	}
	log.ModHwIo.DebugZ("map").
		String("table", t.Name).
		Hex16("begin", begin).
		Hex16("end", end).
		End()
}

// Unmap removes any device mapped over the inclusive range [begin, end].
func (t *Table) Unmap(begin, end uint16) {
	for addr := int(begin); addr <= int(end); addr++ {
		t.idx[addr] = 0
	}
}

// MapMem maps a memory area at addr. The area spans m.VSize bytes (or
// len(m.Data) if VSize is zero), repeating the memory as needed.
func (t *Table) MapMem(addr uint16, m *Mem) {
	n := len(m.Data)
	if n == 0 || n&(n-1) != 0 {
		panic(fmt.Sprintf("hwio: table %s: size of %s is not a power of 2", t.Name, m.Name))
	}
	vsize := m.VSize
	if vsize == 0 {
		vsize = n
	}
	t.Map(addr, addr+uint16(vsize-1), &mirrored{data: m.Data, mask: uint16(n - 1)})
}

// MapReg8 maps a single 8-bit register at addr.
func (t *Table) MapReg8(addr uint16, r *Reg8) {
	t.Map(addr, addr, r)
}

// MapRegs maps regs at consecutive addresses starting at addr. Nil entries
// are left unmapped.
func (t *Table) MapRegs(addr uint16, regs ...*Reg8) {
	for i, r := range regs {
		if r != nil {
			t.MapReg8(addr+uint16(i), r)
		}
	}
}

// MapDevice maps d over [addr, addr+d.Size-1].
func (t *Table) MapDevice(addr uint16, d *Device) {
	t.Map(addr, addr+uint16(d.Size-1), d)
}

// Lookup returns the device mapped at addr, or nil.
func (t *Table) Lookup(addr uint16) BankIO8 {
	if i := t.idx[addr]; i != 0 {
		return t.devs[i-1]
	}
	return nil
}

func (t *Table) Read8(addr uint16, peek bool) uint8 {
	i := t.idx[addr]
	if i == 0 {
		if logUnmapped && !peek {
			log.ModHwIo.WarnZ("unmapped Read8").
				String("name", t.Name).
				Hex16("addr", addr).
				End()
		}
		return 0
	}
	return t.devs[i-1].Read8(addr, peek)
}

// Peek8 reads addr without side effects.
func (t *Table) Peek8(addr uint16) uint8 {
	return t.Read8(addr, true)
}

func (t *Table) Write8(addr uint16, val uint8) {
	i := t.idx[addr]
	if i == 0 {
		if logUnmapped {
			log.ModHwIo.WarnZ("unmapped Write8").
				String("name", t.Name).
				Hex16("addr", addr).
				Hex8("val", val).
				End()
		}
		return
	}
	t.devs[i-1].Write8(addr, val)
}

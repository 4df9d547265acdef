package hwio

// Reg8 is an 8-bit register. Writes preserve the bits set in RoMask. The
// optional callbacks implement the side effects of accesses, they're given
// the stored value.
type Reg8 struct {
	Name   string
	Value  uint8
	RoMask uint8

	ReadCb  func(val uint8) uint8
	PeekCb  func(val uint8) uint8
	WriteCb func(old, val uint8)
}

func (r *Reg8) Read8(_ uint16, peek bool) uint8 {
	switch {
	case peek && r.PeekCb != nil:
		return r.PeekCb(r.Value)
	case !peek && r.ReadCb != nil:
		return r.ReadCb(r.Value)
	}
	return r.Value
}

func (r *Reg8) Write8(_ uint16, val uint8) {
	old := r.Value
	r.Value = old&r.RoMask | val&^r.RoMask
	if r.WriteCb != nil {
		r.WriteCb(old, r.Value)
	}
}

// Device is an address range entirely handled by callbacks. Without ReadCb
// reads return 0, without PeekCb peeks go through ReadCb, and without WriteCb
// writes are dropped.
type Device struct {
	Name string
	Size int

	ReadCb  func(addr uint16) uint8
	PeekCb  func(addr uint16) uint8
	WriteCb func(addr uint16, val uint8)
}

func (d *Device) Read8(addr uint16, peek bool) uint8 {
	if peek && d.PeekCb != nil {
		return d.PeekCb(addr)
	}
	if d.ReadCb == nil {
		return 0
	}
	return d.ReadCb(addr)
}

func (d *Device) Write8(addr uint16, val uint8) {
	if d.WriteCb != nil {
		d.WriteCb(addr, val)
	}
}

// Mem is a RAM area. Mapped over VSize bytes, it repeats every len(Data)
// bytes, which must be a power of 2.
type Mem struct {
	Name  string
	Data  []byte
	VSize int // len(Data) if zero
}

// mirrored is the view of a Mem mapped in a Table.
type mirrored struct {
	data []byte
	mask uint16
}

func (m *mirrored) Read8(addr uint16, _ bool) uint8 { return m.data[addr&m.mask] }
func (m *mirrored) Write8(addr uint16, val uint8)   { m.data[addr&m.mask] = val }

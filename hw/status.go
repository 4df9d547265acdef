package hw

// P is the processor status register.
type P uint8

const (
	Carry P = 1 << iota
	Zero
	Interrupt
	Decimal
	Break
	Reserved
	Overflow
	Negative
)

func (p P) String() string {
	const bits = "nvubdizcNVUBDIZC"

	s := make([]byte, 8)
	for i := 0; i < 8; i++ {
		ibit := (uint8(p) & (1 << (7 - i))) >> (7 - i)
		s[i] = bits[i+int(8*ibit)]
	}
	return string(s)
}

func (p *P) setFlags(flags P) {
	*p |= flags
}

func (p *P) clearFlags(flags P) {
	*p &^= flags
}

func (p P) hasFlag(flag P) bool {
	return p&flag == flag
}

// writeFlag sets or clears flag depending on cond.
func (p *P) writeFlag(flag P, cond bool) {
	if cond {
		p.setFlags(flag)
	} else {
		p.clearFlags(flag)
	}
}

func (p P) intDisable() bool { return p.hasFlag(Interrupt) }

// checkNZ sets N and Z according to val.
func (p *P) checkNZ(val uint8) {
	p.writeFlag(Zero, val == 0)
	p.writeFlag(Negative, val&0x80 != 0)
}

func (p *P) checkCV(x, y uint8, sum uint16) {
	// forward carry or unsigned overflow.
	p.writeFlag(Carry, sum > 0xFF)

	// signed overflow, can only happen if the sign of the sum differs
	// from that of both operands.
	v := (uint16(x) ^ sum) & (uint16(y) ^ sum) & 0x80
	p.writeFlag(Overflow, v != 0)
}

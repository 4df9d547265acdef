package hw

import "fmt"

// DisasmOp is a decoded instruction.
type DisasmOp struct {
	PC     uint16
	Buf    []byte // instruction bytes
	Opcode string
	Oper   string
}

// AppendTo appends the listing line of the instruction to buf: address, raw
// bytes, mnemonic and operand.
func (d DisasmOp) AppendTo(buf []byte) []byte {
	start := len(buf)
	buf = appendHex8(buf, uint8(d.PC>>8))
	buf = appendHex8(buf, uint8(d.PC))
	buf = append(buf, "  "...)
	for _, b := range d.Buf {
		buf = appendHex8(buf, b)
		buf = append(buf, ' ')
	}
	buf = pad(buf, start+16)
	buf = append(buf, d.Opcode...)
	if d.Oper != "" {
		buf = append(buf, ' ')
		buf = append(buf, d.Oper...)
	}
	return buf
}

func (d DisasmOp) String() string {
	return string(d.AppendTo(nil))
}

// Disasm decodes the instruction at pc, without side effects.
func (c *CPU) Disasm(pc uint16) DisasmOp {
	opcode := c.Bus.Peek8(pc)
	op := &ops[opcode]

	n := addrModeLen[op.m]
	dis := DisasmOp{
		Opcode: op.n,
		PC:     pc,
		Buf:    make([]byte, n),
	}
	for i := range n {
		dis.Buf[i] = c.Bus.Peek8(pc + i)
	}

	var arg uint16
	switch n {
	case 2:
		arg = uint16(dis.Buf[1])
	case 3:
		arg = uint16(dis.Buf[2])<<8 | uint16(dis.Buf[1])
	}

	switch op.m {
	case imp:
	case acc:
		dis.Oper = "A"
	case imm:
		dis.Oper = fmt.Sprintf("#$%02X", arg)
	case zpg:
		dis.Oper = fmt.Sprintf("$%02X", arg)
	case zpx:
		dis.Oper = fmt.Sprintf("$%02X,X", arg)
	case zpy:
		dis.Oper = fmt.Sprintf("$%02X,Y", arg)
	case rel:
		dis.Oper = fmt.Sprintf("$%04X", pc+2+uint16(int8(arg)))
	case abs:
		dis.Oper = addrName(arg)
	case abx:
		dis.Oper = addrName(arg) + ",X"
	case aby:
		dis.Oper = addrName(arg) + ",Y"
	case ind:
		dis.Oper = fmt.Sprintf("($%04X)", arg)
	case izx:
		dis.Oper = fmt.Sprintf("($%02X,X)", arg)
	case izy:
		dis.Oper = fmt.Sprintf("($%02X),Y", arg)
	}
	return dis
}

// I/O registers, shown by name in listings.
var regNames = map[uint16]string{
	0x2000: "PPUCTRL",
	0x2001: "PPUMASK",
	0x2002: "PPUSTATUS",
	0x2003: "OAMADDR",
	0x2004: "OAMDATA",
	0x2005: "PPUSCROLL",
	0x2006: "PPUADDR",
	0x2007: "PPUDATA",
	0x4000: "SQ1_VOL",
	0x4001: "SQ1_SWEEP",
	0x4002: "SQ1_LO",
	0x4003: "SQ1_HI",
	0x4004: "SQ2_VOL",
	0x4005: "SQ2_SWEEP",
	0x4006: "SQ2_LO",
	0x4007: "SQ2_HI",
	0x4008: "TRI_LINEAR",
	0x400A: "TRI_LO",
	0x400B: "TRI_HI",
	0x400C: "NOISE_VOL",
	0x400E: "NOISE_LO",
	0x400F: "NOISE_HI",
	0x4010: "DMC_FREQ",
	0x4011: "DMC_RAW",
	0x4012: "DMC_START",
	0x4013: "DMC_LEN",
	0x4014: "OAMDMA",
	0x4015: "SND_CHN",
	0x4016: "JOY1",
	0x4017: "JOY2",
}

func addrName(addr uint16) string {
	if name, ok := regNames[addr]; ok {
		return name
	}
	return fmt.Sprintf("$%04X", addr)
}

package hw

import "nescore/emu/log"

// addrmode is an operand addressing mode.
type addrmode uint8

const (
	imp addrmode = iota // implied
	acc                 // accumulator
	imm                 // immediate
	zpg                 // zero page
	zpx                 // zero page, X
	zpy                 // zero page, Y
	rel                 // relative
	abs                 // absolute
	abx                 // absolute, X
	aby                 // absolute, Y
	ind                 // indirect
	izx                 // (zero page, X)
	izy                 // (zero page), Y
)

// number of bytes of an instruction, per addressing mode.
var addrModeLen = [...]uint16{
	imp: 1, acc: 1, imm: 2, zpg: 2, zpx: 2, zpy: 2, rel: 2,
	abs: 3, abx: 3, aby: 3, ind: 3, izx: 2, izy: 2,
}

type opdef struct {
	n string   // mnemonic
	m addrmode // addressing mode
	c uint8    // base cycle count
	x bool     // +1 cycle when indexing crosses a page
	f func(cpu *CPU, oper uint16)
}

var ops = [256]opdef{
	0x00: {n: "BRK", m: imp, c: 7, f: BRK},
	0x01: {n: "ORA", m: izx, c: 6, f: ORA},
	0x02: {n: "JAM", m: imp, c: 2, f: JAM},
	0x03: {n: "SLO", m: izx, c: 8, f: SLO},
	0x04: {n: "NOP", m: zpg, c: 3, f: NOP},
	0x05: {n: "ORA", m: zpg, c: 3, f: ORA},
	0x06: {n: "ASL", m: zpg, c: 5, f: ASL_mem},
	0x07: {n: "SLO", m: zpg, c: 5, f: SLO},
	0x08: {n: "PHP", m: imp, c: 3, f: PHP},
	0x09: {n: "ORA", m: imm, c: 2, f: ORA},
	0x0A: {n: "ASL", m: acc, c: 2, f: ASL_acc},
	0x0B: {n: "ANC", m: imm, c: 2, f: ANC},
	0x0C: {n: "NOP", m: abs, c: 4, f: NOP},
	0x0D: {n: "ORA", m: abs, c: 4, f: ORA},
	0x0E: {n: "ASL", m: abs, c: 6, f: ASL_mem},
	0x0F: {n: "SLO", m: abs, c: 6, f: SLO},
	0x10: {n: "BPL", m: rel, c: 2, f: branch(Negative, false)},
	0x11: {n: "ORA", m: izy, c: 5, x: true, f: ORA},
	0x12: {n: "JAM", m: imp, c: 2, f: JAM},
	0x13: {n: "SLO", m: izy, c: 8, f: SLO},
	0x14: {n: "NOP", m: zpx, c: 4, f: NOP},
	0x15: {n: "ORA", m: zpx, c: 4, f: ORA},
	0x16: {n: "ASL", m: zpx, c: 6, f: ASL_mem},
	0x17: {n: "SLO", m: zpx, c: 6, f: SLO},
	0x18: {n: "CLC", m: imp, c: 2, f: clearFlag(Carry)},
	0x19: {n: "ORA", m: aby, c: 4, x: true, f: ORA},
	0x1A: {n: "NOP", m: imp, c: 2, f: NOP},
	0x1B: {n: "SLO", m: aby, c: 7, f: SLO},
	0x1C: {n: "NOP", m: abx, c: 4, x: true, f: NOP},
	0x1D: {n: "ORA", m: abx, c: 4, x: true, f: ORA},
	0x1E: {n: "ASL", m: abx, c: 7, f: ASL_mem},
	0x1F: {n: "SLO", m: abx, c: 7, f: SLO},
	0x20: {n: "JSR", m: abs, c: 6, f: JSR},
	0x21: {n: "AND", m: izx, c: 6, f: AND},
	0x22: {n: "JAM", m: imp, c: 2, f: JAM},
	0x23: {n: "RLA", m: izx, c: 8, f: RLA},
	0x24: {n: "BIT", m: zpg, c: 3, f: BIT},
	0x25: {n: "AND", m: zpg, c: 3, f: AND},
	0x26: {n: "ROL", m: zpg, c: 5, f: ROL_mem},
	0x27: {n: "RLA", m: zpg, c: 5, f: RLA},
	0x28: {n: "PLP", m: imp, c: 4, f: PLP},
	0x29: {n: "AND", m: imm, c: 2, f: AND},
	0x2A: {n: "ROL", m: acc, c: 2, f: ROL_acc},
	0x2B: {n: "ANC", m: imm, c: 2, f: ANC},
	0x2C: {n: "BIT", m: abs, c: 4, f: BIT},
	0x2D: {n: "AND", m: abs, c: 4, f: AND},
	0x2E: {n: "ROL", m: abs, c: 6, f: ROL_mem},
	0x2F: {n: "RLA", m: abs, c: 6, f: RLA},
	0x30: {n: "BMI", m: rel, c: 2, f: branch(Negative, true)},
	0x31: {n: "AND", m: izy, c: 5, x: true, f: AND},
	0x32: {n: "JAM", m: imp, c: 2, f: JAM},
	0x33: {n: "RLA", m: izy, c: 8, f: RLA},
	0x34: {n: "NOP", m: zpx, c: 4, f: NOP},
	0x35: {n: "AND", m: zpx, c: 4, f: AND},
	0x36: {n: "ROL", m: zpx, c: 6, f: ROL_mem},
	0x37: {n: "RLA", m: zpx, c: 6, f: RLA},
	0x38: {n: "SEC", m: imp, c: 2, f: setFlag(Carry)},
	0x39: {n: "AND", m: aby, c: 4, x: true, f: AND},
	0x3A: {n: "NOP", m: imp, c: 2, f: NOP},
	0x3B: {n: "RLA", m: aby, c: 7, f: RLA},
	0x3C: {n: "NOP", m: abx, c: 4, x: true, f: NOP},
	0x3D: {n: "AND", m: abx, c: 4, x: true, f: AND},
	0x3E: {n: "ROL", m: abx, c: 7, f: ROL_mem},
	0x3F: {n: "RLA", m: abx, c: 7, f: RLA},
	0x40: {n: "RTI", m: imp, c: 6, f: RTI},
	0x41: {n: "EOR", m: izx, c: 6, f: EOR},
	0x42: {n: "JAM", m: imp, c: 2, f: JAM},
	0x43: {n: "SRE", m: izx, c: 8, f: SRE},
	0x44: {n: "NOP", m: zpg, c: 3, f: NOP},
	0x45: {n: "EOR", m: zpg, c: 3, f: EOR},
	0x46: {n: "LSR", m: zpg, c: 5, f: LSR_mem},
	0x47: {n: "SRE", m: zpg, c: 5, f: SRE},
	0x48: {n: "PHA", m: imp, c: 3, f: PHA},
	0x49: {n: "EOR", m: imm, c: 2, f: EOR},
	0x4A: {n: "LSR", m: acc, c: 2, f: LSR_acc},
	0x4B: {n: "ALR", m: imm, c: 2, f: ALR},
	0x4C: {n: "JMP", m: abs, c: 3, f: JMP},
	0x4D: {n: "EOR", m: abs, c: 4, f: EOR},
	0x4E: {n: "LSR", m: abs, c: 6, f: LSR_mem},
	0x4F: {n: "SRE", m: abs, c: 6, f: SRE},
	0x50: {n: "BVC", m: rel, c: 2, f: branch(Overflow, false)},
	0x51: {n: "EOR", m: izy, c: 5, x: true, f: EOR},
	0x52: {n: "JAM", m: imp, c: 2, f: JAM},
	0x53: {n: "SRE", m: izy, c: 8, f: SRE},
	0x54: {n: "NOP", m: zpx, c: 4, f: NOP},
	0x55: {n: "EOR", m: zpx, c: 4, f: EOR},
	0x56: {n: "LSR", m: zpx, c: 6, f: LSR_mem},
	0x57: {n: "SRE", m: zpx, c: 6, f: SRE},
	0x58: {n: "CLI", m: imp, c: 2, f: clearFlag(Interrupt)},
	0x59: {n: "EOR", m: aby, c: 4, x: true, f: EOR},
	0x5A: {n: "NOP", m: imp, c: 2, f: NOP},
	0x5B: {n: "SRE", m: aby, c: 7, f: SRE},
	0x5C: {n: "NOP", m: abx, c: 4, x: true, f: NOP},
	0x5D: {n: "EOR", m: abx, c: 4, x: true, f: EOR},
	0x5E: {n: "LSR", m: abx, c: 7, f: LSR_mem},
	0x5F: {n: "SRE", m: abx, c: 7, f: SRE},
	0x60: {n: "RTS", m: imp, c: 6, f: RTS},
	0x61: {n: "ADC", m: izx, c: 6, f: ADC},
	0x62: {n: "JAM", m: imp, c: 2, f: JAM},
	0x63: {n: "RRA", m: izx, c: 8, f: RRA},
	0x64: {n: "NOP", m: zpg, c: 3, f: NOP},
	0x65: {n: "ADC", m: zpg, c: 3, f: ADC},
	0x66: {n: "ROR", m: zpg, c: 5, f: ROR_mem},
	0x67: {n: "RRA", m: zpg, c: 5, f: RRA},
	0x68: {n: "PLA", m: imp, c: 4, f: PLA},
	0x69: {n: "ADC", m: imm, c: 2, f: ADC},
	0x6A: {n: "ROR", m: acc, c: 2, f: ROR_acc},
	0x6B: {n: "ARR", m: imm, c: 2, f: ARR},
	0x6C: {n: "JMP", m: ind, c: 5, f: JMP},
	0x6D: {n: "ADC", m: abs, c: 4, f: ADC},
	0x6E: {n: "ROR", m: abs, c: 6, f: ROR_mem},
	0x6F: {n: "RRA", m: abs, c: 6, f: RRA},
	0x70: {n: "BVS", m: rel, c: 2, f: branch(Overflow, true)},
	0x71: {n: "ADC", m: izy, c: 5, x: true, f: ADC},
	0x72: {n: "JAM", m: imp, c: 2, f: JAM},
	0x73: {n: "RRA", m: izy, c: 8, f: RRA},
	0x74: {n: "NOP", m: zpx, c: 4, f: NOP},
	0x75: {n: "ADC", m: zpx, c: 4, f: ADC},
	0x76: {n: "ROR", m: zpx, c: 6, f: ROR_mem},
	0x77: {n: "RRA", m: zpx, c: 6, f: RRA},
	0x78: {n: "SEI", m: imp, c: 2, f: setFlag(Interrupt)},
	0x79: {n: "ADC", m: aby, c: 4, x: true, f: ADC},
	0x7A: {n: "NOP", m: imp, c: 2, f: NOP},
	0x7B: {n: "RRA", m: aby, c: 7, f: RRA},
	0x7C: {n: "NOP", m: abx, c: 4, x: true, f: NOP},
	0x7D: {n: "ADC", m: abx, c: 4, x: true, f: ADC},
	0x7E: {n: "ROR", m: abx, c: 7, f: ROR_mem},
	0x7F: {n: "RRA", m: abx, c: 7, f: RRA},
	0x80: {n: "NOP", m: imm, c: 2, f: NOP},
	0x81: {n: "STA", m: izx, c: 6, f: STA},
	0x82: {n: "NOP", m: imm, c: 2, f: NOP},
	0x83: {n: "SAX", m: izx, c: 6, f: SAX},
	0x84: {n: "STY", m: zpg, c: 3, f: STY},
	0x85: {n: "STA", m: zpg, c: 3, f: STA},
	0x86: {n: "STX", m: zpg, c: 3, f: STX},
	0x87: {n: "SAX", m: zpg, c: 3, f: SAX},
	0x88: {n: "DEY", m: imp, c: 2, f: DEY},
	0x89: {n: "NOP", m: imm, c: 2, f: NOP},
	0x8A: {n: "TXA", m: imp, c: 2, f: TXA},
	0x8B: {n: "ANE", m: imm, c: 2, f: ANE},
	0x8C: {n: "STY", m: abs, c: 4, f: STY},
	0x8D: {n: "STA", m: abs, c: 4, f: STA},
	0x8E: {n: "STX", m: abs, c: 4, f: STX},
	0x8F: {n: "SAX", m: abs, c: 4, f: SAX},
	0x90: {n: "BCC", m: rel, c: 2, f: branch(Carry, false)},
	0x91: {n: "STA", m: izy, c: 6, f: STA},
	0x92: {n: "JAM", m: imp, c: 2, f: JAM},
	0x93: {n: "SHA", m: izy, c: 6, f: SHA},
	0x94: {n: "STY", m: zpx, c: 4, f: STY},
	0x95: {n: "STA", m: zpx, c: 4, f: STA},
	0x96: {n: "STX", m: zpy, c: 4, f: STX},
	0x97: {n: "SAX", m: zpy, c: 4, f: SAX},
	0x98: {n: "TYA", m: imp, c: 2, f: TYA},
	0x99: {n: "STA", m: aby, c: 5, f: STA},
	0x9A: {n: "TXS", m: imp, c: 2, f: TXS},
	0x9B: {n: "TAS", m: aby, c: 5, f: TAS},
	0x9C: {n: "SHY", m: abx, c: 5, f: SHY},
	0x9D: {n: "STA", m: abx, c: 5, f: STA},
	0x9E: {n: "SHX", m: aby, c: 5, f: SHX},
	0x9F: {n: "SHA", m: aby, c: 5, f: SHA},
	0xA0: {n: "LDY", m: imm, c: 2, f: LDY},
	0xA1: {n: "LDA", m: izx, c: 6, f: LDA},
	0xA2: {n: "LDX", m: imm, c: 2, f: LDX},
	0xA3: {n: "LAX", m: izx, c: 6, f: LAX},
	0xA4: {n: "LDY", m: zpg, c: 3, f: LDY},
	0xA5: {n: "LDA", m: zpg, c: 3, f: LDA},
	0xA6: {n: "LDX", m: zpg, c: 3, f: LDX},
	0xA7: {n: "LAX", m: zpg, c: 3, f: LAX},
	0xA8: {n: "TAY", m: imp, c: 2, f: TAY},
	0xA9: {n: "LDA", m: imm, c: 2, f: LDA},
	0xAA: {n: "TAX", m: imp, c: 2, f: TAX},
	0xAB: {n: "LXA", m: imm, c: 2, f: LXA},
	0xAC: {n: "LDY", m: abs, c: 4, f: LDY},
	0xAD: {n: "LDA", m: abs, c: 4, f: LDA},
	0xAE: {n: "LDX", m: abs, c: 4, f: LDX},
	0xAF: {n: "LAX", m: abs, c: 4, f: LAX},
	0xB0: {n: "BCS", m: rel, c: 2, f: branch(Carry, true)},
	0xB1: {n: "LDA", m: izy, c: 5, x: true, f: LDA},
	0xB2: {n: "JAM", m: imp, c: 2, f: JAM},
	0xB3: {n: "LAX", m: izy, c: 5, x: true, f: LAX},
	0xB4: {n: "LDY", m: zpx, c: 4, f: LDY},
	0xB5: {n: "LDA", m: zpx, c: 4, f: LDA},
	0xB6: {n: "LDX", m: zpy, c: 4, f: LDX},
	0xB7: {n: "LAX", m: zpy, c: 4, f: LAX},
	0xB8: {n: "CLV", m: imp, c: 2, f: clearFlag(Overflow)},
	0xB9: {n: "LDA", m: aby, c: 4, x: true, f: LDA},
	0xBA: {n: "TSX", m: imp, c: 2, f: TSX},
	0xBB: {n: "LAS", m: aby, c: 4, x: true, f: LAS},
	0xBC: {n: "LDY", m: abx, c: 4, x: true, f: LDY},
	0xBD: {n: "LDA", m: abx, c: 4, x: true, f: LDA},
	0xBE: {n: "LDX", m: aby, c: 4, x: true, f: LDX},
	0xBF: {n: "LAX", m: aby, c: 4, x: true, f: LAX},
	0xC0: {n: "CPY", m: imm, c: 2, f: CPY},
	0xC1: {n: "CMP", m: izx, c: 6, f: CMP},
	0xC2: {n: "NOP", m: imm, c: 2, f: NOP},
	0xC3: {n: "DCP", m: izx, c: 8, f: DCP},
	0xC4: {n: "CPY", m: zpg, c: 3, f: CPY},
	0xC5: {n: "CMP", m: zpg, c: 3, f: CMP},
	0xC6: {n: "DEC", m: zpg, c: 5, f: DEC},
	0xC7: {n: "DCP", m: zpg, c: 5, f: DCP},
	0xC8: {n: "INY", m: imp, c: 2, f: INY},
	0xC9: {n: "CMP", m: imm, c: 2, f: CMP},
	0xCA: {n: "DEX", m: imp, c: 2, f: DEX},
	0xCB: {n: "SBX", m: imm, c: 2, f: SBX},
	0xCC: {n: "CPY", m: abs, c: 4, f: CPY},
	0xCD: {n: "CMP", m: abs, c: 4, f: CMP},
	0xCE: {n: "DEC", m: abs, c: 6, f: DEC},
	0xCF: {n: "DCP", m: abs, c: 6, f: DCP},
	0xD0: {n: "BNE", m: rel, c: 2, f: branch(Zero, false)},
	0xD1: {n: "CMP", m: izy, c: 5, x: true, f: CMP},
	0xD2: {n: "JAM", m: imp, c: 2, f: JAM},
	0xD3: {n: "DCP", m: izy, c: 8, f: DCP},
	0xD4: {n: "NOP", m: zpx, c: 4, f: NOP},
	0xD5: {n: "CMP", m: zpx, c: 4, f: CMP},
	0xD6: {n: "DEC", m: zpx, c: 6, f: DEC},
	0xD7: {n: "DCP", m: zpx, c: 6, f: DCP},
	0xD8: {n: "CLD", m: imp, c: 2, f: clearFlag(Decimal)},
	0xD9: {n: "CMP", m: aby, c: 4, x: true, f: CMP},
	0xDA: {n: "NOP", m: imp, c: 2, f: NOP},
	0xDB: {n: "DCP", m: aby, c: 7, f: DCP},
	0xDC: {n: "NOP", m: abx, c: 4, x: true, f: NOP},
	0xDD: {n: "CMP", m: abx, c: 4, x: true, f: CMP},
	0xDE: {n: "DEC", m: abx, c: 7, f: DEC},
	0xDF: {n: "DCP", m: abx, c: 7, f: DCP},
	0xE0: {n: "CPX", m: imm, c: 2, f: CPX},
	0xE1: {n: "SBC", m: izx, c: 6, f: SBC},
	0xE2: {n: "NOP", m: imm, c: 2, f: NOP},
	0xE3: {n: "ISC", m: izx, c: 8, f: ISC},
	0xE4: {n: "CPX", m: zpg, c: 3, f: CPX},
	0xE5: {n: "SBC", m: zpg, c: 3, f: SBC},
	0xE6: {n: "INC", m: zpg, c: 5, f: INC},
	0xE7: {n: "ISC", m: zpg, c: 5, f: ISC},
	0xE8: {n: "INX", m: imp, c: 2, f: INX},
	0xE9: {n: "SBC", m: imm, c: 2, f: SBC},
	0xEA: {n: "NOP", m: imp, c: 2, f: NOP},
	0xEB: {n: "SBC", m: imm, c: 2, f: SBC},
	0xEC: {n: "CPX", m: abs, c: 4, f: CPX},
	0xED: {n: "SBC", m: abs, c: 4, f: SBC},
	0xEE: {n: "INC", m: abs, c: 6, f: INC},
	0xEF: {n: "ISC", m: abs, c: 6, f: ISC},
	0xF0: {n: "BEQ", m: rel, c: 2, f: branch(Zero, true)},
	0xF1: {n: "SBC", m: izy, c: 5, x: true, f: SBC},
	0xF2: {n: "JAM", m: imp, c: 2, f: JAM},
	0xF3: {n: "ISC", m: izy, c: 8, f: ISC},
	0xF4: {n: "NOP", m: zpx, c: 4, f: NOP},
	0xF5: {n: "SBC", m: zpx, c: 4, f: SBC},
	0xF6: {n: "INC", m: zpx, c: 6, f: INC},
	0xF7: {n: "ISC", m: zpx, c: 6, f: ISC},
	0xF8: {n: "SED", m: imp, c: 2, f: setFlag(Decimal)},
	0xF9: {n: "SBC", m: aby, c: 4, x: true, f: SBC},
	0xFA: {n: "NOP", m: imp, c: 2, f: NOP},
	0xFB: {n: "ISC", m: aby, c: 7, f: ISC},
	0xFC: {n: "NOP", m: abx, c: 4, x: true, f: NOP},
	0xFD: {n: "SBC", m: abx, c: 4, x: true, f: SBC},
	0xFE: {n: "INC", m: abx, c: 7, f: INC},
	0xFF: {n: "ISC", m: abx, c: 7, f: ISC},
}

func pageCrossed(a, b uint16) bool {
	return a&0xFF00 != b&0xFF00
}

// operand fetches the operand bytes following the opcode and returns the
// effective address, and whether indexing crossed a page boundary.
func (cpu *CPU) operand(m addrmode) (oper uint16, crossed bool) {
	switch m {
	case imp, acc:
	case imm:
		oper = cpu.PC
		cpu.PC++
	case zpg:
		oper = uint16(cpu.Read8(cpu.PC))
		cpu.PC++
	case zpx:
		oper = uint16(cpu.Read8(cpu.PC) + cpu.X)
		cpu.PC++
	case zpy:
		oper = uint16(cpu.Read8(cpu.PC) + cpu.Y)
		cpu.PC++
	case rel:
		off := int8(cpu.Read8(cpu.PC))
		cpu.PC++
		oper = cpu.PC + uint16(off)
	case abs:
		oper = cpu.Read16(cpu.PC)
		cpu.PC += 2
	case abx:
		base := cpu.Read16(cpu.PC)
		cpu.PC += 2
		oper = base + uint16(cpu.X)
		crossed = pageCrossed(base, oper)
	case aby:
		base := cpu.Read16(cpu.PC)
		cpu.PC += 2
		oper = base + uint16(cpu.Y)
		crossed = pageCrossed(base, oper)
	case ind:
		// The high byte isn't fetched across page boundaries.
		ptr := cpu.Read16(cpu.PC)
		cpu.PC += 2
		lo := cpu.Read8(ptr)
		hi := cpu.Read8(ptr&0xFF00 | uint16(uint8(ptr)+1))
		oper = uint16(hi)<<8 | uint16(lo)
	case izx:
		zp := cpu.Read8(cpu.PC) + cpu.X
		cpu.PC++
		oper = cpu.zpRead16(zp)
	case izy:
		zp := cpu.Read8(cpu.PC)
		cpu.PC++
		base := cpu.zpRead16(zp)
		oper = base + uint16(cpu.Y)
		crossed = pageCrossed(base, oper)
	}
	return
}

// zpRead16 reads a 16-bit pointer in zero page, wrapping within it.
func (cpu *CPU) zpRead16(zp uint8) uint16 {
	lo := cpu.Read8(uint16(zp))
	hi := cpu.Read8(uint16(zp + 1))
	return uint16(hi)<<8 | uint16(lo)
}

/* helpers */

func (cpu *CPU) add(val uint8) {
	carry := uint16(cpu.P & Carry)
	sum := uint16(cpu.A) + uint16(val) + carry
	cpu.P.checkCV(cpu.A, val, sum)
	cpu.A = uint8(sum)
	cpu.P.checkNZ(cpu.A)
}

func (cpu *CPU) compare(reg, val uint8) {
	cpu.P.writeFlag(Carry, reg >= val)
	cpu.P.checkNZ(reg - val)
}

func (cpu *CPU) asl(val uint8) uint8 {
	cpu.P.writeFlag(Carry, val&0x80 != 0)
	val <<= 1
	cpu.P.checkNZ(val)
	return val
}

func (cpu *CPU) lsr(val uint8) uint8 {
	cpu.P.writeFlag(Carry, val&0x01 != 0)
	val >>= 1
	cpu.P.checkNZ(val)
	return val
}

func (cpu *CPU) rol(val uint8) uint8 {
	carry := uint8(cpu.P & Carry)
	cpu.P.writeFlag(Carry, val&0x80 != 0)
	val = val<<1 | carry
	cpu.P.checkNZ(val)
	return val
}

func (cpu *CPU) ror(val uint8) uint8 {
	carry := uint8(cpu.P&Carry) << 7
	cpu.P.writeFlag(Carry, val&0x01 != 0)
	val = val>>1 | carry
	cpu.P.checkNZ(val)
	return val
}

// rmw applies a read-modify-write operation to memory and returns the
// written value.
func (cpu *CPU) rmw(oper uint16, f func(uint8) uint8) uint8 {
	val := f(cpu.Read8(oper))
	cpu.Write8(oper, val)
	return val
}

// sh implements the unstable SHA/SHX/SHY/TAS stores: val is ANDed with the
// high byte of the base address plus one, which also replaces the high byte
// of the target address when indexing crosses a page.
func (cpu *CPU) sh(oper uint16, idx, val uint8) {
	base := oper - uint16(idx)
	val &= uint8(base>>8) + 1
	if pageCrossed(base, oper) {
		oper = uint16(val)<<8 | oper&0xFF
	}
	cpu.Write8(oper, val)
}

/* official opcodes */

func ADC(cpu *CPU, oper uint16) { cpu.add(cpu.Read8(oper)) }
func SBC(cpu *CPU, oper uint16) { cpu.add(^cpu.Read8(oper)) }

func AND(cpu *CPU, oper uint16) {
	cpu.A &= cpu.Read8(oper)
	cpu.P.checkNZ(cpu.A)
}

func ORA(cpu *CPU, oper uint16) {
	cpu.A |= cpu.Read8(oper)
	cpu.P.checkNZ(cpu.A)
}

func EOR(cpu *CPU, oper uint16) {
	cpu.A ^= cpu.Read8(oper)
	cpu.P.checkNZ(cpu.A)
}

func ASL_acc(cpu *CPU, _ uint16)    { cpu.A = cpu.asl(cpu.A) }
func ASL_mem(cpu *CPU, oper uint16) { cpu.rmw(oper, cpu.asl) }
func LSR_acc(cpu *CPU, _ uint16)    { cpu.A = cpu.lsr(cpu.A) }
func LSR_mem(cpu *CPU, oper uint16) { cpu.rmw(oper, cpu.lsr) }
func ROL_acc(cpu *CPU, _ uint16)    { cpu.A = cpu.rol(cpu.A) }
func ROL_mem(cpu *CPU, oper uint16) { cpu.rmw(oper, cpu.rol) }
func ROR_acc(cpu *CPU, _ uint16)    { cpu.A = cpu.ror(cpu.A) }
func ROR_mem(cpu *CPU, oper uint16) { cpu.rmw(oper, cpu.ror) }

func BIT(cpu *CPU, oper uint16) {
	val := cpu.Read8(oper)
	cpu.P.clearFlags(Zero | Overflow | Negative)
	cpu.P |= P(val & 0b11000000)
	if cpu.A&val == 0 {
		cpu.P.setFlags(Zero)
	}
}

func branch(flag P, val bool) func(*CPU, uint16) {
	return func(cpu *CPU, oper uint16) {
		if cpu.P.hasFlag(flag) != val {
			return
		}
		cpu.extra++
		if pageCrossed(cpu.PC, oper) {
			cpu.extra++
		}
		cpu.PC = oper
	}
}

func BRK(cpu *CPU, _ uint16) {
	cpu.push16(cpu.PC + 1)

	p := cpu.P
	p.setFlags(Break | Reserved)
	cpu.push8(uint8(p))
	cpu.P.setFlags(Interrupt)

	// A pending NMI hijacks the BRK.
	vector := IRQVector
	if cpu.nmiPending {
		cpu.nmiPending = false
		vector = NMIVector
	}
	cpu.PC = cpu.Read16(vector)
}

func clearFlag(flag P) func(*CPU, uint16) {
	return func(cpu *CPU, _ uint16) { cpu.P.clearFlags(flag) }
}

func setFlag(flag P) func(*CPU, uint16) {
	return func(cpu *CPU, _ uint16) { cpu.P.setFlags(flag) }
}

func CMP(cpu *CPU, oper uint16) { cpu.compare(cpu.A, cpu.Read8(oper)) }
func CPX(cpu *CPU, oper uint16) { cpu.compare(cpu.X, cpu.Read8(oper)) }
func CPY(cpu *CPU, oper uint16) { cpu.compare(cpu.Y, cpu.Read8(oper)) }

func DEC(cpu *CPU, oper uint16) {
	val := cpu.Read8(oper) - 1
	cpu.Write8(oper, val)
	cpu.P.checkNZ(val)
}

func INC(cpu *CPU, oper uint16) {
	val := cpu.Read8(oper) + 1
	cpu.Write8(oper, val)
	cpu.P.checkNZ(val)
}

func DEX(cpu *CPU, _ uint16) { cpu.X--; cpu.P.checkNZ(cpu.X) }
func DEY(cpu *CPU, _ uint16) { cpu.Y--; cpu.P.checkNZ(cpu.Y) }
func INX(cpu *CPU, _ uint16) { cpu.X++; cpu.P.checkNZ(cpu.X) }
func INY(cpu *CPU, _ uint16) { cpu.Y++; cpu.P.checkNZ(cpu.Y) }

func JMP(cpu *CPU, oper uint16) { cpu.PC = oper }

func JSR(cpu *CPU, oper uint16) {
	cpu.push16(cpu.PC - 1)
	cpu.PC = oper
}

func RTS(cpu *CPU, _ uint16) {
	cpu.PC = cpu.pull16() + 1
}

func RTI(cpu *CPU, _ uint16) {
	p := P(cpu.pull8())
	p.clearFlags(Break)
	p.setFlags(Reserved)
	cpu.P = p
	cpu.PC = cpu.pull16()
}

func LDA(cpu *CPU, oper uint16) { cpu.A = cpu.Read8(oper); cpu.P.checkNZ(cpu.A) }
func LDX(cpu *CPU, oper uint16) { cpu.X = cpu.Read8(oper); cpu.P.checkNZ(cpu.X) }
func LDY(cpu *CPU, oper uint16) { cpu.Y = cpu.Read8(oper); cpu.P.checkNZ(cpu.Y) }

func STA(cpu *CPU, oper uint16) { cpu.Write8(oper, cpu.A) }
func STX(cpu *CPU, oper uint16) { cpu.Write8(oper, cpu.X) }
func STY(cpu *CPU, oper uint16) { cpu.Write8(oper, cpu.Y) }

func NOP(*CPU, uint16) {}

func PHA(cpu *CPU, _ uint16) { cpu.push8(cpu.A) }

func PHP(cpu *CPU, _ uint16) {
	p := cpu.P
	p.setFlags(Break | Reserved)
	cpu.push8(uint8(p))
}

func PLA(cpu *CPU, _ uint16) {
	cpu.A = cpu.pull8()
	cpu.P.checkNZ(cpu.A)
}

func PLP(cpu *CPU, _ uint16) {
	p := P(cpu.pull8())
	p.clearFlags(Break)
	p.setFlags(Reserved)
	cpu.P = p
}

func TAX(cpu *CPU, _ uint16) { cpu.X = cpu.A; cpu.P.checkNZ(cpu.X) }
func TAY(cpu *CPU, _ uint16) { cpu.Y = cpu.A; cpu.P.checkNZ(cpu.Y) }
func TSX(cpu *CPU, _ uint16) { cpu.X = cpu.SP; cpu.P.checkNZ(cpu.X) }
func TXA(cpu *CPU, _ uint16) { cpu.A = cpu.X; cpu.P.checkNZ(cpu.A) }
func TYA(cpu *CPU, _ uint16) { cpu.A = cpu.Y; cpu.P.checkNZ(cpu.A) }
func TXS(cpu *CPU, _ uint16) { cpu.SP = cpu.X }

/* unofficial opcodes */

func ALR(cpu *CPU, oper uint16) {
	cpu.A = cpu.lsr(cpu.A & cpu.Read8(oper))
}

func ANC(cpu *CPU, oper uint16) {
	AND(cpu, oper)
	cpu.P.writeFlag(Carry, cpu.P.hasFlag(Negative))
}

func ANE(cpu *CPU, oper uint16) {
	const magic = 0xEE
	cpu.A = (cpu.A | magic) & cpu.X & cpu.Read8(oper)
	cpu.P.checkNZ(cpu.A)
}

func ARR(cpu *CPU, oper uint16) {
	carry := uint8(cpu.P&Carry) << 7
	cpu.A = (cpu.A&cpu.Read8(oper))>>1 | carry
	cpu.P.checkNZ(cpu.A)
	cpu.P.writeFlag(Carry, cpu.A&0x40 != 0)
	cpu.P.writeFlag(Overflow, (cpu.A>>6^cpu.A>>5)&0x01 != 0)
}

func DCP(cpu *CPU, oper uint16) {
	val := cpu.rmw(oper, func(v uint8) uint8 { return v - 1 })
	cpu.compare(cpu.A, val)
}

func ISC(cpu *CPU, oper uint16) {
	val := cpu.rmw(oper, func(v uint8) uint8 { return v + 1 })
	cpu.add(^val)
}

func JAM(cpu *CPU, _ uint16) {
	// Real hardware locks up; we keep running.
	log.ModCPU.WarnZ("JAM opcode executed as NOP").
		Hex16("PC", cpu.PC-1).
		End()
}

func LAS(cpu *CPU, oper uint16) {
	cpu.A = cpu.Read8(oper) & cpu.SP
	cpu.X = cpu.A
	cpu.SP = cpu.A
	cpu.P.checkNZ(cpu.A)
}

func LAX(cpu *CPU, oper uint16) {
	cpu.A = cpu.Read8(oper)
	cpu.X = cpu.A
	cpu.P.checkNZ(cpu.A)
}

func LXA(cpu *CPU, oper uint16) {
	const magic = 0xEE
	cpu.A = (cpu.A | magic) & cpu.Read8(oper)
	cpu.X = cpu.A
	cpu.P.checkNZ(cpu.A)
}

func RLA(cpu *CPU, oper uint16) {
	cpu.A &= cpu.rmw(oper, cpu.rol)
	cpu.P.checkNZ(cpu.A)
}

func RRA(cpu *CPU, oper uint16) {
	cpu.add(cpu.rmw(oper, cpu.ror))
}

func SAX(cpu *CPU, oper uint16) { cpu.Write8(oper, cpu.A&cpu.X) }

func SBX(cpu *CPU, oper uint16) {
	val := cpu.Read8(oper)
	ax := cpu.A & cpu.X
	cpu.P.writeFlag(Carry, ax >= val)
	cpu.X = ax - val
	cpu.P.checkNZ(cpu.X)
}

func SHA(cpu *CPU, oper uint16) { cpu.sh(oper, cpu.Y, cpu.A&cpu.X) }
func SHX(cpu *CPU, oper uint16) { cpu.sh(oper, cpu.Y, cpu.X) }
func SHY(cpu *CPU, oper uint16) { cpu.sh(oper, cpu.X, cpu.Y) }

func TAS(cpu *CPU, oper uint16) {
	cpu.SP = cpu.A & cpu.X
	cpu.sh(oper, cpu.Y, cpu.SP)
}

func SLO(cpu *CPU, oper uint16) {
	cpu.A |= cpu.rmw(oper, cpu.asl)
	cpu.P.checkNZ(cpu.A)
}

func SRE(cpu *CPU, oper uint16) {
	cpu.A ^= cpu.rmw(oper, cpu.lsr)
	cpu.P.checkNZ(cpu.A)
}

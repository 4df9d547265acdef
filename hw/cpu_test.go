package hw

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"nescore/hw/hwdefs"
)

func TestOpcodeTable(t *testing.T) {
	jams := 0
	for i, op := range ops {
		if op.n == "" || op.f == nil || op.c == 0 {
			t.Errorf("opcode 0x%02X is not fully defined: %+v", i, op)
		}
		if op.n == "JAM" {
			jams++
		}
	}
	if jams != 12 {
		t.Errorf("got %d JAM opcodes, want 12", jams)
	}
}

func TestCycleCounts(t *testing.T) {
	tests := []struct {
		name  string
		prog  []byte
		setup func(c *CPU)
		want  int
	}{
		{name: "LDA imm", prog: []byte{0xA9, 0x01}, want: 2},
		{name: "LDA zpg", prog: []byte{0xA5, 0x10}, want: 3},
		{name: "LDA abs,X", prog: []byte{0xBD, 0x00, 0x02}, setup: func(c *CPU) { c.X = 1 }, want: 4},
		{name: "LDA abs,X page cross", prog: []byte{0xBD, 0xFF, 0x02}, setup: func(c *CPU) { c.X = 1 }, want: 5},
		{name: "LDA abs,Y page cross", prog: []byte{0xB9, 0xFF, 0x02}, setup: func(c *CPU) { c.Y = 1 }, want: 5},
		{name: "STA abs,X", prog: []byte{0x9D, 0x00, 0x02}, setup: func(c *CPU) { c.X = 1 }, want: 5},
		{name: "STA abs,X page cross", prog: []byte{0x9D, 0xFF, 0x02}, setup: func(c *CPU) { c.X = 1 }, want: 5},
		{
			name: "LDA (zp),Y page cross",
			prog: []byte{0xB1, 0x10},
			setup: func(c *CPU) {
				c.RAM.Data[0x10] = 0xFF
				c.RAM.Data[0x11] = 0x02
				c.Y = 1
			},
			want: 6,
		},
		{name: "LDA (zp,X)", prog: []byte{0xA1, 0x10}, want: 6},
		{name: "SLO (zp),Y", prog: []byte{0x13, 0x10}, want: 8},
		{name: "INC abs,X", prog: []byte{0xFE, 0x00, 0x02}, want: 7},
		{name: "ASL acc", prog: []byte{0x0A}, want: 2},
		{name: "NOP abs,X page cross", prog: []byte{0x1C, 0xFF, 0x02}, setup: func(c *CPU) { c.X = 1 }, want: 5},
		{name: "BNE not taken", prog: []byte{0xD0, 0x10}, setup: func(c *CPU) { c.P.setFlags(Zero) }, want: 2},
		{name: "BNE taken", prog: []byte{0xD0, 0x10}, setup: func(c *CPU) { c.P.clearFlags(Zero) }, want: 3},
		{name: "BNE taken page cross", prog: []byte{0xD0, 0xFC}, setup: func(c *CPU) { c.P.clearFlags(Zero) }, want: 4},
		{name: "JMP abs", prog: []byte{0x4C, 0x00, 0x80}, want: 3},
		{name: "JMP ind", prog: []byte{0x6C, 0x00, 0x02}, want: 5},
		{name: "JSR", prog: []byte{0x20, 0x00, 0x80}, want: 6},
		{name: "BRK", prog: []byte{0x00}, want: 7},
		{name: "PHA", prog: []byte{0x48}, want: 3},
		{name: "PLA", prog: []byte{0x68}, want: 4},
		{name: "JAM", prog: []byte{0x02}, want: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cpu := newTestCPU(t, tt.prog...)
			if tt.setup != nil {
				tt.setup(cpu)
			}
			if got := cpu.Step(); got != tt.want {
				t.Errorf("Step() = %d cycles, want %d", got, tt.want)
			}
			if cpu.Cycles != int64(tt.want) {
				t.Errorf("Cycles = %d, want %d", cpu.Cycles, tt.want)
			}
		})
	}
}

func TestJAMContinues(t *testing.T) {
	cpu := newTestCPU(t, 0x02, 0xE8) // JAM; INX
	cpu.Step()
	cpu.Step()
	if cpu.X != 1 || cpu.PC != testReset+2 {
		t.Errorf("after JAM; INX: X = %d PC = %04X, want X = 1 PC = %04X", cpu.X, cpu.PC, testReset+2)
	}
}

func TestNMI(t *testing.T) {
	cpu := newTestCPU(t, 0xEA, 0xEA)
	cpu.SetNMI(true)

	if got := cpu.Step(); got != 7 {
		t.Errorf("NMI entry took %d cycles, want 7", got)
	}
	if cpu.PC != testNMI {
		t.Errorf("PC = %04X, want %04X", cpu.PC, testNMI)
	}
	if cpu.SP != 0xFA {
		t.Errorf("SP = %02X, want FA", cpu.SP)
	}
	stack := cpu.RAM.Data[0x1FB:0x1FE]
	if diff := cmp.Diff([]byte{0x24, 0x00, 0x80}, stack); diff != "" {
		t.Errorf("stack mismatch (-want +got):\n%s", diff)
	}
	if !cpu.P.hasFlag(Interrupt) {
		t.Errorf("I flag not set after NMI")
	}

	// The line is still high, no new edge.
	cpu.SetNMI(true)
	if got := cpu.Step(); got != 2 {
		t.Errorf("Step() = %d cycles, want 2 (no new NMI)", got)
	}
	if cpu.PC != testNMI+1 {
		t.Errorf("PC = %04X, want %04X (handler NOP executed)", cpu.PC, testNMI+1)
	}

	// A low then high transition is a new edge.
	cpu.SetNMI(false)
	cpu.SetNMI(true)
	if got := cpu.Step(); got != 7 {
		t.Errorf("Step() = %d cycles, want 7 (second NMI)", got)
	}
}

func TestIRQ(t *testing.T) {
	cpu := newTestCPU(t, 0x58, 0xEA) // CLI; NOP
	cpu.SetIRQ(true)

	// I is set after reset.
	if got := cpu.Step(); got != 2 {
		t.Fatalf("CLI took %d cycles, want 2", got)
	}
	if got := cpu.Step(); got != 7 {
		t.Fatalf("IRQ entry took %d cycles, want 7", got)
	}
	if cpu.PC != testIRQ {
		t.Errorf("PC = %04X, want %04X", cpu.PC, testIRQ)
	}
	if cpu.RAM.Data[0x1FB]&uint8(Break) != 0 {
		t.Errorf("B flag pushed by IRQ")
	}

	// IRQ is level triggered, but I is now set.
	cpu.SetIRQ(false)
	if cpu.HasIRQSource(hwdefs.External) {
		t.Errorf("external IRQ source still set")
	}
}

func TestBRK(t *testing.T) {
	cpu := newTestCPU(t, 0x00, 0xFF)
	cpu.Step()

	if cpu.PC != testIRQ {
		t.Errorf("PC = %04X, want %04X", cpu.PC, testIRQ)
	}
	stack := cpu.RAM.Data[0x1FB:0x1FE]
	if diff := cmp.Diff([]byte{0x34, 0x02, 0x80}, stack); diff != "" {
		t.Errorf("stack mismatch (-want +got):\n%s", diff)
	}
}

func TestJMPIndirectPageWrap(t *testing.T) {
	cpu := newTestCPU(t, 0x6C, 0xFF, 0x02) // JMP ($02FF)
	cpu.RAM.Data[0x2FF] = 0x34
	cpu.RAM.Data[0x200] = 0x12
	cpu.RAM.Data[0x300] = 0x56
	cpu.Step()

	if cpu.PC != 0x1234 {
		t.Errorf("PC = %04X, want 1234", cpu.PC)
	}
}

func TestArithmetic(t *testing.T) {
	tests := []struct {
		name   string
		prog   []byte
		a      uint8
		carry  bool
		wantA  uint8
		wantP  P
		wantPm P // flags checked
	}{
		{"ADC overflow", []byte{0x69, 0x50}, 0x50, false, 0xA0, Overflow | Negative, Carry | Overflow | Negative | Zero},
		{"ADC carry", []byte{0x69, 0x01}, 0xFF, false, 0x00, Carry | Zero, Carry | Overflow | Negative | Zero},
		{"SBC borrow", []byte{0xE9, 0xF0}, 0x50, true, 0x60, 0, Carry | Overflow | Negative | Zero},
		{"SBC no borrow", []byte{0xE9, 0x10}, 0x50, true, 0x40, Carry, Carry | Overflow | Negative | Zero},
		{"SBC unofficial", []byte{0xEB, 0x10}, 0x50, true, 0x40, Carry, Carry | Overflow | Negative | Zero},
		{"ADC decimal ignored", []byte{0xF8, 0x69, 0x09}, 0x09, false, 0x12, 0, Carry | Zero},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cpu := newTestCPU(t, tt.prog...)
			cpu.A = tt.a
			cpu.P.writeFlag(Carry, tt.carry)
			for cpu.PC < testReset+uint16(len(tt.prog)) {
				cpu.Step()
			}
			if cpu.A != tt.wantA {
				t.Errorf("A = %02X, want %02X", cpu.A, tt.wantA)
			}
			if got := cpu.P & tt.wantPm; got != tt.wantP {
				t.Errorf("P = %s, want %s", got, tt.wantP)
			}
		})
	}
}

func TestUnofficialOpcodes(t *testing.T) {
	tests := []struct {
		name  string
		prog  []byte
		setup func(c *CPU)
		check func(t *testing.T, c *CPU)
	}{
		{
			name:  "LAX",
			prog:  []byte{0xA7, 0x10},
			setup: func(c *CPU) { c.RAM.Data[0x10] = 0x8F },
			check: func(t *testing.T, c *CPU) {
				if c.A != 0x8F || c.X != 0x8F || !c.P.hasFlag(Negative) {
					t.Errorf("A = %02X X = %02X P = %s", c.A, c.X, c.P)
				}
			},
		},
		{
			name:  "SAX",
			prog:  []byte{0x87, 0x10},
			setup: func(c *CPU) { c.A, c.X = 0xF0, 0x3C },
			check: func(t *testing.T, c *CPU) {
				if got := c.RAM.Data[0x10]; got != 0x30 {
					t.Errorf("mem = %02X, want 30", got)
				}
			},
		},
		{
			name:  "DCP",
			prog:  []byte{0xC7, 0x10},
			setup: func(c *CPU) { c.A = 0x41; c.RAM.Data[0x10] = 0x42 },
			check: func(t *testing.T, c *CPU) {
				if c.RAM.Data[0x10] != 0x41 || !c.P.hasFlag(Zero) || !c.P.hasFlag(Carry) {
					t.Errorf("mem = %02X P = %s", c.RAM.Data[0x10], c.P)
				}
			},
		},
		{
			name:  "ISC",
			prog:  []byte{0xE7, 0x10},
			setup: func(c *CPU) { c.A = 0x10; c.P.setFlags(Carry); c.RAM.Data[0x10] = 0x0F },
			check: func(t *testing.T, c *CPU) {
				if c.RAM.Data[0x10] != 0x10 || c.A != 0x00 || !c.P.hasFlag(Zero) {
					t.Errorf("mem = %02X A = %02X P = %s", c.RAM.Data[0x10], c.A, c.P)
				}
			},
		},
		{
			name:  "SLO",
			prog:  []byte{0x07, 0x10},
			setup: func(c *CPU) { c.A = 0x01; c.RAM.Data[0x10] = 0x81 },
			check: func(t *testing.T, c *CPU) {
				if c.RAM.Data[0x10] != 0x02 || c.A != 0x03 || !c.P.hasFlag(Carry) {
					t.Errorf("mem = %02X A = %02X P = %s", c.RAM.Data[0x10], c.A, c.P)
				}
			},
		},
		{
			name:  "ANC",
			prog:  []byte{0x0B, 0x80},
			setup: func(c *CPU) { c.A = 0xFF },
			check: func(t *testing.T, c *CPU) {
				if c.A != 0x80 || !c.P.hasFlag(Carry) || !c.P.hasFlag(Negative) {
					t.Errorf("A = %02X P = %s", c.A, c.P)
				}
			},
		},
		{
			name:  "SBX",
			prog:  []byte{0xCB, 0x02},
			setup: func(c *CPU) { c.A, c.X = 0x0F, 0xFF },
			check: func(t *testing.T, c *CPU) {
				if c.X != 0x0D || !c.P.hasFlag(Carry) {
					t.Errorf("X = %02X P = %s", c.X, c.P)
				}
			},
		},
		{
			name:  "SHX page cross",
			prog:  []byte{0x9E, 0xFF, 0x02},
			setup: func(c *CPU) { c.X, c.Y = 0xFF, 0x01 },
			check: func(t *testing.T, c *CPU) {
				// val = X & (0x02+1) = 0x03, high byte replaced.
				if got := c.RAM.Data[0x300&0x7FF]; got != 0x03 {
					t.Errorf("mem[$0300] = %02X, want 03", got)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cpu := newTestCPU(t, tt.prog...)
			tt.setup(cpu)
			cpu.Step()
			tt.check(t, cpu)
		})
	}
}

func TestStackWrap(t *testing.T) {
	cpu := newTestCPU(t, 0x48, 0x68) // PHA; PLA
	cpu.SP = 0x00
	cpu.A = 0x42
	cpu.Step()
	if cpu.SP != 0xFF || cpu.RAM.Data[0x100] != 0x42 {
		t.Fatalf("after PHA: SP = %02X mem[$0100] = %02X", cpu.SP, cpu.RAM.Data[0x100])
	}
	cpu.A = 0
	cpu.Step()
	if cpu.SP != 0x00 || cpu.A != 0x42 {
		t.Fatalf("after PLA: SP = %02X A = %02X", cpu.SP, cpu.A)
	}
}

func TestRAMMirroring(t *testing.T) {
	cpu := newTestCPU(t)
	for _, addr := range []uint16{0x0000, 0x0800, 0x1000, 0x1800} {
		cpu.Write8(addr+0x42, uint8(addr>>8)+1)
		for _, mirror := range []uint16{0x0042, 0x0842, 0x1042, 0x1842} {
			if got, want := cpu.Read8(mirror), uint8(addr>>8)+1; got != want {
				t.Errorf("write at %04X: Read8(%04X) = %02X, want %02X", addr+0x42, mirror, got, want)
			}
		}
	}
}

func TestReset(t *testing.T) {
	cpu := newTestCPU(t, 0xEA)
	if cpu.PC != testReset || cpu.SP != 0xFD || cpu.P != 0x24 {
		t.Fatalf("power up: PC = %04X SP = %02X P = %02X", cpu.PC, cpu.SP, uint8(cpu.P))
	}

	cpu.A = 0x12
	cpu.RAM.Data[0x10] = 0x34
	cpu.Reset(true)
	if cpu.SP != 0xFA || cpu.A != 0x12 || cpu.RAM.Data[0x10] != 0x34 || !cpu.P.hasFlag(Interrupt) {
		t.Errorf("soft reset: SP = %02X A = %02X mem = %02X P = %s", cpu.SP, cpu.A, cpu.RAM.Data[0x10], cpu.P)
	}

	cpu.Reset(false)
	if cpu.SP != 0xFD || cpu.A != 0 || cpu.RAM.Data[0x10] != 0 || cpu.Cycles != 0 {
		t.Errorf("hard reset: SP = %02X A = %02X mem = %02X cycles = %d", cpu.SP, cpu.A, cpu.RAM.Data[0x10], cpu.Cycles)
	}
}

func TestOAMDMA(t *testing.T) {
	tests := []struct {
		name string
		prog []byte
		want int // cycles of the STA $4014 step
	}{
		// LDA #2 (2 cycles), then the write starts on an even cycle.
		{"even", []byte{0xA9, 0x02, 0x8D, 0x14, 0x40}, 4 + 513},
		// LDA $10 (3 cycles), then the write starts on an odd cycle.
		{"odd", []byte{0xA5, 0x10, 0x8D, 0x14, 0x40}, 4 + 514},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cpu := newTestCPU(t, tt.prog...)
			cpu.RAM.Data[0x10] = 0x02
			for i := range 0x100 {
				cpu.RAM.Data[0x200+i] = uint8(i)
			}
			cpu.PPU.oamAddr = 0x10

			cpu.Step()
			if got := cpu.Step(); got != tt.want {
				t.Errorf("STA $4014 took %d cycles, want %d", got, tt.want)
			}
			for i := range 0x100 {
				if got, want := cpu.PPU.oam[uint8(0x10+i)], uint8(i); got != want {
					t.Fatalf("oam[%02X] = %02X, want %02X", uint8(0x10+i), got, want)
				}
			}
		})
	}
}

func TestDisasm(t *testing.T) {
	cpu := newTestCPU(t,
		0xA9, 0x32, // LDA #$32
		0x8D, 0x00, 0x20, // STA PPUCTRL
		0xB1, 0x10, // LDA ($10),Y
		0xD0, 0xFE, // BNE $8007
		0x0A, // ASL A
	)

	tests := []struct {
		pc   uint16
		want string
	}{
		{0x8000, "LDA #$32"},
		{0x8002, "STA PPUCTRL"},
		{0x8005, "LDA ($10),Y"},
		{0x8007, "BNE $8007"},
		{0x8009, "ASL A"},
	}
	for _, tt := range tests {
		d := cpu.Disasm(tt.pc)
		if got := strings.TrimSpace(d.Opcode + " " + d.Oper); got != tt.want {
			t.Errorf("Disasm(%04X) = %q, want %q", tt.pc, got, tt.want)
		}
	}
}

func TestTrace(t *testing.T) {
	cpu := newTestCPU(t, 0xA9, 0x32, 0xEA)

	var buf bytes.Buffer
	cpu.SetTraceOutput(&buf)
	cpu.Step()
	cpu.Step()
	cpu.SetTraceOutput(nil)
	cpu.Step()

	want := []string{
		`8000  A9 32     LDA #$32                         A:00 X:00 Y:00 P:24 S:FD PPU:0  ,0   0`,
		`8002  EA        NOP                              A:32 X:00 Y:00 P:24 S:FD PPU:0  ,0   2`,
	}
	if diff := cmp.Diff(strings.Join(want, "\n")+"\n", buf.String()); diff != "" {
		t.Errorf("trace mismatch (-want +got):\n%s", diff)
	}
}

package hw

import (
	"io"

	"nescore/emu/log"
	"nescore/hw/apu"
	"nescore/hw/hwdefs"
	"nescore/hw/hwio"
	"nescore/hw/mappers"
	"nescore/hw/snapshot"
)

// Locations reserved for vector pointers.
const (
	NMIVector   = uint16(0xFFFA) // Non-Maskable Interrupt
	ResetVector = uint16(0xFFFC) // Reset
	IRQVector   = uint16(0xFFFE) // Interrupt Request
)

const interruptCycles = 7

type CPU struct {
	Bus *hwio.Table

	RAM hwio.Mem

	PPU    *PPU // non-nil when there's a PPU.
	PPUDMA ppuDMA
	APU    *apu.APU
	Ports  InputPorts

	cart mappers.Mapper // nil when no cartridge is inserted

	// Non-nil when execution tracing is enabled.
	tracer *tracer

	Cycles int64 // CPU cycles

	// cpu registers
	A, X, Y, SP uint8
	PC          uint16
	P           P

	stall int64  // cycles to steal from the next Step
	extra int    // cycles added by the current instruction (branches, page crossings)
	op    *opdef // instruction being executed, nil outside of execute

	// interrupt handling
	nmiLine    bool // current level of the NMI line
	nmiPending bool // an NMI edge has been detected
	irqFlag    hwdefs.IRQSource
}

// NewCPU creates a new CPU at power-up state.
func NewCPU(ppu *PPU) *CPU {
	cpu := &CPU{
		Bus: hwio.NewTable("cpu"),
		RAM: hwio.Mem{
			Name:  "RAM",
			Data:  make([]uint8, 0x800),
			VSize: 0x2000,
		},
		SP:  0xFD,
		P:   Interrupt | Reserved,
		PPU: ppu,
	}
	if ppu != nil {
		ppu.CPU = cpu
	}
	return cpu
}

// InitBus maps CPU RAM, the PPU and APU registers, the OAM DMA register, the
// controller ports and the cartridge slot.
func (c *CPU) InitBus() {
	// CPU internal RAM, mirrored.
	c.Bus.MapMem(0x0000, &c.RAM)

	// The 8 PPU registers are mirrored from 0x2000 to 0x3FFF.
	if c.PPU != nil {
		for off := uint16(0x2000); off < 0x4000; off += 8 {
			c.PPU.mapRegs(c.Bus, off)
		}
	}

	if c.APU != nil {
		c.Bus.MapRegs(0x4000, c.APU.Regs()...)
		c.Bus.MapReg8(0x4015, &c.APU.STATUS)
	}

	c.PPUDMA.init(c)
	c.Bus.MapReg8(0x4014, &c.PPUDMA.OAMDMA)

	c.Ports.init()
	c.Bus.MapReg8(0x4016, &c.Ports.In)

	c.Bus.MapDevice(0x4020, &hwio.Device{
		Name:    "cartridge",
		Size:    0x10000 - 0x4020,
		ReadCb:  c.readCart,
		PeekCb:  c.readCart,
		WriteCb: c.writeCart,
	})

	// $4017 reads the second controller port, writes go to the APU frame
	// counter.
	c.Bus.MapDevice(0x4017, &hwio.Device{
		Name: "reg4017",
		Size: 1,
		ReadCb: func(addr uint16) uint8 {
			return c.Ports.Out.Read8(addr, false)
		},
		PeekCb: func(addr uint16) uint8 {
			return c.Ports.Out.Read8(addr, true)
		},
		WriteCb: func(addr uint16, val uint8) {
			if c.APU != nil {
				c.APU.FrameCounter().Write8(addr, val)
			}
		},
	})
}

// MapCartridge plugs m into the cartridge space, $4020-$FFFF.
func (c *CPU) MapCartridge(m mappers.Mapper) {
	c.cart = m
}

func (c *CPU) readCart(addr uint16) uint8 {
	if c.cart == nil {
		return 0
	}
	return c.cart.Read8(addr)
}

func (c *CPU) writeCart(addr uint16, val uint8) {
	if c.cart != nil {
		c.cart.Write8(addr, val)
	}
}

// Reset resets the CPU and fetches the reset vector. A soft reset only
// decrements the stack pointer and sets the interrupt disable flag.
func (c *CPU) Reset(soft bool) {
	if soft {
		c.SP -= 0x03
		c.P.setFlags(Interrupt)
	} else {
		c.A = 0x00
		c.X = 0x00
		c.Y = 0x00
		c.SP = 0xFD
		c.P = Interrupt | Reserved
		c.Cycles = 0
		clear(c.RAM.Data)
	}

	c.stall = 0
	c.nmiLine = false
	c.nmiPending = false
	c.irqFlag = 0

	// Directly read from the bus to avoid side effects.
	c.PC = hwio.Read16(c.Bus, ResetVector)

	log.ModCPU.InfoZ("reset").
		Bool("soft", soft).
		Hex16("PC", c.PC).
		End()
}

// Step services a pending interrupt or executes one instruction. It returns
// the number of CPU cycles elapsed, including the cycles the CPU has been
// stalled for (OAM DMA, DMC fetches).
func (c *CPU) Step() int {
	stalled := c.stall
	c.Cycles += stalled
	c.stall = 0

	var ncycles int64
	switch {
	case c.nmiPending:
		c.nmiPending = false
		c.interrupt(NMIVector)
		ncycles = interruptCycles
	case c.irqFlag != 0 && !c.P.intDisable():
		c.interrupt(IRQVector)
		ncycles = interruptCycles
	default:
		ncycles = int64(c.execute())
	}

	// Stall incurred by the instruction itself (OAM DMA).
	ncycles += c.stall
	c.stall = 0

	c.Cycles += ncycles
	return int(stalled + ncycles)
}

func (c *CPU) execute() int {
	if c.tracer != nil {
		c.tracer.trace(c)
	}

	opcode := c.Read8(c.PC)
	op := &ops[opcode]
	c.PC++
	c.extra = 0

	oper, crossed := c.operand(op.m)
	if crossed && op.x {
		c.extra++
	}
	c.op = op
	op.f(c, oper)
	c.op = nil
	return int(op.c) + c.extra
}

// instrEnd returns the cycle following the last one of the instruction being
// executed. Stores write on their last cycle, so it's also the cycle right
// after the write.
func (c *CPU) instrEnd() int64 {
	if c.op == nil {
		return c.Cycles
	}
	return c.Cycles + int64(c.op.c) + int64(c.extra)
}

// interrupt pushes PC and P and jumps to the handler at vector.
func (c *CPU) interrupt(vector uint16) {
	prevpc := c.PC
	c.push16(c.PC)

	p := c.P
	p.clearFlags(Break)
	p.setFlags(Reserved)
	c.push8(uint8(p))

	c.P.setFlags(Interrupt)
	c.PC = c.Read16(vector)

	log.ModCPU.DebugZ("interrupt").
		Hex16("from", prevpc).
		Hex16("to", c.PC).
		Bool("nmi", vector == NMIVector).
		End()
}

func (c *CPU) Read8(addr uint16) uint8 {
	return c.Bus.Read8(addr, false)
}

func (c *CPU) Write8(addr uint16, val uint8) {
	c.Bus.Write8(addr, val)
}

func (c *CPU) Read16(addr uint16) uint16 {
	lo := c.Read8(addr)
	hi := c.Read8(addr + 1)
	return uint16(hi)<<8 | uint16(lo)
}

/* stack operations */

func (c *CPU) push8(val uint8) {
	top := uint16(c.SP) + 0x0100
	c.Write8(top, val)
	c.SP -= 1
}

func (c *CPU) push16(val uint16) {
	c.push8(uint8(val >> 8))
	c.push8(uint8(val & 0xff))
}

func (c *CPU) pull8() uint8 {
	c.SP++
	top := uint16(c.SP) + 0x0100
	return c.Read8(top)
}

func (c *CPU) pull16() uint16 {
	lo := c.pull8()
	hi := c.pull8()
	return uint16(hi)<<8 | uint16(lo)
}

/* stalls */

// addStall steals n cycles from the CPU. They're accounted in the cycle count
// returned by the current or the next Step.
func (c *CPU) addStall(n int64) {
	c.stall += n
}

// DMCRead reads a DMC sample byte, which stalls the CPU for 4 cycles.
func (c *CPU) DMCRead(addr uint16) uint8 {
	c.addStall(4)
	return c.Read8(addr)
}

// CurrentCycle returns the CPU cycle counter.
func (c *CPU) CurrentCycle() int64 {
	return c.Cycles
}

/* interrupt lines */

func (c *CPU) SetIRQSource(src hwdefs.IRQSource)      { c.irqFlag |= src }
func (c *CPU) HasIRQSource(src hwdefs.IRQSource) bool { return c.irqFlag&src != 0 }
func (c *CPU) ClearIRQSource(src hwdefs.IRQSource)    { c.irqFlag &^= src }

// SetIRQ drives the cartridge IRQ line.
func (c *CPU) SetIRQ(asserted bool) {
	if asserted {
		c.SetIRQSource(hwdefs.External)
	} else {
		c.ClearIRQSource(hwdefs.External)
	}
}

// SetNMI drives the NMI line. NMI is edge-triggered: a pending NMI is
// recorded when the line goes from low to high.
func (c *CPU) SetNMI(level bool) {
	if level && !c.nmiLine {
		c.nmiPending = true
	}
	c.nmiLine = level
}

/* tracing */

func (c *CPU) SetTraceOutput(w io.Writer) {
	if w == nil {
		c.tracer = nil
		return
	}
	c.tracer = &tracer{w: w}
}

/* state */

func (c *CPU) State() snapshot.CPU {
	return snapshot.CPU{
		PC:         c.PC,
		SP:         c.SP,
		P:          uint8(c.P),
		A:          c.A,
		X:          c.X,
		Y:          c.Y,
		Cycles:     c.Cycles,
		Stall:      c.stall,
		IRQFlag:    uint8(c.irqFlag),
		NMILine:    c.nmiLine,
		NMIPending: c.nmiPending,
	}
}

func (c *CPU) SetState(state *snapshot.CPU) {
	c.PC = state.PC
	c.SP = state.SP
	c.P = P(state.P)
	c.A = state.A
	c.X = state.X
	c.Y = state.Y
	c.Cycles = state.Cycles
	c.stall = state.Stall
	c.irqFlag = hwdefs.IRQSource(state.IRQFlag)
	c.nmiLine = state.NMILine
	c.nmiPending = state.NMIPending
}

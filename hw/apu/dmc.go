package apu

import (
	"nescore/emu/log"
	"nescore/hw/hwdefs"
	"nescore/hw/hwio"
	"nescore/hw/snapshot"
)

// The DMC (Delta Modulation Channel) can output samples composed of 1-bit
// deltas and its DAC can be directly changed. It contains the following: DMA
// reader, interrupt flag, sample buffer, Timer, output unit, 7-bit counter tied
// to 7-bit DAC.
//
//	+----------+    +---------+
//	|DMA Reader|    |  Timer  |
//	+----------+    +---------+
//	     |               |
//	     |               v
//	+----------+    +---------+     +---------+     +---------+
//	|  Buffer  |----| Output  |---->| Counter |---->|   DAC   |
//	+----------+    +---------+     +---------+     +---------+
type DMC struct {
	cpu   cpu
	timer timer

	sampleAddr uint16
	sampleLen  uint16
	outlvl     uint8
	irqEnabled bool
	loop       bool

	curaddr   uint16
	remaining uint16
	readbuf   uint8
	bufEmpty  bool

	shiftReg     uint8
	bitsLeft     uint8
	silence      bool
	disableDelay uint8
	startDelay   uint8 // delay before transfer starts

	FLAGS      hwio.Reg8
	LOAD       hwio.Reg8
	SAMPLEADDR hwio.Reg8
	SAMPLELEN  hwio.Reg8
}

func (dc *DMC) init(cpu cpu) {
	dc.cpu = cpu
	dc.silence = true
	dc.FLAGS = writeOnlyReg("DMC_FLAGS", dc.writeFLAGS)
	dc.LOAD = writeOnlyReg("DMC_LOAD", dc.writeLOAD)
	dc.SAMPLEADDR = writeOnlyReg("DMC_SAMPLEADDR", dc.writeSAMPLEADDR)
	dc.SAMPLELEN = writeOnlyReg("DMC_SAMPLELEN", dc.writeSAMPLELEN)
}

func (dc *DMC) regs() []*hwio.Reg8 {
	return []*hwio.Reg8{&dc.FLAGS, &dc.LOAD, &dc.SAMPLEADDR, &dc.SAMPLELEN}
}

func (dc *DMC) initSample() {
	dc.curaddr = dc.sampleAddr
	dc.remaining = dc.sampleLen
}

func (dc *DMC) reset(soft bool) {
	dc.timer.reset()

	if !soft {
		dc.sampleAddr = 0xC000
		dc.sampleLen = 1
	}

	dc.outlvl = 0
	dc.irqEnabled = false
	dc.loop = false

	dc.curaddr = 0
	dc.remaining = 0
	dc.readbuf = 0
	dc.bufEmpty = true

	dc.shiftReg = 0
	dc.bitsLeft = 8
	dc.silence = true
	dc.startDelay = 0
	dc.disableDelay = 0

	dc.timer.period = dmcPeriodLUT[0] - 1
	dc.timer.timer = dc.timer.period
}

var dmcPeriodLUT = [16]uint16{428, 380, 340, 320, 286, 254, 226, 214, 190, 160, 142, 128, 106, 84, 72, 54}

// $4010
func (dc *DMC) writeFLAGS(_, val uint8) {
	dc.irqEnabled = val&0x80 == 0x80
	dc.loop = val&0x40 == 0x40
	dc.timer.period = dmcPeriodLUT[val&0x0F] - 1

	if !dc.irqEnabled {
		dc.cpu.ClearIRQSource(hwdefs.DMC)
	}

	log.ModSound.InfoZ("write dmc FLAGS").
		Uint8("reg", val).
		Bool("irq enabled", dc.irqEnabled).
		Bool("loop", dc.loop).
		Uint16("period", dc.timer.period).
		End()
}

// $4011 sets the output level directly.
func (dc *DMC) writeLOAD(_, val uint8) {
	dc.outlvl = val & 0x7F

	log.ModSound.InfoZ("write dmc LOAD").
		Uint8("reg", val).
		Uint8("out lvl", dc.outlvl).
		End()
}

// $4012 start of DMC sample is at address $C000 + $40*$xx
func (dc *DMC) writeSAMPLEADDR(_, val uint8) {
	dc.sampleAddr = 0xC000 | uint16(val)<<6

	log.ModSound.InfoZ("write dmc SAMPLEADDR").
		Uint8("val", val).
		Uint16("addr", dc.sampleAddr).
		End()
}

// $4013 Length of DMC waveform is $10*$xx + 1 bytes (128*$xx + 8 samples)
func (dc *DMC) writeSAMPLELEN(_, val uint8) {
	dc.sampleLen = uint16(val)<<4 | 0x1

	log.ModSound.InfoZ("write dmc SAMPLELEN").
		Uint8("val", val).
		Uint16("len", dc.sampleLen).
		End()
}

// fetch fills the sample buffer if it's empty and bytes remain. The read
// goes through the CPU which is stalled for it.
func (dc *DMC) fetch() {
	if !dc.bufEmpty || dc.remaining == 0 {
		return
	}

	dc.readbuf = dc.cpu.DMCRead(dc.curaddr)
	dc.bufEmpty = false

	log.ModSound.DebugZ("dmc fetch").
		Hex16("addr", dc.curaddr).
		Uint8("value", dc.readbuf).
		End()

	// Address wraps around to $8000, not $0000.
	dc.curaddr++
	if dc.curaddr == 0 {
		dc.curaddr = 0x8000
	}

	dc.remaining--
	if dc.remaining == 0 {
		if dc.loop {
			// Looped sample never sets the IRQ flag.
			dc.initSample()
		} else if dc.irqEnabled {
			dc.cpu.SetIRQSource(hwdefs.DMC)
		}
	}
}

func (dc *DMC) tick() {
	dc.processDelays()

	if !dc.timer.tick() {
		return
	}

	if !dc.silence {
		if dc.shiftReg&0x01 != 0 {
			if dc.outlvl <= 125 {
				dc.outlvl += 2
			}
		} else if dc.outlvl >= 2 {
			dc.outlvl -= 2
		}
		dc.shiftReg >>= 1
	}

	dc.bitsLeft--
	if dc.bitsLeft == 0 {
		dc.bitsLeft = 8
		if dc.bufEmpty {
			dc.silence = true
		} else {
			dc.silence = false
			dc.shiftReg = dc.readbuf
			dc.bufEmpty = true
			dc.fetch()
		}
	}
}

func (dc *DMC) processDelays() {
	if dc.disableDelay != 0 {
		dc.disableDelay--
		if dc.disableDelay == 0 {
			dc.remaining = 0
		}
	}

	if dc.startDelay != 0 {
		dc.startDelay--
		if dc.startDelay == 0 {
			dc.fetch()
		}
	}
}

func (dc *DMC) status() bool {
	return dc.remaining > 0
}

func (dc *DMC) setEnabled(enabled bool) {
	// Both enabling and disabling take effect after 2 or 3 cycles depending
	// on the CPU cycle parity.
	delay := uint8(2)
	if dc.cpu.CurrentCycle()&0x01 != 0 {
		delay = 3
	}

	switch {
	case !enabled:
		if dc.disableDelay == 0 {
			dc.disableDelay = delay
		}
	case dc.remaining == 0:
		dc.initSample()
		dc.startDelay = delay
	}
}

func (dc *DMC) output() uint8 {
	return dc.outlvl
}

func (dc *DMC) saveState(state *snapshot.APUDMC) {
	dc.timer.saveState(&state.Timer)
	state.SampleAddr = dc.sampleAddr
	state.SampleLen = dc.sampleLen
	state.CurrentAddr = dc.curaddr
	state.Remaining = dc.remaining
	state.OutputLevel = dc.outlvl
	state.ReadBuf = dc.readbuf
	state.BitsLeft = dc.bitsLeft
	state.StartDelay = dc.startDelay
	state.DisableDelay = dc.disableDelay
	state.IRQEnabled = dc.irqEnabled
	state.Loop = dc.loop
	state.BufEmpty = dc.bufEmpty
	state.ShiftReg = dc.shiftReg
	state.Silence = dc.silence
}

func (dc *DMC) setState(state *snapshot.APUDMC) {
	dc.timer.setState(&state.Timer)
	dc.sampleAddr = state.SampleAddr
	dc.sampleLen = state.SampleLen
	dc.curaddr = state.CurrentAddr
	dc.remaining = state.Remaining
	dc.outlvl = state.OutputLevel
	dc.readbuf = state.ReadBuf
	dc.bitsLeft = state.BitsLeft
	dc.startDelay = state.StartDelay
	dc.disableDelay = state.DisableDelay
	dc.irqEnabled = state.IRQEnabled
	dc.loop = state.Loop
	dc.bufEmpty = state.BufEmpty
	dc.shiftReg = state.ShiftReg
	dc.silence = state.Silence
}

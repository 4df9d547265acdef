package apu

import (
	"nescore/emu/log"
	"nescore/hw/hwdefs"
	"nescore/hw/hwio"
	"nescore/hw/snapshot"
)

// Cycle of each sequencer step, per mode (0: 4-step, 1: 5-step).
var stepCycles = [2][6]int32{
	{7457, 14913, 22371, 29828, 29829, 29830},
	{7457, 14913, 22371, 29829, 37281, 37282},
}

var frameType = [2][6]FrameType{
	{QuarterFrame, HalfFrame, QuarterFrame, NoFrame, HalfFrame, NoFrame},
	{QuarterFrame, HalfFrame, QuarterFrame, NoFrame, HalfFrame, NoFrame},
}

type frameCounter struct {
	apu *APU
	cpu cpu

	cycle             int32
	curStep           uint8
	stepMode          uint8 // 0: 4-step mode, 1: 5-step mode
	inhibitIRQ        bool
	blockTick         uint8
	newval            int16 // pending $4017 value, -1 if none
	writeDelayCounter int8

	FRAMECOUNTER hwio.Reg8
}

func (fc *frameCounter) init(apu *APU, cpu cpu) {
	fc.apu = apu
	fc.cpu = cpu
	fc.FRAMECOUNTER = writeOnlyReg("FRAMECOUNTER", fc.writeFRAMECOUNTER)
}

func (fc *frameCounter) reset(soft bool) {
	fc.cycle = 0

	// The mode is kept on soft reset.
	if !soft {
		fc.stepMode = 0
	}
	fc.curStep = 0

	// After reset or power-up the APU acts as if $4017 were written with
	// $00 (or the kept mode) a few clocks before the first instruction.
	fc.newval = 0
	if fc.stepMode != 0 {
		fc.newval = 0x80
	}
	fc.writeDelayCounter = 3
	fc.inhibitIRQ = false
	fc.blockTick = 0
}

func (fc *frameCounter) writeFRAMECOUNTER(_, val uint8) {
	log.ModSound.InfoZ("write framecounter").Uint8("val", val).End()
	fc.newval = int16(val)

	// The sequencer restarts 3 CPU cycles after the write if it occurs
	// during an APU cycle, 4 cycles otherwise.
	if fc.cpu.CurrentCycle()&0x01 != 0 {
		fc.writeDelayCounter = 4
	} else {
		fc.writeDelayCounter = 3
	}

	fc.inhibitIRQ = val&0x40 == 0x40
	if fc.inhibitIRQ {
		fc.cpu.ClearIRQSource(hwdefs.FrameCounter)
	}
}

// tick runs the sequencer for one CPU cycle.
func (fc *frameCounter) tick() {
	fc.cycle++
	if fc.cycle >= stepCycles[fc.stepMode][fc.curStep] {
		if !fc.inhibitIRQ && fc.stepMode == 0 && fc.curStep >= 3 {
			// 4-step mode raises the IRQ on its last 3 cycles.
			fc.cpu.SetIRQSource(hwdefs.FrameCounter)
		}

		ftyp := frameType[fc.stepMode][fc.curStep]
		if ftyp != NoFrame && fc.blockTick == 0 {
			fc.apu.frameTick(ftyp)

			// A $4017 write can't clock the units again during this cycle
			// and the next one.
			fc.blockTick = 2
		}

		fc.curStep++
		if fc.curStep == 6 {
			fc.curStep = 0
			fc.cycle = 0
		}
	}

	if fc.newval >= 0 {
		fc.writeDelayCounter--
		if fc.writeDelayCounter == 0 {
			fc.stepMode = 0
			if fc.newval&0x80 == 0x80 {
				fc.stepMode = 1
			}

			fc.writeDelayCounter = -1
			fc.curStep = 0
			fc.cycle = 0
			fc.newval = -1

			if fc.stepMode != 0 && fc.blockTick == 0 {
				// 5-step mode immediately clocks the quarter and half frame units.
				fc.apu.frameTick(HalfFrame)
				fc.blockTick = 2
			}
		}
	}

	if fc.blockTick > 0 {
		fc.blockTick--
	}
}

func (fc *frameCounter) saveState(state *snapshot.APUFrameCounter) {
	state.Cycle = fc.cycle
	state.CurStep = fc.curStep
	state.StepMode = fc.stepMode
	state.InhibitIRQ = fc.inhibitIRQ
	state.BlockTick = fc.blockTick
	state.NewVal = fc.newval
	state.WriteDelayCounter = fc.writeDelayCounter
}

func (fc *frameCounter) setState(state *snapshot.APUFrameCounter) {
	fc.cycle = state.Cycle
	fc.curStep = state.CurStep % 6
	fc.stepMode = state.StepMode & 1
	fc.inhibitIRQ = state.InhibitIRQ
	fc.blockTick = state.BlockTick
	fc.newval = state.NewVal
	fc.writeDelayCounter = state.WriteDelayCounter
}

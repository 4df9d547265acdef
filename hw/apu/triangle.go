package apu

import (
	"nescore/emu/log"
	"nescore/hw/hwio"
	"nescore/hw/snapshot"
)

// The triangleChannel contains the following: Timer, 32-step sequencer, Length
// Counter, Linear Counter, 4-bit DAC.
//
//	+---------+    +---------+
//	|LinearCtr|    | Length  |
//	+---------+    +---------+
//	     |              |
//	     v              v
//	+---------+        |\             |\         +---------+    +---------+
//	|  Timer  |------->| >----------->| >------->|Sequencer|--->|   DAC   |
//	+---------+        |/             |/         +---------+    +---------+
type triangleChannel struct {
	lenCounter lengthCounter
	timer      timer

	linearCounter       uint8
	linearCounterReload uint8
	linearReload        bool
	linearCtrl          bool

	pos uint8 // position in triangleSequence
	out uint8

	Linear hwio.Reg8
	Unused hwio.Reg8
	Timer  hwio.Reg8
	Length hwio.Reg8
}

func (tc *triangleChannel) init() {
	tc.lenCounter.channel = Triangle
	tc.Linear = writeOnlyReg("TRI_LINEAR", tc.writeLinear)
	tc.Unused = writeOnlyReg("TRI_UNUSED", nil)
	tc.Timer = writeOnlyReg("TRI_TIMER", tc.writeTimer)
	tc.Length = writeOnlyReg("TRI_LENGTH", tc.writeLength)
}

func (tc *triangleChannel) regs() []*hwio.Reg8 {
	return []*hwio.Reg8{&tc.Linear, &tc.Unused, &tc.Timer, &tc.Length}
}

var triangleSequence = [32]uint8{
	15, 14, 13, 12, 11, 10, 9, 8,
	7, 6, 5, 4, 3, 2, 1, 0,
	0, 1, 2, 3, 4, 5, 6, 7,
	8, 9, 10, 11, 12, 13, 14, 15,
}

func (tc *triangleChannel) tick() {
	if !tc.timer.tick() {
		return
	}
	// The sequencer only advances while both counters are non-zero.
	if tc.lenCounter.status() && tc.linearCounter > 0 {
		tc.pos = (tc.pos + 1) & 0x1F

		// Ultrasonic periods keep the previous level, which avoids pops.
		if tc.timer.period >= 2 {
			tc.out = triangleSequence[tc.pos]
		}
	}
}

func (tc *triangleChannel) output() uint8 {
	return tc.out
}

func (tc *triangleChannel) reset(soft bool) {
	tc.timer.reset()
	tc.lenCounter.reset(soft)

	tc.linearCounter = 0
	tc.linearCounterReload = 0
	tc.linearReload = false
	tc.linearCtrl = false
	tc.pos = 0
	tc.out = 0
}

func (tc *triangleChannel) writeLinear(_, val uint8) {
	tc.linearCtrl = val&0x80 == 0x80
	tc.linearCounterReload = val & 0x7F
	tc.lenCounter.init(tc.linearCtrl)

	log.ModSound.InfoZ("write triangle linear").
		Uint8("reg", val).
		Bool("ctrl", tc.linearCtrl).
		Uint8("reload", tc.linearCounterReload).
		End()
}

func (tc *triangleChannel) writeTimer(_, val uint8) {
	tc.timer.period = (tc.timer.period & 0xFF00) | uint16(val)

	log.ModSound.InfoZ("write triangle timer").
		Uint8("reg", val).
		Uint16("period", tc.timer.period).
		End()
}

func (tc *triangleChannel) writeLength(_, val uint8) {
	tc.lenCounter.load(val >> 3)
	tc.timer.period = (tc.timer.period & 0xFF) | (uint16(val&0x07) << 8)

	// Sets the linear counter reload flag (side effect).
	tc.linearReload = true

	log.ModSound.InfoZ("write triangle length").
		Uint8("reg", val).
		Uint16("period", tc.timer.period).
		Uint8("length", val>>3).
		End()
}

func (tc *triangleChannel) tickLinearCounter() {
	if tc.linearReload {
		tc.linearCounter = tc.linearCounterReload
	} else if tc.linearCounter > 0 {
		tc.linearCounter--
	}

	if !tc.linearCtrl {
		tc.linearReload = false
	}
}

func (tc *triangleChannel) tickLengthCounter()   { tc.lenCounter.tick() }
func (tc *triangleChannel) reloadLengthCounter() { tc.lenCounter.reload() }
func (tc *triangleChannel) setEnabled(on bool)   { tc.lenCounter.setEnabled(on) }
func (tc *triangleChannel) status() bool         { return tc.lenCounter.status() }

func (tc *triangleChannel) saveState(state *snapshot.APUTriangle) {
	tc.lenCounter.saveState(&state.LengthCounter)
	tc.timer.saveState(&state.Timer)
	state.LinearCounter = tc.linearCounter
	state.LinearCounterReload = tc.linearCounterReload
	state.LinearReload = tc.linearReload
	state.LinearCtrl = tc.linearCtrl
	state.Pos = tc.pos
	state.Output = tc.out
}

func (tc *triangleChannel) setState(state *snapshot.APUTriangle) {
	tc.lenCounter.setState(&state.LengthCounter)
	tc.timer.setState(&state.Timer)
	tc.linearCounter = state.LinearCounter
	tc.linearCounterReload = state.LinearCounterReload
	tc.linearReload = state.LinearReload
	tc.linearCtrl = state.LinearCtrl
	tc.pos = state.Pos
	tc.out = state.Output
}

package apu

import (
	"nescore/emu/log"
	"nescore/hw/hwio"
	"nescore/hw/snapshot"
)

// There are two square channels beginning at registers $4000 and $4004. Each
// contains the following: Envelope Generator, Sweep Unit, Timer with
// divide-by-two on the output, 8-step sequencer, Length Counter.
//
//	               +---------+    +---------+
//	               |  Sweep  |--->|Timer / 2|
//	               +---------+    +---------+
//	                    |              |
//	                    |              v
//	                    |         +---------+    +---------+
//	                    |         |Sequencer|    | Length  |
//	                    |         +---------+    +---------+
//	                    |              |              |
//	                    v              v              v
//	+---------+        |\             |\             |\          +---------+
//	|Envelope |------->| >----------->| >----------->| >-------->|   DAC   |
//	+---------+        |/             |/             |/          +---------+
type squareChannel struct {
	envelope envelope
	timer    timer

	isChannel1 bool

	duty    uint8
	dutyPos uint8

	sweepEnabled      bool
	sweepPeriod       uint8
	sweepNegate       bool
	sweepShift        uint8
	reloadSweep       bool
	sweepDivider      uint8
	sweepTargetPeriod uint32
	realPeriod        uint16

	Duty   hwio.Reg8
	Sweep  hwio.Reg8
	Timer  hwio.Reg8
	Length hwio.Reg8
}

func (sc *squareChannel) init(channel Channel) {
	sc.isChannel1 = channel == Square1
	sc.envelope.lenCounter.channel = channel
	sc.Duty = writeOnlyReg(channel.String()+"_DUTY", sc.writeDuty)
	sc.Sweep = writeOnlyReg(channel.String()+"_SWEEP", sc.writeSweep)
	sc.Timer = writeOnlyReg(channel.String()+"_TIMER", sc.writeTimer)
	sc.Length = writeOnlyReg(channel.String()+"_LENGTH", sc.writeLength)
}

func (sc *squareChannel) regs() []*hwio.Reg8 {
	return []*hwio.Reg8{&sc.Duty, &sc.Sweep, &sc.Timer, &sc.Length}
}

func (sc *squareChannel) writeDuty(_, val uint8) {
	sc.envelope.init(val)
	sc.duty = (val & 0xC0) >> 6

	log.ModSound.InfoZ("write pulse duty").
		Bool("pulse1", sc.isChannel1).
		Uint8("reg", val).
		Uint8("duty", sc.duty).
		End()
}

func (sc *squareChannel) writeSweep(_, val uint8) {
	sc.initSweep(val)

	log.ModSound.InfoZ("write pulse sweep").
		Bool("pulse1", sc.isChannel1).
		Uint8("reg", val).
		End()
}

func (sc *squareChannel) writeTimer(_, val uint8) {
	period := (sc.realPeriod & 0x0700) | uint16(val)
	sc.setPeriod(period)

	log.ModSound.InfoZ("write pulse timer").
		Bool("pulse1", sc.isChannel1).
		Uint8("reg", val).
		Uint16("period", period).
		End()
}

func (sc *squareChannel) writeLength(_, val uint8) {
	sc.envelope.lenCounter.load(val >> 3)
	period := (sc.realPeriod & 0xFF) | (uint16(val&0x07) << 8)
	sc.setPeriod(period)

	// The sequencer and the envelope are restarted.
	sc.dutyPos = 0
	sc.envelope.restart()

	log.ModSound.InfoZ("write pulse length").
		Bool("pulse1", sc.isChannel1).
		Uint8("reg", val).
		Uint16("period", period).
		End()
}

// A period under 8, or a sweep target overflowing 11 bits, silences the
// channel, whether the sweep unit is enabled or not.
func (sc *squareChannel) isMuted() bool {
	return sc.realPeriod < 8 || (!sc.sweepNegate && sc.sweepTargetPeriod > 0x7FF)
}

func (sc *squareChannel) initSweep(val uint8) {
	sc.sweepEnabled = val&0x80 == 0x80
	sc.sweepNegate = val&0x08 == 0x08

	// The divider's period is P + 1.
	sc.sweepPeriod = ((val & 0x70) >> 4) + 1
	sc.sweepShift = val & 0x07

	sc.updateTargetPeriod()
	sc.reloadSweep = true
}

func (sc *squareChannel) updateTargetPeriod() {
	shifted := sc.realPeriod >> sc.sweepShift
	if !sc.sweepNegate {
		sc.sweepTargetPeriod = uint32(sc.realPeriod) + uint32(shifted)
		return
	}

	sc.sweepTargetPeriod = uint32(sc.realPeriod - shifted)
	if sc.isChannel1 {
		// Pulse 1 negates with ones' complement.
		sc.sweepTargetPeriod--
	}
}

func (sc *squareChannel) setPeriod(period uint16) {
	sc.realPeriod = period
	sc.timer.period = sc.realPeriod*2 + 1
	sc.updateTargetPeriod()
}

var squareDuty = [4][8]uint8{
	{0, 0, 0, 0, 0, 0, 0, 1},
	{0, 0, 0, 0, 0, 0, 1, 1},
	{0, 0, 0, 0, 1, 1, 1, 1},
	{1, 1, 1, 1, 1, 1, 0, 0},
}

func (sc *squareChannel) tick() {
	if sc.timer.tick() {
		sc.dutyPos = (sc.dutyPos - 1) & 0x07
	}
}

func (sc *squareChannel) output() uint8 {
	if sc.isMuted() {
		return 0
	}
	return squareDuty[sc.duty][sc.dutyPos] * sc.envelope.output()
}

func (sc *squareChannel) reset(soft bool) {
	sc.envelope.reset(soft)
	sc.timer.reset()

	sc.duty = 0
	sc.dutyPos = 0
	sc.realPeriod = 0

	sc.sweepEnabled = false
	sc.sweepPeriod = 0
	sc.sweepNegate = false
	sc.sweepShift = 0
	sc.reloadSweep = false
	sc.sweepDivider = 0
	sc.updateTargetPeriod()
}

func (sc *squareChannel) tickSweep() {
	sc.sweepDivider--
	if sc.sweepDivider == 0 {
		if sc.sweepShift > 0 && sc.sweepEnabled && sc.realPeriod >= 8 && sc.sweepTargetPeriod <= 0x7FF {
			sc.setPeriod(uint16(sc.sweepTargetPeriod))
		}
		sc.sweepDivider = sc.sweepPeriod
	}

	if sc.reloadSweep {
		sc.sweepDivider = sc.sweepPeriod
		sc.reloadSweep = false
	}
}

func (sc *squareChannel) tickEnvelope()        { sc.envelope.tick() }
func (sc *squareChannel) tickLengthCounter()   { sc.envelope.lenCounter.tick() }
func (sc *squareChannel) reloadLengthCounter() { sc.envelope.lenCounter.reload() }
func (sc *squareChannel) setEnabled(on bool)   { sc.envelope.lenCounter.setEnabled(on) }
func (sc *squareChannel) status() bool         { return sc.envelope.lenCounter.status() }

func (sc *squareChannel) saveState(state *snapshot.APUSquare) {
	sc.timer.saveState(&state.Timer)
	sc.envelope.saveState(&state.Envelope)
	state.SweepTargetPeriod = sc.sweepTargetPeriod
	state.RealPeriod = sc.realPeriod
	state.SweepEnabled = sc.sweepEnabled
	state.SweepPeriod = sc.sweepPeriod
	state.SweepNegate = sc.sweepNegate
	state.SweepShift = sc.sweepShift
	state.SweepDivider = sc.sweepDivider
	state.ReloadSweep = sc.reloadSweep
	state.Duty = sc.duty
	state.DutyPos = sc.dutyPos
}

func (sc *squareChannel) setState(state *snapshot.APUSquare) {
	sc.timer.setState(&state.Timer)
	sc.envelope.setState(&state.Envelope)
	sc.sweepTargetPeriod = state.SweepTargetPeriod
	sc.realPeriod = state.RealPeriod
	sc.sweepEnabled = state.SweepEnabled
	sc.sweepPeriod = state.SweepPeriod
	sc.sweepNegate = state.SweepNegate
	sc.sweepShift = state.SweepShift
	sc.sweepDivider = state.SweepDivider
	sc.reloadSweep = state.ReloadSweep
	sc.duty = state.Duty
	sc.dutyPos = state.DutyPos
}

package apu

import (
	"nescore/emu/log"
	"nescore/hw/hwio"
	"nescore/hw/snapshot"
)

// noiseChannel generates pseudo-random 1-bit noise at 16 different frequencies.
//
//	      Timer --> Shift Register   Length Counter
//	                    |                |
//	                    v                v
//	Envelope -------> Gate ----------> Gate --> (to mixer)
type noiseChannel struct {
	envelope envelope
	timer    timer
	shiftReg uint16
	mode     bool

	Volume hwio.Reg8
	Unused hwio.Reg8
	Period hwio.Reg8
	Length hwio.Reg8
}

func (nc *noiseChannel) init() {
	nc.envelope.lenCounter.channel = Noise
	nc.Volume = writeOnlyReg("NOISE_VOLUME", nc.writeVolume)
	nc.Unused = writeOnlyReg("NOISE_UNUSED", nil)
	nc.Period = writeOnlyReg("NOISE_PERIOD", nc.writePeriod)
	nc.Length = writeOnlyReg("NOISE_LENGTH", nc.writeLength)
}

func (nc *noiseChannel) regs() []*hwio.Reg8 {
	return []*hwio.Reg8{&nc.Volume, &nc.Unused, &nc.Period, &nc.Length}
}

func (nc *noiseChannel) writeVolume(_, val uint8) {
	log.ModSound.InfoZ("write noise volume").Uint8("val", val).End()
	nc.envelope.init(val)
}

var noisePeriodLUT = [16]uint16{4, 8, 16, 32, 64, 96, 128, 160, 202, 254, 380, 508, 762, 1016, 2034, 4068}

func (nc *noiseChannel) writePeriod(_, val uint8) {
	log.ModSound.InfoZ("write noise period").Uint8("val", val).End()
	nc.timer.period = noisePeriodLUT[val&0x0F] - 1
	nc.mode = val&0x80 != 0
}

func (nc *noiseChannel) writeLength(_, val uint8) {
	log.ModSound.InfoZ("write noise length").Uint8("val", val).End()
	nc.envelope.lenCounter.load(val >> 3)
	nc.envelope.restart()
}

func (nc *noiseChannel) tick() {
	if !nc.timer.tick() {
		return
	}

	// Feedback is bit 0 XOR bit 6 in mode 1, bit 0 XOR bit 1 otherwise.
	modebit := 1
	if nc.mode {
		modebit = 6
	}
	feedback := (nc.shiftReg & 0x01) ^ ((nc.shiftReg >> modebit) & 0x01)
	nc.shiftReg >>= 1
	nc.shiftReg |= feedback << 14
}

func (nc *noiseChannel) output() uint8 {
	if nc.shiftReg&0x01 == 0x01 {
		return 0
	}
	return nc.envelope.output()
}

func (nc *noiseChannel) reset(soft bool) {
	nc.envelope.reset(soft)
	nc.timer.reset()

	nc.timer.period = noisePeriodLUT[0] - 1
	nc.shiftReg = 1
	nc.mode = false
}

func (nc *noiseChannel) tickEnvelope()        { nc.envelope.tick() }
func (nc *noiseChannel) tickLengthCounter()   { nc.envelope.lenCounter.tick() }
func (nc *noiseChannel) reloadLengthCounter() { nc.envelope.lenCounter.reload() }
func (nc *noiseChannel) setEnabled(on bool)   { nc.envelope.lenCounter.setEnabled(on) }
func (nc *noiseChannel) status() bool         { return nc.envelope.lenCounter.status() }

func (nc *noiseChannel) saveState(state *snapshot.APUNoise) {
	nc.envelope.saveState(&state.Envelope)
	nc.timer.saveState(&state.Timer)
	state.ShiftReg = nc.shiftReg
	state.Mode = nc.mode
}

func (nc *noiseChannel) setState(state *snapshot.APUNoise) {
	nc.envelope.setState(&state.Envelope)
	nc.timer.setState(&state.Timer)
	nc.shiftReg = state.ShiftReg
	nc.mode = state.Mode
}

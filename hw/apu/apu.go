// Package apu implements the audio processing unit: two pulse channels, a
// triangle, a noise generator and the delta modulation channel, all driven by
// the frame counter and clocked once per CPU cycle.
package apu

import (
	"nescore/emu/log"
	"nescore/hw/hwdefs"
	"nescore/hw/hwio"
	"nescore/hw/snapshot"
)

type APU struct {
	cpu   cpu
	mixer *Mixer

	Square1  squareChannel
	Square2  squareChannel
	Triangle triangleChannel
	Noise    noiseChannel
	DMC      DMC

	frameCounter frameCounter

	STATUS hwio.Reg8
}

func New(cpu cpu, mixer *Mixer) *APU {
	a := &APU{
		cpu:   cpu,
		mixer: mixer,
	}
	a.Square1.init(Square1)
	a.Square2.init(Square2)
	a.Triangle.init()
	a.Noise.init()
	a.DMC.init(cpu)
	a.frameCounter.init(a, cpu)

	a.STATUS = hwio.Reg8{
		Name:    "STATUS",
		ReadCb:  a.readSTATUS,
		PeekCb:  func(uint8) uint8 { return a.Status() },
		WriteCb: a.writeSTATUS,
	}
	return a
}

// Regs returns the channel registers, in order, from $4000 to $4013.
func (a *APU) Regs() []*hwio.Reg8 {
	var regs []*hwio.Reg8
	regs = append(regs, a.Square1.regs()...)
	regs = append(regs, a.Square2.regs()...)
	regs = append(regs, a.Triangle.regs()...)
	regs = append(regs, a.Noise.regs()...)
	regs = append(regs, a.DMC.regs()...)
	return regs
}

// FrameCounter is the write side of $4017.
func (a *APU) FrameCounter() *hwio.Reg8 {
	return &a.frameCounter.FRAMECOUNTER
}

func (a *APU) Mixer() *Mixer {
	return a.mixer
}

// Status returns the $4015 value without side effects.
func (a *APU) Status() uint8 {
	var status uint8

	if a.Square1.status() {
		status |= 0x01
	}
	if a.Square2.status() {
		status |= 0x02
	}
	if a.Triangle.status() {
		status |= 0x04
	}
	if a.Noise.status() {
		status |= 0x08
	}
	if a.DMC.status() {
		status |= 0x10
	}
	if a.cpu.HasIRQSource(hwdefs.FrameCounter) {
		status |= 0x40
	}
	if a.cpu.HasIRQSource(hwdefs.DMC) {
		status |= 0x80
	}
	return status
}

func (a *APU) readSTATUS(uint8) uint8 {
	status := a.Status()

	// Reading $4015 clears the frame counter interrupt flag.
	a.cpu.ClearIRQSource(hwdefs.FrameCounter)

	log.ModSound.InfoZ("read status").Uint8("status", status).End()
	return status
}

func (a *APU) writeSTATUS(_, val uint8) {
	log.ModSound.InfoZ("write status").Uint8("val", val).End()

	// The DMC interrupt flag is cleared before enabling the DMC, which can
	// raise it again.
	a.cpu.ClearIRQSource(hwdefs.DMC)

	a.Square1.setEnabled(val&0x01 == 0x01)
	a.Square2.setEnabled(val&0x02 == 0x02)
	a.Triangle.setEnabled(val&0x04 == 0x04)
	a.Noise.setEnabled(val&0x08 == 0x08)
	a.DMC.setEnabled(val&0x10 == 0x10)
}

func (a *APU) frameTick(ftyp FrameType) {
	// Quarter and half frames clock envelopes and the linear counter.
	a.Square1.tickEnvelope()
	a.Square2.tickEnvelope()
	a.Triangle.tickLinearCounter()
	a.Noise.tickEnvelope()

	if ftyp == HalfFrame {
		// Half frames also clock length counters and sweeps.
		a.Square1.tickLengthCounter()
		a.Square2.tickLengthCounter()
		a.Triangle.tickLengthCounter()
		a.Noise.tickLengthCounter()

		a.Square1.tickSweep()
		a.Square2.tickSweep()
	}
}

func (a *APU) Reset(soft bool) {
	a.Square1.reset(soft)
	a.Square2.reset(soft)
	a.Triangle.reset(soft)
	a.Noise.reset(soft)
	a.DMC.reset(soft)
	a.frameCounter.reset(soft)
	a.mixer.Reset()
}

// Tick runs the APU for one CPU cycle.
func (a *APU) Tick() {
	a.frameCounter.tick()

	// Length counter reloads come after the frame counter so that a half
	// frame clock on the same cycle sees the old counter.
	a.Square1.reloadLengthCounter()
	a.Square2.reloadLengthCounter()
	a.Triangle.reloadLengthCounter()
	a.Noise.reloadLengthCounter()

	a.Square1.tick()
	a.Square2.tick()
	a.Triangle.tick()
	a.Noise.tick()
	a.DMC.tick()

	a.mixer.tick(a)
}

func (a *APU) State() snapshot.APU {
	var state snapshot.APU
	a.Square1.saveState(&state.Square1)
	a.Square2.saveState(&state.Square2)
	a.Triangle.saveState(&state.Triangle)
	a.Noise.saveState(&state.Noise)
	a.DMC.saveState(&state.DMC)
	a.frameCounter.saveState(&state.FrameCounter)
	a.mixer.saveState(&state.Mixer)
	return state
}

func (a *APU) SetState(state *snapshot.APU) {
	a.Square1.setState(&state.Square1)
	a.Square2.setState(&state.Square2)
	a.Triangle.setState(&state.Triangle)
	a.Noise.setState(&state.Noise)
	a.DMC.setState(&state.DMC)
	a.frameCounter.setState(&state.FrameCounter)
	a.mixer.setState(&state.Mixer)
}

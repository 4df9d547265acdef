package apu

import (
	"nescore/hw/hwdefs"
	"nescore/hw/hwio"
)

type Channel uint8

const (
	Square1 Channel = iota
	Square2
	Triangle
	Noise
	DPCM
)

var channelNames = [hwdefs.NumAudioChannels]string{"square1", "square2", "triangle", "noise", "dmc"}

func (c Channel) String() string {
	if int(c) < len(channelNames) {
		return channelNames[c]
	}
	return "unknown"
}

type FrameType uint8

const (
	NoFrame FrameType = iota
	QuarterFrame
	HalfFrame
)

// cpu is the view the APU has of the CPU: the IRQ line, the cycle counter,
// and the memory reader used by the DMC, which stalls the CPU.
type cpu interface {
	SetIRQSource(src hwdefs.IRQSource)
	ClearIRQSource(src hwdefs.IRQSource)
	HasIRQSource(src hwdefs.IRQSource) bool
	CurrentCycle() int64
	DMCRead(addr uint16) uint8
}

// writeOnlyReg returns a register for which reads return 0 and writes are
// handled by cb.
func writeOnlyReg(name string, cb func(old, val uint8)) hwio.Reg8 {
	zero := func(uint8) uint8 { return 0 }
	return hwio.Reg8{Name: name, ReadCb: zero, PeekCb: zero, WriteCb: cb}
}

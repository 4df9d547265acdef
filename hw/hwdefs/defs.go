// Package hwdefs holds the definitions shared by the hardware packages.
package hwdefs

import "strings"

// IRQSource identifies a device pulling the CPU IRQ line. The line is
// asserted as long as at least one source is set.
type IRQSource uint8

const (
	External IRQSource = 1 << iota
	FrameCounter
	DMC

	numSources = 3
)

var irqSrcNames = [numSources]string{
	"ext",
	"fcnt",
	"dmc",
}

func (irq IRQSource) String() string {
	var names []string
	for i := range numSources {
		if irq&(1<<i) != 0 {
			names = append(names, irqSrcNames[i])
		}
	}
	return strings.Join(names, "|")
}

const (
	SoftReset = true
	HardReset = false
)

// NTSC timings.
const (
	CPUClockRate = 1789773 // Hz

	DotsPerScanline   = 341
	ScanlinesPerFrame = 262
	PPUCyclesPerFrame = DotsPerScanline * ScanlinesPerFrame // 89342, 29780⅔ CPU cycles

	ScreenWidth  = 256
	ScreenHeight = 240
)

const NumAudioChannels = 5 // Square1, Square2, Triangle, Noise, DMC

package apu

import (
	"nescore/hw/hwdefs"
	"nescore/hw/snapshot"
)

const DefaultSampleRate = 44100

// Non-linear DAC lookup tables, scaled to signed 16-bit PCM. pulseTable is
// indexed by the sum of both pulse levels, tndTable by the triangle, noise
// and DMC levels.
var (
	pulseTable [31]int16
	tndTable   [16][16][128]int16
)

func init() {
	const scale = 32767

	for n := 1; n < len(pulseTable); n++ {
		pulseTable[n] = int16(scale * 95.88 / (8128.0/float64(n) + 100))
	}
	for t := range 16 {
		for n := range 16 {
			for d := range 128 {
				if t+n+d == 0 {
					continue
				}
				sum := float64(t)/8227 + float64(n)/12241 + float64(d)/22638
				tndTable[t][n][d] = int16(scale * 159.79 / (1/sum + 100))
			}
		}
	}
}

// Mixer combines the channel levels into a PCM sample queue. A sample is
// produced each time the sample clock, which advances by the sample rate on
// every CPU cycle, overflows the CPU clock rate.
type Mixer struct {
	sampleRate int64
	muted      bool

	clock   int64
	samples []int16
}

// NewMixer returns a mixer producing samples at the given rate, the default
// rate is used if rate is not positive.
func NewMixer(rate int, muted bool) *Mixer {
	if rate <= 0 {
		rate = DefaultSampleRate
	}
	return &Mixer{
		sampleRate: int64(min(rate, hwdefs.CPUClockRate)),
		muted:      muted,
	}
}

func (m *Mixer) SampleRate() int { return int(m.sampleRate) }

func (m *Mixer) Reset() {
	m.clock = 0
	m.samples = m.samples[:0]
}

func mix(sq1, sq2, tri, noise, dmc uint8) int16 {
	return pulseTable[sq1+sq2] + tndTable[tri][noise][dmc&0x7F]
}

func (m *Mixer) tick(a *APU) {
	m.clock += m.sampleRate
	if m.clock < hwdefs.CPUClockRate {
		return
	}
	m.clock -= hwdefs.CPUClockRate

	var sample int16
	if !m.muted {
		sample = mix(
			a.Square1.output(),
			a.Square2.output(),
			a.Triangle.output(),
			a.Noise.output(),
			a.DMC.output(),
		)
	}
	m.samples = append(m.samples, sample)
}

// Samples returns the samples produced since the last call. The returned
// slice is owned by the caller.
func (m *Mixer) Samples() []int16 {
	out := make([]int16, len(m.samples))
	copy(out, m.samples)
	m.samples = m.samples[:0]
	return out
}

// Pending returns the number of samples not yet drained.
func (m *Mixer) Pending() int {
	return len(m.samples)
}

func (m *Mixer) saveState(state *snapshot.APUMixer) {
	state.Clock = m.clock
	state.Samples = append([]int16(nil), m.samples...)
}

func (m *Mixer) setState(state *snapshot.APUMixer) {
	m.clock = state.Clock
	m.samples = append(m.samples[:0], state.Samples...)
}

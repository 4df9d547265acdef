package ines

// NTMirroring describes how the four logical nametables are mapped onto the
// console's nametable RAM.
type NTMirroring uint8

const (
	HorzMirroring NTMirroring = iota
	VertMirroring
	OnlyAScreen
	OnlyBScreen
	FourScreen
)

func (m NTMirroring) String() string {
	switch m {
	case HorzMirroring:
		return "horizontal"
	case VertMirroring:
		return "vertical"
	case OnlyAScreen:
		return "single screen A"
	case OnlyBScreen:
		return "single screen B"
	case FourScreen:
		return "four screen"
	}
	return "unknown"
}

// Nametable returns the physical nametable (0-3) backing logical nametable n
// (0-3).
func (m NTMirroring) Nametable(n uint16) uint16 {
	n &= 3
	switch m {
	case HorzMirroring:
		return n >> 1
	case VertMirroring:
		return n & 1
	case OnlyAScreen:
		return 0
	case OnlyBScreen:
		return 1
	}
	return n
}

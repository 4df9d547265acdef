package hw

import (
	"nescore/hw/hwio"
	"nescore/hw/input"
	"nescore/hw/snapshot"
)

// InputPorts handles the two standard controller ports. Writing 1 then 0 to
// $4016 latches the buttons into per-port shift registers, which are then
// read serially at $4016 and $4017.
type InputPorts struct {
	In  hwio.Reg8 // $4016
	Out hwio.Reg8 // $4017 (read side)

	strobe bool
	shift  [2]uint8 // shift registers
	pads   [2]uint8 // current buttons, in report order
}

func (ip *InputPorts) init() {
	ip.In = hwio.Reg8{
		Name:    "IN",
		ReadCb:  func(uint8) uint8 { return ip.read(0) },
		PeekCb:  func(uint8) uint8 { return ip.peek(0) },
		WriteCb: ip.writeIN,
	}
	ip.Out = hwio.Reg8{
		Name:   "OUT",
		ReadCb: func(uint8) uint8 { return ip.read(1) },
		PeekCb: func(uint8) uint8 { return ip.peek(1) },
	}
}

// SetButtons sets the buttons held on the controller plugged in port (0 or
// 1). They're visible to the program at the next latch.
func (ip *InputPorts) SetButtons(port int, b input.Buttons) {
	ip.pads[port&1] = b.Report()
}

func (ip *InputPorts) latch() {
	ip.shift = ip.pads
}

// In: $4016
func (ip *InputPorts) writeIN(_, val uint8) {
	prev := ip.strobe
	ip.strobe = val&1 == 1
	if prev && !ip.strobe {
		ip.latch()
	}
}

func (ip *InputPorts) read(port int) uint8 {
	if ip.strobe {
		ip.latch()
	}
	ret := ip.shift[port] & 1
	ip.shift[port] >>= 1

	// After 8 bits are read, a standard controller reports 1.
	ip.shift[port] |= 0x80

	// Open bus upper bits.
	return 0x40 | ret
}

func (ip *InputPorts) peek(port int) uint8 {
	if ip.strobe {
		return 0x40 | ip.pads[port]&1
	}
	return 0x40 | ip.shift[port]&1
}

// Reset releases the strobe and empties the shift registers.
func (ip *InputPorts) Reset() {
	ip.strobe = false
	ip.shift = [2]uint8{}
}

func (ip *InputPorts) State() snapshot.Input {
	return snapshot.Input{
		Strobe: ip.strobe,
		Shift:  ip.shift,
		Pads:   ip.pads,
	}
}

func (ip *InputPorts) SetState(state *snapshot.Input) {
	ip.strobe = state.Strobe
	ip.shift = state.Shift
	ip.pads = state.Pads
}

// Package input defines the controller state handed to the console once per
// frame by the presentation layer.
package input

import "strings"

// Buttons is a bitmask of the buttons pressed on a pad. The pad layout is a
// superset of the NES controller; buttons with no NES counterpart are
// ignored by the console.
type Buttons uint16

const (
	Up Buttons = 1 << iota
	Down
	Left
	Right
	A
	B
	X
	Y
	L
	R
	Start
	Select

	numButtons = 12
)

var buttonNames = [numButtons]string{
	"Up", "Down", "Left", "Right",
	"A", "B", "X", "Y",
	"L", "R",
	"Start", "Select",
}

func (b Buttons) String() string {
	var names []string
	for i := range numButtons {
		if b&(1<<i) != 0 {
			names = append(names, buttonNames[i])
		}
	}
	return strings.Join(names, "|")
}

// ButtonByName returns the button with the given (case insensitive) name.
func ButtonByName(name string) (Buttons, bool) {
	for i, n := range buttonNames {
		if strings.EqualFold(n, name) {
			return 1 << i, true
		}
	}
	return 0, false
}

// A PaddleButton identifies a button of a standard NES controller, in the
// order they are reported by the shift register.
type PaddleButton byte

const (
	PadA PaddleButton = iota
	PadB
	PadSelect
	PadStart
	PadUp
	PadDown
	PadLeft
	PadRight

	PadButtonCount
)

func (pd PaddleButton) String() string {
	var names = [PadButtonCount]string{
		"A", "B",
		"Select", "Start",
		"Up", "Down", "Left", "Right",
	}
	return names[pd]
}

var padMapping = [PadButtonCount]Buttons{
	PadA:      A,
	PadB:      B,
	PadSelect: Select,
	PadStart:  Start,
	PadUp:     Up,
	PadDown:   Down,
	PadLeft:   Left,
	PadRight:  Right,
}

// Report returns the 8-bit value latched by an NES controller, bit 0 being
// the first one shifted out.
func (b Buttons) Report() uint8 {
	var report uint8
	for i, btn := range padMapping {
		if b&btn != 0 {
			report |= 1 << i
		}
	}
	return report
}

// State holds the buttons of both pads.
type State [2]Buttons

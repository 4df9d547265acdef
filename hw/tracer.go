package hw

import (
	"io"
	"strconv"
)

// Column of the register dump in trace lines.
const traceRegsCol = 48

// A tracer logs each executed instruction with the CPU registers and the PPU
// position, in the nestest log layout so traces can be diffed against it.
type tracer struct {
	w   io.Writer
	buf []byte
}

func (t *tracer) trace(c *CPU) {
	b := c.Disasm(c.PC).AppendTo(t.buf[:0])
	b = pad(b, traceRegsCol)
	b = append(b, ' ')

	b = appendReg(b, "A:", c.A)
	b = appendReg(b, "X:", c.X)
	b = appendReg(b, "Y:", c.Y)
	b = appendReg(b, "P:", uint8(c.P))
	b = appendReg(b, "S:", c.SP)

	var line, dot int64
	if c.PPU != nil {
		line, dot = int64(c.PPU.Scanline), int64(c.PPU.Cycle)
		if line == preRenderLine {
			line = -1
		}
	}
	b = append(b, "PPU:"...)
	b = appendInt(b, line, 3)
	b = append(b, ',')
	b = appendInt(b, dot, 3)
	b = append(b, ' ')
	b = strconv.AppendInt(b, c.Cycles, 10)
	b = append(b, '\n')

	t.buf = b
	t.w.Write(b)
}

func appendHex8(b []byte, v uint8) []byte {
	const digits = "0123456789ABCDEF"
	return append(b, digits[v>>4], digits[v&0x0F])
}

func appendReg(b []byte, name string, v uint8) []byte {
	b = append(b, name...)
	b = appendHex8(b, v)
	return append(b, ' ')
}

// appendInt appends v, left-aligned in a field of width characters.
func appendInt(b []byte, v int64, width int) []byte {
	start := len(b)
	b = strconv.AppendInt(b, v, 10)
	return pad(b, start+width)
}

// pad appends spaces to b up to length n.
func pad(b []byte, n int) []byte {
	for len(b) < n {
		b = append(b, ' ')
	}
	return b
}

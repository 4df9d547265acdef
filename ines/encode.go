package ines

import (
	"bytes"
	"io"
)

// New builds an iNES rom from raw PRG and CHR data. len(prg) must be a
// multiple of 16KB and len(chr) a multiple of 8KB.
func New(prg, chr []byte, mapper uint16, mirroring NTMirroring) *Rom {
	rom := &Rom{
		PRG: append([]byte(nil), prg...),
		CHR: append([]byte(nil), chr...),
	}
	copy(rom.raw[:4], Magic)
	rom.raw[4] = uint8(len(prg) / PRGBankSize)
	rom.raw[5] = uint8(len(chr) / CHRBankSize)
	rom.raw[6] = uint8(mapper&0x0F) << 4
	rom.raw[7] = uint8(mapper & 0xF0)
	switch mirroring {
	case VertMirroring:
		rom.raw[6] |= 0x01
	case FourScreen:
		rom.raw[6] |= 0x08
	}
	rom.prgsz = len(rom.PRG)
	rom.chrsz = len(rom.CHR)
	return rom
}

// WriteTo implements io.WriterTo, it writes the rom in iNES format.
func (rom *Rom) WriteTo(w io.Writer) (int64, error) {
	var n int64
	for _, p := range [][]byte{rom.raw[:], rom.Trainer, rom.PRG, rom.CHR} {
		nn, err := w.Write(p)
		n += int64(nn)
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// Bytes returns the rom encoded in iNES format.
func (rom *Rom) Bytes() []byte {
	var buf bytes.Buffer
	rom.WriteTo(&buf)
	return buf.Bytes()
}

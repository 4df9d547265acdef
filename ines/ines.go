// Package ines implements a reader for roms in the iNES file format, used for
// the distribution of NES binary programs.
package ines

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrInvalidRom is wrapped by all errors caused by a malformed image.
var ErrInvalidRom = errors.New("invalid cartridge image")

const (
	Magic       = "NES\x1a"
	HeaderSize  = 16
	TrainerSize = 512
	PRGBankSize = 0x4000
	CHRBankSize = 0x2000
)

type Rom struct {
	header
	Trainer []byte // Trainer, 512 bytes if present, or empty.
	PRG     []byte // PRG is PRG ROM data (length is multiples of 16k)
	CHR     []byte // CHR is CHR ROM data (length is multiples of 8k)
}

// Open loads a rom from file.
func Open(path string) (*Rom, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rom := new(Rom)
	if _, err := rom.ReadFrom(f); err != nil {
		return nil, err
	}
	return rom, nil
}

// Decode parses an iNES image held in memory. The returned Rom does not alias
// buf.
func Decode(buf []byte) (*Rom, error) {
	rom := new(Rom)
	if err := rom.decode(buf); err != nil {
		return nil, err
	}
	return rom, nil
}

// ReadFrom implements io.ReaderFrom interface.
func (rom *Rom) ReadFrom(r io.Reader) (int64, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	if err := rom.decode(buf); err != nil {
		return 0, err
	}
	return int64(len(buf)), nil
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRom, fmt.Sprintf(format, args...))
}

func (rom *Rom) decode(buf []byte) error {
	var hdr header
	if err := hdr.decode(buf); err != nil {
		return fmt.Errorf("failed to decode header: %w", err)
	}
	off := HeaderSize

	section := func(name string, size int) ([]byte, error) {
		if len(buf) < off+size {
			return nil, invalidf("incomplete %s section: need %d bytes, have %d", name, size, len(buf)-off)
		}
		p := make([]byte, size)
		copy(p, buf[off:off+size])
		off += size
		return p, nil
	}

	var trainer, prg, chr []byte
	var err error
	if hdr.HasTrainer() {
		if trainer, err = section("TRAINER", TrainerSize); err != nil {
			return err
		}
	}
	if prg, err = section("PRG", hdr.prgsz); err != nil {
		return err
	}
	if chr, err = section("CHR", hdr.chrsz); err != nil {
		return err
	}

	*rom = Rom{header: hdr, Trainer: trainer, PRG: prg, CHR: chr}
	return nil
}

func (hdr *header) decode(p []byte) error {
	if len(p) < HeaderSize {
		return invalidf("too small, needs %d bytes, got %d", HeaderSize, len(p))
	}
	if string(p[:4]) != Magic {
		return invalidf("invalid magic number % x", p[:4])
	}
	copy(hdr.raw[:], p[:HeaderSize])

	hdr.prgsz = int(hdr.raw[4]) * PRGBankSize
	hdr.chrsz = int(hdr.raw[5]) * CHRBankSize
	if hdr.prgsz == 0 {
		return invalidf("no PRG bank")
	}
	return nil
}

type header struct {
	raw   [HeaderSize]byte
	prgsz int
	chrsz int
}

// PRGBanks returns the number of 16KB PRG ROM banks.
func (hdr *header) PRGBanks() int { return int(hdr.raw[4]) }

// CHRBanks returns the number of 8KB CHR ROM banks. Zero means the cartridge
// uses CHR RAM.
func (hdr *header) CHRBanks() int { return int(hdr.raw[5]) }

// HasTrainer indicates the presence of a trainer section in the rom.
func (hdr *header) HasTrainer() bool {
	return hdr.raw[6]&0x04 != 0
}

// HasPersistent indicates the presence of battery-backed memory.
func (hdr *header) HasPersistent() bool {
	return hdr.raw[6]&0x02 != 0
}

// IsNES20 reports whether the header uses the NES 2.0 extensions.
func (hdr *header) IsNES20() bool {
	return hdr.raw[7]&0x0C == 0x08
}

// Mapper returns the mapper number, made of the high nibbles of bytes 6 and 7.
func (hdr *header) Mapper() uint16 {
	lo := uint16(hdr.raw[6] >> 4)
	hi := uint16(hdr.raw[7] >> 4)
	if !hdr.IsNES20() && hdr.dirtyTail() {
		// Old rippers wrote garbage in bytes 7-15, ignore the high nibble.
		hi = 0
	}
	return hi<<4 | lo
}

func (hdr *header) dirtyTail() bool {
	for _, b := range hdr.raw[12:16] {
		if b != 0 {
			return true
		}
	}
	return false
}

// Mirroring returns the nametable mirroring declared by the header.
func (hdr *header) Mirroring() NTMirroring {
	switch {
	case hdr.raw[6]&0x08 != 0:
		return FourScreen
	case hdr.raw[6]&0x01 != 0:
		return VertMirroring
	}
	return HorzMirroring
}

// PrintInfos writes a human readable summary of the rom header.
func (rom *Rom) PrintInfos(w io.Writer) {
	format := "iNES"
	if rom.IsNES20() {
		format = "NES 2.0"
	}
	chr := fmt.Sprintf("%d x 8KB", rom.CHRBanks())
	if rom.CHRBanks() == 0 {
		chr = "8KB RAM"
	}
	fmt.Fprintf(w, "Format:     %s\n", format)
	fmt.Fprintf(w, "Mapper:     %d\n", rom.Mapper())
	fmt.Fprintf(w, "PRG ROM:    %d x 16KB\n", rom.PRGBanks())
	fmt.Fprintf(w, "CHR:        %s\n", chr)
	fmt.Fprintf(w, "Mirroring:  %s\n", rom.Mirroring())
	fmt.Fprintf(w, "Battery:    %t\n", rom.HasPersistent())
	fmt.Fprintf(w, "Trainer:    %t\n", rom.HasTrainer())
}

package snapshot

import (
	"fmt"

	"nescore/hw/hwdefs"
)

const (
	screenPixels = 256 * 240
	maxScanline  = 261
	maxDot       = 340

	// Longest stall a CPU can have pending between two steps: an odd-cycle
	// OAM DMA and two DMC fetches.
	maxStall = 514 + 2*4
)

// Validate checks the sizes and ranges Unmarshal can't enforce field by field, so
// a snapshot can be rejected before any of it is applied.
func (s *NES) Validate() error {
	ppu := &s.PPU
	if len(ppu.Pixels) != screenPixels {
		return fmt.Errorf("%w: ppu pixels: got %d, want %d", ErrCorrupt, len(ppu.Pixels), screenPixels)
	}
	if len(ppu.Frame) != screenPixels {
		return fmt.Errorf("%w: ppu frame: got %d, want %d", ErrCorrupt, len(ppu.Frame), screenPixels)
	}
	if int(ppu.SpriteCount) > MaxSprites {
		return fmt.Errorf("%w: ppu sprite count %d", ErrCorrupt, ppu.SpriteCount)
	}
	if ppu.Scanline < 0 || ppu.Scanline > maxScanline || ppu.Cycle > maxDot {
		return fmt.Errorf("%w: ppu position (%d,%d)", ErrCorrupt, ppu.Scanline, ppu.Cycle)
	}
	if s.APU.FrameCounter.CurStep > 5 {
		return fmt.Errorf("%w: frame counter step %d", ErrCorrupt, s.APU.FrameCounter.CurStep)
	}
	if err := s.APU.validate(); err != nil {
		return fmt.Errorf("%w: apu %v", ErrCorrupt, err)
	}
	if s.CPU.Stall < 0 || s.CPU.Cycles < 0 || s.Console.Cycles < 0 || s.Console.FrameTarget < 0 {
		return fmt.Errorf("%w: negative cycle count", ErrCorrupt)
	}
	if s.CPU.Stall > maxStall {
		return fmt.Errorf("%w: cpu stall %d", ErrCorrupt, s.CPU.Stall)
	}
	// The frame deadline is never more than one frame ahead of the CPU.
	if ahead := s.Console.FrameTarget - 3*s.Console.Cycles; ahead > hwdefs.PPUCyclesPerFrame {
		return fmt.Errorf("%w: frame target %d ppu cycles ahead", ErrCorrupt, ahead)
	}
	return nil
}

// validate checks the values used as lookup table indices.
func (s *APU) validate() error {
	envelope := func(name string, env *APUEnvelope) error {
		if env.Volume > 15 || env.Counter > 15 {
			return fmt.Errorf("%s envelope out of range", name)
		}
		return nil
	}
	for _, sq := range []struct {
		name string
		s    *APUSquare
	}{{"square1", &s.Square1}, {"square2", &s.Square2}} {
		if sq.s.Duty > 3 || sq.s.DutyPos > 7 {
			return fmt.Errorf("%s duty out of range", sq.name)
		}
		if err := envelope(sq.name, &sq.s.Envelope); err != nil {
			return err
		}
	}
	if s.Triangle.Pos > 31 || s.Triangle.Output > 15 {
		return fmt.Errorf("triangle sequencer out of range")
	}
	if err := envelope("noise", &s.Noise.Envelope); err != nil {
		return err
	}
	if s.DMC.OutputLevel > 127 {
		return fmt.Errorf("dmc output level out of range")
	}
	return nil
}

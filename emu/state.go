package emu

import (
	"errors"
	"fmt"

	"nescore/emu/log"
	"nescore/hw/snapshot"
)

// SaveState returns a snapshot of the whole console state. The snapshot only
// makes sense for the cartridge currently inserted.
func (c *Console) SaveState() ([]byte, error) {
	if c.mapper == nil {
		return nil, wrapErr(KindCartridge, "save state", errNoCartridge)
	}

	s := &snapshot.NES{
		Version: snapshot.Version,
		Console: snapshot.Console{
			Cycles:      c.CPU.Cycles,
			FrameTarget: c.frameTarget,
		},
		CPU:    c.CPU.State(),
		PPU:    c.PPU.State(),
		APU:    c.APU.State(),
		Mapper: c.mapper.State(),
		Input:  c.CPU.Ports.State(),
	}
	copy(s.RAM[:], c.CPU.RAM.Data)
	return s.Marshal(), nil
}

// LoadState restores a snapshot produced by SaveState. The snapshot is fully
// decoded and checked against the inserted cartridge before anything is
// applied: on error, the console state is unchanged.
func (c *Console) LoadState(buf []byte) error {
	const op = "load state"

	if c.mapper == nil {
		return wrapErr(KindCartridge, op, errNoCartridge)
	}

	s, err := snapshot.Unmarshal(buf)
	if err != nil {
		if errors.Is(err, snapshot.ErrVersion) {
			return wrapErr(KindStateVersion, op, err)
		}
		return wrapErr(KindStateCorrupt, op, err)
	}
	if err := s.Validate(); err != nil {
		return wrapErr(KindStateCorrupt, op, err)
	}
	if s.Console.Cycles != s.CPU.Cycles {
		return wrapErr(KindStateCorrupt, op, fmt.Errorf("console and cpu cycles differ: %d != %d", s.Console.Cycles, s.CPU.Cycles))
	}

	// The mapper checks the state against the cartridge layout before
	// modifying anything, so it goes first.
	if err := c.mapper.SetState(&s.Mapper); err != nil {
		return wrapErr(KindStateCorrupt, op, err)
	}

	c.CPU.SetState(&s.CPU)
	copy(c.CPU.RAM.Data, s.RAM[:])
	c.PPU.SetState(&s.PPU)
	c.APU.SetState(&s.APU)
	c.CPU.Ports.SetState(&s.Input)
	c.frameTarget = s.Console.FrameTarget

	log.ModEmu.InfoZ("state loaded").
		Int64("cycles", c.CPU.Cycles).
		Uint32("frame", c.PPU.FrameCount).
		End()
	return nil
}

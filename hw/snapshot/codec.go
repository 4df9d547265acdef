package snapshot

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-faster/jx"
)

var (
	ErrVersion = errors.New("unsupported snapshot version")
	ErrCorrupt = errors.New("corrupt snapshot")
)

// Marshal encodes the snapshot as a JSON object.
func (s *NES) Marshal() []byte {
	var e jx.Encoder
	encodeObj(&e, s.fields())
	return e.Bytes()
}

// Unmarshal decodes a snapshot produced by Marshal. Every field must be
// present and within range, arrays must have their exact size.
func Unmarshal(buf []byte) (*NES, error) {
	// Valid also rejects anything following the top-level object.
	if !jx.Valid(buf) {
		return nil, fmt.Errorf("%w: malformed json", ErrCorrupt)
	}

	s := new(NES)
	if err := decodeObj(jx.DecodeBytes(buf), s.fields()); err != nil {
		if errors.Is(err, ErrVersion) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return s, nil
}

// A field binds a JSON key to a location in a snapshot structure.
type field struct {
	name string
	enc  func(e *jx.Encoder)
	dec  func(d *jx.Decoder) error
}

// mustBeUnique panics if two fields of the same object share a key, since
// decodeObj would route both values to the first one.
func mustBeUnique(fs []field) {
	for i := range fs {
		for j := range i {
			if fs[i].name == fs[j].name {
				panic(fmt.Sprintf("snapshot: duplicate field %q", fs[i].name))
			}
		}
	}
}

func encodeObj(e *jx.Encoder, fs []field) {
	mustBeUnique(fs)
	e.ObjStart()
	for _, f := range fs {
		e.FieldStart(f.name)
		f.enc(e)
	}
	e.ObjEnd()
}

func decodeObj(d *jx.Decoder, fs []field) error {
	mustBeUnique(fs)
	seen := make([]bool, len(fs))
	err := d.Obj(func(d *jx.Decoder, key string) error {
		for i := range fs {
			if fs[i].name == key {
				seen[i] = true
				if err := fs[i].dec(d); err != nil {
					return fmt.Errorf("%s: %w", key, err)
				}
				return nil
			}
		}
		return d.Skip()
	})
	if err != nil {
		return err
	}
	for i, ok := range seen {
		if !ok {
			return fmt.Errorf("missing field %q", fs[i].name)
		}
	}
	return nil
}

func intField(name string, lo, hi int64, get func() int64, set func(int64)) field {
	return field{
		name: name,
		enc:  func(e *jx.Encoder) { e.Int64(get()) },
		dec: func(d *jx.Decoder) error {
			v, err := d.Int64()
			if err != nil {
				return err
			}
			if v < lo || v > hi {
				return fmt.Errorf("value %d out of range [%d, %d]", v, lo, hi)
			}
			set(v)
			return nil
		},
	}
}

func u8(name string, p *uint8) field {
	return intField(name, 0, math.MaxUint8, func() int64 { return int64(*p) }, func(v int64) { *p = uint8(v) })
}

func u16(name string, p *uint16) field {
	return intField(name, 0, math.MaxUint16, func() int64 { return int64(*p) }, func(v int64) { *p = uint16(v) })
}

func u32(name string, p *uint32) field {
	return intField(name, 0, math.MaxUint32, func() int64 { return int64(*p) }, func(v int64) { *p = uint32(v) })
}

func i8(name string, p *int8) field {
	return intField(name, math.MinInt8, math.MaxInt8, func() int64 { return int64(*p) }, func(v int64) { *p = int8(v) })
}

func i16(name string, p *int16) field {
	return intField(name, math.MinInt16, math.MaxInt16, func() int64 { return int64(*p) }, func(v int64) { *p = int16(v) })
}

func i32(name string, p *int32) field {
	return intField(name, math.MinInt32, math.MaxInt32, func() int64 { return int64(*p) }, func(v int64) { *p = int32(v) })
}

func i64(name string, p *int64) field {
	return intField(name, math.MinInt64, math.MaxInt64, func() int64 { return *p }, func(v int64) { *p = v })
}

func integer(name string, p *int) field {
	return intField(name, math.MinInt32, math.MaxInt32, func() int64 { return int64(*p) }, func(v int64) { *p = int(v) })
}

func boolean(name string, p *bool) field {
	return field{
		name: name,
		enc:  func(e *jx.Encoder) { e.Bool(*p) },
		dec: func(d *jx.Decoder) (err error) {
			*p, err = d.Bool()
			return err
		},
	}
}

// blob is a variable-length byte slice.
func blob(name string, p *[]uint8) field {
	return field{
		name: name,
		enc:  func(e *jx.Encoder) { e.Base64(*p) },
		dec: func(d *jx.Decoder) error {
			buf, err := d.Base64()
			if err != nil {
				return err
			}
			*p = buf
			return nil
		},
	}
}

// array is a fixed-length byte array, the decoded length must match.
func array(name string, p []uint8) field {
	return field{
		name: name,
		enc:  func(e *jx.Encoder) { e.Base64(p) },
		dec: func(d *jx.Decoder) error {
			buf, err := d.Base64()
			if err != nil {
				return err
			}
			if len(buf) != len(p) {
				return fmt.Errorf("got %d bytes, want %d", len(buf), len(p))
			}
			copy(p, buf)
			return nil
		},
	}
}

func int16s(name string, p *[]int16) field {
	return field{
		name: name,
		enc: func(e *jx.Encoder) {
			e.ArrStart()
			for _, v := range *p {
				e.Int64(int64(v))
			}
			e.ArrEnd()
		},
		dec: func(d *jx.Decoder) error {
			var vals []int16
			err := d.Arr(func(d *jx.Decoder) error {
				v, err := d.Int64()
				if err != nil {
					return err
				}
				if v < math.MinInt16 || v > math.MaxInt16 {
					return fmt.Errorf("sample %d out of range", v)
				}
				vals = append(vals, int16(v))
				return nil
			})
			*p = vals
			return err
		},
	}
}

func object(name string, fs ...field) field {
	return field{
		name: name,
		enc:  func(e *jx.Encoder) { encodeObj(e, fs) },
		dec:  func(d *jx.Decoder) error { return decodeObj(d, fs) },
	}
}

// objects is a fixed-length array of objects, at returns the fields of the
// i-th element.
func objects(name string, n int, at func(i int) []field) field {
	return field{
		name: name,
		enc: func(e *jx.Encoder) {
			e.ArrStart()
			for i := range n {
				encodeObj(e, at(i))
			}
			e.ArrEnd()
		},
		dec: func(d *jx.Decoder) error {
			i := 0
			err := d.Arr(func(d *jx.Decoder) error {
				if i >= n {
					return fmt.Errorf("more than %d elements", n)
				}
				err := decodeObj(d, at(i))
				i++
				return err
			})
			if err != nil {
				return err
			}
			if i != n {
				return fmt.Errorf("got %d elements, want %d", i, n)
			}
			return nil
		},
	}
}

func (s *NES) fields() []field {
	version := field{
		name: "version",
		enc:  func(e *jx.Encoder) { e.Int64(int64(s.Version)) },
		dec: func(d *jx.Decoder) error {
			v, err := d.Int64()
			if err != nil {
				return err
			}
			if v != Version {
				return fmt.Errorf("%w: got %d, want %d", ErrVersion, v, Version)
			}
			s.Version = int(v)
			return nil
		},
	}

	return []field{
		version,
		object("console",
			i64("cycles", &s.Console.Cycles),
			i64("frame_target", &s.Console.FrameTarget),
		),
		object("cpu", s.CPU.fields()...),
		array("ram", s.RAM[:]),
		object("ppu", s.PPU.fields()...),
		object("apu", s.APU.fields()...),
		object("mapper",
			u16("id", &s.Mapper.ID),
			blob("prg_ram", &s.Mapper.PRGRAM),
			blob("chr_ram", &s.Mapper.CHRRAM),
			blob("regs", &s.Mapper.Regs),
		),
		object("input",
			boolean("strobe", &s.Input.Strobe),
			array("shift", s.Input.Shift[:]),
			array("pads", s.Input.Pads[:]),
		),
	}
}

func (s *CPU) fields() []field {
	return []field{
		u16("pc", &s.PC),
		u8("sp", &s.SP),
		u8("p", &s.P),
		u8("a", &s.A),
		u8("x", &s.X),
		u8("y", &s.Y),
		i64("cycles", &s.Cycles),
		i64("stall", &s.Stall),
		u8("irq_flag", &s.IRQFlag),
		boolean("nmi_line", &s.NMILine),
		boolean("nmi_pending", &s.NMIPending),
	}
}

func (s *PPU) fields() []field {
	bg := &s.BgRegs
	return []field{
		array("palette", s.Palette[:]),
		array("oam", s.OAMMem[:]),
		array("nametables", s.Nametables[:]),
		blob("pixels", &s.Pixels),
		blob("frame", &s.Frame),
		objects("sprites", len(s.Sprites), func(i int) []field {
			sp := &s.Sprites[i]
			return []field{
				u8("id", &sp.ID),
				u8("x", &sp.X),
				u8("attr", &sp.Attr),
				u8("lo", &sp.DataL),
				u8("hi", &sp.DataH),
			}
		}),
		u8("sprite_count", &s.SpriteCount),
		u8("open_bus", &s.OpenBus),
		u8("oam_addr", &s.OAMAddr),
		u16("v", &s.VRAMAddr),
		u16("t", &s.VRAMTemp),
		u8("x", &s.FineX),
		boolean("w", &s.WriteLatch),
		u8("data_buf", &s.PPUDataBuf),
		object("bg",
			u8("nt", &bg.NT),
			u8("at", &bg.AT),
			u8("lo", &bg.BgLo),
			u8("hi", &bg.BgHi),
			u16("shift_lo", &bg.BgShiftLo),
			u16("shift_hi", &bg.BgShiftHi),
			u8("at_shift_lo", &bg.ATShiftLo),
			u8("at_shift_hi", &bg.ATShiftHi),
			boolean("at_latch_lo", &bg.ATLatchLo),
			boolean("at_latch_hi", &bg.ATLatchHi),
		),
		u8("ctrl", &s.PPUCTRL),
		u8("mask", &s.PPUMASK),
		u8("status", &s.PPUSTATUS),
		boolean("nmi_output", &s.NMIOutput),
		u32("cycle", &s.Cycle),
		integer("scanline", &s.Scanline),
		u32("frame_count", &s.FrameCount),
	}
}

func timerFields(t *APUTimer) field {
	return object("timer",
		u16("timer", &t.Timer),
		u16("period", &t.Period),
	)
}

func lengthCounterFields(lc *APULengthCounter) field {
	return object("length",
		boolean("enabled", &lc.Enabled),
		boolean("halt", &lc.Halt),
		boolean("new_halt", &lc.NewHalt),
		u8("counter", &lc.Counter),
		u8("reload", &lc.ReloadValue),
		u8("previous", &lc.PreviousValue),
	)
}

func envelopeFields(env *APUEnvelope) field {
	return object("envelope",
		boolean("constant", &env.ConstantVolume),
		u8("volume", &env.Volume),
		boolean("start", &env.Start),
		i8("divider", &env.Divider),
		u8("counter", &env.Counter),
		lengthCounterFields(&env.LengthCounter),
	)
}

func squareFields(name string, sq *APUSquare) field {
	return object(name,
		envelopeFields(&sq.Envelope),
		timerFields(&sq.Timer),
		u8("duty", &sq.Duty),
		u8("duty_pos", &sq.DutyPos),
		boolean("sweep_enabled", &sq.SweepEnabled),
		u8("sweep_period", &sq.SweepPeriod),
		boolean("sweep_negate", &sq.SweepNegate),
		u8("sweep_shift", &sq.SweepShift),
		boolean("reload_sweep", &sq.ReloadSweep),
		u8("sweep_divider", &sq.SweepDivider),
		u32("sweep_target", &sq.SweepTargetPeriod),
		u16("real_period", &sq.RealPeriod),
	)
}

func (s *APU) fields() []field {
	tri, noise, dmc, fc := &s.Triangle, &s.Noise, &s.DMC, &s.FrameCounter
	return []field{
		squareFields("square1", &s.Square1),
		squareFields("square2", &s.Square2),
		object("triangle",
			lengthCounterFields(&tri.LengthCounter),
			timerFields(&tri.Timer),
			u8("linear", &tri.LinearCounter),
			u8("linear_reload_value", &tri.LinearCounterReload),
			boolean("linear_reload", &tri.LinearReload),
			boolean("linear_ctrl", &tri.LinearCtrl),
			u8("pos", &tri.Pos),
			u8("out", &tri.Output),
		),
		object("noise",
			envelopeFields(&noise.Envelope),
			timerFields(&noise.Timer),
			u16("shift", &noise.ShiftReg),
			boolean("mode", &noise.Mode),
		),
		object("dmc",
			timerFields(&dmc.Timer),
			u16("sample_addr", &dmc.SampleAddr),
			u16("sample_len", &dmc.SampleLen),
			u16("addr", &dmc.CurrentAddr),
			u16("remaining", &dmc.Remaining),
			u8("level", &dmc.OutputLevel),
			u8("buf", &dmc.ReadBuf),
			u8("bits_left", &dmc.BitsLeft),
			u8("shift", &dmc.ShiftReg),
			boolean("irq_enabled", &dmc.IRQEnabled),
			boolean("loop", &dmc.Loop),
			boolean("buf_empty", &dmc.BufEmpty),
			boolean("silence", &dmc.Silence),
			u8("start_delay", &dmc.StartDelay),
			u8("disable_delay", &dmc.DisableDelay),
		),
		object("frame_counter",
			i32("cycle", &fc.Cycle),
			u8("step", &fc.CurStep),
			u8("mode", &fc.StepMode),
			boolean("inhibit_irq", &fc.InhibitIRQ),
			u8("block_tick", &fc.BlockTick),
			i16("new_val", &fc.NewVal),
			i8("write_delay", &fc.WriteDelayCounter),
		),
		object("mixer",
			i64("clock", &s.Mixer.Clock),
			int16s("samples", &s.Mixer.Samples),
		),
	}
}

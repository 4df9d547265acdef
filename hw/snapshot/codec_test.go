package snapshot

import (
	"bytes"
	"errors"
	"testing"

	"github.com/go-faster/jx"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"nescore/hw/hwdefs"
)

func sampleState() *NES {
	s := &NES{Version: Version}
	s.Console = Console{Cycles: 123456789, FrameTarget: 89342 * 42}
	s.CPU = CPU{PC: 0xC000, SP: 0xFD, P: 0x24, A: 1, X: 2, Y: 3, Cycles: 99, Stall: 514, IRQFlag: 0x02, NMIPending: true}
	for i := range s.RAM {
		s.RAM[i] = byte(i * 7)
	}
	s.PPU.Palette[3] = 0x30
	s.PPU.OAMMem[255] = 0xEE
	s.PPU.Nametables[0xFFF] = 0x12
	s.PPU.Pixels = bytes.Repeat([]byte{0x0F}, 256*240)
	s.PPU.Frame = bytes.Repeat([]byte{0x21}, 256*240)
	s.PPU.Sprites[7] = Sprite{ID: 63, X: 200, Attr: 0x43, DataL: 0xAA, DataH: 0x55}
	s.PPU.SpriteCount = 8
	s.PPU.VRAMAddr = 0x3FFF
	s.PPU.BgRegs.BgShiftHi = 0xBEEF
	s.PPU.BgRegs.ATLatchLo = true
	s.PPU.Scanline = 261
	s.PPU.Cycle = 340
	s.APU.Square1.Envelope.Divider = -1
	s.APU.Square1.Envelope.LengthCounter.Counter = 254
	s.APU.Square2.SweepTargetPeriod = 0x800
	s.APU.Noise.ShiftReg = 0x7FFF
	s.APU.DMC.SampleAddr = 0xC040
	s.APU.FrameCounter.NewVal = -1
	s.APU.FrameCounter.WriteDelayCounter = -1
	s.APU.Mixer = APUMixer{Clock: 1000, Samples: []int16{-32768, 0, 32767}}
	s.Mapper = Mapper{ID: 0, PRGRAM: bytes.Repeat([]byte{1}, 0x2000)}
	s.Input = Input{Strobe: true, Shift: [2]uint8{0xFF, 0x01}, Pads: [2]uint8{0x81, 0}}
	return s
}

func TestRoundTrip(t *testing.T) {
	want := sampleState()
	got, err := Unmarshal(want.Marshal())
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestUnmarshalVersion(t *testing.T) {
	s := sampleState()
	s.Version = Version + 1
	_, err := Unmarshal(s.Marshal())
	if !errors.Is(err, ErrVersion) {
		t.Fatalf("Unmarshal() error = %v, want ErrVersion", err)
	}
}

func TestUnmarshalCorrupt(t *testing.T) {
	blob := sampleState().Marshal()

	tests := []struct {
		name string
		buf  []byte
	}{
		{"empty", nil},
		{"not json", []byte("NES\x1a")},
		{"truncated", blob[:len(blob)/2]},
		{"missing fields", []byte(`{"version":1}`)},
		{"short ram", bytes.Replace(blob, []byte(`"ram":"`), []byte(`"ram":"AAAA`), 1)},
		{"trailing garbage", append(bytes.Clone(blob), "xyz"...)},
		{"trailing object", append(bytes.Clone(blob), "{}"...)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal(tt.buf)
			if !errors.Is(err, ErrCorrupt) {
				t.Fatalf("Unmarshal() error = %v, want ErrCorrupt", err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	if err := sampleState().Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}

	tests := []struct {
		name   string
		modify func(s *NES)
	}{
		{"short pixels", func(s *NES) { s.PPU.Pixels = s.PPU.Pixels[:100] }},
		{"missing frame", func(s *NES) { s.PPU.Frame = nil }},
		{"sprite count", func(s *NES) { s.PPU.SpriteCount = MaxSprites + 1 }},
		{"scanline", func(s *NES) { s.PPU.Scanline = 262 }},
		{"dot", func(s *NES) { s.PPU.Cycle = 341 }},
		{"frame step", func(s *NES) { s.APU.FrameCounter.CurStep = 6 }},
		{"duty", func(s *NES) { s.APU.Square2.Duty = 4 }},
		{"envelope volume", func(s *NES) { s.APU.Noise.Envelope.Volume = 16 }},
		{"triangle step", func(s *NES) { s.APU.Triangle.Pos = 32 }},
		{"dmc level", func(s *NES) { s.APU.DMC.OutputLevel = 128 }},
		{"negative stall", func(s *NES) { s.CPU.Stall = -1 }},
		{"huge stall", func(s *NES) { s.CPU.Stall = 100000 }},
		{"negative frame target", func(s *NES) { s.Console.FrameTarget = -1 }},
		{"frame target too far", func(s *NES) {
			s.Console.FrameTarget = 3*s.Console.Cycles + 500*hwdefs.PPUCyclesPerFrame
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := sampleState()
			tt.modify(s)
			if err := s.Validate(); !errors.Is(err, ErrCorrupt) {
				t.Fatalf("Validate() error = %v, want ErrCorrupt", err)
			}
		})
	}
}

func TestValidateFrameTarget(t *testing.T) {
	s := sampleState()
	s.Console.FrameTarget = 3*s.Console.Cycles + hwdefs.PPUCyclesPerFrame
	if err := s.Validate(); err != nil {
		t.Errorf("Validate() with target one frame ahead = %v, want nil", err)
	}
	s.Console.FrameTarget++
	if err := s.Validate(); !errors.Is(err, ErrCorrupt) {
		t.Errorf("Validate() with target past one frame = %v, want ErrCorrupt", err)
	}
}

func TestFrameFields(t *testing.T) {
	s := sampleState()
	s.PPU.FrameCount = 1234
	got, err := Unmarshal(s.Marshal())
	if err != nil {
		t.Fatal(err)
	}
	if got.PPU.FrameCount != 1234 {
		t.Errorf("FrameCount = %d, want 1234", got.PPU.FrameCount)
	}
	if diff := cmp.Diff(s.PPU.Frame, got.PPU.Frame); diff != "" {
		t.Errorf("frame mismatch (-want +got):\n%s", diff)
	}
}

func TestDuplicateFieldPanics(t *testing.T) {
	var a, b uint8
	defer func() {
		if recover() == nil {
			t.Errorf("encoding an object with duplicate keys did not panic")
		}
	}()
	var e jx.Encoder
	encodeObj(&e, []field{u8("x", &a), u8("x", &b)})
}

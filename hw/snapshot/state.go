// Package snapshot defines the persistent form of the console state. These
// structures are independent from the runtime ones: hardware components
// convert to and from them, so the runtime layout can change without
// breaking saved states.
package snapshot

// Version is the current snapshot format version. It must be bumped whenever
// a structure below changes in an incompatible way.
const Version = 1

type NES struct {
	Version int
	Console Console
	CPU     CPU
	RAM     [0x800]uint8
	PPU     PPU
	APU     APU
	Mapper  Mapper
	Input   Input
}

type Console struct {
	Cycles      int64 // CPU cycles since power up
	FrameTarget int64 // in PPU cycles
}

type CPU struct {
	PC uint16
	SP uint8
	P  uint8
	A  uint8
	X  uint8
	Y  uint8

	Cycles int64
	Stall  int64

	IRQFlag    uint8
	NMILine    bool
	NMIPending bool
}

type PPU struct {
	Palette    [0x20]uint8
	OAMMem     [0x100]uint8
	Nametables [0x1000]uint8
	Pixels     []uint8 // back buffer, palette indices
	Frame      []uint8 // last complete frame, palette indices

	Sprites     [MaxSprites]Sprite
	SpriteCount uint8

	OpenBus    uint8
	OAMAddr    uint8
	VRAMAddr   uint16
	VRAMTemp   uint16
	FineX      uint8
	WriteLatch bool
	PPUDataBuf uint8

	BgRegs PPUBgRegs

	PPUCTRL   uint8
	PPUMASK   uint8
	PPUSTATUS uint8
	NMIOutput bool

	Cycle      uint32
	Scanline   int
	FrameCount uint32
}

// MaxSprites is the size of the per-line sprite list. Only 8 entries are used
// unless the sprite limit is disabled.
const MaxSprites = 64

type Sprite struct {
	ID    uint8
	X     uint8
	Attr  uint8
	DataL uint8
	DataH uint8
}

type PPUBgRegs struct {
	NT   uint8
	AT   uint8
	BgLo uint8
	BgHi uint8

	// shift registers/latches.
	BgShiftLo uint16
	BgShiftHi uint16
	ATShiftLo uint8
	ATShiftHi uint8
	ATLatchLo bool
	ATLatchHi bool
}

type APU struct {
	Square1      APUSquare
	Square2      APUSquare
	Triangle     APUTriangle
	Noise        APUNoise
	DMC          APUDMC
	FrameCounter APUFrameCounter
	Mixer        APUMixer
}

type APUTimer struct {
	Timer  uint16
	Period uint16
}

type APULengthCounter struct {
	Enabled       bool
	Halt          bool
	NewHalt       bool
	Counter       uint8
	ReloadValue   uint8
	PreviousValue uint8
}

type APUEnvelope struct {
	ConstantVolume bool
	Volume         uint8
	Start          bool
	Divider        int8
	Counter        uint8
	LengthCounter  APULengthCounter
}

type APUSquare struct {
	Envelope APUEnvelope
	Timer    APUTimer

	Duty    uint8
	DutyPos uint8

	SweepEnabled      bool
	SweepPeriod       uint8
	SweepNegate       bool
	SweepShift        uint8
	ReloadSweep       bool
	SweepDivider      uint8
	SweepTargetPeriod uint32
	RealPeriod        uint16
}

type APUTriangle struct {
	LengthCounter APULengthCounter
	Timer         APUTimer

	LinearCounter       uint8
	LinearCounterReload uint8
	LinearReload        bool
	LinearCtrl          bool
	Pos                 uint8
	Output              uint8
}

type APUNoise struct {
	Envelope APUEnvelope
	Timer    APUTimer
	ShiftReg uint16
	Mode     bool
}

type APUDMC struct {
	Timer APUTimer

	SampleAddr  uint16
	SampleLen   uint16
	CurrentAddr uint16
	Remaining   uint16
	OutputLevel uint8
	ReadBuf     uint8
	BitsLeft    uint8
	ShiftReg    uint8

	IRQEnabled bool
	Loop       bool
	BufEmpty   bool
	Silence    bool

	StartDelay   uint8
	DisableDelay uint8
}

type APUFrameCounter struct {
	Cycle             int32
	CurStep           uint8
	StepMode          uint8
	InhibitIRQ        bool
	BlockTick         uint8
	NewVal            int16
	WriteDelayCounter int8
}

type APUMixer struct {
	Clock   int64
	Samples []int16 // not yet drained
}

// Mapper holds the cartridge-side state. Fixed-size ROM contents are not
// saved: they come from the cartridge the state is loaded into.
type Mapper struct {
	ID     uint16
	PRGRAM []uint8
	CHRRAM []uint8
	Regs   []uint8
}

type Input struct {
	Strobe bool
	Shift  [2]uint8
	Pads   [2]uint8
}

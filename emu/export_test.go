package emu

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
	"github.com/google/go-cmp/cmp"

	"nescore/hw/input"
)

func TestWritePNG(t *testing.T) {
	nes := newTestConsole(t, demo)
	runFrames(nes, 3, input.State{})
	frame := nes.Framebuffer()

	var buf bytes.Buffer
	if err := WritePNG(&buf, frame); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}

	want := FrameImage(frame)
	if img.Bounds() != want.Bounds() {
		t.Fatalf("bounds = %v, want %v", img.Bounds(), want.Bounds())
	}
	for _, pt := range [][2]int{{0, 0}, {128, 120}, {255, 239}} {
		r1, g1, b1, a1 := img.At(pt[0], pt[1]).RGBA()
		r2, g2, b2, a2 := want.At(pt[0], pt[1]).RGBA()
		if r1 != r2 || g1 != g2 || b1 != b2 || a1 != a2 {
			t.Errorf("pixel %v differs", pt)
		}
	}

	if err := WritePNG(&buf, frame[:100]); err == nil {
		t.Errorf("WritePNG(short frame) = nil, want error")
	}
}

func TestSaveWAV(t *testing.T) {
	samples := []int16{0, 1, -1, 32767, -32768, 1234}
	path := filepath.Join(t.TempDir(), "out.wav")
	if err := SaveWAV(path, 22050, samples); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		t.Fatal("not a valid wav file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatal(err)
	}
	if dec.SampleRate != 22050 || dec.NumChans != 1 || dec.BitDepth != 16 {
		t.Errorf("format: rate=%d chans=%d depth=%d", dec.SampleRate, dec.NumChans, dec.BitDepth)
	}

	got := make([]int16, len(buf.Data))
	for i, v := range buf.Data {
		got[i] = int16(v)
	}
	if diff := cmp.Diff(samples, got); diff != "" {
		t.Errorf("samples (-want +got):\n%s", diff)
	}
}

func TestSavePNGError(t *testing.T) {
	frame := make([]byte, 256*240*4)
	err := SavePNG(filepath.Join(t.TempDir(), "no", "dir", "x.png"), frame)
	if err == nil {
		t.Fatal("SavePNG() = nil, want error")
	}
}

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"nescore/emu"
	"nescore/hw/input"
	"nescore/ines"
)

// writeROM writes an NROM image running prog at $8000.
func writeROM(tb testing.TB, dir, name string, prog ...byte) string {
	tb.Helper()

	prg := make([]byte, 0x4000)
	copy(prg, prog)
	prg[0x3FFC] = 0x00
	prg[0x3FFD] = 0x80

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, ines.New(prg, nil, 0, ines.HorzMirroring).Bytes(), 0644); err != nil {
		tb.Fatal(err)
	}
	return path
}

func TestParseButtons(t *testing.T) {
	tests := []struct {
		in      string
		want    input.Buttons
		wantErr bool
	}{
		{"", 0, false},
		{"A", input.A, false},
		{"a, start,Up", input.A | input.Start | input.Up, false},
		{"A,Turbo", 0, true},
	}
	for _, tt := range tests {
		got, err := parseButtons(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseButtons(%q) error = %v, wantErr %t", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseButtons(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseArgs(t *testing.T) {
	dir := t.TempDir()
	rom := writeROM(t, dir, "loop.nes", 0x4C, 0x00, 0x80)

	cli := parseArgs([]string{"run", rom, "--frames", "10", "--buttons", "A,B"})
	if cli.mode != runMode {
		t.Fatalf("mode = %d, want run", cli.mode)
	}
	want := Run{RomPath: rom, Frames: 10, Buttons: "A,B"}
	if diff := cmp.Diff(want, cli.Run, cmp.AllowUnexported(outfile{})); diff != "" {
		t.Errorf("run args (-want +got):\n%s", diff)
	}

	cli = parseArgs([]string{"batch", rom, rom, "-j", "3"})
	if cli.mode != batchMode || len(cli.Batch.RomPaths) != 2 || cli.Batch.Jobs != 3 || cli.Batch.Frames != 60 {
		t.Errorf("unexpected batch args: %+v", cli.Batch)
	}

	if cli = parseArgs([]string{"rom-infos", rom}); cli.mode != romInfosMode {
		t.Errorf("mode = %d, want rom-infos", cli.mode)
	}
}

func TestRunMain(t *testing.T) {
	dir := t.TempDir()
	rom := writeROM(t, dir, "loop.nes", 0x4C, 0x00, 0x80)

	args := Run{
		RomPath:   rom,
		Frames:    5,
		PNG:       filepath.Join(dir, "out.png"),
		WAV:       filepath.Join(dir, "out.wav"),
		SaveState: filepath.Join(dir, "out.state"),
	}
	if err := runMain(args, emu.DefaultConfig()); err != nil {
		t.Fatal(err)
	}
	for _, p := range []string{args.PNG, args.WAV, args.SaveState} {
		if fi, err := os.Stat(p); err != nil || fi.Size() == 0 {
			t.Errorf("output %s missing or empty (err: %v)", p, err)
		}
	}

	// Resume from the saved state.
	args2 := Run{RomPath: rom, Frames: 1, LoadState: args.SaveState}
	if err := runMain(args2, emu.DefaultConfig()); err != nil {
		t.Fatal(err)
	}
}

func TestBatchMain(t *testing.T) {
	dir := t.TempDir()
	roms := []string{
		writeROM(t, dir, "a.nes", 0x4C, 0x00, 0x80),
		writeROM(t, dir, "b.nes", 0xE8, 0x4C, 0x00, 0x80),
		writeROM(t, dir, "c.nes", 0x4C, 0x00, 0x80),
	}

	var out bytes.Buffer
	args := Batch{RomPaths: roms, Frames: 3, Jobs: 2}
	if err := batchMain(args, emu.DefaultConfig(), &out); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != len(roms) {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(roms), out.String())
	}
	for i, line := range lines {
		if !strings.HasSuffix(line, roms[i]) {
			t.Errorf("line %d = %q, want it to end with %s", i, line, roms[i])
		}
	}

	// Same program, same output.
	digest := func(line string) string { return line[:strings.LastIndex(line, "  ")] }
	if digest(lines[0]) != digest(lines[2]) {
		t.Errorf("identical roms have different digests:\n%s\n%s", lines[0], lines[2])
	}

	// A bad rom fails the batch.
	bad := filepath.Join(dir, "bad.nes")
	if err := os.WriteFile(bad, []byte("NES"), 0644); err != nil {
		t.Fatal(err)
	}
	args.RomPaths = append(args.RomPaths, bad)
	if err := batchMain(args, emu.DefaultConfig(), &out); err == nil {
		t.Errorf("batchMain() = nil with an invalid rom, want error")
	}
}

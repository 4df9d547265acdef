package emu

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"nescore/emu/log"
)

func TestConfigRoundTrip(t *testing.T) {
	want := Config{
		Audio: AudioConfig{SampleRate: 48000, Mute: true},
		Video: VideoConfig{NoSpriteLimit: true},
		Log:   LogConfig{Modules: []string{"cpu", "ppu"}},
	}

	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	if err := SaveConfig(path, want); err != nil {
		t.Fatal(err)
	}
	got, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, got, cmpopts.IgnoreFields(Config{}, "TraceOut")); diff != "" {
		t.Errorf("config round trip (-want +got):\n%s", diff)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "[video]\nno_sprite_limit = true\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	want := DefaultConfig()
	want.Video.NoSpriteLimit = true
	if diff := cmp.Diff(want, cfg, cmpopts.IgnoreFields(Config{}, "TraceOut")); diff != "" {
		t.Errorf("config (-want +got):\n%s", diff)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadConfig(filepath.Join(dir, "missing.toml"))
	if !errors.Is(err, ErrIO) || !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("LoadConfig(missing) = %v, want not exist I/O error", err)
	}

	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(bad, []byte("[audio\nsample_rate = "), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(bad); err == nil {
		t.Errorf("LoadConfig(bad) = nil, want error")
	}
}

func TestLogConfigModuleMask(t *testing.T) {
	mask, err := LogConfig{Modules: []string{"cpu", "ppu"}}.ModuleMask()
	if err != nil {
		t.Fatal(err)
	}
	if want := log.ModCPU.Mask() | log.ModPPU.Mask(); mask != want {
		t.Errorf("mask = %x, want %x", mask, want)
	}

	mask, err = LogConfig{Modules: []string{"cpu", "all"}}.ModuleMask()
	if err != nil || mask != log.ModuleMaskAll {
		t.Errorf("ModuleMask(all) = %x, %v", mask, err)
	}

	if _, err := (LogConfig{Modules: []string{"nope"}}).ModuleMask(); err == nil {
		t.Errorf("ModuleMask(nope) = nil error")
	}
}

func TestNoSpriteLimitConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Video.NoSpriteLimit = true
	if !New(cfg).PPU.NoSpriteLimit {
		t.Errorf("video.no_sprite_limit not applied to the PPU")
	}
}

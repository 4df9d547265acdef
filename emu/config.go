package emu

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"nescore/emu/log"
	"nescore/hw/apu"

	"github.com/BurntSushi/toml"
	"github.com/kirsle/configdir"
)

type Config struct {
	Audio AudioConfig `toml:"audio"`
	Video VideoConfig `toml:"video"`
	Log   LogConfig   `toml:"log"`

	TraceOut io.Writer `toml:"-"`
}

type AudioConfig struct {
	SampleRate int  `toml:"sample_rate"`
	Mute       bool `toml:"mute"`
}

type VideoConfig struct {
	// Render all sprites of a line, instead of the first 8.
	NoSpriteLimit bool `toml:"no_sprite_limit"`
}

type LogConfig struct {
	// Modules for which debug logs are enabled, "all" enables them all.
	Modules []string `toml:"modules"`
}

// ModuleMask returns the mask of the configured log modules.
func (lc LogConfig) ModuleMask() (log.ModuleMask, error) {
	var mask log.ModuleMask
	for _, name := range lc.Modules {
		if name == "all" {
			return log.ModuleMaskAll, nil
		}
		mod, ok := log.ModuleByName(name)
		if !ok {
			return 0, fmt.Errorf("unknown log module %q", name)
		}
		mask |= mod.Mask()
	}
	return mask, nil
}

// DefaultConfig returns the configuration used when there's no config file.
func DefaultConfig() Config {
	return Config{
		Audio: AudioConfig{SampleRate: apu.DefaultSampleRate},
	}
}

// ConfigDir is the nescore directory in the user config directory.
var ConfigDir = sync.OnceValue(func() string {
	return configdir.LocalConfig("nescore")
})

const cfgFilename = "config.toml"

// DefaultConfigPath returns the path of the config file in ConfigDir.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), cfgFilename)
}

// LoadConfig loads the configuration at path. Missing keys keep their default
// value.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, wrapErr(KindIO, "load config", err)
		}
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		log.ModEmu.WarnZ("unknown config keys").
			String("path", path).
			String("keys", fmt.Sprint(undec)).
			End()
	}
	if cfg.Audio.SampleRate <= 0 {
		cfg.Audio.SampleRate = apu.DefaultSampleRate
	}
	return cfg, nil
}

// LoadConfigOrDefault loads the configuration from the nescore config
// directory, or provides the default one.
func LoadConfigOrDefault() Config {
	path := DefaultConfigPath()
	cfg, err := LoadConfig(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.ModEmu.WarnZ("failed to load config, using defaults").
				String("path", path).
				Error("err", err).
				End()
		}
		return DefaultConfig()
	}
	return cfg
}

// SaveConfig writes cfg at path, creating the parent directory if needed.
func SaveConfig(path string, cfg Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return err
	}
	if err := configdir.MakePath(filepath.Dir(path)); err != nil {
		return wrapErr(KindIO, "save config", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return wrapErr(KindIO, "save config", err)
	}
	return nil
}

package emu

import "os"

// ReadROMFile reads the rom image at path.
func ReadROMFile(path string) ([]byte, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, wrapErr(KindIO, "read rom", err)
	}
	return buf, nil
}

// LoadROMFile inserts the cartridge image at path.
func (c *Console) LoadROMFile(path string) error {
	buf, err := ReadROMFile(path)
	if err != nil {
		return err
	}
	return c.LoadROM(buf)
}

// WriteStateFile writes a save state to path. The file is written to a
// temporary file first then renamed, so a failure doesn't clobber a previous
// save.
func WriteStateFile(path string, state []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, state, 0644); err != nil {
		return wrapErr(KindIO, "write state", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return wrapErr(KindIO, "write state", err)
	}
	return nil
}

// ReadStateFile reads a save state from path.
func ReadStateFile(path string) ([]byte, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, wrapErr(KindIO, "read state", err)
	}
	return buf, nil
}

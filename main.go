package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"

	"nescore/emu"
	"nescore/emu/log"
	"nescore/ines"
)

func main() {
	cli := parseArgs(os.Args[1:])

	switch cli.mode {
	case runMode:
		checkf(runMain(cli.Run, loadConfig(cli.Config)), "failed to run %s", cli.Run.RomPath)
	case romInfosMode:
		rom, err := ines.Open(cli.RomInfos.RomPath)
		checkf(err, "failed to open rom")
		rom.PrintInfos(os.Stdout)
	case batchMode:
		checkf(batchMain(cli.Batch, loadConfig(cli.Config), os.Stdout), "batch failed")
	case versionMode:
		printVersion()
	}
}

// loadConfig loads the config file at path, or the default one if path is
// empty, and enables the log modules it lists.
func loadConfig(path string) emu.Config {
	var cfg emu.Config
	if path == "" {
		cfg = emu.LoadConfigOrDefault()
	} else {
		var err error
		cfg, err = emu.LoadConfig(path)
		checkf(err, "failed to load config")
	}

	mask, err := cfg.Log.ModuleMask()
	checkf(err, "invalid [log] section in config")
	log.EnableDebugModules(mask)
	return cfg
}

func printVersion() {
	version := "(devel)"
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" {
		version = bi.Main.Version
	}
	fmt.Printf("nescore %s %s/%s %s\n", version, runtime.GOOS, runtime.GOARCH, runtime.Version())
}

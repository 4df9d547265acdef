package main

import (
	"fmt"
	"os"
	"runtime/pprof"
	"strings"

	"nescore/emu"
	"nescore/emu/log"
	"nescore/hw/input"
)

// runMain runs a ROM for the requested number of frames then writes the
// requested outputs.
func runMain(args Run, cfg emu.Config) error {
	buttons, err := parseButtons(args.Buttons)
	if err != nil {
		return err
	}

	if args.Trace != nil {
		defer args.Trace.Close()
		cfg.TraceOut = args.Trace
	}

	nes := emu.New(cfg)
	if err := nes.LoadROMFile(args.RomPath); err != nil {
		return err
	}

	if args.LoadState != "" {
		state, err := emu.ReadStateFile(args.LoadState)
		if err != nil {
			return err
		}
		if err := nes.LoadState(state); err != nil {
			return err
		}
	}

	if args.StatsView {
		stop := launchStatsView(os.Stdout)
		defer stop()
	}

	if args.CPUProfile != "" {
		f, err := os.Create(args.CPUProfile)
		checkf(err, "failed to create cpu profile file")
		checkf(pprof.StartCPUProfile(f), "failed to start cpu profile")
		defer func() {
			pprof.StopCPUProfile()
			f.Close()
			fmt.Println("CPU profile written to", args.CPUProfile)
		}()
	}

	in := input.State{buttons, 0}
	var samples []int16
	for range args.Frames {
		nes.RunFrame(in)
		s := nes.AudioSamples()
		if args.WAV != "" {
			samples = append(samples, s...)
		}
	}

	log.ModEmu.InfoZ("run complete").
		Uint32("frames", nes.FrameCount()).
		Int64("cycles", nes.Cycles()).
		End()

	if args.PNG != "" {
		if err := emu.SavePNG(args.PNG, nes.Framebuffer()); err != nil {
			return err
		}
	}
	if args.WAV != "" {
		if err := emu.SaveWAV(args.WAV, nes.SampleRate(), samples); err != nil {
			return err
		}
	}
	if args.SaveState != "" {
		state, err := nes.SaveState()
		if err != nil {
			return err
		}
		if err := emu.WriteStateFile(args.SaveState, state); err != nil {
			return err
		}
	}

	fmt.Printf("%d frames, %d cpu cycles\n", nes.FrameCount(), nes.Cycles())
	return nil
}

// parseButtons parses a comma-separated list of button names.
func parseButtons(s string) (input.Buttons, error) {
	var buttons input.Buttons
	if s == "" {
		return 0, nil
	}
	for _, name := range strings.Split(s, ",") {
		b, ok := input.ButtonByName(strings.TrimSpace(name))
		if !ok {
			return 0, fmt.Errorf("unknown button %q", name)
		}
		buttons |= b
	}
	return buttons, nil
}

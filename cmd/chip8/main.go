// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Command chip8 runs CHIP-8 programs.
//
//	chip8 [flags] program.ch8
//	chip8 -asm [flags] program.asm
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"

	"github.com/ezrec/chip8/cpu"
	"github.com/ezrec/chip8/emulator"
	"github.com/ezrec/chip8/frontend"
	"github.com/ezrec/chip8/frontend/window"
	"github.com/ezrec/chip8/internal"
)

func main() {
	var renderer string
	var hz int
	var seed uint64
	var scale int
	var verbose bool
	var quiet bool
	var assemble bool
	var output string
	var disassemble bool
	var dump bool
	var frames int
	var keyOnPress bool
	var quirks cpu.Quirks

	flag.StringVar(&renderer, "r", "window", "Renderer: window, term or none")
	flag.IntVar(&hz, "hz", emulator.DEFAULT_HZ, "Instructions per second")
	flag.Uint64Var(&seed, "seed", 0, "Random seed (0 for time based)")
	flag.IntVar(&scale, "scale", window.DEFAULT_SCALE, "Window pixels per screen pixel")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.BoolVar(&quiet, "q", false, "Only log errors")
	flag.BoolVar(&assemble, "asm", false, "Program is assembly source")
	flag.StringVar(&output, "o", "", "Write the program image to this file, do not execute")
	flag.BoolVar(&disassemble, "disasm", false, "List the program image, do not execute")
	flag.BoolVar(&dump, "dump", false, "Print the final screen when the program stops")
	flag.IntVar(&frames, "frames", 0, "Stop after this many frames (0 for no limit)")
	flag.BoolVar(&keyOnPress, "key-press", false, "ld vx, k completes on key press, not release")
	flag.BoolVar(&quirks.ShiftUsesVY, "shift-vy", false, "shr/shl shift VY into VX")
	flag.BoolVar(&quirks.IndexOverflow, "index-overflow", false, "add i, vx sets VF on overflow")
	flag.BoolVar(&quirks.ClipSprites, "clip", false, "Clip sprites at the screen edges")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %v [flags] program\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}

	flag.Parse()

	logger := internal.CreateLogger(verbose, quiet)

	if flag.NArg() == 0 {
		flag.Usage()
		return
	}

	if flag.NArg() != 1 {
		logger.Fatal(fmt.Sprintf("unknown arguments: %v", flag.Args()[1:]))
	}

	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	cfg := emulator.Config{
		Hz:         hz,
		Seed:       seed,
		Quirks:     quirks,
		FrameLimit: frames,
		KeyOnPress: keyOnPress,
	}

	emu := emulator.NewEmulator(cfg, logger)
	emu.Verbose = verbose

	path := flag.Arg(0)
	err := load(emu, path, assemble || filepath.Ext(path) == ".asm")
	if err != nil {
		logger.Fatal(err.Error())
	}

	switch {
	case disassemble:
		for code := range cpu.Disassemble(emu.Rom.Data) {
			fmt.Printf("%03x: %04x  %v\n", code.Pc, code.Word, code)
		}
		return
	case output != "":
		err = os.WriteFile(output, emu.Rom.Data, 0o644)
		if err != nil {
			logger.Fatal(err.Error())
		}
		logger.Info("wrote program image",
			log.String("file", output),
			log.Int("size", len(emu.Rom.Data)))
		return
	}

	err = run(app.Context(), emu, renderer, scale, logger)

	if dump {
		snap := emu.Snapshot()
		fmt.Print(snap.String())
	}

	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		logger.Info("Operation cancelled")
	default:
		logger.Fatal(err.Error())
	}
}

func load(emu *emulator.Emulator, path string, assemble bool) (err error) {
	if !assemble {
		return emu.LoadFile(path)
	}

	inf, err := os.Open(path)
	if err != nil {
		return
	}
	defer inf.Close()

	err = emu.Assemble(filepath.Base(path), inf)
	if err != nil {
		err = fmt.Errorf("%v: %w", path, err)
	}

	return
}

func run(ctx context.Context, emu *emulator.Emulator, renderer string, scale int, logger *log.Logger) (err error) {
	switch renderer {
	case "window":
		w := window.NewWindow(emu, scale, logger)
		beeper, err := window.NewBeeper()
		if err != nil {
			logger.Warn("no audio", log.Err(err))
		} else {
			defer beeper.Close()
			w.Beeper = beeper
		}
		return w.Run()
	case "term":
		return frontend.NewTerminal(emu, logger).Run(ctx)
	case "none":
		ticker := time.NewTicker(time.Second / emulator.FRAME_HZ)
		defer ticker.Stop()
		return emu.Run(ctx, ticker.C)
	}

	return fmt.Errorf("unknown renderer %q", renderer)
}

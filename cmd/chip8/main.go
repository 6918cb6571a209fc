// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ezrec/chip8/cpu"
	"github.com/ezrec/chip8/emulator"
	"github.com/ezrec/chip8/io"
	"github.com/ezrec/chip8/video"
)

// loadRom finds a ROM by name in the assets directory, or as a path.
func loadRom(assets string, name string) (rom *io.Rom, err error) {
	if fs.ValidPath(name) {
		rom, err = io.LoadRom(os.DirFS(assets), name)
		if !errors.Is(err, fs.ErrNotExist) {
			return
		}
	}

	inf, err := os.Open(name)
	if err != nil {
		return
	}
	defer inf.Close()

	return io.ReadRom(name, inf)
}

// writeOutput runs write against the named file, or stdout for "" or "-".
// A created file is closed before returning, and its Close error is
// reported.
func writeOutput(name string, write func(ouf *os.File) error) (err error) {
	if name == "" || name == "-" {
		return write(os.Stdout)
	}

	ouf, err := os.Create(name)
	if err != nil {
		return
	}
	defer func() {
		err = errors.Join(err, ouf.Close())
	}()

	err = write(ouf)
	return
}

func main() {
	log.SetFlags(0)

	rootCmd := &cobra.Command{
		Use:           "chip8",
		Short:         "CHIP-8 interpreter, disassembler and assembler",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	var assets string
	rootCmd.PersistentFlags().StringVar(&assets, "assets", "assets/games", "Directory searched for ROM names")

	// run command
	var scale int
	var ticks int
	var frames int
	var headless bool
	var listing bool
	var verbose bool
	var seed uint64

	runCmd := &cobra.Command{
		Use:   "run ROM",
		Short: "Run a ROM in a window, or on the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rom, err := loadRom(assets, args[0])
			if err != nil {
				return err
			}

			emu := emulator.NewEmulator()
			emu.Verbose = verbose
			emu.TicksPerFrame = ticks
			emu.Seed(seed)
			emu.Load(rom)

			if !headless {
				window := video.NewWindow(emu, scale, listing)
				window.Title = fmt.Sprintf("chip8: %v", rom.Name)
				err = window.Run()
				if !errors.Is(err, video.ErrNoDisplay) {
					return err
				}
				log.Printf("chip8: %v, using the terminal", err)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			term := video.NewTerminal(emu, os.Stdout)
			term.Frames = frames
			term.Listing = listing
			return term.Run(ctx)
		},
	}
	runCmd.Flags().IntVar(&scale, "scale", 10, "Window pixels per framebuffer cell")
	runCmd.Flags().IntVar(&ticks, "ticks", emulator.TICKS_PER_FRAME, "Instructions per frame")
	runCmd.Flags().IntVar(&frames, "frames", 0, "Frames to run on the terminal (0 = until halted)")
	runCmd.Flags().BoolVar(&headless, "headless", false, "Render on the terminal instead of a window")
	runCmd.Flags().BoolVar(&listing, "listing", false, "Show the disassembly listing")
	runCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Trace every executed instruction")
	runCmd.Flags().Uint64Var(&seed, "seed", 0, "Seed for the rnd instruction")

	// disasm command
	var disasmOutput string

	disasmCmd := &cobra.Command{
		Use:   "disasm ROM",
		Short: "Linearly disassemble a ROM",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rom, err := loadRom(assets, args[0])
			if err != nil {
				return err
			}

			lines := cpu.NewTable().Listing(cpu.PROGRAM_BASE, rom.Data)
			return writeOutput(disasmOutput, func(ouf *os.File) error {
				_, err := fmt.Fprintln(ouf, cpu.ListingText(lines))
				return err
			})
		},
	}
	disasmCmd.Flags().StringVarP(&disasmOutput, "output", "o", "-", "Listing output file")

	// asm command
	var asmOutput string
	var defines []string
	var asmListing bool

	asmCmd := &cobra.Command{
		Use:   "asm SOURCE",
		Short: "Assemble a source file into a ROM",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asm := &cpu.Assembler{Verbose: verbose}
			for _, define := range defines {
				name, value, ok := strings.Cut(define, "=")
				if !ok {
					value = "1"
				}
				asm.Predefine(name, value)
			}

			inf, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer inf.Close()

			prog, err := asm.Parse(inf)
			if err != nil {
				return fmt.Errorf("%v: %w", args[0], err)
			}

			if asmListing {
				log.Print(cpu.ListingText(prog.Listing(cpu.NewTable())))
			}

			if asmOutput == "" {
				asmOutput = strings.TrimSuffix(args[0], ".asm") + io.ROM_EXT
			}
			return writeOutput(asmOutput, func(ouf *os.File) error {
				_, err := ouf.Write(prog.Image)
				return err
			})
		},
	}
	asmCmd.Flags().StringVarP(&asmOutput, "output", "o", "", "ROM output file (default SOURCE.ch8)")
	asmCmd.Flags().StringArrayVarP(&defines, "define", "D", nil, "Predefine NAME=VALUE")
	asmCmd.Flags().BoolVar(&asmListing, "listing", false, "Log the assembled listing")
	asmCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log every source line")

	rootCmd.AddCommand(runCmd, disasmCmd, asmCmd)

	err := rootCmd.Execute()
	if err != nil {
		log.Fatalf("chip8: %v", err)
	}
}

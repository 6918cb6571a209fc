// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package emulator hosts a CHIP-8 machine: ROM loading, ticking,
// frame pacing and tracing.
package emulator

import (
	"log"

	"github.com/ezrec/chip8/cpu"
	"github.com/ezrec/chip8/io"
)

const (
	TICKS_PER_FRAME = 10 // Default instructions per 60Hz frame.
)

// Emulator state. Machine + instruction table + ROM.
type Emulator struct {
	Verbose       bool       // If set, logs every executed instruction.
	TicksPerFrame int        // Instructions executed by Step.
	*cpu.Machine             // Reference to the machine simulation.
	Table         *cpu.Table // Instruction table shared by execution and listing.
	Rom           *io.Rom    // Currently loaded ROM.

	Ticks  int // Instructions executed since the last reset.
	Frames int // Frames stepped since the last reset.

	disassembly []string
}

// NewEmulator creates a new emulator with an empty ROM.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		TicksPerFrame: TICKS_PER_FRAME,
		Machine:       cpu.NewMachine(nil),
		Table:         cpu.NewTable(),
		Rom:           &io.Rom{},
	}

	return
}

// Load a ROM and reset the machine.
func (emu *Emulator) Load(rom *io.Rom) {
	emu.Rom = rom
	emu.Reset()
}

// Reset the machine to the start of the loaded ROM.
func (emu *Emulator) Reset() {
	if emu.Verbose {
		log.Printf("chip8: reset %v (%d bytes)", emu.Rom.Name, emu.Rom.Size())
	}

	emu.Machine.Load(emu.Rom.Data)
	emu.Ticks = 0
	emu.Frames = 0
	emu.disassembly = nil
}

// Tick executes a single instruction.
func (emu *Emulator) Tick() (done bool, err error) {
	pc := emu.Machine.PC
	defer func() {
		if err != nil {
			err = &ErrRuntime{Address: pc, Err: err}
		}
	}()

	if emu.Verbose && !emu.Machine.Halted {
		w, ferr := emu.Machine.Fetch(pc)
		if ferr == nil {
			log.Printf("chip8: %03x: %04x %v", pc, uint16(w), emu.Table.Disassemble(w))
		}
	}

	done, err = emu.Machine.Cycle(emu.Table)
	if err == nil && !done {
		emu.Ticks++
	}

	return
}

// RunFrame executes up to count instructions, then counts down the timers
// once as a 60Hz host would.
func (emu *Emulator) RunFrame(count int) (done bool, err error) {
	for range count {
		done, err = emu.Tick()
		if done || err != nil {
			return
		}
	}

	if emu.Machine.DelayTimer > 0 {
		emu.Machine.DelayTimer--
	}
	if emu.Machine.SoundTimer > 0 {
		emu.Machine.SoundTimer--
	}
	emu.Frames++

	return
}

// Step runs one frame of TicksPerFrame instructions.
func (emu *Emulator) Step() (done bool, err error) {
	return emu.RunFrame(emu.TicksPerFrame)
}

// Framebuffer returns the live display.
func (emu *Emulator) Framebuffer() *cpu.Framebuffer {
	return &emu.Machine.Frame
}

// Disassembly returns the listing of the loaded ROM, one line per word.
func (emu *Emulator) Disassembly() []string {
	if emu.disassembly == nil {
		lines := emu.Machine.Listing(emu.Table)
		emu.disassembly = make([]string, len(lines))
		for n, line := range lines {
			emu.disassembly[n] = line.String()
		}
	}

	return emu.disassembly
}

// Current returns the listing index of the program counter, or -1 when
// outside of the ROM.
func (emu *Emulator) Current() int {
	offset := int(emu.Machine.PC) - cpu.PROGRAM_BASE
	if offset < 0 || offset >= emu.Rom.Size() || offset%2 != 0 {
		return -1
	}

	return offset / 2
}

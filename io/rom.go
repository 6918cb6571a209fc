// Package io provides the program image and texture collaborators
// of the CHIP-8 machine.
package io

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"path"
	"slices"

	"github.com/ezrec/chip8/cpu"
)

// ROM_EXT is tried when a ROM name is not found as given.
const ROM_EXT = ".ch8"

// builtin images, addressed by name ahead of any file system.
var builtin = map[string][]byte{
	"0": {0xD0, 0x05}, // drw V0, V0, $5: the font glyph for 0 at the origin.
}

// Builtins lists the names of the built-in images.
func Builtins() []string {
	return slices.Sorted(maps.Keys(builtin))
}

// Rom is a raw program image.
type Rom struct {
	Name string
	Data []byte
}

// ReadRom reads a program image, rejecting images that do not fit
// between cpu.PROGRAM_BASE and the end of memory.
func ReadRom(name string, r io.Reader) (rom *Rom, err error) {
	data, err := io.ReadAll(io.LimitReader(r, cpu.MAX_PROGRAM+1))
	if err != nil {
		return
	}

	if len(data) > cpu.MAX_PROGRAM {
		err = fmt.Errorf("%v: %w", name, ErrRomTooLarge)
		return
	}

	rom = &Rom{Name: name, Data: data}
	return
}

// LoadRom finds a named image, first among the built-in images, then in
// fsys as given, then with ROM_EXT appended.
func LoadRom(fsys fs.FS, name string) (rom *Rom, err error) {
	data, ok := builtin[name]
	if ok {
		rom = &Rom{Name: name, Data: slices.Clone(data)}
		return
	}

	if fsys == nil {
		err = &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
		return
	}

	file, err := fsys.Open(name)
	if errors.Is(err, fs.ErrNotExist) && path.Ext(name) == "" {
		file, err = fsys.Open(name + ROM_EXT)
	}
	if err != nil {
		return
	}
	defer file.Close()

	return ReadRom(name, file)
}

// Size of the image in bytes.
func (rom *Rom) Size() int {
	return len(rom.Data)
}

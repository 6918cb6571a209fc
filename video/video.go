// Package video displays a running CHIP-8 machine, either in an Ebiten
// window or on a text terminal.
package video

import (
	"errors"

	"github.com/ezrec/chip8/cpu"
	"github.com/ezrec/chip8/translate"
)

var f = translate.From

var (
	ErrNoDisplay    = errors.New(f("built without display support"))
	ErrTerminalSize = errors.New(f("terminal too small"))
)

const (
	FRAME_RATE = 60 // Frames per second.
)

// Source is a steppable machine.
type Source interface {
	// Step runs one frame, reporting a halt and its cause.
	Step() (done bool, err error)
	// Framebuffer is the live display.
	Framebuffer() *cpu.Framebuffer
	// Disassembly is the listing of the loaded program.
	Disassembly() []string
	// Current is the listing index of the next instruction, or -1.
	Current() int
}

// window returns up to count lines of the listing centred on current.
func window(lines []string, current int, count int) (view []string, marked int) {
	marked = -1
	if count <= 0 || len(lines) == 0 {
		return
	}

	start := 0
	if current >= 0 {
		start = max(0, min(current-count/2, len(lines)-count))
		marked = current - start
	}
	end := min(len(lines), start+count)

	return lines[start:end], marked
}

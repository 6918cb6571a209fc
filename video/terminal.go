package video

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"time"

	"golang.org/x/term"

	"github.com/ezrec/chip8/cpu"
)

const (
	ANSI_HOME  = "\x1b[H"  // Cursor to the top-left.
	ANSI_CLEAR = "\x1b[2J" // Erase the display.
)

// fileDescriptor is implemented by *os.File.
type fileDescriptor interface {
	Fd() uintptr
}

// Terminal renders the framebuffer with half-block characters, two
// framebuffer rows per text row.
type Terminal struct {
	Output  io.Writer     // Destination of the rendering.
	Frames  int           // Frames to run, or 0 to run until halted.
	Rate    time.Duration // Delay between frames, or 0 to run unpaced.
	Listing bool          // Print the listing after the last frame.

	src Source
}

// NewTerminal creates a terminal display paced at FRAME_RATE.
func NewTerminal(src Source, output io.Writer) *Terminal {
	return &Terminal{
		Output: output,
		Rate:   time.Second / FRAME_RATE,
		src:    src,
	}
}

// interactive reports if Output is a terminal, checking it is wide
// enough for the framebuffer.
func (t *Terminal) interactive() (ok bool, err error) {
	file, isFile := t.Output.(fileDescriptor)
	if !isFile || !term.IsTerminal(int(file.Fd())) {
		return
	}

	width, height, err := term.GetSize(int(file.Fd()))
	if err != nil {
		return
	}
	if width < cpu.SCREEN_WIDTH || height < cpu.SCREEN_HEIGHT/2 {
		err = fmt.Errorf("%w: %dx%d", ErrTerminalSize, width, height)
		return
	}

	ok = true
	return
}

// Run steps the source until it halts, the frame limit is reached, or
// ctx is done. On a terminal every frame is drawn in place; otherwise
// only the final frame is written.
func (t *Terminal) Run(ctx context.Context) (err error) {
	animate, err := t.interactive()
	if err != nil {
		return
	}

	var tick <-chan time.Time
	if t.Rate > 0 {
		ticker := time.NewTicker(t.Rate)
		defer ticker.Stop()
		tick = ticker.C
	}

	if animate {
		fmt.Fprint(t.Output, ANSI_CLEAR)
	}

	var fault error
	for frame := 0; t.Frames == 0 || frame < t.Frames; frame++ {
		var done bool
		done, fault = t.src.Step()

		if animate {
			fmt.Fprint(t.Output, ANSI_HOME)
			err = Render(t.Output, t.src.Framebuffer())
			if err != nil {
				return
			}
		}

		if done {
			break
		}

		if tick != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-tick:
			}
		} else if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	if !animate {
		err = Render(t.Output, t.src.Framebuffer())
		if err != nil {
			return
		}
	}

	if t.Listing {
		current := t.src.Current()
		for n, line := range t.src.Disassembly() {
			mark := " "
			if n == current {
				mark = ">"
			}
			fmt.Fprintf(t.Output, "%s %s\n", mark, line)
		}
	}

	return fault
}

// Render writes the framebuffer as text, SCREEN_HEIGHT/2 lines of
// SCREEN_WIDTH characters.
func Render(w io.Writer, fb *cpu.Framebuffer) error {
	out := bufio.NewWriter(w)
	for row := 0; row < cpu.SCREEN_HEIGHT; row += 2 {
		for col := range cpu.SCREEN_WIDTH {
			top := fb[row][col] != cpu.PIXEL_OFF
			bottom := fb[row+1][col] != cpu.PIXEL_OFF
			switch {
			case top && bottom:
				out.WriteRune('█')
			case top:
				out.WriteRune('▀')
			case bottom:
				out.WriteRune('▄')
			default:
				out.WriteByte(' ')
			}
		}
		out.WriteByte('\n')
	}

	return out.Flush()
}

//go:build !headless

package video

import (
	"image/color"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"

	"github.com/ezrec/chip8/cpu"
	"github.com/ezrec/chip8/io"
)

const (
	PANEL_WIDTH = 200 // Pixel width of the listing panel.
	LINE_HEIGHT = 13  // basicfont.Face7x13 line advance.
)

var (
	colorText    = color.RGBA{0xA0, 0xA0, 0xA0, 0xFF}
	colorCurrent = color.RGBA{0xFF, 0xD0, 0x40, 0xFF}
)

// Window shows the framebuffer, and optionally the listing, in an
// Ebiten window. Escape closes it.
type Window struct {
	Title   string // Window title.
	Scale   int    // Screen pixels per framebuffer cell.
	Listing bool   // Show the listing panel.

	src    Source
	screen *ebiten.Image
	done   bool
	err    error
}

var _ ebiten.Game = (*Window)(nil)

// NewWindow creates a window for a source.
func NewWindow(src Source, scale int, listing bool) *Window {
	return &Window{
		Title:   "chip8",
		Scale:   max(1, scale),
		Listing: listing,
		src:     src,
	}
}

// Run blocks until the window is closed, returning the fault that halted
// the source, if any.
func (w *Window) Run() error {
	width, height := w.Layout(0, 0)
	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowTitle(w.Title)
	ebiten.SetTPS(FRAME_RATE)

	err := ebiten.RunGame(w)
	if err != nil {
		return err
	}

	return w.err
}

func (w *Window) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	if w.done {
		return nil
	}

	w.done, w.err = w.src.Step()
	if w.err != nil {
		log.Printf("chip8: %v", w.err)
	}

	return nil
}

func (w *Window) Draw(screen *ebiten.Image) {
	if w.screen == nil {
		w.screen = ebiten.NewImage(cpu.SCREEN_WIDTH, cpu.SCREEN_HEIGHT)
	}

	w.screen.WritePixels(io.RGBA(w.src.Framebuffer(), false))

	opts := &ebiten.DrawImageOptions{}
	opts.GeoM.Scale(float64(w.Scale), float64(w.Scale))
	screen.DrawImage(w.screen, opts)

	if !w.Listing {
		return
	}

	x := cpu.SCREEN_WIDTH*w.Scale + 4
	rows := cpu.SCREEN_HEIGHT * w.Scale / LINE_HEIGHT
	lines, marked := window(w.src.Disassembly(), w.src.Current(), rows)
	for n, line := range lines {
		c := colorText
		if n == marked {
			c = colorCurrent
		}
		text.Draw(screen, line, basicfont.Face7x13, x, (n+1)*LINE_HEIGHT, c)
	}
}

func (w *Window) Layout(_, _ int) (int, int) {
	width := cpu.SCREEN_WIDTH * w.Scale
	if w.Listing {
		width += PANEL_WIDTH
	}

	return width, cpu.SCREEN_HEIGHT * w.Scale
}

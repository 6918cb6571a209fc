package cpu

import (
	"strings"
)

const (
	SCREEN_WIDTH  = 64   // Framebuffer columns.
	SCREEN_HEIGHT = 32   // Framebuffer rows.
	PIXEL_OFF     = 0x00 // Unlit cell.
	PIXEL_ON      = 0xFF // Lit cell.
)

// Framebuffer is the monochrome display, one row per scanline.
// Cells are PIXEL_OFF or PIXEL_ON so rows can be used directly as
// grayscale texture data.
type Framebuffer [SCREEN_HEIGHT][SCREEN_WIDTH]uint8

// Clear turns off every cell.
func (fb *Framebuffer) Clear() {
	for row := range fb {
		clear(fb[row][:])
	}
}

// Draw XORs an 8 pixel wide sprite onto the framebuffer, most significant
// bit leftmost, with (x, y) as its top-left corner. Pixels falling outside
// of the framebuffer are clipped. Returns true if any cell was toggled.
func (fb *Framebuffer) Draw(x, y uint8, sprite []byte) (toggled bool) {
	for r, bits := range sprite {
		row := int(y) + r
		if row >= SCREEN_HEIGHT {
			break
		}
		for c := range SPRITE_WIDTH {
			col := int(x) + c
			if col >= SCREEN_WIDTH {
				break
			}
			if bits&(0x80>>c) == 0 {
				continue
			}
			fb[row][col] ^= PIXEL_ON
			toggled = true
		}
	}

	return
}

// Lit returns the number of cells turned on.
func (fb *Framebuffer) Lit() (count int) {
	for _, row := range fb {
		for _, cell := range row {
			if cell != PIXEL_OFF {
				count++
			}
		}
	}

	return
}

// String renders the framebuffer as text, '#' for lit cells.
func (fb *Framebuffer) String() string {
	var sb strings.Builder
	sb.Grow(SCREEN_HEIGHT * (SCREEN_WIDTH + 1))
	for _, row := range fb {
		for _, cell := range row {
			if cell == PIXEL_OFF {
				sb.WriteByte('.')
			} else {
				sb.WriteByte('#')
			}
		}
		sb.WriteByte('\n')
	}

	return sb.String()
}

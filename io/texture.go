package io

import (
	"github.com/ezrec/chip8/cpu"
)

// texture replicates each framebuffer cell across channels bytes. With
// alpha set the last channel is opaque. With flip set the bottom row is
// emitted first, for graphics APIs with a bottom-left origin.
func texture(fb *cpu.Framebuffer, channels int, alpha bool, flip bool) (data []byte) {
	data = make([]byte, 0, cpu.SCREEN_WIDTH*cpu.SCREEN_HEIGHT*channels)
	for r := range cpu.SCREEN_HEIGHT {
		row := r
		if flip {
			row = cpu.SCREEN_HEIGHT - 1 - r
		}
		for _, cell := range fb[row] {
			for c := range channels {
				if alpha && c == channels-1 {
					data = append(data, 0xFF)
				} else {
					data = append(data, cell)
				}
			}
		}
	}

	return
}

// RGB returns the framebuffer as 8-bit RGB texture data.
func RGB(fb *cpu.Framebuffer, flip bool) []byte {
	return texture(fb, 3, false, flip)
}

// RGBA returns the framebuffer as 8-bit RGBA texture data.
func RGBA(fb *cpu.Framebuffer, flip bool) []byte {
	return texture(fb, 4, true, flip)
}

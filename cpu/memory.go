package cpu

const (
	MEMORY_SIZE   = 0x1000                     // Bytes of addressable memory.
	FONT_BASE     = 0x000                      // Address of the hex digit glyphs.
	FONT_GLYPH    = 5                          // Bytes per glyph.
	PROGRAM_BASE  = 0x200                      // Load address of the program image.
	MAX_PROGRAM   = MEMORY_SIZE - PROGRAM_BASE // Largest program image.
	REGISTER_FLAG = 0xF                        // VF, the flag register.
	SPRITE_WIDTH  = 8                          // Pixels per sprite row.
)

// font holds the 4x5 glyphs for the hex digits 0-F.
var font = [16 * FONT_GLYPH]byte{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// Font returns a copy of the glyph table loaded at FONT_BASE.
func Font() [16 * FONT_GLYPH]byte {
	return font
}

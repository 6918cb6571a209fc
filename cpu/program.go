package cpu

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Line is one disassembled instruction.
type Line struct {
	Address uint16
	Word    Word
	Text    string
}

func (l Line) String() string {
	return fmt.Sprintf("%04X: %04X  %v", l.Address, uint16(l.Word), l.Text)
}

// ListingText joins lines, one per row.
func ListingText(lines []Line) string {
	rows := make([]string, len(lines))
	for n, line := range lines {
		rows[n] = line.String()
	}

	return strings.Join(rows, "\n")
}

// Program is an assembled image, loaded at PROGRAM_BASE.
type Program struct {
	Image  []byte            // Raw program bytes.
	Labels map[string]uint16 // Label addresses.
}

// Listing disassembles the image, prefixing instructions with the
// labels that address them.
func (prog *Program) Listing(table *Table) (lines []Line) {
	lines = table.Listing(PROGRAM_BASE, prog.Image)

	names := slices.Sorted(maps.Keys(prog.Labels))
	for n := range lines {
		for _, name := range names {
			if prog.Labels[name] == lines[n].Address {
				lines[n].Text = name + ": " + lines[n].Text
			}
		}
	}

	return
}

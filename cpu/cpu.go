package cpu

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// Machine is the complete state of the virtual machine.
type Machine struct {
	Memory     [MEMORY_SIZE]byte // Font, program and work memory.
	Register   [16]uint8         // V0-VF. VF is the flag register.
	Index      uint16            // I register.
	PC         uint16            // Program counter.
	Stack      Stack             // Return address stack.
	DelayTimer uint8             // Decremented by the host.
	SoundTimer uint8             // Decremented by the host.
	Keys       [16]bool          // Hex keypad state.
	Frame      Framebuffer       // Display.

	Halted bool  // Set once the machine may no longer execute.
	Fault  error // Reason for the halt, if any.

	Rand *rand.Rand // Source for the rnd instruction.

	size int    // Length of the loaded program image.
	seed uint64 // Seed the random source restarts from on Load.
}

// NewMachine creates a machine with the program image loaded at
// PROGRAM_BASE. Images longer than MAX_PROGRAM are truncated.
func NewMachine(program []byte) (m *Machine) {
	m = &Machine{}
	m.Load(program)

	return
}

// Load resets all state and loads a new program image. The random
// source restarts from the last seed, so a reload replays the same
// rnd sequence.
func (m *Machine) Load(program []byte) {
	seed := m.seed

	*m = Machine{
		PC:   PROGRAM_BASE,
		seed: seed,
	}
	m.Seed(seed)
	copy(m.Memory[FONT_BASE:], font[:])
	m.size = copy(m.Memory[PROGRAM_BASE:], program)
}

// Seed replaces the random source with a deterministic one, and
// remembers the seed for the next Load.
func (m *Machine) Seed(seed uint64) {
	m.seed = seed
	m.Rand = rand.New(rand.NewPCG(seed, seed))
}

// Size returns the length of the loaded program image.
func (m *Machine) Size() int {
	return m.size
}

// Program returns the loaded program image.
func (m *Machine) Program() []byte {
	return m.Memory[PROGRAM_BASE : PROGRAM_BASE+m.size]
}

// Fetch the big-endian instruction word at addr.
func (m *Machine) Fetch(addr uint16) (w Word, err error) {
	if int(addr)+1 >= MEMORY_SIZE {
		err = ErrMemoryBounds
		return
	}

	w = Word(m.Memory[addr])<<8 | Word(m.Memory[addr+1])
	return
}

// Cycle executes exactly one instruction and returns the halted state.
// err describes the condition that halted the machine during this call.
// Cycling a halted machine does nothing.
func (m *Machine) Cycle(table *Table) (halted bool, err error) {
	if m.Halted {
		halted = true
		return
	}

	pc := m.PC
	var w Word
	fetched := false
	defer func() {
		if err != nil {
			text := UNKNOWN_TEXT
			if fetched {
				text = table.Disassemble(w)
			}
			err = &ErrInstruction{Address: pc, Word: w, Text: text, Err: err}
			m.Halted = true
			m.Fault = err
		}
		halted = m.Halted
	}()

	w, err = m.Fetch(pc)
	if err != nil {
		return
	}
	fetched = true

	entry, ok := table.Lookup(w)
	if ok {
		err = entry.Execute(m, w)
	} else {
		err = ErrUnknownInstruction
	}

	m.PC += 2

	return
}

// Listing disassembles the loaded program image.
func (m *Machine) Listing(table *Table) []Line {
	return table.Listing(PROGRAM_BASE, m.Program())
}

// String dumps the registers and stack.
func (m *Machine) String() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "pc: %03x index: %03x delay: %d sound: %d halted: %v\n",
		m.PC, m.Index, m.DelayTimer, m.SoundTimer, m.Halted)
	for n, value := range m.Register {
		fmt.Fprintf(&sb, " V%X: %02x", n, value)
		if n%4 == 3 {
			sb.WriteByte('\n')
		}
	}
	fmt.Fprintf(&sb, "stack: %d\n", m.Stack.Pointer)
	for n, addr := range m.Stack.Entries() {
		fmt.Fprintf(&sb, " %2d: %03x\n", n, addr)
	}

	return sb.String()
}

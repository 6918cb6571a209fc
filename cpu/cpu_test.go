package cpu

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewMachine(t *testing.T) {
	assert := assert.New(t)

	m := NewMachine([]byte{0x12, 0x34, 0x56})
	assert.Equal(uint16(PROGRAM_BASE), m.PC)
	assert.Equal(3, m.Size())
	assert.Equal([]byte{0x12, 0x34, 0x56}, m.Program())
	assert.Equal(font[:], m.Memory[FONT_BASE:FONT_BASE+len(font)])
	assert.Equal(byte(0), m.Memory[PROGRAM_BASE+3])
	assert.False(m.Halted)
	assert.NoError(m.Fault)
	assert.NotNil(m.Rand)
	assert.Equal(Framebuffer{}, m.Frame)
}

func TestMachine_Load(t *testing.T) {
	assert := assert.New(t)

	m := NewMachine([]byte{0x60, 0x01})
	m.Register[3] = 9
	m.Halted = true
	m.Seed(42)

	m.Load([]byte{0xA1, 0x23})
	assert.Equal(uint8(0), m.Register[3])
	assert.False(m.Halted)
	assert.NotNil(m.Rand)
	assert.Equal([]byte{0xA1, 0x23}, m.Program())

	// Oversized images are truncated at the end of memory.
	m.Load(make([]byte, MAX_PROGRAM+10))
	assert.Equal(MAX_PROGRAM, m.Size())
}

// run cycles a program image n times from a fresh machine.
func run(t *testing.T, program []byte, n int, setup func(m *Machine)) (m *Machine, err error) {
	t.Helper()

	table := NewTable()
	m = NewMachine(program)
	if setup != nil {
		setup(m)
	}
	for range n {
		var halted bool
		halted, err = m.Cycle(table)
		if halted {
			break
		}
	}

	return
}

func TestCycle_SetIndex(t *testing.T) {
	assert := assert.New(t)

	m, err := run(t, []byte{0xA3, 0x33}, 1, nil)
	assert.NoError(err)
	assert.Equal(uint16(0x333), m.Index)
	assert.Equal(uint16(PROGRAM_BASE+2), m.PC)
}

func TestCycle_SetRegister(t *testing.T) {
	assert := assert.New(t)

	m, err := run(t, []byte{0x64, 0x33}, 1, func(m *Machine) {
		m.Register[4] = 10
	})
	assert.NoError(err)
	assert.Equal(uint8(0x33), m.Register[4])
}

func TestCycle_Xor(t *testing.T) {
	assert := assert.New(t)

	m, err := run(t, []byte{0x81, 0x23}, 1, func(m *Machine) {
		m.Register[1] = 23
		m.Register[2] = 56
	})
	assert.NoError(err)
	assert.Equal(uint8(23^56), m.Register[1])
	assert.Equal(uint8(56), m.Register[2])
}

func TestCycle_Jump(t *testing.T) {
	assert := assert.New(t)

	for _, target := range []uint16{0x200, 0x202, 0x234, 0x600, 0xFFE} {
		w := 0x1000 | target
		m, err := run(t, []byte{uint8(w >> 8), uint8(w)}, 1, nil)
		assert.NoError(err)
		assert.Equal(target, m.PC, "%03x", target)
	}

	// jp V0, $300
	m, err := run(t, []byte{0xB3, 0x00}, 1, func(m *Machine) {
		m.Register[0] = 0x24
	})
	assert.NoError(err)
	assert.Equal(uint16(0x324), m.PC)
}

func TestCycle_CallReturn(t *testing.T) {
	assert := assert.New(t)

	program := []byte{
		0x22, 0x06, // 200: call $206
		0x61, 0x01, // 202: ld V1, $01
		0x00, 0x00, // 204: sys $000
		0x62, 0x02, // 206: ld V2, $02
		0x00, 0xEE, // 208: ret
	}

	table := NewTable()
	m := NewMachine(program)

	_, err := m.Cycle(table)
	assert.NoError(err)
	assert.Equal(uint16(0x206), m.PC)
	assert.Equal(uint8(1), m.Stack.Pointer)

	_, err = m.Cycle(table)
	assert.NoError(err)
	_, err = m.Cycle(table)
	assert.NoError(err)
	assert.Equal(uint16(0x202), m.PC)
	assert.Equal(uint8(0), m.Stack.Pointer)

	_, err = m.Cycle(table)
	assert.NoError(err)
	assert.Equal(uint8(1), m.Register[1])
	assert.Equal(uint8(2), m.Register[2])
}

func TestCycle_StackBounds(t *testing.T) {
	assert := assert.New(t)

	// ret with nothing to return to.
	m, err := run(t, []byte{0x00, 0xEE}, 1, nil)
	assert.True(errors.Is(err, ErrStackEmpty))
	assert.True(m.Halted)

	// call $200 recursing forever.
	m, err = run(t, []byte{0x22, 0x00}, STACK_LIMIT+5, nil)
	assert.True(errors.Is(err, ErrStackFull))
	assert.True(m.Halted)
	assert.True(m.Stack.Full())
}

func TestCycle_Skip(t *testing.T) {
	assert := assert.New(t)

	table := []struct {
		word uint16
		vx   uint8
		vy   uint8
		skip bool
	}{
		{0x3122, 0x22, 0, true},
		{0x3122, 0x21, 0, false},
		{0x4122, 0x22, 0, false},
		{0x4122, 0x21, 0, true},
		{0x5120, 7, 7, true},
		{0x5120, 7, 8, false},
		{0x9120, 7, 7, false},
		{0x9120, 7, 8, true},
	}

	for _, entry := range table {
		m, err := run(t, []byte{uint8(entry.word >> 8), uint8(entry.word)}, 1, func(m *Machine) {
			m.Register[1] = entry.vx
			m.Register[2] = entry.vy
		})
		assert.NoError(err)
		pc := uint16(PROGRAM_BASE + 2)
		if entry.skip {
			pc += 2
		}
		assert.Equal(pc, m.PC, "%04x", entry.word)
	}
}

func TestCycle_Alu(t *testing.T) {
	assert := assert.New(t)

	table := []struct {
		word     uint16
		vx, vy   uint8
		expected uint8
		flag     uint8
	}{
		{0x8120, 0x12, 0x34, 0x34, 0xAA},
		{0x8121, 0x0F, 0xF0, 0xFF, 0xAA},
		{0x8122, 0x3C, 0x0F, 0x0C, 0xAA},
		{0x8123, 0x3C, 0x0F, 0x33, 0xAA},
		{0x8124, 0x10, 0x20, 0x30, 0},
		{0x8124, 0xF0, 0x20, 0x10, 1},
		{0x8124, 0xFF, 0x01, 0x00, 1},
		{0x8125, 0x30, 0x10, 0x20, 1},
		{0x8125, 0x10, 0x30, 0xE0, 0},
		{0x8126, 0x05, 0x00, 0x02, 1},
		{0x8126, 0x04, 0x00, 0x02, 0},
		{0x8127, 0x10, 0x30, 0x20, 1},
		{0x8127, 0x30, 0x10, 0xE0, 0},
		{0x812E, 0x81, 0x00, 0x02, 1},
		{0x812E, 0x41, 0x00, 0x82, 0},
		{0x7105, 0xFE, 0x00, 0x03, 0xAA},
	}

	for _, entry := range table {
		m, err := run(t, []byte{uint8(entry.word >> 8), uint8(entry.word)}, 1, func(m *Machine) {
			m.Register[1] = entry.vx
			m.Register[2] = entry.vy
			m.Register[REGISTER_FLAG] = 0xAA
		})
		assert.NoError(err)
		assert.Equal(entry.expected, m.Register[1], "%04x", entry.word)
		assert.Equal(entry.flag, m.Register[REGISTER_FLAG], "%04x flag", entry.word)
	}
}

func TestCycle_AddCarry(t *testing.T) {
	assert := assert.New(t)

	table := NewTable()
	for _, a := range []int{0, 1, 0x7F, 0x80, 0xFF} {
		for _, b := range []int{0, 1, 0x7F, 0x80, 0xFF} {
			m := NewMachine([]byte{0x81, 0x24})
			m.Register[1] = uint8(a)
			m.Register[2] = uint8(b)
			_, err := m.Cycle(table)
			assert.NoError(err)
			assert.Equal(uint8((a+b)%256), m.Register[1])
			carry := uint8(0)
			if a+b > 255 {
				carry = 1
			}
			assert.Equal(carry, m.Register[REGISTER_FLAG], "%x+%x", a, b)
		}
	}
}

func TestCycle_FlagDestination(t *testing.T) {
	assert := assert.New(t)

	// add VF, V1 leaves the carry in VF.
	m, err := run(t, []byte{0x8F, 0x14}, 1, func(m *Machine) {
		m.Register[0xF] = 0xFF
		m.Register[1] = 0x02
	})
	assert.NoError(err)
	assert.Equal(uint8(1), m.Register[0xF])

	// shr VF stores the low bit, then shifts it out.
	m, err = run(t, []byte{0x8F, 0x06}, 1, func(m *Machine) {
		m.Register[0xF] = 0x03
	})
	assert.NoError(err)
	assert.Equal(uint8(0), m.Register[0xF])

	// shl VF stores the high bit, then shifts it.
	m, err = run(t, []byte{0x8F, 0x0E}, 1, func(m *Machine) {
		m.Register[0xF] = 0x81
	})
	assert.NoError(err)
	assert.Equal(uint8(2), m.Register[0xF])
}

func TestMachine_LoadReplaysRandom(t *testing.T) {
	assert := assert.New(t)

	program := []byte{0xC0, 0xFF, 0xC1, 0xFF, 0xC2, 0xFF}
	table := NewTable()

	m := NewMachine(program)
	m.Seed(1234)
	for range 3 {
		_, err := m.Cycle(table)
		assert.NoError(err)
	}
	first := m.Register

	m.Load(program)
	for range 3 {
		_, err := m.Cycle(table)
		assert.NoError(err)
	}
	assert.Equal(first, m.Register)
}

func TestCycle_Random(t *testing.T) {
	assert := assert.New(t)

	a, err := run(t, []byte{0xC1, 0x0F, 0xC2, 0xFF}, 2, func(m *Machine) { m.Seed(7) })
	assert.NoError(err)
	b, err := run(t, []byte{0xC1, 0x0F, 0xC2, 0xFF}, 2, func(m *Machine) { m.Seed(7) })
	assert.NoError(err)

	assert.Equal(a.Register, b.Register)
	assert.Equal(uint8(0), a.Register[1]&0xF0)
}

func TestCycle_Draw(t *testing.T) {
	assert := assert.New(t)

	program := []byte{
		0x60, 0x02, // ld V0, $02
		0x61, 0x01, // ld V1, $01
		0xF0, 0x29, // ld F, V0
		0xD0, 0x15, // drw V0, V1, $5
		0xD0, 0x15, // drw V0, V1, $5
	}

	table := NewTable()
	m := NewMachine(program)
	for range 4 {
		_, err := m.Cycle(table)
		assert.NoError(err)
	}
	assert.Equal(uint16(FONT_BASE+2*FONT_GLYPH), m.Index)
	assert.Equal(uint8(1), m.Register[REGISTER_FLAG])
	assert.Equal(uint8(PIXEL_ON), m.Frame[1][2])
	assert.Equal(uint8(PIXEL_OFF), m.Frame[2][2])
	assert.Equal(uint8(PIXEL_ON), m.Frame[2][5])
	lit := m.Frame.Lit()
	assert.Positive(lit)

	_, err := m.Cycle(table)
	assert.NoError(err)
	assert.Equal(uint8(1), m.Register[REGISTER_FLAG])
	assert.Equal(0, m.Frame.Lit())
	assert.Equal(uint16(FONT_BASE+2*FONT_GLYPH), m.Index)
}

func TestCycle_DrawBlank(t *testing.T) {
	assert := assert.New(t)

	// A blank sprite toggles nothing and clears the flag.
	m, err := run(t, []byte{0xD0, 0x03}, 1, func(m *Machine) {
		m.Index = 0x300
		m.Register[REGISTER_FLAG] = 1
	})
	assert.NoError(err)
	assert.Equal(uint8(0), m.Register[REGISTER_FLAG])
	assert.Equal(0, m.Frame.Lit())
}

func TestCycle_DrawBounds(t *testing.T) {
	assert := assert.New(t)

	m, err := run(t, []byte{0xD0, 0x0F}, 1, func(m *Machine) {
		m.Index = MEMORY_SIZE - 4
		m.Register[REGISTER_FLAG] = 0x55
	})
	assert.True(errors.Is(err, ErrMemoryBounds))
	assert.True(m.Halted)
	assert.Equal(uint8(0x55), m.Register[REGISTER_FLAG])
	assert.Equal(0, m.Frame.Lit())
}

func TestCycle_ClearScreen(t *testing.T) {
	assert := assert.New(t)

	m, err := run(t, []byte{0x00, 0xE0}, 1, func(m *Machine) {
		m.Frame.Draw(0, 0, []byte{0xFF})
	})
	assert.NoError(err)
	assert.Equal(0, m.Frame.Lit())
}

func TestCycle_Index(t *testing.T) {
	assert := assert.New(t)

	m, err := run(t, []byte{0xF3, 0x1E}, 1, func(m *Machine) {
		m.Index = 0x300
		m.Register[3] = 0x21
	})
	assert.NoError(err)
	assert.Equal(uint16(0x321), m.Index)

	m, err = run(t, []byte{0xF3, 0x29}, 1, func(m *Machine) {
		m.Register[3] = 0x1B
	})
	assert.NoError(err)
	assert.Equal(uint16(FONT_BASE+0xB*FONT_GLYPH), m.Index)

	// Only the low nibble selects a glyph.
	m, err = run(t, []byte{0xF3, 0x29}, 1, func(m *Machine) {
		m.Register[3] = 0x10
	})
	assert.NoError(err)
	assert.Equal(uint16(FONT_BASE), m.Index)
}

func TestCycle_RegisterBlock(t *testing.T) {
	assert := assert.New(t)

	m, err := run(t, []byte{0xF2, 0x55, 0xF3, 0x65}, 2, func(m *Machine) {
		m.Index = 0x400
		m.Register[0] = 1
		m.Register[1] = 2
		m.Register[2] = 3
		m.Register[3] = 4
		m.Memory[0x403] = 9
	})
	assert.NoError(err)
	assert.Equal([]byte{1, 2, 3, 9}, m.Memory[0x400:0x404])
	assert.Equal([]uint8{1, 2, 3, 9}, m.Register[:4])
	assert.Equal(uint16(0x400), m.Index)

	m, err = run(t, []byte{0xFF, 0x55}, 1, func(m *Machine) {
		m.Index = MEMORY_SIZE - 8
	})
	assert.True(errors.Is(err, ErrMemoryBounds))
	assert.Equal(make([]byte, 8), m.Memory[MEMORY_SIZE-8:])
}

func TestCycle_NotImplemented(t *testing.T) {
	assert := assert.New(t)

	for _, word := range []uint16{0x0123, 0xE19E, 0xE1A1, 0xF107, 0xF10A, 0xF115, 0xF118, 0xF133} {
		m, err := run(t, []byte{uint8(word >> 8), uint8(word)}, 1, nil)
		assert.True(errors.Is(err, ErrNotImplemented), "%04x", word)
		assert.True(m.Halted, "%04x", word)

		var ei *ErrInstruction
		if assert.True(errors.As(err, &ei)) {
			assert.Equal(uint16(PROGRAM_BASE), ei.Address)
			assert.Equal(Word(word), ei.Word)
			assert.NotEqual(UNKNOWN_TEXT, ei.Text)
		}
	}
}

func TestCycle_Unknown(t *testing.T) {
	assert := assert.New(t)

	table := NewTable()
	for _, word := range []uint16{0x5121, 0x8128, 0x912F, 0xE000, 0xF000, 0xFFFF} {
		m := NewMachine([]byte{uint8(word >> 8), uint8(word)})
		m.Register[1] = 0x11
		m.Index = 0x222
		m.Frame.Draw(1, 1, []byte{0x81})
		before := *m

		halted, err := m.Cycle(table)
		assert.True(halted, "%04x", word)
		assert.True(errors.Is(err, ErrUnknownInstruction), "%04x", word)
		assert.Equal(before.Register, m.Register)
		assert.Equal(before.Memory, m.Memory)
		assert.Equal(before.Frame, m.Frame)
		assert.Equal(before.Index, m.Index)
		assert.Equal(before.Stack, m.Stack)
		assert.Equal(err, m.Fault)

		// Halted machines do not execute.
		pc := m.PC
		halted, err = m.Cycle(table)
		assert.True(halted)
		assert.NoError(err)
		assert.Equal(pc, m.PC)
	}
}

func TestCycle_FetchBounds(t *testing.T) {
	assert := assert.New(t)

	m, err := run(t, nil, 1, func(m *Machine) {
		m.PC = MEMORY_SIZE - 1
	})
	assert.True(errors.Is(err, ErrMemoryBounds))
	assert.True(m.Halted)
	assert.Equal(uint16(MEMORY_SIZE-1), m.PC)
}

func TestMachine_String(t *testing.T) {
	assert := assert.New(t)

	m := NewMachine(nil)
	m.Register[0xA] = 0x5C
	m.Stack.Push(0x202)
	text := m.String()
	assert.Contains(text, "pc: 200")
	assert.Contains(text, "VA: 5c")
	assert.Contains(text, "0: 202")
}

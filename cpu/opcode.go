package cpu

import (
	"fmt"
)

// Op is an instruction mnemonic.
type Op int

//go:generate go tool stringer -linecomment -type=Op
const (
	OP_SYS  = Op(0)  // sys
	OP_CLS  = Op(1)  // cls
	OP_RET  = Op(2)  // ret
	OP_JP   = Op(3)  // jp
	OP_CALL = Op(4)  // call
	OP_SE   = Op(5)  // se
	OP_SNE  = Op(6)  // sne
	OP_LD   = Op(7)  // ld
	OP_ADD  = Op(8)  // add
	OP_OR   = Op(9)  // or
	OP_AND  = Op(10) // and
	OP_XOR  = Op(11) // xor
	OP_SUB  = Op(12) // sub
	OP_SHR  = Op(13) // shr
	OP_SUBN = Op(14) // subn
	OP_SHL  = Op(15) // shl
	OP_RND  = Op(16) // rnd
	OP_DRW  = Op(17) // drw
	OP_SKP  = Op(18) // skp
	OP_SKNP = Op(19) // sknp
)

// jump to NNN, or to NNN + V0.
type jump struct {
	v0 bool
}

func (op jump) Execute(m *Machine, w Word) error {
	target := w.NNN()
	if op.v0 {
		target += uint16(m.Register[0])
	}
	m.PC = target - 2
	return nil
}

func (op jump) Disassemble(w Word) string {
	if op.v0 {
		return fmt.Sprintf("%v V0, $%03X", OP_JP, w.NNN())
	}
	return fmt.Sprintf("%v $%03X", OP_JP, w.NNN())
}

// call pushes the address of the following instruction.
type call struct{}

func (call) Execute(m *Machine, w Word) error {
	if m.Stack.Full() {
		return ErrStackFull
	}
	m.Stack.Push(m.PC + 2)
	m.PC = w.NNN() - 2
	return nil
}

func (call) Disassemble(w Word) string {
	return fmt.Sprintf("%v $%03X", OP_CALL, w.NNN())
}

type subReturn struct{}

func (subReturn) Execute(m *Machine, w Word) error {
	addr, ok := m.Stack.Pop()
	if !ok {
		return ErrStackEmpty
	}
	m.PC = addr - 2
	return nil
}

func (subReturn) Disassemble(w Word) string {
	return OP_RET.String()
}

type clearScreen struct{}

func (clearScreen) Execute(m *Machine, w Word) error {
	m.Frame.Clear()
	return nil
}

func (clearScreen) Disassemble(w Word) string {
	return OP_CLS.String()
}

// skip the next instruction on (in)equality against NN or VY.
type skip struct {
	op  Op
	reg bool
}

func (op skip) Execute(m *Machine, w Word) error {
	a := m.Register[w.X()]
	b := w.NN()
	if op.reg {
		b = m.Register[w.Y()]
	}
	if (a == b) == (op.op == OP_SE) {
		m.PC += 2
	}
	return nil
}

func (op skip) Disassemble(w Word) string {
	if op.reg {
		return fmt.Sprintf("%v V%X, V%X", op.op, w.X(), w.Y())
	}
	return fmt.Sprintf("%v V%X, $%02X", op.op, w.X(), w.NN())
}

type setImmediate struct{}

func (setImmediate) Execute(m *Machine, w Word) error {
	m.Register[w.X()] = w.NN()
	return nil
}

func (setImmediate) Disassemble(w Word) string {
	return fmt.Sprintf("%v V%X, $%02X", OP_LD, w.X(), w.NN())
}

// addImmediate wraps and leaves VF alone.
type addImmediate struct{}

func (addImmediate) Execute(m *Machine, w Word) error {
	m.Register[w.X()] += w.NN()
	return nil
}

func (addImmediate) Disassemble(w Word) string {
	return fmt.Sprintf("%v V%X, $%02X", OP_ADD, w.X(), w.NN())
}

// alu is the register-register family. Arithmetic writes the flag after
// VX, so VF as a destination holds the flag. Shifts store the shifted-out
// bit first and then shift VX, so VF as a destination holds the shifted flag.
type alu struct {
	op Op
}

func (op alu) Execute(m *Machine, w Word) error {
	vx, vy := m.Register[w.X()], m.Register[w.Y()]

	var flag uint8
	flagged := true
	switch op.op {
	case OP_LD:
		vx = vy
		flagged = false
	case OP_OR:
		vx |= vy
		flagged = false
	case OP_AND:
		vx &= vy
		flagged = false
	case OP_XOR:
		vx ^= vy
		flagged = false
	case OP_ADD:
		sum := uint16(vx) + uint16(vy)
		vx = uint8(sum)
		flag = uint8(sum >> 8)
	case OP_SUB:
		if vx >= vy {
			flag = 1
		}
		vx -= vy
	case OP_SUBN:
		if vy >= vx {
			flag = 1
		}
		vx = vy - vx
	case OP_SHR:
		m.Register[REGISTER_FLAG] = vx & 1
		vx = m.Register[w.X()] >> 1
		flagged = false
	case OP_SHL:
		m.Register[REGISTER_FLAG] = vx >> 7
		vx = m.Register[w.X()] << 1
		flagged = false
	default:
		return ErrUnknownInstruction
	}

	m.Register[w.X()] = vx
	if flagged {
		m.Register[REGISTER_FLAG] = flag
	}
	return nil
}

func (op alu) Disassemble(w Word) string {
	return fmt.Sprintf("%v V%X, V%X", op.op, w.X(), w.Y())
}

type setIndex struct{}

func (setIndex) Execute(m *Machine, w Word) error {
	m.Index = w.NNN()
	return nil
}

func (setIndex) Disassemble(w Word) string {
	return fmt.Sprintf("%v I, $%03X", OP_LD, w.NNN())
}

type random struct{}

func (random) Execute(m *Machine, w Word) error {
	m.Register[w.X()] = uint8(m.Rand.UintN(256)) & w.NN()
	return nil
}

func (random) Disassemble(w Word) string {
	return fmt.Sprintf("%v V%X, $%02X", OP_RND, w.X(), w.NN())
}

// draw XORs an N row sprite from memory at I to (VX, VY).
type draw struct{}

func (draw) Execute(m *Machine, w Word) error {
	start := int(m.Index)
	end := start + int(w.N())
	if end > MEMORY_SIZE {
		return ErrMemoryBounds
	}

	m.Register[REGISTER_FLAG] = 0
	if m.Frame.Draw(m.Register[w.X()], m.Register[w.Y()], m.Memory[start:end]) {
		m.Register[REGISTER_FLAG] = 1
	}
	return nil
}

func (draw) Disassemble(w Word) string {
	return fmt.Sprintf("%v V%X, V%X, $%X", OP_DRW, w.X(), w.Y(), w.N())
}

type addIndex struct{}

func (addIndex) Execute(m *Machine, w Word) error {
	m.Index += uint16(m.Register[w.X()])
	return nil
}

func (addIndex) Disassemble(w Word) string {
	return fmt.Sprintf("%v I, V%X", OP_ADD, w.X())
}

// fontIndex points I at the glyph for the low nibble of VX.
// The high nibble is ignored so I stays inside the font table.
type fontIndex struct{}

func (fontIndex) Execute(m *Machine, w Word) error {
	m.Index = FONT_BASE + FONT_GLYPH*uint16(m.Register[w.X()]&0xF)
	return nil
}

func (fontIndex) Disassemble(w Word) string {
	return fmt.Sprintf("%v F, V%X", OP_LD, w.X())
}

// registerBlock copies V0..VX to (store) or from memory at I.
type registerBlock struct {
	store bool
}

func (op registerBlock) Execute(m *Machine, w Word) error {
	count := int(w.X()) + 1
	start := int(m.Index)
	if start+count > MEMORY_SIZE {
		return ErrMemoryBounds
	}

	if op.store {
		copy(m.Memory[start:start+count], m.Register[:count])
	} else {
		copy(m.Register[:count], m.Memory[start:start+count])
	}
	return nil
}

func (op registerBlock) Disassemble(w Word) string {
	if op.store {
		return fmt.Sprintf("%v [I], V%X", OP_LD, w.X())
	}
	return fmt.Sprintf("%v V%X, [I]", OP_LD, w.X())
}

// unimplemented is a recognized instruction this machine does not run.
type unimplemented struct {
	op     Op
	format string // Operand format, given X or NNN.
	addr   bool   // Operand is NNN.
}

func (op unimplemented) Execute(m *Machine, w Word) error {
	return ErrNotImplemented
}

func (op unimplemented) Disassemble(w Word) string {
	if op.addr {
		return op.op.String() + " " + fmt.Sprintf(op.format, w.NNN())
	}
	return op.op.String() + " " + fmt.Sprintf(op.format, w.X())
}

// standardBuckets lists the instruction set, most specific entries first.
func standardBuckets() []Bucket {
	aluEntry := func(n uint16, op Op) Entry {
		return Entry{Mask: 0xF00F, Value: 0x8000 | n, Behavior: alu{op: op}}
	}

	return []Bucket{
		{0x0, []Entry{
			{0xFFFF, 0x00E0, clearScreen{}},
			{0xFFFF, 0x00EE, subReturn{}},
			{0x0000, 0x0000, unimplemented{op: OP_SYS, format: "$%03X", addr: true}},
		}},
		{0x1, []Entry{{0xF000, 0x1000, jump{}}}},
		{0x2, []Entry{{0xF000, 0x2000, call{}}}},
		{0x3, []Entry{{0xF000, 0x3000, skip{op: OP_SE}}}},
		{0x4, []Entry{{0xF000, 0x4000, skip{op: OP_SNE}}}},
		{0x5, []Entry{{0xF00F, 0x5000, skip{op: OP_SE, reg: true}}}},
		{0x6, []Entry{{0xF000, 0x6000, setImmediate{}}}},
		{0x7, []Entry{{0xF000, 0x7000, addImmediate{}}}},
		{0x8, []Entry{
			aluEntry(0x0, OP_LD),
			aluEntry(0x1, OP_OR),
			aluEntry(0x2, OP_AND),
			aluEntry(0x3, OP_XOR),
			aluEntry(0x4, OP_ADD),
			aluEntry(0x5, OP_SUB),
			aluEntry(0x6, OP_SHR),
			aluEntry(0x7, OP_SUBN),
			aluEntry(0xE, OP_SHL),
		}},
		{0x9, []Entry{{0xF00F, 0x9000, skip{op: OP_SNE, reg: true}}}},
		{0xA, []Entry{{0xF000, 0xA000, setIndex{}}}},
		{0xB, []Entry{{0xF000, 0xB000, jump{v0: true}}}},
		{0xC, []Entry{{0xF000, 0xC000, random{}}}},
		{0xD, []Entry{{0xF000, 0xD000, draw{}}}},
		{0xE, []Entry{
			{0xF0FF, 0xE09E, unimplemented{op: OP_SKP, format: "V%X"}},
			{0xF0FF, 0xE0A1, unimplemented{op: OP_SKNP, format: "V%X"}},
		}},
		{0xF, []Entry{
			{0xF0FF, 0xF007, unimplemented{op: OP_LD, format: "V%X, DT"}},
			{0xF0FF, 0xF00A, unimplemented{op: OP_LD, format: "V%X, K"}},
			{0xF0FF, 0xF015, unimplemented{op: OP_LD, format: "DT, V%X"}},
			{0xF0FF, 0xF018, unimplemented{op: OP_LD, format: "ST, V%X"}},
			{0xF0FF, 0xF01E, addIndex{}},
			{0xF0FF, 0xF029, fontIndex{}},
			{0xF0FF, 0xF033, unimplemented{op: OP_LD, format: "B, V%X"}},
			{0xF0FF, 0xF055, registerBlock{store: true}},
			{0xF0FF, 0xF065, registerBlock{}},
		}},
	}
}

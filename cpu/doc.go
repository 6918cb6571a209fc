// Package cpu implements the interpreter and assembler for the CHIP-8 virtual machine.
//
// The machine consists of 4K of byte memory, sixteen 8-bit registers (V0-VF,
// with VF doubling as the carry/borrow/collision flag), a 16-bit index
// register (I), a program counter, a sixteen entry return stack, and a 64x32
// framebuffer drawn with XOR sprites.
//
// Instructions are decoded through a Table, an immutable list of mask/value
// entries grouped by the high nibble of the instruction word. The same Table
// drives execution (Machine.Cycle) and disassembly (Table.Disassemble).
//
// The assembler accepts the disassembler's own syntax, supporting labels,
// equates, and compile-time expression evaluation.
package cpu

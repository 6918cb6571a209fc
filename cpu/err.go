package cpu

import (
	"errors"

	"github.com/ezrec/chip8/translate"
)

var f = translate.From

var (
	// Machine errors
	ErrUnknownInstruction = errors.New(f("unknown instruction"))
	ErrNotImplemented     = errors.New(f("not implemented"))
	ErrStackEmpty         = errors.New(f("stack empty"))
	ErrStackFull          = errors.New(f("stack full"))
	ErrMemoryBounds       = errors.New(f("memory out of bounds"))

	// Table errors
	ErrTableOrder  = errors.New(f("catch-all entry is not last in its bucket"))
	ErrTableBucket = errors.New(f("entry value outside of its bucket"))

	// Assembler errors
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate     = errors.New(f("label duplicated"))
	ErrOpcodeExtraArgs    = errors.New(f("excessive arguments"))
	ErrOpcodeValueMissing = errors.New(f("value missing"))
	ErrOpcodeInvalid      = errors.New(f("opcode invalid"))
	ErrOperandInvalid     = errors.New(f("operand invalid"))
	ErrRegisterInvalid    = errors.New(f("register invalid"))
	ErrValueRange         = errors.New(f("value out of range"))
	ErrProgramTooLarge    = errors.New(f("program too large"))
)

// ErrInstruction reports the instruction that halted the machine.
type ErrInstruction struct {
	Address uint16 // Address the word was fetched from.
	Word    Word   // Instruction word.
	Text    string // Disassembly of the word.
	Err     error
}

func (err *ErrInstruction) Error() string {
	return f("%03x: %04x %v: %v", err.Address, uint16(err.Word), err.Text, err.Err)
}

func (err *ErrInstruction) Unwrap() error {
	return err.Err
}

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

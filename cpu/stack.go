package cpu

const (
	STACK_LIMIT = 16 // Maximum call depth
)

// Stack is the fixed return address stack.
type Stack struct {
	Data    [STACK_LIMIT]uint16
	Pointer uint8 // Count of entries in use.
}

// Push a value. The caller checks Full first.
func (s *Stack) Push(value uint16) {
	s.Data[s.Pointer] = value
	s.Pointer++
}

func (s *Stack) Pop() (value uint16, ok bool) {
	value, ok = s.Peek()
	if ok {
		s.Pointer--
	}
	return
}

func (s *Stack) Empty() bool {
	return s.Pointer == 0
}

func (s *Stack) Full() bool {
	return s.Pointer == STACK_LIMIT
}

func (s *Stack) Peek() (value uint16, ok bool) {
	if s.Empty() {
		return
	}

	return s.Data[s.Pointer-1], true
}

// Entries returns the in-use portion of the stack, oldest first.
func (s *Stack) Entries() []uint16 {
	return s.Data[:s.Pointer]
}

func (s *Stack) Reset() {
	clear(s.Data[:])
	s.Pointer = 0
}

package cpu

// Word is a 16-bit big-endian instruction word.
type Word uint16

// Nibble returns the nibble at index (0 is the least significant).
func (w Word) Nibble(index int) uint8 {
	return uint8((w >> (4 * index)) & 0xF)
}

// Bucket is the high nibble of the word, the Table dispatch key.
func (w Word) Bucket() uint8 {
	return w.Nibble(3)
}

// X is the first register operand.
func (w Word) X() uint8 {
	return w.Nibble(2)
}

// Y is the second register operand.
func (w Word) Y() uint8 {
	return w.Nibble(1)
}

// N is the low nibble immediate.
func (w Word) N() uint8 {
	return w.Nibble(0)
}

// NN is the low byte immediate.
func (w Word) NN() uint8 {
	return uint8(w & 0xFF)
}

// NNN is the 12-bit address immediate.
func (w Word) NNN() uint16 {
	return uint16(w & 0xFFF)
}

package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWord_Nibble(t *testing.T) {
	assert := assert.New(t)

	w := Word(0x1234)
	assert.Equal(uint8(0x4), w.Nibble(0))
	assert.Equal(uint8(0x3), w.Nibble(1))
	assert.Equal(uint8(0x2), w.Nibble(2))
	assert.Equal(uint8(0x1), w.Nibble(3))

	for _, value := range []uint16{0x0000, 0xFFFF, 0xA5C3, 0x8001, 0x0F0F} {
		for i := range 4 {
			assert.Equal(uint8((value>>(4*i))&0xF), Word(value).Nibble(i), "%04x[%d]", value, i)
		}
	}
}

func TestWord_Fields(t *testing.T) {
	assert := assert.New(t)

	w := Word(0xD7A5)
	assert.Equal(uint8(0xD), w.Bucket())
	assert.Equal(uint8(0x7), w.X())
	assert.Equal(uint8(0xA), w.Y())
	assert.Equal(uint8(0x5), w.N())
	assert.Equal(uint8(0xA5), w.NN())
	assert.Equal(uint16(0x7A5), w.NNN())
}

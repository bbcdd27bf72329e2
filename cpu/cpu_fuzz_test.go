package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iiTzHyper/avr/isa"
)

func flagSet(fl flags, bit int) bool {
	return fl.value&(1<<bit) != 0
}

func FuzzFlags(f *testing.F) {
	for _, pair := range [][2]byte{{0, 0}, {0xff, 1}, {0x7f, 1}, {0x80, 0x80}, {0x0f, 0x01}, {0x10, 0x20}} {
		f.Add(pair[0], pair[1])
	}

	f.Fuzz(func(t *testing.T, rd byte, rr byte) {
		assert := assert.New(t)

		sum := rd + rr
		fl := addFlags(rd, rr, sum)
		signed := int(int8(rd)) + int(int8(rr))
		assert.Equal(int(rd)+int(rr) > 0xff, flagSet(fl, isa.FLAG_C))
		assert.Equal((rd&0xf)+(rr&0xf) > 0xf, flagSet(fl, isa.FLAG_H))
		assert.Equal(signed < -128 || signed > 127, flagSet(fl, isa.FLAG_V))
		assert.Equal(sum == 0, flagSet(fl, isa.FLAG_Z))
		assert.Equal(int8(sum) < 0, flagSet(fl, isa.FLAG_N))
		assert.Equal(signed < 0, flagSet(fl, isa.FLAG_S))

		diff := rd - rr
		fl = subFlags(rd, rr, diff)
		signed = int(int8(rd)) - int(int8(rr))
		assert.Equal(rd < rr, flagSet(fl, isa.FLAG_C))
		assert.Equal(rd&0xf < rr&0xf, flagSet(fl, isa.FLAG_H))
		assert.Equal(signed < -128 || signed > 127, flagSet(fl, isa.FLAG_V))
		assert.Equal(diff == 0, flagSet(fl, isa.FLAG_Z))
		assert.Equal(signed < 0, flagSet(fl, isa.FLAG_S))

		word := int(rr)<<8 | int(rd)
		for _, k := range []int{0, 1, 63} {
			res := (word + k) & 0xffff
			fl = wordFlags(false, rr, res)
			assert.Equal(word+k > 0xffff, flagSet(fl, isa.FLAG_C))
			assert.Equal(word < 0x8000 && res >= 0x8000, flagSet(fl, isa.FLAG_V))

			res = (word - k) & 0xffff
			fl = wordFlags(true, rr, res)
			assert.Equal(word < k, flagSet(fl, isa.FLAG_C))
			assert.Equal(word >= 0x8000 && res < 0x8000, flagSet(fl, isa.FLAG_V))
		}
	})
}

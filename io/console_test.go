package io

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iiTzHyper/avr/isa"
)

func TestConsole_Write(t *testing.T) {
	assert := assert.New(t)

	out := &bytes.Buffer{}
	con := &Console{Output: out}

	n, err := con.Write([]byte("hello "))
	assert.NoError(err)
	assert.Equal(6, n)

	con.Muted = true
	_, err = con.Write([]byte("world"))
	assert.NoError(err)

	assert.Equal("hello ", out.String())
	assert.Equal("hello world", con.String())
	assert.Equal([]byte("hello world"), con.Bytes())
}

func TestConsole_Rewind(t *testing.T) {
	assert := assert.New(t)

	con := &Console{}
	_, err := con.Write([]byte("abc"))
	assert.NoError(err)

	con.Rewind()
	assert.Equal("", con.String())
	assert.Equal(0, len(con.Bytes()))
}

func TestConsole_Full(t *testing.T) {
	assert := assert.New(t)

	con := &Console{Capacity: 4}
	_, err := con.Write([]byte("abc"))
	assert.NoError(err)

	_, err = con.Write([]byte("de"))
	assert.ErrorIs(err, ErrChannelFull)
	assert.ErrorIs(err, isa.ErrRuntime)
	assert.Equal("abc", con.String())

	_, err = con.Write([]byte("d"))
	assert.NoError(err)
	assert.Equal("abcd", con.String())
}

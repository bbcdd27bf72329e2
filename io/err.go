package io

import (
	"github.com/iiTzHyper/avr/isa"
	"github.com/iiTzHyper/avr/translate"
)

var f = translate.From

type channelError string

func (err channelError) Error() string {
	return string(err)
}

func (err channelError) Is(target error) bool {
	return target == isa.ErrRuntime
}

var (
	// Channel errors
	ErrChannelFull = channelError(f("console full"))
)

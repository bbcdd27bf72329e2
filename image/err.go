package image

import (
	"errors"

	"github.com/iiTzHyper/avr/translate"
)

var f = translate.From

var (
	ErrCorrupt = errors.New(f("image header sizes out of range"))
)

type ErrMagic string

func (err ErrMagic) Error() string {
	return f("invalid file magic %q", string(err))
}

type ErrVersion uint32

func (err ErrVersion) Error() string {
	return f("unsupported file version %d", uint32(err))
}

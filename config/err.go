package config

import (
	"errors"

	"github.com/iiTzHyper/avr/translate"
)

var f = translate.From

var (
	ErrNoFolder = errors.New(f("no configuration folder"))
)

// ErrSetting reports an out of range setting.
type ErrSetting struct {
	Name  string
	Value int
}

func (err ErrSetting) Error() string {
	return f("setting %v: illegal value %v", err.Name, err.Value)
}

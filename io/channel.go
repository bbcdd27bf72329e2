// Package io provides the output channels of the AVR simulator.
// The interpreter's 'printf' writes to a Channel, which keeps a transcript
// of everything written since it was last rewound.
package io

import (
	"io"
)

// Channel defines the interface for simulator output channels.
type Channel interface {
	io.Writer
	// Rewind discards the transcript.
	Rewind()
	// Bytes returns the transcript.
	Bytes() []byte
}

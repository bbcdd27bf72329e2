package io

import (
	"bytes"
	"io"
)

// Console is the destination of 'printf' output. Everything written is
// kept in a transcript and, unless muted, passed on to Output.
type Console struct {
	Output   io.Writer // Live output; may be nil.
	Muted    bool      // If set, only the transcript is written.
	Capacity int       // Maximum transcript size in bytes; 0 for no limit.

	transcript bytes.Buffer
}

var _ Channel = (*Console)(nil)

// Rewind discards the transcript.
func (con *Console) Rewind() {
	con.transcript.Reset()
}

// Bytes returns the transcript.
func (con *Console) Bytes() []byte {
	return con.transcript.Bytes()
}

// String returns the transcript as a string.
func (con *Console) String() string {
	return con.transcript.String()
}

// Write appends data to the transcript, and to Output when not muted.
// Returns ErrChannelFull if the transcript would exceed its capacity.
func (con *Console) Write(data []byte) (n int, err error) {
	if con.Capacity > 0 && con.transcript.Len()+len(data) > con.Capacity {
		err = ErrChannelFull
		return
	}

	n, _ = con.transcript.Write(data)

	if !con.Muted && con.Output != nil {
		_, err = con.Output.Write(data)
	}

	return
}

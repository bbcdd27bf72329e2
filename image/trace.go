package image

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/golang/snappy"
	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"
)

var TRACE_MAGIC = "AVRT"

const TRACE_VERSION = 1

type TraceHeader struct {
	// MAGIC ("AVRT")
	Magic string `struc:"[4]byte"`
	// file format version
	Version uint32
}

// Frame is the machine state before one executed instruction.
type Frame struct {
	Step uint32 // Step count after the instruction.
	Pc   uint16
	Sp   uint16
	Sreg uint8
	Word uint16 // First opcode word of the instruction.
}

type TraceWriter struct {
	zw *snappy.Writer
}

func NewTraceWriter(w io.Writer) (*TraceWriter, error) {
	header := &TraceHeader{
		Magic:   TRACE_MAGIC,
		Version: TRACE_VERSION,
	}
	if err := struc.PackWithOrder(w, header, binary.LittleEndian); err != nil {
		return nil, errors.Wrap(err, "failed to pack header")
	}
	zw := snappy.NewBufferedWriter(w)
	return &TraceWriter{zw: zw}, nil
}

// write a frame at a time
func (t *TraceWriter) Pack(frame *Frame) error {
	return struc.PackWithOrder(t.zw, frame, binary.LittleEndian)
}

// Close flushes the compressed stream. The underlying writer is not closed.
func (t *TraceWriter) Close() error {
	return t.zw.Close()
}

type TraceReader struct {
	zr     *snappy.Reader
	size   int
	Header TraceHeader
}

func NewTraceReader(r io.Reader) (*TraceReader, error) {
	t := &TraceReader{}
	if err := struc.UnpackWithOrder(r, &t.Header, binary.LittleEndian); err != nil {
		return nil, errors.Wrap(err, "failed to unpack header")
	}
	if t.Header.Magic != TRACE_MAGIC {
		return nil, ErrMagic(t.Header.Magic)
	}
	if t.Header.Version != TRACE_VERSION {
		return nil, ErrVersion(t.Header.Version)
	}
	size, err := struc.Sizeof(&Frame{})
	if err != nil {
		return nil, err
	}
	t.size = size
	t.zr = snappy.NewReader(r)
	return t, nil
}

// Next returns the next frame, or io.EOF at the end of the trace.
func (t *TraceReader) Next() (*Frame, error) {
	buf := make([]byte, t.size)
	if _, err := io.ReadFull(t.zr, buf); err != nil {
		return nil, err
	}

	frame := &Frame{}
	if err := struc.UnpackWithOrder(bytes.NewReader(buf), frame, binary.LittleEndian); err != nil {
		return nil, err
	}
	return frame, nil
}

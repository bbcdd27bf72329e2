// Package image reads and writes flash images of assembled programs and
// execution traces of the simulator.
//
// Both file kinds start with a fixed header packed with struc, followed by
// a snappy compressed body.
package image

import (
	"encoding/binary"
	"io"

	"github.com/golang/snappy"
	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"

	"github.com/iiTzHyper/avr/isa"
)

var IMAGE_MAGIC = "AVRI"

const IMAGE_VERSION = 1

// Header of a flash image.
type Header struct {
	// MAGIC ("AVRI")
	Magic string `struc:"[4]byte"`
	// file format version
	Version uint32

	Entry uint32 // Program counter reset value.
	Words uint32 // Program memory words in the body.
	Data  uint32 // Initialized data bytes in the body, from RAM_START.
}

// Image is a flash image read back from a file.
type Image struct {
	Header Header
	Code   []uint16 // Program memory words.
	Data   []byte   // Initialized data memory from RAM_START.
}

// WriteProgram writes the program memory and initialized data of prog.
func WriteProgram(w io.Writer, prog *isa.Program) (err error) {
	header := &Header{
		Magic:   IMAGE_MAGIC,
		Version: IMAGE_VERSION,
		Entry:   uint32(prog.Entry),
		Words:   uint32(prog.Size),
		Data:    uint32(prog.DataSize),
	}
	if err = struc.PackWithOrder(w, header, binary.LittleEndian); err != nil {
		return errors.Wrap(err, "failed to pack image header")
	}

	body := make([]byte, 0, prog.Size*2+prog.DataSize)
	for _, word := range prog.Code() {
		body = binary.LittleEndian.AppendUint16(body, word)
	}
	body = append(body, prog.DMEM[isa.RAM_START:isa.RAM_START+prog.DataSize]...)

	zw := snappy.NewBufferedWriter(w)
	if _, err = zw.Write(body); err != nil {
		return errors.Wrap(err, "failed to write image body")
	}
	if err = zw.Close(); err != nil {
		return errors.Wrap(err, "failed to write image body")
	}

	return
}

// ReadProgram reads a flash image written by WriteProgram.
func ReadProgram(r io.Reader) (img *Image, err error) {
	img = &Image{}
	if err = struc.UnpackWithOrder(r, &img.Header, binary.LittleEndian); err != nil {
		return nil, errors.Wrap(err, "failed to unpack image header")
	}
	if img.Header.Magic != IMAGE_MAGIC {
		return nil, ErrMagic(img.Header.Magic)
	}
	if img.Header.Version != IMAGE_VERSION {
		return nil, ErrVersion(img.Header.Version)
	}
	if img.Header.Words > isa.FLASH_SIZE || img.Header.Data > isa.RAM_SIZE-isa.RAM_START {
		return nil, ErrCorrupt
	}

	body := make([]byte, img.Header.Words*2+img.Header.Data)
	zr := snappy.NewReader(r)
	if _, err = io.ReadFull(zr, body); err != nil {
		return nil, errors.Wrap(err, "failed to read image body")
	}

	img.Code = make([]uint16, img.Header.Words)
	for n := range img.Code {
		img.Code[n] = binary.LittleEndian.Uint16(body[n*2:])
	}
	img.Data = body[img.Header.Words*2:]

	return
}

// Matches is true if the image holds the code and data of prog.
func (img *Image) Matches(prog *isa.Program) bool {
	if int(img.Header.Entry) != prog.Entry || len(img.Code) != prog.Size || len(img.Data) != prog.DataSize {
		return false
	}

	for addr, word := range prog.Code() {
		if img.Code[addr] != word {
			return false
		}
	}

	for n, value := range img.Data {
		if prog.DMEM[isa.RAM_START+n] != value {
			return false
		}
	}

	return true
}

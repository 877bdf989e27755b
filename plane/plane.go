/*
Package plane implements the decompressors for the individual bitplane files
that make up a First Queen 4 RGBE image.

Each plane file starts with a 16-bit little-endian compression type. Type 7
is a simple run-length encoding and type 9 is a table driven code whose exact
algorithm is not known; the decoder for it is a best effort that produces
noisy output on real files. Any other type is treated as uncompressed.

Decompression never fails outright. The output is always normalized to the
requested plane size and anything suspicious about the input is reported as
a warning alongside the data.
*/
package plane

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Type is the compression type stored in the first two bytes of a plane file.
type Type uint16

const (
	// TypeRLE is the run-length encoded plane type
	TypeRLE Type = 7
	// TypeSymbolTable is the table driven 9-bit code plane type
	TypeSymbolTable Type = 9

	tagSize = 2
)

func (t Type) String() string {
	switch t {
	case TypeRLE:
		return "rle"
	case TypeSymbolTable:
		return "symbol-table"
	}
	return fmt.Sprintf("raw(%d)", uint16(t))
}

var (
	// ErrTruncated is reported when the input ran out before the plane was
	// filled; the remainder of the plane is zero
	ErrTruncated = errors.New("plane: truncated plane data")
	// ErrUnsupportedType is reported when the compression type is unknown
	// and the data was used as-is
	ErrUnsupportedType = errors.New("plane: unsupported compression type")
	// ErrIncomplete is reported for every plane decoded with a decompressor
	// that is known not to reproduce the original data faithfully
	ErrIncomplete = errors.New("plane: decode incomplete")
)

// Decompressor expands the plane file src, including its type tag, into at
// most size bytes. Any non-fatal problems are returned as warnings.
type Decompressor func(src []byte, size int) ([]byte, []error)

// LUT maps compression types to their decompressor.
type LUT map[Type]Decompressor

// Default is the lookup table used by Decode.
var Default = LUT{
	TypeRLE:         DecompressRLE,
	TypeSymbolTable: DecompressSymbolTableV1,
}

// Plane is a decompressed bitplane. Data is always exactly the requested
// plane size.
type Plane struct {
	Type     Type
	Data     []byte
	Warnings []error
}

// Decoder decompresses plane files using a configurable lookup table.
type Decoder struct {
	LUT LUT
}

// NewDecoder returns a Decoder using a copy of the Default lookup table.
func NewDecoder() *Decoder {
	lut := make(LUT, len(Default))
	for k, v := range Default {
		lut[k] = v
	}
	return &Decoder{LUT: lut}
}

// Decode decompresses the plane file src into a plane of size bytes.
func (d *Decoder) Decode(src []byte, size int) Plane {
	if len(src) < tagSize {
		return Plane{
			Data:     make([]byte, size),
			Warnings: []error{fmt.Errorf("%w: file is %d bytes", ErrTruncated, len(src))},
		}
	}

	t := Type(binary.LittleEndian.Uint16(src))
	p := Plane{Type: t}

	var data []byte
	if f, ok := d.LUT[t]; ok {
		data, p.Warnings = f(src, size)
	} else {
		data, p.Warnings = decompressRaw(src, size)
		p.Warnings = append([]error{fmt.Errorf("%w: %d", ErrUnsupportedType, uint16(t))}, p.Warnings...)
	}
	p.Data = normalize(data, size)

	return p
}

// Decode decompresses src using the Default lookup table.
func Decode(src []byte, size int) Plane {
	d := Decoder{LUT: Default}
	return d.Decode(src, size)
}

// Has reports whether any of the warnings match target.
func (p Plane) Has(target error) bool {
	for _, w := range p.Warnings {
		if errors.Is(w, target) {
			return true
		}
	}
	return false
}

// normalize copies b into a fresh buffer of exactly size bytes so the plane
// never aliases the source file.
func normalize(b []byte, size int) []byte {
	out := make([]byte, size)
	copy(out, b)
	return out
}

func decompressRaw(src []byte, size int) ([]byte, []error) {
	data := src[tagSize:]
	if len(data) < size {
		return data, []error{fmt.Errorf("%w: %d of %d bytes", ErrTruncated, len(data), size)}
	}
	return data[:size], nil
}

package plane

import (
	"encoding/binary"
	"fmt"
)

const (
	symbolHeaderSize = 6
	symbolTableSize  = 4 // offset of the table size within the header
	codeBits         = 9
	codeMask         = 1<<codeBits - 1

	highLiteral = 0x00
	highCommand = 0xff
	cmdEnd      = 0xff
	cmdZero     = 0x00
	repeatBias  = 3
)

// bitReader returns 9-bit codes from a byte slice, consuming bits from the
// least significant end of each byte first.
type bitReader struct {
	src   []byte
	pos   int
	acc   uint32
	nbits uint
}

func (r *bitReader) next() (int, bool) {
	for r.nbits < codeBits {
		if r.pos >= len(r.src) {
			return 0, false
		}
		r.acc |= uint32(r.src[r.pos]) << r.nbits
		r.pos++
		r.nbits += 8
	}
	code := int(r.acc & codeMask)
	r.acc >>= codeBits
	r.nbits -= codeBits
	return code, true
}

// DecompressSymbolTableV1 decodes a type 9 plane.
//
// The six byte header holds the type tag and, at offset 4, the size in bytes
// of a table of 16-bit words that follows it. The rest of the file is a
// stream of 9-bit codes indexing that table. A word with a high byte of 0x00
// emits its low byte; 0xFFFF ends the stream, 0xFF00 emits a zero and any
// other 0xFFnn repeats the previous byte nn+3 times. Other words emit their
// low byte. Code 0 is reserved and skipped.
//
// This does not reproduce the original images and every plane decoded with
// it carries ErrIncomplete. The behavior is kept exactly as is; a better
// decoder belongs in a new function installed into a LUT of its own.
func DecompressSymbolTableV1(src []byte, size int) ([]byte, []error) {
	warnings := []error{ErrIncomplete}

	if len(src) < symbolHeaderSize {
		return nil, append(warnings, fmt.Errorf("%w: header is %d bytes", ErrTruncated, len(src)))
	}

	n := int(binary.LittleEndian.Uint16(src[symbolTableSize:]))
	if symbolHeaderSize+n > len(src) {
		return nil, append(warnings, fmt.Errorf("%w: symbol table of %d bytes exceeds file", ErrTruncated, n))
	}

	table := make([]uint16, n/2)
	for i := range table {
		table[i] = binary.LittleEndian.Uint16(src[symbolHeaderSize+i*2:])
	}

	dst := make([]byte, 0, size)
	r := bitReader{src: src[symbolHeaderSize+n:]}

	var prev byte
	emit := func(b byte) {
		if len(dst) < size {
			dst = append(dst, b)
		}
		prev = b
	}

loop:
	for len(dst) < size {
		code, ok := r.next()
		if !ok {
			break
		}
		if code == 0 || code >= len(table) {
			continue
		}

		word := table[code]
		hi, lo := byte(word>>8), byte(word)
		switch {
		case hi == highLiteral:
			emit(lo)
		case hi == highCommand && lo == cmdEnd:
			break loop
		case hi == highCommand && lo == cmdZero:
			emit(0)
		case hi == highCommand:
			for i := 0; i < int(lo)+repeatBias; i++ {
				emit(prev)
			}
		default:
			emit(lo)
		}
	}

	if len(dst) < size {
		warnings = append(warnings, fmt.Errorf("%w: %d of %d bytes", ErrTruncated, len(dst), size))
	}
	return dst, warnings
}

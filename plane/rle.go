package plane

import (
	"encoding/binary"
	"fmt"
)

const (
	maxRun     = 128
	repeatBase = 0x7f
)

// DecompressRLE expands a type 7 plane. After the type tag the stream is a
// sequence of control bytes; a control byte of 128 or more repeats the next
// byte (control - 127) times, anything less copies the next (control + 1)
// bytes literally.
func DecompressRLE(src []byte, size int) ([]byte, []error) {
	dst := make([]byte, 0, size)

	i := tagSize
	for len(dst) < size && i < len(src) {
		control := src[i]
		i++

		if control > repeatBase {
			if i >= len(src) {
				break
			}
			value := src[i]
			i++
			for n := int(control) - repeatBase; n > 0 && len(dst) < size; n-- {
				dst = append(dst, value)
			}
			continue
		}

		n := int(control) + 1
		if i+n > len(src) {
			n = len(src) - i
		}
		if len(dst)+n > size {
			n = size - len(dst)
		}
		dst = append(dst, src[i:i+n]...)
		i += n
	}

	if len(dst) < size {
		return dst, []error{fmt.Errorf("%w: %d of %d bytes", ErrTruncated, len(dst), size)}
	}
	return dst, nil
}

// EncodeRLE compresses data into a type 7 plane file.
func EncodeRLE(data []byte) []byte {
	out := make([]byte, tagSize, tagSize+len(data)+len(data)/maxRun+1)
	binary.LittleEndian.PutUint16(out, uint16(TypeRLE))

	var literal []byte
	flush := func() {
		if len(literal) > 0 {
			out = append(out, byte(len(literal)-1))
			out = append(out, literal...)
			literal = literal[:0]
		}
	}

	for i := 0; i < len(data); {
		run := 1
		for i+run < len(data) && run < maxRun && data[i+run] == data[i] {
			run++
		}

		if run > 1 {
			flush()
			out = append(out, byte(repeatBase+run), data[i])
			i += run
			continue
		}

		literal = append(literal, data[i])
		if len(literal) == maxRun {
			flush()
		}
		i++
	}
	flush()

	return out
}

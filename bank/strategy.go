package bank

import (
	"encoding/binary"
	"errors"
)

const (
	minEntries   = 2
	maxEntries   = 10000
	maxEntrySize = 50000
	tolerance    = 10
	maxPadding   = 256
	wordSize     = 2
)

var (
	errTooShort    = errors.New("file too short")
	errTooFew      = errors.New("too few entries")
	errSizeInvalid = errors.New("sizes do not match file length")
	errOffsets     = errors.New("offsets out of range")
)

// Strategy detects one possible layout of a bank file.
type Strategy interface {
	// Name returns a short name for the strategy
	Name() string
	// Detect returns the validated, strictly increasing entry offsets
	// found in b. The first offset is the start of the entry data.
	Detect(b []byte) ([]int, error)
}

// Strategies is the default list of strategies, tried in order.
var Strategies = []Strategy{SizeTable{}, OffsetTable{}}

func word(b []byte, pos int) int {
	return int(binary.LittleEndian.Uint16(b[pos:]))
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// SizeTable reads the table as a list of entry sizes. The table is ended by
// a zero size, an implausibly large size or once the sizes account for the
// whole file. Zero padding of less than 256 bytes may follow the table. The
// sizes must add up to the file length, give or take 10 bytes.
type SizeTable struct{}

// Name implements the Strategy interface
func (SizeTable) Name() string {
	return "size-table"
}

// Detect implements the Strategy interface
func (SizeTable) Detect(b []byte) ([]int, error) {
	n := len(b)
	if n < 2*wordSize {
		return nil, errTooShort
	}

	limit := n / wordSize
	if limit > maxEntries {
		limit = maxEntries
	}

	var sizes []int
	pos, total := 0, 0
	for i := 0; i < limit; i++ {
		if pos+wordSize > n {
			break
		}

		size := word(b, pos)
		if size == 0 {
			// Terminator
			pos += wordSize
			break
		}
		if size > maxEntrySize {
			break
		}

		sizes = append(sizes, size)
		total += size
		pos += wordSize

		if abs(pos+total-n) <= tolerance {
			break
		}

		// Read one size too many
		if pos+total > n {
			sizes = sizes[:len(sizes)-1]
			total -= size
			pos -= wordSize
			break
		}
	}

	if len(sizes) < minEntries {
		return nil, errTooFew
	}

	base := pos
	if pad := n - (base + total); pad > 0 && pad < maxPadding && allZero(b[pos:pos+pad]) {
		base += pad
	}

	if abs(base+total-n) > tolerance {
		return nil, errSizeInvalid
	}

	offsets := make([]int, len(sizes))
	offset := base
	for i, size := range sizes {
		if offset > n {
			return nil, errOffsets
		}
		offsets[i] = offset
		offset += size
	}

	return offsets, nil
}

func allZero(b []byte) bool {
	for _, x := range b {
		if x != 0 {
			return false
		}
	}
	return true
}

// OffsetTable reads the table as a list of absolute entry offsets. The table
// ends at the first value that points back into the table, past the end of
// the file, or that does not increase. The table can never extend past the
// first entry.
type OffsetTable struct{}

// Name implements the Strategy interface
func (OffsetTable) Name() string {
	return "offset-table"
}

// Detect implements the Strategy interface
func (OffsetTable) Detect(b []byte) ([]int, error) {
	n := len(b)
	if n < 2*wordSize {
		return nil, errTooShort
	}

	var offsets []int
	for pos := 0; len(offsets) < maxEntries; pos += wordSize {
		if pos+wordSize > n {
			break
		}
		if len(offsets) > 0 && pos >= offsets[0] {
			break
		}

		v := word(b, pos)
		if v <= pos+wordSize || v > n {
			break
		}
		if len(offsets) > 0 && v <= offsets[len(offsets)-1] {
			break
		}

		offsets = append(offsets, v)
	}

	if len(offsets) < minEntries {
		return nil, errTooFew
	}

	return offsets, nil
}

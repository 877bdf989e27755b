/*
Package bank implements a parser for the headerless bank containers used by
First Queen 4, such as CHRBANK, MAPBANK and BGMBANK.

A bank is a table of little-endian 16-bit words followed by the entry data.
Nothing in the file says whether the table holds entry sizes or entry
offsets so each layout is tried in turn by a Strategy and the first one to
produce a consistent set of entries wins.
*/
package bank

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
)

// ErrDetectionFailed is returned when no strategy could make sense of the
// file layout.
var ErrDetectionFailed = errors.New("bank: structure detection failed")

// Entry is a single entry within a bank.
type Entry struct {
	Index  int
	Offset int
	// Data is a view into the bank file, it is not copied
	Data []byte
}

// Size returns the size of the entry in bytes.
func (e Entry) Size() int {
	return len(e.Data)
}

// End returns the offset of the byte immediately after the entry.
func (e Entry) End() int {
	return e.Offset + len(e.Data)
}

// Bank is a parsed bank file. It implements the encoding.BinaryMarshaler and
// encoding.BinaryUnmarshaler interfaces.
type Bank struct {
	// Base is where the table ends and the entry data begins
	Base int
	// Strategy is the name of the strategy that detected the layout
	Strategy string
	Entries  []Entry
}

// Parse detects the layout of b using each strategy in order, falling back
// to Strategies if none are given. Entries share the memory of b.
func Parse(b []byte, strategies ...Strategy) (*Bank, error) {
	if len(strategies) == 0 {
		strategies = Strategies
	}

	var reasons []string
	for _, s := range strategies {
		offsets, err := s.Detect(b)
		if err != nil {
			reasons = append(reasons, fmt.Sprintf("%s: %s", s.Name(), err))
			continue
		}

		bank := &Bank{
			Base:     offsets[0],
			Strategy: s.Name(),
			Entries:  make([]Entry, len(offsets)),
		}
		for i, offset := range offsets {
			end := len(b)
			if i+1 < len(offsets) {
				end = offsets[i+1]
			}
			bank.Entries[i] = Entry{
				Index:  i,
				Offset: offset,
				Data:   b[offset:end:end],
			}
		}

		return bank, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrDetectionFailed, strings.Join(reasons, "; "))
}

// Len returns the number of entries in the bank
func (b *Bank) Len() int {
	return len(b.Entries)
}

// Offsets returns the offset of each entry.
func (b *Bank) Offsets() []int {
	offsets := make([]int, len(b.Entries))
	for i, e := range b.Entries {
		offsets[i] = e.Offset
	}
	return offsets
}

// MarshalBinary encodes the bank as a zero-terminated size table followed by
// the entry data. Entries must be between 1 and 50000 bytes. When the sizes
// alone would be misread, zero padding is added after the table until the
// result parses back to the same entries.
func (b *Bank) MarshalBinary() ([]byte, error) {
	if len(b.Entries) < minEntries {
		return nil, fmt.Errorf("bank: need at least %d entries", minEntries)
	}
	if len(b.Entries) > maxEntries {
		return nil, fmt.Errorf("bank: cannot hold more than %d entries", maxEntries)
	}

	head := new(bytes.Buffer)
	data := new(bytes.Buffer)

	// Write out the size table
	for _, e := range b.Entries {
		if e.Size() == 0 || e.Size() > maxEntrySize {
			return nil, fmt.Errorf("bank: entry %d has invalid size %d", e.Index, e.Size())
		}
		if err := binary.Write(head, binary.LittleEndian, uint16(e.Size())); err != nil {
			return nil, err
		}
		if _, err := data.Write(e.Data); err != nil {
			return nil, err
		}
	}
	if err := binary.Write(head, binary.LittleEndian, uint16(0)); err != nil {
		return nil, err
	}

	for pad := 0; pad < maxPadding; pad++ {
		buf := make([]byte, 0, head.Len()+pad+data.Len())
		buf = append(buf, head.Bytes()...)
		buf = append(buf, make([]byte, pad)...)
		buf = append(buf, data.Bytes()...)

		if bank, err := Parse(buf); err == nil && b.sameLayout(bank, head.Len()+pad) {
			return buf, nil
		}
	}

	return nil, errors.New("bank: entry sizes cannot be encoded unambiguously")
}

// sameLayout reports whether other holds entries of the same sizes as b
// starting at base
func (b *Bank) sameLayout(other *Bank, base int) bool {
	if other.Len() != b.Len() {
		return false
	}
	offset := base
	for i, e := range other.Entries {
		if e.Offset != offset || e.Size() != b.Entries[i].Size() {
			return false
		}
		offset += e.Size()
	}
	return true
}

// UnmarshalBinary decodes the bank from binary form using the default
// strategies.
func (b *Bank) UnmarshalBinary(data []byte) error {
	bank, err := Parse(data)
	if err != nil {
		return err
	}
	*b = *bank
	return nil
}

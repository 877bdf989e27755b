/*
Package text implements a parser for First Queen 4 message tables such as
FQ4MES.

A message table starts with a list of little-endian 16-bit offsets, one per
message, immediately followed by the NUL-terminated strings themselves in a
legacy encoding, usually Shift JIS.
*/
package text

import (
	"bytes"
	"encoding/binary"
	"errors"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
)

const (
	wordSize      = 2
	decodeFailure = "[DECODE ERROR]"

	// MinOffset is the lowest plausible first message offset in FQ4MES
	MinOffset = 0x640
)

var (
	// ErrDetectionFailed is returned when no offset table could be found.
	ErrDetectionFailed = errors.New("text: no offset table found")

	// ErrDecode is recorded against a message that could not be decoded.
	ErrDecode = errors.New("text: invalid byte sequence")
)

// Message is a single entry in a message table.
type Message struct {
	Index  int
	Offset int
	// Raw holds the message bytes up to, but not including, the terminator
	Raw  []byte
	Text string
	// Err is ErrDecode if Raw is not valid in the table encoding
	Err error
}

// String returns the decoded text or a marker if decoding failed.
func (m Message) String() string {
	if m.Err != nil {
		return decodeFailure
	}
	return m.Text
}

// Table is a parsed message table.
type Table struct {
	// Base is the end of the offset table
	Base     int
	Messages []Message
}

// Parser parses message tables.
type Parser struct {
	// Encoding is used to decode each message, nil means Shift JIS
	Encoding encoding.Encoding
	// MinOffset rejects implausibly small first offsets
	MinOffset int
}

func (p *Parser) floor() int {
	if p.MinOffset < wordSize {
		return wordSize
	}
	return p.MinOffset
}

func (p *Parser) encoding() encoding.Encoding {
	if p.Encoding == nil {
		return japanese.ShiftJIS
	}
	return p.Encoding
}

func (p *Parser) offsets(b []byte) []int {
	var offsets []int
	for pos := 0; pos+wordSize <= len(b); pos += wordSize {
		// The table can't run into the first message
		if len(offsets) > 0 && pos >= offsets[0] {
			break
		}

		v := int(binary.LittleEndian.Uint16(b[pos:]))
		if v >= len(b) {
			break
		}
		if len(offsets) == 0 && v < p.floor() {
			break
		}
		if len(offsets) > 0 && v <= offsets[len(offsets)-1] {
			break
		}

		offsets = append(offsets, v)
	}

	return offsets
}

// decode treats a replacement character in the output as a failure unless
// it encodes back to the same bytes, so text that really holds U+FFFD in an
// encoding that can represent it is kept.
func (p *Parser) decode(raw []byte) (string, error) {
	e := p.encoding()
	s, err := e.NewDecoder().Bytes(raw)
	if err != nil {
		return "", ErrDecode
	}
	if bytes.ContainsRune(s, utf8.RuneError) {
		if b, err := e.NewEncoder().Bytes(s); err != nil || !bytes.Equal(b, raw) {
			return "", ErrDecode
		}
	}
	return strings.TrimSpace(string(s)), nil
}

// Parse finds the offset table in b and decodes every message. A message
// that fails to decode is kept with its Err set rather than failing the
// whole table.
func (p *Parser) Parse(b []byte) (*Table, error) {
	offsets := p.offsets(b)
	if len(offsets) == 0 {
		return nil, ErrDetectionFailed
	}

	t := &Table{
		Base:     len(offsets) * wordSize,
		Messages: make([]Message, len(offsets)),
	}
	for i, offset := range offsets {
		end := len(b)
		if i+1 < len(offsets) {
			end = offsets[i+1]
		}

		raw := b[offset:end]
		if n := bytes.IndexByte(raw, 0); n >= 0 {
			raw = raw[:n]
		}

		m := Message{
			Index:  i,
			Offset: offset,
			Raw:    append([]byte(nil), raw...),
		}
		m.Text, m.Err = p.decode(raw)
		t.Messages[i] = m
	}

	return t, nil
}

// Parse parses b as a Shift JIS message table using the FQ4MES minimum
// offset.
func Parse(b []byte) (*Table, error) {
	p := Parser{MinOffset: MinOffset}
	return p.Parse(b)
}

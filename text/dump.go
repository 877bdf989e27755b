package text

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
)

const (
	ruleWidth = 80
	maxHex    = 80
)

// ErrUnknownEncoding is returned by Encoding for unrecognised names.
var ErrUnknownEncoding = errors.New("text: unknown encoding")

var encodings = map[string]encoding.Encoding{
	"shift_jis": japanese.ShiftJIS,
	"euc-jp":    japanese.EUCJP,
	"cp437":     charmap.CodePage437,
	"utf-8":     unicode.UTF8,
}

// Encoding returns the named text encoding. Besides the common names used
// for DOS era files any name from the WHATWG encoding standard is accepted.
func Encoding(name string) (encoding.Encoding, error) {
	name = strings.ToLower(name)
	if e, ok := encodings[name]; ok {
		return e, nil
	}
	e, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEncoding, name)
	}
	return e, nil
}

// Dump writes every message to w with its offset, raw bytes in hex and the
// decoded text.
func (t *Table) Dump(w io.Writer) error {
	bw := bufio.NewWriter(w)
	rule := strings.Repeat("=", ruleWidth)

	fmt.Fprintln(bw, "Message Dump")
	fmt.Fprintln(bw, rule)
	fmt.Fprintf(bw, "Total messages: %d\n", len(t.Messages))
	fmt.Fprintf(bw, "Offset table: 0x0000 - 0x%04X\n", t.Base)
	fmt.Fprintln(bw, rule)
	fmt.Fprintln(bw)

	for _, m := range t.Messages {
		h := hex.EncodeToString(m.Raw)
		if len(h) > maxHex {
			h = h[:maxHex] + "..."
		}
		fmt.Fprintf(bw, "Message #%03d (Offset: 0x%04X)\n", m.Index, m.Offset)
		fmt.Fprintf(bw, "Hex: %s\n", h)
		fmt.Fprintf(bw, "Text: %s\n", m)
		fmt.Fprintln(bw, strings.Repeat("-", ruleWidth))
	}

	return bw.Flush()
}

// DumpDecoded writes only the messages that decoded to non-empty text.
func (t *Table) DumpDecoded(w io.Writer) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "Decoded Messages")
	fmt.Fprintln(bw, strings.Repeat("=", ruleWidth))
	fmt.Fprintln(bw)

	for _, m := range t.Messages {
		if m.Err != nil || m.Text == "" {
			continue
		}
		fmt.Fprintf(bw, "[%03d] %s\n", m.Index, m.Text)
	}

	return bw.Flush()
}

// Failed returns the number of messages that could not be decoded.
func (t *Table) Failed() int {
	var n int
	for _, m := range t.Messages {
		if m.Err != nil {
			n++
		}
	}
	return n
}

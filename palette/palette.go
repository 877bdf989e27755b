/*
Package palette implements the First Queen 4 palette file decoder along with
a handful of helpers for building and adjusting 16 color palettes.

The palette file is exactly 88 bytes long and holds 22 groups of four bytes.
The first three bytes of each group are the red, green and blue components
as 6-bit VGA DAC values (0-63), the fourth byte is unused. Only the first 16
groups are used by the game.
*/
package palette

import (
	"errors"
	"fmt"
	"image/color"
	"io/ioutil"
)

const (
	// FileSize is the expected size in bytes of a palette file
	FileSize = 88

	// Size is the number of colors in every palette
	Size = 16

	groupSize = 4
	numGroups = FileSize / groupSize
	maxDAC    = 63
)

// ErrInvalidLength is returned when the palette file is not exactly FileSize
// bytes long.
var ErrInvalidLength = errors.New("palette: invalid length")

// Expand converts a 6-bit VGA DAC value to an 8-bit value, rounding to the
// nearest integer. Values above 63 are clamped.
func Expand(v byte) uint8 {
	if v > maxDAC {
		v = maxDAC
	}
	return uint8((int(v)*255 + maxDAC/2) / maxDAC)
}

func black() color.RGBA {
	return color.RGBA{0, 0, 0, 0xff}
}

// Parse decodes a palette file and returns the 16 colors it defines. The
// returned palette is always Size colors long.
func Parse(b []byte) (color.Palette, error) {
	if len(b) != FileSize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidLength, len(b), FileSize)
	}

	p := make(color.Palette, 0, Size)
	for i := 0; i < numGroups && len(p) < Size; i++ {
		g := b[i*groupSize : i*groupSize+groupSize]
		p = append(p, color.RGBA{Expand(g[0]), Expand(g[1]), Expand(g[2]), 0xff})
	}

	// Pad with black
	for len(p) < Size {
		p = append(p, black())
	}

	return p, nil
}

// Load reads and decodes the palette file at the given path.
func Load(file string) (color.Palette, error) {
	b, err := ioutil.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

// Pad returns a copy of p truncated or padded with black to exactly Size
// colors.
func Pad(p color.Palette) color.Palette {
	dup := make(color.Palette, Size)
	for i := range dup {
		if i < len(p) {
			dup[i] = p[i]
		} else {
			dup[i] = black()
		}
	}
	return dup
}

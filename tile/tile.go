/*
Package tile implements a First Queen 4 CHR sprite decoder and encoder.

A CHR file is a plain concatenation of 16 color tiles, either 8 by 8 or 16 by
16 pixels, with no header. Each tile is stored as four consecutive bitplanes.
Within a plane every row is one byte (two for 16 pixel wide tiles) with the
leftmost pixel in the most significant bit. The first plane supplies bit 3 of
the pixel index and the last plane bit 0, matching the RGBE images.
*/
package tile

import (
	"errors"
	"image"
	"image/color"
)

const (
	numPlanes     = 4
	pixelsPerByte = 8

	// DefaultColumns is the number of tiles per row used by Sheet when no
	// column count is given
	DefaultColumns = 16
)

// ErrInvalidSize is returned for tile sizes other than 8 and 16.
var ErrInvalidSize = errors.New("tile: invalid tile size")

func validSize(size int) error {
	if size != 8 && size != 16 {
		return ErrInvalidSize
	}
	return nil
}

// BytesPerPlane returns the size in bytes of one bitplane of a tile.
func BytesPerPlane(size int) int {
	return size * size / pixelsPerByte
}

// BytesPerTile returns the size in bytes of a whole tile; 32 bytes for 8 by 8
// tiles and 128 bytes for 16 by 16 tiles.
func BytesPerTile(size int) int {
	return numPlanes * BytesPerPlane(size)
}

// Tile is a single decoded tile holding one 4-bit color index per pixel in
// row-major order.
type Tile struct {
	Width, Height int
	Pix           []uint8
}

func bit(plane int) uint {
	return uint(numPlanes - 1 - plane)
}

// Image returns the tile as a paletted image using palette p.
func (t Tile) Image(p color.Palette) *image.Paletted {
	m := image.NewPaletted(image.Rect(0, 0, t.Width, t.Height), p)
	copy(m.Pix, t.Pix)
	return m
}

// MarshalBinary encodes the tile into its planar form.
func (t Tile) MarshalBinary() ([]byte, error) {
	if t.Width != t.Height {
		return nil, ErrInvalidSize
	}
	if err := validSize(t.Width); err != nil {
		return nil, err
	}

	bytesPerRow := t.Width / pixelsPerByte
	bytesPerPlane := BytesPerPlane(t.Width)
	b := make([]byte, BytesPerTile(t.Width))

	for y := 0; y < t.Height; y++ {
		for x := 0; x < t.Width; x++ {
			index := t.Pix[y*t.Width+x] & 0x0f
			i := y*bytesPerRow + x/pixelsPerByte
			shift := uint(pixelsPerByte - 1 - x%pixelsPerByte)
			for n := 0; n < numPlanes; n++ {
				b[n*bytesPerPlane+i] |= (index >> bit(n) & 1) << shift
			}
		}
	}

	return b, nil
}

// UnmarshalBinary decodes a tile from its planar form. The tile size is
// inferred from the length of b.
func (t *Tile) UnmarshalBinary(b []byte) error {
	var size int
	switch len(b) {
	case BytesPerTile(8):
		size = 8
	case BytesPerTile(16):
		size = 16
	default:
		return ErrInvalidSize
	}

	bytesPerRow := size / pixelsPerByte
	bytesPerPlane := BytesPerPlane(size)

	t.Width, t.Height = size, size
	t.Pix = make([]uint8, size*size)

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			i := y*bytesPerRow + x/pixelsPerByte
			shift := uint(pixelsPerByte - 1 - x%pixelsPerByte)

			var index uint8
			for n := 0; n < numPlanes; n++ {
				index |= (b[n*bytesPerPlane+i] >> shift & 1) << bit(n)
			}
			t.Pix[y*size+x] = index
		}
	}

	return nil
}

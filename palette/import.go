package palette

import (
	"image"
	"image/color"
	_ "image/gif" // register GIF
	_ "image/png" // register PNG
	"io"

	_ "golang.org/x/image/bmp" // register BMP
)

// Import reads a BMP, GIF or PNG image from r and returns a 16 color palette
// for it. Paletted images contribute their first 16 colors, anything else is
// quantized.
func Import(r io.Reader) (color.Palette, error) {
	m, _, err := image.Decode(r)
	if err != nil {
		return nil, err
	}

	if cp, ok := m.ColorModel().(color.Palette); ok {
		return Pad(cp), nil
	}

	return Pad(Extract(m, Size)), nil
}

package tile

import (
	"image"
	"image/color"
	"io"
)

// Decode reads tiles of the given size from r until it runs out of data.
// Any trailing bytes that do not make up a whole tile are ignored.
func Decode(r io.Reader, size int) ([]Tile, error) {
	if err := validSize(size); err != nil {
		return nil, err
	}

	var tiles []Tile
	buf := make([]byte, BytesPerTile(size))
	for {
		if _, err := io.ReadFull(r, buf); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return tiles, nil
			}
			return nil, err
		}

		var t Tile
		if err := t.UnmarshalBinary(buf); err != nil {
			return nil, err
		}
		tiles = append(tiles, t)
	}
}

// Count returns the number of whole tiles of the given size in n bytes.
func Count(n int64, size int) int {
	return int(n / int64(BytesPerTile(size)))
}

// Sheet lays the tiles out in a grid with the given number of columns, tile
// i being placed at column i % columns, row i / columns. A non-positive
// column count uses DefaultColumns.
func Sheet(tiles []Tile, columns int, p color.Palette) *image.Paletted {
	if columns <= 0 {
		columns = DefaultColumns
	}
	if len(tiles) == 0 {
		return image.NewPaletted(image.Rect(0, 0, 0, 0), p)
	}

	w, h := tiles[0].Width, tiles[0].Height
	rows := (len(tiles) + columns - 1) / columns

	// Indices are copied directly, drawing would remap duplicate colors
	m := image.NewPaletted(image.Rect(0, 0, columns*w, rows*h), p)
	for i, t := range tiles {
		x, y := i%columns*w, i/columns*h
		for ty := 0; ty < t.Height && ty < h; ty++ {
			copy(m.Pix[(y+ty)*m.Stride+x:(y+ty)*m.Stride+x+w], t.Pix[ty*t.Width:(ty+1)*t.Width])
		}
	}

	return m
}

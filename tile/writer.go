package tile

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"io"

	"github.com/ericpauley/go-quantize/quantize"
)

const colorsPerPalette = 16

type encoder struct {
	w    io.Writer
	size int
}

func (e *encoder) encode(m *image.Paletted) error {
	b := m.Bounds()
	for ty := 0; ty < b.Dy()/e.size; ty++ {
		for tx := 0; tx < b.Dx()/e.size; tx++ {
			t := Tile{
				Width:  e.size,
				Height: e.size,
				Pix:    make([]uint8, e.size*e.size),
			}
			for y := 0; y < e.size; y++ {
				for x := 0; x < e.size; x++ {
					t.Pix[y*e.size+x] = m.ColorIndexAt(tx*e.size+x, ty*e.size+y)
				}
			}

			p, err := t.MarshalBinary()
			if err != nil {
				return err
			}
			if _, err := e.w.Write(p); err != nil {
				return err
			}
		}
	}

	return nil
}

// Encode writes the Image m to w as a sequence of planar tiles of the given
// size, left to right and top to bottom. Images with more than 16 colors are
// quantized first.
func Encode(w io.Writer, m image.Image, size int) error {
	if err := validSize(size); err != nil {
		return err
	}

	b := m.Bounds()
	if b.Dx()%size != 0 || b.Dy()%size != 0 {
		return errors.New("tile: image is wrong size")
	}

	pm, _ := m.(*image.Paletted)
	if pm == nil {
		if cp, ok := m.ColorModel().(color.Palette); ok {
			pm = image.NewPaletted(b, cp)
			for y := b.Min.Y; y < b.Max.Y; y++ {
				for x := b.Min.X; x < b.Max.X; x++ {
					pm.Set(x, y, cp.Convert(m.At(x, y)))
				}
			}
		}
	}
	if pm == nil || len(pm.Palette) > colorsPerPalette {
		q := quantize.MedianCutQuantizer{}
		pm = image.NewPaletted(b, q.Quantize(make(color.Palette, 0, colorsPerPalette), m))
		draw.Draw(pm, b, m, b.Min, draw.Src)
	}

	// Adjust image so that top-left corner is at (0, 0)
	if pm.Rect.Min != (image.Point{}) {
		dup := *pm
		dup.Rect = dup.Rect.Sub(dup.Rect.Min)
		pm = &dup
	}

	e := encoder{w: w, size: size}

	return e.encode(pm)
}

package palette

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/ericpauley/go-quantize/quantize"
)

func clamp(v float64) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	}
	return uint8(v)
}

func mapRGBA(p color.Palette, f func(uint8) uint8) color.Palette {
	dup := make(color.Palette, len(p))
	for i, c := range p {
		rgba := color.RGBAModel.Convert(c).(color.RGBA)
		dup[i] = color.RGBA{f(rgba.R), f(rgba.G), f(rgba.B), rgba.A}
	}
	return dup
}

// Brighten returns a copy of p with every channel multiplied by factor.
func Brighten(p color.Palette, factor float64) color.Palette {
	return mapRGBA(p, func(v uint8) uint8 {
		return clamp(float64(v) * factor)
	})
}

// Contrast returns a copy of p with every channel scaled by factor around
// the midpoint.
func Contrast(p color.Palette, factor float64) color.Palette {
	return mapRGBA(p, func(v uint8) uint8 {
		return clamp(128 + (float64(v)-128)*factor)
	})
}

// Extract returns up to n dominant colors of m using median cut
// quantization.
func Extract(m image.Image, n int) color.Palette {
	q := quantize.MedianCutQuantizer{}
	return q.Quantize(make(color.Palette, 0, n), m)
}

// Apply remaps every pixel of m to the nearest color in p.
func Apply(m image.Image, p color.Palette) *image.Paletted {
	b := m.Bounds()
	dst := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), p)
	draw.Draw(dst, dst.Bounds(), m, b.Min, draw.Src)
	return dst
}

// Swatch returns an image with one size by size square per color.
func Swatch(p color.Palette, size int) *image.Paletted {
	m := image.NewPaletted(image.Rect(0, 0, len(p)*size, size), p)
	for i := range p {
		draw.Draw(m, image.Rect(i*size, 0, i*size+size, size), &image.Uniform{p[i]}, image.Point{}, draw.Src)
	}
	return m
}

// Atlas returns an image with one row per named palette and one pixel per
// color, suitable as a lookup texture for palette swapping shaders.
func Atlas(names []string, palettes map[string]color.Palette) (*image.RGBA, error) {
	m := image.NewRGBA(image.Rect(0, 0, Size, len(names)))
	for y, name := range names {
		p, ok := palettes[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownPalette, name)
		}
		for x, c := range Pad(p) {
			m.Set(x, y, c)
		}
	}
	return m, nil
}

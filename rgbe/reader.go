package rgbe

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io/ioutil"
	"os"

	"github.com/bodgit/fq4/plane"
)

// ErrMissingPlane is returned when one of the four plane files is absent.
var ErrMissingPlane = errors.New("rgbe: missing plane file")

// Image is a decoded RGBE image. The embedded image shares the palette
// passed to Decode.
type Image struct {
	*image.Paletted

	// Planes holds the decompressed bitplanes in Blue, Green, Red, E order
	Planes [numPlanes]plane.Plane
}

// Warnings returns every warning raised while decompressing the planes.
func (m *Image) Warnings() []error {
	var w []error
	for _, p := range m.Planes {
		w = append(w, p.Warnings...)
	}
	return w
}

type decoder struct {
	d      *plane.Decoder
	image  *Image
	planes [numPlanes]plane.Plane
}

func (d *decoder) decompress(files [numPlanes][]byte) {
	for i, b := range files {
		d.planes[i] = d.d.Decode(b, PlaneSize)
	}
}

func (d *decoder) combine(p color.Palette) {
	m := image.NewPaletted(image.Rect(0, 0, Width, Height), p)

	for y := 0; y < Height; y++ {
		for x := 0; x < bytesPerRow; x++ {
			i := y*bytesPerRow + x
			for b := 0; b < pixelsPerByte; b++ {
				shift := uint(pixelsPerByte - 1 - b)

				var index uint8
				for n := range d.planes {
					index |= (d.planes[n].Data[i] >> shift & 1) << bit(n)
				}
				m.Pix[y*m.Stride+x*pixelsPerByte+b] = index
			}
		}
	}

	d.image = &Image{Paletted: m, Planes: d.planes}
}

// Decode decompresses the four plane files, given in Blue, Green, Red, E
// order, and combines them into an image using palette p. If pd is nil the
// default plane decompressors are used.
func Decode(files [numPlanes][]byte, p color.Palette, pd *plane.Decoder) *Image {
	if pd == nil {
		pd = &plane.Decoder{LUT: plane.Default}
	}
	d := decoder{d: pd}
	d.decompress(files)
	d.combine(p)
	return d.image
}

// Files returns the paths of the four plane files for the given base name.
func Files(base string, s Suffixes) [numPlanes]string {
	var files [numPlanes]string
	for i := range files {
		files[i] = base + s[i]
	}
	return files
}

// Open reads the four plane files for the given base name and decodes them.
func Open(base string, p color.Palette, s Suffixes, pd *plane.Decoder) (*Image, error) {
	var files [numPlanes][]byte
	for i, file := range Files(base, s) {
		b, err := ioutil.ReadFile(file)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("%w: %s", ErrMissingPlane, file)
			}
			return nil, err
		}
		files[i] = b
	}
	return Decode(files, p, pd), nil
}

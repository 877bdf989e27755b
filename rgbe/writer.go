package rgbe

import (
	"errors"
	"image"
	"io/ioutil"
	"os"

	"github.com/bodgit/fq4/plane"
)

var errWrongSize = errors.New("rgbe: image is wrong size")

// Split separates the pixel indices of m into four raw bitplanes in Blue,
// Green, Red, E order. Only the low four bits of each index are used.
func Split(m *image.Paletted) ([numPlanes][]byte, error) {
	var planes [numPlanes][]byte

	b := m.Bounds()
	if b.Dx() != Width || b.Dy() != Height {
		return planes, errWrongSize
	}

	for i := range planes {
		planes[i] = make([]byte, PlaneSize)
	}

	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			index := m.ColorIndexAt(b.Min.X+x, b.Min.Y+y) & 0x0f
			i := y*bytesPerRow + x/pixelsPerByte
			shift := uint(pixelsPerByte - 1 - x%pixelsPerByte)
			for n := range planes {
				planes[n][i] |= (index >> bit(n) & 1) << shift
			}
		}
	}

	return planes, nil
}

// Encode splits m into bitplanes and compresses each one as a type 7 plane
// file.
func Encode(m *image.Paletted) ([numPlanes][]byte, error) {
	planes, err := Split(m)
	if err != nil {
		return planes, err
	}
	for i := range planes {
		planes[i] = plane.EncodeRLE(planes[i])
	}
	return planes, nil
}

// Create encodes m and writes the four plane files for the given base name.
func Create(base string, m *image.Paletted, s Suffixes) error {
	planes, err := Encode(m)
	if err != nil {
		return err
	}
	for i, file := range Files(base, s) {
		if err := ioutil.WriteFile(file, planes[i], os.FileMode(0644)); err != nil {
			return err
		}
	}
	return nil
}

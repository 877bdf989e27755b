/*
Package rgbe implements a First Queen 4 RGBE image decoder and encoder.

An image is 320 by 200 pixels in 16 colors and is stored as four separate
files, one per bitplane, sharing a base name. The planes are suffixed .B_,
.G_, .R_ and .E_ and contribute bits 3, 2, 1 and 0 respectively of each pixel
index. Each plane is 8000 bytes once decompressed, every byte holding eight
horizontally adjacent pixels with the leftmost pixel in the most significant
bit.
*/
package rgbe

const (
	// Width of every RGBE image in pixels
	Width = 320
	// Height of every RGBE image in pixels
	Height = 200
	// PlaneSize is the size in bytes of one decompressed bitplane
	PlaneSize = Width * Height / 8

	numPlanes     = 4
	pixelsPerByte = 8
	bytesPerRow   = Width / pixelsPerByte
)

// Plane indices, in the order the bits appear in a pixel index from most to
// least significant.
const (
	Blue = iota
	Green
	Red
	E
)

// Suffixes holds the file name suffix for each plane, indexed by Blue,
// Green, Red and E.
type Suffixes [numPlanes]string

// DefaultSuffixes are the plane file suffixes used by the game.
var DefaultSuffixes = Suffixes{".B_", ".G_", ".R_", ".E_"}

func bit(plane int) uint {
	return uint(numPlanes - 1 - plane)
}

package fq4

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/bodgit/fq4/bank"
	"github.com/bodgit/fq4/palette"
	"github.com/bodgit/fq4/tile"
)

func create(file string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
		return nil, err
	}
	return os.Create(file)
}

func writeWith(file string, fn func(io.Writer) error) (err error) {
	f, err := create(file)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	w := bufio.NewWriter(f)
	if err = fn(w); err != nil {
		return err
	}

	return w.Flush()
}

func writePNG(file string, m image.Image) error {
	return writeWith(file, func(w io.Writer) error {
		return png.Encode(w, m)
	})
}

func writeFile(file string, b []byte) error {
	return writeWith(file, func(w io.Writer) error {
		_, err := w.Write(b)
		return err
	})
}

func writeTiles(dir string, tiles []tile.Tile, p color.Palette) error {
	for i, t := range tiles {
		if err := writePNG(filepath.Join(dir, fmt.Sprintf("tile_%04d.png", i)), t.Image(p)); err != nil {
			return err
		}
	}
	return nil
}

func entryName(name string, e bank.Entry) string {
	return fmt.Sprintf("%s_%04d_0x%06X.bin", name, e.Index, e.Offset)
}

func sortedNames(palettes map[string]color.Palette) []string {
	names := make([]string, 0, len(palettes))
	for k := range palettes {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// ExportSwatches writes a swatch of every built-in and custom palette to
// palettes/<name>.png and returns the palette names.
func (e *Extractor) ExportSwatches() ([]string, error) {
	palettes, err := e.Palettes()
	if err != nil {
		return nil, err
	}

	names := sortedNames(palettes)
	for _, name := range names {
		if err := writePNG(e.output("palettes", name+".png"), palette.Swatch(palettes[name], swatchSize)); err != nil {
			return nil, err
		}
	}

	return names, nil
}

// ExportAtlas writes every built-in and custom palette to file as a single
// image with one row per palette, in the order of the returned names.
func (e *Extractor) ExportAtlas(file string) ([]string, error) {
	palettes, err := e.Palettes()
	if err != nil {
		return nil, err
	}

	names := sortedNames(palettes)
	m, err := palette.Atlas(names, palettes)
	if err != nil {
		return nil, err
	}

	return names, writePNG(file, m)
}

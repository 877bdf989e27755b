/*
Package fq4 is a library for extracting the graphics, sprites, data banks and
text of the DOS game First Queen 4.
*/
package fq4

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif" // register decoders for EncodeImage
	_ "image/png"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bodgit/fq4/bank"
	"github.com/bodgit/fq4/palette"
	"github.com/bodgit/fq4/plane"
	"github.com/bodgit/fq4/rgbe"
	"github.com/bodgit/fq4/text"
	"github.com/bodgit/fq4/tile"
	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

const (
	fallbackPalette = "vga16"
	swatchSize      = 32
)

// Extractor decodes game files and writes the results under the output
// directory.
type Extractor struct {
	config   *Config
	logger   *logrus.Logger
	catalog  *Catalog
	palettes *gocache.Cache
	planes   *plane.Decoder
	parser   *text.Parser
	suffixes rgbe.Suffixes
}

// New returns an Extractor using config. If a database is configured the
// catalog is opened, so the Extractor should be closed after use.
func New(config *Config, logger *logrus.Logger) (*Extractor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	suffixes, err := config.Suffixes()
	if err != nil {
		return nil, err
	}

	encoding, err := text.Encoding(config.Text.Encoding)
	if err != nil {
		return nil, err
	}

	e := &Extractor{
		config:   config,
		logger:   logger,
		palettes: gocache.New(gocache.NoExpiration, 10*time.Second),
		planes:   plane.NewDecoder(),
		parser: &text.Parser{
			Encoding:  encoding,
			MinOffset: config.Text.MinOffset,
		},
		suffixes: suffixes,
	}

	if config.Database != "" {
		if e.catalog, err = NewCatalog(config.Database); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// Close closes the catalog, if any.
func (e *Extractor) Close() error {
	if e.catalog != nil {
		return e.catalog.Close()
	}
	return nil
}

// Catalog returns the catalog, which is nil if no database is configured.
func (e *Extractor) Catalog() *Catalog {
	return e.catalog
}

// Palettes returns every built-in palette merged with the custom palettes
// from the configuration.
func (e *Extractor) Palettes() (map[string]color.Palette, error) {
	palettes := make(map[string]color.Palette, len(palette.Named)+len(e.config.Palettes))
	for k, v := range palette.Named {
		palettes[k] = v
	}
	for k, v := range e.config.Palettes {
		p, err := palette.ParseHex(v)
		if err != nil {
			return nil, fmt.Errorf("palettes.%s: %w", k, err)
		}
		palettes[k] = p
	}
	return palettes, nil
}

func (e *Extractor) namedPalette(name string) (color.Palette, error) {
	if colors, ok := e.config.Palettes[strings.ToLower(name)]; ok {
		return palette.ParseHex(colors)
	}
	return palette.Lookup(name)
}

func (e *Extractor) loadPalette() (string, color.Palette, error) {
	if name := e.config.Palette; name != "" {
		p, err := e.namedPalette(name)
		return "name:" + name, p, err
	}

	file := e.config.PalettePath()
	p, err := palette.Load(file)
	if errors.Is(err, os.ErrNotExist) {
		e.logger.WithField("palette", file).Warnf("Palette file not found, using %s", fallbackPalette)
		p, err = palette.Lookup(fallbackPalette)
	}
	return "file:" + file, p, err
}

// Palette returns the configured palette. It is loaded once and the same
// read-only palette is returned to every caller.
func (e *Extractor) Palette() (color.Palette, error) {
	key := "file:" + e.config.PalettePath()
	if e.config.Palette != "" {
		key = "name:" + e.config.Palette
	}
	if p, ok := e.palettes.Get(key); ok {
		return p.(color.Palette), nil
	}

	key, p, err := e.loadPalette()
	if err != nil {
		return nil, err
	}
	if e.config.Brightness != 1 {
		p = palette.Brighten(p, e.config.Brightness)
	}
	if e.config.Contrast != 1 {
		p = palette.Contrast(p, e.config.Contrast)
	}

	// Another worker may have got there first
	if err := e.palettes.Add(key, p, gocache.NoExpiration); err != nil {
		if cached, ok := e.palettes.Get(key); ok {
			return cached.(color.Palette), nil
		}
	}

	return p, nil
}

func stem(file string) string {
	base := filepath.Base(file)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (e *Extractor) output(elem ...string) string {
	return filepath.Join(append([]string{e.config.OutputDir}, elem...)...)
}

func (e *Extractor) record(a Asset) (int64, error) {
	if e.catalog == nil {
		return 0, nil
	}
	return e.catalog.AddAsset(a)
}

// ExportPalette writes a swatch of the palette to palette.png.
func (e *Extractor) ExportPalette() error {
	p, err := e.Palette()
	if err != nil {
		return err
	}
	return writePNG(e.output("palette.png"), palette.Swatch(p, swatchSize))
}

// EncodeImage converts the 320x200 image in file to the four RGBE plane files
// with the given base name. Anything other than a 16 color paletted image is
// remapped to the palette first.
func (e *Extractor) EncodeImage(file, base string) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	m, _, err := image.Decode(f)
	if err != nil {
		return err
	}

	p, err := e.Palette()
	if err != nil {
		return err
	}

	pm, ok := m.(*image.Paletted)
	if !ok || len(pm.Palette) > palette.Size || pm.Rect.Min != (image.Point{}) {
		pm = palette.Apply(m, p)
	}

	if err := rgbe.Create(base, pm, e.suffixes); err != nil {
		return err
	}

	e.logger.WithField("image", base).Info("Encoded image")

	return nil
}

// DecodeImage decodes the RGBE image with the given base name and writes it
// to images/<name>.png. Plane warnings are logged.
func (e *Extractor) DecodeImage(base string) (*rgbe.Image, error) {
	p, err := e.Palette()
	if err != nil {
		return nil, err
	}

	m, err := rgbe.Open(base, p, e.suffixes, e.planes)
	if err != nil {
		return nil, err
	}

	logger := e.logger.WithField("image", base)
	for i, pl := range m.Planes {
		for _, w := range pl.Warnings {
			logger.WithFields(logrus.Fields{
				"plane": e.suffixes[i],
				"type":  pl.Type,
			}).Warn(w)
		}
	}

	if err := writePNG(e.output("images", stem(base)+".png"), m.Paletted); err != nil {
		return nil, err
	}

	files := rgbe.Files(base, e.suffixes)
	crc, size, err := crcFiles(files[:]...)
	if err != nil {
		return nil, err
	}

	if _, err := e.record(Asset{
		Path:   base,
		Kind:   KindImage,
		CRC:    crc,
		Size:   size,
		Detail: fmt.Sprintf("%d warnings", len(m.Warnings())),
	}); err != nil {
		return nil, err
	}

	logger.Info("Decoded image")

	return m, nil
}

// DecodeTiles decodes a CHR file and writes either a single sprite sheet or
// one image per tile under sprites/<name>/.
func (e *Extractor) DecodeTiles(file string) ([]tile.Tile, error) {
	b, err := ioutil.ReadFile(file)
	if err != nil {
		return nil, err
	}

	size := e.config.TileSize(file)
	tiles, err := tile.Decode(bytes.NewReader(b), size)
	if err != nil {
		return nil, err
	}

	logger := e.logger.WithFields(logrus.Fields{
		"tiles": file,
		"size":  size,
	})
	if trailing := len(b) % tile.BytesPerTile(size); trailing != 0 {
		logger.Debugf("Ignoring %d trailing bytes", trailing)
	}

	p, err := e.Palette()
	if err != nil {
		return nil, err
	}

	name := stem(file)
	if e.config.Tiles.Sheet {
		err = writePNG(e.output("sprites", name, name+"_sheet.png"), tile.Sheet(tiles, e.config.Tiles.Columns, p))
	} else {
		err = writeTiles(e.output("sprites", name), tiles, p)
	}
	if err != nil {
		return nil, err
	}

	if _, err := e.record(Asset{
		Path:   file,
		Kind:   KindTiles,
		CRC:    crcBytes(b),
		Size:   int64(len(b)),
		Detail: fmt.Sprintf("%d tiles of %dx%d", len(tiles), size, size),
	}); err != nil {
		return nil, err
	}

	logger.Infof("Decoded %d tiles", len(tiles))

	return tiles, nil
}

// ExtractBank splits a bank file into its entries, writing each one to
// banks/<name>/<name>_<index>_0x<offset>.bin.
func (e *Extractor) ExtractBank(file string) (*bank.Bank, error) {
	b, err := ioutil.ReadFile(file)
	if err != nil {
		return nil, err
	}

	bk, err := bank.Parse(b)
	if err != nil {
		return nil, err
	}

	id, err := e.record(Asset{
		Path:   file,
		Kind:   KindBank,
		CRC:    crcBytes(b),
		Size:   int64(len(b)),
		Detail: fmt.Sprintf("%d entries, %s", bk.Len(), bk.Strategy),
	})
	if err != nil {
		return nil, err
	}

	name := stem(file)
	for _, entry := range bk.Entries {
		if err := writeFile(e.output("banks", name, entryName(name, entry)), entry.Data); err != nil {
			return nil, err
		}
		if e.catalog == nil {
			continue
		}
		if err := e.catalog.AddEntry(id, EntryRecord{
			Index:  entry.Index,
			Offset: entry.Offset,
			Size:   entry.Size(),
			CRC:    crcBytes(entry.Data),
		}); err != nil {
			return nil, err
		}
	}

	e.logger.WithFields(logrus.Fields{
		"bank":     file,
		"strategy": bk.Strategy,
		"base":     bk.Base,
	}).Infof("Extracted %d entries", bk.Len())

	return bk, nil
}

// ExtractText decodes a message table, writing a full dump to
// text/<name>/messages.txt and the decoded text alone to
// text/<name>/messages_decoded.txt.
func (e *Extractor) ExtractText(file string) (*text.Table, error) {
	b, err := ioutil.ReadFile(file)
	if err != nil {
		return nil, err
	}

	t, err := e.parser.Parse(b)
	if err != nil {
		return nil, err
	}

	name := stem(file)
	if err := writeWith(e.output("text", name, "messages.txt"), t.Dump); err != nil {
		return nil, err
	}
	if err := writeWith(e.output("text", name, "messages_decoded.txt"), t.DumpDecoded); err != nil {
		return nil, err
	}

	if _, err := e.record(Asset{
		Path:   file,
		Kind:   KindText,
		CRC:    crcBytes(b),
		Size:   int64(len(b)),
		Detail: fmt.Sprintf("%d messages, %d failed", len(t.Messages), t.Failed()),
	}); err != nil {
		return nil, err
	}

	logger := e.logger.WithField("text", file)
	if n := t.Failed(); n > 0 {
		logger.Warnf("%d messages could not be decoded", n)
	}
	logger.Infof("Extracted %d messages", len(t.Messages))

	return t, nil
}

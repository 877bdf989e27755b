package fq4

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/png"
	"io/ioutil"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/bodgit/fq4/bank"
	"github.com/bodgit/fq4/palette"
	"github.com/bodgit/fq4/rgbe"
	"github.com/bodgit/fq4/tile"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) (*Config, func()) {
	dir, err := ioutil.TempDir("", "fq4")
	require.NoError(t, err)

	config, err := DefaultConfig()
	if err != nil {
		os.RemoveAll(dir)
		t.Fatal(err)
	}
	config.GameDir = filepath.Join(dir, "game")
	config.OutputDir = filepath.Join(dir, "output")
	config.Database = filepath.Join(dir, "fq4.db")
	config.Workers = 2
	config.Text.MinOffset = 2

	require.NoError(t, os.MkdirAll(config.GameDir, 0755))

	return config, func() { os.RemoveAll(dir) }
}

func testExtractor(t *testing.T, config *Config) (*Extractor, *test.Hook) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	e, err := New(config, logger)
	require.NoError(t, err)

	return e, hook
}

func writeGameFile(t *testing.T, config *Config, name string, b []byte) string {
	file := filepath.Join(config.GameDir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(file), 0755))
	require.NoError(t, ioutil.WriteFile(file, b, 0644))
	return file
}

// paletteFile returns an 88 byte palette with color 1 white and color 2 red
func paletteFile() []byte {
	b := make([]byte, palette.FileSize)
	copy(b[4:], []byte{63, 63, 63})
	copy(b[8:], []byte{63, 0, 0})
	return b
}

func randomImage(seed int64) *image.Paletted {
	r := rand.New(rand.NewSource(seed))
	m := image.NewPaletted(image.Rect(0, 0, rgbe.Width, rgbe.Height), palette.Named["vga16"])
	for i := range m.Pix {
		m.Pix[i] = uint8(r.Intn(palette.Size))
	}
	return m
}

func textTable(messages ...string) []byte {
	b := make([]byte, 2*len(messages))
	offset := len(b)
	for i, m := range messages {
		binary.LittleEndian.PutUint16(b[2*i:], uint16(offset))
		offset += len(m) + 1
	}
	for _, m := range messages {
		b = append(append(b, m...), 0)
	}
	return b
}

func bankFile(t *testing.T, sizes ...int) []byte {
	bk := &bank.Bank{}
	for i, size := range sizes {
		bk.Entries = append(bk.Entries, bank.Entry{Index: i, Data: bytes.Repeat([]byte{byte(i + 1)}, size)})
	}
	b, err := bk.MarshalBinary()
	require.NoError(t, err)
	return b
}

func readPNG(t *testing.T, file string) image.Image {
	f, err := os.Open(file)
	require.NoError(t, err)
	defer f.Close()

	m, err := png.Decode(f)
	require.NoError(t, err)
	return m
}

func TestPalette(t *testing.T) {
	config, cleanup := testConfig(t)
	defer cleanup()

	writeGameFile(t, config, DefaultPaletteFile, paletteFile())

	e, _ := testExtractor(t, config)
	defer e.Close()

	p, err := e.Palette()
	require.NoError(t, err)
	require.Len(t, p, palette.Size)
	r, g, b, _ := p[1].RGBA()
	assert.Equal(t, []uint32{0xffff, 0xffff, 0xffff}, []uint32{r, g, b})

	// Every caller shares the same palette
	q, err := e.Palette()
	require.NoError(t, err)
	assert.True(t, &p[0] == &q[0])
}

func TestPaletteFallback(t *testing.T) {
	config, cleanup := testConfig(t)
	defer cleanup()

	e, hook := testExtractor(t, config)
	defer e.Close()

	p, err := e.Palette()
	require.NoError(t, err)
	assert.Equal(t, palette.Named[fallbackPalette], p)

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestPaletteInvalid(t *testing.T) {
	config, cleanup := testConfig(t)
	defer cleanup()

	writeGameFile(t, config, DefaultPaletteFile, make([]byte, 10))

	e, _ := testExtractor(t, config)
	defer e.Close()

	_, err := e.Palette()
	assert.Error(t, err)
}

func TestPaletteNamed(t *testing.T) {
	config, cleanup := testConfig(t)
	defer cleanup()

	config.Palettes = map[string][]string{"mine": {"#102030"}}

	config.Palette = "mine"
	e, _ := testExtractor(t, config)
	p, err := e.Palette()
	require.NoError(t, err)
	r, g, b, _ := p[0].RGBA()
	assert.Equal(t, []uint32{0x10, 0x20, 0x30}, []uint32{r >> 8, g >> 8, b >> 8})
	e.Close()

	config.Palette = "night"
	config.Brightness = 2
	e, _ = testExtractor(t, config)
	defer e.Close()
	p, err = e.Palette()
	require.NoError(t, err)
	assert.Equal(t, palette.Brighten(palette.Named["night"], 2), p)

	palettes, err := e.Palettes()
	require.NoError(t, err)
	assert.Len(t, palettes, len(palette.Named)+1)
}

func TestDecodeImage(t *testing.T) {
	config, cleanup := testConfig(t)
	defer cleanup()

	writeGameFile(t, config, DefaultPaletteFile, paletteFile())
	want := randomImage(1)
	base := filepath.Join(config.GameDir, "FQOP_01")
	require.NoError(t, rgbe.Create(base, want, rgbe.DefaultSuffixes))

	e, _ := testExtractor(t, config)
	defer e.Close()

	m, err := e.DecodeImage(base)
	require.NoError(t, err)
	assert.Equal(t, want.Pix, m.Pix)
	assert.Empty(t, m.Warnings())

	got, ok := readPNG(t, filepath.Join(config.OutputDir, "images", "FQOP_01.png")).(*image.Paletted)
	require.True(t, ok)
	assert.Equal(t, want.Pix, got.Pix)

	assets, err := e.Catalog().Assets(KindImage)
	require.NoError(t, err)
	require.Len(t, assets, 1)
	assert.Equal(t, base, assets[0].Path)
	assert.Equal(t, "0 warnings", assets[0].Detail)
	assert.Len(t, assets[0].CRC, 8)
}

func TestDecodeImageWarnings(t *testing.T) {
	config, cleanup := testConfig(t)
	defer cleanup()

	base := filepath.Join(config.GameDir, "BROKEN")
	require.NoError(t, rgbe.Create(base, randomImage(2), rgbe.DefaultSuffixes))
	writeGameFile(t, config, "BROKEN.E_", []byte{0x09, 0x00})

	e, hook := testExtractor(t, config)
	defer e.Close()

	m, err := e.DecodeImage(base)
	require.NoError(t, err)
	assert.NotEmpty(t, m.Warnings())

	var warnings int
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.WarnLevel && entry.Data["plane"] == ".E_" {
			warnings++
		}
	}
	assert.Equal(t, len(m.Warnings()), warnings)
}

func TestDecodeImageMissingPlane(t *testing.T) {
	config, cleanup := testConfig(t)
	defer cleanup()

	e, _ := testExtractor(t, config)
	defer e.Close()

	_, err := e.DecodeImage(filepath.Join(config.GameDir, "NOPE"))
	assert.True(t, structural(err))
}

func TestEncodeImage(t *testing.T) {
	config, cleanup := testConfig(t)
	defer cleanup()

	want := randomImage(3)
	src := writeGameFile(t, config, "source.png", nil)
	f, err := os.Create(src)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, want))
	require.NoError(t, f.Close())

	e, _ := testExtractor(t, config)
	defer e.Close()

	base := filepath.Join(config.GameDir, "NEW")
	require.NoError(t, e.EncodeImage(src, base))

	m, err := e.DecodeImage(base)
	require.NoError(t, err)
	assert.Equal(t, want.Pix, m.Pix)
}

func TestDecodeTiles(t *testing.T) {
	config, cleanup := testConfig(t)
	defer cleanup()

	b := make([]byte, 8*tile.BytesPerTile(8)+1)
	b[0] = 0x80
	file := writeGameFile(t, config, "FONT.CHR", b)

	e, _ := testExtractor(t, config)
	defer e.Close()

	tiles, err := e.DecodeTiles(file)
	require.NoError(t, err)
	require.Len(t, tiles, 8)
	assert.Equal(t, 8, tiles[0].Width)

	m := readPNG(t, filepath.Join(config.OutputDir, "sprites", "FONT", "FONT_sheet.png"))
	assert.Equal(t, image.Rect(0, 0, tile.DefaultColumns*8, 8), m.Bounds())

	assets, err := e.Catalog().Assets(KindTiles)
	require.NoError(t, err)
	require.Len(t, assets, 1)
	assert.Equal(t, "8 tiles of 8x8", assets[0].Detail)
}

func TestDecodeTilesLarge(t *testing.T) {
	config, cleanup := testConfig(t)
	defer cleanup()

	config.Tiles.Sheet = false
	file := writeGameFile(t, config, "FQ4.CHR", make([]byte, 2*tile.BytesPerTile(16)))

	e, _ := testExtractor(t, config)
	defer e.Close()

	tiles, err := e.DecodeTiles(file)
	require.NoError(t, err)
	require.Len(t, tiles, 2)
	assert.Equal(t, 16, tiles[0].Width)

	for _, name := range []string{"tile_0000.png", "tile_0001.png"} {
		m := readPNG(t, filepath.Join(config.OutputDir, "sprites", "FQ4", name))
		assert.Equal(t, image.Rect(0, 0, 16, 16), m.Bounds())
	}
}

func TestExtractBank(t *testing.T) {
	config, cleanup := testConfig(t)
	defer cleanup()

	file := writeGameFile(t, config, "CHRBANK", bankFile(t, 40, 100, 64))

	e, _ := testExtractor(t, config)
	defer e.Close()

	bk, err := e.ExtractBank(file)
	require.NoError(t, err)
	require.Equal(t, 3, bk.Len())

	dir := filepath.Join(config.OutputDir, "banks", "CHRBANK")
	for i, name := range []string{"CHRBANK_0000_0x000008.bin", "CHRBANK_0001_0x000030.bin", "CHRBANK_0002_0x000094.bin"} {
		b, err := ioutil.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Equal(t, bk.Entries[i].Data, b)
	}

	assets, err := e.Catalog().Assets(KindBank)
	require.NoError(t, err)
	require.Len(t, assets, 1)
	assert.Equal(t, "3 entries, size-table", assets[0].Detail)

	entries, err := e.Catalog().Entries(assets[0].ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, EntryRecord{Index: 1, Offset: 0x30, Size: 100, CRC: crcBytes(bk.Entries[1].Data)}, entries[1])
}

func TestExtractText(t *testing.T) {
	config, cleanup := testConfig(t)
	defer cleanup()

	file := writeGameFile(t, config, "FQ4MES", textTable("HELLO", "WORLD", "\x81\x20"))

	e, hook := testExtractor(t, config)
	defer e.Close()

	table, err := e.ExtractText(file)
	require.NoError(t, err)
	require.Len(t, table.Messages, 3)
	assert.Equal(t, 1, table.Failed())

	dir := filepath.Join(config.OutputDir, "text", "FQ4MES")
	b, err := ioutil.ReadFile(filepath.Join(dir, "messages.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(b), "Text: [DECODE ERROR]")

	b, err = ioutil.ReadFile(filepath.Join(dir, "messages_decoded.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(b), "[000] HELLO\n[001] WORLD\n")

	var warned bool
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.WarnLevel {
			warned = true
		}
	}
	assert.True(t, warned)
}

func TestExportSwatches(t *testing.T) {
	config, cleanup := testConfig(t)
	defer cleanup()

	config.Palettes = map[string][]string{"mine": {"#ffffff"}}

	e, _ := testExtractor(t, config)
	defer e.Close()

	names, err := e.ExportSwatches()
	require.NoError(t, err)
	assert.Len(t, names, len(palette.Named)+1)
	for _, name := range names {
		m := readPNG(t, filepath.Join(config.OutputDir, "palettes", name+".png"))
		assert.Equal(t, image.Rect(0, 0, palette.Size*swatchSize, swatchSize), m.Bounds())
	}

	file := filepath.Join(config.OutputDir, "atlas.png")
	names, err = e.ExportAtlas(file)
	require.NoError(t, err)
	m := readPNG(t, file)
	assert.Equal(t, image.Rect(0, 0, palette.Size, len(names)), m.Bounds())
}

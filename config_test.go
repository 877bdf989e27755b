package fq4

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/bodgit/fq4/rgbe"
	"github.com/bodgit/fq4/text"
	"github.com/bodgit/fq4/tile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) (string, func()) {
	dir, err := ioutil.TempDir("", "fq4")
	require.NoError(t, err)

	file := filepath.Join(dir, "fq4.yaml")
	require.NoError(t, ioutil.WriteFile(file, []byte(contents), 0644))

	return file, func() { os.RemoveAll(dir) }
}

func TestDefaultConfig(t *testing.T) {
	config, err := DefaultConfig()
	require.NoError(t, err)

	assert.Equal(t, ".", config.GameDir)
	assert.Equal(t, "output", config.OutputDir)
	assert.Equal(t, DefaultPaletteFile, config.PaletteFile)
	assert.Equal(t, "", config.Palette)
	assert.Equal(t, 1.0, config.Brightness)
	assert.Equal(t, 1.0, config.Contrast)
	assert.True(t, config.Workers >= 1)
	assert.Equal(t, "info", config.LogLevel)
	assert.Equal(t, "", config.Database)
	assert.Equal(t, []string{"FQ4.CHR"}, config.Tiles.Large)
	assert.Equal(t, tile.DefaultColumns, config.Tiles.Columns)
	assert.True(t, config.Tiles.Sheet)
	assert.Equal(t, "shift_jis", config.Text.Encoding)
	assert.Equal(t, text.MinOffset, config.Text.MinOffset)

	suffixes, err := config.Suffixes()
	require.NoError(t, err)
	assert.Equal(t, rgbe.DefaultSuffixes, suffixes)

	assert.Equal(t, filepath.Join(".", DefaultPaletteFile), config.PalettePath())
}

func TestLoadConfig(t *testing.T) {
	file, cleanup := writeConfig(t, `
game_dir: /games/fq4
output_dir: /tmp/fq4
workers: 3
palette: mine
palettes:
  mine:
    - "#ff0000"
    - "#00ff00"
tiles:
  large:
    - "FACE*.CHR"
  columns: 8
  sheet: false
text:
  encoding: euc-jp
  min_offset: 16
`)
	defer cleanup()

	config, err := LoadConfig(file)
	require.NoError(t, err)

	assert.Equal(t, "/games/fq4", config.GameDir)
	assert.Equal(t, "/tmp/fq4", config.OutputDir)
	assert.Equal(t, 3, config.Workers)
	assert.Equal(t, "mine", config.Palette)
	assert.Equal(t, map[string][]string{"mine": {"#ff0000", "#00ff00"}}, config.Palettes)
	assert.Equal(t, 8, config.Tiles.Columns)
	assert.False(t, config.Tiles.Sheet)
	assert.Equal(t, "euc-jp", config.Text.Encoding)
	assert.Equal(t, 16, config.Text.MinOffset)
	assert.Equal(t, filepath.Join("/games/fq4", DefaultPaletteFile), config.PalettePath())

	assert.Equal(t, 16, config.TileSize(filepath.Join("game", "face01.chr")))
	assert.Equal(t, 8, config.TileSize(filepath.Join("game", "FQ4.CHR")))
	assert.Equal(t, 8, config.TileSize("FONT.CHR"))
}

func TestLoadConfigEnv(t *testing.T) {
	file, cleanup := writeConfig(t, "tiles:\n  columns: 8\n")
	defer cleanup()

	require.NoError(t, os.Setenv("FQ4_TILES_COLUMNS", "4"))
	defer os.Unsetenv("FQ4_TILES_COLUMNS")
	require.NoError(t, os.Setenv("FQ4_WORKERS", "7"))
	defer os.Unsetenv("FQ4_WORKERS")

	config, err := LoadConfig(file)
	require.NoError(t, err)
	assert.Equal(t, 4, config.Tiles.Columns)
	assert.Equal(t, 7, config.Workers)
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := []struct {
		name     string
		contents string
	}{
		{"workers", "workers: 0\n"},
		{"columns", "tiles:\n  columns: -1\n"},
		{"suffixes", "rgbe:\n  suffixes: [\".B_\", \".G_\", \".R_\"]\n"},
		{"encoding", "text:\n  encoding: klingon\n"},
		{"brightness", "brightness: 0\n"},
		{"yaml", "workers: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file, cleanup := writeConfig(t, tt.contents)
			defer cleanup()

			_, err := LoadConfig(file)
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigMissing(t *testing.T) {
	_, err := LoadConfig(filepath.Join(os.TempDir(), "fq4-does-not-exist.yaml"))
	assert.Error(t, err)
}

func TestLoadConfigSearch(t *testing.T) {
	// No fq4.yaml alongside the tests so the defaults are used
	config, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "output", config.OutputDir)
}

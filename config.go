package fq4

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/bodgit/fq4/rgbe"
	"github.com/bodgit/fq4/text"
	"github.com/bodgit/fq4/tile"
	"github.com/spf13/viper"
)

const (
	envVarPrefix = "FQ4"
	configName   = "fq4"

	// DefaultPaletteFile is the palette shipped with the game
	DefaultPaletteFile = "FQ4.RGB"
)

// Config contains all of the options used when extracting assets.
type Config struct {
	// Directory containing the game files.
	GameDir string `mapstructure:"game_dir"`
	// Directory under which extracted assets are written.
	OutputDir string `mapstructure:"output_dir"`
	// Palette file, relative paths are resolved against GameDir.
	PaletteFile string `mapstructure:"palette_file"`
	// Name of a built-in or custom palette used instead of PaletteFile.
	Palette string `mapstructure:"palette"`
	// Custom palettes, each a list of up to 16 #RRGGBB colors.
	Palettes map[string][]string `mapstructure:"palettes"`
	// Brightness and contrast factors applied to the palette, 1 leaves it unchanged.
	Brightness float64 `mapstructure:"brightness"`
	Contrast   float64 `mapstructure:"contrast"`
	// Number of files decoded concurrently by Scan.
	Workers int `mapstructure:"workers"`
	// Full path to file to which logs will be written. Blank will write to stderr.
	LogFilePath string `mapstructure:"log_file_path"`
	// Minimum level of a log required to be written. Options: debug, info, warn, error
	LogLevel string `mapstructure:"log_level"`
	// SQLite catalog of extracted assets, blank disables it.
	Database string `mapstructure:"database"`

	Tiles struct {
		// File name patterns of CHR files holding 16x16 tiles, all others are 8x8.
		Large []string `mapstructure:"large"`
		// Number of tiles per row in a sprite sheet.
		Columns int `mapstructure:"columns"`
		// Write a single sprite sheet rather than one image per tile.
		Sheet bool `mapstructure:"sheet"`
	} `mapstructure:"tiles"`

	Text struct {
		// Encoding of message tables. Options: shift_jis, euc-jp, cp437, utf-8
		Encoding string `mapstructure:"encoding"`
		// Lowest plausible offset of the first message.
		MinOffset int `mapstructure:"min_offset"`
	} `mapstructure:"text"`

	RGBE struct {
		// File suffixes of the blue, green, red and E planes.
		Suffixes []string `mapstructure:"suffixes"`
	} `mapstructure:"rgbe"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("game_dir", ".")
	v.SetDefault("output_dir", "output")
	v.SetDefault("palette_file", DefaultPaletteFile)
	v.SetDefault("palette", "")
	v.SetDefault("palettes", map[string][]string{})
	v.SetDefault("brightness", 1.0)
	v.SetDefault("contrast", 1.0)
	v.SetDefault("workers", runtime.NumCPU())
	v.SetDefault("log_file_path", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("database", "")
	v.SetDefault("tiles.large", []string{"FQ4.CHR"})
	v.SetDefault("tiles.columns", tile.DefaultColumns)
	v.SetDefault("tiles.sheet", true)
	v.SetDefault("text.encoding", "shift_jis")
	v.SetDefault("text.min_offset", text.MinOffset)
	v.SetDefault("rgbe.suffixes", append([]string(nil), rgbe.DefaultSuffixes[:]...))
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	v.SetEnvPrefix(envVarPrefix)
	v.AutomaticEnv()

	// This allows nested options to be set through environment variables,
	// for example tiles.columns can be set using FQ4_TILES_COLUMNS
	for _, k := range v.AllKeys() {
		envVar := strings.ReplaceAll(strings.ToUpper(k), ".", "_")
		if err := v.BindEnv(k, envVarPrefix+"_"+envVar); err != nil {
			return nil, fmt.Errorf("error binding %s to %s: %w", k, envVarPrefix+"_"+envVar, err)
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// DefaultConfig returns the configuration used when there is no config file,
// taking any environment variables into account.
func DefaultConfig() (*Config, error) {
	return load(viper.New())
}

// LoadConfig reads the YAML configuration in file. If file is blank, fq4.yaml
// is looked for in the current directory and the defaults are used if it
// doesn't exist.
func LoadConfig(file string) (*Config, error) {
	v := viper.New()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(configName)
	}
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || file != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return load(v)
}

// Validate checks the configuration for obvious mistakes.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return errors.New("workers must be at least 1")
	}
	if c.Brightness <= 0 || c.Contrast <= 0 {
		return errors.New("brightness and contrast must be positive")
	}
	if c.Tiles.Columns < 0 {
		return errors.New("tiles.columns cannot be negative")
	}
	if _, err := c.Suffixes(); err != nil {
		return err
	}
	if _, err := text.Encoding(c.Text.Encoding); err != nil {
		return err
	}
	for _, pattern := range c.Tiles.Large {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return fmt.Errorf("tiles.large: %w", err)
		}
	}
	return nil
}

// Suffixes returns the RGBE plane file suffixes.
func (c *Config) Suffixes() (rgbe.Suffixes, error) {
	var s rgbe.Suffixes
	if len(c.RGBE.Suffixes) != len(s) {
		return s, fmt.Errorf("rgbe.suffixes must list %d suffixes", len(s))
	}
	copy(s[:], c.RGBE.Suffixes)
	return s, nil
}

// TileSize returns the size of the tiles held in the CHR file.
func (c *Config) TileSize(file string) int {
	name := strings.ToUpper(filepath.Base(file))
	for _, pattern := range c.Tiles.Large {
		if ok, _ := filepath.Match(strings.ToUpper(pattern), name); ok {
			return 16
		}
	}
	return 8
}

// PalettePath returns the palette file, resolved against the game directory.
func (c *Config) PalettePath() string {
	if c.PaletteFile == "" || filepath.IsAbs(c.PaletteFile) {
		return c.PaletteFile
	}
	return filepath.Join(c.GameDir, c.PaletteFile)
}

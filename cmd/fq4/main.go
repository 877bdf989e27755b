package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/bodgit/fq4"
	"github.com/bodgit/fq4/palette"
	"github.com/urfave/cli/v2"
)

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func loadConfig(c *cli.Context, fn func(*fq4.Config)) (*fq4.Config, error) {
	config, err := fq4.LoadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}

	if c.IsSet("game-dir") {
		config.GameDir = c.String("game-dir")
	}
	if c.IsSet("output") {
		config.OutputDir = c.String("output")
	}
	if c.IsSet("palette") {
		config.Palette = c.String("palette")
	}
	if c.IsSet("palette-file") {
		config.PaletteFile = c.String("palette-file")
		config.Palette = ""
	}
	if c.Bool("verbose") {
		config.LogLevel = "debug"
	}

	if fn != nil {
		fn(config)
	}

	return config, config.Validate()
}

// run builds an Extractor from the configuration, adjusted by fn, and
// passes it to action
func run(c *cli.Context, fn func(*fq4.Config), action func(*fq4.Extractor) error) error {
	if c.NArg() < 1 && c.Command.ArgsUsage != "" {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	config, err := loadConfig(c, fn)
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	logger, closer, err := fq4.NewLogger(config)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer closer.Close()

	e, err := fq4.New(config, logger)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer e.Close()

	if err := action(e); err != nil {
		return cli.NewExitError(err, 1)
	}

	return nil
}

// besideFile looks for the palette next to file unless a game directory was
// given explicitly
func besideFile(c *cli.Context, file string) func(*fq4.Config) {
	return func(config *fq4.Config) {
		if !c.IsSet("game-dir") {
			config.GameDir = filepath.Dir(file)
		}
	}
}

func printPalette(e *fq4.Extractor) error {
	p, err := e.Palette()
	if err != nil {
		return err
	}
	for i, col := range p {
		r, g, b, _ := col.RGBA()
		r, g, b = r>>8, g>>8, b>>8
		fmt.Printf("Color %2d: RGB(%3d, %3d, %3d) = #%02X%02X%02X\n", i, r, g, b, r, g, b)
	}
	return nil
}

func main() {
	app := cli.NewApp()

	app.Name = "fq4"
	app.Usage = "First Queen 4 asset extraction utility"
	app.Version = "1.0.0"

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			EnvVars: []string{"FQ4_CONFIG"},
			Usage:   "path to YAML configuration file",
		},
		&cli.StringFlag{
			Name:  "game-dir",
			Usage: "directory containing the game files",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "directory to write extracted assets to",
		},
		&cli.StringFlag{
			Name:    "palette",
			Aliases: []string{"p"},
			Usage:   "name of a built-in or custom palette to use",
		},
		&cli.StringFlag{
			Name:  "palette-file",
			Usage: "palette file to use",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:      "palette",
			Usage:     "Show a palette file and write a swatch",
			ArgsUsage: "FILE",
			Action: func(c *cli.Context) error {
				file := c.Args().First()
				return run(c, func(config *fq4.Config) {
					config.PaletteFile, _ = filepath.Abs(file)
					config.Palette = ""
				}, func(e *fq4.Extractor) error {
					if err := printPalette(e); err != nil {
						return err
					}
					return e.ExportPalette()
				})
			},
		},
		{
			Name:      "decode",
			Usage:     "Decode an RGBE image",
			ArgsUsage: "BASE",
			Action: func(c *cli.Context) error {
				base := c.Args().First()
				return run(c, besideFile(c, base), func(e *fq4.Extractor) error {
					_, err := e.DecodeImage(base)
					return err
				})
			},
		},
		{
			Name:      "encode",
			Usage:     "Encode a 320x200 image as RGBE plane files",
			ArgsUsage: "IMAGE BASE",
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}
				file, base := c.Args().Get(0), c.Args().Get(1)
				return run(c, nil, func(e *fq4.Extractor) error {
					return e.EncodeImage(file, base)
				})
			},
		},
		{
			Name:      "chr",
			Usage:     "Decode CHR sprite tiles",
			ArgsUsage: "FILE",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "size",
					Usage: "tile size, 8 or 16",
				},
				&cli.IntFlag{
					Name:  "columns",
					Usage: "tiles per row in the sprite sheet",
				},
				&cli.BoolFlag{
					Name:  "tiles",
					Usage: "write one image per tile rather than a sprite sheet",
				},
			},
			Action: func(c *cli.Context) error {
				file := c.Args().First()
				return run(c, func(config *fq4.Config) {
					besideFile(c, file)(config)
					switch c.Int("size") {
					case 16:
						config.Tiles.Large = []string{filepath.Base(file)}
					case 8:
						config.Tiles.Large = nil
					}
					if c.IsSet("columns") {
						config.Tiles.Columns = c.Int("columns")
					}
					if c.Bool("tiles") {
						config.Tiles.Sheet = false
					}
				}, func(e *fq4.Extractor) error {
					_, err := e.DecodeTiles(file)
					return err
				})
			},
		},
		{
			Name:      "bank",
			Usage:     "Extract the entries of a bank file",
			ArgsUsage: "FILE",
			Action: func(c *cli.Context) error {
				file := c.Args().First()
				return run(c, nil, func(e *fq4.Extractor) error {
					_, err := e.ExtractBank(file)
					return err
				})
			},
		},
		{
			Name:      "text",
			Usage:     "Extract the messages of a text table",
			ArgsUsage: "FILE",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "encoding",
					Usage: "text encoding",
				},
				&cli.IntFlag{
					Name:  "min-offset",
					Usage: "lowest plausible offset of the first message",
				},
			},
			Action: func(c *cli.Context) error {
				file := c.Args().First()
				return run(c, func(config *fq4.Config) {
					if c.IsSet("encoding") {
						config.Text.Encoding = c.String("encoding")
					}
					if c.IsSet("min-offset") {
						config.Text.MinOffset = c.Int("min-offset")
					}
				}, func(e *fq4.Extractor) error {
					_, err := e.ExtractText(file)
					return err
				})
			},
		},
		{
			Name:      "scan",
			Usage:     "Extract everything from a game directory",
			ArgsUsage: "DIRECTORY",
			Action: func(c *cli.Context) error {
				dir := c.Args().First()
				return run(c, func(config *fq4.Config) {
					config.GameDir = dir
				}, func(e *fq4.Extractor) error {
					ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
					defer stop()
					return e.Scan(ctx, dir)
				})
			},
		},
		{
			Name:  "swatches",
			Usage: "Write a swatch of every built-in and custom palette",
			Action: func(c *cli.Context) error {
				return run(c, nil, func(e *fq4.Extractor) error {
					names, err := e.ExportSwatches()
					if err != nil {
						return err
					}
					for _, name := range names {
						fmt.Println(name)
					}
					return nil
				})
			},
		},
		{
			Name:      "atlas",
			Usage:     "Write every palette to a single image, one row each",
			ArgsUsage: "FILE",
			Action: func(c *cli.Context) error {
				file := c.Args().First()
				return run(c, nil, func(e *fq4.Extractor) error {
					names, err := e.ExportAtlas(file)
					if err != nil {
						return err
					}
					for i, name := range names {
						fmt.Printf("%d: %s\n", i, name)
					}
					return nil
				})
			},
		},
		{
			Name:      "extract-palette",
			Usage:     "Print the palette of a BMP, PNG or GIF image",
			ArgsUsage: "IMAGE",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				f, err := os.Open(c.Args().First())
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer f.Close()

				p, err := palette.Import(f)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				for _, col := range p {
					r, g, b, _ := col.RGBA()
					fmt.Printf("- \"#%02X%02X%02X\"\n", r>>8, g>>8, b>>8)
				}

				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

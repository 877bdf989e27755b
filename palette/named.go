package palette

import (
	"encoding/hex"
	"errors"
	"fmt"
	"image/color"
	"sort"
	"strings"
)

// ErrUnknownPalette is returned by Lookup for a name with no palette.
var ErrUnknownPalette = errors.New("palette: unknown palette")

type rgb [3]uint8

func fromRGB(in []rgb) color.Palette {
	p := make(color.Palette, len(in))
	for i, c := range in {
		p[i] = color.RGBA{c[0], c[1], c[2], 0xff}
	}
	return p
}

// Named holds substitute palettes for the sprite sheets. The palette file
// shipped with the game only carries greys so these are useful when
// previewing sprites. The decoders never consult this map; callers pass the
// palette they want explicitly.
var Named = map[string]color.Palette{
	"vga16": fromRGB([]rgb{
		{0, 0, 0}, {0, 0, 170}, {0, 170, 0}, {0, 170, 170},
		{170, 0, 0}, {170, 0, 170}, {170, 85, 0}, {170, 170, 170},
		{85, 85, 85}, {85, 85, 255}, {85, 255, 85}, {85, 255, 255},
		{255, 85, 85}, {255, 85, 255}, {255, 255, 85}, {255, 255, 255},
	}),
	"fantasy_rpg": fromRGB([]rgb{
		{0, 0, 0}, {56, 56, 56}, {96, 96, 96}, {144, 144, 144},
		{232, 184, 144}, {200, 144, 104}, {152, 104, 72}, {104, 64, 40},
		{48, 80, 144}, {72, 112, 184}, {136, 64, 32}, {184, 96, 48},
		{64, 112, 48}, {96, 160, 72}, {192, 176, 48}, {255, 255, 255},
	}),
	"knight": fromRGB([]rgb{
		{0, 0, 0}, {32, 32, 48}, {64, 64, 80}, {112, 112, 128},
		{160, 160, 176}, {208, 208, 216}, {144, 48, 48}, {192, 80, 80},
		{48, 48, 144}, {80, 80, 192}, {232, 184, 144}, {200, 144, 104},
		{96, 64, 32}, {144, 96, 48}, {224, 192, 64}, {255, 255, 255},
	}),
	"nature": fromRGB([]rgb{
		{0, 0, 0}, {24, 40, 24}, {40, 64, 40}, {64, 96, 48},
		{96, 144, 64}, {128, 176, 80}, {176, 208, 112}, {88, 64, 40},
		{136, 104, 64}, {176, 144, 96}, {64, 112, 160}, {96, 160, 208},
		{144, 200, 232}, {160, 128, 96}, {200, 176, 144}, {255, 255, 255},
	}),
	"magic": fromRGB([]rgb{
		{0, 0, 0}, {32, 0, 64}, {64, 0, 128}, {128, 0, 192},
		{192, 64, 224}, {64, 0, 0}, {128, 0, 0}, {192, 32, 0},
		{224, 96, 0}, {255, 160, 0}, {255, 224, 64}, {0, 64, 128},
		{0, 128, 192}, {64, 192, 255}, {192, 255, 255}, {255, 255, 255},
	}),
	"jrpg": fromRGB([]rgb{
		{0, 0, 0}, {40, 32, 48}, {72, 56, 80}, {255, 224, 200},
		{248, 200, 168}, {232, 168, 128}, {200, 128, 96}, {152, 88, 64},
		{64, 48, 112}, {88, 72, 160}, {120, 104, 200}, {80, 48, 32},
		{128, 80, 48}, {176, 120, 72}, {240, 216, 64}, {255, 255, 255},
	}),
	"original": fromRGB([]rgb{
		{0, 0, 0}, {32, 32, 32}, {64, 64, 64}, {96, 96, 96},
		{16, 32, 48}, {32, 64, 96}, {64, 96, 128}, {96, 128, 160},
		{16, 48, 32}, {32, 96, 64}, {64, 128, 96}, {96, 160, 128},
		{160, 160, 160}, {128, 128, 128}, {128, 160, 192}, {0, 0, 0},
	}),
	"bright": fromRGB([]rgb{
		{0, 0, 0}, {48, 48, 48}, {96, 96, 96}, {144, 144, 144},
		{24, 48, 72}, {48, 96, 144}, {96, 144, 192}, {144, 192, 240},
		{24, 72, 48}, {48, 144, 96}, {96, 192, 144}, {144, 240, 192},
		{240, 240, 240}, {192, 192, 192}, {192, 240, 255}, {0, 0, 0},
	}),
	"sunset": fromRGB([]rgb{
		{16, 8, 0}, {48, 32, 16}, {96, 64, 32}, {144, 96, 48},
		{48, 32, 64}, {96, 64, 128}, {144, 96, 160}, {192, 128, 192},
		{64, 48, 16}, {128, 96, 32}, {160, 128, 64}, {192, 160, 96},
		{255, 224, 192}, {192, 160, 128}, {224, 192, 224}, {16, 8, 0},
	}),
	"night": fromRGB([]rgb{
		{0, 0, 16}, {16, 16, 48}, {32, 32, 80}, {48, 48, 112},
		{8, 24, 64}, {16, 48, 96}, {32, 72, 128}, {48, 96, 160},
		{8, 32, 48}, {16, 64, 80}, {32, 96, 112}, {48, 128, 144},
		{128, 128, 176}, {80, 80, 128}, {96, 128, 192}, {0, 0, 16},
	}),
}

// Names returns the sorted names of the palettes in Named.
func Names() []string {
	names := make([]string, 0, len(Named))
	for k := range Named {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Lookup returns a copy of the named palette.
func Lookup(name string) (color.Palette, error) {
	p, ok := Named[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPalette, name)
	}
	return append(p[:0:0], p...), nil
}

// ParseHex builds a palette from colors written as "#RRGGBB" or "RRGGBB".
// The result is padded with black to Size colors.
func ParseHex(colors []string) (color.Palette, error) {
	if len(colors) > Size {
		return nil, fmt.Errorf("palette: %d colors, at most %d allowed", len(colors), Size)
	}
	p := make(color.Palette, 0, len(colors))
	for _, s := range colors {
		b, err := hex.DecodeString(strings.TrimPrefix(s, "#"))
		if err != nil || len(b) != 3 {
			return nil, fmt.Errorf("palette: invalid color %q", s)
		}
		p = append(p, color.RGBA{b[0], b[1], b[2], 0xff})
	}
	return Pad(p), nil
}

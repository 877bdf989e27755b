package fq4

import (
	"path/filepath"
	"strings"

	"github.com/bodgit/fq4/rgbe"
)

// Kind identifies the format of a game file.
type Kind int

// Known file kinds
const (
	KindUnknown Kind = iota
	KindPalette
	KindImage
	KindTiles
	KindBank
	KindText
)

var kindNames = map[Kind]string{
	KindUnknown: "unknown",
	KindPalette: "palette",
	KindImage:   "image",
	KindTiles:   "tiles",
	KindBank:    "bank",
	KindText:    "text",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return kindNames[KindUnknown]
}

// Classify guesses the kind of a game file from its name. For an RGBE image
// only the first plane is recognised, the returned path is then the base
// name shared by all four planes.
func Classify(file string, suffixes rgbe.Suffixes) (Kind, string) {
	name := strings.ToUpper(filepath.Base(file))
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	switch {
	case ext == ".RGB":
		return KindPalette, file
	case ext == strings.ToUpper(suffixes[rgbe.Blue]):
		return KindImage, file[:len(file)-len(ext)]
	case ext == ".CHR":
		return KindTiles, file
	case strings.Contains(name, "BANK"):
		return KindBank, file
	case strings.HasSuffix(stem, "MES"):
		return KindText, file
	}

	return KindUnknown, file
}

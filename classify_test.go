package fq4

import (
	"path/filepath"
	"testing"

	"github.com/bodgit/fq4/rgbe"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	dir := filepath.Join("game", "GAME")

	tests := []struct {
		name string
		kind Kind
		path string
	}{
		{"FQ4.RGB", KindPalette, "FQ4.RGB"},
		{"FQOP_01.B_", KindImage, "FQOP_01"},
		{"fqop_01.b_", KindImage, "fqop_01"},
		{"FQOP_01.G_", KindUnknown, "FQOP_01.G_"},
		{"FQOP_01.E_", KindUnknown, "FQOP_01.E_"},
		{"FONT.CHR", KindTiles, "FONT.CHR"},
		{"CHRBANK", KindBank, "CHRBANK"},
		{"MAPBANK.DAT", KindBank, "MAPBANK.DAT"},
		{"FQ4MES", KindText, "FQ4MES"},
		{"MAIN.EXE", KindUnknown, "MAIN.EXE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, path := Classify(filepath.Join(dir, tt.name), rgbe.DefaultSuffixes)
			assert.Equal(t, tt.kind, kind)
			assert.Equal(t, filepath.Join(dir, tt.path), path)
		})
	}
}

func TestClassifySuffixes(t *testing.T) {
	suffixes := rgbe.Suffixes{".PL0", ".PL1", ".PL2", ".PL3"}

	kind, path := Classify("TITLE.PL0", suffixes)
	assert.Equal(t, KindImage, kind)
	assert.Equal(t, "TITLE", path)

	kind, _ = Classify("TITLE.B_", suffixes)
	assert.Equal(t, KindUnknown, kind)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "image", KindImage.String())
	assert.Equal(t, "bank", KindBank.String())
	assert.Equal(t, "unknown", Kind(42).String())
}

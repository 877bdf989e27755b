package fq4

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCRCBytes(t *testing.T) {
	assert.Equal(t, "CBF43926", crcBytes([]byte("123456789")))
	assert.Equal(t, "00000000", crcBytes(nil))
}

func TestCRCFiles(t *testing.T) {
	dir, err := ioutil.TempDir("", "fq4")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	files := []string{
		filepath.Join(dir, "A"),
		filepath.Join(dir, "B"),
		filepath.Join(dir, "C"),
	}
	require.NoError(t, ioutil.WriteFile(files[0], []byte("1234"), 0644))
	require.NoError(t, ioutil.WriteFile(files[1], []byte{}, 0644))
	require.NoError(t, ioutil.WriteFile(files[2], []byte("56789"), 0644))

	crc, size, err := crcFiles(files...)
	require.NoError(t, err)
	assert.Equal(t, "CBF43926", crc)
	assert.Equal(t, int64(9), size)

	_, _, err = crcFiles(files[0], filepath.Join(dir, "D"))
	assert.True(t, os.IsNotExist(err))
}

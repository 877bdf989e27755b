package fq4

import (
	"fmt"
	"hash"
	"hash/crc32"
	"io"
	"os"
)

func sum(h hash.Hash32) string {
	return fmt.Sprintf("%.*X", crc32.Size<<1, h.Sum(nil))
}

func crcBytes(b []byte) string {
	h := crc32.NewIEEE()
	h.Write(b)
	return sum(h)
}

// crcFiles returns the checksum of the files as if they were concatenated,
// an RGBE image is fingerprinted across all four of its planes
func crcFiles(files ...string) (string, int64, error) {
	h := crc32.NewIEEE()
	var size int64
	for _, file := range files {
		n, err := copyFile(h, file)
		if err != nil {
			return "", 0, err
		}
		size += n
	}

	return sum(h), size, nil
}

func copyFile(w io.Writer, file string) (int64, error) {
	f, err := os.Open(file)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	return io.Copy(w, f)
}

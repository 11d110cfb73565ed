package fileutils

import (
	"errors"
	"io"
	"os"

	"github.com/cespare/xxhash"
)

// ComputeHash returns the hash of the reader.
// It will read the entire contents of the reader. It will not close the reader.
func ComputeHash(r io.Reader) (uint64, error) {
	hash := xxhash.New()
	_, err := io.Copy(hash, r)
	if err != nil {
		return 0, err
	}
	return hash.Sum64(), nil
}

// ComputeFileHash returns the hash of the file at path.
func ComputeFileHash(path string) (hash uint64, err error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer func() {
		err = errors.Join(err, file.Close())
	}()

	return ComputeHash(file)
}

// CopyHashed copies src to dst and returns the number of bytes written
// along with the hash of the copied content.
func CopyHashed(dst io.Writer, src io.Reader) (int64, uint64, error) {
	hash := xxhash.New()
	n, err := io.Copy(io.MultiWriter(dst, hash), src)
	if err != nil {
		return n, 0, err
	}
	return n, hash.Sum64(), nil
}

package fileutils

import (
	"errors"
	"os"
)

// Exists reports whether anything exists at path. Stat errors other than
// not-exist count as existing so callers never pick the name.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, os.ErrNotExist)
}

package fileutils

import (
	"errors"
	"fmt"
	"os"
)

// VerifyWritable returns nil if dirPath is a directory and a file can be created in it.
func VerifyWritable(dirPath string) error {
	info, err := os.Stat(dirPath)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", dirPath)
	}

	fil, err := os.CreateTemp(dirPath, ".write-check-*")
	if err != nil {
		return err
	}
	return errors.Join(fil.Close(), os.Remove(fil.Name()))
}

package fileutils_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stupid-simple/mediaextract/fileutils"
)

func TestExists(t *testing.T) {
	dir := t.TempDir()
	filePath := filepath.Join(dir, "present.jpg")
	if err := os.WriteFile(filePath, data, 0600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		path     string
		expected bool
	}{
		{
			name:     "existing file",
			path:     filePath,
			expected: true,
		},
		{
			name:     "existing directory",
			path:     dir,
			expected: true,
		},
		{
			name:     "non-existent file",
			path:     filepath.Join(dir, "missing.jpg"),
			expected: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := fileutils.Exists(tc.path)
			if result != tc.expected {
				t.Errorf("Expected Exists(%q) = %v, got %v", tc.path, tc.expected, result)
			}
		})
	}
}

func TestVerifyWritable(t *testing.T) {
	dir := t.TempDir()
	if err := fileutils.VerifyWritable(dir); err != nil {
		t.Errorf("expected writable dir, got %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("expected check file to be removed, found %d entries", len(entries))
	}
}

func TestVerifyWritable_NotDir(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(filePath, data, 0600); err != nil {
		t.Fatal(err)
	}

	if err := fileutils.VerifyWritable(filePath); err == nil {
		t.Error("expected error")
	}
	if err := fileutils.VerifyWritable(filepath.Join(filePath, "missing")); err == nil {
		t.Error("expected error")
	}
}

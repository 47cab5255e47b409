package util

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileExists reports whether path exists and is a regular file
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// OutputPath derives a sibling output path from input: "<dir>/<name><suffix>".
// The suffix carries the extension, e.g. " - Lightning Trimmed.mp4".
func OutputPath(input, suffix string) string {
	dir, file := filepath.Split(input)
	name := strings.TrimSuffix(file, filepath.Ext(file))
	return filepath.Join(dir, name+suffix)
}

// RemoveIfExists deletes path, ignoring a missing file
func RemoveIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// FileSize returns the size of path in bytes, or 0 if it cannot be read
func FileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}

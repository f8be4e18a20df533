// Package fileutil holds the file checks and atomic writes shared by the
// media tools and the speech client.
package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrEmptyFile reports a file that exists but holds no data.
var ErrEmptyFile = errors.New("file is empty")

// RequireFile returns an error unless path names an existing regular file.
func RequireFile(path string) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("path is empty")
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}

// NonEmptySize returns the size of path, failing with ErrEmptyFile when it is
// zero bytes long.
func NonEmptySize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	if info.Size() == 0 {
		return 0, fmt.Errorf("%s: %w", filepath.Base(path), ErrEmptyFile)
	}
	return info.Size(), nil
}

// TempSibling returns a hidden path next to target that keeps its extension,
// so tools that infer a format from the name still work.
func TempSibling(target string) string {
	return filepath.Join(filepath.Dir(target), ".tmp-"+filepath.Base(target))
}

// Promote renames a finished temp file over target. Empty or missing temp
// files are removed and reported instead of replacing target.
func Promote(tmpPath, target string) error {
	if _, err := NonEmptySize(tmpPath); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, target); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}

// WriteAtomic writes data to a temp file in the target directory and renames
// it over path, creating the directory when needed.
func WriteAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*-"+filepath.Base(path))
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}

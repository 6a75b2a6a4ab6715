// Package atomicfile reads and writes YAML records so that readers only ever
// observe a complete previous or complete new file.
package atomicfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrRootPath is returned when the target path has no parent directory.
var ErrRootPath = errors.New("can't write to a filesystem root")

// ErrMalformed is returned when a file exists but does not decode.
var ErrMalformed = errors.New("malformed content")

// TempPattern is appended to the base name of the destination to form the
// os.CreateTemp pattern of in-flight writes.
const TempPattern = ".*.tmp"

// SaveYAML serializes v and installs it at path via a synced temporary
// sibling and a rename. Parent directories are created as needed.
func SaveYAML(path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("atomicfile.SaveYAML: marshal %s: %w", path, err)
	}
	return Write(path, data)
}

// Write installs data at path atomically. Each call writes its own
// uniquely named sibling, so concurrent writers never share a temp file and
// the last rename wins.
func Write(path string, data []byte) error {
	dir, err := parentDir(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("atomicfile.Write: create dir: %w", err)
	}

	f, err := os.CreateTemp(dir, filepath.Base(path)+TempPattern)
	if err != nil {
		return fmt.Errorf("atomicfile.Write: %w", err)
	}
	tmpPath := f.Name()
	fail := func(step string, err error) error {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("atomicfile.Write: %s: %w", step, err)
	}
	if err := f.Chmod(0o644); err != nil {
		return fail("chmod temp file", err)
	}
	if _, err := f.Write(data); err != nil {
		return fail("write temp file", err)
	}
	if err := f.Sync(); err != nil {
		return fail("sync temp file", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("atomicfile.Write: close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("atomicfile.Write: rename temp file: %w", err)
	}
	syncDir(dir)
	return nil
}

// syncDir flushes the directory entry created by the rename. Errors are
// ignored: some filesystems cannot fsync a directory.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}

// LoadYAML decodes the file at path into v. It reports false with a nil
// error when the file does not exist.
func LoadYAML(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("atomicfile.LoadYAML: %w", err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("atomicfile.LoadYAML: %s: %w: %w", path, ErrMalformed, err)
	}
	return true, nil
}

// Exists reports whether path exists.
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("atomicfile.Exists: %w", err)
	}
	return true, nil
}

func parentDir(path string) (string, error) {
	if path == "" {
		return "", ErrRootPath
	}
	clean := filepath.Clean(path)
	dir := filepath.Dir(clean)
	if dir == clean {
		return "", ErrRootPath
	}
	return dir, nil
}

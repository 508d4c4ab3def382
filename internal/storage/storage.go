// Package storage manages the two flat directories uploads pass through: a
// scratch area for incoming files and the permanent audio library.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// ErrInvalidName is returned for names that would escape the directory
var ErrInvalidName = errors.New("invalid storage name")

// validName rejects anything but a plain file name
func validName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") ||
		strings.ContainsRune(name, 0) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// Library is the permanent audio directory
type Library struct {
	dir string
}

// NewLibrary creates the library directory if needed
func NewLibrary(dir string) (*Library, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create library directory: %w", err)
	}
	return &Library{dir: dir}, nil
}

// Dir returns the library directory
func (l *Library) Dir() string { return l.dir }

// Path resolves a stored filename to its location on disk
func (l *Library) Path(name string) (string, error) {
	if err := validName(name); err != nil {
		return "", err
	}
	return filepath.Join(l.dir, name), nil
}

// Exists reports whether a stored file is present
func (l *Library) Exists(name string) (bool, error) {
	path, err := l.Path(name)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat file: %w", err)
	}
	return info.Mode().IsRegular(), nil
}

// Move relocates src into the library under name and returns the new path.
// An existing file with the same name is never overwritten.
func (l *Library) Move(src, name string) (string, error) {
	dst, err := l.Path(name)
	if err != nil {
		return "", err
	}
	if _, err := os.Lstat(dst); err == nil {
		return "", fmt.Errorf("destination %s already exists", name)
	}

	err = os.Rename(src, dst)
	if err == nil {
		return dst, nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return "", fmt.Errorf("failed to move file: %w", err)
	}

	// Different filesystems: copy then remove the source
	if err := copyFile(src, dst); err != nil {
		return "", err
	}
	if err := os.Remove(src); err != nil && !os.IsNotExist(err) {
		os.Remove(dst)
		return "", fmt.Errorf("failed to remove source after copy: %w", err)
	}
	return dst, nil
}

// Remove deletes a stored file. A missing file is not an error.
func (l *Library) Remove(name string) error {
	path, err := l.Path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("failed to create destination: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("failed to copy file: %w", err)
	}
	if err := out.Sync(); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("failed to sync file: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return fmt.Errorf("failed to close file: %w", err)
	}
	return nil
}

// Temp is the scratch directory for incoming uploads
type Temp struct {
	dir string
}

// NewTemp creates the temp directory if needed
func NewTemp(dir string) (*Temp, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	return &Temp{dir: dir}, nil
}

// Dir returns the temp directory
func (t *Temp) Dir() string { return t.dir }

// Create opens a new file for writing. It fails if the name is taken.
func (t *Temp) Create(name string) (*os.File, string, error) {
	if err := validName(name); err != nil {
		return nil, "", err
	}
	path := filepath.Join(t.dir, name)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create temp file: %w", err)
	}
	return f, path, nil
}

// Save writes r to a new temp file and returns its path
func (t *Temp) Save(name string, r io.Reader) (string, error) {
	f, path, err := t.Create(name)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}
	return path, nil
}

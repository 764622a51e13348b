package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileStorage is the file-system surface the template lifecycle needs.
type FileStorage interface {
	Exists(path string) (bool, error)
	Create(path string, content []byte) error
	Read(path string) ([]byte, error)
	WriteFile(path string, content []byte) error
	Touch(path string) error
	RemoveAll(path string) error
}

// LocalStorage stores files on the local filesystem.
type LocalStorage struct {
	dirPerm  os.FileMode
	filePerm os.FileMode
}

func NewLocalStorage() *LocalStorage {
	return &LocalStorage{dirPerm: 0755, filePerm: 0644}
}

// Exists reports whether a regular file or directory exists at path.
func (s *LocalStorage) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat %s: %w", path, err)
}

// Create creates path exclusively and writes content to it. Parent
// directories are created as needed. Fails with fs.ErrExist when the file is
// already there.
func (s *LocalStorage) Create(path string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), s.dirPerm); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, s.filePerm)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	if len(content) > 0 {
		if _, err := f.Write(content); err != nil {
			return fmt.Errorf("write file: %w", err)
		}
	}
	return f.Close()
}

func (s *LocalStorage) Read(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return b, nil
}

// WriteFile replaces the contents of path, creating parent directories.
func (s *LocalStorage) WriteFile(path string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), s.dirPerm); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	if err := os.WriteFile(path, content, s.filePerm); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

// Touch creates an empty file at path unless something is already there.
func (s *LocalStorage) Touch(path string) error {
	err := s.Create(path, nil)
	if err != nil && errors.Is(err, fs.ErrExist) {
		return nil
	}
	return err
}

// RemoveAll deletes path and everything below it. A missing path is not an
// error.
func (s *LocalStorage) RemoveAll(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}

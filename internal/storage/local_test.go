package storage

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreate_NeverOverwrites(t *testing.T) {
	s := NewLocalStorage()
	path := filepath.Join(t.TempDir(), "a", "b", "hero.html")

	require.NoError(t, s.Create(path, []byte("<p>one</p>")))

	err := s.Create(path, []byte("<p>two</p>"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrExist))

	b, err := s.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "<p>one</p>", string(b))
}

func TestTouch(t *testing.T) {
	s := NewLocalStorage()
	path := filepath.Join(t.TempDir(), "x", "__init__.py")

	require.NoError(t, s.Touch(path))
	require.NoError(t, os.WriteFile(path, []byte("keep"), 0644))
	require.NoError(t, s.Touch(path))

	b, err := s.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "keep", string(b))
}

func TestRead_Missing(t *testing.T) {
	s := NewLocalStorage()
	_, err := s.Read(filepath.Join(t.TempDir(), "missing.html"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestExistsAndRemoveAll(t *testing.T) {
	s := NewLocalStorage()
	dir := filepath.Join(t.TempDir(), "folder")
	require.NoError(t, s.WriteFile(filepath.Join(dir, "nested", "f.txt"), []byte("x")))

	ok, err := s.Exists(dir)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, s.RemoveAll(dir))
	ok, err = s.Exists(dir)
	require.NoError(t, err)
	assert.False(t, ok)

	// removing again is fine
	require.NoError(t, s.RemoveAll(dir))
}

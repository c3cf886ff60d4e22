package certificate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileTemplateStoreReplaceAndRead(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "template.png")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0644))

	s := NewFileTemplateStore(path)

	data, err := s.Bytes()
	require.NoError(t, err)
	assert.Equal(t, []byte("old"), data)

	require.NoError(t, s.Replace([]byte("new")))

	data, err = s.Bytes()
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), data)

	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), onDisk)

	// The staging file must not survive the rename.
	leftovers, err := filepath.Glob(filepath.Join(dir, ".template-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestFileTemplateStoreCreatesMissingTarget(t *testing.T) {
	path := filepath.Join(t.TempDir(), "template.png")
	s := NewFileTemplateStore(path)

	_, err := s.Bytes()
	require.Error(t, err, "nothing to read before the first replace")

	require.NoError(t, s.Replace([]byte("fresh")))
	data, err := s.Bytes()
	require.NoError(t, err)
	assert.Equal(t, []byte("fresh"), data)
}

func TestMemTemplateStoreEmpty(t *testing.T) {
	s := NewMemTemplateStore(nil)
	_, err := s.Bytes()
	assert.ErrorIs(t, err, ErrNoTemplate)
}

func TestMemTemplateStoreCopies(t *testing.T) {
	initial := []byte("abc")
	s := NewMemTemplateStore(initial)

	// Mutating the seed slice must not reach the store.
	initial[0] = 'x'
	data, err := s.Bytes()
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), data)

	// Mutating a returned slice must not either.
	data[0] = 'y'
	again, err := s.Bytes()
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), again)

	require.NoError(t, s.Replace([]byte("def")))
	data, err = s.Bytes()
	require.NoError(t, err)
	assert.Equal(t, []byte("def"), data)
}

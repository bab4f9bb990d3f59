package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFileStore_SaveAndRead(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	path, err := store.SavePDF("INV-1705752000000", []byte("%PDF-1.4 test"))
	require.NoError(t, err)
	assert.Equal(t, "invoice-INV-1705752000000.pdf", filepath.Base(path))

	data, err := store.ReadPDF(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 test"), data)
}

func TestFileStore_SanitizesFilename(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, zap.NewNop())
	require.NoError(t, err)

	path, err := store.SavePDF("../evil/INV 1", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))
	assert.Equal(t, "invoice-.._evil_INV_1.pdf", filepath.Base(path))
}

func TestFileStore_RejectsEscapingPaths(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, zap.NewNop())
	require.NoError(t, err)

	outside := filepath.Join(t.TempDir(), "secret.pdf")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0644))

	_, err = store.ReadPDF(outside)
	assert.Error(t, err)

	_, err = store.ReadPDF(filepath.Join(dir, "..", "anything.pdf"))
	assert.Error(t, err)
}

func TestFileStore_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "invoices")
	_, err := NewFileStore(dir, zap.NewNop())
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

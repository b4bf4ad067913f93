package fsio

import (
	"errors"
	"os"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteThenRead(t *testing.T) {
	fs := afero.NewMemMapFs()

	require.NoError(t, WriteFile(fs, "/docs/a.txt", "hello\nworld"))

	got, err := ReadFile(fs, "/docs/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello\nworld", got)
}

func TestWriteFile_KeepsPermissions(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/script.sh", []byte("old"), 0o755))

	require.NoError(t, WriteFile(fs, "/script.sh", "new"))

	info, err := fs.Stat("/script.sh")
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
}

func TestReadFile_Missing(t *testing.T) {
	fs := afero.NewMemMapFs()

	_, err := ReadFile(fs, "/nope.txt")

	var ioErr *IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "read", ioErr.Op)
	assert.Equal(t, "/nope.txt", ioErr.Path)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestWriteFile_ReadOnlyFs(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())

	err := WriteFile(fs, "/a.txt", "x")

	var ioErr *IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "write", ioErr.Op)
}

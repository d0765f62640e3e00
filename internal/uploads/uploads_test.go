package uploads

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFile(t *testing.T) {
	d, err := New(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)

	fsPath, publicPath := d.NewFile("Holiday.JPG")
	assert.True(t, strings.HasPrefix(publicPath, "/uploads/"))
	assert.True(t, strings.HasSuffix(publicPath, ".jpg"))
	assert.Equal(t, filepath.Join(d.Root(), filepath.Base(fsPath)), fsPath)
	assert.Equal(t, filepath.Base(fsPath), strings.TrimPrefix(publicPath, "/uploads/"))
	assert.Len(t, strings.TrimSuffix(filepath.Base(fsPath), ".jpg"), 32)

	_, other := d.NewFile("Holiday.JPG")
	assert.NotEqual(t, publicPath, other)

	_, noExt := d.NewFile("avatar")
	assert.NotContains(t, strings.TrimPrefix(noExt, "/uploads/"), ".")
}

func TestRemove(t *testing.T) {
	root := t.TempDir()
	d, err := New(filepath.Join(root, "uploads"))
	require.NoError(t, err)

	fsPath, publicPath := d.NewFile("a.png")
	require.NoError(t, os.WriteFile(fsPath, []byte("png"), 0o644))
	d.Remove(&publicPath)
	assert.NoFileExists(t, fsPath)

	// missing files and nil paths are ignored
	d.Remove(&publicPath)
	d.Remove(nil)

	outside := filepath.Join(root, "secret.txt")
	require.NoError(t, os.WriteFile(outside, []byte("keep"), 0o644))
	for _, p := range []string{"/uploads/../secret.txt", "/etc/passwd", "/uploads/", "secret.txt"} {
		d.Remove(&p)
	}
	assert.FileExists(t, outside)
}

func TestRemoveAll(t *testing.T) {
	d, err := New(t.TempDir())
	require.NoError(t, err)

	var public []string
	var files []string
	for _, name := range []string{"a.png", "b.jpg"} {
		fsPath, publicPath := d.NewFile(name)
		require.NoError(t, os.WriteFile(fsPath, []byte(name), 0o644))
		public = append(public, publicPath)
		files = append(files, fsPath)
	}
	d.RemoveAll(public)
	for _, f := range files {
		assert.NoFileExists(t, f)
	}
}

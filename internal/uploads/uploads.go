package uploads

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// URLPrefix is the public path under which uploaded files are served.
const URLPrefix = "/uploads/"

// Dir is the directory that holds uploaded avatars and pet photos.
type Dir struct {
	root string
}

// New returns the upload directory at root and creates it if necessary.
func New(root string) (*Dir, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &Dir{root: root}, nil
}

// Root returns the filesystem path of the directory.
func (d *Dir) Root() string {
	return d.root
}

// NewFile reserves a unique name for an upload. It keeps the lower-cased extension of the
// original file name and returns both the filesystem path to write to and the public path to
// store with the entity.
func (d *Dir) NewFile(originalName string) (fsPath string, publicPath string) {
	name := strings.ReplaceAll(uuid.New().String(), "-", "") + strings.ToLower(filepath.Ext(originalName))
	return filepath.Join(d.root, name), URLPrefix + name
}

// Remove deletes the file behind a public path. Paths outside the upload directory, missing
// files and filesystem errors are ignored.
func (d *Dir) Remove(publicPath *string) {
	if fsPath, ok := d.resolve(publicPath); ok {
		_ = os.Remove(fsPath)
	}
}

// RemoveAll is Remove for several public paths.
func (d *Dir) RemoveAll(publicPaths []string) {
	for i := range publicPaths {
		d.Remove(&publicPaths[i])
	}
}

// resolve maps a public path to a file inside the directory.
func (d *Dir) resolve(publicPath *string) (string, bool) {
	if publicPath == nil || !strings.HasPrefix(*publicPath, URLPrefix) {
		return "", false
	}
	name := strings.TrimPrefix(*publicPath, URLPrefix)
	if name == "" || name != filepath.Base(name) || name == ".." {
		return "", false
	}
	return filepath.Join(d.root, name), true
}

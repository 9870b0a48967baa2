// SPDX-License-Identifier: MIT

package lsysfile

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileProvider reads files by slash-separated identifier. A missing file is
// reported with an error matching fs.ErrNotExist.
type FileProvider interface {
	ReadFile(id string) ([]byte, error)
}

// DirProvider reads identifiers relative to Root on disk.
type DirProvider struct {
	Root string
}

// ReadFile implements FileProvider.
func (d DirProvider) ReadFile(id string) ([]byte, error) {
	return os.ReadFile(d.Path(id))
}

// Path returns the on-disk path of id.
func (d DirProvider) Path(id string) string {
	return filepath.Join(d.Root, filepath.FromSlash(id))
}

// MapProvider serves files from memory, keyed by identifier.
type MapProvider map[string]string

// ReadFile implements FileProvider.
func (m MapProvider) ReadFile(id string) ([]byte, error) {
	text, ok := m[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", fs.ErrNotExist, id)
	}

	return []byte(text), nil
}

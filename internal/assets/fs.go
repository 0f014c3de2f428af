package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FSBackend stores files in a local directory served by the router.
type FSBackend struct {
	baseDir   string
	urlPrefix string
}

// NewFSBackend creates dir if needed. urlPrefix is the public URL the
// directory is served under, e.g. http://localhost:5000/static/uploads.
func NewFSBackend(dir, urlPrefix string) (*FSBackend, error) {
	if dir == "" {
		return nil, errors.New("upload directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &FSBackend{baseDir: dir, urlPrefix: strings.TrimRight(urlPrefix, "/")}, nil
}

// Dir returns the directory files are written to.
func (b *FSBackend) Dir() string { return b.baseDir }

// Put writes body to dir/name, truncating an existing file.
func (b *FSBackend) Put(_ context.Context, name, _ string, body io.Reader, _ int64) error {
	file, err := os.Create(filepath.Join(b.baseDir, name))
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(file, body); err != nil {
		file.Close()
		return fmt.Errorf("write file: %w", err)
	}
	return file.Close()
}

// Delete removes dir/name.
func (b *FSBackend) Delete(_ context.Context, name string) error {
	err := os.Remove(filepath.Join(b.baseDir, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

// URL returns the public URL of name.
func (b *FSBackend) URL(name string) string {
	return b.urlPrefix + "/" + name
}

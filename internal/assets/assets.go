// Package assets stores the thumbnail images attached to content. A
// Manager validates and names uploads; a Backend (local directory or S3
// bucket) holds the bytes and knows the public URL of each file.
package assets

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/url"
	"path"
	"strings"
)

// ImageExtensions are the thumbnail extensions accepted by default.
var ImageExtensions = []string{"png", "jpg", "jpeg", "gif"}

// Backend persists uploaded files under a flat name.
type Backend interface {
	// Put stores body under name, replacing any existing file.
	Put(ctx context.Context, name, contentType string, body io.Reader, size int64) error
	// Delete removes name. A missing file is not an error.
	Delete(ctx context.Context, name string) error
	// URL returns the public URL of name.
	URL(name string) string
}

// Manager accepts uploads into a Backend.
type Manager struct {
	backend Backend
	allowed map[string]bool
}

// NewManager returns a Manager that accepts the given extensions, or
// ImageExtensions when none are passed.
func NewManager(backend Backend, extensions ...string) *Manager {
	if len(extensions) == 0 {
		extensions = ImageExtensions
	}
	allowed := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		allowed[strings.ToLower(ext)] = true
	}
	return &Manager{backend: backend, allowed: allowed}
}

// Allowed reports whether filename carries an accepted extension.
func (m *Manager) Allowed(filename string) bool {
	i := strings.LastIndex(filename, ".")
	if i < 0 {
		return false
	}
	return m.allowed[strings.ToLower(filename[i+1:])]
}

// Accept stores body when filename is acceptable and returns its public
// URL. Unacceptable files (wrong extension, or a name that sanitizes to
// nothing) are ignored: the URL is nil and so is the error.
func (m *Manager) Accept(ctx context.Context, filename string, body io.Reader, size int64) (*string, error) {
	if !m.Allowed(filename) {
		return nil, nil
	}
	name := SecureFilename(filename)
	if name == "" {
		return nil, nil
	}

	contentType := mime.TypeByExtension(path.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if err := m.backend.Put(ctx, name, contentType, body, size); err != nil {
		return nil, fmt.Errorf("store upload %s: %w", name, err)
	}

	u := m.backend.URL(name)
	return &u, nil
}

// AcceptFile is Accept for a multipart upload. A nil header is ignored.
func (m *Manager) AcceptFile(ctx context.Context, fh *multipart.FileHeader) (*string, error) {
	if fh == nil || fh.Filename == "" {
		return nil, nil
	}
	if !m.Allowed(fh.Filename) {
		return nil, nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	return m.Accept(ctx, fh.Filename, f, fh.Size)
}

// Remove deletes the file behind a URL previously returned by Accept.
// URLs that do not name a stored file are ignored.
func (m *Manager) Remove(ctx context.Context, rawURL string) error {
	name := nameFromURL(rawURL)
	if name == "" {
		slog.Debug("thumbnail url not managed, skipping removal", "url", rawURL)
		return nil
	}
	if err := m.backend.Delete(ctx, name); err != nil {
		return fmt.Errorf("remove upload %s: %w", name, err)
	}
	return nil
}

// Reclaim removes rawURL in the background of a finished request: errors
// are logged, never returned. A nil URL is a no-op.
func (m *Manager) Reclaim(ctx context.Context, rawURL *string) {
	if rawURL == nil {
		return
	}
	if err := m.Remove(ctx, *rawURL); err != nil {
		slog.Warn("thumbnail cleanup failed", "url", *rawURL, "error", err)
	}
}

// nameFromURL returns the stored file name a URL points at, or "" when
// the last path segment could not have come from SecureFilename.
func nameFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" || name != SecureFilename(name) {
		return ""
	}
	return name
}

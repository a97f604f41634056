// Package upload describes files offered for upload and the client-side policy they must satisfy.
package upload

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperjump/docassist/internal/models"
	"github.com/hyperjump/docassist/internal/render"
)

// File is a document offered for upload.
type File struct {
	Name string
	Size int64
	open func() (io.ReadCloser, error)
}

// Open returns a reader over the file contents.
func (f File) Open() (io.ReadCloser, error) {
	if f.open == nil {
		return nil, fmt.Errorf("file %q has no content", f.Name)
	}
	return f.open()
}

// FromPath stats path and returns a File that reads it lazily.
func FromPath(path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return File{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return File{}, fmt.Errorf("%s is a directory", path)
	}
	return File{
		Name: filepath.Base(path),
		Size: info.Size(),
		open: func() (io.ReadCloser, error) { return os.Open(path) },
	}, nil
}

// FromBytes returns an in-memory File.
func FromBytes(name string, data []byte) File {
	return File{
		Name: name,
		Size: int64(len(data)),
		open: func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(data)), nil },
	}
}

// Policy is the set of rules a file must satisfy before any request is made.
type Policy struct {
	MaxSizeBytes int64
	Extensions   []string
}

// Allows reports whether name carries an accepted extension (case-insensitive).
func (p Policy) Allows(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return false
	}
	for _, e := range p.Extensions {
		if strings.EqualFold(normalizeExt(e), ext) {
			return true
		}
	}
	return false
}

// Check returns a *models.ValidationError when f has an unsupported extension or exceeds the size limit.
func (p Policy) Check(f File) error {
	if !p.Allows(f.Name) {
		return &models.ValidationError{
			Field:  "extension",
			Reason: fmt.Sprintf("Please upload %s files only.", p.describeExtensions()),
		}
	}
	if p.MaxSizeBytes > 0 && f.Size > p.MaxSizeBytes {
		return &models.ValidationError{
			Field:  "size",
			Reason: fmt.Sprintf("File size must be less than %s.", render.FormatFileSize(p.MaxSizeBytes)),
		}
	}
	return nil
}

// describeExtensions renders the extension set as "PDF, TXT, JPG, or JPEG".
func (p Policy) describeExtensions() string {
	names := make([]string, 0, len(p.Extensions))
	for _, e := range p.Extensions {
		names = append(names, strings.ToUpper(strings.TrimPrefix(normalizeExt(e), ".")))
	}
	switch len(names) {
	case 0:
		return "supported"
	case 1:
		return names[0]
	case 2:
		return names[0] + " or " + names[1]
	}
	return strings.Join(names[:len(names)-1], ", ") + ", or " + names[len(names)-1]
}

func normalizeExt(e string) string {
	e = strings.ToLower(strings.TrimSpace(e))
	if e != "" && !strings.HasPrefix(e, ".") {
		e = "." + e
	}
	return e
}

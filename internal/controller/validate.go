package controller

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
)

// MaxUploadBytes is the largest accepted upload: 10 MiB.
const MaxUploadBytes int64 = 10 * 1024 * 1024

var validate = validator.New()

// File is a document selected for upload.
type File struct {
	Name string
	Size int64
	Open func() (io.ReadCloser, error)
}

// FileFromBytes wraps in-memory content.
func FileFromBytes(name string, data []byte) File {
	return File{
		Name: name,
		Size: int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// FileFromPath describes the file at path without reading it.
func FileFromPath(path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return File{}, fmt.Errorf("controller: stat upload: %w", err)
	}
	if info.IsDir() {
		return File{}, fmt.Errorf("controller: %s is a directory", path)
	}
	return File{
		Name: filepath.Base(path),
		Size: info.Size(),
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	}, nil
}

// ValidateURL checks that raw is a non-empty absolute url and returns it
// trimmed.
func ValidateURL(raw string) (string, error) {
	u := strings.TrimSpace(raw)
	if err := validate.Var(u, "required,url"); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}
	return u, nil
}

// ValidateQuery rejects blank questions.
func ValidateQuery(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyQuery
	}
	return nil
}

// ValidateUpload checks size first, without reading, then sniffs the
// content for a PDF signature.
func ValidateUpload(f File) error {
	if f.Size > MaxUploadBytes {
		return fmt.Errorf("%w: %d bytes", ErrFileTooLarge, f.Size)
	}
	if f.Open == nil {
		return fmt.Errorf("%w: no content", ErrNotPDF)
	}
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("controller: open upload: %w", err)
	}
	defer rc.Close()

	mt, err := mimetype.DetectReader(rc)
	if err != nil {
		return fmt.Errorf("controller: sniff upload: %w", err)
	}
	if !mt.Is("application/pdf") {
		return fmt.Errorf("%w: detected %s", ErrNotPDF, mt.String())
	}
	return nil
}

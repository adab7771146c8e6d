// Package images persists uploaded pictures under generated names.
// Callers hand in raw bytes; the true format is sniffed from the content,
// never trusted from a filename or content-type header.
package images

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	_ "golang.org/x/image/webp"
)

// ErrUnsupportedFormat rejects content that does not decode as one of the
// allowed photo formats. Corrupt files and disallowed formats share this
// error on purpose.
var ErrUnsupportedFormat = errors.New("unsupported image format")

var extByFormat = map[string]string{
	"jpeg": ".jpg",
	"png":  ".png",
	"webp": ".webp",
}

// Intake owns one upload directory.
type Intake struct {
	dir string
}

// NewIntake creates the upload directory if needed.
func NewIntake(dir string) (*Intake, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Intake{dir: dir}, nil
}

// Dir returns the directory files are written to.
func (in *Intake) Dir() string { return in.dir }

// Store validates content and writes it under a fresh unique name scoped
// to the detected format. The returned filename is the only handle to the
// stored bytes. Nothing is written when validation fails.
func (in *Intake) Store(content []byte) (string, error) {
	ext, err := sniffExt(content)
	if err != nil {
		return "", err
	}

	// Collisions are astronomically unlikely but re-check anyway.
	filename := newName(ext)
	for fileExists(filepath.Join(in.dir, filename)) {
		filename = newName(ext)
	}

	if err := os.WriteFile(filepath.Join(in.dir, filename), content, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return filename, nil
}

// Remove deletes a stored file. Cleanup is advisory: an already-absent
// file is not an error, anything else is logged and swallowed.
func (in *Intake) Remove(filename string) {
	if filename == "" {
		return
	}
	err := os.Remove(filepath.Join(in.dir, filename))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Println("image cleanup:", err)
	}
}

func sniffExt(content []byte) (string, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(content))
	if err != nil {
		return "", ErrUnsupportedFormat
	}
	ext, ok := extByFormat[format]
	if !ok {
		return "", ErrUnsupportedFormat
	}
	return ext, nil
}

func newName(ext string) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "") + ext
}

func fileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

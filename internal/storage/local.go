package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalImageStore writes uploads into a directory that is served statically
// under URLPrefix.
type LocalImageStore struct {
	Dir       string
	URLPrefix string
}

// NewLocalImageStore creates dir if needed.
func NewLocalImageStore(dir, urlPrefix string) (*LocalImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload folder: %w", err)
	}
	return &LocalImageStore{Dir: dir, URLPrefix: strings.TrimRight(urlPrefix, "/")}, nil
}

// Save copies the upload under a generated name and returns its public URL.
func (s *LocalImageStore) Save(file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	name := uuid.New().String() + strings.ToLower(filepath.Ext(file.Filename))
	dst, err := os.Create(filepath.Join(s.Dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create image file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("failed to write image file: %w", err)
	}
	return s.URLPrefix + "/" + name, nil
}

// Remove deletes the file behind url. URLs outside URLPrefix are ignored and
// a file that is already gone is not an error.
func (s *LocalImageStore) Remove(url string) error {
	if !strings.HasPrefix(url, s.URLPrefix+"/") {
		return nil
	}
	name := filepath.Base(strings.TrimPrefix(url, s.URLPrefix+"/"))
	if err := os.Remove(filepath.Join(s.Dir, name)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

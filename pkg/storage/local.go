package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LocalStorage files on the server's filesystem
type LocalStorage struct {
	basePath string
	logger   *zap.Logger
}

// NewLocalStorage ensures basePath exists
func NewLocalStorage(basePath string, logger *zap.Logger) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory %s: %w", basePath, err)
	}
	logger.Info("local storage ready", zap.String("path", basePath))
	return &LocalStorage{basePath: basePath, logger: logger}, nil
}

// Save writes r to basePath/dir/<uuid><ext>
func (s *LocalStorage) Save(_ context.Context, dir, filename string, r io.Reader, _ int64, _ string) (string, error) {
	ref := objectName(dir, filename)
	dst, err := s.resolve(ref)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create directory: %w", err)
	}

	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		_ = os.Remove(dst)
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(dst)
		return "", fmt.Errorf("close file: %w", err)
	}

	s.logger.Debug("file stored", zap.String("ref", ref), zap.String("filename", filename))
	return ref, nil
}

// Open opens a stored file
func (s *LocalStorage) Open(_ context.Context, ref string) (io.ReadCloser, error) {
	p, err := s.resolve(ref)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return f, err
}

// Delete removes a stored file
func (s *LocalStorage) Delete(_ context.Context, ref string) error {
	if ref == "" {
		return nil
	}
	p, err := s.resolve(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

// resolve maps a reference to a path, rejecting anything that escapes basePath
func (s *LocalStorage) resolve(ref string) (string, error) {
	clean := path.Clean("/" + ref)
	if clean == "/" || strings.Contains(ref, "..") {
		return "", fmt.Errorf("invalid storage reference %q", ref)
	}
	return filepath.Join(s.basePath, filepath.FromSlash(clean)), nil
}

// objectName builds "<dir>/<uuid><ext>" with the lower-cased original extension
func objectName(dir, filename string) string {
	name := uuid.New().String() + strings.ToLower(filepath.Ext(filename))
	if dir == "" {
		return name
	}
	return strings.Trim(dir, "/") + "/" + name
}

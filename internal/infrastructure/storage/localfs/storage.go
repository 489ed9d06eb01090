package localfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kirillkom/resume-classifier/internal/core/domain"
)

const DefaultMaxBytes int64 = 16 << 20

// Storage keeps accepted uploads in a single flat directory. Concurrent saves
// of the same name race and the last rename wins; each file stays whole.
type Storage struct {
	basePath string
	maxBytes int64
}

func New(basePath string, maxBytes int64) (*Storage, error) {
	if basePath == "" {
		basePath = "./uploads"
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("resolve storage dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Storage{basePath: abs, maxBytes: maxBytes}, nil
}

func (s *Storage) MaxBytes() int64 {
	return s.maxBytes
}

func (s *Storage) Save(ctx context.Context, name string, data io.Reader) (*domain.StoredDocument, error) {
	path, err := s.resolve(name)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, domain.WrapError(domain.ErrStorage, "save", err)
	}
	if err := os.MkdirAll(s.basePath, 0o755); err != nil {
		return nil, domain.WrapError(domain.ErrStorage, "create storage dir", err)
	}

	tmp, err := os.CreateTemp(s.basePath, ".upload-*")
	if err != nil {
		return nil, domain.WrapError(domain.ErrStorage, "create file", err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	written, err := io.Copy(tmp, io.LimitReader(data, s.maxBytes+1))
	if err != nil {
		cleanup()
		return nil, domain.WrapError(domain.ErrStorage, "write file", err)
	}
	if written > s.maxBytes {
		cleanup()
		return nil, domain.WrapError(domain.ErrPayloadTooLarge, "write file", fmt.Errorf("upload exceeds %d bytes", s.maxBytes))
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return nil, domain.WrapError(domain.ErrStorage, "close file", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return nil, domain.WrapError(domain.ErrStorage, "rename file", err)
	}

	return &domain.StoredDocument{
		Name:   name,
		Path:   path,
		Format: domain.ParseFormat(filepath.Ext(name)),
		Size:   written,
	}, nil
}

func (s *Storage) Open(_ context.Context, name string) (io.ReadCloser, error) {
	path, err := s.resolve(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, domain.WrapError(domain.ErrStorage, "open file", err)
	}
	return f, nil
}

func (s *Storage) Remove(_ context.Context, name string) error {
	path, err := s.resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return domain.WrapError(domain.ErrStorage, "remove file", err)
	}
	return nil
}

// resolve refuses names that would leave the storage directory even though
// callers are expected to pass sanitized names only.
func (s *Storage) resolve(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", domain.WrapError(domain.ErrStorage, "resolve path", fmt.Errorf("unsafe name %q", name))
	}
	return filepath.Join(s.basePath, name), nil
}

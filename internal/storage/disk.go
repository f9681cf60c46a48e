package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"driveshare/internal/domain"
)

// DiskStore implements Store on the local filesystem under a fixed root.
// This is the default backend; the on-disk layout mirrors the logical keys
// exactly.
type DiskStore struct {
	root string
}

// NewDiskStore creates a disk store rooted at the given directory, creating
// it if absent.
func NewDiskStore(root string) (*DiskStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &DiskStore{root: abs}, nil
}

// resolve maps a logical key to an absolute path and rejects keys that would
// escape the root.
func (s *DiskStore) resolve(key string) (string, error) {
	full := filepath.Join(s.root, filepath.FromSlash(key))
	if full != s.root && !strings.HasPrefix(full, s.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("path %q escapes storage root: %w", key, domain.ErrValidation)
	}
	return full, nil
}

func (s *DiskStore) Exists(ctx context.Context, path string) (bool, error) {
	full, err := s.resolve(path)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(full); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat %s: %w", path, domain.ErrStorage)
	}
	return true, nil
}

func (s *DiskStore) MkdirAll(ctx context.Context, path string) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(full, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", path, domain.ErrStorage)
	}
	return nil
}

func (s *DiskStore) Save(ctx context.Context, path string, r io.Reader) (int64, error) {
	full, err := s.resolve(path)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return 0, fmt.Errorf("mkdir for %s: %w", path, domain.ErrStorage)
	}
	f, err := os.Create(full)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", path, domain.ErrStorage)
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		// Leave no half-written file behind.
		os.Remove(full)
		return 0, fmt.Errorf("write %s: %w", path, domain.ErrStorage)
	}
	return n, nil
}

func (s *DiskStore) Move(ctx context.Context, oldPath, newPath string) error {
	oldFull, err := s.resolve(oldPath)
	if err != nil {
		return err
	}
	newFull, err := s.resolve(newPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(newFull), 0o755); err != nil {
		return fmt.Errorf("mkdir for %s: %w", newPath, domain.ErrStorage)
	}
	if err := os.Rename(oldFull, newFull); err != nil {
		return fmt.Errorf("rename %s to %s: %w", oldPath, newPath, domain.ErrStorage)
	}
	return nil
}

func (s *DiskStore) Remove(ctx context.Context, path string) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", path, domain.ErrStorage)
	}
	return nil
}

func (s *DiskStore) RemoveAll(ctx context.Context, path string) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(full); err != nil {
		return fmt.Errorf("remove tree %s: %w", path, domain.ErrStorage)
	}
	return nil
}

func (s *DiskStore) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	full, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file %s: %w", path, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("open %s: %w", path, domain.ErrStorage)
	}
	return f, nil
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/semmidev/siteshot-storage/internal/domain"
)

// LocalStorage keeps objects under basePath/container/key on the local
// filesystem. It stands in for the blob store in development and tests.
type LocalStorage struct {
	basePath  string
	container string
}

func NewLocal(basePath, container string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStorage{basePath: basePath, container: container}, nil
}

func (l *LocalStorage) EnsureContainer(ctx context.Context, policy domain.AccessPolicy) (bool, error) {
	dir := filepath.Join(l.basePath, l.container)
	if info, err := os.Stat(dir); err == nil {
		if !info.IsDir() {
			return false, fmt.Errorf("container path is not a directory: %s", dir)
		}
		return false, nil
	}

	perm := os.FileMode(0700)
	if policy == domain.AccessPublicRead {
		perm = 0755
	}
	if err := os.MkdirAll(dir, perm); err != nil {
		return false, fmt.Errorf("failed to create container: %w", err)
	}
	return true, nil
}

func (l *LocalStorage) PutFile(ctx context.Context, key string, localPath string) error {
	destPath, err := l.GetPath(key)
	if err != nil {
		return err
	}

	source, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer source.Close()

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("failed to create dest directory: %w", err)
	}

	dest, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create dest: %w", err)
	}
	defer dest.Close()

	if _, err := dest.ReadFrom(source); err != nil {
		return fmt.Errorf("failed to copy: %w", err)
	}

	return nil
}

func (l *LocalStorage) GetFile(ctx context.Context, key string, localPath string) error {
	source, err := l.open(key)
	if err != nil {
		return err
	}
	defer source.Close()

	dest, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("failed to create dest: %w", err)
	}
	defer dest.Close()

	if _, err := dest.ReadFrom(source); err != nil {
		return fmt.Errorf("failed to copy: %w", err)
	}

	return nil
}

func (l *LocalStorage) GetStream(ctx context.Context, key string, w io.Writer) error {
	source, err := l.open(key)
	if err != nil {
		return err
	}
	defer source.Close()

	if _, err := io.Copy(w, source); err != nil {
		return fmt.Errorf("failed to stream: %w", err)
	}

	return nil
}

// GetPath maps a slash separated key onto the container directory. Keys
// that would escape the container are rejected.
func (l *LocalStorage) GetPath(key string) (string, error) {
	root := filepath.Join(l.basePath, l.container)
	full := filepath.Join(root, filepath.FromSlash(key))
	if full == root || !strings.HasPrefix(full, root+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid object key: %q", key)
	}
	return full, nil
}

func (l *LocalStorage) open(key string) (*os.File, error) {
	srcPath, err := l.GetPath(key)
	if err != nil {
		return nil, err
	}

	source, err := os.Open(srcPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", key, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to open source: %w", err)
	}
	return source, nil
}

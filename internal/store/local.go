package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Allenwdk/OxygenBlog/internal/logging"
	"github.com/Allenwdk/OxygenBlog/pkg/interfaces"
)

// Local is a content store backed by a directory tree, used in development
// so publishing never leaves the machine. Create and Update both map to a
// plain file write; parent directories are created as needed.
type Local struct {
	root   string
	logger interfaces.Logger
}

var _ interfaces.ContentStore = (*Local)(nil)

// NewLocal builds a Local store rooted at dir.
func NewLocal(dir string, logger interfaces.Logger) (*Local, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("store: local root directory is required")
	}
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Local{
		root:   filepath.Clean(dir),
		logger: logging.WithStoreContext(logger, "local"),
	}, nil
}

func (s *Local) Create(ctx context.Context, path string, content []byte, message string) error {
	return s.write(ctx, path, content)
}

func (s *Local) Read(ctx context.Context, path string) (*interfaces.StoredFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{Path: path}
		}
		return nil, fmt.Errorf("store: read %s: %w", path, err)
	}
	return &interfaces.StoredFile{
		Path:    path,
		Content: data,
		Size:    int64(len(data)),
	}, nil
}

func (s *Local) Update(ctx context.Context, path string, content []byte, message, revision string) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(full); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &NotFoundError{Path: path}
		}
		return fmt.Errorf("store: stat %s: %w", path, err)
	}
	return s.write(ctx, path, content)
}

func (s *Local) Delete(ctx context.Context, path string, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(full); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &NotFoundError{Path: path}
		}
		return fmt.Errorf("store: stat %s: %w", path, err)
	}
	if err := os.Remove(full); err != nil {
		return fmt.Errorf("store: delete %s: %w", path, err)
	}
	s.logger.Debug("store.local.deleted", "path", path)
	return nil
}

// List enumerates markdown files directly under dir. A missing directory is
// an empty listing, not an error, so callers can scan a store that has never
// been written to.
func (s *Local) List(ctx context.Context, dir string) ([]interfaces.StoreEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full, err := s.resolve(dir)
	if err != nil {
		return nil, err
	}
	items, err := os.ReadDir(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []interfaces.StoreEntry{}, nil
		}
		return nil, fmt.Errorf("store: list %s: %w", dir, err)
	}

	entries := make([]interfaces.StoreEntry, 0, len(items))
	for _, item := range items {
		if item.IsDir() || !strings.HasSuffix(item.Name(), ".md") {
			continue
		}
		entry := interfaces.StoreEntry{
			Path: joinStorePath(dir, item.Name()),
			Name: item.Name(),
		}
		if info, err := item.Info(); err == nil {
			entry.Size = info.Size()
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *Local) Exists(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	full, err := s.resolve(path)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(full); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("store: stat %s: %w", path, err)
	}
	return true, nil
}

func (s *Local) write(ctx context.Context, path string, content []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("store: create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(full, content, 0o644); err != nil {
		return fmt.Errorf("store: write %s: %w", path, err)
	}
	s.logger.Debug("store.local.written", "path", path, "bytes", len(content))
	return nil
}

// resolve maps a store path onto the root directory, rejecting traversal
// outside of it.
func (s *Local) resolve(path string) (string, error) {
	full := filepath.Clean(filepath.Join(s.root, filepath.FromSlash(path)))
	if full != s.root && !strings.HasPrefix(full, s.root+string(filepath.Separator)) {
		return "", fmt.Errorf("store: path %s escapes the content root", path)
	}
	return full, nil
}

func joinStorePath(dir, name string) string {
	dir = strings.Trim(dir, "/")
	if dir == "" || dir == "." {
		return name
	}
	return dir + "/" + name
}

package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ChoisMath/edutech/pkg/ports"
)

// LocalStore writes thumbnails to a directory served by the app under URLPrefix.
// Used when no Supabase project is configured.
type LocalStore struct {
	Dir       string
	URLPrefix string
}

func NewLocalStore(dir, urlPrefix string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create thumbnail dir: %w", err)
	}
	return &LocalStore{Dir: dir, URLPrefix: strings.TrimRight(urlPrefix, "/")}, nil
}

func (s *LocalStore) Put(ctx context.Context, name, contentType string, data []byte) (string, error) {
	// Names come from the thumbnail service, but never let one escape the directory.
	if name != filepath.Base(name) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid thumbnail name %q", name)
	}

	path := filepath.Join(s.Dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return s.URLPrefix + "/" + name, nil
}

func (s *LocalStore) String() string {
	return "local:" + s.Dir
}

// Ensure interface compliance
var _ ports.ThumbnailStore = (*LocalStore)(nil)

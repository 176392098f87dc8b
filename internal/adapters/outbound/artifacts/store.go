package artifacts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DirStore implements domain.ArtifactStore by writing files into one directory.
type DirStore struct {
	dir string
}

// New creates a DirStore rooted at dir. The directory is created on first use.
func New(dir string) *DirStore {
	return &DirStore{dir: dir}
}

// Put writes data under name and returns the stored path. Names must be
// plain file names; a service name never selects a different directory.
func (s *DirStore) Put(name string, data []byte) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid artifact name %q", name)
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("creating artifact dir: %w", err)
	}
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing artifact: %w", err)
	}
	return path, nil
}

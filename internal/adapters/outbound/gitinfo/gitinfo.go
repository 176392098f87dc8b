// Package gitinfo stamps run reports with the commit the registry came from.
package gitinfo

import (
	"fmt"

	"github.com/go-git/go-git/v5"
)

// HeadReader implements domain.GitInfo using go-git.
type HeadReader struct{}

func New() *HeadReader {
	return &HeadReader{}
}

// CommitHash returns the HEAD commit of the working tree containing path.
// Parent directories are searched, so the registry may live anywhere below
// the repository root.
func (HeadReader) CommitHash(path string) (string, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", fmt.Errorf("opening repository at %s: %w", path, err)
	}

	ref, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolving HEAD: %w", err)
	}

	return ref.Hash().String(), nil
}

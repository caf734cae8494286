// Package gitinfo reads repository metadata for the git tools.
package gitinfo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5"
)

// ErrNotGitRepo indicates the directory is not a Git repository.
var ErrNotGitRepo = errors.New("not a git repository")

// Service reads metadata from one repository.
type Service struct {
	path string
}

// NewService creates a git metadata service for the repository at path.
func NewService(path string) *Service {
	if path == "" {
		path = "."
	}
	return &Service{path: path}
}

// open opens the repository, searching parent directories for .git.
func (s *Service) open() (*git.Repository, error) {
	repo, err := git.PlainOpenWithOptions(s.path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%w: %s", ErrNotGitRepo, s.path)
		}
		return nil, fmt.Errorf("opening repository: %w", err)
	}
	return repo, nil
}

// Branch returns the current branch name, or "detached" when HEAD does not
// point at a branch.
func (s *Service) Branch() (string, error) {
	repo, err := s.open()
	if err != nil {
		return "", err
	}

	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("reading HEAD: %w", err)
	}
	if !head.Name().IsBranch() {
		return "detached", nil
	}
	return head.Name().Short(), nil
}

// Status returns a porcelain-style worktree status, or a clean message when
// nothing changed.
func (s *Service) Status() (string, error) {
	repo, err := s.open()
	if err != nil {
		return "", err
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("opening worktree: %w", err)
	}

	status, err := worktree.Status()
	if err != nil {
		return "", fmt.Errorf("reading status: %w", err)
	}
	if status.IsClean() {
		return "working tree clean", nil
	}
	return strings.TrimSpace(status.String()), nil
}

// Package git fetches remote marketplace sources.
package git

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
)

// ErrNotGitRepo is returned for paths that are not git working trees
var ErrNotGitRepo = errors.New("path is not a git repository")

// Client is the interface for git operations
type Client interface {
	Clone(ctx context.Context, url, destPath string) error
	GetCurrentCommit(repoPath string) (string, error)
	IsGitRepository(path string) bool
}

// DefaultClient is the go-git backed client
type DefaultClient struct {
	Timeout time.Duration
	// Depth limits clone history; zero clones everything
	Depth int
}

// NewClient creates a new git client
func NewClient() *DefaultClient {
	return &DefaultClient{
		Timeout: 5 * time.Minute,
		Depth:   1,
	}
}

// Clone clones a git repository to the specified path
func (c *DefaultClient) Clone(ctx context.Context, url, destPath string) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	_, err := gogit.PlainCloneContext(ctx, destPath, false, &gogit.CloneOptions{
		URL:   url,
		Depth: c.Depth,
	})
	if err != nil {
		if isAuthError(err) {
			return &AuthError{URL: url, Message: err.Error()}
		}
		return fmt.Errorf("git clone failed: %w", err)
	}
	return nil
}

// GetCurrentCommit returns the current commit SHA
func (c *DefaultClient) GetCurrentCommit(repoPath string) (string, error) {
	repo, err := gogit.PlainOpen(repoPath)
	if err != nil {
		return "", ErrNotGitRepo
	}
	ref, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return "", fmt.Errorf("repository has no commits: %w", err)
		}
		return "", fmt.Errorf("failed to get current commit: %w", err)
	}
	return ref.Hash().String(), nil
}

// IsGitRepository checks if the given path is a git repository
func (c *DefaultClient) IsGitRepository(path string) bool {
	_, err := gogit.PlainOpen(path)
	return err == nil
}

func (c *DefaultClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.Timeout)
}

// AuthError represents a git authentication error
type AuthError struct {
	URL     string
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed for '%s': %s", e.URL, e.Message)
}

// isAuthError checks if the error indicates an authentication failure
func isAuthError(err error) bool {
	if errors.Is(err, transport.ErrAuthenticationRequired) ||
		errors.Is(err, transport.ErrAuthorizationFailed) ||
		errors.Is(err, transport.ErrRepositoryNotFound) {
		return true
	}
	msg := err.Error()
	for _, pattern := range []string{"Permission denied", "403", "401"} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

// IsRemote reports whether a marketplace source should be cloned rather than read from disk
func IsRemote(source string) bool {
	for _, prefix := range []string{"https://", "http://", "ssh://", "git://", "git@", "file://"} {
		if strings.HasPrefix(source, prefix) {
			return true
		}
	}
	return strings.HasSuffix(source, ".git")
}

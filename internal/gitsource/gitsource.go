// Package gitsource provides an optional remote input mode: a git
// repository is cloned into an ephemeral workspace and used as the input
// root for one or more builds.
package gitsource

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"git.home.luguber.info/inful/mdsite/internal/logfields"
)

// Workspace manages the ephemeral directory a remote input is cloned into.
type Workspace struct {
	baseDir string
	dir     string
}

// NewWorkspace creates a workspace manager rooted at baseDir (the system
// temp directory when empty).
func NewWorkspace(baseDir string) *Workspace {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	return &Workspace{baseDir: baseDir}
}

// Create makes a timestamped workspace directory.
func (w *Workspace) Create() error {
	timestamp := time.Now().Format("20060102-150405")
	dir := filepath.Join(w.baseDir, fmt.Sprintf("mdsite-%s", timestamp))

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create workspace directory: %w", err)
	}

	w.dir = dir
	slog.Info("Created workspace", logfields.Path(dir))
	return nil
}

// Path returns the workspace directory.
func (w *Workspace) Path() string { return w.dir }

// Cleanup removes the workspace directory.
func (w *Workspace) Cleanup() error {
	if w.dir == "" {
		return nil
	}
	if err := os.RemoveAll(w.dir); err != nil {
		return fmt.Errorf("remove workspace directory: %w", err)
	}
	slog.Debug("Workspace removed", logfields.Path(w.dir))
	w.dir = ""
	return nil
}

// Clone clones url into the workspace and returns the checkout path. A
// non-empty branch selects a single branch.
func (w *Workspace) Clone(url, branch string) (string, error) {
	repoPath := filepath.Join(w.dir, "input")
	slog.Info("Cloning input repository", logfields.URL(url), logfields.Path(repoPath))

	opts := &git.CloneOptions{URL: url}
	if branch != "" {
		opts.ReferenceName = plumbing.ReferenceName("refs/heads/" + branch)
		opts.SingleBranch = true
	}

	repo, err := git.PlainClone(repoPath, false, opts)
	if err != nil {
		return "", fmt.Errorf("clone %s: %w", url, err)
	}

	if ref, herr := repo.Head(); herr == nil {
		slog.Info("Repository cloned", logfields.URL(url), slog.String("commit", ref.Hash().String()[:8]))
	}
	return repoPath, nil
}

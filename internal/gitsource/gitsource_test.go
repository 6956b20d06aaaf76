package gitsource

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

func TestWorkspace_CreateAndCleanup(t *testing.T) {
	ws := NewWorkspace(t.TempDir())

	require.NoError(t, ws.Create())
	require.DirExists(t, ws.Path())
	require.True(t, strings.HasPrefix(filepath.Base(ws.Path()), "mdsite-"))

	dir := ws.Path()
	require.NoError(t, ws.Cleanup())
	require.NoDirExists(t, dir)
	require.Empty(t, ws.Path())
}

func TestWorkspace_CleanupWithoutCreate_NoOp(t *testing.T) {
	ws := NewWorkspace(t.TempDir())
	require.NoError(t, ws.Cleanup())
}

// newFixtureRepo initializes a local repository with one committed file, so
// cloning stays offline.
func newFixtureRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.md"), []byte("# Home\n"), 0o600))

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("index.md")
	require.NoError(t, err)
	_, err = wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "fixture", Email: "fixture@example.org", When: time.Now()},
	})
	require.NoError(t, err)

	return dir
}

func TestWorkspace_Clone_LocalRepo(t *testing.T) {
	src := newFixtureRepo(t)

	ws := NewWorkspace(t.TempDir())
	require.NoError(t, ws.Create())
	defer func() { _ = ws.Cleanup() }()

	path, err := ws.Clone(src, "")
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(path, "index.md"))
}

func TestWorkspace_Clone_BadURL_ReturnsError(t *testing.T) {
	ws := NewWorkspace(t.TempDir())
	require.NoError(t, ws.Create())
	defer func() { _ = ws.Cleanup() }()

	_, err := ws.Clone(filepath.Join(t.TempDir(), "does-not-exist"), "")
	require.Error(t, err)
}

package git

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initRepo(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "opencode.json"), []byte(`{"name":"remote"}`), 0644))
	w, err := repo.Worktree()
	require.NoError(t, err)
	_, err = w.Add("opencode.json")
	require.NoError(t, err)
	hash, err := w.Commit("initial", &gogit.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)
	return dir, hash.String()
}

func TestClone_LocalRepository(t *testing.T) {
	src, head := initRepo(t)
	dest := filepath.Join(t.TempDir(), "clone")

	c := NewClient()
	c.Depth = 0
	require.NoError(t, c.Clone(context.Background(), src, dest))

	assert.True(t, c.IsGitRepository(dest))
	assert.FileExists(t, filepath.Join(dest, "opencode.json"))

	commit, err := c.GetCurrentCommit(dest)
	require.NoError(t, err)
	assert.Equal(t, head, commit)

}

func TestClient_NotARepository(t *testing.T) {
	c := NewClient()
	dir := t.TempDir()
	assert.False(t, c.IsGitRepository(dir))
	_, err := c.GetCurrentCommit(dir)
	assert.ErrorIs(t, err, ErrNotGitRepo)
}

func TestIsRemote(t *testing.T) {
	assert.True(t, IsRemote("https://github.com/acme/plugins"))
	assert.True(t, IsRemote("git@github.com:acme/plugins.git"))
	assert.False(t, IsRemote("./plugins"))
	assert.False(t, IsRemote("/abs/plugins"))
}

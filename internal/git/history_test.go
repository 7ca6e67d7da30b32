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

func sig() *object.Signature {
	return &object.Signature{Name: "tester", Email: "test@example.com", When: time.Now()}
}

func commitFile(t *testing.T, dir string, repo *gogit.Repository, name, content, msg string) string {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	w, err := repo.Worktree()
	require.NoError(t, err)
	_, err = w.Add(name)
	require.NoError(t, err)
	h, err := w.Commit(msg, &gogit.CommitOptions{Author: sig()})
	require.NoError(t, err)
	return h.String()
}

func removeFile(t *testing.T, dir string, repo *gogit.Repository, name, msg string) {
	t.Helper()
	w, err := repo.Worktree()
	require.NoError(t, err)
	_, err = w.Remove(name)
	require.NoError(t, err)
	_, err = w.Commit(msg, &gogit.CommitOptions{Author: sig()})
	require.NoError(t, err)
}

func TestOpenNonRepository(t *testing.T) {
	_, err := Open(t.TempDir())
	assert.ErrorIs(t, err, ErrNotRepository)
}

func TestOpenMissingRoot(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotRepository)
}

func TestForEachHistoryBlobSeesRemovedFile(t *testing.T) {
	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)

	commitFile(t, dir, repo, "config.env", "TOKEN=supersecretvalue\n", "add config")
	removeFile(t, dir, repo, "config.env", "remove config")
	commitFile(t, dir, repo, "readme.md", "hello\n", "docs")

	seen := map[string]string{}
	err = ForEachHistoryBlob(context.Background(), repo, 1<<20, func(commit, path string, data []byte) bool {
		seen[path] = string(data)
		return true
	})
	require.NoError(t, err)

	// The removed file still surfaces from the commit that introduced it.
	assert.Equal(t, "TOKEN=supersecretvalue\n", seen["config.env"])
	assert.Equal(t, "hello\n", seen["readme.md"])
}

func TestForEachHistoryBlobVisitsChangedContentPerCommit(t *testing.T) {
	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)

	commitFile(t, dir, repo, "a.txt", "v1\n", "one")
	commitFile(t, dir, repo, "a.txt", "v2\n", "two")

	var versions []string
	err = ForEachHistoryBlob(context.Background(), repo, 1<<20, func(commit, path string, data []byte) bool {
		if path == "a.txt" {
			versions = append(versions, string(data))
		}
		return true
	})
	require.NoError(t, err)
	// Log walks newest-first: the modified content, then the original.
	assert.Equal(t, []string{"v2\n", "v1\n"}, versions)
}

func TestForEachHistoryBlobEarlyStop(t *testing.T) {
	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)

	commitFile(t, dir, repo, "a.txt", "one\n", "one")
	commitFile(t, dir, repo, "b.txt", "two\n", "two")

	calls := 0
	err = ForEachHistoryBlob(context.Background(), repo, 1<<20, func(commit, path string, data []byte) bool {
		calls++
		return false
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestForEachHistoryBlobCancelledContext(t *testing.T) {
	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)
	commitFile(t, dir, repo, "a.txt", "one\n", "one")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = ForEachHistoryBlob(ctx, repo, 1<<20, func(commit, path string, data []byte) bool { return true })
	assert.Error(t, err)
}

func TestForEachHistoryBlobSkipsOversizedBlobs(t *testing.T) {
	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)
	commitFile(t, dir, repo, "big.txt", "0123456789abcdef\n", "big")

	var paths []string
	err = ForEachHistoryBlob(context.Background(), repo, 4, func(commit, path string, data []byte) bool {
		paths = append(paths, path)
		return true
	})
	require.NoError(t, err)
	assert.Empty(t, paths)
}

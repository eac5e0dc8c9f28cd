package enum

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/praetorian-inc/checkparens/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// commitFiles writes files into dir and commits them, returning the commit hash.
func commitFiles(t *testing.T, repo *git.Repository, dir string, files map[string]string, msg string) string {
	t.Helper()

	wt, err := repo.Worktree()
	require.NoError(t, err)

	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		_, err := wt.Add(name)
		require.NoError(t, err)
	}

	hash, err := wt.Commit(msg, &git.CommitOptions{
		Author: &object.Signature{Name: "Test User", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)
	return hash.String()
}

func setupTestGitRepo(t *testing.T) (string, *git.Repository) {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	return dir, repo
}

func enumerateGit(t *testing.T, e *GitEnumerator) map[string]string {
	t.Helper()
	got := map[string]string{}
	err := e.Enumerate(context.Background(), func(content []byte, blobID types.BlobID, prov types.Provenance) error {
		assert.Equal(t, types.KindGit, prov.Kind())
		assert.Equal(t, types.ComputeBlobID(content), blobID)
		gp := prov.(types.GitProvenance)
		assert.Equal(t, filepath.Join(gp.RepoPath, filepath.FromSlash(gp.BlobPath)), prov.Path())
		got[gp.BlobPath] = string(content)
		return nil
	})
	require.NoError(t, err)
	return got
}

func TestGitEnumerator(t *testing.T) {
	dir, repo := setupTestGitRepo(t)
	commitID := commitFiles(t, repo, dir, map[string]string{
		"main.c":           "int main() { return 0; }",
		"lib/parse.c":      "if (x { }",
		"lib/copy.c":       "int main() { return 0; }",
		".github/ci.yml":   "on: [push]",
		"assets/logo.bin":  "\x00\x01",
		"vendor/dep/dep.c": "{{",
	}, "initial")

	e := NewGitEnumerator(Config{Root: dir, Exclude: []string{"vendor/"}})

	var commits []string
	err := e.Enumerate(context.Background(), func(_ []byte, _ types.BlobID, prov types.Provenance) error {
		commits = append(commits, prov.(types.GitProvenance).CommitID)
		return nil
	})
	require.NoError(t, err)
	for _, c := range commits {
		assert.Equal(t, commitID, c)
	}

	got := enumerateGit(t, e)
	paths := make([]string, 0, len(got))
	for p := range got {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	assert.Equal(t, []string{"lib/copy.c", "lib/parse.c", "main.c"}, paths)
}

func TestGitEnumerator_IncludeHidden(t *testing.T) {
	dir, repo := setupTestGitRepo(t)
	commitFiles(t, repo, dir, map[string]string{
		".github/ci.yml": "on: [push]",
		"main.c":         "{}",
	}, "initial")

	got := enumerateGit(t, NewGitEnumerator(Config{Root: dir, IncludeHidden: true}))
	assert.Contains(t, got, ".github/ci.yml")
	assert.Contains(t, got, "main.c")
}

func TestGitEnumerator_Revision(t *testing.T) {
	dir, repo := setupTestGitRepo(t)
	first := commitFiles(t, repo, dir, map[string]string{"a.c": "(("}, "first")
	commitFiles(t, repo, dir, map[string]string{"a.c": "()"}, "second")

	head := enumerateGit(t, NewGitEnumerator(Config{Root: dir}))
	assert.Equal(t, "()", head["a.c"])

	e := NewGitEnumerator(Config{Root: dir})
	e.Revision = first
	old := enumerateGit(t, e)
	assert.Equal(t, "((", old["a.c"])
}

func TestGitEnumerator_MaxFileSize(t *testing.T) {
	dir, repo := setupTestGitRepo(t)
	commitFiles(t, repo, dir, map[string]string{
		"small.c": "{}",
		"large.c": "{{{{{{{{{{{{{{{{{{{{}}}}}}}}}}}}}}}}}}}}",
	}, "initial")

	got := enumerateGit(t, NewGitEnumerator(Config{Root: dir, MaxFileSize: 10}))
	assert.Equal(t, map[string]string{"small.c": "{}"}, got)
}

func TestGitEnumerator_NotARepository(t *testing.T) {
	err := NewGitEnumerator(Config{Root: t.TempDir()}).
		Enumerate(context.Background(), func([]byte, types.BlobID, types.Provenance) error { return nil })
	assert.Error(t, err)
}

func TestHasHiddenElement(t *testing.T) {
	assert.True(t, hasHiddenElement(".github/ci.yml"))
	assert.True(t, hasHiddenElement("a/.cache/b"))
	assert.True(t, hasHiddenElement(".env"))
	assert.False(t, hasHiddenElement("src/main.c"))
	assert.False(t, hasHiddenElement("a.b/c"))
}

package enum

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	gitignore "github.com/sabhiram/go-gitignore"

	"github.com/praetorian-inc/checkparens/pkg/types"
)

// GitEnumerator enumerates the files of a git tree at one revision.
type GitEnumerator struct {
	config Config
	// Revision to enumerate (defaults to HEAD).
	Revision string
}

// NewGitEnumerator creates a new git enumerator.
func NewGitEnumerator(config Config) *GitEnumerator {
	config.Root = filepath.Clean(config.Root)
	return &GitEnumerator{
		config:   config,
		Revision: "HEAD",
	}
}

// Enumerate walks the tree of the revision. Every path is yielded, so the
// same blob committed at two paths is reported at both.
func (e *GitEnumerator) Enumerate(ctx context.Context, callback Callback) error {
	repo, err := git.PlainOpen(e.config.Root)
	if err != nil {
		return fmt.Errorf("failed to open git repository: %w", err)
	}

	rev := e.Revision
	if rev == "" {
		rev = "HEAD"
	}
	hash, err := repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return fmt.Errorf("failed to resolve revision %s: %w", rev, err)
	}

	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return fmt.Errorf("failed to get commit: %w", err)
	}

	tree, err := commit.Tree()
	if err != nil {
		return fmt.Errorf("failed to get tree: %w", err)
	}

	var exclude *gitignore.GitIgnore
	if len(e.config.Exclude) > 0 {
		exclude = gitignore.CompileIgnoreLines(e.config.Exclude...)
	}

	err = tree.Files().ForEach(func(f *object.File) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if !e.config.IncludeHidden && hasHiddenElement(f.Name) {
			return nil
		}
		if exclude != nil && exclude.MatchesPath(f.Name) {
			return nil
		}
		if e.config.tooLarge(f.Size) {
			return nil
		}

		content, err := f.Contents()
		if err != nil {
			return fmt.Errorf("failed to get contents of %s: %w", f.Name, err)
		}
		data := []byte(content)
		if isBinary(data) {
			return nil
		}

		prov := types.GitProvenance{
			RepoPath: e.config.Root,
			CommitID: commit.Hash.String(),
			BlobPath: f.Name,
		}
		return callback(data, types.ComputeBlobID(data), prov)
	})
	if err != nil {
		return fmt.Errorf("failed to walk tree: %w", err)
	}

	return nil
}

// hasHiddenElement reports whether any element of a slash-separated tree
// path is hidden.
func hasHiddenElement(name string) bool {
	start := 0
	for i := 0; i <= len(name); i++ {
		if i == len(name) || name[i] == '/' {
			if isHidden(name[start:i]) {
				return true
			}
			start = i + 1
		}
	}
	return false
}

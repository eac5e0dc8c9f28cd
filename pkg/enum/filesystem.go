package enum

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	gitignore "github.com/sabhiram/go-gitignore"
	"golang.org/x/sync/errgroup"

	"github.com/praetorian-inc/checkparens/pkg/types"
)

// FilesystemEnumerator enumerates a file or a directory tree.
type FilesystemEnumerator struct {
	config Config
}

// NewFilesystemEnumerator creates a new filesystem enumerator. Root is
// cleaned, so a file target is reported as the walk of its parent would.
func NewFilesystemEnumerator(config Config) *FilesystemEnumerator {
	config.Root = filepath.Clean(config.Root)
	return &FilesystemEnumerator{config: config}
}

// ignoreSet combines the root .gitignore with configured excludes.
type ignoreSet []*gitignore.GitIgnore

func (s ignoreSet) matches(rel string) bool {
	for _, ig := range s {
		if ig.MatchesPath(rel) {
			return true
		}
	}
	return false
}

func (e *FilesystemEnumerator) loadIgnores() ignoreSet {
	var set ignoreSet
	gitignorePath := filepath.Join(e.config.Root, ".gitignore")
	if _, err := os.Stat(gitignorePath); err == nil {
		if ig, err := gitignore.CompileIgnoreFile(gitignorePath); err == nil {
			set = append(set, ig)
		}
	}
	if len(e.config.Exclude) > 0 {
		set = append(set, gitignore.CompileIgnoreLines(e.config.Exclude...))
	}
	return set
}

// Enumerate walks the filesystem and yields file contents.
// Phase 1: walk the tree and collect eligible paths (sequential).
// Phase 2: read files and invoke callback in parallel.
func (e *FilesystemEnumerator) Enumerate(ctx context.Context, callback Callback) error {
	ignores := e.loadIgnores()

	var files []string
	err := filepath.Walk(e.config.Root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		isRoot := path == e.config.Root
		if !isRoot && !e.config.IncludeHidden && isHidden(info.Name()) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if !isRoot && len(ignores) > 0 {
			rel, err := filepath.Rel(e.config.Root, path)
			if err != nil {
				return err
			}
			rel = filepath.ToSlash(rel)
			if info.IsDir() {
				if ignores.matches(rel + "/") {
					return filepath.SkipDir
				}
				return nil
			}
			if ignores.matches(rel) {
				return nil
			}
		}

		if info.IsDir() {
			return nil
		}

		if info.Mode()&os.ModeSymlink != 0 && !e.config.FollowSymlinks {
			return nil
		}

		if !info.Mode().IsRegular() && info.Mode()&os.ModeSymlink == 0 {
			return nil
		}

		if e.config.tooLarge(info.Size()) {
			return nil
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return err
	}

	numReaders := max(runtime.NumCPU(), 1)

	origCtx := ctx
	g, ctx := errgroup.WithContext(ctx)
	pathsCh := make(chan string, numReaders*2)

	g.Go(func() error {
		defer close(pathsCh)
		for _, f := range files {
			select {
			case pathsCh <- f:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	for i := 0; i < numReaders; i++ {
		g.Go(func() error {
			for path := range pathsCh {
				if err := e.processFile(ctx, path, callback); err != nil {
					return err
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	// The caller's context may have been cancelled after every reader
	// finished without noticing.
	return origCtx.Err()
}

// processFile reads a single file and invokes the callback.
func (e *FilesystemEnumerator) processFile(ctx context.Context, path string, callback Callback) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", path, err)
	}

	if e.config.Archives && isArchive(path) {
		return enumerateArchive(e.config, path, content, callback)
	}

	if isBinary(content) {
		return nil
	}

	return callback(content, types.ComputeBlobID(content), types.FileProvenance{FilePath: path})
}

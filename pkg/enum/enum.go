// Package enum discovers content to check: files on disk, members of
// archives and blobs in a git tree.
package enum

import (
	"bytes"
	"context"
	"strings"

	"github.com/praetorian-inc/checkparens/pkg/types"
)

// Callback receives one piece of content, its ID and where it was found.
// Enumerators may invoke it from several goroutines at once.
type Callback func(content []byte, blobID types.BlobID, prov types.Provenance) error

// Enumerator discovers content to check from a source.
type Enumerator interface {
	Enumerate(ctx context.Context, callback Callback) error
}

// Config for enumeration.
type Config struct {
	// Root is the file, directory or repository to enumerate.
	Root string

	// IncludeHidden includes hidden files/directories (starting with .).
	IncludeHidden bool

	// MaxFileSize is the maximum file size to process (0 = no limit).
	MaxFileSize int64

	// FollowSymlinks follows symbolic links.
	FollowSymlinks bool

	// Exclude holds gitignore-style patterns relative to Root.
	Exclude []string

	// Archives yields the members of .zip and .7z files.
	Archives bool
}

// isHidden checks if a filename is hidden (starts with .).
// The special entries "." and ".." are NOT considered hidden.
func isHidden(name string) bool {
	if name == "." || name == ".." {
		return false
	}
	return strings.HasPrefix(name, ".")
}

// isBinary detects if content is binary by checking first 8KB for null bytes.
func isBinary(content []byte) bool {
	return bytes.IndexByte(content[:min(len(content), 8192)], 0) != -1
}

// tooLarge reports whether size exceeds the configured limit.
func (c Config) tooLarge(size int64) bool {
	return c.MaxFileSize > 0 && size > c.MaxFileSize
}

package types

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Provenance kinds.
const (
	KindFile    = "file"
	KindGit     = "git"
	KindArchive = "archive"
)

// Provenance tracks where checked content was found.
type Provenance interface {
	Kind() string
	// Path returns a displayable location.
	Path() string
}

// FileProvenance for files on disk.
type FileProvenance struct {
	FilePath string
}

func (f FileProvenance) Kind() string { return KindFile }

func (f FileProvenance) Path() string { return f.FilePath }

// GitProvenance for blobs in a git tree.
type GitProvenance struct {
	RepoPath string
	CommitID string
	BlobPath string // slash-separated path within the tree
}

func (g GitProvenance) Kind() string { return KindGit }

// Path returns the tree path under the repository directory.
func (g GitProvenance) Path() string {
	return filepath.Join(g.RepoPath, filepath.FromSlash(g.BlobPath))
}

// ArchiveProvenance for members of a zip or 7z archive.
type ArchiveProvenance struct {
	ArchivePath string
	MemberPath  string
}

func (a ArchiveProvenance) Kind() string { return KindArchive }

// Path returns "archive:member".
func (a ArchiveProvenance) Path() string {
	return fmt.Sprintf("%s:%s", a.ArchivePath, a.MemberPath)
}

// Container returns the repository or archive holding prov, or "" for a
// plain file.
func Container(prov Provenance) string {
	switch p := prov.(type) {
	case GitProvenance:
		return p.RepoPath
	case ArchiveProvenance:
		return p.ArchivePath
	default:
		return ""
	}
}

// LocationKey identifies where prov was found. Filesystem components are
// made absolute, so two spellings of one file share a key while equal tree
// paths in different repositories do not.
func LocationKey(prov Provenance) string {
	var parts []string
	switch p := prov.(type) {
	case FileProvenance:
		parts = []string{KindFile, absPath(p.FilePath)}
	case GitProvenance:
		parts = []string{KindGit, absPath(p.RepoPath), p.CommitID, p.BlobPath}
	case ArchiveProvenance:
		parts = []string{KindArchive, absPath(p.ArchivePath), p.MemberPath}
	default:
		parts = []string{prov.Kind(), prov.Path()}
	}
	return strings.Join(parts, "\x00")
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

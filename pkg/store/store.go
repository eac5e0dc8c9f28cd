package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/praetorian-inc/checkparens/pkg/brackets"
	"github.com/praetorian-inc/checkparens/pkg/types"
)

// ErrNotFound is returned when a blob has not been stored.
var ErrNotFound = errors.New("not found")

// Store provides persistence for check results.
// Implementations are safe for concurrent use.
type Store interface {
	// AddBlob stores a blob and its verdict. Adding a known blob is a no-op.
	AddBlob(id types.BlobID, size int64, verdict brackets.Verdict) error

	// AddProvenance records where a blob was found. Duplicates are ignored.
	AddProvenance(blobID types.BlobID, prov types.Provenance) error

	// BlobExists checks if a blob has already been checked.
	BlobExists(id types.BlobID) (bool, error)

	// GetVerdict returns the stored verdict of a blob, or ErrNotFound.
	GetVerdict(id types.BlobID) (brackets.Verdict, error)

	// GetResults returns one result per provenance, ordered by path.
	GetResults() ([]*types.Result, error)

	// Close releases the backend.
	Close() error
}

// Config for store initialization.
type Config struct {
	// Path selects the backend:
	//   ":memory:"                 in-process MemoryStore
	//   "postgres://..."           PostgreSQL
	//   anything else              SQLite database file.
	Path string
}

// New creates a Store for cfg.Path.
func New(cfg Config) (Store, error) {
	switch {
	case cfg.Path == "":
		return nil, fmt.Errorf("path is required")
	case cfg.Path == ":memory:":
		return NewMemory(), nil
	case IsPostgresDSN(cfg.Path):
		return NewPostgres(cfg.Path)
	default:
		return NewSQLite(cfg.Path)
	}
}

// IsPostgresDSN reports whether path names a PostgreSQL database.
func IsPostgresDSN(path string) bool {
	return strings.HasPrefix(path, "postgres://") || strings.HasPrefix(path, "postgresql://")
}

// provenanceColumns flattens a provenance into the stored columns. path is
// the display path; repoPath holds the repository or archive.
func provenanceColumns(prov types.Provenance) (path, repoPath, commitHash string, err error) {
	switch p := prov.(type) {
	case types.FileProvenance, types.ArchiveProvenance:
		return prov.Path(), types.Container(prov), "", nil
	case types.GitProvenance:
		return p.Path(), p.RepoPath, p.CommitID, nil
	default:
		return "", "", "", fmt.Errorf("unknown provenance type: %T", prov)
	}
}

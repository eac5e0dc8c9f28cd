package store

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/praetorian-inc/checkparens/pkg/brackets"
	"github.com/praetorian-inc/checkparens/pkg/types"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a SQLite-based store.
func NewSQLite(path string) (*SQLiteStore, error) {
	db, err := openSQLite(path)
	if err != nil {
		return nil, err
	}

	if err := CreateSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// openSQLite opens path with a single connection, which serializes writers
// from concurrent enumerator callbacks.
func openSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

// AddBlob stores a blob record.
func (s *SQLiteStore) AddBlob(id types.BlobID, size int64, verdict brackets.Verdict) error {
	_, err := s.db.Exec("INSERT OR IGNORE INTO blobs (id, size, verdict) VALUES (?, ?, ?)", id, size, verdict)
	if err != nil {
		return fmt.Errorf("inserting blob: %w", err)
	}
	return nil
}

// AddProvenance associates provenance with a blob.
func (s *SQLiteStore) AddProvenance(blobID types.BlobID, prov types.Provenance) error {
	path, repoPath, commitHash, err := provenanceColumns(prov)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
		INSERT OR IGNORE INTO provenance (blob_id, type, path, repo_path, commit_hash)
		VALUES (?, ?, ?, ?, ?)
	`, blobID, prov.Kind(), path, repoPath, commitHash)
	if err != nil {
		return fmt.Errorf("inserting provenance: %w", err)
	}
	return nil
}

// BlobExists checks if a blob has already been checked.
func (s *SQLiteStore) BlobExists(id types.BlobID) (bool, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM blobs WHERE id = ?", id).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking blob: %w", err)
	}
	return count > 0, nil
}

// GetVerdict returns the stored verdict of a blob.
func (s *SQLiteStore) GetVerdict(id types.BlobID) (brackets.Verdict, error) {
	var v brackets.Verdict
	err := s.db.QueryRow("SELECT verdict FROM blobs WHERE id = ?", id).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("querying verdict: %w", err)
	}
	return v, nil
}

// GetResults returns one result per provenance, ordered by path.
func (s *SQLiteStore) GetResults() ([]*types.Result, error) {
	rows, err := s.db.Query(`
		SELECT p.blob_id, p.type, p.path, p.repo_path, b.size, b.verdict
		FROM provenance p
		JOIN blobs b ON b.id = p.blob_id
		ORDER BY p.path, p.type, p.id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying results: %w", err)
	}
	defer rows.Close()

	var results []*types.Result
	for rows.Next() {
		var r types.Result
		if err := rows.Scan(&r.BlobID, &r.Kind, &r.Path, &r.Container, &r.Size, &r.Verdict); err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}
		results = append(results, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating results: %w", err)
	}
	return results, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
